package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/washlytics/siteiq/internal/model"
)

// Pool is the subset of pgxpool.Pool the store needs. pgxmock satisfies it
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool, used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS analyses (
	id            TEXT PRIMARY KEY,
	analysis_type TEXT NOT NULL,
	address       TEXT NOT NULL,
	payload       JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS analysis_cache (
	cache_key    TEXT PRIMARY KEY,
	analysis_id  TEXT NOT NULL REFERENCES analyses(id),
	owner_id     TEXT NOT NULL DEFAULT '',
	generated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_analyses_type ON analyses(analysis_type);
CREATE INDEX IF NOT EXISTS idx_analyses_address ON analyses(address);
CREATE INDEX IF NOT EXISTS idx_analysis_cache_analysis_id ON analysis_cache(analysis_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveAnalysis(ctx context.Context, a *model.LocationAnalysis, ownerID string) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal analysis")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO analyses (id, analysis_type, address, payload, created_at) VALUES ($1, $2, $3, $4, $5)`,
		a.AnalysisID, a.AnalysisType, a.Location.Address, payload, a.CreatedAt,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: insert analysis")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO analysis_cache (cache_key, analysis_id, owner_id, generated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (cache_key) DO UPDATE
		 SET analysis_id = EXCLUDED.analysis_id, owner_id = EXCLUDED.owner_id, generated_at = EXCLUDED.generated_at`,
		CacheKey(a.Location.Address, a.AnalysisType), a.AnalysisID, ownerID, a.CreatedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: upsert cache entry %s", a.AnalysisID)
	}
	return nil
}

func (s *PostgresStore) GetAnalysis(ctx context.Context, analysisID string) (*model.LocationAnalysis, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM analyses WHERE id = $1`,
		analysisID,
	).Scan(&payload)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "analysis %s", analysisID)
		}
		return nil, eris.Wrapf(err, "postgres: get analysis %s", analysisID)
	}

	var a model.LocationAnalysis
	if err := json.Unmarshal(payload, &a); err != nil {
		return nil, eris.Wrapf(err, "postgres: unmarshal analysis %s", analysisID)
	}
	return &a, nil
}

func (s *PostgresStore) FindByKey(ctx context.Context, address, analysisType string) (*model.CacheEntry, error) {
	key := CacheKey(address, analysisType)

	var e model.CacheEntry
	err := s.pool.QueryRow(ctx,
		`SELECT cache_key, analysis_id, owner_id, generated_at FROM analysis_cache WHERE cache_key = $1`,
		key,
	).Scan(&e.CacheKey, &e.AnalysisID, &e.OwnerID, &e.GeneratedAt)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "cache key %s", key)
		}
		return nil, eris.Wrapf(err, "postgres: find cache entry %s", key)
	}
	return &e, nil
}
