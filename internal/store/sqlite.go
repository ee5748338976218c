package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/washlytics/siteiq/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite, for single-node
// and local use.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS analyses (
	id            TEXT PRIMARY KEY,
	analysis_type TEXT NOT NULL,
	address       TEXT NOT NULL,
	payload       TEXT NOT NULL,
	created_at    DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS analysis_cache (
	cache_key    TEXT PRIMARY KEY,
	analysis_id  TEXT NOT NULL REFERENCES analyses(id),
	owner_id     TEXT NOT NULL DEFAULT '',
	generated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_analyses_type ON analyses(analysis_type);
CREATE INDEX IF NOT EXISTS idx_analyses_address ON analyses(address);
CREATE INDEX IF NOT EXISTS idx_analysis_cache_analysis_id ON analysis_cache(analysis_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveAnalysis(ctx context.Context, a *model.LocationAnalysis, ownerID string) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal analysis")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, analysis_type, address, payload, created_at) VALUES (?, ?, ?, ?, ?)`,
		a.AnalysisID, a.AnalysisType, a.Location.Address, string(payload), a.CreatedAt.UTC(),
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: insert analysis")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analysis_cache (cache_key, analysis_id, owner_id, generated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (cache_key) DO UPDATE
		 SET analysis_id = excluded.analysis_id, owner_id = excluded.owner_id, generated_at = excluded.generated_at`,
		CacheKey(a.Location.Address, a.AnalysisType), a.AnalysisID, ownerID, a.CreatedAt.UTC(),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: upsert cache entry %s", a.AnalysisID)
	}
	return nil
}

func (s *SQLiteStore) GetAnalysis(ctx context.Context, analysisID string) (*model.LocationAnalysis, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM analyses WHERE id = ?`,
		analysisID,
	).Scan(&payload)
	if err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "analysis %s", analysisID)
		}
		return nil, eris.Wrapf(err, "sqlite: get analysis %s", analysisID)
	}

	var a model.LocationAnalysis
	if err := json.Unmarshal([]byte(payload), &a); err != nil {
		return nil, eris.Wrapf(err, "sqlite: unmarshal analysis %s", analysisID)
	}
	return &a, nil
}

func (s *SQLiteStore) FindByKey(ctx context.Context, address, analysisType string) (*model.CacheEntry, error) {
	key := CacheKey(address, analysisType)

	var e model.CacheEntry
	var generatedAt time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT cache_key, analysis_id, owner_id, generated_at FROM analysis_cache WHERE cache_key = ?`,
		key,
	).Scan(&e.CacheKey, &e.AnalysisID, &e.OwnerID, &generatedAt)
	if err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "cache key %s", key)
		}
		return nil, eris.Wrapf(err, "sqlite: find cache entry %s", key)
	}
	e.GeneratedAt = generatedAt.UTC()
	return &e, nil
}
