// Package store persists completed analyses and the reuse-pricing cache
// index, with Postgres and SQLite implementations behind one interface.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/washlytics/siteiq/internal/model"
)

// ErrNotFound is returned when no record matches a lookup.
var ErrNotFound = eris.New("store: not found")

// Store defines persistence for the analysis pipeline. Analyses are
// immutable once saved; only the cache index is overwritten (last write
// wins on a cache key).
type Store interface {
	// SaveAnalysis persists a completed analysis and upserts its cache
	// entry under the (address, analysis_type) key.
	SaveAnalysis(ctx context.Context, a *model.LocationAnalysis, ownerID string) error

	// GetAnalysis returns a saved analysis by ID, or ErrNotFound.
	GetAnalysis(ctx context.Context, analysisID string) (*model.LocationAnalysis, error)

	// FindByKey returns the cache entry for an (address, analysis_type)
	// pair, or ErrNotFound.
	FindByKey(ctx context.Context, address, analysisType string) (*model.CacheEntry, error)

	Migrate(ctx context.Context) error
	Close() error
}

// CacheKey derives the cache index key for an address and analysis type.
// The address is normalized (lowercased, whitespace collapsed) to absorb
// casing and spacing differences. Callers pass the geocoder's canonical
// address, which absorbs the rest (abbreviations, missing ZIP or country).
func CacheKey(address, analysisType string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(address)), " ")
	sum := sha256.Sum256([]byte(normalized + "|" + analysisType))
	return hex.EncodeToString(sum[:])
}
