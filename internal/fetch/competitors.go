package fetch

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/washlytics/siteiq/internal/model"
	"github.com/washlytics/siteiq/internal/resilience"
	"github.com/washlytics/siteiq/pkg/places"
)

// searchKeywords are the business keywords queried for competitors.
var searchKeywords = []string{"laundromat", "coin laundry", "wash and fold"}

// CompetitorFetcher finds laundry businesses near a location.
type CompetitorFetcher struct {
	client       places.Client
	radiusMeters int
	breaker      *resilience.Breaker
	retry        resilience.RetryConfig
}

// NewCompetitorFetcher creates a CompetitorFetcher. A nil client means the
// fetcher always estimates.
func NewCompetitorFetcher(client places.Client, radiusMeters int, breaker *resilience.Breaker) *CompetitorFetcher {
	if radiusMeters <= 0 {
		radiusMeters = 3200
	}
	if breaker == nil {
		breaker = resilience.NewBreaker(resilience.BreakerConfig{})
	}
	return &CompetitorFetcher{
		client:       client,
		radiusMeters: radiusMeters,
		breaker:      breaker,
		retry:        resilience.DefaultRetryConfig(),
	}
}

// Fetch returns the competition snapshot for a location. Never fails: any
// provider error degrades to the estimated snapshot.
func (f *CompetitorFetcher) Fetch(ctx context.Context, loc model.ResolvedLocation) model.CompetitionSnapshot {
	if f.client == nil {
		return estimatedCompetition()
	}

	found, err := resilience.CallVal(ctx, f.breaker, func(ctx context.Context) ([]places.Place, error) {
		return f.searchAll(ctx, loc.Coordinates)
	})
	if err != nil {
		zap.L().Warn("competitor fetch degraded to estimate",
			zap.String("address", loc.Address),
			zap.Error(err),
		)
		return estimatedCompetition()
	}

	records := make([]model.CompetitorRecord, 0, len(found))
	for _, p := range found {
		dist := model.DistanceMiles(loc.Coordinates, model.Coordinates{Lat: p.Lat, Lng: p.Lng})
		rec := model.CompetitorRecord{
			Name:          p.Name,
			PlaceID:       p.PlaceID,
			DistanceMiles: dist,
			Rating:        p.Rating,
			ReviewCount:   p.ReviewCount,
		}
		rec.ThreatLevel = threatLevel(rec)
		rec.CompetitiveGaps = competitiveGaps(rec)
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].DistanceMiles < records[j].DistanceMiles
	})

	return model.CompetitionSnapshot{
		Competitors: records,
		DataSource:  model.DataSourceAPI,
	}
}

// searchAll queries each keyword and deduplicates results by place ID.
func (f *CompetitorFetcher) searchAll(ctx context.Context, c model.Coordinates) ([]places.Place, error) {
	seen := make(map[string]bool)
	var all []places.Place

	for _, kw := range searchKeywords {
		found, err := resilience.DoVal(ctx, f.retry, func(ctx context.Context) ([]places.Place, error) {
			return f.client.Nearby(ctx, c.Lat, c.Lng, f.radiusMeters, kw)
		})
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			if p.PlaceID != "" && seen[p.PlaceID] {
				continue
			}
			seen[p.PlaceID] = true
			all = append(all, p)
		}
	}
	return all, nil
}

// threatLevel classifies a competitor by distance, rating, and review count.
func threatLevel(r model.CompetitorRecord) model.ThreatLevel {
	if r.DistanceMiles < 0.5 && r.Rating >= 4.0 && r.ReviewCount >= 50 {
		return model.ThreatHigh
	}
	if r.DistanceMiles < 1.0 && r.Rating >= 3.5 {
		return model.ThreatMedium
	}
	return model.ThreatLow
}

// competitiveGaps lists exploitable weaknesses of a competitor.
func competitiveGaps(r model.CompetitorRecord) []string {
	var gaps []string
	if r.Rating > 0 && r.Rating < 3.5 {
		gaps = append(gaps, "low customer satisfaction")
	}
	if r.ReviewCount < 25 {
		gaps = append(gaps, "weak online presence")
	}
	if r.DistanceMiles > 1.0 {
		gaps = append(gaps, "outside core walk radius")
	}
	return gaps
}

// estimatedCompetition is the deterministic fallback: a typical urban market
// with two mid-strength competitors.
func estimatedCompetition() model.CompetitionSnapshot {
	records := []model.CompetitorRecord{
		{Name: "Estimated competitor A", DistanceMiles: 0.8, Rating: 3.8, ReviewCount: 40},
		{Name: "Estimated competitor B", DistanceMiles: 1.5, Rating: 3.4, ReviewCount: 15},
	}
	for i := range records {
		records[i].ThreatLevel = threatLevel(records[i])
		records[i].CompetitiveGaps = competitiveGaps(records[i])
	}
	return model.CompetitionSnapshot{
		Competitors: records,
		DataSource:  model.DataSourceEstimated,
	}
}
