package fetch

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"

	"github.com/washlytics/siteiq/internal/model"
)

// TrafficFetcher produces a deterministic accessibility estimate for a
// coordinate. No live traffic provider is wired; the estimate hashes the
// rounded coordinate into a fixed band so repeated runs agree.
type TrafficFetcher struct{}

func NewTrafficFetcher() *TrafficFetcher {
	return &TrafficFetcher{}
}

const (
	accessibilityMin = 50.0
	accessibilityMax = 80.0
)

// Fetch returns the accessibility snapshot. Never fails.
func (f *TrafficFetcher) Fetch(_ context.Context, c model.Coordinates) model.TrafficSnapshot {
	score := accessibilityFor(c)
	return model.TrafficSnapshot{
		AccessibilityScore: score,
		TrafficLevel:       trafficLevel(score),
		DataSource:         model.DataSourceEstimated,
	}
}

// accessibilityFor maps a coordinate rounded to ~4 decimal places into
// [accessibilityMin, accessibilityMax]. Nearby addresses share a value.
func accessibilityFor(c model.Coordinates) float64 {
	key := fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lng)

	h := fnv.New64a()
	_, _ = h.Write([]byte(key))

	frac := float64(h.Sum64()%10000) / 10000.0
	score := accessibilityMin + frac*(accessibilityMax-accessibilityMin)
	return math.Round(score*10) / 10
}

func trafficLevel(score float64) string {
	switch {
	case score >= 70:
		return "high"
	case score >= 60:
		return "moderate"
	default:
		return "low"
	}
}
