package fetch

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/washlytics/siteiq/internal/model"
	"github.com/washlytics/siteiq/internal/resilience"
	"github.com/washlytics/siteiq/pkg/attom"
)

// cityAnchor is a reference point for the estimated property-value model.
type cityAnchor struct {
	name  string
	coord model.Coordinates
	value float64 // typical assessed value near the urban core
}

// cityAnchors seed the distance-decay estimate when the property provider is
// unavailable. Values are rough urban-core assessed values.
var cityAnchors = []cityAnchor{
	{"new_york", model.Coordinates{Lat: 40.7128, Lng: -74.0060}, 850000},
	{"los_angeles", model.Coordinates{Lat: 34.0522, Lng: -118.2437}, 750000},
	{"chicago", model.Coordinates{Lat: 41.8781, Lng: -87.6298}, 420000},
	{"houston", model.Coordinates{Lat: 29.7604, Lng: -95.3698}, 310000},
	{"phoenix", model.Coordinates{Lat: 33.4484, Lng: -112.0740}, 380000},
	{"philadelphia", model.Coordinates{Lat: 39.9526, Lng: -75.1652}, 340000},
	{"san_antonio", model.Coordinates{Lat: 29.4241, Lng: -98.4936}, 270000},
	{"dallas", model.Coordinates{Lat: 32.7767, Lng: -96.7970}, 350000},
	{"atlanta", model.Coordinates{Lat: 33.7490, Lng: -84.3880}, 390000},
	{"seattle", model.Coordinates{Lat: 47.6062, Lng: -122.3321}, 720000},
}

const (
	// valueDecayMiles controls how fast estimated values fall off with
	// distance from the nearest anchor city.
	valueDecayMiles = 100.0

	// estimatedValueFloor is the minimum estimated property value.
	estimatedValueFloor = 85000.0
)

// RealEstateFetcher pulls nearby assessed property values.
type RealEstateFetcher struct {
	client      attom.Client
	radiusMiles float64
	breaker     *resilience.Breaker
	retry       resilience.RetryConfig
}

func NewRealEstateFetcher(client attom.Client, radiusMiles float64, breaker *resilience.Breaker) *RealEstateFetcher {
	if radiusMiles <= 0 {
		radiusMiles = 0.5
	}
	if breaker == nil {
		breaker = resilience.NewBreaker(resilience.BreakerConfig{})
	}
	return &RealEstateFetcher{
		client:      client,
		radiusMiles: radiusMiles,
		breaker:     breaker,
		retry:       resilience.DefaultRetryConfig(),
	}
}

// Fetch returns the average assessed value near a coordinate. Never fails:
// provider errors and empty samples degrade to the distance-decay estimate.
func (f *RealEstateFetcher) Fetch(ctx context.Context, c model.Coordinates) model.RealEstateSnapshot {
	if f.client == nil {
		return estimatedRealEstate(c)
	}

	props, err := resilience.CallVal(ctx, f.breaker, func(ctx context.Context) ([]attom.Property, error) {
		return resilience.DoVal(ctx, f.retry, func(ctx context.Context) ([]attom.Property, error) {
			return f.client.PropertiesNear(ctx, c.Lat, c.Lng, f.radiusMiles)
		})
	})
	if err != nil {
		zap.L().Warn("real estate fetch degraded to estimate",
			zap.Float64("lat", c.Lat),
			zap.Float64("lng", c.Lng),
			zap.Error(err),
		)
		return estimatedRealEstate(c)
	}
	if len(props) == 0 {
		return estimatedRealEstate(c)
	}

	var total float64
	for _, p := range props {
		total += p.AssessedValue
	}
	return model.RealEstateSnapshot{
		AvgPropertyValue: total / float64(len(props)),
		SampleSize:       len(props),
		DataSource:       model.DataSourceAPI,
	}
}

// estimatedRealEstate models value as exponential decay from the nearest
// anchor city, floored at a rural baseline. Deterministic for a coordinate.
func estimatedRealEstate(c model.Coordinates) model.RealEstateSnapshot {
	nearest := cityAnchors[0]
	nearestDist := model.DistanceMiles(c, nearest.coord)
	for _, a := range cityAnchors[1:] {
		if d := model.DistanceMiles(c, a.coord); d < nearestDist {
			nearest, nearestDist = a, d
		}
	}

	value := nearest.value * math.Exp(-nearestDist/valueDecayMiles)
	if value < estimatedValueFloor {
		value = estimatedValueFloor
	}
	return model.RealEstateSnapshot{
		AvgPropertyValue: value,
		SampleSize:       0,
		DataSource:       model.DataSourceEstimated,
	}
}
