package fetch

import (
	"context"

	"go.uber.org/zap"

	"github.com/washlytics/siteiq/internal/model"
	"github.com/washlytics/siteiq/internal/resilience"
	"github.com/washlytics/siteiq/pkg/census"
)

// DemographicsFetcher resolves the census tract for a coordinate and pulls
// ACS variables for it.
type DemographicsFetcher struct {
	client  census.Client
	breaker *resilience.Breaker
	retry   resilience.RetryConfig
}

// NewDemographicsFetcher creates a DemographicsFetcher. A nil client means
// the fetcher always estimates.
func NewDemographicsFetcher(client census.Client, breaker *resilience.Breaker) *DemographicsFetcher {
	if breaker == nil {
		breaker = resilience.NewBreaker(resilience.BreakerConfig{})
	}
	return &DemographicsFetcher{
		client:  client,
		breaker: breaker,
		retry:   resilience.DefaultRetryConfig(),
	}
}

// Fetch returns the demographic snapshot for a coordinate. Never fails:
// any provider error degrades to the estimated snapshot.
func (f *DemographicsFetcher) Fetch(ctx context.Context, c model.Coordinates) model.DemographicsSnapshot {
	if f.client == nil {
		return estimatedDemographics()
	}

	snap, err := resilience.CallVal(ctx, f.breaker, func(ctx context.Context) (model.DemographicsSnapshot, error) {
		return f.query(ctx, c)
	})
	if err != nil {
		zap.L().Warn("demographics fetch degraded to estimate",
			zap.Float64("lat", c.Lat),
			zap.Float64("lng", c.Lng),
			zap.Error(err),
		)
		return estimatedDemographics()
	}
	return snap
}

func (f *DemographicsFetcher) query(ctx context.Context, c model.Coordinates) (model.DemographicsSnapshot, error) {
	var zero model.DemographicsSnapshot

	tract, err := resilience.DoVal(ctx, f.retry, func(ctx context.Context) (*census.Tract, error) {
		return f.client.TractForPoint(ctx, c.Lat, c.Lng)
	})
	if err != nil {
		return zero, err
	}

	demo, err := resilience.DoVal(ctx, f.retry, func(ctx context.Context) (*census.Demographics, error) {
		return f.client.ACSQuery(ctx, *tract)
	})
	if err != nil {
		return zero, err
	}

	renterPct := 0.0
	if demo.Households > 0 {
		renterPct = float64(demo.RenterHouseholds) / float64(demo.Households)
	}

	return model.DemographicsSnapshot{
		Population:       demo.Population,
		MedianIncome:     demo.MedianIncome,
		Households:       demo.Households,
		RenterPct:        renterPct,
		AvgHouseholdSize: demo.AvgHouseholdSize,
		TractID:          tract.ID(),
		DataSource:       model.DataSourceAPI,
	}, nil
}

// estimatedDemographics is the deterministic fallback: national-median-ish
// values for an urban tract.
func estimatedDemographics() model.DemographicsSnapshot {
	return model.DemographicsSnapshot{
		Population:       8500,
		MedianIncome:     52000,
		Households:       3200,
		RenterPct:        0.45,
		AvgHouseholdSize: 2.5,
		DataSource:       model.DataSourceEstimated,
	}
}
