package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/washlytics/siteiq/internal/analysis"
	"github.com/washlytics/siteiq/internal/config"
	"github.com/washlytics/siteiq/internal/event"
	"github.com/washlytics/siteiq/internal/fetch"
	"github.com/washlytics/siteiq/internal/resilience"
	"github.com/washlytics/siteiq/internal/store"
	"github.com/washlytics/siteiq/internal/tier"
	"github.com/washlytics/siteiq/pkg/attom"
	"github.com/washlytics/siteiq/pkg/census"
	"github.com/washlytics/siteiq/pkg/geocode"
	"github.com/washlytics/siteiq/pkg/places"
)

// env bundles the wired service and its store for command handlers.
type env struct {
	Service *analysis.Service
	Store   store.Store
}

func (e *env) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv wires the full pipeline from configuration. Providers without an
// API key are left nil so their fetchers estimate instead of calling out.
func initEnv(ctx context.Context) (*env, error) {
	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	policy := tier.NewPolicy()
	if cfg.Tiers.ConfigPath != "" {
		policy, err = tier.NewPolicyFromFile(cfg.Tiers.ConfigPath)
		if err != nil {
			st.Close()
			return nil, err
		}
	}

	breakers := resilience.NewProviderBreakers(resilience.BreakerConfig{})

	var placesClient places.Client
	if cfg.Places.Key != "" {
		placesClient = places.NewClient(cfg.Places.Key, places.WithRateLimit(cfg.Places.RateRPS))
	}
	var attomClient attom.Client
	if cfg.RealEstate.Key != "" {
		attomClient = attom.NewClient(cfg.RealEstate.Key,
			attom.WithBaseURL(cfg.RealEstate.BaseURL),
			attom.WithRateLimit(cfg.RealEstate.RateRPS),
		)
	}
	censusClient := census.NewClient(cfg.Census.Key, census.WithRateLimit(cfg.Census.RateRPS))

	fetchers := &fetch.Fetchers{
		Competitors:  fetch.NewCompetitorFetcher(placesClient, cfg.Places.RadiusMeters, breakers.Get("places")),
		Demographics: fetch.NewDemographicsFetcher(censusClient, breakers.Get("census")),
		RealEstate:   fetch.NewRealEstateFetcher(attomClient, cfg.RealEstate.RadiusMi, breakers.Get("attom")),
		Traffic:      fetch.NewTrafficFetcher(),
		Timeout:      time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
	}

	geocoder := geocode.NewClient(
		geocode.WithGoogleAPIKey(cfg.Geocode.GoogleKey),
		geocode.WithRateLimit(cfg.Geocode.RateRPS),
	)

	svc := analysis.NewService(analysis.Config{
		Geocoder:  geocoder,
		Fetchers:  fetchers,
		Policy:    policy,
		Store:     st,
		Publisher: event.NewWebhook(cfg.Webhook.URL),
	})

	return &env{Service: svc, Store: st}, nil
}

func openStore(ctx context.Context, sc config.StoreConfig) (store.Store, error) {
	switch sc.Driver {
	case "postgres":
		return store.NewPostgres(ctx, sc.DatabaseURL, nil)
	case "sqlite", "":
		return store.NewSQLite(sc.SQLitePath)
	default:
		return nil, eris.Errorf("unknown store driver %q", sc.Driver)
	}
}
