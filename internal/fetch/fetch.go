// Package fetch gathers the four source snapshots that feed the scoring
// engine. Every fetcher degrades to a deterministic local estimate on
// provider failure, so the pipeline always produces a complete analysis
// even with zero configured API keys.
package fetch

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/washlytics/siteiq/internal/model"
)

// Results holds the four snapshots for one location, in whatever mix of
// live and estimated data the providers allowed.
type Results struct {
	Demographics model.DemographicsSnapshot
	Competition  model.CompetitionSnapshot
	RealEstate   model.RealEstateSnapshot
	Traffic      model.TrafficSnapshot
}

// Fetchers bundles the four source fetchers.
type Fetchers struct {
	Competitors  *CompetitorFetcher
	Demographics *DemographicsFetcher
	RealEstate   *RealEstateFetcher
	Traffic      *TrafficFetcher

	// Timeout bounds each individual fetcher. One fetcher timing out must
	// not abort the others.
	Timeout time.Duration
}

const defaultFetchTimeout = 15 * time.Second

// RunAll executes the four fetchers concurrently and returns the combined
// snapshots. Fetchers never return errors; a failed or timed-out fetcher
// contributes its estimate instead. All four complete before scoring begins.
func (f *Fetchers) RunAll(ctx context.Context, loc model.ResolvedLocation) Results {
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}

	var results Results
	g, gCtx := errgroup.WithContext(ctx)

	run := func(fn func(ctx context.Context)) {
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(gCtx, timeout)
			defer cancel()
			fn(fetchCtx)
			return nil
		})
	}

	run(func(ctx context.Context) { results.Competition = f.Competitors.Fetch(ctx, loc) })
	run(func(ctx context.Context) { results.Demographics = f.Demographics.Fetch(ctx, loc.Coordinates) })
	run(func(ctx context.Context) { results.RealEstate = f.RealEstate.Fetch(ctx, loc.Coordinates) })
	run(func(ctx context.Context) { results.Traffic = f.Traffic.Fetch(ctx, loc.Coordinates) })

	_ = g.Wait() // fetchers never error; Wait only synchronizes
	return results
}
