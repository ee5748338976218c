// Package geocode resolves free-text addresses to coordinates via the Google
// Geocoding API (primary) with the Census one-line geocoder as an open
// fallback.
package geocode

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// ErrLocationNotFound is returned when no configured provider can resolve an
// address. Callers surface this as a client error and must not retry.
var ErrLocationNotFound = eris.New("geocode: location not found")

// Result holds the geocoding output for an address.
type Result struct {
	Latitude         float64
	Longitude        float64
	FormattedAddress string
	PlaceID          string
	Source           string // "google" or "census"
	Matched          bool
}

// Client geocodes free-text addresses.
type Client interface {
	// Resolve geocodes a single address. Returns ErrLocationNotFound when no
	// provider matches.
	Resolve(ctx context.Context, address string) (*Result, error)
}

// Option configures the geocoder.
type Option func(*geocoder)

// WithGoogleAPIKey enables the Google Geocoding API as the primary provider.
func WithGoogleAPIKey(key string) Option {
	return func(g *geocoder) {
		g.googleKey = key
	}
}

// WithHTTPClient sets a custom HTTP client for all provider requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *geocoder) {
		g.httpClient = hc
	}
}

// WithRateLimit sets the requests-per-second limit for provider calls.
func WithRateLimit(rps float64) Option {
	return func(g *geocoder) {
		g.limiter = rate.NewLimiter(rate.Limit(rps), int(rps))
	}
}

// WithBaseURLs overrides the provider endpoints, for tests.
func WithBaseURLs(google, census string) Option {
	return func(g *geocoder) {
		if google != "" {
			g.googleURL = google
		}
		if census != "" {
			g.censusURL = census
		}
	}
}

type geocoder struct {
	httpClient *http.Client
	googleKey  string
	googleURL  string
	censusURL  string
	limiter    *rate.Limiter
}

// NewClient creates a geocoding Client with the given options.
func NewClient(opts ...Option) Client {
	g := &geocoder{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		googleURL:  googleGeocodeURL,
		censusURL:  censusOneLineURL,
		limiter:    rate.NewLimiter(10, 10),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Resolve geocodes a single address, trying Google first when configured,
// then the Census one-line geocoder.
func (g *geocoder) Resolve(ctx context.Context, address string) (*Result, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrLocationNotFound
	}

	if g.googleKey != "" {
		result, err := g.geocodeGoogle(ctx, address)
		if err == nil && result.Matched {
			return result, nil
		}
	}

	result, err := g.geocodeCensus(ctx, address)
	if err == nil && result.Matched {
		return result, nil
	}

	return nil, ErrLocationNotFound
}
