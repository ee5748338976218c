// Package places queries the Google Places Nearby Search API for businesses
// around a coordinate.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const nearbySearchURL = "https://maps.googleapis.com/maps/api/place/nearbysearch/json"

// Place is one business returned by a nearby search.
type Place struct {
	Name        string
	PlaceID     string
	Rating      float64
	ReviewCount int
	Lat         float64
	Lng         float64
}

// Client searches for businesses near a coordinate.
type Client interface {
	// Nearby returns businesses matching keyword within radiusMeters of the
	// given point.
	Nearby(ctx context.Context, lat, lng float64, radiusMeters int, keyword string) ([]Place, error)
}

// Option configures the places client.
type Option func(*client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithRateLimit sets the requests-per-second limit.
func WithRateLimit(rps float64) Option {
	return func(c *client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps))
	}
}

// WithBaseURL overrides the API endpoint, for tests.
func WithBaseURL(u string) Option {
	return func(c *client) {
		c.baseURL = u
	}
}

type client struct {
	key        string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a places Client. The API key is required for live use.
func NewClient(key string, opts ...Option) Client {
	c := &client{
		key:        key,
		baseURL:    nearbySearchURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(10, 10),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// nearbyResponse is the JSON response from the Nearby Search API.
type nearbyResponse struct {
	Results []struct {
		Name             string  `json:"name"`
		PlaceID          string  `json:"place_id"`
		Rating           float64 `json:"rating"`
		UserRatingsTotal int     `json:"user_ratings_total"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
	Status string `json:"status"`
}

// Nearby implements Client.
func (c *client) Nearby(ctx context.Context, lat, lng float64, radiusMeters int, keyword string) ([]Place, error) {
	if c.key == "" {
		return nil, eris.New("places: api key not configured")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "places: rate limit")
	}

	params := url.Values{
		"location": {fmt.Sprintf("%f,%f", lat, lng)},
		"radius":   {fmt.Sprintf("%d", radiusMeters)},
		"keyword":  {keyword},
		"key":      {c.key},
	}

	reqURL := c.baseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "places: build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "places: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("places: returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "places: read body")
	}

	var nr nearbyResponse
	if err := json.Unmarshal(body, &nr); err != nil {
		return nil, eris.Wrap(err, "places: parse response")
	}

	if nr.Status != "OK" && nr.Status != "ZERO_RESULTS" {
		return nil, eris.Errorf("places: api status %s", nr.Status)
	}

	results := make([]Place, 0, len(nr.Results))
	for _, r := range nr.Results {
		results = append(results, Place{
			Name:        r.Name,
			PlaceID:     r.PlaceID,
			Rating:      r.Rating,
			ReviewCount: r.UserRatingsTotal,
			Lat:         r.Geometry.Location.Lat,
			Lng:         r.Geometry.Location.Lng,
		})
	}
	return results, nil
}
