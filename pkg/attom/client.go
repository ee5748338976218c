// Package attom queries a property-valuation API for parcels near a
// coordinate.
package attom

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

const defaultBaseURL = "https://api.gateway.attomdata.com/propertyapi/v1.0.0"

// Property is one parcel near the queried point.
type Property struct {
	AssessedValue float64
	Type          string
}

// Client fetches nearby parcel valuations.
type Client interface {
	// PropertiesNear returns parcels within radiusMiles of the point.
	PropertiesNear(ctx context.Context, lat, lng, radiusMiles float64) ([]Property, error)
}

// Option configures the attom client.
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

// WithBaseURL overrides the API endpoint.
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

// NewClient creates an attom Client. The API key is required for live use.
func NewClient(key string, opts ...Option) Client {
	c := &client{
		key:        key,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(5, 5),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// snapshotResponse is the JSON response from the assessment snapshot endpoint.
type snapshotResponse struct {
	Property []struct {
		Summary struct {
			PropType string `json:"proptype"`
		} `json:"summary"`
		Assessment struct {
			Assessed struct {
				AssdTtlValue float64 `json:"assdttlvalue"`
			} `json:"assessed"`
		} `json:"assessment"`
	} `json:"property"`
}

// PropertiesNear implements Client.
func (c *client) PropertiesNear(ctx context.Context, lat, lng, radiusMiles float64) ([]Property, error) {
	if c.key == "" {
		return nil, eris.New("attom: api key not configured")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "attom: rate limit")
	}

	params := url.Values{
		"latitude":  {fmt.Sprintf("%f", lat)},
		"longitude": {fmt.Sprintf("%f", lng)},
		"radius":    {fmt.Sprintf("%.2f", radiusMiles)},
	}

	reqURL := c.baseURL + "/assessment/snapshot?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "attom: build request")
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "attom: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("attom: returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "attom: read body")
	}

	var sr snapshotResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, eris.Wrap(err, "attom: parse response")
	}

	results := make([]Property, 0, len(sr.Property))
	for _, p := range sr.Property {
		if p.Assessment.Assessed.AssdTtlValue <= 0 {
			continue
		}
		results = append(results, Property{
			AssessedValue: p.Assessment.Assessed.AssdTtlValue,
			Type:          p.Summary.PropType,
		})
	}
	return results, nil
}
