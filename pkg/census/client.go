// Package census looks up the census tract for a coordinate and queries
// ACS 5-year demographic variables for that tract.
package census

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const (
	geographiesURL = "https://geocoding.geo.census.gov/geocoder/geographies/coordinates"
	acsURL         = "https://api.census.gov/data/2022/acs/acs5"
	censusBenchmark = "Public_AR_Current"
	censusVintage   = "Current_Current"
)

// ACS variable codes queried for every tract.
const (
	varPopulation    = "B01003_001E" // total population
	varMedianIncome  = "B19013_001E" // median household income
	varHouseholds    = "B25003_001E" // total occupied housing units
	varRenterHouseholds = "B25003_003E" // renter-occupied housing units
	varAvgHouseholdSize = "B25010_001E" // average household size
)

// Tract identifies a census tract.
type Tract struct {
	State  string // state FIPS
	County string // county FIPS
	Tract  string // tract code
}

// ID returns the full 11-digit tract GEOID.
func (t Tract) ID() string {
	return t.State + t.County + t.Tract
}

// Demographics holds the ACS variables for one tract.
type Demographics struct {
	Population       int
	MedianIncome     int
	Households       int
	RenterHouseholds int
	AvgHouseholdSize float64
}

// Client resolves tracts and queries ACS data.
type Client interface {
	// TractForPoint returns the census tract containing the coordinate.
	TractForPoint(ctx context.Context, lat, lng float64) (*Tract, error)

	// ACSQuery returns tract-level demographic variables.
	ACSQuery(ctx context.Context, tract Tract) (*Demographics, error)
}

// Option configures the census client.
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

// WithBaseURLs overrides the endpoints, for tests.
func WithBaseURLs(geographies, acs string) Option {
	return func(c *client) {
		if geographies != "" {
			c.geoURL = geographies
		}
		if acs != "" {
			c.acsURL = acs
		}
	}
}

type client struct {
	key        string
	geoURL     string
	acsURL     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a census Client. The API key is optional for low volumes.
func NewClient(key string, opts ...Option) Client {
	c := &client{
		key:        key,
		geoURL:     geographiesURL,
		acsURL:     acsURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(10, 10),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// geographiesResponse is the JSON response from the coordinates lookup.
type geographiesResponse struct {
	Result struct {
		Geographies struct {
			Tracts []struct {
				State  string `json:"STATE"`
				County string `json:"COUNTY"`
				Tract  string `json:"TRACT"`
			} `json:"Census Tracts"`
		} `json:"geographies"`
	} `json:"result"`
}

// TractForPoint implements Client.
func (c *client) TractForPoint(ctx context.Context, lat, lng float64) (*Tract, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "census: rate limit")
	}

	params := url.Values{
		"x":         {fmt.Sprintf("%f", lng)},
		"y":         {fmt.Sprintf("%f", lat)},
		"benchmark": {censusBenchmark},
		"vintage":   {censusVintage},
		"format":    {"json"},
	}

	body, err := c.get(ctx, c.geoURL+"?"+params.Encode())
	if err != nil {
		return nil, eris.Wrap(err, "census: tract lookup")
	}

	var gr geographiesResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return nil, eris.Wrap(err, "census: parse tract response")
	}

	tracts := gr.Result.Geographies.Tracts
	if len(tracts) == 0 {
		return nil, eris.New("census: no tract for coordinate")
	}

	return &Tract{
		State:  tracts[0].State,
		County: tracts[0].County,
		Tract:  tracts[0].Tract,
	}, nil
}

// ACSQuery implements Client. The ACS API returns a 2-row array: header row
// then value row.
func (c *client) ACSQuery(ctx context.Context, tract Tract) (*Demographics, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "census: rate limit")
	}

	vars := fmt.Sprintf("%s,%s,%s,%s,%s",
		varPopulation, varMedianIncome, varHouseholds, varRenterHouseholds, varAvgHouseholdSize)

	params := url.Values{
		"get": {vars},
		"for": {"tract:" + tract.Tract},
		"in":  {fmt.Sprintf("state:%s county:%s", tract.State, tract.County)},
	}
	if c.key != "" {
		params.Set("key", c.key)
	}

	body, err := c.get(ctx, c.acsURL+"?"+params.Encode())
	if err != nil {
		return nil, eris.Wrap(err, "census: acs query")
	}

	var rows [][]string
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, eris.Wrap(err, "census: parse acs response")
	}
	if len(rows) < 2 || len(rows[1]) < 5 {
		return nil, eris.New("census: empty acs result")
	}

	row := rows[1]
	d := &Demographics{
		Population:       atoiSafe(row[0]),
		MedianIncome:     atoiSafe(row[1]),
		Households:       atoiSafe(row[2]),
		RenterHouseholds: atoiSafe(row[3]),
	}
	if v, err := strconv.ParseFloat(row[4], 64); err == nil {
		d.AvgHouseholdSize = v
	}
	return d, nil
}

func (c *client) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("returned status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// atoiSafe parses an integer, treating ACS sentinel negatives and garbage as
// zero so callers can apply their own fallbacks.
func atoiSafe(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
