package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func googleOKServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "OK",
			"results": [{
				"geometry": {"location": {"lat": 30.2672, "lng": -97.7431}},
				"formatted_address": "123 Main St, Austin, TX 78701, USA",
				"place_id": "ChIJtest"
			}]
		}`))
	}))
}

func censusOKServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"result": {"addressMatches": [{
				"coordinates": {"x": -97.7431, "y": 30.2672},
				"matchedAddress": "123 MAIN ST, AUSTIN, TX, 78701"
			}]}
		}`))
	}))
}

func emptyServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("key") != "" {
			w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
			return
		}
		w.Write([]byte(`{"result": {"addressMatches": []}}`))
	}))
}

func TestResolve_GooglePrimary(t *testing.T) {
	srv := googleOKServer(t)
	defer srv.Close()

	c := NewClient(
		WithGoogleAPIKey("test-key"),
		WithBaseURLs(srv.URL, srv.URL),
	)

	result, err := c.Resolve(context.Background(), "123 Main St, Austin, TX")
	require.NoError(t, err)
	assert.True(t, result.Matched)
	assert.Equal(t, "google", result.Source)
	assert.InDelta(t, 30.2672, result.Latitude, 1e-6)
	assert.InDelta(t, -97.7431, result.Longitude, 1e-6)
	assert.Equal(t, "ChIJtest", result.PlaceID)
}

func TestResolve_CensusFallbackWhenGoogleUnconfigured(t *testing.T) {
	srv := censusOKServer(t)
	defer srv.Close()

	c := NewClient(WithBaseURLs(srv.URL, srv.URL))

	result, err := c.Resolve(context.Background(), "123 Main St, Austin, TX")
	require.NoError(t, err)
	assert.True(t, result.Matched)
	assert.Equal(t, "census", result.Source)
}

func TestResolve_NotFound(t *testing.T) {
	srv := emptyServer()
	defer srv.Close()

	c := NewClient(
		WithGoogleAPIKey("test-key"),
		WithBaseURLs(srv.URL, srv.URL),
	)

	_, err := c.Resolve(context.Background(), "asdfghjkl nowhere")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrLocationNotFound))
}

func TestResolve_EmptyAddress(t *testing.T) {
	c := NewClient()
	_, err := c.Resolve(context.Background(), "   ")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrLocationNotFound))
}

func TestResolve_GoogleErrorFallsBackToCensus(t *testing.T) {
	googleSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer googleSrv.Close()

	censusSrv := censusOKServer(t)
	defer censusSrv.Close()

	c := NewClient(
		WithGoogleAPIKey("test-key"),
		WithBaseURLs(googleSrv.URL, censusSrv.URL),
	)

	result, err := c.Resolve(context.Background(), "123 Main St, Austin, TX")
	require.NoError(t, err)
	assert.Equal(t, "census", result.Source)
}
