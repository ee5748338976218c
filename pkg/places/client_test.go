package places

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNearby_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "laundromat", r.URL.Query().Get("keyword"))
		assert.Equal(t, "3200", r.URL.Query().Get("radius"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "OK",
			"results": [
				{
					"name": "Spin City Laundry",
					"place_id": "p1",
					"rating": 4.5,
					"user_ratings_total": 120,
					"geometry": {"location": {"lat": 30.27, "lng": -97.74}}
				},
				{
					"name": "Suds & Duds",
					"place_id": "p2",
					"rating": 3.1,
					"user_ratings_total": 18,
					"geometry": {"location": {"lat": 30.26, "lng": -97.75}}
				}
			]
		}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	got, err := c.Nearby(context.Background(), 30.2672, -97.7431, 3200, "laundromat")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Spin City Laundry", got[0].Name)
	assert.Equal(t, 120, got[0].ReviewCount)
	assert.InDelta(t, 4.5, got[0].Rating, 1e-9)
}

func TestNearby_ZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	got, err := c.Nearby(context.Background(), 44.0, -110.0, 3200, "laundromat")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNearby_NoKey(t *testing.T) {
	c := NewClient("")
	_, err := c.Nearby(context.Background(), 30, -97, 3200, "laundromat")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key not configured")
}

func TestNearby_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "REQUEST_DENIED", "results": []}`))
	}))
	defer srv.Close()

	c := NewClient("bad-key", WithBaseURL(srv.URL))
	_, err := c.Nearby(context.Background(), 30, -97, 3200, "laundromat")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
}

func TestNearby_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := c.Nearby(context.Background(), 30, -97, 3200, "laundromat")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}
