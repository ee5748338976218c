package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/washlytics/siteiq/internal/analysis"
	"github.com/washlytics/siteiq/internal/fetch"
	"github.com/washlytics/siteiq/internal/model"
	"github.com/washlytics/siteiq/internal/store"
	"github.com/washlytics/siteiq/pkg/geocode"
)

type stubGeocoder struct{}

func (stubGeocoder) Resolve(_ context.Context, address string) (*geocode.Result, error) {
	if strings.Contains(address, "nowhere") {
		return nil, geocode.ErrLocationNotFound
	}
	return &geocode.Result{
		Latitude:         30.2672,
		Longitude:        -97.7431,
		FormattedAddress: address,
		Source:           "census",
		Matched:          true,
	}, nil
}

func newTestEnv(t *testing.T) *env {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "siteiq.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	svc := analysis.NewService(analysis.Config{
		Geocoder: stubGeocoder{},
		Fetchers: &fetch.Fetchers{
			Competitors:  fetch.NewCompetitorFetcher(nil, 3200, nil),
			Demographics: fetch.NewDemographicsFetcher(nil, nil),
			RealEstate:   fetch.NewRealEstateFetcher(nil, 0.5, nil),
			Traffic:      fetch.NewTrafficFetcher(),
		},
		Store: st,
	})
	return &env{Service: svc, Store: st}
}

func TestServeMux_Health(t *testing.T) {
	mux := newServeMux(newTestEnv(t))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServeMux_Analyze(t *testing.T) {
	mux := newServeMux(newTestEnv(t))

	body := `{"address":"600 Congress Ave, Austin, TX","tier_key":"basic_scout","user_id":"user-1"}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/analyze", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)

	var preview model.PreviewReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preview))
	assert.Equal(t, "basic_scout", preview.TierKey)
	assert.NotEmpty(t, preview.BasicInfo.OverallGrade)
	assert.NotEmpty(t, preview.AnalysisID)
}

func TestServeMux_Analyze_BadRequests(t *testing.T) {
	mux := newServeMux(newTestEnv(t))

	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid json", `{not json`, http.StatusBadRequest},
		{"missing address", `{"tier_key":"basic_scout"}`, http.StatusBadRequest},
		{"bad tier", `{"address":"x","tier_key":"platinum"}`, http.StatusBadRequest},
		{"unresolvable address", `{"address":"nowhere at all","tier_key":"basic_scout"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/analyze", strings.NewReader(tt.body)))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestServeMux_QuoteAfterAnalyze(t *testing.T) {
	mux := newServeMux(newTestEnv(t))

	body := `{"address":"600 Congress Ave, Austin, TX","tier_key":"competitor_intel","user_id":"user-1"}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/analyze", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/v1/quote?address=600+Congress+Ave,+Austin,+TX&tier=competitor_intel&user=user-1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var quote struct {
		DiscountRate float64 `json:"discount_rate"`
		FinalPrice   float64 `json:"final_price"`
		SameUser     bool    `json:"same_user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	assert.True(t, quote.SameUser)
	// same user, fresh analysis: 0.3 off $99
	assert.InDelta(t, 0.3, quote.DiscountRate, 0.0001)
	assert.InDelta(t, 69.30, quote.FinalPrice, 0.0001)
}

func TestServeMux_Quote_NotCached(t *testing.T) {
	mux := newServeMux(newTestEnv(t))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/quote?address=nothing&tier=basic_scout", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServeMux_Report(t *testing.T) {
	mux := newServeMux(newTestEnv(t))

	body := `{"address":"600 Congress Ave, Austin, TX","tier_key":"full_enterprise"}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/analyze", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var preview model.PreviewReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preview))

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/report/"+preview.AnalysisID, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF", rec.Body.String()[:4])
}

func TestServeMux_Report_NotFound(t *testing.T) {
	mux := newServeMux(newTestEnv(t))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/report/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
