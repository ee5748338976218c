package event

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookPublisher_PostsPayload(t *testing.T) {
	var received AnalysisCompleted
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewWebhook(srv.URL)
	ev := AnalysisCompleted{
		AnalysisID: "a-123",
		Address:    "600 Congress Ave, Austin, TX",
		Grade:      "A-",
		Score:      80,
		Timestamp:  time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}

	require.NoError(t, p.Publish(context.Background(), ev))
	assert.Equal(t, ev, received)
}

func TestWebhookPublisher_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewWebhook(srv.URL).Publish(context.Background(), AnalysisCompleted{AnalysisID: "a-1"})
	assert.Error(t, err)
}

func TestNewWebhook_EmptyURLIsNop(t *testing.T) {
	p := NewWebhook("")
	assert.IsType(t, NopPublisher{}, p)
	assert.NoError(t, p.Publish(context.Background(), AnalysisCompleted{}))
}
