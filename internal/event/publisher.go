// Package event delivers fire-and-forget notifications about completed
// analyses, keeping side effects out of the scoring core.
package event

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// AnalysisCompleted is the payload posted after an analysis is persisted.
type AnalysisCompleted struct {
	AnalysisID string    `json:"analysis_id"`
	Address    string    `json:"address"`
	Grade      string    `json:"grade"`
	Score      float64   `json:"score"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publisher delivers analysis events.
type Publisher interface {
	// Publish delivers one event. Delivery failures are the publisher's
	// problem; callers never fail an analysis over a lost event.
	Publish(ctx context.Context, ev AnalysisCompleted) error
}

// NopPublisher drops every event, used when no webhook is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, AnalysisCompleted) error { return nil }

// WebhookPublisher POSTs events as JSON to a configured URL.
type WebhookPublisher struct {
	url    string
	client *http.Client
}

// NewWebhook creates a WebhookPublisher, or a NopPublisher when url is empty.
func NewWebhook(url string) Publisher {
	if url == "" {
		return NopPublisher{}
	}
	return &WebhookPublisher{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *WebhookPublisher) Publish(ctx context.Context, ev AnalysisCompleted) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return eris.Wrap(err, "event: marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "event: create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "event: webhook request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		return eris.Errorf("event: webhook returned status %d", resp.StatusCode)
	}

	zap.L().Info("event: analysis completed published",
		zap.String("analysis_id", ev.AnalysisID),
		zap.String("grade", ev.Grade),
	)
	return nil
}
