package analytics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewfunnel/funnel/domain/service"
	"github.com/reviewfunnel/funnel/internal/config"
	"github.com/reviewfunnel/funnel/internal/log"
)

func TestPostHog_Capture(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/capture/", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewPostHog(config.NewEndpoint(srv.URL).With(config.WithAPIKey("phc_1"), config.WithMaxRetries(0)))
	client.now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }

	err := client.Capture(context.Background(), service.AnalyticsEvent{
		Name:       "signup_completed",
		DistinctID: "user-3",
		Properties: map[string]any{"business": "joe-s-auto"},
	})
	require.NoError(t, err)

	assert.Equal(t, "phc_1", got["api_key"])
	assert.Equal(t, "signup_completed", got["event"])
	assert.Equal(t, "user-3", got["distinct_id"])
	assert.Equal(t, "2026-05-01T12:00:00Z", got["timestamp"])
	assert.Equal(t, map[string]any{"business": "joe-s-auto"}, got["properties"])
}

func TestPostHog_AnonymousAndErrors(t *testing.T) {
	var distinct string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body captureRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		distinct = body.DistinctID
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewPostHog(config.NewEndpoint(srv.URL).With(config.WithAPIKey("k"), config.WithMaxRetries(0)))

	err := client.Capture(context.Background(), service.AnalyticsEvent{Name: "lead_captured"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Equal(t, "anonymous", distinct)
	assert.Error(t, client.Capture(context.Background(), service.AnalyticsEvent{}))
}

func TestNew_FallsBackToNoop(t *testing.T) {
	a := New(config.NewEndpoint("https://example.com"), log.Discard())

	_, ok := a.(Noop)
	assert.True(t, ok)
	assert.NoError(t, a.Capture(context.Background(), service.AnalyticsEvent{Name: "x"}))

	_, ok = New(config.NewEndpoint("https://example.com").With(config.WithAPIKey("k")), log.Discard()).(*PostHog)
	assert.True(t, ok)
}
