package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertPostsPayload(t *testing.T) {
	var payload alertPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := New(Config{WebhookURL: server.URL, WebhookTimeoutSeconds: 2})
	n.Alert(context.Background(), "risk halt", "daily loss limit breached")

	assert.Equal(t, "risk halt", payload.Subject)
	assert.Equal(t, "daily loss limit breached", payload.Message)
	assert.False(t, payload.Timestamp.IsZero())
}

func TestAlertWithoutWebhookDoesNotPanic(t *testing.T) {
	n := New(Config{WebhookTimeoutSeconds: 2})
	n.Alert(context.Background(), "subject", "message")

	var nilNotifier *Notifier
	nilNotifier.Alert(context.Background(), "subject", "message")
}

func TestAlertSwallowsServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	n := New(Config{WebhookURL: server.URL, WebhookTimeoutSeconds: 2})
	n.Alert(context.Background(), "subject", "message")
}
