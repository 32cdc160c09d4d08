package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/farmreports/internal/config"
)

func TestWebhookClient_SendDigest(t *testing.T) {
	var received DigestRequest
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg-1","status":"queued"}`))
	}))
	defer server.Close()

	client := NewClient(config.NotifyConfig{WebhookURL: server.URL, Token: "secret"})
	resp, err := client.SendDigest(context.Background(), DigestRequest{
		Title:    "Weekly farm digest",
		Period:   "25 Mar 2024 - 31 Mar 2024",
		Sections: []DigestSection{{Report: "all-animal", Title: "Animal Activity Report", Lines: []string{"Net Change: +4"}}},
	})
	require.NoError(t, err)

	assert.Equal(t, "msg-1", resp.ID)
	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "Weekly farm digest", received.Title)
	require.Len(t, received.Sections, 1)
	assert.Equal(t, "all-animal", received.Sections[0].Report)
}

func TestWebhookClient_ErrorPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad digest","code":4001}}`))
	}))
	defer server.Close()

	_, err := NewClient(config.NotifyConfig{WebhookURL: server.URL}).SendDigest(context.Background(), DigestRequest{Title: "x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "code=4001")
	assert.Contains(t, err.Error(), "bad digest")
}

func TestWebhookClient_NotConfigured(t *testing.T) {
	_, err := NewClient(config.NotifyConfig{}).SendDigest(context.Background(), DigestRequest{})

	assert.ErrorIs(t, err, ErrNotConfigured)
}
