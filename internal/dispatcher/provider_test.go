package dispatcher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/summitops/event-pay-gateway/internal/model"
)

func TestMailerLiteProvider_Push(t *testing.T) {
	var got map[string]any
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/subscribers", r.URL.Path)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	p := NewMailerLiteProvider("mailerlite", srv.URL, "ml-key", "grp-1", 1000, 3, 1000)

	err := p.Push(context.Background(), model.Contact{
		FullName:  "Maria Silva",
		Email:     "maria@example.com",
		Phone:     "912 345 678",
		UTMSource: "instagram",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer ml-key", auth)
	assert.Equal(t, "maria@example.com", got["email"])
	assert.Equal(t, []any{"grp-1"}, got["groups"])

	fields, ok := got["fields"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Maria Silva", fields["name"])
	assert.Equal(t, "+351912345678", fields["phone"], "national numbers get the country prefix")
	assert.Equal(t, "instagram", fields["utm_source"])
}

func TestMailerLiteProvider_Non2xxTripsBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewMailerLiteProvider("mailerlite", srv.URL, "ml-key", "", 1000, 2, 60000)

	lead := model.Contact{Email: "maria@example.com"}
	require.Error(t, p.Push(context.Background(), lead))
	require.Error(t, p.Push(context.Background(), lead))

	assert.False(t, p.Ready(), "two consecutive failures open the breaker")
}

func TestWebhookProvider_Push(t *testing.T) {
	var got model.Contact
	var key string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key = r.Header.Get("X-API-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewWebhookProvider("crm", srv.URL, "hook-key", 1000, 3, 1000)

	lead := model.Contact{
		EventID:   "0f4b1c2e-8a3d-4f6a-9b1e-2c3d4e5f6a7b",
		FullName:  "Maria Silva",
		Email:     "maria@example.com",
		UTMMedium: "social",
	}
	require.NoError(t, p.Push(context.Background(), lead))

	assert.Equal(t, "hook-key", key)
	assert.Equal(t, lead, got)
}
