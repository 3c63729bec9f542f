package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contact-relay/internal/models"
)

func TestSupabaseStoreInsert(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/contact_messages", r.URL.Path)
		assert.Equal(t, "service-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
		assert.Equal(t, "return=minimal", r.Header.Get("Prefer"))

		var rows []map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&rows))
		if assert.Len(t, rows, 1) {
			assert.Equal(t, "Jane", rows[0]["name"])
			assert.Equal(t, "jane@example.com", rows[0]["email"])
			assert.Equal(t, "Mozilla/5.0", rows[0]["user_agent"])
			assert.Equal(t, "203.0.113.7", rows[0]["ip_address"])
		}

		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	cfg := baseConfig()
	cfg.SupabaseURL = srv.URL
	cfg.SupabaseKey = "service-key"

	store, err := NewContactStore(cfg)
	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, "supabase", store.Name())

	msg := models.NewContactMessage(
		models.ContactSubmission{Name: "Jane", Email: "jane@example.com", Message: "Hello there, friend"},
		models.RequestMeta{UserAgent: "Mozilla/5.0", IPAddress: "203.0.113.7"},
	)
	require.NoError(t, store.Insert(context.Background(), msg))
}

func TestSupabaseStoreInsertError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid API key"}`))
	}))
	defer srv.Close()

	cfg := baseConfig()
	cfg.SupabaseURL = srv.URL
	cfg.SupabaseKey = "bad"

	err := NewSupabaseStore(cfg).Insert(context.Background(), &models.ContactMessage{Name: "Jane"})
	assert.ErrorContains(t, err, "status 401")
}

func TestSupabaseStorePing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "id", r.URL.Query().Get("select"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	cfg := baseConfig()
	cfg.SupabaseURL = srv.URL
	cfg.SupabaseKey = "key"

	assert.NoError(t, NewSupabaseStore(cfg).Ping(context.Background()))
}

func TestNewContactStoreUnconfigured(t *testing.T) {
	store, err := NewContactStore(baseConfig())
	require.NoError(t, err)
	assert.Nil(t, store)
}

func TestPostgresDSN(t *testing.T) {
	dsn, err := postgresDSN("postgres://app:pw@db.internal:5432/contact?sslmode=disable")
	require.NoError(t, err)
	assert.Contains(t, dsn, "host='db.internal'")
	assert.Contains(t, dsn, "port='5432'")
	assert.Contains(t, dsn, "dbname='contact'")
	assert.Contains(t, dsn, "user='app'")
	assert.Contains(t, dsn, "sslmode='disable'")

	raw := "host=localhost user=app dbname=contact"
	dsn, err = postgresDSN(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, dsn)
}
