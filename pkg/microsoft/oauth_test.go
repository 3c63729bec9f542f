package microsoft

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCreds = Credentials{TenantID: "tenant-1", ClientID: "client-1", ClientSecret: "secret"}

func TestTokenIsCachedAcrossCallers(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/tenant-1/oauth2/v2.0/token", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "client-1", r.PostForm.Get("client_id"))
		assert.Equal(t, GraphScope, r.PostForm.Get("scope"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-123","token_type":"Bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	src := NewTokenSource(testCreds, Options{Authority: srv.URL + "/"})
	require.True(t, src.IsConfigured())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := src.Token(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "tok-123", token)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestTokenRefetchesShortLivedToken(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		// 有效期短於 refreshMargin，每次都要重新取得
		_, _ = w.Write([]byte(`{"access_token":"tok","expires_in":30}`))
	}))
	defer srv.Close()

	src := NewTokenSource(testCreds, Options{Authority: srv.URL})
	for i := 0; i < 2; i++ {
		_, err := src.Token(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestTokenErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		expect string
	}{
		{"rejected credentials", http.StatusUnauthorized, `{"error":"invalid_client"}`, "status: 401"},
		{"missing token", http.StatusOK, `{"token_type":"Bearer"}`, ErrEmptyToken.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewTokenSource(testCreds, Options{Authority: srv.URL}).Token(context.Background())
			assert.ErrorContains(t, err, tt.expect)
		})
	}
}

func TestIsConfigured(t *testing.T) {
	assert.False(t, NewTokenSource(Credentials{ClientID: "client", ClientSecret: "secret"}, Options{}).IsConfigured())
	assert.False(t, NewTokenSource(Credentials{TenantID: "tenant", ClientID: "client"}, Options{}).IsConfigured())
}
