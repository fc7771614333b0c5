package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func hashKey(t *testing.T, key string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAuth_MissingKey(t *testing.T) {
	handler := Auth([]string{hashKey(t, "secret")})(okHandler())

	req := httptest.NewRequest("GET", "/api/v1/envs", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]string
	err := json.Unmarshal(rec.Body.Bytes(), &body)
	assert.NoError(t, err)
	assert.Equal(t, "missing API key", body["error"])
}

func TestAuth_InvalidKey(t *testing.T) {
	handler := Auth([]string{hashKey(t, "secret")})(okHandler())

	req := httptest.NewRequest("GET", "/api/v1/envs", nil)
	req.Header.Set("X-API-Key", "guess")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_ValidKey(t *testing.T) {
	handler := Auth([]string{hashKey(t, "other"), hashKey(t, "secret")})(okHandler())

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("GET", "/api/v1/envs", nil)
		req.Header.Set("X-API-Key", "secret")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestAuth_BearerToken(t *testing.T) {
	handler := Auth([]string{hashKey(t, "secret")})(okHandler())

	req := httptest.NewRequest("GET", "/api/v1/envs", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_NoHashesAllowsAll(t *testing.T) {
	handler := Auth(nil)(okHandler())

	req := httptest.NewRequest("GET", "/api/v1/envs", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExtractAPIKey(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"bearer token", "Bearer bb_abc123", "bb_abc123"},
		{"empty", "", ""},
		{"no prefix", "bb_abc123", ""},
		{"basic auth ignored", "Basic dXNlcjpwYXNz", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, extractAPIKey(req))
		})
	}
}
