package middleware

import (
	"crypto/sha256"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/edvin/branchbox/internal/api/response"
)

// Auth returns a middleware that checks the X-API-Key header (or a bearer
// token) against bcrypt hashes. With no hashes every request passes.
func Auth(hashes []string) func(http.Handler) http.Handler {
	keys := &keyChecker{hashes: hashes}
	return func(next http.Handler) http.Handler {
		if len(hashes) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := extractAPIKey(r)
			if key == "" {
				response.WriteError(w, http.StatusUnauthorized, "missing API key")
				return
			}
			if !keys.valid(key) {
				response.WriteError(w, http.StatusUnauthorized, "invalid API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func extractAPIKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return token
	}
	return ""
}

// keyChecker remembers keys that already matched so bcrypt runs once per key.
type keyChecker struct {
	hashes   []string
	verified sync.Map
}

func (c *keyChecker) valid(key string) bool {
	digest := sha256.Sum256([]byte(key))
	if _, ok := c.verified.Load(digest); ok {
		return true
	}
	for _, h := range c.hashes {
		if bcrypt.CompareHashAndPassword([]byte(h), []byte(key)) == nil {
			c.verified.Store(digest, struct{}{})
			return true
		}
	}
	return false
}
