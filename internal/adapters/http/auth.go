package httpadapter

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/kirillkom/medreport-assistant/internal/core/domain"
)

const apiKeyHeader = "X-API-Key"

var errInvalidAPIKey = errors.New("invalid api key")

// authMiddleware requires X-API-Key to equal the configured key. With no key
// configured every request is rejected.
func (rt *Router) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isAuthorizedAPIKey(r.Header.Get(apiKeyHeader), rt.apiKey) {
			writeError(w, r, domain.WrapError(domain.ErrUnauthorized, "http.auth", errInvalidAPIKey))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isAuthorizedAPIKey(got, expected string) bool {
	if got == "" || expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(expected)) == 1
}
