package handler

import (
	"crypto/subtle"
	"net/http"

	"scan-station/internal/domain"
)

// APIKeyMiddleware guards the API with a static key carried in the X-API-Key
// header. An empty configured key disables the check; the station is then
// open on its bind address.
func APIKeyMiddleware(apiKey string, logger domain.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			provided := r.Header.Get("X-API-Key")
			if provided == "" {
				writeError(w, http.StatusUnauthorized, "X-API-Key header required")
				return
			}
			if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
				logger.Warn("rejected request with bad api key", "path", r.URL.Path, "remote", r.RemoteAddr)
				writeError(w, http.StatusUnauthorized, "invalid api key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
