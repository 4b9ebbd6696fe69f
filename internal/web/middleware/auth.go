package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/fixturelib/internal/config"
	"github.com/JonMunkholm/fixturelib/internal/core"
)

// APIKeyHeader carries the client's API key.
const APIKeyHeader = "X-API-Key"

var (
	missingKeyMessage = core.UserMessage{
		Message: "Missing API key",
		Action:  "Send your key in the " + APIKeyHeader + " header",
		Code:    "AUTH001",
	}
	invalidKeyMessage = core.UserMessage{
		Message: "Invalid API key",
		Action:  "Check the key with your administrator",
		Code:    "AUTH002",
	}
)

// APIKeyAuth returns middleware that validates the X-API-Key header against
// configured keys. If RequireAPIKey is false, all requests pass through.
// If RequireAPIKey is true but no keys are configured, all requests are rejected.
func APIKeyAuth(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.RequireAPIKey {
				next.ServeHTTP(w, r)
				return
			}

			apiKey := r.Header.Get(APIKeyHeader)
			if apiKey == "" {
				slog.Warn("auth: missing API key",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				)
				writeJSONError(w, http.StatusUnauthorized, missingKeyMessage)
				return
			}

			if !isValidAPIKey(apiKey, cfg.APIKeys) {
				slog.Warn("auth: invalid API key",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				)
				writeJSONError(w, http.StatusForbidden, invalidKeyMessage)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// isValidAPIKey checks key against every configured key in constant time,
// so the comparison time does not reveal which key (if any) matched.
func isValidAPIKey(key string, validKeys []string) bool {
	valid := 0
	for _, validKey := range validKeys {
		valid |= subtle.ConstantTimeCompare([]byte(key), []byte(validKey))
	}
	return valid == 1
}
