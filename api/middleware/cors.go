package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

const corsMaxAge = 300

var defaultCORSOrigins = []string{"http://localhost:3000"}

// CORS applies the admin front-end origin policy. Blank origins from the
// environment are skipped; an empty list falls back to the local dev origin.
func CORS(origins []string) func(http.Handler) http.Handler {
	allowed := make([]string, 0, len(origins))
	for _, origin := range origins {
		if origin = strings.TrimRight(strings.TrimSpace(origin), "/"); origin != "" {
			allowed = append(allowed, origin)
		}
	}
	if len(allowed) == 0 {
		allowed = defaultCORSOrigins
	}

	return cors.New(cors.Options{
		AllowedOrigins: allowed,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept", "Authorization", "Content-Type",
			idempotencyHeader, requestIDHeader,
		},
		ExposedHeaders: []string{
			requestIDHeader, replayedHeader, "Retry-After", "Content-Disposition",
		},
		AllowCredentials: true,
		MaxAge:           corsMaxAge,
	}).Handler
}
