package middleware

import (
	"net/http"

	"github.com/rs/cors"

	"cabletv-backend/internal/config"
)

// NewCORS builds the CORS layer for the operator dashboard frontends listed
// in server.cors_allowed_origins.
func NewCORS(cfg *config.Config) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins:   cfg.Server.CorsAllowedOrigins,
		AllowedMethods:   cfg.Server.CorsAllowedMethods,
		AllowedHeaders:   cfg.Server.CorsAllowedHeaders,
		AllowCredentials: true,
		// Browsers may cache preflight results for five minutes.
		MaxAge: 300,
	}
	return cors.New(opts).Handler
}
