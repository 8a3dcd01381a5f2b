package httpserver

import (
	"net/http"

	"github.com/IDINaXI/Nutrio/internal/config"
	"github.com/rs/cors"
)

// CORSMiddleware applies CORS for the origins in CORS_ALLOWED_ORIGINS.
func CORSMiddleware(cfg *config.Config, next http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: cfg.CORSAllowCredentials,
		MaxAge:           600,
	})
	return c.Handler(next)
}
