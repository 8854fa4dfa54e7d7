package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lumewave/agency-site/internal/auth"
	"github.com/lumewave/agency-site/internal/config"
)

// Server represents the API server
type Server struct {
	config      *config.Config
	handler     http.Handler
	handlers    *Handlers
	server      *http.Server
	authManager *auth.AuthManager
	router      *chi.Mux
}

// NewServer creates a new API server. authManager must be non-nil; an
// unconfigured manager leaves admin routes open.
func NewServer(cfg *config.Config, svc Services, health *HealthChecker, authManager *auth.AuthManager) *Server {
	handlers := NewHandlers(svc, health, cfg.Server.BaseURL)
	router := SetupRoutes(handlers, authManager, cfg)

	return &Server{
		config:      cfg,
		handler:     router,
		handlers:    handlers,
		authManager: authManager,
		router:      router,
	}
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.handler,
		// Campaign saves carry base64 attachments; the write side covers
		// synchronous Insights runs triggered over HTTP.
		ReadTimeout:       time.Minute,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing
func (s *Server) Handler() http.Handler {
	return s.handler
}
