// Package web provides the HTTP server and JSON handlers for the import
// wizard API.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/arvo-app/importer/internal/config"
	"github.com/arvo-app/importer/internal/core"
	"github.com/arvo-app/importer/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP server for the import service.
type Server struct {
	service *core.Service
	history *store.HistoryStore
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a Server. history may be nil when no database is
// wired (the history endpoints then return 503).
func NewServer(service *core.Service, history *store.HistoryStore, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		history: history,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

	s.router.Use(securityHeaders)

	if s.cfg.Rate.Enabled {
		limiter := newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/schemas", s.handleListSchemas)

		// Wizard session lifecycle
		r.Group(func(r chi.Router) {
			// File uploads get a tighter rate bucket
			if s.cfg.Rate.Enabled {
				uploadLimiter := newRateLimiter(s.cfg.Rate.UploadLimit, time.Minute)
				r.Use(uploadLimiter.middleware)
			}
			r.Post("/imports", s.handleStartImport)
		})

		r.Get("/imports/{sessionID}", s.handleGetSession)
		r.Post("/imports/{sessionID}/mapping", s.handleConfirmMapping)
		r.Get("/imports/{sessionID}/review", s.handleReview)
		r.Post("/imports/{sessionID}/submit", s.handleSubmit)
		r.Post("/imports/{sessionID}/reset", s.handleResetSession)

		// Import history
		r.Get("/history", s.handleListHistory)
		r.Get("/history/{id}", s.handleGetHistory)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
