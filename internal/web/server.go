// Package web provides the HTTP server for property CSV imports.
package web

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/propimport/internal/config"
	"github.com/JonMunkholm/propimport/internal/core"
	"github.com/JonMunkholm/propimport/internal/i18n"
	"github.com/JonMunkholm/propimport/internal/web/middleware"
)

// Importer runs or previews one import. *core.Importer satisfies it.
type Importer interface {
	RunEncoded(ctx context.Context, src io.Reader, encoding string) (*core.ImportResult, error)
	Preview(ctx context.Context, src io.Reader, encoding string) (*core.PreviewResponse, error)
	Locale() *i18n.Locale
}

// Pinger reports database reachability for the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP server for the import API.
type Server struct {
	cfg         *config.Config
	importer    Importer
	db          Pinger
	limiter     *core.ImportLimiter
	rateLimiter *middleware.RateLimiter
	router      *chi.Mux
	server      *http.Server
}

// NewServer creates a new Server instance.
func NewServer(cfg *config.Config, importer Importer, db Pinger, limiter *core.ImportLimiter) *Server {
	s := &Server{
		cfg:      cfg,
		importer: importer,
		db:       db,
		limiter:  limiter,
		router:   chi.NewRouter(),
	}
	if cfg.Rate.Enabled {
		s.rateLimiter = middleware.NewRateLimiter(cfg.Rate.ImportsPerMinute, cfg.Rate.Burst)
	}
	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Server.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if s.rateLimiter != nil {
				r.Use(s.rateLimiter.Handler)
			}
			r.Post("/properties/import", s.handleImport)
			r.Post("/properties/preview", s.handlePreview)
		})
	})
}

// Start begins listening for HTTP requests. It blocks until the server
// stops, and returns http.ErrServerClosed at once if Shutdown ran first.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if s.rateLimiter != nil {
		go s.rateLimiter.RunCleanup(ctx, time.Minute)
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting requests, then waits for running imports to
// finish or ctx to expire. It is safe to call from another goroutine, before
// or after Start.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	return s.limiter.WaitForDrain(ctx)
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
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON with the given status.
// Encoding errors are only logged since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
