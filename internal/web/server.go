// Package web provides the HTTP boundary for the spreadsheet import
// service: file and URL driven imports, table truncation, and health.
package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/archbyuk/dermacare-engine-sub000/internal/config"
	"github.com/archbyuk/dermacare-engine-sub000/internal/importer"
	"github.com/archbyuk/dermacare-engine-sub000/internal/storage"
	"github.com/archbyuk/dermacare-engine-sub000/internal/web/middleware"
)

// Server is the HTTP server in front of the import service.
type Server struct {
	service *importer.Service
	fetcher *importer.Fetcher
	pool    *storage.Pool
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
}

// NewServer wires the import service and its fetcher into a chi router.
func NewServer(service *importer.Service, fetcher *importer.Fetcher, pool *storage.Pool, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		fetcher: fetcher,
		pool:    pool,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/tables", s.handleListTables)
		r.Post("/import", s.handleImport)
		r.Post("/truncate", s.handleTruncate)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", addr)
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
