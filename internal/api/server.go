// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package api serves the display feed, the admin endpoints and the uploaded media.
package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/bardisplay/internal/admin"
	"github.com/ManuGH/bardisplay/internal/api/middleware"
	"github.com/ManuGH/bardisplay/internal/audit"
	"github.com/ManuGH/bardisplay/internal/feed"
	"github.com/ManuGH/bardisplay/internal/health"
)

// ErrMissingDependency is returned by New when a required collaborator is nil.
var ErrMissingDependency = errors.New("api: missing dependency")

// Config holds the HTTP-facing settings.
type Config struct {
	UploadDir       string
	UploadURLPrefix string
	AllowedOrigins  []string

	RateLimitEnabled   bool
	RateLimitRPM       int
	AdminWriteRPM      int
	RateLimitWhitelist []string

	EnableMetrics  bool
	TracingService string
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	Feed   *feed.Assembler
	Admin  *admin.Service
	Health *health.Manager
	Audit  *audit.Logger
}

// Server owns the router.
type Server struct {
	cfg    Config
	feed   *feed.Assembler
	admin  *admin.Service
	health *health.Manager
	audit  *audit.Logger
	router chi.Router
}

// New validates deps and builds the routes.
func New(cfg Config, deps Deps) (*Server, error) {
	switch {
	case deps.Feed == nil:
		return nil, errors.Join(ErrMissingDependency, errors.New("feed"))
	case deps.Admin == nil:
		return nil, errors.Join(ErrMissingDependency, errors.New("admin"))
	case deps.Health == nil:
		return nil, errors.Join(ErrMissingDependency, errors.New("health"))
	}
	if deps.Audit == nil {
		deps.Audit = audit.NewLogger()
	}
	if cfg.UploadURLPrefix == "" {
		cfg.UploadURLPrefix = feed.DefaultURLPrefix
	}
	if !strings.HasSuffix(cfg.UploadURLPrefix, "/") {
		cfg.UploadURLPrefix += "/"
	}

	s := &Server{
		cfg:    cfg,
		feed:   deps.Feed,
		admin:  deps.Admin,
		health: deps.Health,
		audit:  deps.Audit,
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := middleware.NewRouter(middleware.StackConfig{
		AllowedOrigins:        s.cfg.AllowedOrigins,
		EnableSecurityHeaders: true,
		EnableMetrics:         s.cfg.EnableMetrics,
		TracingService:        s.cfg.TracingService,
		EnableLogging:         true,
		EnableRateLimit:       s.cfg.RateLimitEnabled,
		RateLimitRPM:          s.cfg.RateLimitRPM,
		RateLimitWhitelist:    s.cfg.RateLimitWhitelist,
		Audit:                 s.audit,
	})

	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)

	r.Route("/api", func(r chi.Router) {
		// Display client
		r.Get("/data", s.handleData)

		// Admin
		r.Group(func(r chi.Router) {
			if s.cfg.RateLimitEnabled && s.cfg.AdminWriteRPM > 0 {
				r.Use(middleware.AdminWriteLimit(s.cfg.AdminWriteRPM, s.cfg.RateLimitWhitelist, s.audit))
			}
			r.Get("/catalog", s.handleCatalog)
			r.Put("/order", s.handleReorder)
			r.Put("/windows", s.handleSetWindows)
			r.Put("/files/{name}/window", s.handleSetWindow)
			r.Delete("/files/{name}", s.handleDelete)
			r.Get("/settings", s.handleGetSettings)
			r.Put("/settings", s.handleUpdateSettings)
			r.Get("/override", s.handleGetOverride)
			r.Post("/override", s.handleOverride)
			r.Get("/override/presets", s.handlePresets)
		})
	})

	r.Handle(s.cfg.UploadURLPrefix+"*", http.StripPrefix(s.cfg.UploadURLPrefix, s.uploadsHandler()))
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}
