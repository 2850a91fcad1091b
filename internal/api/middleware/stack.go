// SPDX-License-Identifier: MIT

// Package middleware provides the HTTP ingress stack shared by the display
// and admin routes.
package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/bardisplay/internal/audit"
	xglog "github.com/ManuGH/bardisplay/internal/log"
)

// StackConfig selects the optional layers of the ingress stack. Recovery,
// request ids and actor tagging are always on.
type StackConfig struct {
	AllowedOrigins []string // empty disables CORS

	EnableSecurityHeaders bool
	CSP                   string

	EnableMetrics  bool
	TracingService string // empty disables tracing
	EnableLogging  bool

	EnableRateLimit    bool
	RateLimitRPM       int
	RateLimitWhitelist []string

	// Audit receives rate limit rejections. May be nil.
	Audit *audit.Logger
}

// Chain returns the ingress middlewares, outermost first. The rate limit sits
// innermost so rejected requests still show up in metrics and access logs.
func Chain(cfg StackConfig) []func(http.Handler) http.Handler {
	chain := []func(http.Handler) http.Handler{Recoverer, RequestID, Actor}
	if len(cfg.AllowedOrigins) > 0 {
		chain = append(chain, CORS(cfg.AllowedOrigins))
	}
	if cfg.EnableSecurityHeaders {
		chain = append(chain, SecurityHeaders(cfg.CSP))
	}
	if cfg.EnableMetrics {
		chain = append(chain, Metrics())
	}
	if cfg.TracingService != "" {
		chain = append(chain, Tracing(cfg.TracingService))
	}
	if cfg.EnableLogging {
		chain = append(chain, xglog.Middleware())
	}
	if cfg.EnableRateLimit {
		chain = append(chain, RateLimit(RateLimitConfig{
			RequestLimit: cfg.RateLimitRPM,
			Whitelist:    cfg.RateLimitWhitelist,
			Audit:        cfg.Audit,
		}))
	}
	return chain
}

// NewRouter returns a chi router with Chain(cfg) installed.
func NewRouter(cfg StackConfig) *chi.Mux {
	r := chi.NewRouter()
	r.Use(Chain(cfg)...)
	return r
}
