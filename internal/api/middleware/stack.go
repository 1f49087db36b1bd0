// SPDX-License-Identifier: MIT

// Package middleware provides the HTTP ingress stack for the slideshow API.
package middleware

import (
	xglog "github.com/CMRapp/Slideshow-sub000/internal/log"
	"github.com/go-chi/chi/v5"
)

// StackConfig configures the canonical HTTP ingress middleware stack.
type StackConfig struct {
	// CORS
	EnableCORS     bool
	AllowedOrigins []string

	// CSRF origin checks for state-changing requests
	EnableCSRF bool

	// Security headers
	EnableSecurityHeaders bool
	CSP                   string

	// Observability
	EnableMetrics  bool
	TracingService string // empty disables tracing
	EnableLogging  bool
}

// NewRouter constructs a chi router with the canonical middleware stack applied.
func NewRouter(cfg StackConfig) *chi.Mux {
	r := chi.NewRouter()
	ApplyStack(r, cfg)
	return r
}

// ApplyStack applies the canonical middleware stack to r.
// Rate limiting is applied per route group, not here.
func ApplyStack(r chi.Router, cfg StackConfig) {
	// 1. Recoverer (outermost safety net)
	r.Use(Recoverer)
	// 2. RequestID (correlation early)
	r.Use(RequestID)
	// 3. CORS (so OPTIONS and browser clients behave)
	if cfg.EnableCORS {
		r.Use(CORS(cfg.AllowedOrigins))
	}
	// 4. CSRF
	if cfg.EnableCSRF {
		r.Use(CSRFProtection(cfg.AllowedOrigins))
	}
	// 5. Security headers
	if cfg.EnableSecurityHeaders {
		r.Use(SecurityHeaders(cfg.CSP))
	}
	// 6. Metrics
	if cfg.EnableMetrics {
		r.Use(Metrics())
	}
	// 7. Tracing
	if cfg.TracingService != "" {
		r.Use(OTelHTTP(cfg.TracingService))
	}
	// 8. Logging (innermost, captures handler latency)
	if cfg.EnableLogging {
		r.Use(xglog.Middleware())
	}
}
