// SPDX-License-Identifier: MIT

// Package api serves the slideshow display page and its control surface.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/CMRapp/Slideshow-sub000/internal/api/middleware"
	"github.com/CMRapp/Slideshow-sub000/internal/config"
	xglog "github.com/CMRapp/Slideshow-sub000/internal/log"
	"github.com/CMRapp/Slideshow-sub000/internal/slideshow"
)

// Controller is the slice of the playback engine the HTTP surface drives.
type Controller interface {
	Snapshot() slideshow.View
	Subscribe() (<-chan slideshow.View, func())
	Next() (slideshow.View, error)
	Previous() (slideshow.View, error)
	Retry() (slideshow.View, error)
	SetPlaying(playing bool) (slideshow.View, error)
	SetHovered(hovered bool) (slideshow.View, error)
	SetVisible(visible bool) (slideshow.View, error)
}

// ConfigReloader re-reads configuration on demand.
type ConfigReloader interface {
	Reload(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler interface {
	ServeHealth(w http.ResponseWriter, r *http.Request)
	ServeReady(w http.ResponseWriter, r *http.Request)
}

// Server wires the engine controller into a chi router.
type Server struct {
	cfg      config.AppConfig
	ctrl     Controller
	health   HealthHandler
	reloader ConfigReloader
	logger   zerolog.Logger
	displays *displays

	upgrader     websocket.Upgrader
	pingInterval time.Duration
}

// Option customises a Server.
type Option func(*Server)

// WithHealth mounts /healthz and /readyz.
func WithHealth(h HealthHandler) Option {
	return func(s *Server) { s.health = h }
}

// WithConfigReloader enables POST /api/v1/config/reload.
func WithConfigReloader(r ConfigReloader) Option {
	return func(s *Server) { s.reloader = r }
}

// WithLogger overrides the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New builds a Server. ctrl must not be nil.
func New(cfg config.AppConfig, ctrl Controller, opts ...Option) *Server {
	s := &Server{
		cfg:          cfg,
		ctrl:         ctrl,
		displays:     newDisplays(ctrl),
		logger:       xglog.WithComponent("api"),
		pingInterval: wsPingInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Handler returns the fully wired HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := middleware.NewRouter(middleware.StackConfig{
		EnableCORS:            true,
		AllowedOrigins:        s.cfg.API.AllowedOrigins,
		EnableCSRF:            true,
		EnableSecurityHeaders: true,
		EnableMetrics:         true,
		TracingService:        tracingService(s.cfg),
		EnableLogging:         true,
	})

	if s.health != nil {
		r.Get("/healthz", s.health.ServeHealth)
		r.Get("/readyz", s.health.ServeReady)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/slideshow", func(r chi.Router) {
			r.Get("/", s.handleGetView)
			r.Get("/ws", s.handleWebSocket)

			r.Group(func(r chi.Router) {
				r.Use(middleware.ControlRateLimit(s.cfg.API.RateLimit.Requests, s.cfg.API.RateLimit.Window))
				r.Post("/next", s.handleNext)
				r.Post("/previous", s.handlePrevious)
				r.Post("/retry", s.handleRetry)
				r.Put("/playing", s.handleFlag(flagPlaying))
				r.Put("/hovered", s.handleFlag(flagHovered))
				r.Put("/visibility", s.handleFlag(flagVisible))
			})
		})

		r.With(middleware.ReloadRateLimit()).Post("/config/reload", s.handleConfigReload)
	})

	s.mountDisplay(r)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { writeNotFound(w) })

	return r
}

func tracingService(cfg config.AppConfig) string {
	if !cfg.Telemetry.Enabled {
		return ""
	}
	return "slideshowd"
}
