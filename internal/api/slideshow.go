// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.opentelemetry.io/otel/trace"

	xglog "github.com/CMRapp/Slideshow-sub000/internal/log"
	"github.com/CMRapp/Slideshow-sub000/internal/slideshow"
	"github.com/CMRapp/Slideshow-sub000/internal/telemetry"
)

const maxControlBody = 1 << 10

// flag names a boolean engine input settable over HTTP and websocket.
type flag string

const (
	flagPlaying flag = "playing"
	flagHovered flag = "hovered"
	flagVisible flag = "visible"
)

// flagRequest is the body of PUT /api/v1/slideshow/{playing,hovered,visibility}.
type flagRequest struct {
	Value *bool `json:"value"`
}

func (s *Server) handleGetView(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, "next", s.ctrl.Next)
}

func (s *Server) handlePrevious(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, "previous", s.ctrl.Previous)
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, "retry", s.ctrl.Retry)
}

func (s *Server) handleFlag(f flag) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req flagRequest
		dec := json.NewDecoder(io.LimitReader(r.Body, maxControlBody))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, fmt.Errorf("invalid request body: %w", err))
			return
		}
		if req.Value == nil {
			writeError(w, errors.New(`missing "value"`))
			return
		}
		value := *req.Value
		s.respond(w, r, string(f), func() (slideshow.View, error) {
			return s.applyFlag(f, value)
		})
	}
}

func (s *Server) applyFlag(f flag, value bool) (slideshow.View, error) {
	switch f {
	case flagPlaying:
		return s.ctrl.SetPlaying(value)
	case flagHovered:
		return s.ctrl.SetHovered(value)
	case flagVisible:
		return s.ctrl.SetVisible(value)
	default:
		return slideshow.View{}, fmt.Errorf("unknown control %q", f)
	}
}

// respond runs a control action and writes the resulting view.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, action string, fn func() (slideshow.View, error)) {
	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(telemetry.ControlAttributes(action)...)

	view, err := fn()
	if err != nil {
		telemetry.RecordError(span, err)
		logger := xglog.WithComponentFromContext(r.Context(), "api")
		logger.Warn().Err(err).
			Str(xglog.FieldEvent, "control.rejected").
			Str("action", action).
			Msg("slideshow control rejected")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleConfigReload(w http.ResponseWriter, r *http.Request) {
	if s.reloader == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "config reload not available"})
		return
	}
	if err := s.reloader.Reload(r.Context()); err != nil {
		logger := xglog.WithComponentFromContext(r.Context(), "config")
		logger.Warn().Err(err).Str(xglog.FieldEvent, "config.reload_failed").Msg("config reload rejected")
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
}
