// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	xglog "github.com/CMRapp/Slideshow-sub000/internal/log"
	"github.com/CMRapp/Slideshow-sub000/internal/slideshow"
)

const (
	wsWriteWait    = 10 * time.Second
	wsPongWait     = 60 * time.Second
	wsPingInterval = 30 * time.Second
	wsMaxMessage   = 512
)

// wsControl is a control message sent by the display page.
type wsControl struct {
	Type  string `json:"type"`
	Value bool   `json:"value"`
}

// handleWebSocket pushes every published view to the display and applies the
// control messages it sends back. The connection ends when the engine stops.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	logger := xglog.WithComponentFromContext(r.Context(), "ws")

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		logger.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	views, cancel := s.ctrl.Subscribe()
	defer cancel()

	id := s.displays.join()
	defer func() {
		if err := s.displays.leave(id); err != nil {
			logger.Debug().Err(err).Msg("could not release display flags")
		}
		logger.Debug().
			Str(xglog.FieldEvent, "ws.disconnected").
			Int("displays", s.displays.count()).
			Msg("display disconnected")
	}()

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		s.readControls(conn, id)
	}()
	defer func() {
		_ = conn.Close()
		<-readDone
	}()

	logger.Debug().Str(xglog.FieldEvent, "ws.connected").Msg("display connected")

	ping := time.NewTicker(s.pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-readDone:
			return
		case v, ok := <-views:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "slideshow stopped"),
					time.Now().Add(wsWriteWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(v); err != nil {
				logger.Debug().Err(err).Msg("websocket write failed")
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}

// readControls applies inbound control messages until the connection fails.
// It never writes: the resulting view reaches the client through the subscription.
func (s *Server) readControls(conn *websocket.Conn, id uint64) {
	conn.SetReadLimit(wsMaxMessage)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))

		var msg wsControl
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Debug().Err(err).Msg("ignoring malformed websocket message")
			continue
		}
		if _, err := s.applyControl(id, msg); err != nil {
			s.logger.Debug().Err(err).Str("type", msg.Type).Msg("websocket control rejected")
		}
	}
}

// applyControl runs one control message from display id. Hover and visibility
// go through the display registry so a page that disconnects releases them.
func (s *Server) applyControl(id uint64, msg wsControl) (slideshow.View, error) {
	switch msg.Type {
	case "next":
		return s.ctrl.Next()
	case "previous":
		return s.ctrl.Previous()
	case "retry":
		return s.ctrl.Retry()
	case string(flagPlaying):
		return s.ctrl.SetPlaying(msg.Value)
	case string(flagHovered), string(flagVisible):
		return s.displays.report(id, flag(msg.Type), msg.Value)
	default:
		return slideshow.View{}, errUnknownControl(msg.Type)
	}
}

type errUnknownControl string

func (e errUnknownControl) Error() string {
	return fmt.Sprintf("unknown control message type %q", string(e))
}

// checkOrigin accepts same-origin pages and configured origins.
// Requests without an Origin header come from non-browser clients and pass.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	trimmed := strings.TrimSuffix(origin, "/")
	for _, allowed := range s.cfg.API.AllowedOrigins {
		allowed = strings.TrimSuffix(strings.TrimSpace(allowed), "/")
		if allowed == "*" || allowed == trimmed {
			return true
		}
	}
	return false
}
