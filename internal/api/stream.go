package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/colony/internal/engine"
)

const (
	streamCatchUp   = 50
	streamBuffer    = 64
	streamHeartbeat = 15 * time.Second
	writeTimeout    = 5 * time.Second
)

// handleStream upgrades to a websocket and pushes every colony event as a
// JSON text frame, starting with the latest streamCatchUp events.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	select {
	case s.streamConns <- struct{}{}:
		defer func() { <-s.streamConns }()
	default:
		http.Error(w, "too many stream connections", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("stream upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ch := s.Colony.Subscribe(streamBuffer)
	defer s.Colony.Unsubscribe(ch)

	for _, e := range s.Colony.RecentEvents(streamCatchUp) {
		if err := writeEvent(conn, e); err != nil {
			return
		}
	}
	slog.Info("stream client connected", "remote", r.RemoteAddr)

	// The reader only notices the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return
			}
			if err := writeEvent(conn, e); err != nil {
				return
			}
		case <-heartbeat.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			slog.Info("stream client disconnected", "remote", r.RemoteAddr)
			return
		}
	}
}

func writeEvent(conn *websocket.Conn, e engine.Event) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(e)
}
