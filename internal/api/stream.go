package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/hexisle/internal/engine"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = pongWait * 9 / 10
	catchUp      = 50 // Recent events replayed on connect
	streamBuffer = 256
)

// handleStream upgrades to a websocket and pushes every simulation event as
// one JSON text message. The client sends nothing but control frames.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.streamConns.Add(1) > maxStreamConns {
		s.streamConns.Add(-1)
		writeError(w, http.StatusServiceUnavailable, "too many stream connections")
		return
	}
	defer s.streamConns.Add(-1)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	events, cancel := s.Eng.Subscribe(streamBuffer)
	defer cancel()

	for _, ev := range s.Eng.Recent(catchUp) {
		if err := writeEvent(conn, ev); err != nil {
			return
		}
	}
	s.log.Info("stream client connected", "remote", r.RemoteAddr)

	// Reader: drains control frames and notices the client going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(conn, ev); err != nil {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-gone:
			s.log.Info("stream client disconnected", "remote", r.RemoteAddr)
			return
		case <-r.Context().Done():
			return
		}
	}
}

func writeEvent(conn *websocket.Conn, ev engine.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}
