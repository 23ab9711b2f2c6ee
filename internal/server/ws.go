package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"git.home.luguber.info/inful/sitebuilder/internal/events"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The editor UI is served from its own origin; tenancy is enforced by
	// the session lookup, not the Origin header.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsEvent is the multiplexed frame sent to editor clients.
type wsEvent struct {
	Kind    string `json:"kind"` // notice, change, save
	Payload any    `json:"payload"`
}

const wsWriteTimeout = 5 * time.Second

// handleSessionEvents streams notices, document changes, and save results
// for one session over a websocket.
func (s *Server) handleSessionEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", logfields.Error(err))
		return
	}
	defer conn.Close()

	notices, unsubNotices := events.Subscribe[events.Notice](s.bus, 16)
	defer unsubNotices()
	changes, unsubChanges := events.Subscribe[events.DocumentChanged](s.bus, 16)
	defer unsubChanges()
	saves, unsubSaves := events.Subscribe[events.SaveCompleted](s.bus, 16)
	defer unsubSaves()

	// Reads are discarded; the stream is one-way. The read loop exists to
	// observe the close handshake.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	sessionID := sess.ID()
	s.logger.Debug("Event stream opened", logfields.Session(sessionID))

	for {
		var evt wsEvent
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case n, ok := <-notices:
			if !ok {
				return
			}
			if n.SessionID != sessionID {
				continue
			}
			evt = wsEvent{Kind: "notice", Payload: n}
		case c, ok := <-changes:
			if !ok {
				return
			}
			if c.SessionID != sessionID {
				continue
			}
			evt = wsEvent{Kind: "change", Payload: c}
		case sv, ok := <-saves:
			if !ok {
				return
			}
			if sv.SessionID != sessionID {
				continue
			}
			evt = wsEvent{Kind: "save", Payload: sv}
		}

		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(evt); err != nil {
			s.logger.Debug("Event stream closed", logfields.Session(sessionID), logfields.Error(err))
			return
		}
	}
}
