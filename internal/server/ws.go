package server

import (
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"
)

// handleEvents upgrades to a websocket and streams storage change events.
// On connect the client receives a snapshot event so it can render
// immediately, then live notifications as the hub publishes them.
//
//	@Summary  Stream storage change events
//	@Tags     events
//	@Router   /events [get]
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // CORS handled by middleware
	})
	if err != nil {
		s.log.Error("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()

	// Snapshot first so clients do not have to race an initial GET.
	snapshot := Event{Type: "snapshot"}
	if data, err := json.Marshal(snapshot); err == nil {
		if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
			return
		}
	}

	ch, unsub := s.hub.Subscribe()
	defer unsub()

	wsConnectionsActive.Inc()
	defer wsConnectionsActive.Dec()
	s.log.Info("websocket client connected", "remote", r.RemoteAddr)

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "server shutting down")
			return
		case ev, ok := <-ch:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "subscription closed")
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				s.log.Debug("websocket write failed", "error", err)
				return
			}
		}
	}
}
