package http

import (
	"log/slog"
	"net/http"
)

// handleWebSocket upgrades the connection and subscribes it to the
// owner's snapshot stream. The read loop only drains control frames;
// clients never send data.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.broadcaster == nil {
		http.Error(w, "live updates disabled", http.StatusServiceUnavailable)
		return
	}

	owner := s.currentOwner(r)
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(r.Context(), "WebSocket upgrade failed", "error", err, "owner", owner)
		return
	}

	s.broadcaster.RegisterClient(conn, owner)
	slog.InfoContext(r.Context(), "WebSocket client connected", "owner", owner)

	go func() {
		defer func() {
			s.broadcaster.UnregisterClient(conn)
			_ = conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
