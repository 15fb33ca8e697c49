// internal/handlers/ws.go
package handlers

import (
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/CodedNil/deducers-sub000/internal/lobby"
	"github.com/CodedNil/deducers-sub000/internal/middleware"
)

// StateWSHandler streams lobby state over a websocket. Each push also
// counts as the player's heartbeat, so a connected client is never
// idle-kicked.
func (s *Server) StateWSHandler(w http.ResponseWriter, r *http.Request) {
	lobbyID := r.URL.Query().Get("lobbyId")
	playerName := r.URL.Query().Get("playerName")

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"}, // Adjust in production
	})
	if err != nil {
		s.Log.Warnf("websocket accept error: %v", err)
		return
	}
	defer c.Close(websocket.StatusInternalError, "handler finished")
	middleware.LogWebSocketConnect(s.Log, r.RemoteAddr, r.URL.Path)

	ctx := r.Context()
	ticker := time.NewTicker(lobby.TickInterval)
	defer ticker.Stop()

	for {
		snap, msgs, err := s.Registry.GetState(lobbyID, playerName)
		if err != nil {
			// The lobby or player going away ends the stream cleanly.
			if lobby.IsNotFound(err) {
				c.Close(websocket.StatusNormalClosure, "lobby closed")
			} else {
				c.Close(websocket.StatusPolicyViolation, err.Error())
			}
			middleware.LogWebSocketDisconnect(s.Log, r.RemoteAddr, r.URL.Path, err)
			return
		}
		if err := wsjson.Write(ctx, c, stateResponse{Lobby: snap, Messages: msgs}); err != nil {
			middleware.LogWebSocketDisconnect(s.Log, r.RemoteAddr, r.URL.Path, err)
			return
		}

		select {
		case <-ctx.Done():
			c.Close(websocket.StatusNormalClosure, "client gone")
			middleware.LogWebSocketDisconnect(s.Log, r.RemoteAddr, r.URL.Path, nil)
			return
		case <-ticker.C:
		}
	}
}
