// internal/handlers/lobby.go
package handlers

import (
	"net/http"
)

type playerRequest struct {
	LobbyID    string `json:"lobbyId"`
	PlayerName string `json:"playerName"`
}

// ConnectHandler joins a player to a lobby, creating the lobby when it
// does not exist yet.
func (s *Server) ConnectHandler(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.Registry.ConnectPlayer(req.LobbyID, req.PlayerName); err != nil {
		writeError(w, err)
		return
	}
	ok(w)
}

func (s *Server) DisconnectHandler(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.Registry.DisconnectPlayer(req.LobbyID, req.PlayerName); err != nil {
		writeError(w, err)
		return
	}
	ok(w)
}

func (s *Server) StartLobbyHandler(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.Registry.StartLobby(req.LobbyID, req.PlayerName); err != nil {
		writeError(w, err)
		return
	}
	ok(w)
}

func (s *Server) KickPlayerHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		playerRequest
		Target string `json:"target"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.Registry.KickPlayer(req.LobbyID, req.PlayerName, req.Target); err != nil {
		writeError(w, err)
		return
	}
	ok(w)
}

func (s *Server) ChatHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		playerRequest
		Message string `json:"message"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.Registry.AddChatMessage(req.LobbyID, req.PlayerName, req.Message); err != nil {
		writeError(w, err)
		return
	}
	ok(w)
}

func (s *Server) ListLobbiesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Registry.ListLobbies())
}

// GetStateHandler is the polling state endpoint: one snapshot plus any
// messages queued since the last poll.
func (s *Server) GetStateHandler(w http.ResponseWriter, r *http.Request) {
	lobbyID := r.URL.Query().Get("lobbyId")
	playerName := r.URL.Query().Get("playerName")
	snap, msgs, err := s.Registry.GetState(lobbyID, playerName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{Lobby: snap, Messages: msgs})
}
