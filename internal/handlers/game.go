// internal/handlers/game.go
package handlers

import (
	"net/http"

	"github.com/CodedNil/deducers-sub000/internal/lobby"
)

type stateResponse struct {
	Lobby    *lobby.Snapshot       `json:"lobby"`
	Messages []lobby.PlayerMessage `json:"messages"`
}

func (s *Server) SubmitQuestionHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		playerRequest
		Question string `json:"question"`
		Masked   bool   `json:"masked"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.Registry.SubmitQuestion(r.Context(), req.LobbyID, req.PlayerName, req.Question, req.Masked); err != nil {
		writeError(w, err)
		return
	}
	ok(w)
}

func (s *Server) VoteQuestionHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		playerRequest
		Question string `json:"question"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.Registry.VoteQuestion(req.LobbyID, req.PlayerName, req.Question); err != nil {
		writeError(w, err)
		return
	}
	ok(w)
}

func (s *Server) ConvertScoreHandler(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.Registry.ConvertScore(req.LobbyID, req.PlayerName); err != nil {
		writeError(w, err)
		return
	}
	ok(w)
}

func (s *Server) GuessItemHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		playerRequest
		ItemID int    `json:"itemId"`
		Guess  string `json:"guess"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.Registry.GuessItem(req.LobbyID, req.PlayerName, req.ItemID, req.Guess); err != nil {
		writeError(w, err)
		return
	}
	ok(w)
}
