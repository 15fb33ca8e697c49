// internal/handlers/quizmaster.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/CodedNil/deducers-sub000/internal/lobby"
)

func (s *Server) QuizmasterAnswerHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		playerRequest
		Question string `json:"question"`
		ItemID   int    `json:"itemId"`
		Answer   string `json:"answer"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	answer, valid := lobby.ParseAnswer(req.Answer)
	if !valid {
		writeError(w, fmt.Errorf("unknown answer %q", req.Answer))
		return
	}
	if err := s.Registry.QuizmasterChangeAnswer(req.LobbyID, req.PlayerName, req.Question, req.ItemID, answer); err != nil {
		writeError(w, err)
		return
	}
	ok(w)
}

func (s *Server) QuizmasterSubmitHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		playerRequest
		Question string `json:"question"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.Registry.QuizmasterSubmit(req.LobbyID, req.PlayerName, req.Question); err != nil {
		writeError(w, err)
		return
	}
	ok(w)
}

func (s *Server) QuizmasterRejectHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		playerRequest
		Question string `json:"question"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.Registry.QuizmasterReject(req.LobbyID, req.PlayerName, req.Question); err != nil {
		writeError(w, err)
		return
	}
	ok(w)
}
