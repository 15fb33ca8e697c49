// internal/handlers/server.go
package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/CodedNil/deducers-sub000/internal/lobby"
)

// Server exposes the lobby registry over HTTP. All game actions are POSTs
// with JSON bodies; state flows back through polling or the websocket.
type Server struct {
	Registry *lobby.Registry
	Log      *logrus.Logger
}

func NewServer(registry *lobby.Registry, logger *logrus.Logger) *Server {
	return &Server{Registry: registry, Log: logger}
}

// Routes builds the full route table.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /lobby/list", s.ListLobbiesHandler)
	mux.HandleFunc("GET /lobby/state", s.GetStateHandler)
	mux.HandleFunc("GET /lobby/ws", s.StateWSHandler)

	mux.HandleFunc("POST /lobby/connect", s.ConnectHandler)
	mux.HandleFunc("POST /lobby/disconnect", s.DisconnectHandler)
	mux.HandleFunc("POST /lobby/start", s.StartLobbyHandler)
	mux.HandleFunc("POST /lobby/kick", s.KickPlayerHandler)
	mux.HandleFunc("POST /lobby/chat", s.ChatHandler)
	mux.HandleFunc("POST /lobby/settings", s.AlterSettingHandler)

	mux.HandleFunc("POST /question/submit", s.SubmitQuestionHandler)
	mux.HandleFunc("POST /question/vote", s.VoteQuestionHandler)
	mux.HandleFunc("POST /score/convert", s.ConvertScoreHandler)
	mux.HandleFunc("POST /item/guess", s.GuessItemHandler)

	mux.HandleFunc("POST /quizmaster/answer", s.QuizmasterAnswerHandler)
	mux.HandleFunc("POST /quizmaster/submit", s.QuizmasterSubmitHandler)
	mux.HandleFunc("POST /quizmaster/reject", s.QuizmasterRejectHandler)

	return mux
}
