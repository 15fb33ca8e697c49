// internal/lobby/quizmaster.go
package lobby

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// withQuizmaster scopes fn to a playing lobby whose caller holds the
// quizmaster role.
func (r *Registry) withQuizmaster(lobbyID, playerName string, fn func(*Lobby, *Player) error) error {
	return r.WithPlayerMut(lobbyID, playerName, func(l *Lobby, p *Player) error {
		if l.Phase != PhasePlay {
			return errors.New("lobby not started")
		}
		if !p.Quizmaster {
			return errors.New("only the quizmaster can do that")
		}
		return fn(l, p)
	})
}

func findQuizmasterQuestion(l *Lobby, questionText string) (int, *QuizmasterQuestion) {
	for i, q := range l.QuizmasterQueue {
		if q.Question == questionText {
			return i, q
		}
	}
	return -1, nil
}

// QuizmasterChangeAnswer sets the provisional answer for one item on a held
// question. Answers stay editable until the question is submitted.
func (r *Registry) QuizmasterChangeAnswer(lobbyID, playerName, questionText string, itemID int, answer Answer) error {
	return r.withQuizmaster(lobbyID, playerName, func(l *Lobby, _ *Player) error {
		_, q := findQuizmasterQuestion(l, questionText)
		if q == nil {
			return fmt.Errorf("question %q: %w", questionText, ErrQuestionNotFound)
		}
		for i := range q.Items {
			if q.Items[i].ID == itemID {
				q.Items[i].Answer = answer
				return nil
			}
		}
		return fmt.Errorf("item %d: %w", itemID, ErrItemNotFound)
	})
}

// QuizmasterSubmit applies a held question with its current answers to the
// item set, exactly as an oracle-answered promotion would.
func (r *Registry) QuizmasterSubmit(lobbyID, playerName, questionText string) error {
	return r.withQuizmaster(lobbyID, playerName, func(l *Lobby, _ *Player) error {
		idx, q := findQuizmasterQuestion(l, questionText)
		if q == nil {
			return fmt.Errorf("question %q: %w", questionText, ErrQuestionNotFound)
		}
		l.QuizmasterQueue = append(l.QuizmasterQueue[:idx], l.QuizmasterQueue[idx+1:]...)

		answers := make(map[int]Answer, len(q.Items))
		for _, item := range q.Items {
			answers[item.ID] = item.Answer
		}
		r.applyAnswers(l, q.Player, q.Question, q.Masked, answers)
		r.log.WithFields(logrus.Fields{"lobby": lobbyID, "question": q.Question}).Info("quizmaster submitted question")
		return nil
	})
}

// QuizmasterReject discards a held question and refunds everyone who paid
// for it: the submission cost to the author, one coin per vote cast.
func (r *Registry) QuizmasterReject(lobbyID, playerName, questionText string) error {
	return r.withQuizmaster(lobbyID, playerName, func(l *Lobby, _ *Player) error {
		idx, q := findQuizmasterQuestion(l, questionText)
		if q == nil {
			return fmt.Errorf("question %q: %w", questionText, ErrQuestionNotFound)
		}
		l.QuizmasterQueue = append(l.QuizmasterQueue[:idx], l.QuizmasterQueue[idx+1:]...)

		for _, voter := range q.Voters {
			if p, ok := l.Players[voter]; ok {
				p.Coins++
			}
		}
		if author, ok := l.Players[q.Player]; ok {
			cost := l.Settings.SubmitQuestionCost
			if q.Masked {
				cost += l.Settings.MaskedQuestionCost
			}
			author.Coins += cost
			author.queue(PlayerMessage{Type: MessageQuestionRejected, Text: q.Question})
		}
		l.addSystemChat("Quizmaster has rejected question '%s'", q.Question)
		r.log.WithFields(logrus.Fields{"lobby": lobbyID, "question": q.Question}).Info("quizmaster rejected question")
		return nil
	})
}
