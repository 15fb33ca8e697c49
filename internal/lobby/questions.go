// internal/lobby/questions.go
package lobby

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// promotionAttempts bounds the oracle retries for one batched answer call.
const promotionAttempts = 4

// SubmitQuestion validates, prices and queues a question. The oracle
// suitability check runs outside the lock, so every local check is
// repeated before the question is committed.
func (r *Registry) SubmitQuestion(ctx context.Context, lobbyID, playerName, text string, masked bool) error {
	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return errors.New("question is empty")
	case len(text) < MinQuestionLength:
		return errors.New("question is too short")
	case len(text) > MaxQuestionLength:
		return errors.New("question is too long")
	}
	if !questionPattern.MatchString(text) {
		return errors.New("question may only contain letters, numbers, spaces and a question mark")
	}
	text = normalizeQuestion(text)

	var (
		cost      int
		useOracle bool
	)
	err := r.WithPlayerMut(lobbyID, playerName, func(l *Lobby, p *Player) error {
		cost = l.Settings.SubmitQuestionCost
		if masked {
			cost += l.Settings.MaskedQuestionCost
		}
		useOracle = !l.Settings.PlayerControlled
		return checkSubmission(l, p, text, cost)
	})
	if err != nil {
		return err
	}

	if useOracle {
		if err := r.validateQuestion(ctx, text); err != nil {
			return err
		}
	}

	return r.WithPlayerMut(lobbyID, playerName, func(l *Lobby, p *Player) error {
		// State may have shifted while the oracle call was in flight.
		if err := checkSubmission(l, p, text, cost); err != nil {
			return err
		}
		p.Coins -= cost
		l.QuestionsQueue = append(l.QuestionsQueue, &QueuedQuestion{
			Player:   playerName,
			Question: text,
			Masked:   masked,
		})
		r.log.WithFields(logrus.Fields{"lobby": lobbyID, "player": playerName, "question": text}).Info("question queued")
		return nil
	})
}

func checkSubmission(l *Lobby, p *Player, text string, cost int) error {
	if l.Phase != PhasePlay {
		return errors.New("lobby not started")
	}
	if p.Quizmaster {
		return errors.New("quizmaster cannot engage")
	}
	if p.Coins < cost {
		return errors.New("insufficient coins to submit question")
	}
	if l.findQueuedQuestion(text) != nil {
		return errors.New("question already exists in queue")
	}
	return nil
}

// normalizeQuestion ensures a trailing question mark and a capitalized
// first letter.
func normalizeQuestion(text string) string {
	if !strings.HasSuffix(text, "?") {
		text += "?"
	}
	return capitalize(text)
}

type suitability struct {
	Suitable  bool   `json:"suitable"`
	Reasoning string `json:"reasoning"`
}

// validateQuestion asks the oracle whether the question fits the game.
// Oracle failure rejects the question: validation fails closed.
func (r *Registry) validateQuestion(ctx context.Context, text string) error {
	prompt := fmt.Sprintf(
		"Check '%s' for suitability in a 20 Questions game, return a compact one line JSON with two keys reasoning and suitable, "+
			"reasoning (concise up to 4 word explanation for suitability, is it a question with clear yes/no/maybe answerability, "+
			"is it relevant to identifying an item), suitable (bool, if uncertain err on allowing the question unless it clearly "+
			"fails criteria), British English", text)

	resp, err := r.oracle.Generate(ctx, prompt, 100, 1.0, true)
	if err != nil {
		r.log.Warnf("question validation call failed: %v", err)
		return errors.New("failed to validate question")
	}
	var verdict suitability
	if err := json.Unmarshal([]byte(resp), &verdict); err != nil {
		r.log.Warnf("question validation returned unparseable response: %v", err)
		return errors.New("failed to validate question")
	}
	if !verdict.Suitable {
		return fmt.Errorf("question rejected: %s", verdict.Reasoning)
	}
	return nil
}

// VoteQuestion spends one coin to raise a queued question's vote count.
func (r *Registry) VoteQuestion(lobbyID, playerName, questionText string) error {
	return r.WithPlayerMut(lobbyID, playerName, func(l *Lobby, p *Player) error {
		if l.Phase != PhasePlay {
			return errors.New("lobby not started")
		}
		if p.Quizmaster {
			return errors.New("quizmaster cannot engage")
		}
		q := l.findQueuedQuestion(questionText)
		if q == nil {
			return fmt.Errorf("question %q: %w", questionText, ErrQuestionNotFound)
		}
		if p.Coins < 1 {
			return errors.New("insufficient coins to vote")
		}
		p.Coins--
		q.Votes++
		q.Voters = append(q.Voters, playerName)
		return nil
	})
}

// ConvertScore trades one point of score for coins at the configured ratio.
func (r *Registry) ConvertScore(lobbyID, playerName string) error {
	return r.WithPlayerMut(lobbyID, playerName, func(l *Lobby, p *Player) error {
		if l.Phase != PhasePlay {
			return errors.New("lobby not started")
		}
		if p.Quizmaster {
			return errors.New("quizmaster cannot engage")
		}
		if p.Score < 1 {
			return errors.New("insufficient score to convert")
		}
		p.Score--
		p.Coins += l.Settings.ScoreToCoinsRatio
		return nil
	})
}

// itemRef pins an item's identity while the oracle call is in flight.
type itemRef struct {
	ID   int
	Name string
}

// AskTopQuestion promotes the most voted queued question: it is removed
// from the queue, answered against every active item in one batched oracle
// call, and the answers applied atomically. In player-controlled mode the
// question moves to the quizmaster queue instead.
func (r *Registry) AskTopQuestion(ctx context.Context, lobbyID string) error {
	var (
		question         QueuedQuestion
		items            []itemRef
		playerControlled bool
	)
	err := r.WithLobbyMut(lobbyID, func(l *Lobby) error {
		top := topQueuedQuestion(l.QuestionsQueue)
		if top == nil {
			return fmt.Errorf("questions queue empty: %w", ErrQuestionNotFound)
		}
		if top.Votes < l.Settings.QuestionMinVotes {
			return fmt.Errorf("question needs at least %d votes", l.Settings.QuestionMinVotes)
		}
		question = *top
		for _, item := range l.Items {
			items = append(items, itemRef{ID: item.ID, Name: item.Name})
		}
		l.QuestionsQueue = removeQueuedQuestion(l.QuestionsQueue, top.Question)
		if !l.QuestionsQueueActive() {
			l.QuestionsQueueCountdown = l.Settings.QuestionInterval()
		}
		playerControlled = l.Settings.PlayerControlled
		return nil
	})
	if err != nil {
		return err
	}

	if playerControlled {
		return r.WithLobbyMut(lobbyID, func(l *Lobby) error {
			held := &QuizmasterQuestion{
				Player:   question.Player,
				Question: question.Question,
				Masked:   question.Masked,
				Voters:   question.Voters,
			}
			for _, item := range items {
				held.Items = append(held.Items, QuizmasterItem{ID: item.ID, Name: item.Name, Answer: AnswerMaybe})
			}
			l.QuizmasterQueue = append(l.QuizmasterQueue, held)
			return nil
		})
	}

	answers, err := r.answerForItems(ctx, question.Question, items)
	if err != nil {
		r.log.WithFields(logrus.Fields{"lobby": lobbyID, "question": question.Question}).Warnf("promotion abandoned: %v", err)
		return err
	}

	return r.WithLobbyMut(lobbyID, func(l *Lobby) error {
		r.applyAnswers(l, question.Player, question.Question, question.Masked, answers)
		return nil
	})
}

// topQueuedQuestion returns the entry with the highest vote count. The
// queue is scanned front to back, so ties break toward the earliest
// submission.
func topQueuedQuestion(queue []*QueuedQuestion) *QueuedQuestion {
	var top *QueuedQuestion
	for _, q := range queue {
		if top == nil || q.Votes > top.Votes {
			top = q
		}
	}
	return top
}

func removeQueuedQuestion(queue []*QueuedQuestion, text string) []*QueuedQuestion {
	out := queue[:0]
	for _, q := range queue {
		if q.Question != text {
			out = append(out, q)
		}
	}
	return out
}

type batchAnswers struct {
	Answers []string `json:"answers"`
}

// answerForItems asks the oracle to answer the question for every item in
// a single call. A response is usable only when it parses and covers every
// item; anything else is retried, and the final miss aborts the promotion
// so that no item receives a partial application.
func (r *Registry) answerForItems(ctx context.Context, question string, items []itemRef) (map[int]Answer, error) {
	if len(items) == 0 {
		return nil, errors.New("no items to answer against")
	}

	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	prompt := fmt.Sprintf(
		"For each item in this list '%s', in the items usual state answer the question '%s', return compact one line JSON "+
			"with key answers which is a list of yes, no, maybe or unknown, this is a 20 questions game, British English",
		strings.Join(names, ", "), question)

	for attempt := 1; attempt <= promotionAttempts; attempt++ {
		resp, err := r.oracle.Generate(ctx, prompt, len(items)*3+20, 1.0, true)
		if err != nil {
			r.log.Debugf("answer attempt %d/%d failed: %v", attempt, promotionAttempts, err)
			continue
		}
		var parsed batchAnswers
		if err := json.Unmarshal([]byte(resp), &parsed); err != nil {
			r.log.Debugf("answer attempt %d/%d unparseable: %v", attempt, promotionAttempts, err)
			continue
		}
		if len(parsed.Answers) != len(items) {
			r.log.Debugf("answer attempt %d/%d returned %d answers for %d items", attempt, promotionAttempts, len(parsed.Answers), len(items))
			continue
		}
		answers := make(map[int]Answer, len(items))
		valid := true
		for i, s := range parsed.Answers {
			a, ok := ParseAnswer(s)
			if !ok {
				valid = false
				break
			}
			answers[items[i].ID] = a
		}
		if valid {
			return answers, nil
		}
	}
	return nil, fmt.Errorf("no usable answer set after %d attempts", promotionAttempts)
}

// applyAnswers appends one applied question across the item set, retires
// items that reach their question limit, tops up on the configured cadence
// and notifies players. Items that joined the lobby while the oracle call
// was in flight carry no answer and are skipped. Caller holds the registry
// lock.
func (r *Registry) applyAnswers(l *Lobby, player, text string, masked bool, answers map[int]Answer) {
	questionID := l.QuestionsCounter
	l.QuestionsCounter++

	var retired []*Item
	for _, item := range l.Items {
		answer, ok := answers[item.ID]
		if !ok {
			continue
		}
		item.Questions = append(item.Questions, Question{
			Player: player,
			ID:     questionID,
			Text:   text,
			Answer: answer,
			Masked: masked,
		})
		if len(item.Questions) >= QuestionsPerItem {
			retired = append(retired, item)
		}
	}

	for _, item := range retired {
		l.broadcast(PlayerMessage{Type: MessageItemRemoved, ItemID: item.ID, ItemName: item.Name})
		l.addSystemChat("Item %d has been removed from play, it was '%s'", item.ID, item.Name)
	}
	if len(retired) > 0 {
		kept := l.Items[:0]
		for _, item := range l.Items {
			if len(item.Questions) < QuestionsPerItem {
				kept = append(kept, item)
			}
		}
		l.Items = kept
	}

	if l.Settings.AddItemEveryXQuestions > 0 && l.QuestionsCounter%l.Settings.AddItemEveryXQuestions == 0 {
		r.addItemToLobby(l)
		if !l.Settings.PlayerControlled {
			r.TopUpLobbyIfNeeded(l.ID)
		}
	}

	l.broadcast(PlayerMessage{Type: MessageQuestionAsked})
	r.checkGameOver(l)
}
