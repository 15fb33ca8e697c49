// internal/lobby/items.go
package lobby

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/CodedNil/deducers-sub000/internal/words"
)

// topUpAttempts bounds the oracle retries for one word-generation run.
const topUpAttempts = 2

// addItemToLobby activates the oldest queued item name: insertion happens
// at the back of the queue and removal at the front, so activation order
// is FIFO. Caller holds the registry lock.
func (r *Registry) addItemToLobby(l *Lobby) {
	if l.Phase != PhasePlay || len(l.ItemsQueue) == 0 {
		return
	}
	name := l.ItemsQueue[0]
	l.ItemsQueue = l.ItemsQueue[1:]
	l.ItemsHistory = append(l.ItemsHistory, name)
	item := &Item{Name: name, ID: len(l.ItemsHistory)}
	l.Items = append(l.Items, item)
	l.broadcast(PlayerMessage{Type: MessageItemAdded})
	r.log.WithFields(logrus.Fields{"lobby": l.ID, "item": name, "id": item.ID}).Info("item added to lobby")
}

// TopUpLobbyIfNeeded starts a background top-up of the lobby's item queue.
// At most one top-up runs per lobby at a time; redundant requests are
// dropped. Callers never block on the work.
func (r *Registry) TopUpLobbyIfNeeded(lobbyID string) {
	r.topupMu.Lock()
	if _, busy := r.topups[lobbyID]; busy {
		r.topupMu.Unlock()
		return
	}
	r.topups[lobbyID] = struct{}{}
	r.topupMu.Unlock()

	go func() {
		defer func() {
			r.topupMu.Lock()
			delete(r.topups, lobbyID)
			r.topupMu.Unlock()
		}()
		r.topUpLobby(context.Background(), lobbyID)
	}()
}

func (r *Registry) topUpLobby(ctx context.Context, lobbyID string) {
	var (
		queue      []string
		target     int
		theme      string
		difficulty Difficulty
		history    []string
	)
	err := r.WithLobby(lobbyID, func(l *Lobby) error {
		queue = append([]string(nil), l.ItemsQueue...)
		target = l.Settings.ItemCount
		theme = l.Settings.Theme
		difficulty = l.Settings.Difficulty
		history = append([]string(nil), l.ItemsHistory...)
		return nil
	})
	if err != nil {
		// Lobby vanished between the request and the task; nothing to do.
		return
	}
	if len(queue) >= target {
		return
	}
	needed := target - len(queue)

	exclude := append(append([]string{}, history...), queue...)
	generated := r.generateItemWords(ctx, theme, difficulty, needed, exclude)
	if len(generated) == 0 {
		return
	}

	err = r.WithLobbyMut(lobbyID, func(l *Lobby) error {
		// The queue may have moved while the oracle call was in flight;
		// recompute the deficit under the lock.
		for _, w := range generated {
			if len(l.ItemsQueue) >= l.Settings.ItemCount {
				break
			}
			if containsFold(l.ItemsQueue, w) || containsFold(l.ItemsHistory, w) {
				continue
			}
			l.ItemsQueue = append(l.ItemsQueue, w)
		}
		return nil
	})
	if err != nil && !IsNotFound(err) {
		r.log.WithField("lobby", lobbyID).Warnf("item top-up failed: %v", err)
	}
}

// generateItemWords asks the oracle for unique single-word items, retrying
// up to topUpAttempts. A short return is acceptable: the queue simply
// stays under target until the next replenishment attempt.
func (r *Registry) generateItemWords(ctx context.Context, theme string, difficulty Difficulty, count int, exclude []string) []string {
	var difficultyDescription string
	switch difficulty {
	case DifficultyMedium:
		difficultyDescription = "choose simple or middling difficulty words"
	case DifficultyHard:
		difficultyDescription = "choose simple or complex words"
	default:
		difficultyDescription = "choose simple words"
	}
	themeDescription := ""
	if strings.TrimSpace(theme) != "" {
		themeDescription = fmt.Sprintf("with theme %s, ", theme)
	}
	historyDescription := ""
	if len(exclude) > 0 {
		historyDescription = fmt.Sprintf("previous items chosen were %s, ", strings.Join(exclude, ", "))
	}
	lettersDescription := fmt.Sprintf(
		"words should start with each of these letters in order %s",
		strings.ToUpper(strings.Join(words.WeightedLetters(count), ";")))

	prompt := fmt.Sprintf(
		"Create %d unique single word items to be used in a 20 questions game, such as Phone Bird Crystal, return a comma "+
			"separated list of items no additional text or spaces, %s, %s%saim for variety, British English, categories are "+
			"[plant, animal, object] unless theme specifies otherwise, %s",
		count, lettersDescription, themeDescription, historyDescription, difficultyDescription)

	var out []string
	for attempt := 0; attempt < topUpAttempts && len(out) < count; attempt++ {
		resp, err := r.oracle.Generate(ctx, prompt, count*3+20, 2.0, false)
		if err != nil {
			r.log.Debugf("word generation attempt failed: %v", err)
			continue
		}
		for _, raw := range strings.Split(resp, ",") {
			w := strings.TrimSpace(raw)
			if len(w) < MinNameLength || len(w) >= 15 || strings.Contains(w, " ") {
				continue
			}
			w = capitalize(strings.ToLower(w))
			if len(out) >= count || containsFold(out, w) || containsFold(exclude, w) {
				continue
			}
			out = append(out, w)
		}
	}
	if len(out) < count {
		r.log.Warnf("word generation returned %d of %d items after %d attempts", len(out), count, topUpAttempts)
	}
	return out
}

// GuessItem charges the guess cost and resolves the guess against the
// item. The cost is spent whether or not the guess is right; earlier
// correct guesses score more.
func (r *Registry) GuessItem(lobbyID, playerName string, itemID int, guess string) error {
	return r.WithPlayerMut(lobbyID, playerName, func(l *Lobby, p *Player) error {
		if l.Phase != PhasePlay {
			return errors.New("lobby not started")
		}
		if p.Quizmaster {
			return errors.New("quizmaster cannot engage")
		}
		if p.Coins < l.Settings.GuessItemCost {
			return errors.New("insufficient coins to guess")
		}
		idx := -1
		for i, item := range l.Items {
			if item.ID == itemID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("item %d: %w", itemID, ErrItemNotFound)
		}
		item := l.Items[idx]

		p.Coins -= l.Settings.GuessItemCost
		if !strings.EqualFold(item.Name, strings.TrimSpace(guess)) {
			p.queue(PlayerMessage{Type: MessageGuessIncorrect})
			l.addSystemChat("'%s' incorrectly guessed '%s' for item %d", playerName, guess, itemID)
			return errors.New("incorrect guess")
		}

		p.Score += QuestionsPerItem - len(item.Questions)
		l.broadcast(PlayerMessage{Type: MessageItemGuessed, Player: playerName, ItemID: item.ID, ItemName: item.Name})
		l.Items = append(l.Items[:idx], l.Items[idx+1:]...)
		l.addSystemChat("'%s' guessed item %d as '%s'", playerName, itemID, item.Name)
		r.log.WithFields(logrus.Fields{"lobby": lobbyID, "player": playerName, "item": item.Name}).Info("item guessed")
		r.checkGameOver(l)
		return nil
	})
}

// checkGameOver refills an emptied item set from the queue, or ends the
// lobby and announces the winners when nothing is left to guess. Caller
// holds the registry lock.
func (r *Registry) checkGameOver(l *Lobby) {
	if len(l.Items) == 0 && len(l.ItemsQueue) > 0 {
		r.addItemToLobby(l)
	}
	if l.Phase != PhasePlay || len(l.Items) > 0 {
		return
	}

	l.Phase = PhaseEnded
	l.ElapsedTime = 0

	maxScore := 0
	var winners []string
	for _, p := range l.Players {
		switch {
		case p.Score > maxScore:
			maxScore = p.Score
			winners = []string{p.Name}
		case p.Score == maxScore && maxScore > 0:
			winners = append(winners, p.Name)
		}
	}
	sort.Strings(winners)

	var winText string
	switch {
	case len(winners) > 1:
		winText = fmt.Sprintf("The tied winners are %s!", strings.Join(winners, ", "))
	case len(winners) == 1:
		winText = fmt.Sprintf("The winner is %s!", winners[0])
	default:
		winText = "The game has ended with no winner!"
	}
	l.broadcast(PlayerMessage{Type: MessageWinner, Text: winText})
	r.log.WithFields(logrus.Fields{"lobby": l.ID, "winners": winners}).Info("game over")
}
