// internal/lobby/clock.go
package lobby

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// TickInterval is the lifecycle clock period.
	TickInterval = 500 * time.Millisecond

	// IdleKickTime is how long a player may go without a heartbeat.
	IdleKickTime = 10 * time.Second

	// EndedGracePeriod is how long an ended lobby lingers before removal.
	EndedGracePeriod = 60 * time.Second
)

// Run drives the lifecycle clock until ctx is cancelled. Ticks run
// strictly sequentially; a slow tick delays the next rather than
// overlapping it.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.TickAll()
		}
	}
}

// TickAll advances every lobby once. Background work decided during the
// tick (replenishment, question promotion) is spawned after the lock is
// released and never awaited.
func (r *Registry) TickAll() {
	var followUps []func()

	r.mu.Lock()
	for id, l := range r.lobbies {
		keep, tasks := r.tickLobby(l)
		if !keep {
			delete(r.lobbies, id)
			r.log.WithField("lobby", id).Info("lobby removed")
			continue
		}
		followUps = append(followUps, tasks...)
	}
	r.mu.Unlock()

	for _, task := range followUps {
		go task()
	}
}

// tickLobby advances one lobby. A panic in a single lobby's logic is
// contained so the rest of the registry keeps ticking.
func (r *Registry) tickLobby(l *Lobby) (keep bool, followUps []func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.WithField("lobby", l.ID).Errorf("tick recovered: %v", rec)
			keep = true
		}
	}()

	now := r.now()

	// Idle eviction runs before any lifecycle logic.
	for name, p := range l.Players {
		if now.Sub(p.LastContact) > IdleKickTime {
			delete(l.Players, name)
			r.log.WithFields(logrus.Fields{"lobby": l.ID, "player": name}).Info("kicked idle player")
		}
	}
	if _, ok := l.Players[l.KeyPlayer]; !ok || len(l.Players) == 0 {
		return false, nil
	}

	elapsed := now.Sub(l.LastUpdate)

	switch l.Phase {
	case PhaseStarting:
		if l.Settings.PlayerControlled || len(l.ItemsQueue) >= l.Settings.ItemCount {
			r.activateLobby(l)
		} else {
			lobbyID := l.ID
			followUps = append(followUps, func() { r.TopUpLobbyIfNeeded(lobbyID) })
		}

	case PhasePlay:
		l.CoinsCountdown -= elapsed
		if l.CoinsCountdown <= 0 {
			l.CoinsCountdown += l.Settings.CoinInterval()
			for _, p := range l.Players {
				if !p.Quizmaster {
					p.Coins++
					p.queue(PlayerMessage{Type: MessageCoinGiven})
				}
			}
		}

		// The promotion countdown only runs while some queued question has
		// enough votes; otherwise it sits reset at the full period.
		if l.QuestionsQueueActive() {
			l.QuestionsQueueCountdown -= elapsed
			if l.QuestionsQueueCountdown <= 0 {
				l.QuestionsQueueCountdown += l.Settings.QuestionInterval()
				lobbyID := l.ID
				followUps = append(followUps, func() {
					if err := r.AskTopQuestion(context.Background(), lobbyID); err != nil && !IsNotFound(err) {
						r.log.WithField("lobby", lobbyID).Warnf("question promotion failed: %v", err)
					}
				})
			}
		} else {
			l.QuestionsQueueCountdown = l.Settings.QuestionInterval()
		}

		l.ElapsedTime += elapsed

	case PhaseEnded:
		l.ElapsedTime += elapsed
		if l.ElapsedTime > EndedGracePeriod {
			return false, nil
		}
	}

	l.LastUpdate = now
	return true, followUps
}

// StartLobby moves the lobby into the starting phase. Activation happens on
// a later tick, once the item queue has been replenished to target.
func (r *Registry) StartLobby(lobbyID, playerName string) error {
	var playerControlled bool
	err := r.WithLobbyMut(lobbyID, func(l *Lobby) error {
		if l.Phase != PhaseNotStarted {
			return errors.New("lobby already started")
		}
		if playerName != l.KeyPlayer {
			return errors.New("only the key player can start the lobby")
		}
		l.Phase = PhaseStarting
		l.LastUpdate = r.now()
		playerControlled = l.Settings.PlayerControlled
		r.log.WithFields(logrus.Fields{"lobby": lobbyID, "player": playerName, "settings": l.Settings.String()}).Info("lobby starting")
		return nil
	})
	if err != nil {
		return err
	}
	if !playerControlled {
		r.TopUpLobbyIfNeeded(lobbyID)
	}
	return nil
}

// activateLobby flips a starting lobby into play: coins are granted, the
// quizmaster role assigned, and the first items drawn from the queue.
// Caller holds the registry lock.
func (r *Registry) activateLobby(l *Lobby) {
	l.Phase = PhasePlay
	l.ElapsedTime = 0
	l.CoinsCountdown = l.Settings.CoinInterval()
	l.QuestionsQueueCountdown = l.Settings.QuestionInterval()

	for _, p := range l.Players {
		p.Coins = l.Settings.StartingCoins
		if l.Settings.PlayerControlled && p.Name == l.KeyPlayer {
			p.Quizmaster = true
		}
		p.queue(PlayerMessage{Type: MessageGameStart})
	}

	r.addItemToLobby(l)
	if l.Settings.ItemCount > 1 {
		r.addItemToLobby(l)
	}

	r.log.WithFields(logrus.Fields{"lobby": l.ID, "settings": l.Settings.String()}).Info("lobby activated")
}
