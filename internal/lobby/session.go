// internal/lobby/session.go
package lobby

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// ConnectPlayer validates the ids, lazily creates the lobby, and inserts
// the player. Late joiners to an active game receive coins pro-rated by
// elapsed game time so they are not penalized.
func (r *Registry) ConnectPlayer(lobbyID, playerName string) error {
	lobbyID = strings.TrimSpace(lobbyID)
	playerName = strings.TrimSpace(playerName)

	if len(lobbyID) < MinNameLength || len(lobbyID) > MaxLobbyIDLength {
		return fmt.Errorf("lobby ID must be between %d and %d characters long", MinNameLength, MaxLobbyIDLength)
	}
	if len(playerName) < MinNameLength || len(playerName) > MaxPlayerNameLength {
		return fmt.Errorf("player name must be between %d and %d characters long", MinNameLength, MaxPlayerNameLength)
	}
	if !lobbyIDPattern.MatchString(lobbyID) {
		return errors.New("lobby ID must be alphanumeric")
	}
	if !playerNamePattern.MatchString(playerName) {
		return errors.New("player name must be alphanumeric")
	}
	if strings.EqualFold(playerName, ReservedName) {
		return fmt.Errorf("player name %q is reserved", ReservedName)
	}

	if err := r.CreateLobby(lobbyID, playerName); err != nil {
		return err
	}

	return r.WithLobbyMut(lobbyID, func(l *Lobby) error {
		if _, ok := l.Players[playerName]; ok {
			return fmt.Errorf("player %q is already connected to lobby %q", playerName, lobbyID)
		}

		coins := 0
		if l.Phase == PhasePlay {
			coins = l.Settings.StartingCoins + int(l.ElapsedTime/l.Settings.CoinInterval())
		}
		l.Players[playerName] = &Player{
			Name:        playerName,
			LastContact: r.now(),
			Coins:       coins,
		}
		l.addSystemChat("%s has joined the lobby", playerName)
		r.log.WithFields(logrus.Fields{"lobby": lobbyID, "player": playerName}).Info("player connected")
		return nil
	})
}

// DisconnectPlayer removes the player. Departure of the key player tears
// the whole lobby down; no replacement key player is elected.
func (r *Registry) DisconnectPlayer(lobbyID, playerName string) error {
	return r.removePlayer(lobbyID, playerName, "%s has left the lobby")
}

// KickPlayer removes target on behalf of the key player.
func (r *Registry) KickPlayer(lobbyID, requester, target string) error {
	r.mu.Lock()
	l, ok := r.lobbies[lobbyID]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("lobby %q: %w", lobbyID, ErrLobbyNotFound)
	}
	if requester != l.KeyPlayer {
		r.mu.Unlock()
		return errors.New("only the key player can kick players")
	}
	r.mu.Unlock()
	return r.removePlayer(lobbyID, target, "%s was kicked from the lobby")
}

func (r *Registry) removePlayer(lobbyID, playerName, chatFormat string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.lobbies[lobbyID]
	if !ok {
		return fmt.Errorf("lobby %q: %w", lobbyID, ErrLobbyNotFound)
	}
	if _, ok := l.Players[playerName]; !ok {
		return fmt.Errorf("player %q: %w", playerName, ErrPlayerNotFound)
	}
	delete(l.Players, playerName)

	if playerName == l.KeyPlayer || len(l.Players) == 0 {
		delete(r.lobbies, lobbyID)
		r.log.WithFields(logrus.Fields{"lobby": lobbyID, "player": playerName}).Info("lobby removed with departing key player")
		return nil
	}

	l.addSystemChat(chatFormat, playerName)
	r.log.WithFields(logrus.Fields{"lobby": lobbyID, "player": playerName}).Info("player removed")
	return nil
}

// AddChatMessage appends a player chat line to the lobby's bounded log.
func (r *Registry) AddChatMessage(lobbyID, playerName, text string) error {
	if len(text) < MinChatLength {
		return fmt.Errorf("chat message must be at least %d characters long", MinChatLength)
	}
	if len(text) > MaxChatLength {
		return fmt.Errorf("chat message must be less than %d characters long", MaxChatLength)
	}
	return r.WithPlayerMut(lobbyID, playerName, func(l *Lobby, _ *Player) error {
		l.addChat(playerName, text)
		return nil
	})
}

// GetState records the player's heartbeat, drains their message queue and
// returns a snapshot filtered for them. Messages are delivered at most
// once per poll.
func (r *Registry) GetState(lobbyID, playerName string) (*Snapshot, []PlayerMessage, error) {
	var (
		snap *Snapshot
		msgs []PlayerMessage
	)
	err := r.WithPlayerMut(lobbyID, playerName, func(l *Lobby, p *Player) error {
		p.LastContact = r.now()
		msgs = p.Messages
		p.Messages = nil
		snap = l.snapshotFor(p)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return snap, msgs, nil
}
