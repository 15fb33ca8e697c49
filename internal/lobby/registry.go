// internal/lobby/registry.go
package lobby

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/CodedNil/deducers-sub000/internal/words"
)

// Not-found sentinels. Background tasks treat these as a benign
// "already gone" signal and swallow them.
var (
	ErrLobbyNotFound    = errors.New("lobby not found")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrItemNotFound     = errors.New("item not found")
	ErrQuestionNotFound = errors.New("question not found")
)

// IsNotFound reports whether err is any of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrLobbyNotFound) ||
		errors.Is(err, ErrPlayerNotFound) ||
		errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrQuestionNotFound)
}

// Oracle is the external text-generation dependency. Implementations
// perform exactly one request per call; the registry owns all retry policy.
type Oracle interface {
	Generate(ctx context.Context, prompt string, maxTokens int, temperature float32, jsonOnly bool) (string, error)
}

// Registry holds every live lobby. A single mutex guards the map and all
// lobby state; oracle calls always happen outside it.
type Registry struct {
	mu      sync.Mutex
	lobbies map[string]*Lobby

	// topups tracks lobbies with a replenishment task in flight, enforcing
	// at most one per lobby.
	topupMu sync.Mutex
	topups  map[string]struct{}

	oracle Oracle
	log    *logrus.Logger

	// now is swapped out in tests to control the clock.
	now func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry(oracle Oracle, logger *logrus.Logger) *Registry {
	return &Registry{
		lobbies: make(map[string]*Lobby),
		topups:  make(map[string]struct{}),
		oracle:  oracle,
		log:     logger,
		now:     time.Now,
	}
}

// WithLobby runs fn under the registry lock with the lobby for read access.
// fn must not retain the pointer past its return.
func (r *Registry) WithLobby(lobbyID string, fn func(*Lobby) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lobbies[lobbyID]
	if !ok {
		return fmt.Errorf("lobby %q: %w", lobbyID, ErrLobbyNotFound)
	}
	return fn(l)
}

// WithLobbyMut is the read-modify-write accessor. It takes the same
// exclusive lock as WithLobby; the split marks intent at call sites.
func (r *Registry) WithLobbyMut(lobbyID string, fn func(*Lobby) error) error {
	return r.WithLobby(lobbyID, fn)
}

// WithPlayerMut scopes fn to a lobby and one of its players.
func (r *Registry) WithPlayerMut(lobbyID, playerName string, fn func(*Lobby, *Player) error) error {
	return r.WithLobby(lobbyID, func(l *Lobby) error {
		p, ok := l.Players[playerName]
		if !ok {
			return fmt.Errorf("player %q: %w", playerName, ErrPlayerNotFound)
		}
		return fn(l, p)
	})
}

// CreateLobby inserts a lobby with default settings and a word-pool item
// queue seed. Creating an existing lobby is a no-op, so concurrent
// connects race safely.
func (r *Registry) CreateLobby(lobbyID, keyPlayer string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lobbies[lobbyID]; ok {
		return nil
	}

	settings := DefaultSettings()
	r.lobbies[lobbyID] = &Lobby{
		ID:         lobbyID,
		Phase:      PhaseNotStarted,
		LastUpdate: r.now(),
		KeyPlayer:  keyPlayer,
		Players:    make(map[string]*Player),
		ItemsQueue: words.Select(settings.Difficulty.tier(), settings.ItemCount),
		Settings:   settings,
	}
	r.log.WithFields(logrus.Fields{"lobby": lobbyID, "player": keyPlayer}).Info("lobby created")
	return nil
}

// LobbyInfo is the public listing entry; it reveals no economy state.
type LobbyInfo struct {
	ID          string `json:"id"`
	Started     bool   `json:"started"`
	PlayerCount int    `json:"playerCount"`
}

// ListLobbies returns a snapshot of every lobby, sorted by id.
func (r *Registry) ListLobbies() []LobbyInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	infos := make([]LobbyInfo, 0, len(r.lobbies))
	for id, l := range r.lobbies {
		infos = append(infos, LobbyInfo{
			ID:          id,
			Started:     l.Phase != PhaseNotStarted,
			PlayerCount: len(l.Players),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}
