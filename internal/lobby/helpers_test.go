// internal/lobby/helpers_test.go
package lobby

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// fakeOracle replays scripted responses instead of calling out.
type fakeOracle struct {
	mu        sync.Mutex
	responses []string
	prompts   []string
}

func (f *fakeOracle) push(responses ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, responses...)
}

func (f *fakeOracle) Generate(_ context.Context, prompt string, _ int, _ float32, _ bool) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if len(f.responses) == 0 {
		return "", errors.New("no scripted response")
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

func (f *fakeOracle) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

// fakeClock replaces the registry's clock so ticks advance deterministically.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestRegistry(t *testing.T) (*Registry, *fakeOracle, *fakeClock) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	oracle := &fakeOracle{}
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	r := NewRegistry(oracle, logger)
	r.now = clock.Now
	return r, oracle, clock
}

// mustConnect joins each named player; the first becomes the key player.
func mustConnect(t *testing.T, r *Registry, lobbyID string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, r.ConnectPlayer(lobbyID, name))
	}
}

// startGame moves the lobby through starting into play with one tick. The
// seeded item queue is already at target so activation is immediate.
func startGame(t *testing.T, r *Registry, keyPlayer, lobbyID string) {
	t.Helper()
	require.NoError(t, r.StartLobby(lobbyID, keyPlayer))
	r.TickAll()
	require.NoError(t, r.WithLobby(lobbyID, func(l *Lobby) error {
		require.Equal(t, PhasePlay, l.Phase)
		return nil
	}))
	// Wait out the replenishment task StartLobby spawned so it cannot eat
	// responses scripted later in the test.
	require.Eventually(t, func() bool {
		r.topupMu.Lock()
		defer r.topupMu.Unlock()
		return len(r.topups) == 0
	}, time.Second, 5*time.Millisecond)
}

// touchAll refreshes every player's heartbeat so clock advances past the
// idle limit do not evict them.
func touchAll(t *testing.T, r *Registry, lobbyID string, names ...string) {
	t.Helper()
	for _, name := range names {
		_, _, err := r.GetState(lobbyID, name)
		require.NoError(t, err)
	}
}

// setCoins grants a player an exact balance.
func setCoins(t *testing.T, r *Registry, lobbyID, playerName string, coins int) {
	t.Helper()
	require.NoError(t, r.WithPlayerMut(lobbyID, playerName, func(_ *Lobby, p *Player) error {
		p.Coins = coins
		return nil
	}))
}
