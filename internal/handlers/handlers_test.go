// internal/handlers/handlers_test.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodedNil/deducers-sub000/internal/lobby"
)

type stubOracle struct{}

func (stubOracle) Generate(context.Context, string, int, float32, bool) (string, error) {
	return "", errors.New("oracle unavailable")
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	registry := lobby.NewRegistry(stubOracle{}, logger)
	ts := httptest.NewServer(NewServer(registry, logger).Routes())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, ts *httptest.Server, path string, body interface{}) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestConnectListStateFlow(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts, "/lobby/connect", map[string]string{"lobbyId": "room1", "playerName": "Alice"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	listResp, err := http.Get(ts.URL + "/lobby/list")
	require.NoError(t, err)
	defer listResp.Body.Close()
	var infos []lobby.LobbyInfo
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "room1", infos[0].ID)
	assert.Equal(t, 1, infos[0].PlayerCount)

	stateResp, err := http.Get(ts.URL + "/lobby/state?lobbyId=room1&playerName=Alice")
	require.NoError(t, err)
	defer stateResp.Body.Close()
	require.Equal(t, http.StatusOK, stateResp.StatusCode)
	var state struct {
		Lobby *lobby.Snapshot `json:"lobby"`
	}
	require.NoError(t, json.NewDecoder(stateResp.Body).Decode(&state))
	require.NotNil(t, state.Lobby)
	assert.Equal(t, "room1", state.Lobby.ID)
	assert.Equal(t, lobby.PhaseNotStarted, state.Lobby.Phase)
}

func TestConnectValidationMapsToBadRequest(t *testing.T) {
	ts := newTestServer(t)
	resp := postJSON(t, ts, "/lobby/connect", map[string]string{"lobbyId": "x", "playerName": "Alice"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMissingLobbyMapsToNotFound(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/lobby/state?lobbyId=ghost&playerName=Alice")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestInvalidJSONBody(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Post(ts.URL+"/lobby/connect", "application/json", bytes.NewReader([]byte("{nope")))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAlterSettingWireFormat(t *testing.T) {
	ts := newTestServer(t)
	postJSON(t, ts, "/lobby/connect", map[string]string{"lobbyId": "room2", "playerName": "Alice"})

	resp := postJSON(t, ts, "/lobby/settings", map[string]string{
		"lobbyId": "room2", "playerName": "Alice", "key": "item_count", "value": "3",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, ts, "/lobby/settings", map[string]string{
		"lobbyId": "room2", "playerName": "Alice", "key": "difficulty", "value": "hard",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, ts, "/lobby/settings", map[string]string{
		"lobbyId": "room2", "playerName": "Alice", "key": "item_count", "value": "lots",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, ts, "/lobby/settings", map[string]string{
		"lobbyId": "room2", "playerName": "Alice", "key": "unknown_knob", "value": "1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestParseSettingChange(t *testing.T) {
	change, err := parseSettingChange("starting_coins", "7")
	require.NoError(t, err)
	assert.Equal(t, lobby.SetEconomy{Field: lobby.EconomyStartingCoins, Value: 7}, change)

	change, err = parseSettingChange("player_controlled", "true")
	require.NoError(t, err)
	assert.Equal(t, lobby.SetPlayerControlled{Enabled: true}, change)

	change, err = parseSettingChange("refresh_all_items", "")
	require.NoError(t, err)
	assert.Equal(t, lobby.RefreshAllQueuedItems{}, change)

	_, err = parseSettingChange("difficulty", "nightmare")
	assert.Error(t, err)
}
