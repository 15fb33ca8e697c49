// internal/handlers/settings.go
package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/CodedNil/deducers-sub000/internal/lobby"
)

// AlterSettingHandler translates a wire key/value pair into a typed
// setting change.
func (s *Server) AlterSettingHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		playerRequest
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	change, err := parseSettingChange(req.Key, req.Value)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.Registry.AlterSetting(req.LobbyID, req.PlayerName, change); err != nil {
		writeError(w, err)
		return
	}
	ok(w)
}

func parseSettingChange(key, value string) (lobby.SettingChange, error) {
	switch key {
	case "item_count":
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("item_count requires a number, got %q", value)
		}
		return lobby.SetItemCount{Count: n}, nil
	case "difficulty":
		d, valid := lobby.ParseDifficulty(value)
		if !valid {
			return nil, fmt.Errorf("unknown difficulty %q", value)
		}
		return lobby.SetDifficulty{Difficulty: d}, nil
	case "player_controlled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("player_controlled requires a boolean, got %q", value)
		}
		return lobby.SetPlayerControlled{Enabled: b}, nil
	case "theme":
		return lobby.SetTheme{Theme: value}, nil
	case "add_item":
		return lobby.AddQueuedItem{Name: value}, nil
	case "remove_item":
		return lobby.RemoveQueuedItem{Name: value}, nil
	case "refresh_item":
		return lobby.RefreshQueuedItem{Name: value}, nil
	case "refresh_all_items":
		return lobby.RefreshAllQueuedItems{}, nil
	case string(lobby.EconomyStartingCoins),
		string(lobby.EconomyCoinEveryXSeconds),
		string(lobby.EconomySubmitQuestionEveryXSeconds),
		string(lobby.EconomyAddItemEveryXQuestions),
		string(lobby.EconomySubmitQuestionCost),
		string(lobby.EconomyMaskedQuestionCost),
		string(lobby.EconomyGuessItemCost),
		string(lobby.EconomyQuestionMinVotes),
		string(lobby.EconomyScoreToCoinsRatio):
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("%s requires a number, got %q", key, value)
		}
		return lobby.SetEconomy{Field: lobby.EconomyField(key), Value: n}, nil
	}
	return nil, fmt.Errorf("unknown setting key %q", key)
}
