// internal/lobby/settings.go
package lobby

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/CodedNil/deducers-sub000/internal/words"
)

// Difficulty selects which word pools feed item generation.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// ParseDifficulty matches a difficulty case-insensitively.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return DifficultyEasy, true
	case "medium":
		return DifficultyMedium, true
	case "hard":
		return DifficultyHard, true
	}
	return DifficultyEasy, false
}

func (d Difficulty) tier() words.Tier {
	switch d {
	case DifficultyMedium:
		return words.Medium
	case DifficultyHard:
		return words.Hard
	default:
		return words.Easy
	}
}

// Settings holds the tunable economy and difficulty parameters of a lobby.
// Mutable only before the lobby starts, and only by the key player.
type Settings struct {
	ItemCount        int        `json:"itemCount"`
	Difficulty       Difficulty `json:"difficulty"`
	PlayerControlled bool       `json:"playerControlled"`
	Theme            string     `json:"theme"`

	StartingCoins               int `json:"startingCoins"`
	CoinEveryXSeconds           int `json:"coinEveryXSeconds"`
	SubmitQuestionEveryXSeconds int `json:"submitQuestionEveryXSeconds"`
	AddItemEveryXQuestions      int `json:"addItemEveryXQuestions"`

	SubmitQuestionCost int `json:"submitQuestionCost"`
	MaskedQuestionCost int `json:"maskedQuestionCost"`
	GuessItemCost      int `json:"guessItemCost"`
	QuestionMinVotes   int `json:"questionMinVotes"`

	ScoreToCoinsRatio int `json:"scoreToCoinsRatio"`
}

// DefaultSettings returns the parameters every new lobby starts with.
func DefaultSettings() Settings {
	return Settings{
		ItemCount:        6,
		Difficulty:       DifficultyEasy,
		PlayerControlled: false,

		StartingCoins:               4,
		CoinEveryXSeconds:           8,
		SubmitQuestionEveryXSeconds: 10,
		AddItemEveryXQuestions:      5,

		SubmitQuestionCost: 4,
		MaskedQuestionCost: 8,
		GuessItemCost:      3,
		QuestionMinVotes:   2,

		ScoreToCoinsRatio: 3,
	}
}

func (s Settings) CoinInterval() time.Duration {
	return time.Duration(s.CoinEveryXSeconds) * time.Second
}

func (s Settings) QuestionInterval() time.Duration {
	return time.Duration(s.SubmitQuestionEveryXSeconds) * time.Second
}

func (s Settings) String() string {
	mode := "AI Controlled"
	if s.PlayerControlled {
		mode = "Quizmaster"
	}
	return fmt.Sprintf("%d Items, %s, %s", s.ItemCount, s.Difficulty, mode)
}

// SettingChange is the closed set of lobby setting mutations. Concrete
// types instead of string keys keep the switch in AlterSetting exhaustive.
type SettingChange interface {
	settingChange()
}

type SetItemCount struct{ Count int }

type SetDifficulty struct{ Difficulty Difficulty }

type SetPlayerControlled struct{ Enabled bool }

type SetTheme struct{ Theme string }

// AddQueuedItem appends a curated item name; an empty name draws a random
// word from the offline pool instead.
type AddQueuedItem struct{ Name string }

type RemoveQueuedItem struct{ Name string }

type RefreshQueuedItem struct{ Name string }

type RefreshAllQueuedItems struct{}

// SetEconomy updates one of the numeric economy knobs.
type SetEconomy struct {
	Field EconomyField
	Value int
}

func (SetItemCount) settingChange()          {}
func (SetDifficulty) settingChange()         {}
func (SetPlayerControlled) settingChange()   {}
func (SetTheme) settingChange()              {}
func (AddQueuedItem) settingChange()         {}
func (RemoveQueuedItem) settingChange()      {}
func (RefreshQueuedItem) settingChange()     {}
func (RefreshAllQueuedItems) settingChange() {}
func (SetEconomy) settingChange()            {}

// EconomyField names the numeric settings reachable through SetEconomy.
type EconomyField string

const (
	EconomyStartingCoins               EconomyField = "starting_coins"
	EconomyCoinEveryXSeconds           EconomyField = "coin_every_x_seconds"
	EconomySubmitQuestionEveryXSeconds EconomyField = "submit_question_every_x_seconds"
	EconomyAddItemEveryXQuestions      EconomyField = "add_item_every_x_questions"
	EconomySubmitQuestionCost          EconomyField = "submit_question_cost"
	EconomyMaskedQuestionCost          EconomyField = "masked_question_cost"
	EconomyGuessItemCost               EconomyField = "guess_item_cost"
	EconomyQuestionMinVotes            EconomyField = "question_min_votes"
	EconomyScoreToCoinsRatio           EconomyField = "score_to_coins_ratio"
)

// AlterSetting applies one settings change. Settings are frozen once the
// lobby leaves the not-started phase, and only the key player may touch
// them.
func (r *Registry) AlterSetting(lobbyID, playerName string, change SettingChange) error {
	return r.WithLobbyMut(lobbyID, func(l *Lobby) error {
		if playerName != l.KeyPlayer {
			return errors.New("only the key player can alter the lobby settings")
		}
		if l.Phase != PhaseNotStarted {
			return errors.New("settings are locked once the lobby has started")
		}

		switch c := change.(type) {
		case SetItemCount:
			if c.Count < 1 || c.Count > MaxLobbyItems {
				return fmt.Errorf("item count must be between 1 and %d", MaxLobbyItems)
			}
			l.Settings.ItemCount = c.Count
			// Grow or shrink the queue to match the new target.
			if len(l.ItemsQueue) < c.Count {
				extra := words.SelectUnique(l.ItemsQueue, l.Settings.Difficulty.tier(), c.Count-len(l.ItemsQueue))
				l.ItemsQueue = append(l.ItemsQueue, extra...)
			} else if len(l.ItemsQueue) > c.Count {
				l.ItemsQueue = l.ItemsQueue[:c.Count]
			}
		case SetDifficulty:
			if _, ok := ParseDifficulty(string(c.Difficulty)); !ok {
				return fmt.Errorf("unknown difficulty %q", c.Difficulty)
			}
			l.Settings.Difficulty = c.Difficulty
		case SetPlayerControlled:
			l.Settings.PlayerControlled = c.Enabled
		case SetTheme:
			l.Settings.Theme = strings.TrimSpace(c.Theme)
		case AddQueuedItem:
			if len(l.ItemsQueue) >= MaxLobbyItems {
				return fmt.Errorf("lobby may queue at most %d items", MaxLobbyItems)
			}
			name := strings.TrimSpace(c.Name)
			if name == "" {
				picked := words.SelectUnique(l.ItemsQueue, l.Settings.Difficulty.tier(), 1)
				if len(picked) == 0 {
					return errors.New("no words left to draw from")
				}
				l.ItemsQueue = append(l.ItemsQueue, picked[0])
				l.Settings.ItemCount = len(l.ItemsQueue)
				return nil
			}
			if !itemNamePattern.MatchString(name) {
				return errors.New("item name must be alphabetic")
			}
			if len(name) < MinNameLength || len(name) > MaxItemNameLength {
				return fmt.Errorf("item name must be between %d and %d characters long", MinNameLength, MaxItemNameLength)
			}
			if containsFold(l.ItemsQueue, name) {
				return fmt.Errorf("item %q already exists in the lobby", name)
			}
			l.ItemsQueue = append(l.ItemsQueue, capitalize(name))
			l.Settings.ItemCount = len(l.ItemsQueue)
		case RemoveQueuedItem:
			idx := indexFold(l.ItemsQueue, c.Name)
			if idx >= 0 {
				l.ItemsQueue = append(l.ItemsQueue[:idx], l.ItemsQueue[idx+1:]...)
			}
			l.Settings.ItemCount = len(l.ItemsQueue)
		case RefreshQueuedItem:
			idx := indexFold(l.ItemsQueue, c.Name)
			if idx >= 0 {
				picked := words.SelectUnique(l.ItemsQueue, l.Settings.Difficulty.tier(), 1)
				if len(picked) > 0 {
					l.ItemsQueue[idx] = picked[0]
				}
			}
		case RefreshAllQueuedItems:
			l.ItemsQueue = words.Select(l.Settings.Difficulty.tier(), l.Settings.ItemCount)
		case SetEconomy:
			if c.Value < 0 {
				return errors.New("setting value must not be negative")
			}
			switch c.Field {
			case EconomyStartingCoins:
				l.Settings.StartingCoins = c.Value
			case EconomyCoinEveryXSeconds:
				l.Settings.CoinEveryXSeconds = c.Value
			case EconomySubmitQuestionEveryXSeconds:
				l.Settings.SubmitQuestionEveryXSeconds = c.Value
			case EconomyAddItemEveryXQuestions:
				l.Settings.AddItemEveryXQuestions = c.Value
			case EconomySubmitQuestionCost:
				l.Settings.SubmitQuestionCost = c.Value
			case EconomyMaskedQuestionCost:
				l.Settings.MaskedQuestionCost = c.Value
			case EconomyGuessItemCost:
				l.Settings.GuessItemCost = c.Value
			case EconomyQuestionMinVotes:
				l.Settings.QuestionMinVotes = c.Value
			case EconomyScoreToCoinsRatio:
				l.Settings.ScoreToCoinsRatio = c.Value
			default:
				return fmt.Errorf("unknown setting key %q", c.Field)
			}
		default:
			return fmt.Errorf("unsupported setting change %T", change)
		}
		return nil
	})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func containsFold(list []string, s string) bool {
	return indexFold(list, s) >= 0
}

func indexFold(list []string, s string) int {
	for i, v := range list {
		if strings.EqualFold(v, s) {
			return i
		}
	}
	return -1
}
