// internal/lobby/lobby.go
package lobby

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Phase tracks a lobby's position in its lifecycle. Transitions only move
// forward: not started -> starting -> play -> ended, then removal.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseStarting   Phase = "starting"
	PhasePlay       Phase = "play"
	PhaseEnded      Phase = "ended"
)

// Validation limits shared with the public clients.
const (
	MinNameLength       = 3
	MaxLobbyIDLength    = 20
	MaxPlayerNameLength = 20
	MaxItemNameLength   = 30
	MinQuestionLength   = 5
	MaxQuestionLength   = 70
	MinChatLength       = 2
	MaxChatLength       = 100
	MaxChatMessages     = 20
	MaxLobbyItems       = 20

	// QuestionsPerItem is how many applied questions retire an item.
	QuestionsPerItem = 20
)

// ReservedName is the author attached to system chat messages. Players
// cannot claim it.
const ReservedName = "SYSTEM"

var (
	lobbyIDPattern    = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	playerNamePattern = regexp.MustCompile(`^[a-zA-Z0-9 ]+$`)
	itemNamePattern   = regexp.MustCompile(`^[a-zA-Z]+$`)
	questionPattern   = regexp.MustCompile(`^[a-zA-Z0-9 ?]+$`)
)

// Lobby is one isolated game session. All field access goes through the
// registry's scoped accessors, which hold the registry lock.
type Lobby struct {
	ID          string
	Phase       Phase
	ElapsedTime time.Duration
	LastUpdate  time.Time
	KeyPlayer   string
	Players     map[string]*Player

	ChatMessages []ChatMessage

	QuestionsQueue          []*QueuedQuestion
	QuestionsQueueCountdown time.Duration
	CoinsCountdown          time.Duration

	// QuizmasterQueue holds promoted questions awaiting manual answers.
	// Only populated in player-controlled mode.
	QuizmasterQueue []*QuizmasterQuestion

	Items        []*Item
	ItemsHistory []string
	ItemsQueue   []string

	QuestionsCounter int

	Settings Settings
}

// QuestionsQueueActive reports whether any queued question has reached the
// vote threshold, i.e. whether the promotion countdown should run.
func (l *Lobby) QuestionsQueueActive() bool {
	for _, q := range l.QuestionsQueue {
		if q.Votes >= l.Settings.QuestionMinVotes {
			return true
		}
	}
	return false
}

func (l *Lobby) findQueuedQuestion(text string) *QueuedQuestion {
	for _, q := range l.QuestionsQueue {
		if q.Question == text {
			return q
		}
	}
	return nil
}

// broadcast queues msg for every player in the lobby.
func (l *Lobby) broadcast(msg PlayerMessage) {
	for _, p := range l.Players {
		p.queue(msg)
	}
}

// addChat appends to the bounded chat log, dropping the oldest entry once
// the ring is full.
func (l *Lobby) addChat(player, text string) {
	l.ChatMessages = append(l.ChatMessages, ChatMessage{
		ID:      uuid.New(),
		Player:  player,
		Message: text,
	})
	if len(l.ChatMessages) > MaxChatMessages {
		l.ChatMessages = l.ChatMessages[1:]
	}
}

func (l *Lobby) addSystemChat(format string, args ...interface{}) {
	l.addChat(ReservedName, fmt.Sprintf(format, args...))
}

// Player is one participant, keyed by display name within its lobby.
type Player struct {
	Name        string
	LastContact time.Time
	Quizmaster  bool
	Score       int
	Coins       int

	// Messages is the outbound queue, drained on each state poll.
	Messages []PlayerMessage
}

func (p *Player) queue(msg PlayerMessage) {
	p.Messages = append(p.Messages, msg)
}

// PlayerMessageType enumerates the asynchronous notifications delivered
// through a player's message queue.
type PlayerMessageType string

const (
	MessageItemAdded        PlayerMessageType = "item_added"
	MessageQuestionAsked    PlayerMessageType = "question_asked"
	MessageQuestionRejected PlayerMessageType = "question_rejected"
	MessageAlert            PlayerMessageType = "alert"
	MessageGameStart        PlayerMessageType = "game_start"
	MessageCoinGiven        PlayerMessageType = "coin_given"
	MessageItemGuessed      PlayerMessageType = "item_guessed"
	MessageGuessIncorrect   PlayerMessageType = "guess_incorrect"
	MessageItemRemoved      PlayerMessageType = "item_removed"
	MessageWinner           PlayerMessageType = "winner"
)

// PlayerMessage is a single queued notification. Unused fields are omitted
// on the wire.
type PlayerMessage struct {
	Type     PlayerMessageType `json:"type"`
	Player   string            `json:"player,omitempty"`
	ItemID   int               `json:"itemId,omitempty"`
	ItemName string            `json:"itemName,omitempty"`
	Text     string            `json:"text,omitempty"`
}

// ChatMessage is one entry in the lobby chat ring. The ID lets clients
// deduplicate entries across polls.
type ChatMessage struct {
	ID      uuid.UUID `json:"id"`
	Player  string    `json:"player"`
	Message string    `json:"message"`
}

// QueuedQuestion is a submitted question awaiting promotion. Questions are
// unique by exact text within the queue.
type QueuedQuestion struct {
	Player   string
	Question string
	Masked   bool
	Votes    int

	// Voters records every vote cast. Double voting is allowed; a player
	// paying per vote appears once per vote.
	Voters []string
}

// Item is an active, answerable item. The ID is derived from the items
// history length and is never reused, even after retirement.
type Item struct {
	Name      string
	ID        int
	Questions []Question
}

// Question is one applied question. Its ID is shared across all items that
// received the same promotion.
type Question struct {
	Player string `json:"player"`
	ID     int    `json:"id"`
	Text   string `json:"text"`
	Answer Answer `json:"answer"`
	Masked bool   `json:"masked"`
}

// QuizmasterQuestion is a promoted question held for manual answering in
// player-controlled mode.
type QuizmasterQuestion struct {
	Player   string
	Question string
	Masked   bool
	Voters   []string
	Items    []QuizmasterItem
}

// QuizmasterItem carries the provisional answer for one item.
type QuizmasterItem struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Answer Answer `json:"answer"`
}
