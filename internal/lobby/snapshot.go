// internal/lobby/snapshot.go
package lobby

import "sort"

// Snapshot is the player-scoped view of a lobby. Item names, masked
// question text and other players' coin balances are withheld unless the
// viewer is entitled to them.
type Snapshot struct {
	ID               string               `json:"id"`
	Phase            Phase                `json:"phase"`
	ElapsedSeconds   float64              `json:"elapsedSeconds"`
	KeyPlayer        string               `json:"keyPlayer"`
	Players          []PlayerView         `json:"players"`
	Chat             []ChatMessage        `json:"chat"`
	QuestionsQueue   []QueuedQuestionView `json:"questionsQueue"`
	QuizmasterQueue  []QuizmasterView     `json:"quizmasterQueue,omitempty"`
	Items            []ItemView           `json:"items"`
	CoinsCountdown   float64              `json:"coinsCountdown"`
	QuestionCooldown float64              `json:"questionCooldown"`
	Settings         Settings             `json:"settings"`
}

// PlayerView hides coin balances for everyone but the viewer.
type PlayerView struct {
	Name       string `json:"name"`
	Quizmaster bool   `json:"quizmaster"`
	Score      int    `json:"score"`
	Coins      int    `json:"coins"`
	You        bool   `json:"you,omitempty"`
}

// QueuedQuestionView blanks masked text for everyone but the author.
type QueuedQuestionView struct {
	Player   string `json:"player"`
	Question string `json:"question"`
	Masked   bool   `json:"masked"`
	Votes    int    `json:"votes"`
}

// ItemView never carries the item name for regular players; the name is
// the secret being guessed. The quizmaster sees it.
type ItemView struct {
	ID        int        `json:"id"`
	Name      string     `json:"name,omitempty"`
	Questions []Question `json:"questions"`
}

// QuizmasterView is only included for the quizmaster.
type QuizmasterView struct {
	Player   string           `json:"player"`
	Question string           `json:"question"`
	Masked   bool             `json:"masked"`
	Items    []QuizmasterItem `json:"items"`
}

// snapshotFor builds the view for one player. Caller holds the registry
// lock.
func (l *Lobby) snapshotFor(viewer *Player) *Snapshot {
	snap := &Snapshot{
		ID:               l.ID,
		Phase:            l.Phase,
		ElapsedSeconds:   l.ElapsedTime.Seconds(),
		KeyPlayer:        l.KeyPlayer,
		Chat:             append([]ChatMessage(nil), l.ChatMessages...),
		CoinsCountdown:   l.CoinsCountdown.Seconds(),
		QuestionCooldown: l.QuestionsQueueCountdown.Seconds(),
		Settings:         l.Settings,
	}

	for _, p := range l.Players {
		view := PlayerView{
			Name:       p.Name,
			Quizmaster: p.Quizmaster,
			Score:      p.Score,
		}
		if p == viewer {
			view.Coins = p.Coins
			view.You = true
		}
		snap.Players = append(snap.Players, view)
	}
	sort.Slice(snap.Players, func(i, j int) bool { return snap.Players[i].Name < snap.Players[j].Name })

	for _, q := range l.QuestionsQueue {
		view := QueuedQuestionView{
			Player: q.Player,
			Masked: q.Masked,
			Votes:  q.Votes,
		}
		if !q.Masked || q.Player == viewer.Name || viewer.Quizmaster {
			view.Question = q.Question
		}
		snap.QuestionsQueue = append(snap.QuestionsQueue, view)
	}

	for _, item := range l.Items {
		view := ItemView{ID: item.ID}
		if viewer.Quizmaster {
			view.Name = item.Name
		}
		for _, q := range item.Questions {
			applied := q
			if q.Masked && q.Player != viewer.Name && !viewer.Quizmaster {
				applied.Text = ""
			}
			view.Questions = append(view.Questions, applied)
		}
		snap.Items = append(snap.Items, view)
	}

	if viewer.Quizmaster {
		for _, q := range l.QuizmasterQueue {
			snap.QuizmasterQueue = append(snap.QuizmasterQueue, QuizmasterView{
				Player:   q.Player,
				Question: q.Question,
				Masked:   q.Masked,
				Items:    append([]QuizmasterItem(nil), q.Items...),
			})
		}
	}

	return snap
}
