// internal/lobby/questions_test.go
package lobby

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const suitableVerdict = `{"reasoning":"clear","suitable":true}`

func TestSubmitQuestionValidation(t *testing.T) {
	r, _, _ := newTestRegistry(t)
	mustConnect(t, r, "qval", "Alice")
	startGame(t, r, "Alice", "qval")

	assert.Error(t, r.SubmitQuestion(context.Background(), "qval", "Alice", "", false))
	assert.Error(t, r.SubmitQuestion(context.Background(), "qval", "Alice", "hi", false))
	assert.Error(t, r.SubmitQuestion(context.Background(), "qval", "Alice", "Is it alive!!", false))
	assert.Error(t, r.SubmitQuestion(context.Background(), "qval", "Alice",
		"Is it something that is far far far far far far far far far too long to ask", false))
}

func TestSubmitQuestionRoundTrip(t *testing.T) {
	r, oracle, _ := newTestRegistry(t)
	mustConnect(t, r, "qsubmit", "Alice", "Bob")
	startGame(t, r, "Alice", "qsubmit")

	oracle.push(suitableVerdict)
	require.NoError(t, r.SubmitQuestion(context.Background(), "qsubmit", "Bob", "is it alive", false))

	require.NoError(t, r.WithPlayerMut("qsubmit", "Bob", func(l *Lobby, p *Player) error {
		assert.Equal(t, l.Settings.StartingCoins-l.Settings.SubmitQuestionCost, p.Coins)
		require.Len(t, l.QuestionsQueue, 1)
		assert.Equal(t, "Is it alive?", l.QuestionsQueue[0].Question, "text is normalized before queuing")
		assert.Equal(t, "Bob", l.QuestionsQueue[0].Player)
		return nil
	}))
}

func TestSubmitQuestionOracleRejects(t *testing.T) {
	r, oracle, _ := newTestRegistry(t)
	mustConnect(t, r, "qreject", "Alice")
	startGame(t, r, "Alice", "qreject")

	oracle.push(`{"reasoning":"not a question","suitable":false}`)
	err := r.SubmitQuestion(context.Background(), "qreject", "Alice", "Bananas are great", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a question")

	require.NoError(t, r.WithPlayerMut("qreject", "Alice", func(l *Lobby, p *Player) error {
		assert.Equal(t, l.Settings.StartingCoins, p.Coins, "rejected questions cost nothing")
		assert.Empty(t, l.QuestionsQueue)
		return nil
	}))
}

func TestSubmitQuestionFailsClosedOnOracleError(t *testing.T) {
	r, _, _ := newTestRegistry(t)
	mustConnect(t, r, "qfail", "Alice")
	startGame(t, r, "Alice", "qfail")

	// No scripted response: the oracle call errors.
	err := r.SubmitQuestion(context.Background(), "qfail", "Alice", "Is it alive", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to validate")

	require.NoError(t, r.WithPlayerMut("qfail", "Alice", func(l *Lobby, p *Player) error {
		assert.Equal(t, l.Settings.StartingCoins, p.Coins)
		assert.Empty(t, l.QuestionsQueue)
		return nil
	}))
}

func TestSubmitQuestionInsufficientCoins(t *testing.T) {
	r, _, _ := newTestRegistry(t)
	mustConnect(t, r, "qpoor", "Alice")
	startGame(t, r, "Alice", "qpoor")

	setCoins(t, r, "qpoor", "Alice", 1)
	err := r.SubmitQuestion(context.Background(), "qpoor", "Alice", "Is it alive", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient coins")
}

func TestSubmitQuestionDuplicateText(t *testing.T) {
	r, oracle, _ := newTestRegistry(t)
	mustConnect(t, r, "qdup", "Alice")
	startGame(t, r, "Alice", "qdup")

	setCoins(t, r, "qdup", "Alice", 20)
	oracle.push(suitableVerdict, suitableVerdict)
	require.NoError(t, r.SubmitQuestion(context.Background(), "qdup", "Alice", "Is it alive", false))
	err := r.SubmitQuestion(context.Background(), "qdup", "Alice", "is it alive?", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestSubmitQuestionConcurrentDuplicates(t *testing.T) {
	r, oracle, _ := newTestRegistry(t)
	mustConnect(t, r, "qrace", "Alice", "Bob")
	startGame(t, r, "Alice", "qrace")

	oracle.push(suitableVerdict, suitableVerdict)
	errs := make(chan error, 2)
	for _, name := range []string{"Alice", "Bob"} {
		name := name
		go func() {
			errs <- r.SubmitQuestion(context.Background(), "qrace", name, "Is it alive", false)
		}()
	}

	var failures int
	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			failures++
		}
	}
	assert.Equal(t, 1, failures, "exactly one of two identical submissions wins")

	require.NoError(t, r.WithLobby("qrace", func(l *Lobby) error {
		assert.Len(t, l.QuestionsQueue, 1)
		return nil
	}))
}

func TestVoteQuestion(t *testing.T) {
	r, oracle, _ := newTestRegistry(t)
	mustConnect(t, r, "qvote", "Alice", "Bob")
	startGame(t, r, "Alice", "qvote")

	oracle.push(suitableVerdict)
	require.NoError(t, r.SubmitQuestion(context.Background(), "qvote", "Alice", "Is it alive", false))

	require.NoError(t, r.VoteQuestion("qvote", "Bob", "Is it alive?"))
	// Double voting is allowed; each vote costs a coin.
	require.NoError(t, r.VoteQuestion("qvote", "Bob", "Is it alive?"))

	require.NoError(t, r.WithPlayerMut("qvote", "Bob", func(l *Lobby, p *Player) error {
		assert.Equal(t, l.Settings.StartingCoins-2, p.Coins)
		require.Len(t, l.QuestionsQueue, 1)
		assert.Equal(t, 2, l.QuestionsQueue[0].Votes)
		assert.Equal(t, []string{"Bob", "Bob"}, l.QuestionsQueue[0].Voters)
		return nil
	}))

	err := r.VoteQuestion("qvote", "Bob", "Never asked?")
	assert.True(t, IsNotFound(err))
}

func TestConvertScore(t *testing.T) {
	r, _, _ := newTestRegistry(t)
	mustConnect(t, r, "convert", "Alice")
	startGame(t, r, "Alice", "convert")

	assert.Error(t, r.ConvertScore("convert", "Alice"), "no score to convert yet")

	require.NoError(t, r.WithPlayerMut("convert", "Alice", func(_ *Lobby, p *Player) error {
		p.Score = 2
		return nil
	}))
	require.NoError(t, r.ConvertScore("convert", "Alice"))
	require.NoError(t, r.WithPlayerMut("convert", "Alice", func(l *Lobby, p *Player) error {
		assert.Equal(t, 1, p.Score)
		assert.Equal(t, l.Settings.StartingCoins+l.Settings.ScoreToCoinsRatio, p.Coins)
		return nil
	}))
}

// voteToThreshold pushes a queued question to the promotion threshold.
func voteToThreshold(t *testing.T, r *Registry, lobbyID, text string) {
	t.Helper()
	require.NoError(t, r.WithLobbyMut(lobbyID, func(l *Lobby) error {
		q := l.findQueuedQuestion(text)
		require.NotNil(t, q)
		q.Votes = l.Settings.QuestionMinVotes
		return nil
	}))
}

func TestAskTopQuestionAppliesToAllItems(t *testing.T) {
	r, oracle, _ := newTestRegistry(t)
	mustConnect(t, r, "qask", "Alice")
	startGame(t, r, "Alice", "qask")

	oracle.push(suitableVerdict)
	require.NoError(t, r.SubmitQuestion(context.Background(), "qask", "Alice", "Is it alive", false))
	voteToThreshold(t, r, "qask", "Is it alive?")

	oracle.push(`{"answers":["yes","no"]}`)
	require.NoError(t, r.AskTopQuestion(context.Background(), "qask"))

	require.NoError(t, r.WithLobby("qask", func(l *Lobby) error {
		assert.Empty(t, l.QuestionsQueue)
		require.Len(t, l.Items, 2)
		require.Len(t, l.Items[0].Questions, 1)
		require.Len(t, l.Items[1].Questions, 1)
		assert.Equal(t, AnswerYes, l.Items[0].Questions[0].Answer)
		assert.Equal(t, AnswerNo, l.Items[1].Questions[0].Answer)
		assert.Equal(t, l.Items[0].Questions[0].ID, l.Items[1].Questions[0].ID,
			"one promotion shares one question id across items")
		assert.Equal(t, 1, l.QuestionsCounter)
		return nil
	}))
}

func TestAskTopQuestionNeedsVotes(t *testing.T) {
	r, oracle, _ := newTestRegistry(t)
	mustConnect(t, r, "qnovotes", "Alice")
	startGame(t, r, "Alice", "qnovotes")

	oracle.push(suitableVerdict)
	require.NoError(t, r.SubmitQuestion(context.Background(), "qnovotes", "Alice", "Is it alive", false))

	err := r.AskTopQuestion(context.Background(), "qnovotes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "votes")
}

func TestAskTopQuestionRetriesBadAnswers(t *testing.T) {
	r, oracle, _ := newTestRegistry(t)
	mustConnect(t, r, "qretry", "Alice")
	startGame(t, r, "Alice", "qretry")

	oracle.push(suitableVerdict)
	require.NoError(t, r.SubmitQuestion(context.Background(), "qretry", "Alice", "Is it alive", false))
	voteToThreshold(t, r, "qretry", "Is it alive?")

	oracle.push(
		`not even json`,
		`{"answers":["yes"]}`,
		`{"answers":["yes","sometimes"]}`,
		`{"answers":["maybe","unknown"]}`,
	)
	require.NoError(t, r.AskTopQuestion(context.Background(), "qretry"))

	require.NoError(t, r.WithLobby("qretry", func(l *Lobby) error {
		require.Len(t, l.Items, 2)
		assert.Equal(t, AnswerMaybe, l.Items[0].Questions[0].Answer)
		assert.Equal(t, AnswerUnknown, l.Items[1].Questions[0].Answer)
		return nil
	}))
}

func TestAskTopQuestionAbortsAfterRetries(t *testing.T) {
	r, oracle, _ := newTestRegistry(t)
	mustConnect(t, r, "qabort", "Alice")
	startGame(t, r, "Alice", "qabort")

	oracle.push(suitableVerdict)
	require.NoError(t, r.SubmitQuestion(context.Background(), "qabort", "Alice", "Is it alive", false))
	voteToThreshold(t, r, "qabort", "Is it alive?")

	// Every attempt is unusable.
	oracle.push(`bad`, `bad`, `bad`, `bad`)
	err := r.AskTopQuestion(context.Background(), "qabort")
	require.Error(t, err)

	require.NoError(t, r.WithLobby("qabort", func(l *Lobby) error {
		for _, item := range l.Items {
			assert.Empty(t, item.Questions, "failed promotion applies nothing")
		}
		return nil
	}))
}

func TestAskTopQuestionTieBreaksEarliest(t *testing.T) {
	r, oracle, _ := newTestRegistry(t)
	mustConnect(t, r, "qtie", "Alice")
	startGame(t, r, "Alice", "qtie")

	setCoins(t, r, "qtie", "Alice", 20)
	oracle.push(suitableVerdict, suitableVerdict)
	require.NoError(t, r.SubmitQuestion(context.Background(), "qtie", "Alice", "Is it alive", false))
	require.NoError(t, r.SubmitQuestion(context.Background(), "qtie", "Alice", "Is it heavy", false))
	voteToThreshold(t, r, "qtie", "Is it alive?")
	voteToThreshold(t, r, "qtie", "Is it heavy?")

	oracle.push(`{"answers":["yes","no"]}`)
	require.NoError(t, r.AskTopQuestion(context.Background(), "qtie"))

	require.NoError(t, r.WithLobby("qtie", func(l *Lobby) error {
		require.Len(t, l.QuestionsQueue, 1)
		assert.Equal(t, "Is it heavy?", l.QuestionsQueue[0].Question,
			"equal votes promote the earliest submission")
		assert.Equal(t, "Is it alive", l.Items[0].Questions[0].Text[:11])
		return nil
	}))
}

func TestItemRetiresAtQuestionLimit(t *testing.T) {
	r, oracle, _ := newTestRegistry(t)
	mustConnect(t, r, "qlimit", "Alice")
	startGame(t, r, "Alice", "qlimit")

	// Bring one item to the brink of retirement.
	require.NoError(t, r.WithLobbyMut("qlimit", func(l *Lobby) error {
		l.Items = l.Items[:1]
		for i := 0; i < QuestionsPerItem-1; i++ {
			l.Items[0].Questions = append(l.Items[0].Questions, Question{ID: i, Text: "Filler?", Answer: AnswerNo})
		}
		l.QuestionsCounter = QuestionsPerItem - 1
		return nil
	}))

	oracle.push(suitableVerdict)
	require.NoError(t, r.SubmitQuestion(context.Background(), "qlimit", "Alice", "Is it alive", false))
	voteToThreshold(t, r, "qlimit", "Is it alive?")
	oracle.push(`{"answers":["yes"]}`)
	require.NoError(t, r.AskTopQuestion(context.Background(), "qlimit"))

	require.NoError(t, r.WithLobby("qlimit", func(l *Lobby) error {
		for _, item := range l.Items {
			assert.Less(t, len(item.Questions), QuestionsPerItem, "retired items leave play")
		}
		return nil
	}))
}
