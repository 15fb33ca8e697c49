// internal/lobby/answer_test.go
package lobby

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnswerNextCycles(t *testing.T) {
	assert.Equal(t, AnswerNo, AnswerYes.Next())
	assert.Equal(t, AnswerMaybe, AnswerNo.Next())
	assert.Equal(t, AnswerUnknown, AnswerMaybe.Next())
	assert.Equal(t, AnswerYes, AnswerUnknown.Next())
	assert.Equal(t, AnswerUnknown, Answer("garbage").Next())
}

func TestParseAnswer(t *testing.T) {
	a, valid := ParseAnswer(" YES ")
	assert.True(t, valid)
	assert.Equal(t, AnswerYes, a)

	a, valid = ParseAnswer("maybe")
	assert.True(t, valid)
	assert.Equal(t, AnswerMaybe, a)

	_, valid = ParseAnswer("sometimes")
	assert.False(t, valid)
}
