// internal/lobby/answer.go
package lobby

import "strings"

// Answer is the closed set of responses a question can receive against an
// item.
type Answer string

const (
	AnswerYes     Answer = "Yes"
	AnswerNo      Answer = "No"
	AnswerMaybe   Answer = "Maybe"
	AnswerUnknown Answer = "Unknown"
)

// answerCycle drives Next for quizmaster clients stepping through choices.
var answerCycle = map[Answer]Answer{
	AnswerYes:     AnswerNo,
	AnswerNo:      AnswerMaybe,
	AnswerMaybe:   AnswerUnknown,
	AnswerUnknown: AnswerYes,
}

// Next returns the following answer in the fixed cycle
// Yes -> No -> Maybe -> Unknown -> Yes.
func (a Answer) Next() Answer {
	if next, ok := answerCycle[a]; ok {
		return next
	}
	return AnswerUnknown
}

// ParseAnswer matches an answer case-insensitively.
func ParseAnswer(s string) (Answer, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes":
		return AnswerYes, true
	case "no":
		return AnswerNo, true
	case "maybe":
		return AnswerMaybe, true
	case "unknown":
		return AnswerUnknown, true
	}
	return AnswerUnknown, false
}
