package interview

import (
	"fmt"
	"math"
	"strings"

	"github.com/johnquangdev/interview-assistant/internal/domain/entities"
	"github.com/johnquangdev/interview-assistant/internal/usecase/scoring"
)

// CountAnsweredPairs counts the distinct interview questions in a transcript
// that were followed by a substantive candidate answer. Setup checks and
// closing remarks do not count.
func CountAnsweredPairs(turns []*entities.TranscriptTurn, questions []entities.Question) int {
	matcher := NewQuestionMatcher(DefaultMatcherConfig(), questions)
	answered := make(map[string]bool)
	current := ""

	for _, turn := range turns {
		switch turn.Role {
		case entities.RoleAgent:
			tracked, ok := matcher.Track(turn.Text)
			if !ok {
				continue
			}
			q := tracked.Question
			if IsSetupQuestion(q.Text) || scoring.IsClosingMessage(q.Text) {
				current = ""
				continue
			}
			if tracked.AdHoc {
				current = strings.ToLower(strings.TrimSpace(q.Text))
			} else {
				current = fmt.Sprintf("#%d", q.Index)
			}
		case entities.RoleCandidate:
			if current != "" && !IsTrivialUtterance(turn.Text) {
				answered[current] = true
			}
		}
	}
	return len(answered)
}

// RequiredAnswers is the number of answered questions an interview needs
// before it can be finalized: max(1, ceil(scorable*ratio)).
func RequiredAnswers(questions []entities.Question, ratio float64) int {
	scorable := 0
	for _, q := range questions {
		if !scoring.IsClosingMessage(q.Text) {
			scorable++
		}
	}
	required := int(math.Ceil(float64(scorable) * ratio))
	if required < 1 {
		required = 1
	}
	return required
}
