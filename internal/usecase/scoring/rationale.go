package scoring

import (
	"fmt"
	"strings"

	"github.com/johnquangdev/interview-assistant/internal/domain/entities"
)

// Rationale renders the human readable explanation stored with a report:
// the weighting formula followed by one line per question.
func Rationale(score entities.AggregatedScore) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Overall score %d/100 (%s, %s).\n", score.OverallScore, score.Recommendation, score.ResultLabel())
	fmt.Fprintf(&b, "Formula: %s\n", score.Formula)
	fmt.Fprintf(&b, "Marks: %d/%d over %d configured question(s), %d not asked.\n",
		score.Marks.TotalMarksObtained, score.Marks.MaxMarks,
		score.Marks.TotalConfiguredQuestions, score.Marks.QuestionsNotAsked)

	for _, q := range score.Questions {
		status := fmt.Sprintf("%.0f/100", q.EffectiveScore)
		if q.Unanswered {
			status = "unanswered"
		}
		reasoning := strings.TrimSpace(q.Reasoning)
		if reasoning == "" {
			reasoning = "No reasoning provided."
		}
		fmt.Fprintf(&b, "Q%d [%s] %s: %s\n", q.QuestionNumber, q.Criterion, status, reasoning)
	}
	return strings.TrimRight(b.String(), "\n")
}
