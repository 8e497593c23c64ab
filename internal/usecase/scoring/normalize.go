package scoring

import (
	"strings"

	"github.com/johnquangdev/interview-assistant/internal/domain/entities"
)

var closingPatterns = []string{
	"do you have any questions",
	"thank you for your time",
	"thank you for interviewing",
	"recruitment team will respond",
	"we will get back to you",
	"that concludes",
}

const fallbackReasoning = "Automated scoring was unavailable for this answer; it was not scored."

// IsClosingMessage reports whether a question is a closing remark that must never be scored
func IsClosingMessage(text string) bool {
	lower := strings.ToLower(text)
	for _, pattern := range closingPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

// ScorableTotal counts the configured questions that can be scored.
// Closing remarks are excluded; an empty list yields the default total.
func ScorableTotal(questions []entities.Question) int {
	n := 0
	for _, q := range questions {
		if !IsClosingMessage(q.Text) {
			n++
		}
	}
	if n == 0 {
		return DefaultTotalQuestions
	}
	return n
}

// FilterClosing drops evaluations of closing remarks
func FilterClosing(evaluations []entities.AnswerEvaluation) []entities.AnswerEvaluation {
	out := make([]entities.AnswerEvaluation, 0, len(evaluations))
	for _, eval := range evaluations {
		if IsClosingMessage(eval.QuestionText) {
			continue
		}
		out = append(out, eval)
	}
	return out
}

// Result is the canonical outcome of normalizing a set of evaluations
type Result struct {
	Evaluations []entities.AnswerEvaluation
	Score       entities.AggregatedScore
	Source      entities.EvaluationSource
	Fallback    bool
}

// Normalize reduces a payload to canonical evaluations and recomputes the
// score from them. Totals the payload may carry are never trusted.
func Normalize(p Payload, totalConfigured int) Result {
	evaluations := FilterClosing(p.Evaluations())
	return Result{
		Evaluations: evaluations,
		Score:       Aggregate(evaluations, totalConfigured),
		Source:      entities.SourceBatch,
	}
}

// NormalizeEvaluations recomputes the score over evaluations that are
// already canonical, such as those collected live.
func NormalizeEvaluations(evaluations []entities.AnswerEvaluation, totalConfigured int, source entities.EvaluationSource) Result {
	filtered := FilterClosing(evaluations)
	return Result{
		Evaluations: filtered,
		Score:       Aggregate(filtered, totalConfigured),
		Source:      source,
	}
}

// Fallback builds a clearly tagged evaluation set for when the batch
// response could not be used. Live evaluations are kept; every other
// configured question is recorded as unscored.
func Fallback(questions []entities.Question, live []entities.AnswerEvaluation, totalConfigured int) Result {
	byText := make(map[string]entities.AnswerEvaluation, len(live))
	for _, eval := range FilterClosing(live) {
		byText[normalizeText(eval.QuestionText)] = eval
	}

	evaluations := make([]entities.AnswerEvaluation, 0, len(questions))
	used := make(map[string]bool, len(byText))
	n := 0
	for _, q := range questions {
		if IsClosingMessage(q.Text) {
			continue
		}
		n++
		key := normalizeText(q.Text)
		if eval, ok := byText[key]; ok && !used[key] {
			used[key] = true
			eval.QuestionNumber = n
			evaluations = append(evaluations, eval)
			continue
		}
		evaluations = append(evaluations, entities.AnswerEvaluation{
			QuestionNumber: n,
			QuestionText:   q.Text,
			Criterion:      q.CriterionOrDefault(),
			Completeness:   entities.CompletenessIncomplete,
			Strengths:      []string{},
			Gaps:           []string{},
			Reasoning:      fallbackReasoning,
			Source:         entities.SourceFallback,
		})
	}

	// live answers to ad-hoc questions are still scored
	for _, eval := range FilterClosing(live) {
		if key := normalizeText(eval.QuestionText); !used[key] {
			used[key] = true
			n++
			eval.QuestionNumber = n
			evaluations = append(evaluations, eval)
		}
	}

	return Result{
		Evaluations: evaluations,
		Score:       Aggregate(evaluations, totalConfigured),
		Source:      entities.SourceFallback,
		Fallback:    true,
	}
}

func normalizeText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
