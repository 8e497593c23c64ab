package interview

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/interview-assistant/internal/domain/entities"
	"github.com/johnquangdev/interview-assistant/pkg/ai"
	"github.com/johnquangdev/interview-assistant/pkg/logger"
)

// MinAnswerLength is the minimum trimmed length of an answer worth scoring
const MinAnswerLength = 10

// OutcomeStatus tells how an evaluation attempt ended
type OutcomeStatus string

const (
	OutcomeEvaluated OutcomeStatus = "evaluated"
	OutcomeSkipped   OutcomeStatus = "skipped"
	OutcomeFailed    OutcomeStatus = "failed"
)

// SkipReason tells which guard skipped an evaluation
type SkipReason string

const (
	SkipInFlight     SkipReason = "in_flight"
	SkipDuplicate    SkipReason = "duplicate"
	SkipTooShort     SkipReason = "too_short"
	SkipNoCredential SkipReason = "no_credential"
)

// Outcome is the explicit result of an evaluation attempt
type Outcome struct {
	Status     OutcomeStatus
	Reason     SkipReason
	Evaluation *entities.AnswerEvaluation
	Err        error
}

// PendingEvaluation is an evaluation that passed the guards and awaits the scoring call
type PendingEvaluation struct {
	Question   entities.Question
	Number     int
	Answer     string
	Total      int
	JobContext string
	Credential string
}

// Evaluator scores answers in real time, one request at a time per session
type Evaluator struct {
	scorer  ai.Scorer
	timeout time.Duration
	logger  *zap.Logger
}

// NewEvaluator creates an evaluator. A zero timeout means 30s.
func NewEvaluator(scorer ai.Scorer, timeout time.Duration, log *zap.Logger) *Evaluator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Evaluator{scorer: scorer, timeout: timeout, logger: logger.OrNop(log)}
}

// Begin applies the guards in order. On success it marks the session in
// flight and returns the pending request; otherwise it returns the skip outcome.
func (e *Evaluator) Begin(st *SessionState, q entities.Question, answer string) (*PendingEvaluation, Outcome) {
	switch {
	case st.InFlight:
		return nil, skipped(SkipInFlight)
	case answer == st.LastEvaluated:
		return nil, skipped(SkipDuplicate)
	case len(strings.TrimSpace(answer)) < MinAnswerLength:
		return nil, skipped(SkipTooShort)
	case st.Credential == "" || e.scorer == nil:
		return nil, skipped(SkipNoCredential)
	}

	st.InFlight = true
	st.LastEvaluated = answer

	return &PendingEvaluation{
		Question:   q,
		Number:     st.QuestionNumber(q),
		Answer:     answer,
		Total:      st.TotalQuestions,
		JobContext: st.JobContext,
		Credential: st.Credential,
	}, Outcome{}
}

// Run performs the scoring call. It must not touch session state.
func (e *Evaluator) Run(ctx context.Context, p *PendingEvaluation) Outcome {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	score, err := e.scorer.ScoreAnswer(ctx, ai.AnswerRequest{
		Question:       p.Question.Text,
		Answer:         p.Answer,
		Criterion:      p.Question.CriterionOrDefault(),
		QuestionNumber: p.Number,
		TotalQuestions: p.Total,
		JobContext:     p.JobContext,
		Credential:     p.Credential,
	})
	if err != nil {
		return Outcome{Status: OutcomeFailed, Err: err}
	}

	eval := entities.AnswerEvaluation{
		QuestionNumber:    p.Number,
		QuestionText:      p.Question.Text,
		Criterion:         p.Question.CriterionOrDefault(),
		Score:             score.Score,
		Completeness:      entities.ParseCompleteness(score.Completeness, score.Answered),
		Answered:          score.Answered,
		CandidateResponse: p.Answer,
		Strengths:         nonNilStrings(score.Strengths),
		Gaps:              nonNilStrings(score.Gaps),
		Reasoning:         score.Reasoning,
		Source:            entities.SourceLive,
	}
	return Outcome{Status: OutcomeEvaluated, Evaluation: &eval}
}

// Complete applies the outcome of Run to the session state. Failures are
// logged and dropped; the batch pass at finalize recovers them.
func (e *Evaluator) Complete(st *SessionState, p *PendingEvaluation, o Outcome) Outcome {
	st.InFlight = false

	switch o.Status {
	case OutcomeEvaluated:
		st.Upsert(*o.Evaluation)
	case OutcomeFailed:
		e.logger.Warn("live evaluation failed",
			zap.String("session_id", st.SessionID.String()),
			zap.Int("question_number", p.Number),
			zap.Error(o.Err))
	}
	return o
}

func skipped(reason SkipReason) Outcome {
	return Outcome{Status: OutcomeSkipped, Reason: reason}
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
