package interview

import (
	"strings"

	"github.com/google/uuid"

	"github.com/johnquangdev/interview-assistant/internal/domain/entities"
)

// SessionState is everything the live orchestration of one session mutates.
// It is owned by the session actor goroutine and never shared.
type SessionState struct {
	SessionID  uuid.UUID
	TenantID   string
	JobContext string
	Credential string

	Phase          entities.InterviewPhase
	Questions      []entities.Question
	TotalQuestions int
	Ready          bool

	// Current is the question being answered, nil before the first question
	Current     *entities.Question
	Tracked     map[int]bool
	Elaboration ElaborationController

	InFlight      bool
	LastEvaluated string
	Counter       int
	Evaluations   []entities.AnswerEvaluation

	Classifying bool
	Redirected  map[string]bool
}

// NewSessionState builds the live state of a session
func NewSessionState(session *entities.InterviewSession, credential string, total int) *SessionState {
	questions := make([]entities.Question, len(session.Questions))
	copy(questions, session.Questions)

	phase := session.Phase
	if phase == "" {
		phase = entities.PhaseSetup
	}

	return &SessionState{
		SessionID:      session.ID,
		TenantID:       session.TenantID,
		JobContext:     session.JobContext,
		Credential:     credential,
		Phase:          phase,
		Questions:      questions,
		TotalQuestions: total,
		Tracked:        make(map[int]bool),
		Redirected:     make(map[string]bool),
	}
}

// Advance moves the phase forward. Regressions are ignored.
func (s *SessionState) Advance(next entities.InterviewPhase) bool {
	if next.Rank() < 0 || !s.Phase.Before(next) {
		return false
	}
	s.Phase = next
	return true
}

// QuestionNumber returns the display number of a question: its configured
// index, the number it was already evaluated under, or the next counter value.
func (s *SessionState) QuestionNumber(q entities.Question) int {
	if q.Index > 0 {
		return q.Index
	}
	if i := s.evaluationIndex(q.Text); i >= 0 {
		return s.Evaluations[i].QuestionNumber
	}
	return s.Counter + 1
}

// Upsert stores eval, replacing an earlier evaluation of the same question text
func (s *SessionState) Upsert(eval entities.AnswerEvaluation) {
	if i := s.evaluationIndex(eval.QuestionText); i >= 0 {
		s.Evaluations[i] = eval
	} else {
		s.Evaluations = append(s.Evaluations, eval)
	}
	s.Counter++
}

// EvaluationsSnapshot returns a copy of the evaluations
func (s *SessionState) EvaluationsSnapshot() []entities.AnswerEvaluation {
	out := make([]entities.AnswerEvaluation, len(s.Evaluations))
	copy(out, s.Evaluations)
	return out
}

func (s *SessionState) evaluationIndex(text string) int {
	key := strings.TrimSpace(text)
	for i, e := range s.Evaluations {
		if strings.TrimSpace(e.QuestionText) == key {
			return i
		}
	}
	return -1
}
