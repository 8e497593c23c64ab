package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// InterviewPhase represents the stage of a live interview
type InterviewPhase string

const (
	PhaseSetup              InterviewPhase = "setup"
	PhaseGreeting           InterviewPhase = "greeting"
	PhaseQuestions          InterviewPhase = "questions"
	PhaseCandidateQuestions InterviewPhase = "candidate_questions"
	PhaseClosing            InterviewPhase = "closing"
)

var phaseOrder = map[InterviewPhase]int{
	PhaseSetup:              0,
	PhaseGreeting:           1,
	PhaseQuestions:          2,
	PhaseCandidateQuestions: 3,
	PhaseClosing:            4,
}

// Rank returns the ordinal of the phase, -1 when unknown
func (p InterviewPhase) Rank() int {
	r, ok := phaseOrder[p]
	if !ok {
		return -1
	}
	return r
}

// Before reports whether p comes strictly before other
func (p InterviewPhase) Before(other InterviewPhase) bool {
	return p.Rank() < other.Rank()
}

// InterviewSession is one candidate interview
type InterviewSession struct {
	ID              uuid.UUID                     `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID        string                        `json:"tenant_id" gorm:"type:varchar(100);not null;index"`
	JobID           string                        `json:"job_id,omitempty" gorm:"type:varchar(100);index"`
	CandidateName   string                        `json:"candidate_name,omitempty" gorm:"type:varchar(255)"`
	JobContext      string                        `json:"job_context,omitempty" gorm:"type:text"`
	Phase           InterviewPhase                `json:"phase" gorm:"type:varchar(30);not null;default:'setup'"`
	Questions       datatypes.JSONSlice[Question] `json:"questions" gorm:"type:jsonb"`
	LivekitRoomName string                        `json:"livekit_room_name,omitempty" gorm:"type:varchar(255);index"`
	EgressID        string                        `json:"egress_id,omitempty" gorm:"type:varchar(100)"`
	RecordingURL    string                        `json:"recording_url,omitempty" gorm:"type:text"`
	DurationSeconds int                           `json:"duration_seconds" gorm:"default:1800"`
	StartedAt       *time.Time                    `json:"started_at,omitempty"`
	EndedAt         *time.Time                    `json:"ended_at,omitempty"`
	Completed       bool                          `json:"completed" gorm:"not null;default:false"`
	CompletedAt     *time.Time                    `json:"completed_at,omitempty"`
	CreatedAt       time.Time                     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time                     `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (InterviewSession) TableName() string {
	return "interview_sessions"
}

// NewInterviewSession creates a session in the setup phase
func NewInterviewSession(tenantID, jobID string, questions []Question, duration time.Duration) *InterviewSession {
	return &InterviewSession{
		ID:              uuid.New(),
		TenantID:        tenantID,
		JobID:           jobID,
		Phase:           PhaseSetup,
		Questions:       questions,
		DurationSeconds: int(duration.Seconds()),
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
}

// AdvancePhase moves the session forward. Regressions and repeats are ignored.
func (s *InterviewSession) AdvancePhase(next InterviewPhase) bool {
	if next.Rank() < 0 || !s.Phase.Before(next) {
		return false
	}
	s.Phase = next
	if next == PhaseGreeting && s.StartedAt == nil {
		now := time.Now()
		s.StartedAt = &now
	}
	s.UpdatedAt = time.Now()
	return true
}

// MarkEnded records the end of the live conversation
func (s *InterviewSession) MarkEnded() {
	if s.EndedAt != nil {
		return
	}
	now := time.Now()
	s.EndedAt = &now
	s.AdvancePhase(PhaseClosing)
}

// MarkCompleted sets the one-time completion flag
func (s *InterviewSession) MarkCompleted() error {
	if s.Completed {
		return ErrSessionCompleted
	}
	now := time.Now()
	s.Completed = true
	s.CompletedAt = &now
	s.UpdatedAt = now
	return nil
}

// ConfiguredQuestionCount returns how many questions the session was configured with
func (s *InterviewSession) ConfiguredQuestionCount() int {
	return len(s.Questions)
}
