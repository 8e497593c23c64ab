package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/interview-assistant/internal/domain/entities"
)

// InterviewSessionRepository defines data access for interview sessions.
// Finders return (nil, nil) when nothing matches.
type InterviewSessionRepository interface {
	// Create creates a new session
	Create(ctx context.Context, session *entities.InterviewSession) error

	// FindByID finds a session by ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.InterviewSession, error)

	// FindByRoomName finds the session bound to a LiveKit room
	FindByRoomName(ctx context.Context, roomName string) (*entities.InterviewSession, error)

	// UpdatePhase persists a phase transition
	UpdatePhase(ctx context.Context, id uuid.UUID, phase entities.InterviewPhase) error

	// MarkEnded records the end of the live conversation
	MarkEnded(ctx context.Context, id uuid.UUID, endedAt time.Time) error

	// SetRecording stores the egress ID and/or recording location
	SetRecording(ctx context.Context, id uuid.UUID, egressID, recordingURL string) error

	// CompleteWithReport flips the completion flag and stores the report atomically.
	// Returns entities.ErrSessionCompleted when the session was already completed.
	CompleteWithReport(ctx context.Context, report *entities.EvaluationReport) error
}

// TranscriptRepository defines data access for transcript turns
type TranscriptRepository interface {
	// Append stores one turn
	Append(ctx context.Context, turn *entities.TranscriptTurn) error

	// ListBySession returns the turns of a session ordered by sequence
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*entities.TranscriptTurn, error)
}

// LiveEvaluationRepository defines data access for real-time evaluations
type LiveEvaluationRepository interface {
	// Upsert inserts or replaces the evaluation of one question text
	Upsert(ctx context.Context, eval *entities.LiveEvaluation) error

	// ListBySession returns the evaluations ordered by question number
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]entities.AnswerEvaluation, error)
}

// ReportRepository defines read access to finalized reports
type ReportRepository interface {
	// FindBySessionID finds the report of a session
	FindBySessionID(ctx context.Context, sessionID uuid.UUID) (*entities.EvaluationReport, error)
}

// CredentialRepository defines data access for tenant scoring credentials
type CredentialRepository interface {
	// FindActive returns the active credential of a tenant
	FindActive(ctx context.Context, tenantID string) (*entities.TenantCredential, error)
}
