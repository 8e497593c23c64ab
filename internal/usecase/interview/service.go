package interview

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/interview-assistant/internal/domain/entities"
)

// Service defines the interface for the interview use case
type Service interface {
	// Create creates a session, provisions its room and starts live orchestration
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get returns a session with its live state when it is running
	Get(ctx context.Context, sessionID uuid.UUID) (*SessionView, error)

	// Dispatch applies one live event and returns the instructions to relay
	Dispatch(ctx context.Context, sessionID uuid.UUID, ev Event) ([]Instruction, error)

	// Attach binds the single stream of a live session. It returns the
	// asynchronous instructions and a channel closed when the session stops.
	// detach must be called once the stream closes.
	Attach(ctx context.Context, sessionID uuid.UUID) (instructions <-chan Instruction, done <-chan struct{}, detach func(), err error)

	// Drain returns the asynchronous instructions queued so far without blocking
	Drain(ctx context.Context, sessionID uuid.UUID) ([]Instruction, error)

	// End stops live orchestration without scoring
	End(ctx context.Context, sessionID uuid.UUID) error

	// Finalize scores the interview exactly once and stores the report
	Finalize(ctx context.Context, sessionID uuid.UUID) (*entities.EvaluationReport, error)

	// Transcript returns the persisted transcript turns
	Transcript(ctx context.Context, sessionID uuid.UUID) ([]*entities.TranscriptTurn, error)

	// Report returns the stored report
	Report(ctx context.Context, sessionID uuid.UUID) (*entities.EvaluationReport, error)

	// HandleRoomFinished ends the session bound to a finished LiveKit room
	HandleRoomFinished(ctx context.Context, roomName string) error

	// HandleRecordingFinished stores the recording location of a room
	HandleRecordingFinished(ctx context.Context, roomName, location string) error

	// Shutdown ends every live session
	Shutdown(ctx context.Context) error
}

// CreateInput represents input for creating an interview
type CreateInput struct {
	TenantID      string
	JobID         string
	CandidateName string
	JobContext    string
	Questions     []entities.Question
	Duration      time.Duration
}

// CreateOutput is the result of creating an interview
type CreateOutput struct {
	Session        *entities.InterviewSession
	LiveKitURL     string
	CandidateToken string
	AgentToken     string
	StreamTicket   string
	ExpiresAt      time.Time
}

// SessionView is a session with its live state
type SessionView struct {
	Session *entities.InterviewSession
	Live    bool
	State   *Snapshot
}
