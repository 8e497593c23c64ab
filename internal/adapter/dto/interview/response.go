package interview

import (
	"time"

	"github.com/johnquangdev/interview-assistant/internal/domain/entities"
)

// InterviewResponse represents a session in API responses
type InterviewResponse struct {
	ID              string              `json:"id"`
	TenantID        string              `json:"tenant_id"`
	JobID           string              `json:"job_id,omitempty"`
	CandidateName   string              `json:"candidate_name,omitempty"`
	Phase           string              `json:"phase"`
	Questions       []entities.Question `json:"questions"`
	LivekitRoomName string              `json:"livekit_room_name,omitempty"`
	RecordingURL    string              `json:"recording_url,omitempty"`
	DurationSeconds int                 `json:"duration_seconds"`
	Live            bool                `json:"live"`
	Completed       bool                `json:"completed"`
	StartedAt       *time.Time          `json:"started_at,omitempty"`
	EndedAt         *time.Time          `json:"ended_at,omitempty"`
	CompletedAt     *time.Time          `json:"completed_at,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	State           *LiveStateResponse  `json:"state,omitempty"`
}

// LiveStateResponse is the live orchestration state of a running session
type LiveStateResponse struct {
	CurrentQuestion     string                      `json:"current_question,omitempty"`
	Criterion           string                      `json:"criterion,omitempty"`
	EvaluationCount     int                         `json:"evaluation_count"`
	EvaluationInFlight  bool                        `json:"evaluation_in_flight"`
	Turns               int                         `json:"turns"`
	ElaborationPrompts  int                         `json:"elaboration_prompts"`
	AccumulatedResponse string                      `json:"accumulated_response,omitempty"`
	Evaluations         []entities.AnswerEvaluation `json:"evaluations"`
}

// CreateInterviewResponse is returned when an interview is created
type CreateInterviewResponse struct {
	Interview      *InterviewResponse `json:"interview"`
	LivekitURL     string             `json:"livekit_url"`
	CandidateToken string             `json:"candidate_token"`
	AgentToken     string             `json:"agent_token"`
	StreamTicket   string             `json:"stream_ticket"`
	ExpiresAt      time.Time          `json:"expires_at"`
}

// InstructionResponse is an outbound control message for the conversational agent
type InstructionResponse struct {
	Type         string              `json:"type"`
	Kind         string              `json:"kind"`
	Instructions string              `json:"instructions"`
	Questions    []entities.Question `json:"questions,omitempty"`
}

// DispatchEventsResponse lists the instructions produced by a batch of events
type DispatchEventsResponse struct {
	Instructions []InstructionResponse `json:"instructions"`
}

// TranscriptTurnResponse is one transcript entry
type TranscriptTurnResponse struct {
	Sequence  int       `json:"sequence"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// TranscriptResponse is the persisted transcript of a session
type TranscriptResponse struct {
	SessionID string                   `json:"session_id"`
	Turns     []TranscriptTurnResponse `json:"turns"`
}

// ReportResponse is the canonical evaluation of a completed interview
type ReportResponse struct {
	SessionID    string                      `json:"session_id"`
	OverallScore int                         `json:"overall_score"`
	Result       string                      `json:"result"`
	Source       string                      `json:"source"`
	Fallback     bool                        `json:"fallback"`
	Score        entities.AggregatedScore    `json:"score"`
	Evaluations  []entities.AnswerEvaluation `json:"evaluations"`
	Rationale    string                      `json:"rationale"`
	ArchiveKey   string                      `json:"archive_key,omitempty"`
	CreatedAt    time.Time                   `json:"created_at"`
}

// StreamErrorResponse is sent over the live stream when an event is rejected
type StreamErrorResponse struct {
	Type    string `json:"type"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}
