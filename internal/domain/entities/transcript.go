package entities

import (
	"time"

	"github.com/google/uuid"
)

// SpeakerRole identifies who produced a transcript turn
type SpeakerRole string

const (
	RoleAgent     SpeakerRole = "agent"
	RoleCandidate SpeakerRole = "candidate"
)

// TranscriptTurn is one append-only entry of the interview conversation
type TranscriptTurn struct {
	ID        uuid.UUID   `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SessionID uuid.UUID   `json:"session_id" gorm:"type:uuid;not null;uniqueIndex:idx_transcript_turns_session_seq"`
	Sequence  int         `json:"sequence" gorm:"not null;uniqueIndex:idx_transcript_turns_session_seq"`
	Role      SpeakerRole `json:"role" gorm:"type:varchar(20);not null"`
	Text      string      `json:"text" gorm:"type:text;not null"`
	Timestamp time.Time   `json:"timestamp" gorm:"not null"`
	CreatedAt time.Time   `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (TranscriptTurn) TableName() string {
	return "transcript_turns"
}

// NewTranscriptTurn creates a turn stamped with the current time
func NewTranscriptTurn(sessionID uuid.UUID, seq int, role SpeakerRole, text string) *TranscriptTurn {
	return &TranscriptTurn{
		ID:        uuid.New(),
		SessionID: sessionID,
		Sequence:  seq,
		Role:      role,
		Text:      text,
		Timestamp: time.Now(),
	}
}
