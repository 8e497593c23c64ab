package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/interview-assistant/internal/domain/entities"
	"github.com/johnquangdev/interview-assistant/internal/domain/repositories"
)

// TranscriptRepository handles transcript turn data operations
type TranscriptRepository struct {
	db *gorm.DB
}

var _ repositories.TranscriptRepository = (*TranscriptRepository)(nil)

// NewTranscriptRepository creates a new transcript repository
func NewTranscriptRepository(db *gorm.DB) *TranscriptRepository {
	return &TranscriptRepository{db: db}
}

// Append stores one turn
func (r *TranscriptRepository) Append(ctx context.Context, turn *entities.TranscriptTurn) error {
	if turn == nil {
		return errors.New("transcript turn cannot be nil")
	}
	return r.db.WithContext(ctx).Create(turn).Error
}

// ListBySession returns the turns of a session ordered by sequence
func (r *TranscriptRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*entities.TranscriptTurn, error) {
	var turns []*entities.TranscriptTurn
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("sequence ASC").
		Find(&turns).Error; err != nil {
		return nil, err
	}
	return turns, nil
}
