package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/interview-assistant/internal/domain/entities"
	"github.com/johnquangdev/interview-assistant/internal/domain/repositories"
)

// InterviewSessionRepository handles interview session data operations
type InterviewSessionRepository struct {
	db *gorm.DB
}

var _ repositories.InterviewSessionRepository = (*InterviewSessionRepository)(nil)

// NewInterviewSessionRepository creates a new interview session repository
func NewInterviewSessionRepository(db *gorm.DB) *InterviewSessionRepository {
	return &InterviewSessionRepository{db: db}
}

// Create creates a new session
func (r *InterviewSessionRepository) Create(ctx context.Context, session *entities.InterviewSession) error {
	if session == nil {
		return errors.New("session cannot be nil")
	}
	return r.db.WithContext(ctx).Create(session).Error
}

// FindByID finds a session by ID
func (r *InterviewSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.InterviewSession, error) {
	var session entities.InterviewSession
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// FindByRoomName finds the session bound to a LiveKit room
func (r *InterviewSessionRepository) FindByRoomName(ctx context.Context, roomName string) (*entities.InterviewSession, error) {
	var session entities.InterviewSession
	if err := r.db.WithContext(ctx).Where("livekit_room_name = ?", roomName).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// UpdatePhase persists a phase transition
func (r *InterviewSessionRepository) UpdatePhase(ctx context.Context, id uuid.UUID, phase entities.InterviewPhase) error {
	now := time.Now()
	updates := map[string]interface{}{"phase": phase, "updated_at": now}
	if phase == entities.PhaseGreeting {
		updates["started_at"] = gorm.Expr("COALESCE(started_at, ?)", now)
	}
	return r.db.WithContext(ctx).Model(&entities.InterviewSession{}).Where("id = ?", id).Updates(updates).Error
}

// MarkEnded records the end of the live conversation, keeping the first end time
func (r *InterviewSessionRepository) MarkEnded(ctx context.Context, id uuid.UUID, endedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&entities.InterviewSession{}).
		Where("id = ? AND ended_at IS NULL", id).
		Updates(map[string]interface{}{
			"ended_at":   endedAt,
			"phase":      entities.PhaseClosing,
			"updated_at": time.Now(),
		}).Error
}

// SetRecording stores the egress ID and/or recording location. Empty values are left untouched.
func (r *InterviewSessionRepository) SetRecording(ctx context.Context, id uuid.UUID, egressID, recordingURL string) error {
	updates := map[string]interface{}{"updated_at": time.Now()}
	if egressID != "" {
		updates["egress_id"] = egressID
	}
	if recordingURL != "" {
		updates["recording_url"] = recordingURL
	}
	return r.db.WithContext(ctx).Model(&entities.InterviewSession{}).Where("id = ?", id).Updates(updates).Error
}

// CompleteWithReport flips the completion flag and stores the report in one transaction
func (r *InterviewSessionRepository) CompleteWithReport(ctx context.Context, report *entities.EvaluationReport) error {
	if report == nil {
		return errors.New("report cannot be nil")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&entities.InterviewSession{}).
			Where("id = ? AND completed = ?", report.SessionID, false).
			Updates(map[string]interface{}{
				"completed":    true,
				"completed_at": now,
				"phase":        entities.PhaseClosing,
				"updated_at":   now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return entities.ErrSessionCompleted
		}
		return tx.Create(report).Error
	})
}
