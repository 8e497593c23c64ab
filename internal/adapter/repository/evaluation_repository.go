package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/interview-assistant/internal/domain/entities"
	"github.com/johnquangdev/interview-assistant/internal/domain/repositories"
)

// LiveEvaluationRepository handles real-time evaluation data operations
type LiveEvaluationRepository struct {
	db *gorm.DB
}

var _ repositories.LiveEvaluationRepository = (*LiveEvaluationRepository)(nil)

// NewLiveEvaluationRepository creates a new live evaluation repository
func NewLiveEvaluationRepository(db *gorm.DB) *LiveEvaluationRepository {
	return &LiveEvaluationRepository{db: db}
}

// Upsert inserts or replaces the evaluation of one question text
func (r *LiveEvaluationRepository) Upsert(ctx context.Context, eval *entities.LiveEvaluation) error {
	if eval == nil {
		return errors.New("evaluation cannot be nil")
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "question_text"}},
		DoUpdates: clause.AssignmentColumns([]string{"question_number", "evaluation", "updated_at"}),
	}).Create(eval).Error
}

// ListBySession returns the evaluations ordered by question number
func (r *LiveEvaluationRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]entities.AnswerEvaluation, error) {
	var rows []entities.LiveEvaluation
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("question_number ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	evals := make([]entities.AnswerEvaluation, 0, len(rows))
	for _, row := range rows {
		evals = append(evals, row.Evaluation.Data())
	}
	return evals, nil
}

// ReportRepository handles evaluation report reads
type ReportRepository struct {
	db *gorm.DB
}

var _ repositories.ReportRepository = (*ReportRepository)(nil)

// NewReportRepository creates a new report repository
func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// FindBySessionID finds the report of a session
func (r *ReportRepository) FindBySessionID(ctx context.Context, sessionID uuid.UUID) (*entities.EvaluationReport, error) {
	var report entities.EvaluationReport
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}
