package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Completeness grades how fully a question was answered
type Completeness string

const (
	CompletenessComplete   Completeness = "complete"
	CompletenessPartial    Completeness = "partial"
	CompletenessIncomplete Completeness = "incomplete"
)

// ParseCompleteness maps a free-form grade onto the known values. Unknown
// grades become partial for answered questions and incomplete otherwise.
func ParseCompleteness(s string, answered bool) Completeness {
	c := Completeness(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case CompletenessComplete, CompletenessPartial, CompletenessIncomplete:
		return c
	}
	if answered {
		return CompletenessPartial
	}
	return CompletenessIncomplete
}

// EvaluationSource tells where an evaluation came from
type EvaluationSource string

const (
	SourceLive     EvaluationSource = "live"
	SourceBatch    EvaluationSource = "batch"
	SourceFallback EvaluationSource = "fallback"
)

// AnswerEvaluation is the score of one candidate answer
type AnswerEvaluation struct {
	QuestionNumber    int              `json:"question_number"`
	QuestionText      string           `json:"question_text"`
	Criterion         string           `json:"criterion"`
	Score             float64          `json:"score"`
	Completeness      Completeness     `json:"completeness"`
	Answered          bool             `json:"answered"`
	CandidateResponse string           `json:"candidate_response"`
	Strengths         []string         `json:"strengths"`
	Gaps              []string         `json:"gaps"`
	Reasoning         string           `json:"reasoning"`
	Source            EvaluationSource `json:"source"`
}

// Recommendation is the hiring verdict derived from the overall score
type Recommendation string

const (
	RecommendationHire   Recommendation = "Hire"
	RecommendationMaybe  Recommendation = "Maybe"
	RecommendationNoHire Recommendation = "No Hire"
)

// CriterionBreakdown is the per-criterion part of an aggregated score
type CriterionBreakdown struct {
	Criterion            string  `json:"criterion"`
	QuestionCount        int     `json:"question_count"`
	AnsweredCount        int     `json:"answered_count"`
	AverageScore         float64 `json:"average_score"`
	WeightPercentage     float64 `json:"weight_percentage"`
	WeightedContribution float64 `json:"weighted_contribution"`
	Summary              string  `json:"summary"`
}

// QuestionResult is an evaluation as seen by the aggregation
type QuestionResult struct {
	AnswerEvaluation
	Unanswered     bool    `json:"unanswered"`
	EffectiveScore float64 `json:"effective_score"`
	MarksObtained  int     `json:"marks_obtained"`
}

// MarksSummary is the marks-based view over the configured question budget
type MarksSummary struct {
	TotalConfiguredQuestions int `json:"total_configured_questions"`
	MarksPerQuestion         int `json:"marks_per_question"`
	MaxMarks                 int `json:"max_marks"`
	TotalMarksObtained       int `json:"total_marks_obtained"`
	QuestionsEvaluated       int `json:"questions_evaluated"`
	QuestionsAnswered        int `json:"questions_answered"`
	QuestionsUnanswered      int `json:"questions_unanswered"`
	QuestionsNotAsked        int `json:"questions_not_asked"`
}

// AggregatedScore is the canonical score of an interview
type AggregatedScore struct {
	OverallScore      int                  `json:"overall_score"`
	PerCriterion      []CriterionBreakdown `json:"per_criterion"`
	CategoriesUsed    []string             `json:"categories_used"`
	CategoriesNotUsed []string             `json:"categories_not_used"`
	Formula           string               `json:"formula"`
	Recommendation    Recommendation       `json:"recommendation"`
	Marks             MarksSummary         `json:"marks"`
	Questions         []QuestionResult     `json:"questions"`
}

// PassThreshold is the overall score from which an interview is a pass
const PassThreshold = 65

// Passed reports whether the score reaches the pass threshold
func (a AggregatedScore) Passed() bool {
	return a.OverallScore >= PassThreshold
}

// ResultLabel returns "pass" or "fail"
func (a AggregatedScore) ResultLabel() string {
	if a.Passed() {
		return "pass"
	}
	return "fail"
}

// EvaluationReport is the persisted outcome of a finalized interview
type EvaluationReport struct {
	ID           uuid.UUID                             `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SessionID    uuid.UUID                             `json:"session_id" gorm:"type:uuid;not null;uniqueIndex"`
	TenantID     string                                `json:"tenant_id" gorm:"type:varchar(100);not null;index"`
	OverallScore int                                   `json:"overall_score" gorm:"not null"`
	Result       string                                `json:"result" gorm:"type:varchar(10);not null"`
	Source       EvaluationSource                      `json:"source" gorm:"type:varchar(20);not null"`
	Fallback     bool                                  `json:"fallback" gorm:"not null;default:false"`
	Score        datatypes.JSONType[AggregatedScore]   `json:"score" gorm:"type:jsonb"`
	Evaluations  datatypes.JSONSlice[AnswerEvaluation] `json:"evaluations" gorm:"type:jsonb"`
	Rationale    string                                `json:"rationale" gorm:"type:text"`
	ArchiveKey   string                                `json:"archive_key,omitempty" gorm:"type:text"`
	CreatedAt    time.Time                             `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (EvaluationReport) TableName() string {
	return "evaluation_reports"
}

// LiveEvaluation stores a real-time evaluation as soon as it is produced
type LiveEvaluation struct {
	ID             uuid.UUID                            `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SessionID      uuid.UUID                            `json:"session_id" gorm:"type:uuid;not null;uniqueIndex:idx_live_evaluations_session_question"`
	QuestionText   string                               `json:"question_text" gorm:"type:text;not null;uniqueIndex:idx_live_evaluations_session_question"`
	QuestionNumber int                                  `json:"question_number" gorm:"not null"`
	Evaluation     datatypes.JSONType[AnswerEvaluation] `json:"evaluation" gorm:"type:jsonb"`
	CreatedAt      time.Time                            `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time                            `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (LiveEvaluation) TableName() string {
	return "live_evaluations"
}

// NewLiveEvaluation wraps an evaluation for persistence
func NewLiveEvaluation(sessionID uuid.UUID, eval AnswerEvaluation) *LiveEvaluation {
	return &LiveEvaluation{
		ID:             uuid.New(),
		SessionID:      sessionID,
		QuestionText:   eval.QuestionText,
		QuestionNumber: eval.QuestionNumber,
		Evaluation:     datatypes.NewJSONType(eval),
	}
}
