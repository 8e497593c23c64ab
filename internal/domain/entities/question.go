package entities

// CriterionGeneral is used when a question carries no criterion
const CriterionGeneral = "General"

// Question is one configured interview question
type Question struct {
	Index     int    `json:"index" yaml:"index"`
	Text      string `json:"text" yaml:"text" validate:"required"`
	Criterion string `json:"criterion" yaml:"criterion" validate:"omitempty,criterion"`
	RoundID   string `json:"round_id,omitempty" yaml:"round_id,omitempty"`
}

// CriterionOrDefault returns the question criterion or "General"
func (q Question) CriterionOrDefault() string {
	if q.Criterion == "" {
		return CriterionGeneral
	}
	return q.Criterion
}

// NumberQuestions assigns 1-based indexes in list order
func NumberQuestions(questions []Question) []Question {
	out := make([]Question, len(questions))
	for i, q := range questions {
		q.Index = i + 1
		out[i] = q
	}
	return out
}
