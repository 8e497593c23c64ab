package interview

// QuestionRequest is one configured question
type QuestionRequest struct {
	Text      string `json:"text" validate:"required,min=3,max=1000"`
	Criterion string `json:"criterion,omitempty" validate:"omitempty,criterion"`
	RoundID   string `json:"round_id,omitempty" validate:"omitempty,max=100"`
}

// CreateInterviewRequest represents the request to create an interview
type CreateInterviewRequest struct {
	TenantID        string            `json:"tenant_id" validate:"required,max=100"`
	JobID           string            `json:"job_id,omitempty" validate:"omitempty,max=100"`
	CandidateName   string            `json:"candidate_name,omitempty" validate:"omitempty,max=255"`
	JobContext      string            `json:"job_context,omitempty" validate:"omitempty,max=20000"`
	Questions       []QuestionRequest `json:"questions,omitempty" validate:"omitempty,max=50,dive"`
	DurationMinutes int               `json:"duration_minutes,omitempty" validate:"omitempty,min=5,max=180"`
}

// EventRequest is one live event relayed from the conversational agent
type EventRequest struct {
	Type  string `json:"type" validate:"required"`
	Text  string `json:"text,omitempty"`
	Delta string `json:"delta,omitempty"`
}

// DispatchEventsRequest carries a batch of live events
type DispatchEventsRequest struct {
	Events []EventRequest `json:"events" validate:"required,min=1,max=100,dive"`
}
