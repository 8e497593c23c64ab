package entities

import "errors"

// Domain errors
var (
	// Session errors
	ErrSessionNotFound  = errors.New("interview session not found")
	ErrSessionCompleted = errors.New("interview session already completed")
	ErrSessionEnded     = errors.New("interview session already ended")
	ErrInvalidPhase     = errors.New("invalid interview phase")

	// Question errors
	ErrNoQuestions      = errors.New("interview has no questions")
	ErrInvalidQuestion  = errors.New("invalid question")
	ErrInvalidCriterion = errors.New("invalid criterion")

	// Report errors
	ErrReportNotFound = errors.New("evaluation report not found")
)
