package errors

import (
	"fmt"
	"net/http"
	"time"
)

// AppError is the application error returned through the HTTP layer
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the raw cause to errors.Is / errors.As
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	details := make(map[string]string, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	e.Details = details
	return e
}

func newAppError(httpCode int, code ErrorCode, message string, raw error) AppError {
	return AppError{
		Raw:       raw,
		HTTPCode:  httpCode,
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// General Errors
func ErrInternal(err error) AppError {
	return newAppError(http.StatusInternalServerError, ErrorCode_INTERNAL, "Internal server error", err)
}

func ErrInvalidArgument(message string) AppError {
	return newAppError(http.StatusBadRequest, ErrorCode_INVALID_ARGUMENT, message, nil)
}

func ErrAlreadyExists(resource string) AppError {
	return newAppError(http.StatusConflict, ErrorCode_ALREADY_EXISTS, fmt.Sprintf("%s already exists", resource), nil)
}

func ErrUnauthenticated() AppError {
	return newAppError(http.StatusUnauthorized, ErrorCode_UNAUTHENTICATED, "Authentication required", nil)
}

func ErrInvalidPayload() AppError {
	return newAppError(http.StatusBadRequest, ErrorCode_INVALID_PAYLOAD, "Invalid payload", nil)
}

// Stream ticket errors
func ErrInvalidToken() AppError {
	return newAppError(http.StatusUnauthorized, ErrorCode_AUTH_INVALID_TOKEN, "Invalid stream ticket", nil)
}

func ErrTokenExpired() AppError {
	return newAppError(http.StatusUnauthorized, ErrorCode_AUTH_TOKEN_EXPIRED, "Stream ticket has expired", nil)
}

// Interview errors
func ErrInterviewNotFound(sessionID string) AppError {
	return newAppError(http.StatusNotFound, ErrorCode_INTERVIEW_NOT_FOUND, "Interview not found", nil).
		WithDetail("session_id", sessionID)
}

// ErrInterviewConfiguration is returned when an interview cannot be scored
// because of how it was set up (no credential, no usable evaluations).
func ErrInterviewConfiguration(reason string) AppError {
	return newAppError(http.StatusUnprocessableEntity, ErrorCode_INTERVIEW_CONFIGURATION_ERROR,
		"Interview cannot be scored with its current configuration", nil).
		WithDetail("reason", reason)
}

func ErrInterviewIncomplete(answered, required int) AppError {
	return newAppError(http.StatusConflict, ErrorCode_INTERVIEW_INCOMPLETE, "Interview is incomplete", nil).
		WithDetail("answered", fmt.Sprintf("%d", answered)).
		WithDetail("required", fmt.Sprintf("%d", required))
}

func ErrInterviewAlreadyCompleted(sessionID string) AppError {
	return newAppError(http.StatusConflict, ErrorCode_INTERVIEW_ALREADY_COMPLETED, "Interview already completed", nil).
		WithDetail("session_id", sessionID)
}

func ErrInterviewNotLive(sessionID string) AppError {
	return newAppError(http.StatusConflict, ErrorCode_INTERVIEW_NOT_LIVE, "Interview is not live", nil).
		WithDetail("session_id", sessionID)
}

// Scoring errors
func ErrScoringFailed(err error) AppError {
	return newAppError(http.StatusBadGateway, ErrorCode_SCORING_FAILED, "Scoring failed", err)
}

func ErrReportNotFound(sessionID string) AppError {
	return newAppError(http.StatusNotFound, ErrorCode_REPORT_NOT_FOUND, "Report not found", nil).
		WithDetail("session_id", sessionID)
}

func ErrInvalidCredential(tenantID string, err error) AppError {
	return newAppError(http.StatusUnprocessableEntity, ErrorCode_INVALID_CREDENTIAL, "Scoring credential was rejected", err).
		WithDetail("tenant_id", tenantID)
}

// Integration Errors
func ErrLiveKitFailed(operation string, err error) AppError {
	return newAppError(http.StatusInternalServerError, ErrorCode_INTEGRATION_LIVEKIT_FAILED,
		fmt.Sprintf("LiveKit operation failed: %s", operation), err)
}

func ErrStorageFailed(operation string, err error) AppError {
	return newAppError(http.StatusInternalServerError, ErrorCode_INTEGRATION_STORAGE_FAILED,
		fmt.Sprintf("Storage operation failed: %s", operation), err)
}

func ErrCacheFailed(operation string, err error) AppError {
	return newAppError(http.StatusInternalServerError, ErrorCode_INTEGRATION_CACHE_FAILED,
		fmt.Sprintf("Cache operation failed: %s", operation), err)
}

func ErrAITranscriptionFailed(err error) AppError {
	return newAppError(http.StatusInternalServerError, ErrorCode_AI_TRANSCRIPTION_FAILED, "Audio transcription failed", err)
}

// Database Errors
func ErrDBConnectionFailed(err error) AppError {
	return newAppError(http.StatusInternalServerError, ErrorCode_DB_CONNECTION_FAILED, "Database connection failed", err)
}

func ErrDBQueryFailed(query string, err error) AppError {
	return newAppError(http.StatusInternalServerError, ErrorCode_DB_QUERY_FAILED, "Database query failed", err).
		WithDetail("query", query)
}

func ErrDBTransactionFailed(err error) AppError {
	return newAppError(http.StatusInternalServerError, ErrorCode_DB_TRANSACTION_FAILED, "Database transaction failed", err)
}
