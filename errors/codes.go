package errors

// ErrorCode is the machine readable code returned to API clients
type ErrorCode int

const (
	ErrorCode_HTTP_OK ErrorCode = 200

	// General
	ErrorCode_INTERNAL          ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT  ErrorCode = 1001
	ErrorCode_ALREADY_EXISTS    ErrorCode = 1003
	ErrorCode_PERMISSION_DENIED ErrorCode = 1004
	ErrorCode_UNAUTHENTICATED   ErrorCode = 1005
	ErrorCode_INVALID_PAYLOAD   ErrorCode = 1006

	// Stream tickets
	ErrorCode_AUTH_INVALID_TOKEN ErrorCode = 2000
	ErrorCode_AUTH_TOKEN_EXPIRED ErrorCode = 2001

	// Interview
	ErrorCode_INTERVIEW_NOT_FOUND           ErrorCode = 3000
	ErrorCode_INTERVIEW_CONFIGURATION_ERROR ErrorCode = 3001
	ErrorCode_INTERVIEW_INCOMPLETE          ErrorCode = 3002
	ErrorCode_INTERVIEW_ALREADY_COMPLETED   ErrorCode = 3003
	ErrorCode_INTERVIEW_NOT_LIVE            ErrorCode = 3004

	// Scoring
	ErrorCode_SCORING_FAILED     ErrorCode = 4000
	ErrorCode_REPORT_NOT_FOUND   ErrorCode = 4001
	ErrorCode_INVALID_CREDENTIAL ErrorCode = 4002

	// Integrations
	ErrorCode_INTEGRATION_LIVEKIT_FAILED ErrorCode = 5000
	ErrorCode_INTEGRATION_STORAGE_FAILED ErrorCode = 5001
	ErrorCode_INTEGRATION_CACHE_FAILED   ErrorCode = 5002
	ErrorCode_AI_TRANSCRIPTION_FAILED    ErrorCode = 5004

	// Database
	ErrorCode_DB_CONNECTION_FAILED  ErrorCode = 6000
	ErrorCode_DB_QUERY_FAILED       ErrorCode = 6001
	ErrorCode_DB_TRANSACTION_FAILED ErrorCode = 6002
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:                       "OK",
	ErrorCode_INTERNAL:                      "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:              "INVALID_ARGUMENT",
	ErrorCode_ALREADY_EXISTS:                "ALREADY_EXISTS",
	ErrorCode_PERMISSION_DENIED:             "PERMISSION_DENIED",
	ErrorCode_UNAUTHENTICATED:               "UNAUTHENTICATED",
	ErrorCode_INVALID_PAYLOAD:               "INVALID_PAYLOAD",
	ErrorCode_AUTH_INVALID_TOKEN:            "AUTH_INVALID_TOKEN",
	ErrorCode_AUTH_TOKEN_EXPIRED:            "AUTH_TOKEN_EXPIRED",
	ErrorCode_INTERVIEW_NOT_FOUND:           "INTERVIEW_NOT_FOUND",
	ErrorCode_INTERVIEW_CONFIGURATION_ERROR: "INTERVIEW_CONFIGURATION_ERROR",
	ErrorCode_INTERVIEW_INCOMPLETE:          "INTERVIEW_INCOMPLETE",
	ErrorCode_INTERVIEW_ALREADY_COMPLETED:   "INTERVIEW_ALREADY_COMPLETED",
	ErrorCode_INTERVIEW_NOT_LIVE:            "INTERVIEW_NOT_LIVE",
	ErrorCode_SCORING_FAILED:                "SCORING_FAILED",
	ErrorCode_REPORT_NOT_FOUND:              "REPORT_NOT_FOUND",
	ErrorCode_INVALID_CREDENTIAL:            "INVALID_CREDENTIAL",
	ErrorCode_INTEGRATION_LIVEKIT_FAILED:    "INTEGRATION_LIVEKIT_FAILED",
	ErrorCode_INTEGRATION_STORAGE_FAILED:    "INTEGRATION_STORAGE_FAILED",
	ErrorCode_INTEGRATION_CACHE_FAILED:      "INTEGRATION_CACHE_FAILED",
	ErrorCode_AI_TRANSCRIPTION_FAILED:       "AI_TRANSCRIPTION_FAILED",
	ErrorCode_DB_CONNECTION_FAILED:          "DB_CONNECTION_FAILED",
	ErrorCode_DB_QUERY_FAILED:               "DB_QUERY_FAILED",
	ErrorCode_DB_TRANSACTION_FAILED:         "DB_TRANSACTION_FAILED",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// MarshalText renders the code by name in JSON bodies
func (c ErrorCode) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
