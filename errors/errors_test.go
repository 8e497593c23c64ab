package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterviewErrorsCarryDistinctCodes(t *testing.T) {
	cfg := ErrInterviewConfiguration("no credential")
	inc := ErrInterviewIncomplete(1, 3)
	done := ErrInterviewAlreadyCompleted("abc")

	assert.Equal(t, http.StatusUnprocessableEntity, cfg.HTTPCode)
	assert.Equal(t, http.StatusConflict, inc.HTTPCode)
	assert.Equal(t, http.StatusConflict, done.HTTPCode)
	assert.NotEqual(t, inc.Code, done.Code)
	assert.Equal(t, "INTERVIEW_CONFIGURATION_ERROR", cfg.Code.String())
	assert.Equal(t, "3", inc.Details["required"])
}

func TestWithDetailDoesNotShareMaps(t *testing.T) {
	base := ErrInvalidArgument("bad")
	a := base.WithDetail("field", "a")
	b := a.WithDetail("field", "b")

	assert.Equal(t, "a", a.Details["field"])
	assert.Equal(t, "b", b.Details["field"])
	assert.Nil(t, base.Details)
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := stdErrors.New("boom")
	err := error(ErrScoringFailed(cause))

	assert.True(t, stdErrors.Is(err, cause))
	assert.Contains(t, err.Error(), "SCORING_FAILED")

	var appErr AppError
	assert.True(t, stdErrors.As(err, &appErr))
	assert.Equal(t, ErrorCode_SCORING_FAILED, appErr.Code)
}
