package validator

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var criterionPattern = regexp.MustCompile(`^[\p{L}\p{N}][\p{L}\p{N} &/\-]{0,63}$`)

// CustomValidator implements echo.Validator using go-playground/validator
type CustomValidator struct {
	v *validator.Validate
}

// New creates a new CustomValidator instance
func New() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("criterion", validateCriterion)
	return &CustomValidator{v: v}
}

// Validate performs struct validation
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}

// validateCriterion accepts short human readable criterion labels
// such as "Technical Skills" or "Culture & Values".
func validateCriterion(fl validator.FieldLevel) bool {
	return criterionPattern.MatchString(strings.TrimSpace(fl.Field().String()))
}
