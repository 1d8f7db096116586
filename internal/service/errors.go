package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Domain errors surfaced to the route layer.
var (
	ErrValidation         = errors.New("validation failed")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrExpenseNotFound    = errors.New("expense not found")
)

// ValidationError describes a malformed or missing input field.
// errors.Is(err, ErrValidation) matches any *ValidationError.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct runs struct-tag validation and converts the first failure
// into a *ValidationError with a user-facing message.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate input: %w", err)
	}
	fe := verrs[0]
	return &ValidationError{Field: fe.Field(), Message: fieldMessage(fe)}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return "is invalid"
	}
}
