package auth

import (
	"errors"
	"strings"

	"github.com/safetrail/safetrail/internal/model"
)

// ValidationError is a locally-detected form error. It is surfaced before any
// network call is made.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

func validateRegistration(input RegisterInput) error {
	if strings.TrimSpace(input.Email) == "" {
		return &ValidationError{Message: "Email is required"}
	}
	if strings.TrimSpace(input.FullName) == "" {
		return &ValidationError{Message: "Full name is required"}
	}
	if input.Password != input.ConfirmPassword {
		return &ValidationError{Message: "Passwords do not match"}
	}
	if len(input.Password) < minPasswordLength {
		return &ValidationError{Message: "Password must be at least 6 characters long"}
	}
	if input.Role == model.RoleTourist && strings.TrimSpace(input.IDProofNumber) == "" {
		return &ValidationError{Message: "ID proof number is required for tourists"}
	}
	return nil
}
