package calendar

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation is the base kind for rejected input. Validation fails fast,
// before any write.
var ErrValidation = errors.New("validation failed")

var (
	ErrMissingTitle = fmt.Errorf("%w: title is required", ErrValidation)
	ErrMissingName  = fmt.Errorf("%w: name is required", ErrValidation)
	ErrMissingEmail = fmt.Errorf("%w: email is required", ErrValidation)
	ErrInvalidEmail = fmt.Errorf("%w: invalid email format", ErrValidation)

	ErrUnknownPermission = fmt.Errorf("%w: unknown permission code", ErrValidation)
	ErrUnknownStatus     = fmt.Errorf("%w: unknown status code", ErrValidation)
)

func ValidEmail(email string) error {
	if email == "" {
		return ErrMissingEmail
	}

	// Must contain "@" and not be the first or last character
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return ErrInvalidEmail
	}

	return nil
}
