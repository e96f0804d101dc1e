package shared

import (
	"strings"

	"github.com/runoshun/whatstask/internal/domain"
)

// ValidateMessage trims whitespace from a comment and validates it is not empty.
// Returns the trimmed message if valid, otherwise returns domain.ErrEmptyMessage.
func ValidateMessage(message string) (string, error) {
	return validateText(message, domain.ErrEmptyMessage)
}

// ValidateReason does the same for a delete reason, returning domain.ErrEmptyReason.
func ValidateReason(reason string) (string, error) {
	return validateText(reason, domain.ErrEmptyReason)
}

func validateText(text string, emptyErr error) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", emptyErr
	}
	return trimmed, nil
}
