package utils

import (
	"regexp"

	"github.com/google/uuid"
)

var digitsOnly = regexp.MustCompile(`^[0-9]+$`)

// NewID generates a new random identifier (sessions, request ids, idempotency keys)
func NewID() string {
	return uuid.New().String()
}

// ParseUUID parses a string into a UUID
func ParseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

// IsDigits reports whether s is a non-empty run of ASCII digits
func IsDigits(s string) bool {
	return digitsOnly.MatchString(s)
}
