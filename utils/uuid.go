package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateID returns a new unique identifier string
func GenerateID() string {
	return uuid.New().String()
}

// GenerateShortID returns a compact identifier for ephemeral entities such as
// live sessions, where the full UUID form is only log noise.
func GenerateShortID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
}
