package utils

import (
	"github.com/google/uuid"
)

// NewID returns a new random job id
func NewID() string {
	return uuid.NewString()
}

// IsValidID returns true if the given string looks like one of our ids
func IsValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}
