package home

import (
	"fmt"
	"strings"
)

// maxNameLength matches the device package's name bound.
const maxNameLength = 100

// ValidateName checks if a home or room name is valid.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, maxNameLength)
	}
	return nil
}

// ValidateHomeID checks that a home id is a positive integer.
func ValidateHomeID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidHomeID, id)
	}
	return nil
}
