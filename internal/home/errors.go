package home

import "errors"

var (
	// ErrInvalidName is returned when a home or room name is empty or too long.
	ErrInvalidName = errors.New("home: invalid name")

	// ErrInvalidHomeID is returned when a home id is not a positive integer.
	ErrInvalidHomeID = errors.New("home: invalid home id")
)
