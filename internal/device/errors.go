package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrInvalidName) {
//	    // handle validation failure
//	}
var (
	// ErrInvalidName is returned when a device name is empty or too long.
	ErrInvalidName = errors.New("device: invalid name")

	// ErrInvalidDeviceType is returned when a device type is not recognised.
	ErrInvalidDeviceType = errors.New("device: invalid type")

	// ErrInvalidID is returned when a device id is not a positive integer.
	ErrInvalidID = errors.New("device: invalid id")

	// ErrInvalidState is returned when a requested state string is empty.
	ErrInvalidState = errors.New("device: invalid state")
)
