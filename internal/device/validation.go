package device

import (
	"fmt"
	"strings"
)

// maxNameLength bounds device names to keep payloads and UI labels sane.
const maxNameLength = 100

// ValidateCreateRequest checks a device creation payload before it is sent
// to the server. Validation failures never reach the network.
//
// Returns:
//   - error: wrapping ErrInvalidName or ErrInvalidDeviceType, or nil if valid
func ValidateCreateRequest(req CreateRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidName)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, maxNameLength)
	}

	if req.Type != "" && !req.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDeviceType, req.Type)
	}

	return nil
}

// ValidateControl checks a device control request before dispatch.
//
// Returns:
//   - error: wrapping ErrInvalidID or ErrInvalidState, or nil if valid
func ValidateControl(deviceID int64, newState string) error {
	if deviceID <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidID, deviceID)
	}
	if strings.TrimSpace(newState) == "" {
		return ErrInvalidState
	}
	return nil
}
