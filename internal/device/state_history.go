package device

import (
	"context"
	"time"
)

// State history source values.
const (
	StateHistorySourceSync    = "sync"
	StateHistorySourceCommand = "command"
	StateHistorySourcePush    = "push"
)

// StateHistoryEntry represents a single observed device state change.
//
// The client records every state change it observes (from sync, commands,
// or push updates) so history charts keep working while offline.
type StateHistoryEntry struct {
	// ID is the unique identifier of the history row.
	ID string `json:"id"`

	// DeviceID is the numeric identifier of the device.
	DeviceID int64 `json:"device_id"`

	// State is the state string observed.
	State string `json:"state"`

	// Source identifies how the change was observed (sync, command, push).
	Source string `json:"source"`

	// RecordedAt is the timestamp of the observation (UTC).
	RecordedAt time.Time `json:"recorded_at"`
}

// StateHistoryRepository stores and retrieves device state change history.
//
// Implementations must be thread-safe and use UTC timestamps.
type StateHistoryRepository interface {
	// RecordStateChange records an observed device state change.
	RecordStateChange(ctx context.Context, deviceID int64, state, source string) error

	// GetHistory returns recent state changes for a device, newest first.
	// The limit may be clamped by the implementation.
	GetHistory(ctx context.Context, deviceID int64, limit int) ([]StateHistoryEntry, error)

	// PruneHistory deletes entries older than the retention duration,
	// returning the number of rows removed.
	PruneHistory(ctx context.Context, olderThan time.Duration) (int64, error)
}
