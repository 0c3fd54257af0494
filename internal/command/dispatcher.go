package command

import (
	"context"
	"errors"
	"time"

	"github.com/nerrad567/gray-logic-remote/internal/device"
	"github.com/nerrad567/gray-logic-remote/internal/gateway"
	"github.com/nerrad567/gray-logic-remote/internal/state"
)

// ErrUnknownDevice is returned when a command targets a device that is
// not in the current snapshot.
var ErrUnknownDevice = errors.New("command: unknown device")

// Controller performs the remote half of a device command.
// The production implementation is *syncer.Repository.
type Controller interface {
	ControlDevice(ctx context.Context, deviceID int64, newState string) (gateway.ActionResult, error)
}

// Logger defines the logging interface used by the Dispatcher.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Dispatcher executes device commands with optimistic state updates.
//
// The requested state is applied to the snapshot before the network
// round trip so the interface answers instantly. A failure rolls the
// device back to its prior state and records the error; a success
// replaces the optimistic value with whatever the server confirmed,
// which is authoritative even when it differs from the request.
type Dispatcher struct {
	controller Controller
	state      *state.Store
	logger     Logger
}

// New creates a command dispatcher.
func New(controller Controller, st *state.Store) *Dispatcher {
	return &Dispatcher{
		controller: controller,
		state:      st,
		logger:     noopLogger{},
	}
}

// SetLogger sets the logger for the dispatcher.
func (d *Dispatcher) SetLogger(logger Logger) {
	d.logger = logger
}

// RequiresConfirmation reports whether commanding this device should be
// confirmed by the user first. The dispatcher never blocks on it; the
// gate belongs to whoever drives the dispatcher.
func (d *Dispatcher) RequiresConfirmation(deviceID int64) bool {
	dev, ok := d.state.Device(deviceID)
	return ok && dev.Type.RequiresConfirmation()
}

// Control moves a device to a new state.
func (d *Dispatcher) Control(ctx context.Context, deviceID int64, newState string) error {
	if err := device.ValidateControl(deviceID, newState); err != nil {
		return err
	}

	prior, ok := d.state.Device(deviceID)
	if !ok {
		return ErrUnknownDevice
	}

	optimistic := *prior.DeepCopy()
	optimistic.State = newState
	d.state.UpdateDevice(optimistic)

	result, err := d.controller.ControlDevice(ctx, deviceID, newState)
	if err != nil {
		d.logger.Warn("command failed, rolling back",
			"device_id", deviceID, "requested", newState, "error", err)
		d.state.UpdateDevice(prior)
		kind, message := classify(err)
		d.state.SetLastError(kind, message)
		return err
	}

	confirmed := optimistic
	confirmed.State = result.State
	now := time.Now().UTC()
	confirmed.LastUpdate = &now
	d.state.UpdateDevice(confirmed)

	d.logger.Info("command confirmed",
		"device_id", deviceID, "requested", newState, "confirmed", result.State)
	return nil
}

// classify reduces an error to the kind and presentable message the
// state store records. The kind is empty for non-gateway failures.
func classify(err error) (gateway.Kind, string) {
	var gerr *gateway.Error
	if errors.As(err, &gerr) {
		message := gerr.Message
		if message == "" {
			message = err.Error()
		}
		return gerr.Kind, message
	}
	return "", err.Error()
}
