package push

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nerrad567/gray-logic-remote/internal/device"
	"github.com/nerrad567/gray-logic-remote/internal/gateway"
	"github.com/nerrad567/gray-logic-remote/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-remote/internal/state"
)

// ErrEmptyPayload is returned when a state message carries no state.
var ErrEmptyPayload = errors.New("push: empty state payload")

// Bus is the broker surface the receiver needs.
// The production implementation is *mqtt.Client.
type Bus interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
	Topics() mqtt.Topics
}

// TokenRegistrar registers a push notification token with the server.
// The production implementation is *gateway.Client.
type TokenRegistrar interface {
	RegisterPushToken(ctx context.Context, req gateway.PushTokenRequest) error
}

// Logger defines the logging interface used by the Receiver.
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

// Receiver feeds live device state from the broker into the state store.
//
// The server publishes every confirmed state change to the device state
// topics; the receiver folds those into the snapshot so a change made
// by another client, an automation, or the device itself shows up
// without waiting for the next sync. Messages for devices outside the
// current snapshot are ignored: they belong to a home that is not
// active, and the next sync will pick them up.
type Receiver struct {
	bus     Bus
	state   *state.Store
	history device.StateHistoryRepository
	qos     byte
	logger  Logger
}

// New creates a push receiver. history may be nil to skip local
// state-change recording.
func New(bus Bus, st *state.Store, qos byte) *Receiver {
	return &Receiver{
		bus:    bus,
		state:  st,
		qos:    qos,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the receiver.
func (r *Receiver) SetLogger(logger Logger) {
	r.logger = logger
}

// SetHistory enables local recording of pushed state changes.
func (r *Receiver) SetHistory(history device.StateHistoryRepository) {
	r.history = history
}

// Start subscribes to all device state topics.
func (r *Receiver) Start() error {
	topic := r.bus.Topics().AllDeviceStates()
	if err := r.bus.Subscribe(topic, r.qos, r.handleState); err != nil {
		return err
	}
	r.logger.Info("push receiver started", "topic", topic)
	return nil
}

// Stop unsubscribes from the device state topics.
func (r *Receiver) Stop() error {
	return r.bus.Unsubscribe(r.bus.Topics().AllDeviceStates())
}

// RegisterToken registers a platform push token with the server so it
// can reach this install when the app is not running.
func (r *Receiver) RegisterToken(ctx context.Context, registrar TokenRegistrar, req gateway.PushTokenRequest) error {
	if err := registrar.RegisterPushToken(ctx, req); err != nil {
		r.logger.Warn("push token registration failed", "error", err)
		return err
	}
	r.logger.Info("push token registered", "device_name", req.DeviceName)
	return nil
}

// handleState folds one state message into the snapshot.
// The payload is the plain state string.
func (r *Receiver) handleState(topic string, payload []byte) error {
	deviceID, ok := r.bus.Topics().ParseDeviceState(topic)
	if !ok {
		r.logger.Debug("ignoring message outside device state hierarchy", "topic", topic)
		return nil
	}

	newState := strings.TrimSpace(string(payload))
	if newState == "" {
		return ErrEmptyPayload
	}

	current, known := r.state.Device(deviceID)
	if !known {
		r.logger.Debug("state for device outside snapshot", "device_id", deviceID)
		return nil
	}
	if current.State == newState {
		return nil
	}

	updated := *current.DeepCopy()
	updated.State = newState
	now := time.Now().UTC()
	updated.LastUpdate = &now
	r.state.UpdateDevice(updated)

	if r.history != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := r.history.RecordStateChange(ctx, deviceID, newState, device.StateHistorySourcePush); err != nil {
			r.logger.Warn("recording pushed state failed", "device_id", deviceID, "error", err)
		}
	}

	r.logger.Debug("device state pushed", "device_id", deviceID, "state", newState)
	return nil
}
