package push

import (
	"context"
	"strings"
	"time"
)

// commandTimeout bounds one command round trip triggered from the broker.
const commandTimeout = 15 * time.Second

// Controller executes a device command with optimistic state handling.
// The production implementation is *command.Dispatcher.
type Controller interface {
	Control(ctx context.Context, deviceID int64, newState string) error
}

// CommandReceiver routes commands published on the broker into the
// command dispatcher.
//
// Wall panels and scripts get the same control path as the app: publish
// the desired state to {base}/device/{id}/cmd and the confirmed state
// comes back on the state topic once the server acknowledges it. The
// payload is the plain requested state string.
type CommandReceiver struct {
	bus        Bus
	controller Controller
	qos        byte
	logger     Logger
}

// NewCommandReceiver creates a command receiver.
func NewCommandReceiver(bus Bus, controller Controller, qos byte) *CommandReceiver {
	return &CommandReceiver{
		bus:        bus,
		controller: controller,
		qos:        qos,
		logger:     noopLogger{},
	}
}

// SetLogger sets the logger for the command receiver.
func (c *CommandReceiver) SetLogger(logger Logger) {
	c.logger = logger
}

// Start subscribes to all device command topics.
func (c *CommandReceiver) Start() error {
	topic := c.bus.Topics().AllDeviceCommands()
	if err := c.bus.Subscribe(topic, c.qos, c.handleCommand); err != nil {
		return err
	}
	c.logger.Info("command receiver started", "topic", topic)
	return nil
}

// Stop unsubscribes from the device command topics.
func (c *CommandReceiver) Stop() error {
	return c.bus.Unsubscribe(c.bus.Topics().AllDeviceCommands())
}

// handleCommand dispatches one command message. Failures are returned so
// the bus wrapper logs them; the dispatcher has already rolled back and
// recorded the error in the snapshot by then.
func (c *CommandReceiver) handleCommand(topic string, payload []byte) error {
	deviceID, ok := c.bus.Topics().ParseDeviceCommand(topic)
	if !ok {
		c.logger.Debug("ignoring message outside device command hierarchy", "topic", topic)
		return nil
	}

	newState := strings.TrimSpace(string(payload))
	if newState == "" {
		return ErrEmptyPayload
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := c.controller.Control(ctx, deviceID, newState); err != nil {
		c.logger.Warn("broker command failed", "device_id", deviceID, "requested", newState, "error", err)
		return err
	}

	c.logger.Debug("broker command dispatched", "device_id", deviceID, "state", newState)
	return nil
}
