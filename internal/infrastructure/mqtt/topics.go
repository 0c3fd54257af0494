package mqtt

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultBaseTopic matches the stock server deployment.
const DefaultBaseTopic = "smart_home/demo"

// Topics builds and parses the topic hierarchy shared with the server.
//
// The server publishes confirmed device state to
//
//	{base}/device/{device_id}/state
//
// with the plain state string as payload, and field controllers listen
// for commands on
//
//	{base}/device/{device_id}/cmd
//
// Using these helpers keeps topic naming consistent across the codebase.
type Topics struct {
	Base string
}

// NewTopics creates a topic builder for a base topic. An empty base
// falls back to DefaultBaseTopic.
func NewTopics(base string) Topics {
	base = strings.TrimRight(base, "/")
	if base == "" {
		base = DefaultBaseTopic
	}
	return Topics{Base: base}
}

// DeviceState returns the state topic for one device.
//
// Example: smart_home/demo/device/42/state
func (t Topics) DeviceState(deviceID int64) string {
	return fmt.Sprintf("%s/device/%d/state", t.Base, deviceID)
}

// DeviceCommand returns the command topic for one device.
//
// Example: smart_home/demo/device/42/cmd
func (t Topics) DeviceCommand(deviceID int64) string {
	return fmt.Sprintf("%s/device/%d/cmd", t.Base, deviceID)
}

// ClientStatus returns the presence topic for one client.
//
// Example: smart_home/demo/client/glremote/status
func (t Topics) ClientStatus(clientID string) string {
	return fmt.Sprintf("%s/client/%s/status", t.Base, clientID)
}

// AllDeviceStates returns a pattern matching every device state topic.
//
// Pattern: smart_home/demo/device/+/state
func (t Topics) AllDeviceStates() string {
	return fmt.Sprintf("%s/device/+/state", t.Base)
}

// AllDeviceCommands returns a pattern matching every device command topic.
//
// Pattern: smart_home/demo/device/+/cmd
func (t Topics) AllDeviceCommands() string {
	return fmt.Sprintf("%s/device/+/cmd", t.Base)
}

// ParseDeviceState extracts the device id from a state topic. The
// second return is false for topics outside the device state hierarchy.
func (t Topics) ParseDeviceState(topic string) (int64, bool) {
	return t.parseDevice(topic, "/state")
}

// ParseDeviceCommand extracts the device id from a command topic.
func (t Topics) ParseDeviceCommand(topic string) (int64, bool) {
	return t.parseDevice(topic, "/cmd")
}

func (t Topics) parseDevice(topic, suffix string) (int64, bool) {
	rest, ok := strings.CutPrefix(topic, t.Base+"/device/")
	if !ok {
		return 0, false
	}
	idPart, ok := strings.CutSuffix(rest, suffix)
	if !ok || strings.Contains(idPart, "/") {
		return 0, false
	}

	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
