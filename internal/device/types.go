package device

import "time"

// Device represents a controllable or monitorable entity known to the
// remote service. This matches the JSON shape the server returns.
type Device struct {
	// Identity
	ID   int64  `json:"id"`
	Name string `json:"name"`

	// Classification
	Type DeviceType `json:"type"`

	// Location. RoomID is optional: a device may be unassigned.
	RoomID *int64 `json:"room_id,omitempty"`
	HomeID int64  `json:"home_id"`

	// State is the server's current state string ("on", "off", ...).
	State string `json:"state"`

	// Properties carries type-dependent readings reported alongside the
	// state: brightness for lamps, temperature for sensors, motion flags.
	Properties Properties `json:"properties,omitempty"`

	// LastUpdate is the server-side timestamp of the last state change.
	LastUpdate *time.Time `json:"last_update,omitempty"`
}

// Properties holds type-dependent device readings as a JSON map.
//
// Examples:
//   - Lamp: {"is_on": true, "brightness": 75}
//   - Temperature sensor: {"temperature": 21.5}
//   - Motion sensor: {"motion": true}
type Properties map[string]any

// DeepCopy creates a complete independent copy of the Device.
// The Properties map is cloned so modifications to the copy do not
// affect the original. This is essential for snapshot isolation.
func (d *Device) DeepCopy() *Device {
	if d == nil {
		return nil
	}

	cpy := *d // Shallow copy of value fields

	if d.RoomID != nil {
		roomID := *d.RoomID
		cpy.RoomID = &roomID
	}
	if d.LastUpdate != nil {
		ts := *d.LastUpdate
		cpy.LastUpdate = &ts
	}
	cpy.Properties = deepCopyMap(d.Properties)

	return &cpy
}

// deepCopyMap creates a deep copy of a map[string]any.
// Nested maps and slices are recursively copied.
func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	cpy := make(map[string]any, len(m))
	for k, v := range m {
		cpy[k] = deepCopyValue(v)
	}
	return cpy
}

// deepCopyValue recursively copies a value, handling nested maps and slices.
func deepCopyValue(v any) any {
	if v == nil {
		return nil
	}
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		cpy := make([]any, len(val))
		for i, elem := range val {
			cpy[i] = deepCopyValue(elem)
		}
		return cpy
	default:
		// Primitives (string, bool, int, float64, etc.) are safe to copy by value
		return v
	}
}

// DeviceType represents the specific kind of device.
type DeviceType string //nolint:revive // device.DeviceType is clearer than device.Type in calling code

// Device type constants matching the server schema.
const (
	DeviceTypeLamp         DeviceType = "lamp"
	DeviceTypeMotionSensor DeviceType = "motion_sensor"
	DeviceTypeTempSensor   DeviceType = "temp_sensor"
	DeviceTypeSiren        DeviceType = "siren"
	DeviceTypeOther        DeviceType = "other"
)

// AllDeviceTypes returns all valid device type values.
func AllDeviceTypes() []DeviceType {
	return []DeviceType{
		DeviceTypeLamp, DeviceTypeMotionSensor, DeviceTypeTempSensor,
		DeviceTypeSiren, DeviceTypeOther,
	}
}

// Valid reports whether the device type is a recognised value.
func (t DeviceType) Valid() bool {
	for _, known := range AllDeviceTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// RequiresConfirmation reports whether activating a device of this type
// should be confirmed by the user before a command is dispatched. The
// confirmation gate itself lives in the presentation layer; this flag
// only identifies the types that warrant it.
func (t DeviceType) RequiresConfirmation() bool {
	return t == DeviceTypeSiren
}

// CreateRequest is the payload for registering a new device with the server.
type CreateRequest struct {
	Name   string     `json:"name"`
	Type   DeviceType `json:"type"`
	RoomID *int64     `json:"room_id,omitempty"`
	State  string     `json:"state,omitempty"`
}
