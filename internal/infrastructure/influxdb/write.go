package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteDeviceReading writes a single numeric device reading.
//
// This is the primary method for mirroring sensor telemetry.
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - deviceID: Numeric device identifier from the remote service
//   - deviceType: Device classification ("temp_sensor", "lamp", ...)
//   - field: The reading name (e.g., "temperature", "brightness")
//   - value: The numeric value to record
//
// Example:
//
//	client.WriteDeviceReading(42, "temp_sensor", "temperature", 21.5)
func (c *Client) WriteDeviceReading(deviceID int64, deviceType, field string, value float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"device_readings",
		map[string]string{
			"device_id":   strconv.FormatInt(deviceID, 10),
			"device_type": deviceType,
			"field":       field,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteDeviceState writes a device on/off state transition as 1/0.
//
// Boolean states become step series, which makes uptime and duty-cycle
// queries trivial downstream.
func (c *Client) WriteDeviceState(deviceID int64, deviceType string, on bool) {
	if !c.IsConnected() {
		return
	}

	value := 0.0
	if on {
		value = 1.0
	}

	point := write.NewPoint(
		"device_state",
		map[string]string{
			"device_id":   strconv.FormatInt(deviceID, 10),
			"device_type": deviceType,
		},
		map[string]interface{}{
			"on": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
