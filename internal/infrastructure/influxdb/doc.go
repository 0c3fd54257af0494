// Package influxdb mirrors device telemetry into a local time-series store.
//
// It wraps the official influxdb-client-go v2 library with the
// connection management, batching, and health monitoring patterns used
// across this codebase.
//
// # Purpose
//
// The remote service keeps only the latest state of each device. When
// enabled, this package gives an installation its own history of sensor
// readings and on/off transitions for dashboards and energy queries.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    // ErrDisabled when the mirror is off in config
//	}
//	defer client.Close()
//
//	client.WriteDeviceReading(42, "temp_sensor", "temperature", 21.5)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are delivered via
// the SetOnError callback. Connection and health check errors are
// returned directly.
package influxdb
