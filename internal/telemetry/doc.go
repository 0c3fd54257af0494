// Package telemetry maintains a local history of device readings.
//
// The Mirror watches state snapshots and writes each observed change
// to the time-series store, turning the server's latest-value-only
// model into queryable history.
package telemetry
