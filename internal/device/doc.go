// Package device defines the client-side device model for Gray Logic Remote.
//
// Devices are owned by the remote service; this package mirrors the server's
// JSON shape (numeric ids, string state, type-dependent properties) and adds
// what the client needs on top: deep copies for snapshot isolation, local
// validation that runs before any network call, and a SQLite-backed history
// of observed state changes for offline charts.
//
// # Key Types
//
//   - Device: The entity as returned by the server
//   - DeviceType: Classification (lamp, motion_sensor, temp_sensor, siren, other)
//   - CreateRequest: Payload for registering a new device
//   - StateHistoryRepository: Local record of observed state changes
package device
