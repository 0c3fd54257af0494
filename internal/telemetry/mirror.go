package telemetry

import (
	"strconv"
	"sync"

	"github.com/nerrad567/gray-logic-remote/internal/device"
	"github.com/nerrad567/gray-logic-remote/internal/state"
)

// Writer is the time-series surface the mirror needs.
// The production implementation is *influxdb.Client.
type Writer interface {
	WriteDeviceReading(deviceID int64, deviceType, field string, value float64)
	WriteDeviceState(deviceID int64, deviceType string, on bool)
}

// Logger defines the logging interface used by the Mirror.
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

// Mirror streams device telemetry from state snapshots into the
// time-series store.
//
// The remote service keeps only the latest value of everything. The
// mirror watches the state store and writes each observed change, which
// gives an installation its own local history: temperature curves,
// lamp duty cycles, motion activity.
//
// Only changes are written. A snapshot that repeats a device's known
// state produces no points.
type Mirror struct {
	writer Writer
	state  *state.Store
	logger Logger

	// seen tracks the last mirrored state string per device.
	seen map[int64]string

	cancel func()
	wg     sync.WaitGroup
	once   sync.Once
}

// New creates a telemetry mirror.
func New(writer Writer, st *state.Store) *Mirror {
	return &Mirror{
		writer: writer,
		state:  st,
		logger: noopLogger{},
		seen:   make(map[int64]string),
	}
}

// SetLogger sets the logger for the mirror.
func (m *Mirror) SetLogger(logger Logger) {
	m.logger = logger
}

// Start subscribes to state changes and begins mirroring.
func (m *Mirror) Start() {
	ch, cancel := m.state.Watch()
	m.cancel = cancel

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		for snap := range ch {
			m.mirrorSnapshot(snap)
		}
	}()

	m.logger.Info("telemetry mirror started")
}

// Stop detaches from the state store and waits for the worker.
func (m *Mirror) Stop() {
	m.once.Do(func() {
		if m.cancel != nil {
			m.cancel()
		}
		m.wg.Wait()
	})
}

// mirrorSnapshot writes points for every device whose state changed.
func (m *Mirror) mirrorSnapshot(snap state.Snapshot) {
	for i := range snap.Devices {
		d := &snap.Devices[i]
		if m.seen[d.ID] == d.State {
			continue
		}
		m.seen[d.ID] = d.State
		m.mirrorDevice(d)
	}
}

// mirrorDevice translates one device's state into points.
func (m *Mirror) mirrorDevice(d *device.Device) {
	deviceType := string(d.Type)

	switch d.State {
	case "on", "off":
		m.writer.WriteDeviceState(d.ID, deviceType, d.State == "on")
	default:
		if value, err := strconv.ParseFloat(d.State, 64); err == nil {
			m.writer.WriteDeviceReading(d.ID, deviceType, "value", value)
		}
	}

	for field, raw := range d.Properties {
		if value, ok := numeric(raw); ok {
			m.writer.WriteDeviceReading(d.ID, deviceType, field, value)
		}
	}
}

// numeric coerces JSON property values into float64.
// Booleans become 0/1 so binary sensors chart as step series.
func numeric(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
