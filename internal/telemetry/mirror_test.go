package telemetry

import (
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-remote/internal/device"
	"github.com/nerrad567/gray-logic-remote/internal/state"
)

type reading struct {
	deviceID int64
	field    string
	value    float64
}

type stateWrite struct {
	deviceID int64
	on       bool
}

// fakeWriter records points under a lock so tests can poll for them.
type fakeWriter struct {
	mu       sync.Mutex
	readings []reading
	states   []stateWrite
}

func (f *fakeWriter) WriteDeviceReading(deviceID int64, _ string, field string, value float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readings = append(f.readings, reading{deviceID, field, value})
}

func (f *fakeWriter) WriteDeviceState(deviceID int64, _ string, on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states = append(f.states, stateWrite{deviceID, on})
}

// waitFor polls until cond is true or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestMirror_WritesOnOffTransitions(t *testing.T) {
	st := state.NewStore()
	w := &fakeWriter{}
	m := New(w, st)
	m.Start()
	defer m.Stop()

	st.SetDevices([]device.Device{
		{ID: 42, Name: "Lamp", Type: device.DeviceTypeLamp, State: "on"},
	})

	waitFor(t, func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return len(w.states) == 1
	})

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.states[0].deviceID != 42 || !w.states[0].on {
		t.Errorf("state write = %+v", w.states[0])
	}
}

func TestMirror_WritesNumericStateAndProperties(t *testing.T) {
	st := state.NewStore()
	w := &fakeWriter{}
	m := New(w, st)
	m.Start()
	defer m.Stop()

	st.SetDevices([]device.Device{
		{ID: 7, Name: "Thermometer", Type: device.DeviceTypeTempSensor, State: "21.5",
			Properties: device.Properties{"temperature": 21.5, "battery": 88, "label": "hall"}},
	})

	waitFor(t, func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return len(w.readings) >= 3
	})

	w.mu.Lock()
	defer w.mu.Unlock()
	fields := map[string]float64{}
	for _, r := range w.readings {
		if r.deviceID == 7 {
			fields[r.field] = r.value
		}
	}
	if fields["value"] != 21.5 || fields["temperature"] != 21.5 || fields["battery"] != 88 {
		t.Errorf("mirrored fields = %v", fields)
	}
	if _, ok := fields["label"]; ok {
		t.Error("non-numeric properties must not be mirrored")
	}
}

func TestMirror_SkipsUnchangedState(t *testing.T) {
	st := state.NewStore()
	w := &fakeWriter{}
	m := New(w, st)
	m.Start()
	defer m.Stop()

	st.SetDevices([]device.Device{
		{ID: 42, Name: "Lamp", Type: device.DeviceTypeLamp, State: "on"},
	})
	waitFor(t, func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return len(w.states) == 1
	})

	// An unrelated mutation republishes the same device state.
	st.SetConnected(true)
	st.SetConnected(false)
	time.Sleep(50 * time.Millisecond)

	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.states) != 1 {
		t.Errorf("state writes = %d, want 1 (no rewrite of unchanged state)", len(w.states))
	}
}

func TestMirror_StopIsIdempotent(t *testing.T) {
	m := New(&fakeWriter{}, state.NewStore())
	m.Start()
	m.Stop()
	m.Stop()
}
