package command

import (
	"context"
	"errors"
	"testing"

	"github.com/nerrad567/gray-logic-remote/internal/device"
	"github.com/nerrad567/gray-logic-remote/internal/gateway"
	"github.com/nerrad567/gray-logic-remote/internal/state"
)

// fakeController captures the command and answers from a hook.
type fakeController struct {
	fn func(ctx context.Context, deviceID int64, newState string) (gateway.ActionResult, error)
}

func (f *fakeController) ControlDevice(ctx context.Context, deviceID int64, newState string) (gateway.ActionResult, error) {
	return f.fn(ctx, deviceID, newState)
}

func seededStore() *state.Store {
	st := state.NewStore()
	st.SetDevices([]device.Device{
		{ID: 42, Name: "Lamp", Type: device.DeviceTypeLamp, State: "off"},
		{ID: 43, Name: "Siren", Type: device.DeviceTypeSiren, State: "off"},
	})
	return st
}

func TestControl_OptimisticThenConfirmed(t *testing.T) {
	st := seededStore()

	var observed string
	ctrl := &fakeController{fn: func(_ context.Context, id int64, newState string) (gateway.ActionResult, error) {
		// The optimistic value must already be visible during the round trip.
		dev, _ := st.Device(id)
		observed = dev.State
		return gateway.ActionResult{Status: "ok", DeviceID: id, State: newState}, nil
	}}

	d := New(ctrl, st)
	if err := d.Control(context.Background(), 42, "on"); err != nil {
		t.Fatalf("Control() error = %v", err)
	}

	if observed != "on" {
		t.Errorf("state during round trip = %q, want optimistic on", observed)
	}

	dev, _ := st.Device(42)
	if dev.State != "on" {
		t.Errorf("final state = %q, want on", dev.State)
	}
	if dev.LastUpdate == nil {
		t.Error("confirmed update should stamp LastUpdate")
	}
}

func TestControl_ServerValueWins(t *testing.T) {
	st := seededStore()

	// Server clamps the request to a different state.
	ctrl := &fakeController{fn: func(_ context.Context, id int64, _ string) (gateway.ActionResult, error) {
		return gateway.ActionResult{Status: "ok", DeviceID: id, State: "dimmed"}, nil
	}}

	d := New(ctrl, st)
	if err := d.Control(context.Background(), 42, "on"); err != nil {
		t.Fatalf("Control() error = %v", err)
	}

	dev, _ := st.Device(42)
	if dev.State != "dimmed" {
		t.Errorf("final state = %q, want the server's dimmed", dev.State)
	}
}

func TestControl_RollbackOnFailure(t *testing.T) {
	st := seededStore()

	ctrl := &fakeController{fn: func(context.Context, int64, string) (gateway.ActionResult, error) {
		return gateway.ActionResult{}, &gateway.Error{
			Kind: gateway.KindServer, Op: "device_action", Status: 500, Message: "actuator offline",
		}
	}}

	d := New(ctrl, st)
	if err := d.Control(context.Background(), 42, "on"); err == nil {
		t.Fatal("Control() should surface the failure")
	}

	dev, _ := st.Device(42)
	if dev.State != "off" {
		t.Errorf("state after rollback = %q, want prior off", dev.State)
	}
	failure := st.Snapshot().LastError
	if failure == nil || failure.Message != "actuator offline" {
		t.Errorf("LastError = %+v, want the server detail", failure)
	}
}

func TestControl_FailureCarriesErrorKind(t *testing.T) {
	st := seededStore()

	// An expired token mid-command must be recognisable as an auth
	// failure from the snapshot alone, not just as message text.
	ctrl := &fakeController{fn: func(context.Context, int64, string) (gateway.ActionResult, error) {
		return gateway.ActionResult{}, &gateway.Error{
			Kind: gateway.KindUnauthorized, Op: "device_action", Status: 401,
			Message: "Could not validate credentials",
		}
	}}

	d := New(ctrl, st)
	if err := d.Control(context.Background(), 42, "on"); err == nil {
		t.Fatal("Control() should surface the failure")
	}

	if dev, _ := st.Device(42); dev.State != "off" {
		t.Errorf("state after rollback = %q, want prior off", dev.State)
	}

	failure := st.Snapshot().LastError
	if failure == nil {
		t.Fatal("LastError should be set")
	}
	if failure.Kind != gateway.KindUnauthorized {
		t.Errorf("LastError.Kind = %q, want unauthorized", failure.Kind)
	}
	if failure.Message != "Could not validate credentials" {
		t.Errorf("LastError.Message = %q, want the server detail", failure.Message)
	}
}

func TestControl_UnknownDevice(t *testing.T) {
	ctrl := &fakeController{fn: func(context.Context, int64, string) (gateway.ActionResult, error) {
		t.Error("no round trip for an unknown device")
		return gateway.ActionResult{}, nil
	}}

	d := New(ctrl, state.NewStore())
	if err := d.Control(context.Background(), 99, "on"); !errors.Is(err, ErrUnknownDevice) {
		t.Errorf("Control() error = %v, want ErrUnknownDevice", err)
	}
}

func TestControl_ValidatesInput(t *testing.T) {
	d := New(&fakeController{fn: func(context.Context, int64, string) (gateway.ActionResult, error) {
		return gateway.ActionResult{}, nil
	}}, seededStore())

	if err := d.Control(context.Background(), 42, ""); err == nil {
		t.Error("blank state should fail validation")
	}
	if err := d.Control(context.Background(), 0, "on"); err == nil {
		t.Error("zero device id should fail validation")
	}
}

func TestRequiresConfirmation(t *testing.T) {
	d := New(&fakeController{}, seededStore())

	if d.RequiresConfirmation(42) {
		t.Error("a lamp needs no confirmation")
	}
	if !d.RequiresConfirmation(43) {
		t.Error("a siren needs confirmation")
	}
	if d.RequiresConfirmation(99) {
		t.Error("an unknown device needs no confirmation")
	}
}
