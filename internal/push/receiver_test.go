package push

import (
	"context"
	"errors"
	"testing"

	"github.com/nerrad567/gray-logic-remote/internal/device"
	"github.com/nerrad567/gray-logic-remote/internal/gateway"
	"github.com/nerrad567/gray-logic-remote/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-remote/internal/state"
)

// fakeBus records subscriptions and lets tests inject messages.
type fakeBus struct {
	topics       mqtt.Topics
	subscribed   string
	unsubscribed string
	handler      mqtt.MessageHandler
	subscribeErr error
}

func (f *fakeBus) Subscribe(topic string, _ byte, handler mqtt.MessageHandler) error {
	if f.subscribeErr != nil {
		return f.subscribeErr
	}
	f.subscribed = topic
	f.handler = handler
	return nil
}

func (f *fakeBus) Unsubscribe(topic string) error {
	f.unsubscribed = topic
	return nil
}

func (f *fakeBus) Topics() mqtt.Topics { return f.topics }

func newTestReceiver(t *testing.T) (*Receiver, *fakeBus, *state.Store) {
	t.Helper()

	bus := &fakeBus{topics: mqtt.NewTopics("smart_home/demo")}
	st := state.NewStore()
	st.SetDevices([]device.Device{
		{ID: 42, Name: "Lamp", Type: device.DeviceTypeLamp, State: "off"},
	})

	r := New(bus, st, 1)
	if err := r.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return r, bus, st
}

func TestReceiver_StartSubscribesToDeviceStates(t *testing.T) {
	_, bus, _ := newTestReceiver(t)

	if bus.subscribed != "smart_home/demo/device/+/state" {
		t.Errorf("subscribed to %q", bus.subscribed)
	}
}

func TestReceiver_FoldsPushedState(t *testing.T) {
	_, bus, st := newTestReceiver(t)

	if err := bus.handler("smart_home/demo/device/42/state", []byte("on")); err != nil {
		t.Fatalf("handler error = %v", err)
	}

	dev, _ := st.Device(42)
	if dev.State != "on" {
		t.Errorf("state = %q, want on", dev.State)
	}
	if dev.LastUpdate == nil {
		t.Error("pushed update should stamp LastUpdate")
	}
}

func TestReceiver_IgnoresUnknownDevice(t *testing.T) {
	_, bus, st := newTestReceiver(t)

	if err := bus.handler("smart_home/demo/device/99/state", []byte("on")); err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if len(st.Snapshot().Devices) != 1 {
		t.Error("devices outside the snapshot must not be invented")
	}
}

func TestReceiver_IgnoresForeignTopics(t *testing.T) {
	_, bus, st := newTestReceiver(t)

	if err := bus.handler("smart_home/demo/client/x/status", []byte("online")); err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if dev, _ := st.Device(42); dev.State != "off" {
		t.Error("non-state topics must not touch devices")
	}
}

func TestReceiver_RejectsEmptyPayload(t *testing.T) {
	_, bus, _ := newTestReceiver(t)

	if err := bus.handler("smart_home/demo/device/42/state", []byte("  ")); !errors.Is(err, ErrEmptyPayload) {
		t.Errorf("handler error = %v, want ErrEmptyPayload", err)
	}
}

func TestReceiver_Stop(t *testing.T) {
	r, bus, _ := newTestReceiver(t)

	if err := r.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if bus.unsubscribed != "smart_home/demo/device/+/state" {
		t.Errorf("unsubscribed from %q", bus.unsubscribed)
	}
}

// fakeRegistrar records one token registration.
type fakeRegistrar struct {
	got gateway.PushTokenRequest
	err error
}

func (f *fakeRegistrar) RegisterPushToken(_ context.Context, req gateway.PushTokenRequest) error {
	f.got = req
	return f.err
}

func TestReceiver_RegisterToken(t *testing.T) {
	r, _, _ := newTestReceiver(t)
	reg := &fakeRegistrar{}

	req := gateway.PushTokenRequest{Token: "fcm-abc", DeviceType: "android", DeviceName: "Pixel"}
	if err := r.RegisterToken(context.Background(), reg, req); err != nil {
		t.Fatalf("RegisterToken() error = %v", err)
	}
	if reg.got.Token != "fcm-abc" {
		t.Errorf("registered token = %q", reg.got.Token)
	}

	reg.err = &gateway.Error{Kind: gateway.KindUnauthorized, Op: "push_token", Status: 401, Message: "expired"}
	if err := r.RegisterToken(context.Background(), reg, req); err == nil {
		t.Error("registration failure should surface")
	}
}
