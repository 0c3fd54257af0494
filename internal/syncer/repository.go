package syncer

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/nerrad567/gray-logic-remote/internal/device"
	"github.com/nerrad567/gray-logic-remote/internal/gateway"
	"github.com/nerrad567/gray-logic-remote/internal/home"
	"github.com/nerrad567/gray-logic-remote/internal/session"
	"github.com/nerrad567/gray-logic-remote/internal/state"
)

// defaultChainTimeout bounds one complete sync chain.
const defaultChainTimeout = 30 * time.Second

// Gateway defines the remote operations the repository depends on.
// The production implementation is *gateway.Client.
type Gateway interface {
	Login(ctx context.Context, username, password string) (gateway.TokenResponse, error)
	Register(ctx context.Context, creds gateway.Credentials) (gateway.RegisteredUser, error)
	Ping(ctx context.Context) error
	Homes(ctx context.Context) ([]home.Home, error)
	CreateHome(ctx context.Context, req home.CreateHomeRequest) (home.Home, error)
	Rooms(ctx context.Context, homeID int64) ([]home.Room, error)
	CreateRoom(ctx context.Context, homeID int64, req home.CreateRoomRequest) (home.Room, error)
	Devices(ctx context.Context, homeID int64) ([]device.Device, error)
	CreateDevice(ctx context.Context, homeID int64, req device.CreateRequest) (device.Device, error)
	SendAction(ctx context.Context, deviceID int64, newState string) (gateway.ActionResult, error)
}

// Logger defines the logging interface used by the Repository.
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

// Repository orchestrates synchronisation between the remote service,
// the session store, and the observable state store.
//
// LoadAll runs the hierarchical chain: homes, then the active home's
// rooms, then its devices. Each completed stage is published before the
// next begins, so a failure mid-chain leaves the earlier stages visible
// (partial success) with the failure recorded as the state's LastError.
//
// All public methods are thread-safe.
type Repository struct {
	gw       Gateway
	sessions session.Store
	state    *state.Store
	history  device.StateHistoryRepository

	chainTimeout time.Duration
	inFlight     atomic.Bool
	closed       atomic.Bool

	logger Logger
}

// New creates a sync repository.
func New(gw Gateway, sessions session.Store, st *state.Store) *Repository {
	return &Repository{
		gw:           gw,
		sessions:     sessions,
		state:        st,
		chainTimeout: defaultChainTimeout,
		logger:       noopLogger{},
	}
}

// SetLogger sets the logger for the repository.
func (r *Repository) SetLogger(logger Logger) {
	r.logger = logger
}

// SetHistory enables local recording of observed device state changes.
func (r *Repository) SetHistory(history device.StateHistoryRepository) {
	r.history = history
}

// SetChainTimeout overrides the bound on one complete sync chain.
func (r *Repository) SetChainTimeout(d time.Duration) {
	if d > 0 {
		r.chainTimeout = d
	}
}

// Close stops the repository from publishing further state. In-flight
// work finishes quietly; its completions become no-ops.
func (r *Repository) Close() {
	r.closed.Store(true)
}

// LoadAll runs the full sync chain.
//
// Stages:
//  1. Homes. Empty list is a valid final state.
//  2. Active home selection: the persisted choice when the server still
//     reports that home, otherwise the first home.
//  3. Rooms of the active home. Empty list is a valid final state.
//  4. Devices of the active home.
//
// A second LoadAll while one is running returns ErrSyncInFlight.
// Without a logged-in session it returns ErrNotLoggedIn untouched by
// the network.
func (r *Repository) LoadAll(ctx context.Context) error {
	if r.closed.Load() {
		return ErrClosed
	}
	if !r.sessions.IsLoggedIn(ctx) {
		return ErrNotLoggedIn
	}
	if !r.inFlight.CompareAndSwap(false, true) {
		return ErrSyncInFlight
	}
	defer r.inFlight.Store(false)

	ctx, cancel := context.WithTimeout(ctx, r.chainTimeout)
	defer cancel()

	r.publish(func() { r.state.SetLoading(true) })
	// Clearing the loading flag is this chain's own terminal write, so it
	// bypasses the liveness guard: a Close landing mid-chain must not
	// leave IsLoading stuck true in a store other writers still touch.
	defer r.state.SetLoading(false)

	homes, err := r.gw.Homes(ctx)
	if err != nil {
		return r.fail("loading homes", err)
	}
	r.observeSuccess()
	r.publish(func() { r.state.SetHomes(homes) })

	if len(homes) == 0 {
		r.logger.Info("sync complete: no homes registered")
		r.publish(func() {
			r.state.SetRooms(nil)
			r.state.SetDevices(nil)
		})
		return nil
	}

	active, err := r.selectActiveHome(ctx, homes)
	if err != nil {
		return r.fail("selecting active home", err)
	}

	rooms, err := r.gw.Rooms(ctx, active)
	if err != nil {
		return r.fail("loading rooms", err)
	}
	r.publish(func() { r.state.SetRooms(rooms) })

	if len(rooms) == 0 {
		r.logger.Info("sync complete: active home has no rooms", "home_id", active)
		r.publish(func() { r.state.SetDevices(nil) })
		return nil
	}

	devices, err := r.gw.Devices(ctx, active)
	if err != nil {
		return r.fail("loading devices", err)
	}
	r.recordObservedStates(ctx, devices)
	r.publish(func() { r.state.SetDevices(devices) })

	r.logger.Info("sync complete",
		"homes", len(homes), "rooms", len(rooms), "devices", len(devices), "home_id", active)
	return nil
}

// selectActiveHome resolves which home the chain descends into and
// persists the choice. The persisted id wins as long as the server
// still reports that home; otherwise the first home becomes active.
func (r *Repository) selectActiveHome(ctx context.Context, homes []home.Home) (int64, error) {
	persisted, err := r.sessions.ActiveHomeID(ctx)
	if err != nil {
		return 0, err
	}

	if persisted != session.NoActiveHome {
		for _, h := range homes {
			if h.ID == persisted {
				return persisted, nil
			}
		}
		r.logger.Warn("persisted active home no longer available", "home_id", persisted)
	}

	active := homes[0].ID
	if err := r.sessions.SaveActiveHomeID(ctx, active); err != nil {
		return 0, err
	}
	return active, nil
}

// SwitchHome makes another home active and reloads its rooms and
// devices. The home must be present in the current snapshot.
func (r *Repository) SwitchHome(ctx context.Context, homeID int64) error {
	if r.closed.Load() {
		return ErrClosed
	}

	known := false
	for _, h := range r.state.Snapshot().Homes {
		if h.ID == homeID {
			known = true
			break
		}
	}
	if !known {
		return ErrUnknownHome
	}

	if err := r.sessions.SaveActiveHomeID(ctx, homeID); err != nil {
		return err
	}
	return r.LoadAll(ctx)
}

// Login authenticates and persists the session, so the next LoadAll
// runs authenticated.
func (r *Repository) Login(ctx context.Context, username, password string) error {
	resp, err := r.gw.Login(ctx, username, password)
	if err != nil {
		return r.fail("login", err)
	}
	r.observeSuccess()

	if err := r.sessions.SaveSession(ctx, resp.AccessToken, username); err != nil {
		return r.fail("persisting session", err)
	}
	r.logger.Info("logged in", "username", username)
	return nil
}

// Register creates an account. The caller still logs in afterwards;
// registration does not start a session.
func (r *Repository) Register(ctx context.Context, creds gateway.Credentials) error {
	if _, err := r.gw.Register(ctx, creds); err != nil {
		return r.fail("register", err)
	}
	r.observeSuccess()
	r.logger.Info("account registered", "username", creds.Username)
	return nil
}

// Logout clears the session and resets the observable state.
func (r *Repository) Logout(ctx context.Context) error {
	if err := r.sessions.ClearSession(ctx); err != nil {
		return err
	}
	r.publish(r.state.Reset)
	r.logger.Info("logged out")
	return nil
}

// Ping checks the server and records reachability.
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.gw.Ping(ctx); err != nil {
		r.publish(func() { r.state.SetConnected(false) })
		return err
	}
	r.observeSuccess()
	return nil
}

// CreateHome registers a new home and adds it to the snapshot.
func (r *Repository) CreateHome(ctx context.Context, req home.CreateHomeRequest) (home.Home, error) {
	created, err := r.gw.CreateHome(ctx, req)
	if err != nil {
		return home.Home{}, r.fail("creating home", err)
	}
	r.observeSuccess()

	r.publish(func() { r.state.AddHome(created) })
	return created, nil
}

// CreateRoom adds a room to a home. Rooms of the active home show up
// in the snapshot immediately.
func (r *Repository) CreateRoom(ctx context.Context, homeID int64, req home.CreateRoomRequest) (home.Room, error) {
	created, err := r.gw.CreateRoom(ctx, homeID, req)
	if err != nil {
		return home.Room{}, r.fail("creating room", err)
	}
	r.observeSuccess()

	if active, aerr := r.sessions.ActiveHomeID(ctx); aerr == nil && active == homeID {
		r.publish(func() { r.state.AddRoom(created) })
	}
	return created, nil
}

// CreateDevice registers a device in a home and merges it into the
// snapshot when it belongs to the active home.
func (r *Repository) CreateDevice(ctx context.Context, homeID int64, req device.CreateRequest) (device.Device, error) {
	created, err := r.gw.CreateDevice(ctx, homeID, req)
	if err != nil {
		return device.Device{}, r.fail("creating device", err)
	}
	r.observeSuccess()

	if active, aerr := r.sessions.ActiveHomeID(ctx); aerr == nil && active == homeID {
		r.publish(func() { r.state.UpdateDevice(created) })
	}
	return created, nil
}

// ControlDevice asks the server to move a device to a new state and
// returns the authoritative result. State publication is the command
// dispatcher's job; this only performs the round trip and records the
// confirmed change locally.
func (r *Repository) ControlDevice(ctx context.Context, deviceID int64, newState string) (gateway.ActionResult, error) {
	result, err := r.gw.SendAction(ctx, deviceID, newState)
	if err != nil {
		return gateway.ActionResult{}, r.observe(err)
	}
	r.observeSuccess()

	if r.history != nil {
		if herr := r.history.RecordStateChange(ctx, deviceID, result.State, device.StateHistorySourceCommand); herr != nil {
			r.logger.Warn("recording state change failed", "device_id", deviceID, "error", herr)
		}
	}
	return result, nil
}

// fail records a failure in the observable state and passes it through.
func (r *Repository) fail(stage string, err error) error {
	err = r.observe(err)
	r.logger.Error("sync stage failed", "stage", stage, "error", err)
	kind, message := classify(err)
	r.publish(func() { r.state.SetLastError(kind, message) })
	return err
}

// observe updates connectivity from the shape of a gateway failure.
// A transport failure means unreachable; anything the server answered
// means reachable, however unhappy the answer.
func (r *Repository) observe(err error) error {
	if kind, ok := gateway.KindOf(err); ok {
		r.publish(func() { r.state.SetConnected(kind != gateway.KindNetwork) })
	}
	return err
}

func (r *Repository) observeSuccess() {
	r.publish(func() { r.state.SetConnected(true) })
}

// publish applies a state mutation unless the repository is closed.
func (r *Repository) publish(apply func()) {
	if r.closed.Load() {
		return
	}
	apply()
}

// recordObservedStates writes history entries for devices whose state
// differs from the current snapshot.
func (r *Repository) recordObservedStates(ctx context.Context, devices []device.Device) {
	if r.history == nil {
		return
	}

	for _, d := range devices {
		prior, known := r.state.Device(d.ID)
		if known && prior.State == d.State {
			continue
		}
		if err := r.history.RecordStateChange(ctx, d.ID, d.State, device.StateHistorySourceSync); err != nil {
			r.logger.Warn("recording state change failed", "device_id", d.ID, "error", err)
			return
		}
	}
}

// classify reduces an error to the kind and presentable message the
// state store records. The kind is empty for failures that did not come
// from the gateway, such as a local persistence error.
func classify(err error) (gateway.Kind, string) {
	var gerr *gateway.Error
	if errors.As(err, &gerr) {
		message := gerr.Message
		if message == "" {
			message = err.Error()
		}
		return gerr.Kind, message
	}
	return "", err.Error()
}
