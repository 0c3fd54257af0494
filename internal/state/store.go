package state

import (
	"sync"

	"github.com/nerrad567/gray-logic-remote/internal/device"
	"github.com/nerrad567/gray-logic-remote/internal/gateway"
	"github.com/nerrad567/gray-logic-remote/internal/home"
)

// Logger defines the logging interface used by the Store.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Failure is the snapshot's record of the most recent failed operation.
//
// Kind carries the gateway's classification so a consumer can branch on
// the class of problem: Unauthorized means go back to login, Network
// means retry later. Kind is empty when the failure did not come from a
// remote operation (a local persistence error, for example). Message is
// the presentable text, the server's detail when one was carried.
type Failure struct {
	Kind    gateway.Kind
	Message string
}

// Snapshot is the complete observable client state at one instant.
//
// Slices and device properties are deep copies: holding a Snapshot
// never races with later writes, and mutating one never corrupts the
// store. LastError is nil when nothing is wrong.
type Snapshot struct {
	Homes       []home.Home
	Rooms       []home.Room
	Devices     []device.Device
	IsLoading   bool
	IsConnected bool
	LastError   *Failure
}

// Store holds the observable client state.
//
// Writers are the sync repository, the command dispatcher, and the push
// receiver; everything else reads. Each mutation produces a consistent
// snapshot delivered to watchers, latest-wins: a slow consumer sees the
// newest state, never a backlog.
//
// All public methods are thread-safe.
type Store struct {
	mu   sync.RWMutex
	snap Snapshot

	watcherMu   sync.Mutex
	watchers    map[int]chan Snapshot
	nextWatcher int

	logger Logger
}

// NewStore creates an empty state store.
func NewStore() *Store {
	return &Store{
		watchers: make(map[int]chan Snapshot),
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the store.
func (s *Store) SetLogger(logger Logger) {
	s.logger = logger
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySnapshot(s.snap)
}

// Watch registers a consumer. The returned channel delivers a snapshot
// after every mutation; when the consumer lags, intermediate snapshots
// are replaced rather than queued. The cancel function releases the
// watcher and closes the channel.
func (s *Store) Watch() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	s.watcherMu.Lock()
	id := s.nextWatcher
	s.nextWatcher++
	s.watchers[id] = ch
	s.watcherMu.Unlock()

	cancel := func() {
		s.watcherMu.Lock()
		if existing, ok := s.watchers[id]; ok {
			delete(s.watchers, id)
			close(existing)
		}
		s.watcherMu.Unlock()
	}
	return ch, cancel
}

// SetHomes replaces the home list.
func (s *Store) SetHomes(homes []home.Home) {
	s.mutate(func(snap *Snapshot) {
		snap.Homes = append([]home.Home(nil), homes...)
	})
}

// AddHome appends one home. The append happens under the write lock so
// concurrent creates never lose each other's entry.
func (s *Store) AddHome(h home.Home) {
	s.mutate(func(snap *Snapshot) {
		snap.Homes = append(snap.Homes, h)
	})
}

// SetRooms replaces the room list.
func (s *Store) SetRooms(rooms []home.Room) {
	s.mutate(func(snap *Snapshot) {
		snap.Rooms = append([]home.Room(nil), rooms...)
	})
}

// AddRoom appends one room under the write lock.
func (s *Store) AddRoom(rm home.Room) {
	s.mutate(func(snap *Snapshot) {
		snap.Rooms = append(snap.Rooms, rm)
	})
}

// SetDevices replaces the device list.
func (s *Store) SetDevices(devices []device.Device) {
	s.mutate(func(snap *Snapshot) {
		snap.Devices = copyDevices(devices)
	})
}

// UpdateDevice replaces one device in place, matched by id. Unknown
// devices are appended; a freshly created device flows through the
// same path as a state change.
func (s *Store) UpdateDevice(d device.Device) {
	s.mutate(func(snap *Snapshot) {
		for i := range snap.Devices {
			if snap.Devices[i].ID == d.ID {
				snap.Devices[i] = *d.DeepCopy()
				return
			}
		}
		snap.Devices = append(snap.Devices, *d.DeepCopy())
	})
}

// Device returns a deep copy of one device by id.
func (s *Store) Device(id int64) (device.Device, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.snap.Devices {
		if s.snap.Devices[i].ID == id {
			return *s.snap.Devices[i].DeepCopy(), true
		}
	}
	return device.Device{}, false
}

// SetLoading flips the sync-in-progress flag.
func (s *Store) SetLoading(loading bool) {
	s.mutate(func(snap *Snapshot) {
		snap.IsLoading = loading
	})
}

// SetConnected records server reachability. Any successful round trip
// sets it; a transport-level failure clears it.
func (s *Store) SetConnected(connected bool) {
	s.mutate(func(snap *Snapshot) {
		snap.IsConnected = connected
	})
}

// SetLastError records a classified failure. It stays until replaced by
// a later failure or acknowledged via ClearLastError.
func (s *Store) SetLastError(kind gateway.Kind, msg string) {
	s.mutate(func(snap *Snapshot) {
		snap.LastError = &Failure{Kind: kind, Message: msg}
	})
	s.logger.Warn("state error recorded", "kind", string(kind), "error", msg)
}

// ClearLastError acknowledges the current error, if any.
func (s *Store) ClearLastError() {
	s.mutate(func(snap *Snapshot) {
		snap.LastError = nil
	})
}

// Reset returns the store to its initial empty state. Used on logout.
func (s *Store) Reset() {
	s.mutate(func(snap *Snapshot) {
		*snap = Snapshot{}
	})
}

// mutate applies one change under the write lock and fans the
// resulting snapshot out to watchers.
func (s *Store) mutate(apply func(*Snapshot)) {
	s.mu.Lock()
	apply(&s.snap)
	snap := copySnapshot(s.snap)
	s.mu.Unlock()

	s.notify(snap)
}

// notify delivers a snapshot to every watcher without blocking.
// A full channel is drained first so the consumer always finds the
// newest state when it next reads.
func (s *Store) notify(snap Snapshot) {
	s.watcherMu.Lock()
	defer s.watcherMu.Unlock()

	for _, ch := range s.watchers {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

// copySnapshot deep-copies a snapshot for handoff outside the lock.
func copySnapshot(snap Snapshot) Snapshot {
	cpy := snap
	cpy.Homes = append([]home.Home(nil), snap.Homes...)
	cpy.Rooms = append([]home.Room(nil), snap.Rooms...)
	cpy.Devices = copyDevices(snap.Devices)
	if snap.LastError != nil {
		failure := *snap.LastError
		cpy.LastError = &failure
	}
	return cpy
}

// copyDevices deep-copies a device slice, including properties maps.
func copyDevices(devices []device.Device) []device.Device {
	if devices == nil {
		return nil
	}
	out := make([]device.Device, len(devices))
	for i := range devices {
		out[i] = *devices[i].DeepCopy()
	}
	return out
}
