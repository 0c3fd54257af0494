// Package state holds the observable client state.
//
// A single Store owns the current homes, rooms, and devices along with
// the loading, connectivity, and error flags. Mutations come from the
// sync repository, the command dispatcher, and the push receiver;
// consumers read snapshots or watch for changes. Snapshots are deep
// copies, so readers never race with writers and never mutate shared
// data by accident.
package state
