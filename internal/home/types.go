package home

// Home represents a property registered with the remote service.
// It is the root of the entity hierarchy; exactly one home is "active"
// at a time, tracked by the session's active home id.
type Home struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	OwnerID int64  `json:"owner_id"`
}

// Room represents a physical space within a home.
// A room exists only within the scope of a loaded home.
type Room struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	HomeID int64  `json:"home_id"`
}

// CreateHomeRequest is the payload for registering a new home.
type CreateHomeRequest struct {
	Name string `json:"name"`
}

// CreateRoomRequest is the payload for adding a room to a home.
type CreateRoomRequest struct {
	Name string `json:"name"`
}
