// Package types defines the shared vocabulary of the planner service.
//
// It holds the identifiers, access levels, colors, and the canvas
// element model exchanged between the room registry and the websocket
// transport. Keeping these here avoids import cycles between the room
// and transport packages.
package types

import (
	"github.com/google/uuid"
)

// --- Core Domain Types ---

// Addr identifies a live websocket connection. It is the remote
// address of the underlying TCP connection and doubles as the room-side
// identity of a user for as long as they stay connected.
type Addr string

// RoomName identifies a room. Rooms are created when the first user
// joins and destroyed when the last user leaves.
type RoomName string

// CanvasID identifies one canvas inside a room.
type CanvasID uint16

// AccessLevel describes what a user may do inside a room.
type AccessLevel string

// Access level constants define the permission hierarchy.
const (
	AccessLevelView  AccessLevel = "view"  // Read-only access
	AccessLevelEdit  AccessLevel = "edit"  // May edit and select elements
	AccessLevelAdmin AccessLevel = "admin" // Edit rights plus user management
)

// Valid reports whether the access level is one of the known values.
func (a AccessLevel) Valid() bool {
	switch a {
	case AccessLevelView, AccessLevelEdit, AccessLevelAdmin:
		return true
	}
	return false
}

// CanEdit reports whether the level permits mutating canvas elements.
func (a AccessLevel) CanEdit() bool {
	return a == AccessLevelEdit || a == AccessLevelAdmin
}

// User is the wire representation of a room member.
type User struct {
	Color       Color       `json:"color"`
	Username    string      `json:"username"`
	Canvas      CanvasID    `json:"canvas"`
	UUID        uuid.UUID   `json:"uuid"`
	AccessLevel AccessLevel `json:"access_level"`
}

// --- Shared Interfaces ---

// ClientConn is the transport-side handle the room layer writes to.
// Implementations must be safe for concurrent use and must never
// block: a send that cannot be queued disconnects the client instead.
type ClientConn interface {
	// SendRaw queues a pre-serialized text frame for delivery.
	SendRaw(data []byte)
	// SendPing queues a websocket ping control frame.
	SendPing()
	// Disconnect closes the outbound queue. It is idempotent and safe
	// to call from any goroutine.
	Disconnect()
}
