// Package room holds the live state of the planner: the process-wide
// registry of rooms, their members, and their canvases, plus the
// handlers for every command a client can send.
//
// Locking strategy: a single RWMutex on App guards all room state.
// The App centralizes lock acquisition in its exported entry points;
// every Room and Canvas method below assumes the lock is already held.
// Handlers run from validation through fan-out without releasing it,
// so no client ever observes a half-applied command.
package room

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/logging"
	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/protocol"
	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/types"
)

// RoomUser is one connected member of a room.
type RoomUser struct {
	Addr        types.Addr
	UUID        uuid.UUID
	Username    string
	Color       types.Color
	Canvas      types.CanvasID
	AccessLevel types.AccessLevel

	conn types.ClientConn
}

// Info returns the user's wire representation.
func (u *RoomUser) Info() types.User {
	return types.User{
		Color:       u.Color,
		Username:    u.Username,
		Canvas:      u.Canvas,
		UUID:        u.UUID,
		AccessLevel: u.AccessLevel,
	}
}

// Room is one collaborative space: its members in join order, its
// canvases, and its join policy.
type Room struct {
	Name types.RoomName

	// users keeps insertion order; admin succession and the on_join
	// member list both depend on it.
	users    []*RoomUser
	canvases map[types.CanvasID]*Canvas
	config   Config
}

func newRoom(name types.RoomName, config Config) *Room {
	return &Room{
		Name:     name,
		canvases: make(map[types.CanvasID]*Canvas),
		config:   config,
	}
}

func (r *Room) userByAddr(addr types.Addr) *RoomUser {
	for _, u := range r.users {
		if u.Addr == addr {
			return u
		}
	}
	return nil
}

func (r *Room) userByUUID(id uuid.UUID) *RoomUser {
	for _, u := range r.users {
		if u.UUID == id {
			return u
		}
	}
	return nil
}

func (r *Room) admin() *RoomUser {
	for _, u := range r.users {
		if u.AccessLevel == types.AccessLevelAdmin {
			return u
		}
	}
	return nil
}

// usersInfo lists every member in join order.
func (r *Room) usersInfo() []types.User {
	out := make([]types.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u.Info())
	}
	return out
}

// canvas returns the canvas with the given id, creating and seeding it
// on first reference.
func (r *Room) canvas(id types.CanvasID) *Canvas {
	c, ok := r.canvases[id]
	if !ok {
		c = newCanvas()
		r.canvases[id] = c
	}
	return c
}

// deselectEverywhere releases the user's selections on every canvas.
func (r *Room) deselectEverywhere(user uuid.UUID) {
	for _, c := range r.canvases {
		c.deselectAllBy(user)
	}
}

// buildUser fills in the join defaults that depend on current room
// state: the first member becomes admin, later members get the room
// default, and an unspecified canvas follows the admin.
func (r *Room) buildUser(p JoinParams) *RoomUser {
	level := r.config.defaultAccessLevel()
	if r.admin() == nil {
		level = types.AccessLevelAdmin
	}

	var canvas types.CanvasID
	if p.Canvas != nil {
		canvas = *p.Canvas
	} else if a := r.admin(); a != nil {
		canvas = a.Canvas
	}

	color := types.RandomColor()
	if p.Color != nil {
		color = *p.Color
	}

	return &RoomUser{
		Addr:        p.Addr,
		UUID:        uuid.New(),
		Username:    p.Username,
		Color:       color,
		Canvas:      canvas,
		AccessLevel: level,
		conn:        p.Conn,
	}
}

// addUser admits a user. Existing members hear about the join first,
// then the joiner receives the room snapshot with themselves included
// in the member list.
func (r *Room) addUser(ctx context.Context, u *RoomUser) {
	r.announceToAll(ctx, nil, protocol.NewJoin(u.Info()))

	elements := r.canvas(u.Canvas).snapshot()
	r.users = append(r.users, u)

	r.respond(ctx, u, nil, protocol.NewOnJoin(u.Info(), r.usersInfo(), elements))
}

// removeUser runs the departure sequence for a dropped connection and
// reports whether the user was found and whether the room is now
// empty. The registry drops empty rooms.
func (r *Room) removeUser(ctx context.Context, addr types.Addr) (found, empty bool) {
	idx := -1
	for i, u := range r.users {
		if u.Addr == addr {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, len(r.users) == 0
	}

	user := r.users[idx]
	r.users = append(r.users[:idx], r.users[idx+1:]...)
	user.conn.Disconnect()
	r.deselectEverywhere(user.UUID)

	if len(r.users) == 0 {
		return true, true
	}

	r.announceToAll(ctx, nil, protocol.NewDisconnect(user.UUID))

	if user.AccessLevel == types.AccessLevelAdmin {
		r.promoteNextAdmin(ctx)
	}
	return true, false
}

// promoteNextAdmin hands the room to the earliest-joined editor, or
// failing that the earliest-joined member. Only called after the
// current admin left, so no demotion broadcast follows.
func (r *Room) promoteNextAdmin(ctx context.Context) {
	next := r.users[0]
	for _, u := range r.users {
		if u.AccessLevel == types.AccessLevelEdit {
			next = u
			break
		}
	}

	logging.Info(ctx, "Promoting replacement admin",
		zap.String("room", string(r.Name)),
		zap.String("user", next.UUID.String()),
	)
	r.changeAccessLevel(ctx, next.UUID, types.AccessLevelAdmin)
}

// changeAccessLevel applies a level change and reports whether the
// target exists. Demoting a user to view releases every selection they
// hold; promoting a user to admin demotes the previous admin to edit,
// keeping exactly one admin in the room.
func (r *Room) changeAccessLevel(ctx context.Context, target uuid.UUID, level types.AccessLevel) bool {
	user := r.userByUUID(target)
	if user == nil {
		return false
	}

	user.AccessLevel = level
	if level == types.AccessLevelView {
		r.deselectEverywhere(user.UUID)
	}
	r.announceToAll(ctx, nil, protocol.NewUserChange(user.Info()))

	if level == types.AccessLevelAdmin {
		for _, other := range r.users {
			if other.AccessLevel == types.AccessLevelAdmin && other.UUID != user.UUID {
				other.AccessLevel = types.AccessLevelEdit
				r.announceToAll(ctx, nil, protocol.NewUserChange(other.Info()))
				break
			}
		}
	}
	return true
}
