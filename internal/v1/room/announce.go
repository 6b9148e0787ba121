package room

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/logging"
	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/protocol"
	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/types"
)

// AnnounceTo is a handler's fan-out instruction: who hears about the
// command and with which events. Handlers compute it while mutating
// state; deliver carries it out before the registry lock is released.
type AnnounceTo struct {
	kind     announceKind
	respond  protocol.Event
	announce protocol.Event
	canvas   types.CanvasID
	errCode  protocol.ErrorCode
}

type announceKind int

const (
	announceNone announceKind = iota
	announceAll
	announceRespond
	announceRespondAll
	announceRespondCanvas
	announceError
)

// None suppresses every reply. The command id, if any, is dropped.
func None() AnnounceTo { return AnnounceTo{kind: announceNone} }

// All broadcasts one event to everyone in the room, sender included,
// echoing the command id to all of them.
func All(event protocol.Event) AnnounceTo {
	return AnnounceTo{kind: announceAll, announce: event}
}

// Respond answers only the sender.
func Respond(event protocol.Event) AnnounceTo {
	return AnnounceTo{kind: announceRespond, respond: event}
}

// RespondAndAnnounce answers the sender and broadcasts a second event
// to everyone else in the room.
func RespondAndAnnounce(respond, announce protocol.Event) AnnounceTo {
	return AnnounceTo{kind: announceRespondAll, respond: respond, announce: announce}
}

// RespondAndAnnounceToCanvas answers the sender and broadcasts a
// second event to the other users on one canvas.
func RespondAndAnnounceToCanvas(respond, announce protocol.Event, canvas types.CanvasID) AnnounceTo {
	return AnnounceTo{kind: announceRespondCanvas, respond: respond, announce: announce, canvas: canvas}
}

// Err refuses the command. The sender only hears about it when the
// command carried an id.
func Err(code protocol.ErrorCode) AnnounceTo {
	return AnnounceTo{kind: announceError, errCode: code}
}

// IsErr reports whether the instruction is a refusal.
func (a AnnounceTo) IsErr() bool { return a.kind == announceError }

// deliver fans the instruction out. Each event is serialized exactly
// once; the sender's copy carries the command id, broadcasts carry
// none.
func (r *Room) deliver(ctx context.Context, sender *RoomUser, id *uuid.UUID, result AnnounceTo) {
	switch result.kind {
	case announceNone:
	case announceAll:
		r.announceToAll(ctx, id, result.announce)
	case announceRespond:
		r.respond(ctx, sender, id, result.respond)
	case announceRespondAll:
		r.respond(ctx, sender, id, result.respond)
		r.announceExcept(ctx, sender.Addr, result.announce)
	case announceRespondCanvas:
		r.respond(ctx, sender, id, result.respond)
		r.announceToCanvasExcept(ctx, result.canvas, sender.Addr, result.announce)
	case announceError:
		r.respondError(ctx, sender.conn, id, result.errCode)
	}
}

// announceToAll serializes one event and queues it for every member.
func (r *Room) announceToAll(ctx context.Context, id *uuid.UUID, event protocol.Event) {
	data, err := protocol.Encode(event, id)
	if err != nil {
		logging.Error(ctx, "Failed to marshal broadcast", zap.String("room", string(r.Name)), zap.Error(err))
		return
	}
	for _, u := range r.users {
		u.conn.SendRaw(data)
	}
}

// announceExcept queues one event for every member but the sender.
func (r *Room) announceExcept(ctx context.Context, except types.Addr, event protocol.Event) {
	data, err := protocol.Encode(event, nil)
	if err != nil {
		logging.Error(ctx, "Failed to marshal broadcast", zap.String("room", string(r.Name)), zap.Error(err))
		return
	}
	for _, u := range r.users {
		if u.Addr == except {
			continue
		}
		u.conn.SendRaw(data)
	}
}

// announceToCanvasExcept queues one event for the other members whose
// current canvas matches.
func (r *Room) announceToCanvasExcept(ctx context.Context, canvas types.CanvasID, except types.Addr, event protocol.Event) {
	data, err := protocol.Encode(event, nil)
	if err != nil {
		logging.Error(ctx, "Failed to marshal canvas broadcast", zap.String("room", string(r.Name)), zap.Error(err))
		return
	}
	for _, u := range r.users {
		if u.Canvas != canvas || u.Addr == except {
			continue
		}
		u.conn.SendRaw(data)
	}
}

// respond queues one event for a single user, stamped with the id of
// the command it answers.
func (r *Room) respond(ctx context.Context, u *RoomUser, id *uuid.UUID, event protocol.Event) {
	data, err := protocol.Encode(event, id)
	if err != nil {
		logging.Error(ctx, "Failed to marshal reply", zap.String("room", string(r.Name)), zap.Error(err))
		return
	}
	u.conn.SendRaw(data)
}

// respondError queues an error reply. Commands without an id fail
// silently.
func (r *Room) respondError(ctx context.Context, conn types.ClientConn, id *uuid.UUID, code protocol.ErrorCode) {
	if id == nil {
		return
	}
	data, err := protocol.EncodeError(*id, code)
	if err != nil {
		logging.Error(ctx, "Failed to marshal error reply", zap.String("room", string(r.Name)), zap.Error(err))
		return
	}
	conn.SendRaw(data)
}
