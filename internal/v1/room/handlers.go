package room

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/logging"
	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/protocol"
	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/types"
)

// route dispatches a parsed command to its handler and returns the
// fan-out instruction. The caller holds the registry lock for the
// whole of it.
func (r *Room) route(ctx context.Context, sender *RoomUser, cmd *protocol.Command) AnnounceTo {
	switch cmd.Type {
	case protocol.CommandAccessLevelAdjustment:
		return r.handleAccessLevelAdjustment(ctx, sender, cmd.AccessLevelAdjustment)
	case protocol.CommandSelection:
		return r.handleSelection(sender, cmd.Selection)
	case protocol.CommandCanvas:
		return r.handleCanvas(sender, cmd.Canvas)
	case protocol.CommandElements:
		return r.handleElements(sender, cmd.Elements)
	}

	logging.Warn(ctx, "Unroutable command type", zap.String("type", string(cmd.Type)))
	return None()
}

// handleAccessLevelAdjustment lets the admin change another member's
// level. A successful change answers through the user_change broadcast
// alone, so the command id is deliberately dropped.
func (r *Room) handleAccessLevelAdjustment(ctx context.Context, sender *RoomUser, cmd *protocol.AccessLevelAdjustmentCommand) AnnounceTo {
	if sender.AccessLevel != types.AccessLevelAdmin {
		return Err(protocol.ErrorNoPermission)
	}
	if !r.changeAccessLevel(ctx, cmd.User, cmd.AccessLevel) {
		return Err(protocol.ErrorUserDoesNotExist)
	}
	return None()
}

// handleSelection reconciles the sender's declared selection with the
// server's view of their canvas. The sender learns which grabs failed;
// the rest of the canvas only hears about actual changes, and nothing
// at all when the command changed nothing.
func (r *Room) handleSelection(sender *RoomUser, cmd *protocol.SelectionCommand) AnnounceTo {
	if !sender.AccessLevel.CanEdit() {
		return Err(protocol.ErrorNoPermission)
	}

	requested := make(map[uuid.UUID]bool, len(cmd.Elements))
	for _, id := range cmd.Elements {
		requested[id] = true
	}

	canvas := r.canvas(sender.Canvas)
	var newlySelected, newlyDeselected, failed []uuid.UUID
	for i := range canvas.elements {
		el := &canvas.elements[i]
		want := requested[el.UUID]
		switch {
		case el.SelectedByUser(sender.UUID) && !want:
			el.SelectedBy = nil
			newlyDeselected = append(newlyDeselected, el.UUID)
		case want && el.Unselected():
			holder := sender.UUID
			el.SelectedBy = &holder
			newlySelected = append(newlySelected, el.UUID)
		case want && !el.SelectedByUser(sender.UUID):
			failed = append(failed, el.UUID)
		}
	}

	resp := protocol.NewSelectionResponse(sender.UUID, newlySelected, newlyDeselected, failed)
	if len(newlySelected) == 0 && len(newlyDeselected) == 0 {
		return Respond(resp)
	}
	return RespondAndAnnounceToCanvas(resp,
		protocol.NewSelection(sender.UUID, newlySelected, newlyDeselected),
		sender.Canvas)
}

// handleCanvas moves the sender to another canvas in one critical
// section: the move, the release of their stale selections there, and
// the snapshot all land before any other command can interleave. Any
// access level may switch.
func (r *Room) handleCanvas(sender *RoomUser, cmd *protocol.CanvasCommand) AnnounceTo {
	sender.Canvas = cmd.Canvas
	canvas := r.canvas(cmd.Canvas)
	canvas.deselectAllBy(sender.UUID)
	elements := canvas.snapshot()

	return RespondAndAnnounce(
		protocol.NewCanvasResponse(cmd.Canvas, elements),
		protocol.NewUserChange(sender.Info()),
	)
}

// handleElements applies the sender's upserts and deletions to their
// canvas. Edits that cannot land are answered with the server's copy
// so the sender reverts locally; they are never an error. The rest of
// the canvas only hears about elements that actually changed.
func (r *Room) handleElements(sender *RoomUser, cmd *protocol.ElementsCommand) AnnounceTo {
	canvas := r.canvas(sender.Canvas)
	canEdit := sender.AccessLevel.CanEdit()

	var (
		broadcastElements []types.Element
		broadcastDeleted  []uuid.UUID
		senderElements    []types.Element
		senderDeleted     []uuid.UUID
		changed           bool
	)

	for _, el := range cmd.Elements {
		known := canvas.element(el.UUID)
		switch {
		case known != nil && canEdit && (known.Unselected() || known.SelectedByUser(sender.UUID)):
			*known = el
			broadcastElements = append(broadcastElements, el)
			senderElements = append(senderElements, el)
			changed = true
		case known != nil:
			// Held by someone else, or the sender may not edit:
			// answer with the authoritative copy.
			senderElements = append(senderElements, *known)
		case canEdit:
			canvas.insert(el)
			broadcastElements = append(broadcastElements, el)
			senderElements = append(senderElements, el)
			changed = true
		default:
			// A viewer invented an element; tell them it is gone.
			senderDeleted = append(senderDeleted, el.UUID)
		}
	}

	for _, id := range cmd.DeletedElements {
		known := canvas.element(id)
		switch {
		case known == nil:
			// Already gone, nothing to apply or revert.
		case canEdit && (known.Unselected() || known.SelectedByUser(sender.UUID)):
			canvas.delete(id)
			broadcastDeleted = append(broadcastDeleted, id)
			senderDeleted = append(senderDeleted, id)
			changed = true
		default:
			senderElements = append(senderElements, *known)
		}
	}

	resp := protocol.NewElementsChanged(senderElements, senderDeleted)
	if !changed {
		return Respond(resp)
	}
	return RespondAndAnnounceToCanvas(resp,
		protocol.NewElementsChanged(broadcastElements, broadcastDeleted),
		sender.Canvas)
}
