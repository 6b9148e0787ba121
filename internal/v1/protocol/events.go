package protocol

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/types"
)

// EventType tags an outbound event envelope.
type EventType string

const (
	EventJoin              EventType = "join"
	EventOnJoin            EventType = "on_join"
	EventDisconnect        EventType = "disconnect"
	EventUserChange        EventType = "user_change"
	EventSelection         EventType = "selection"
	EventSelectionResponse EventType = "selection_response"
	EventCanvasResponse    EventType = "canvas_response"
	EventElementsChanged   EventType = "elements_changed"
)

// Head is the envelope every outbound event embeds. Like the inbound
// envelope it is flat: id and type sit alongside the payload fields.
// The id echoes the command a direct reply answers and is omitted on
// plain broadcasts.
type Head struct {
	ID   *uuid.UUID `json:"id,omitempty"`
	Type EventType  `json:"type"`
}

func (h *Head) head() *Head { return h }

// Event is any outbound payload carrying the shared envelope Head.
type Event interface {
	head() *Head
}

// Encode stamps the id onto the event and serializes it. Fan-out
// serializes each distinct (event, id) pair once and reuses the bytes
// for every recipient.
func Encode(e Event, id *uuid.UUID) ([]byte, error) {
	e.head().ID = id
	return json.Marshal(e)
}

// Join announces a new member to the users already in the room.
type Join struct {
	Head
	User types.User `json:"user"`
}

// NewJoin builds a join broadcast.
func NewJoin(user types.User) *Join {
	return &Join{Head: Head{Type: EventJoin}, User: user}
}

// OnJoin is the admission reply sent to the joining user: their own
// record, the full member list, and their canvas's contents.
type OnJoin struct {
	Head
	User     types.User      `json:"user"`
	Users    []types.User    `json:"users"`
	Elements []types.Element `json:"elements"`
}

// NewOnJoin builds an admission reply.
func NewOnJoin(user types.User, users []types.User, elements []types.Element) *OnJoin {
	if users == nil {
		users = []types.User{}
	}
	if elements == nil {
		elements = []types.Element{}
	}
	return &OnJoin{Head: Head{Type: EventOnJoin}, User: user, Users: users, Elements: elements}
}

// Disconnect tells the room a member left.
type Disconnect struct {
	Head
	User uuid.UUID `json:"user"`
}

// NewDisconnect builds a disconnect broadcast.
func NewDisconnect(user uuid.UUID) *Disconnect {
	return &Disconnect{Head: Head{Type: EventDisconnect}, User: user}
}

// UserChange carries a member's full record after any of their
// properties changed.
type UserChange struct {
	Head
	User types.User `json:"user"`
}

// NewUserChange builds a user change broadcast.
func NewUserChange(user types.User) *UserChange {
	return &UserChange{Head: Head{Type: EventUserChange}, User: user}
}

// Selection tells the rest of a canvas which elements a user grabbed
// and released.
type Selection struct {
	Head
	UserUUID        uuid.UUID   `json:"user_uuid"`
	NewlySelected   []uuid.UUID `json:"newly_selected"`
	NewlyDeselected []uuid.UUID `json:"newly_deselected"`
}

// NewSelection builds a selection broadcast.
func NewSelection(user uuid.UUID, selected, deselected []uuid.UUID) *Selection {
	if selected == nil {
		selected = []uuid.UUID{}
	}
	if deselected == nil {
		deselected = []uuid.UUID{}
	}
	return &Selection{Head: Head{Type: EventSelection}, UserUUID: user, NewlySelected: selected, NewlyDeselected: deselected}
}

// SelectionResponse answers the selecting user, additionally naming
// the elements another user already holds.
type SelectionResponse struct {
	Head
	UserUUID        uuid.UUID   `json:"user_uuid"`
	NewlySelected   []uuid.UUID `json:"newly_selected"`
	NewlyDeselected []uuid.UUID `json:"newly_deselected"`
	FailedToSelect  []uuid.UUID `json:"failed_to_select"`
}

// NewSelectionResponse builds a selection reply.
func NewSelectionResponse(user uuid.UUID, selected, deselected, failed []uuid.UUID) *SelectionResponse {
	if selected == nil {
		selected = []uuid.UUID{}
	}
	if deselected == nil {
		deselected = []uuid.UUID{}
	}
	if failed == nil {
		failed = []uuid.UUID{}
	}
	return &SelectionResponse{Head: Head{Type: EventSelectionResponse}, UserUUID: user, NewlySelected: selected, NewlyDeselected: deselected, FailedToSelect: failed}
}

// CanvasResponse confirms a canvas switch with that canvas's contents.
type CanvasResponse struct {
	Head
	Canvas   types.CanvasID  `json:"canvas"`
	Elements []types.Element `json:"elements"`
}

// NewCanvasResponse builds a canvas switch reply.
func NewCanvasResponse(canvas types.CanvasID, elements []types.Element) *CanvasResponse {
	if elements == nil {
		elements = []types.Element{}
	}
	return &CanvasResponse{Head: Head{Type: EventCanvasResponse}, Canvas: canvas, Elements: elements}
}

// ElementsChanged carries applied element upserts and deletions. As a
// direct reply the lists hold the sender's authoritative state,
// reverts included; as a canvas broadcast they hold only what changed.
type ElementsChanged struct {
	Head
	Elements        []types.Element `json:"elements"`
	DeletedElements []uuid.UUID     `json:"deleted_elements"`
}

// NewElementsChanged builds an element change event.
func NewElementsChanged(elements []types.Element, deleted []uuid.UUID) *ElementsChanged {
	if elements == nil {
		elements = []types.Element{}
	}
	if deleted == nil {
		deleted = []uuid.UUID{}
	}
	return &ElementsChanged{Head: Head{Type: EventElementsChanged}, Elements: elements, DeletedElements: deleted}
}
