// Package protocol defines the websocket wire format of the planner:
// inbound commands, outbound events, and the error shapes used when a
// join handshake or a command is refused.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/types"
)

// CommandType tags an inbound command envelope.
type CommandType string

const (
	CommandAccessLevelAdjustment CommandType = "access_level_adjustment"
	CommandSelection             CommandType = "selection"
	CommandCanvas                CommandType = "canvas"
	CommandElements              CommandType = "elements"
)

// AccessLevelAdjustmentCommand asks to change another user's access
// level. Admin only.
type AccessLevelAdjustmentCommand struct {
	User        uuid.UUID         `json:"user"`
	AccessLevel types.AccessLevel `json:"access_level"`
}

// SelectionCommand declares the complete set of elements the sender
// wants selected on their current canvas.
type SelectionCommand struct {
	Elements []uuid.UUID `json:"elements"`
}

// CanvasCommand moves the sender to another canvas.
type CanvasCommand struct {
	Canvas types.CanvasID `json:"canvas"`
}

// ElementsCommand upserts and deletes elements on the sender's canvas.
type ElementsCommand struct {
	Elements        []types.Element `json:"elements"`
	DeletedElements []uuid.UUID     `json:"deleted_elements"`
}

// Command is a decoded inbound envelope. Exactly one payload field is
// set, matching Type. The optional id is echoed on direct replies.
type Command struct {
	ID   *uuid.UUID  `json:"id,omitempty"`
	Type CommandType `json:"type"`

	AccessLevelAdjustment *AccessLevelAdjustmentCommand `json:"-"`
	Selection             *SelectionCommand             `json:"-"`
	Canvas                *CanvasCommand                `json:"-"`
	Elements              *ElementsCommand              `json:"-"`
}

// ParseCommand decodes one inbound text frame. The envelope is flat:
// id and type sit alongside the payload fields. Anything that does not
// decode into a known, fully formed command is an error; the caller
// logs and drops such frames.
func ParseCommand(data []byte) (*Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return nil, fmt.Errorf("command envelope: %w", err)
	}

	switch cmd.Type {
	case CommandAccessLevelAdjustment:
		var p AccessLevelAdjustmentCommand
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("access_level_adjustment: %w", err)
		}
		if p.User == uuid.Nil {
			return nil, fmt.Errorf("access_level_adjustment: missing user")
		}
		if !p.AccessLevel.Valid() {
			return nil, fmt.Errorf("access_level_adjustment: invalid access level %q", p.AccessLevel)
		}
		cmd.AccessLevelAdjustment = &p

	case CommandSelection:
		var p SelectionCommand
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("selection: %w", err)
		}
		if p.Elements == nil {
			return nil, fmt.Errorf("selection: missing elements")
		}
		cmd.Selection = &p

	case CommandCanvas:
		var p struct {
			Canvas *types.CanvasID `json:"canvas"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("canvas: %w", err)
		}
		if p.Canvas == nil {
			return nil, fmt.Errorf("canvas: missing canvas id")
		}
		cmd.Canvas = &CanvasCommand{Canvas: *p.Canvas}

	case CommandElements:
		var p ElementsCommand
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("elements: %w", err)
		}
		if p.Elements == nil {
			return nil, fmt.Errorf("elements: missing elements")
		}
		if p.DeletedElements == nil {
			return nil, fmt.Errorf("elements: missing deleted_elements")
		}
		for i := range p.Elements {
			if err := p.Elements[i].Validate(); err != nil {
				return nil, fmt.Errorf("elements: %w", err)
			}
		}
		cmd.Elements = &p

	default:
		return nil, fmt.Errorf("unknown command type %q", cmd.Type)
	}

	return &cmd, nil
}
