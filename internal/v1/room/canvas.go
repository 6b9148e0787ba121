package room

import (
	"github.com/google/uuid"

	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/types"
)

// welcomeText seeds every fresh canvas so joiners never stare at an
// empty board.
const welcomeText = "Hello, world"

// Canvas is one drawing surface in a room. Elements keep their
// insertion order; clients layer by z_index, not by position in the
// list. Like everything under the registry, a canvas is only ever
// touched with the App lock held.
type Canvas struct {
	elements []types.Element
}

func newCanvas() *Canvas {
	return &Canvas{elements: []types.Element{types.NewTextElement(welcomeText)}}
}

// element returns a pointer into the canvas's backing slice, or nil.
// The pointer is invalidated by the next insert or delete.
func (c *Canvas) element(id uuid.UUID) *types.Element {
	for i := range c.elements {
		if c.elements[i].UUID == id {
			return &c.elements[i]
		}
	}
	return nil
}

func (c *Canvas) insert(el types.Element) {
	c.elements = append(c.elements, el)
}

func (c *Canvas) delete(id uuid.UUID) bool {
	for i := range c.elements {
		if c.elements[i].UUID == id {
			c.elements = append(c.elements[:i], c.elements[i+1:]...)
			return true
		}
	}
	return false
}

// deselectAllBy releases every element the user holds on this canvas
// and returns the released ids.
func (c *Canvas) deselectAllBy(user uuid.UUID) []uuid.UUID {
	var released []uuid.UUID
	for i := range c.elements {
		if c.elements[i].SelectedByUser(user) {
			c.elements[i].SelectedBy = nil
			released = append(released, c.elements[i].UUID)
		}
	}
	return released
}

// snapshot copies the element list for serialization. Serialization
// happens before the registry lock is released, so the shallow copy is
// never read concurrently with a mutation.
func (c *Canvas) snapshot() []types.Element {
	out := make([]types.Element, len(c.elements))
	copy(out, c.elements)
	return out
}
