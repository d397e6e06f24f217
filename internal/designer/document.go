// Package designer holds the in-memory state of one form editing
// session: an ordered document of field instances, the drag-and-drop
// reducer that mutates it, and the session manager that scopes one
// document to one websocket connection.
package designer

import (
	"errors"
	"fmt"

	"github.com/formforge/formforge/internal/field"
)

// ErrElementNotFound reports a mutation that referenced an element id
// not present in the document. On drag paths this is an internal
// invariant violation: the gesture is dropped rather than corrupting
// order.
var ErrElementNotFound = errors.New("designer: element not found")

// OverLast is the moveElement target that appends to the end of the
// document regardless of the element's prior position.
const OverLast = "last"

// Document is the designer's authoritative state for one editing
// session: an ordered sequence of field instances plus the current
// selection and a dirty flag. It is confined to a single session and
// mutated only from that session's event loop; there is no internal
// locking.
//
// Invariants: element ids are unique, and the selected id, when set,
// always references a present element.
type Document struct {
	elements   []*field.Instance
	selectedID string
	dirty      bool
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{elements: []*field.Instance{}}
}

// Load replaces the document's elements with a saved layout and resets
// selection and dirty state. Used when a session opens on an existing
// form.
func Load(elements []*field.Instance) *Document {
	d := NewDocument()
	d.elements = append(d.elements, elements...)
	return d
}

// AddElement inserts inst at index, clamped to [0, len]. The element's
// id must not collide with an existing one.
func (d *Document) AddElement(index int, inst *field.Instance) error {
	if d.indexOf(inst.ID) != -1 {
		return fmt.Errorf("designer: duplicate element id %q", inst.ID)
	}
	if index < 0 {
		index = 0
	}
	if index > len(d.elements) {
		index = len(d.elements)
	}
	next := make([]*field.Instance, 0, len(d.elements)+1)
	next = append(next, d.elements[:index]...)
	next = append(next, inst)
	next = append(next, d.elements[index:]...)
	d.elements = next
	d.dirty = true
	return nil
}

// RemoveElement removes the element with the given id. Removing the
// selected element clears the selection. Unknown ids are a no-op.
func (d *Document) RemoveElement(id string) {
	i := d.indexOf(id)
	if i == -1 {
		return
	}
	next := make([]*field.Instance, 0, len(d.elements)-1)
	next = append(next, d.elements[:i]...)
	next = append(next, d.elements[i+1:]...)
	d.elements = next
	if d.selectedID == id {
		d.selectedID = ""
	}
	d.dirty = true
}

// UpdateElement replaces the element with matching id, preserving its
// position. An unknown id is a no-op: a stale property edit for a
// removed element must not write anywhere.
func (d *Document) UpdateElement(id string, inst *field.Instance) {
	i := d.indexOf(id)
	if i == -1 {
		return
	}
	next := make([]*field.Instance, len(d.elements))
	copy(next, d.elements)
	next[i] = inst
	d.elements = next
	d.dirty = true
}

// MoveElement removes the element with activeID and reinserts it
// relative to overID: immediately before when sideOffset is 0,
// immediately after when 1. When overID is OverLast or does not resolve,
// the element is appended to the end. A missing activeID is an error.
func (d *Document) MoveElement(activeID, overID string, sideOffset int) error {
	i := d.indexOf(activeID)
	if i == -1 {
		return fmt.Errorf("%w: %q", ErrElementNotFound, activeID)
	}
	active := d.elements[i]
	rest := make([]*field.Instance, 0, len(d.elements)-1)
	rest = append(rest, d.elements[:i]...)
	rest = append(rest, d.elements[i+1:]...)

	at := len(rest)
	if overID != OverLast {
		for j, el := range rest {
			if el.ID == overID {
				at = j + sideOffset
				break
			}
		}
	}
	next := make([]*field.Instance, 0, len(rest)+1)
	next = append(next, rest[:at]...)
	next = append(next, active)
	next = append(next, rest[at:]...)
	d.elements = next
	d.dirty = true
	return nil
}

// SetSelected sets the current selection; the empty string clears it.
// Selecting an absent element is an error rather than a dangling
// reference.
func (d *Document) SetSelected(id string) error {
	if id != "" && d.indexOf(id) == -1 {
		return fmt.Errorf("%w: %q", ErrElementNotFound, id)
	}
	d.selectedID = id
	return nil
}

// SelectedID returns the selected element id, or "" when nothing is
// selected.
func (d *Document) SelectedID() string { return d.selectedID }

// Elements returns a copy of the ordered element sequence. Holders never
// observe later mutations through the returned slice.
func (d *Document) Elements() []*field.Instance {
	out := make([]*field.Instance, len(d.elements))
	copy(out, d.elements)
	return out
}

// Len returns the number of elements.
func (d *Document) Len() int { return len(d.elements) }

// Element returns the element with the given id, or nil.
func (d *Document) Element(id string) *field.Instance {
	if i := d.indexOf(id); i != -1 {
		return d.elements[i]
	}
	return nil
}

// Dirty reports whether elements changed since the last successful save.
func (d *Document) Dirty() bool { return d.dirty }

// MarkSaved clears the dirty flag after a successful save. A failed save
// leaves the flag set; the in-memory document is never rolled back.
func (d *Document) MarkSaved() { d.dirty = false }

func (d *Document) indexOf(id string) int {
	for i, el := range d.elements {
		if el.ID == id {
			return i
		}
	}
	return -1
}
