package designer

import (
	"fmt"

	"github.com/formforge/formforge/internal/field"
)

// DragSource describes what a drag gesture picked up: either a palette
// button carrying a field kind, or an already-placed element. Exactly
// one of the two fields is set.
type DragSource struct {
	PaletteKind field.Kind `json:"palette_kind,omitempty"`
	ElementID   string     `json:"element_id,omitempty"`
}

func (s DragSource) isPaletteButton() bool { return s.PaletteKind != "" }
func (s DragSource) isPlacedElement() bool { return s.ElementID != "" }

// DropZone tags where a gesture ended.
type DropZone string

const (
	// ZoneCanvas is the whole design surface.
	ZoneCanvas DropZone = "canvas"
	// ZoneElementTop is the upper half of a placed element's drop hitbox:
	// insert before.
	ZoneElementTop DropZone = "element-top"
	// ZoneElementBottom is the lower half: insert after.
	ZoneElementBottom DropZone = "element-bottom"
	// ZoneNone means the drop landed outside any recognized zone.
	ZoneNone DropZone = "none"
)

// DropTarget describes what a gesture was dropped on. ElementID is set
// only for the element-half zones.
type DropTarget struct {
	Zone      DropZone `json:"zone"`
	ElementID string   `json:"element_id,omitempty"`
}

// Op classifies the mutation a resolved drop applied.
type Op string

const (
	OpNone Op = "none"
	OpAdd  Op = "add"
	OpMove Op = "move"
)

// Effect reports what a resolved drop did to the document.
type Effect struct {
	Op        Op
	ElementID string // id of the added or moved element
}

// Resolve interprets a completed drag gesture against the document and
// applies the resulting mutation. Scenarios are evaluated in priority
// order, first match wins:
//
//  1. palette button on the canvas: construct and append
//  2. palette button on an element half: construct and insert before/after
//  3. placed element on another element's half: move before/after
//  4. placed element dropped anywhere else: move to the end
//
// Anything else is a no-op. An element id that no longer resolves means
// the UI and the document disagree; the gesture is aborted with
// ErrElementNotFound instead of guessing at an order.
func Resolve(doc *Document, src DragSource, tgt DropTarget) (Effect, error) {
	onElementHalf := tgt.Zone == ZoneElementTop || tgt.Zone == ZoneElementBottom
	sideOffset := 0
	if tgt.Zone == ZoneElementBottom {
		sideOffset = 1
	}

	switch {
	case src.isPaletteButton() && tgt.Zone == ZoneCanvas:
		inst := field.New(src.PaletteKind)
		if err := doc.AddElement(doc.Len(), inst); err != nil {
			return Effect{Op: OpNone}, err
		}
		return Effect{Op: OpAdd, ElementID: inst.ID}, nil

	case src.isPaletteButton() && onElementHalf:
		i := doc.indexOf(tgt.ElementID)
		if i == -1 {
			return Effect{Op: OpNone}, fmt.Errorf("%w: drop target %q", ErrElementNotFound, tgt.ElementID)
		}
		inst := field.New(src.PaletteKind)
		if err := doc.AddElement(i+sideOffset, inst); err != nil {
			return Effect{Op: OpNone}, err
		}
		return Effect{Op: OpAdd, ElementID: inst.ID}, nil

	case src.isPlacedElement() && onElementHalf:
		if src.ElementID == tgt.ElementID {
			return Effect{Op: OpNone}, nil
		}
		if doc.indexOf(tgt.ElementID) == -1 {
			return Effect{Op: OpNone}, fmt.Errorf("%w: drop target %q", ErrElementNotFound, tgt.ElementID)
		}
		if err := doc.MoveElement(src.ElementID, tgt.ElementID, sideOffset); err != nil {
			return Effect{Op: OpNone}, err
		}
		return Effect{Op: OpMove, ElementID: src.ElementID}, nil

	case src.isPlacedElement():
		// Dropped on the canvas or outside any zone: send to the end.
		if err := doc.MoveElement(src.ElementID, OverLast, 0); err != nil {
			return Effect{Op: OpNone}, err
		}
		return Effect{Op: OpMove, ElementID: src.ElementID}, nil
	}

	return Effect{Op: OpNone}, nil
}
