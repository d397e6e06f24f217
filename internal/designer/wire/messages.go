// Package wire defines the WebSocket protocol for the form designer.
//
// The server holds the authoritative document for each editing session;
// the client sends discrete gesture and edit events and receives the
// full ordered layout after every mutation.
package wire

import (
	"encoding/json"

	"github.com/formforge/formforge/internal/designer"
	"github.com/formforge/formforge/internal/field"
)

// ── Client → Server messages ────────────────────────────────────────────────

// ClientMessage is the envelope for all client-to-server WebSocket messages.
type ClientMessage struct {
	Type string          `json:"type"` // "drag", "drop", "update", "remove", "select", "save", "ping"
	ID   string          `json:"id"`   // Client-assigned request ID
	Data json.RawMessage `json:"data,omitempty"`
}

// DragData is the payload for "drag" messages, sent at gesture start and
// cancel. While dragging the server suppresses other interactions.
type DragData struct {
	Dragging bool `json:"dragging"`
}

// DropData is the payload for "drop" messages: a completed drag gesture.
type DropData struct {
	Source designer.DragSource `json:"source"`
	Target designer.DropTarget `json:"target"`
}

// UpdateData is the payload for "update" messages: a property-edit
// commit for one element.
type UpdateData struct {
	ElementID  string         `json:"element_id"`
	Attributes map[string]any `json:"attributes"`
}

// RemoveData is the payload for "remove" messages.
type RemoveData struct {
	ElementID string `json:"element_id"`
}

// SelectData is the payload for "select" messages. An empty element id
// clears the selection.
type SelectData struct {
	ElementID string `json:"element_id"`
}

// ── Server → Client messages ────────────────────────────────────────────────

// ServerMessage is the envelope for all server-to-client WebSocket messages.
type ServerMessage struct {
	Type      string `json:"type"`                 // "session", "document", "saved", "error", "pong"
	RequestID string `json:"request_id,omitempty"` // Echoes client ID
	Data      any    `json:"data,omitempty"`
}

// SessionData is sent once after the connection opens.
type SessionData struct {
	SessionID string `json:"session_id"`
	FormID    string `json:"form_id"`
}

// DocumentData carries the full document state after a mutation.
type DocumentData struct {
	Elements   []*field.Instance `json:"elements"`
	SelectedID string            `json:"selected_id,omitempty"`
	Dirty      bool              `json:"dirty"`
}

// ErrorData carries an error message.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
