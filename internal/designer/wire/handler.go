package wire

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"

	"github.com/formforge/formforge/internal/designer"
	"github.com/formforge/formforge/internal/field"
	"github.com/formforge/formforge/internal/store"
)

// Handler manages WebSocket connections for the designer.
type Handler struct {
	sessions *designer.Manager
	store    store.Store
}

// NewHandler creates a WebSocket designer handler.
func NewHandler(sessions *designer.Manager, st store.Store) *Handler {
	return &Handler{sessions: sessions, store: st}
}

// ServeHTTP loads the form under the caller's ownership, upgrades to
// WebSocket, and runs the message loop. The loop is the session's single
// mutation thread: messages apply in arrival order with no batching.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ownerID := r.Header.Get("X-User-ID")
	if ownerID == "" {
		http.Error(w, "no authenticated user", http.StatusUnauthorized)
		return
	}
	formID := chi.URLParam(r, "formID")

	form, err := h.store.GetForm(r.Context(), ownerID, formID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "form not found", http.StatusNotFound)
			return
		}
		log.Printf("designer: loading form %s: %v", formID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	elements, err := field.UnmarshalLayout(form.Content)
	if err != nil {
		log.Printf("designer: corrupt layout for form %s: %v", formID, err)
		http.Error(w, "corrupt form layout", http.StatusInternalServerError)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Printf("designer: websocket accept: %v", err)
		return
	}
	defer conn.CloseNow()

	sess := h.sessions.Create(formID, ownerID, designer.Load(elements))
	defer h.sessions.Remove(sess.ID)
	ctx := r.Context()

	h.send(ctx, conn, ServerMessage{
		Type: "session",
		Data: SessionData{SessionID: sess.ID, FormID: formID},
	})
	h.sendDocument(ctx, conn, "", sess.Doc)

	for {
		var msg ClientMessage
		err := wsjson.Read(ctx, conn, &msg)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Printf("designer: connection closed: %v", websocket.CloseStatus(err))
			}
			return
		}
		sess.Touch()

		switch msg.Type {
		case "drag":
			h.handleDrag(sess, msg)
		case "drop":
			h.handleDrop(ctx, conn, sess, msg)
		case "update":
			h.handleUpdate(ctx, conn, sess, msg)
		case "remove":
			h.handleRemove(ctx, conn, sess, msg)
		case "select":
			h.handleSelect(ctx, conn, sess, msg)
		case "save":
			h.handleSave(ctx, conn, sess, msg)
		case "ping":
			h.send(ctx, conn, ServerMessage{Type: "pong", RequestID: msg.ID})
		default:
			h.sendError(ctx, conn, msg.ID, "unknown_type", fmt.Sprintf("unknown message type: %s", msg.Type))
		}
	}
}

func (h *Handler) handleDrag(sess *designer.Session, msg ClientMessage) {
	var data DragData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		return
	}
	sess.Dragging = data.Dragging
}

func (h *Handler) handleDrop(ctx context.Context, conn *websocket.Conn, sess *designer.Session, msg ClientMessage) {
	sess.Dragging = false

	var data DropData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		h.sendError(ctx, conn, msg.ID, "invalid_data", "invalid drop data")
		return
	}

	effect, err := designer.Resolve(sess.Doc, data.Source, data.Target)
	if err != nil {
		// The UI referenced an element the document no longer has. Drop
		// the gesture; never guess at an order.
		log.Printf("designer: drop aborted: %v", err)
		h.sendError(ctx, conn, msg.ID, "invariant_violation", err.Error())
		return
	}
	if effect.Op != designer.OpNone {
		log.Printf("designer: %s element %s (form %s)", effect.Op, effect.ElementID, sess.FormID)
	}
	h.sendDocument(ctx, conn, msg.ID, sess.Doc)
}

func (h *Handler) handleUpdate(ctx context.Context, conn *websocket.Conn, sess *designer.Session, msg ClientMessage) {
	var data UpdateData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		h.sendError(ctx, conn, msg.ID, "invalid_data", "invalid update data")
		return
	}

	current := sess.Doc.Element(data.ElementID)
	if current == nil {
		// Stale edit for a removed element; nothing to write.
		h.sendDocument(ctx, conn, msg.ID, sess.Doc)
		return
	}
	if err := field.ValidateAttributes(current.Kind, data.Attributes); err != nil {
		h.sendError(ctx, conn, msg.ID, "validation_error", err.Error())
		return
	}
	sess.Doc.UpdateElement(data.ElementID, &field.Instance{
		ID:         current.ID,
		Kind:       current.Kind,
		Attributes: data.Attributes,
	})
	h.sendDocument(ctx, conn, msg.ID, sess.Doc)
}

func (h *Handler) handleRemove(ctx context.Context, conn *websocket.Conn, sess *designer.Session, msg ClientMessage) {
	var data RemoveData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		h.sendError(ctx, conn, msg.ID, "invalid_data", "invalid remove data")
		return
	}
	sess.Doc.RemoveElement(data.ElementID)
	h.sendDocument(ctx, conn, msg.ID, sess.Doc)
}

func (h *Handler) handleSelect(ctx context.Context, conn *websocket.Conn, sess *designer.Session, msg ClientMessage) {
	var data SelectData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		h.sendError(ctx, conn, msg.ID, "invalid_data", "invalid select data")
		return
	}
	if err := sess.Doc.SetSelected(data.ElementID); err != nil {
		h.sendError(ctx, conn, msg.ID, "not_found", err.Error())
		return
	}
	h.sendDocument(ctx, conn, msg.ID, sess.Doc)
}

// handleSave persists the current layout. The message loop is
// synchronous per connection, so a save in flight blocks further
// designer events from this session: that is the re-entrancy guard
// against duplicate saves. A failed save leaves the document dirty.
func (h *Handler) handleSave(ctx context.Context, conn *websocket.Conn, sess *designer.Session, msg ClientMessage) {
	content, err := field.MarshalLayout(sess.Doc.Elements())
	if err != nil {
		h.sendError(ctx, conn, msg.ID, "internal_error", err.Error())
		return
	}
	if err := h.store.UpdateFormContent(ctx, sess.OwnerID, sess.FormID, content); err != nil {
		log.Printf("designer: saving form %s: %v", sess.FormID, err)
		h.sendError(ctx, conn, msg.ID, "save_failed", "form could not be saved")
		return
	}
	sess.Doc.MarkSaved()
	h.send(ctx, conn, ServerMessage{Type: "saved", RequestID: msg.ID})
}

func (h *Handler) sendDocument(ctx context.Context, conn *websocket.Conn, requestID string, doc *designer.Document) {
	h.send(ctx, conn, ServerMessage{
		Type:      "document",
		RequestID: requestID,
		Data: DocumentData{
			Elements:   doc.Elements(),
			SelectedID: doc.SelectedID(),
			Dirty:      doc.Dirty(),
		},
	})
}

func (h *Handler) send(ctx context.Context, conn *websocket.Conn, msg ServerMessage) {
	if err := wsjson.Write(ctx, conn, msg); err != nil {
		log.Printf("designer: write: %v", err)
	}
}

func (h *Handler) sendError(ctx context.Context, conn *websocket.Conn, requestID, code, message string) {
	h.send(ctx, conn, ServerMessage{
		Type:      "error",
		RequestID: requestID,
		Data:      ErrorData{Code: code, Message: message},
	})
}
