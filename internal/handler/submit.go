package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"

	"github.com/formforge/formforge/internal/field"
	"github.com/formforge/formforge/internal/store"
)

// SubmitHandler serves the public submission surface: fetching a form's
// layout by share token and accepting submissions against it.
type SubmitHandler struct {
	store     store.Store
	sanitizer *bluemonday.Policy
}

// NewSubmitHandler creates a new SubmitHandler.
func NewSubmitHandler(st store.Store) *SubmitHandler {
	return &SubmitHandler{
		store: st,
		// Submitted values are stored and later rendered back to owners;
		// strip all markup before persistence.
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// GetForm returns the form layout for a share token. Fetching counts as
// a visit; the counter increments atomically with the read.
func (h *SubmitHandler) GetForm(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	content, err := h.store.GetFormContentByShareToken(r.Context(), token)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	elements, err := field.UnmarshalLayout(content)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"elements": elements})
}

type submitRequest struct {
	Values map[string]string `json:"values"`
}

// Submit validates the submitted values against the saved layout and,
// when every field passes, persists the submission and bumps the counter
// in one transaction.
func (h *SubmitHandler) Submit(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	if req.Values == nil {
		req.Values = map[string]string{}
	}

	form, err := h.store.GetFormByShareToken(r.Context(), token)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	elements, err := field.UnmarshalLayout(form.Content)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}

	if invalid := field.ValidateSubmission(elements, req.Values); len(invalid) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"code":           "VALIDATION_ERROR",
			"error":          "one or more fields are invalid",
			"invalid_fields": invalid,
		})
		return
	}

	sanitized := make(map[string]string, len(req.Values))
	for id, v := range req.Values {
		sanitized[id] = h.sanitizer.Sanitize(v)
	}
	content, err := json.Marshal(sanitized)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}

	if err := h.store.SubmitForm(r.Context(), token, string(content)); err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "submitted"})
}
