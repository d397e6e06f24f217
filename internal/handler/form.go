package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/formforge/formforge/internal/field"
	"github.com/formforge/formforge/internal/store"
	"github.com/formforge/formforge/internal/types"
)

// FormHandler implements the owner-scoped HTTP handlers for forms.
type FormHandler struct {
	store  store.Store
	origin string // public origin used to build share links
}

// NewFormHandler creates a new FormHandler.
func NewFormHandler(st store.Store, origin string) *FormHandler {
	return &FormHandler{store: st, origin: origin}
}

type createFormRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *FormHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req createFormRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	if len(req.Name) < 4 {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "name must be at least 4 characters")
		return
	}

	form, err := h.store.CreateForm(r.Context(), ownerID, req.Name, req.Description)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, form)
}

func (h *FormHandler) ListForms(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUser(w, r)
	if !ok {
		return
	}
	forms, err := h.store.ListForms(r.Context(), ownerID)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	if forms == nil {
		forms = []*types.Form{}
	}
	writeJSON(w, http.StatusOK, forms)
}

func (h *FormHandler) GetForm(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	if r.URL.Query().Get("submissions") == "true" {
		form, subs, err := h.store.GetFormWithSubmissions(r.Context(), ownerID, id)
		if err != nil {
			storeErrorToHTTP(w, err)
			return
		}
		if subs == nil {
			subs = []*types.Submission{}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"form":        form,
			"submissions": subs,
		})
		return
	}

	form, err := h.store.GetForm(r.Context(), ownerID, id)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

type updateContentRequest struct {
	Content string `json:"content"`
}

// UpdateContent saves a serialized layout. The content must parse as a
// valid layout; a corrupt save would poison every later designer
// session and public render.
func (h *FormHandler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	var req updateContentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	elements, err := field.UnmarshalLayout(req.Content)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	content, err := field.MarshalLayout(elements)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}

	if err := h.store.UpdateFormContent(r.Context(), ownerID, id, content); err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (h *FormHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	if err := h.store.PublishForm(r.Context(), ownerID, id); err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "published"})
}

// ShareLink returns the form's public submission link. The share token
// is assigned at creation and immutable, so the link never changes.
func (h *FormHandler) ShareLink(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	form, err := h.store.GetForm(r.Context(), ownerID, id)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"share_url": form.ShareURL,
		"link":      h.origin + "/submit/" + form.ShareURL,
	})
}

// Stats returns visit/submission metrics for one form.
func (h *FormHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	form, err := h.store.GetForm(r.Context(), ownerID, id)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	st := &types.FormStats{Visits: form.Visits, Submissions: form.Submissions}
	st.SubmissionRate, st.BounceRate = types.Rate(st.Visits, st.Submissions)
	writeJSON(w, http.StatusOK, st)
}

// AggregateStats returns metrics summed across all of the owner's forms.
func (h *FormHandler) AggregateStats(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUser(w, r)
	if !ok {
		return
	}
	st, err := h.store.FormStats(r.Context(), ownerID)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
