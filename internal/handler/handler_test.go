package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/formforge/formforge/internal/field"
	"github.com/formforge/formforge/internal/store"
	"github.com/formforge/formforge/internal/types"
)

func newTestRouter(t *testing.T) (chi.Router, *store.SQLiteStore) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	st := store.NewSQLiteStore(db)
	require.NoError(t, st.Migrate(context.Background()))

	fh := NewFormHandler(st, "http://forms.test")
	sh := NewSubmitHandler(st)

	r := chi.NewRouter()
	r.Get("/v1/fields", Palette)
	r.Get("/v1/stats", fh.AggregateStats)
	r.Post("/v1/forms", fh.CreateForm)
	r.Get("/v1/forms", fh.ListForms)
	r.Get("/v1/forms/{id}", fh.GetForm)
	r.Put("/v1/forms/{id}/content", fh.UpdateContent)
	r.Post("/v1/forms/{id}/publish", fh.Publish)
	r.Get("/v1/forms/{id}/share-link", fh.ShareLink)
	r.Get("/v1/forms/{id}/stats", fh.Stats)
	r.Get("/v1/submit/{token}", sh.GetForm)
	r.Post("/v1/submit/{token}", sh.Submit)
	return r, st
}

func doJSON(t *testing.T, r http.Handler, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createForm(t *testing.T, r http.Handler, userID, name string) types.Form {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/v1/forms", userID, map[string]string{
		"name": name, "description": "test form",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var f types.Form
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &f))
	return f
}

func TestCreateFormRequiresAuth(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodPost, "/v1/forms", "", map[string]string{"name": "Survey"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHENTICATED")
}

func TestCreateFormValidatesName(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodPost, "/v1/forms", "alice", map[string]string{"name": "ab"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestCreateAndListForms(t *testing.T) {
	r, _ := newTestRouter(t)
	f := createForm(t, r, "alice", "Customer Survey")
	assert.NotEmpty(t, f.ID)
	assert.NotEmpty(t, f.ShareURL)
	assert.False(t, f.Published)

	w := doJSON(t, r, http.MethodGet, "/v1/forms", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var forms []types.Form
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &forms))
	require.Len(t, forms, 1)
	assert.Equal(t, f.ID, forms[0].ID)

	// Another owner sees nothing.
	w = doJSON(t, r, http.MethodGet, "/v1/forms", "bob", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]\n", w.Body.String())
}

func TestGetFormNotFoundForOtherOwner(t *testing.T) {
	r, _ := newTestRouter(t)
	f := createForm(t, r, "alice", "Customer Survey")

	w := doJSON(t, r, http.MethodGet, "/v1/forms/"+f.ID, "mallory", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateContentRejectsInvalidLayout(t *testing.T) {
	r, _ := newTestRouter(t)
	f := createForm(t, r, "alice", "Customer Survey")

	w := doJSON(t, r, http.MethodPut, "/v1/forms/"+f.ID+"/content", "alice", map[string]string{
		"content": `[{"id":"x","kind":"bogus","attributes":{}}]`,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestShareLink(t *testing.T) {
	r, _ := newTestRouter(t)
	f := createForm(t, r, "alice", "Customer Survey")

	w := doJSON(t, r, http.MethodGet, "/v1/forms/"+f.ID+"/share-link", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, f.ShareURL, resp["share_url"])
	assert.Equal(t, "http://forms.test/submit/"+f.ShareURL, resp["link"])
}

func TestPaletteListsAllKinds(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/v1/fields", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var entries []paletteEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, len(field.Descriptors()))
	assert.Equal(t, field.KindText, entries[0].Kind)
	assert.True(t, entries[0].ValueBearing)
}

// savedLayout builds and saves a layout with one required text field and
// one checkbox, returning the text field's id.
func savedLayout(t *testing.T, r http.Handler, formID string) (textID, checkboxID string) {
	t.Helper()
	text := field.New(field.KindText)
	text.Attributes["required"] = true
	checkbox := field.New(field.KindCheckbox)
	content, err := field.MarshalLayout([]*field.Instance{text, checkbox})
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodPut, "/v1/forms/"+formID+"/content", "alice", map[string]string{
		"content": content,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return text.ID, checkbox.ID
}

func TestSubmissionFlow(t *testing.T) {
	r, st := newTestRouter(t)
	f := createForm(t, r, "alice", "Customer Survey")
	textID, _ := savedLayout(t, r, f.ID)

	// Public fetch returns the layout and counts a visit.
	w := doJSON(t, r, http.MethodGet, "/v1/submit/"+f.ShareURL, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pub struct {
		Elements []*field.Instance `json:"elements"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pub))
	require.Len(t, pub.Elements, 2)

	// Valid values against an unpublished form are refused.
	w = doJSON(t, r, http.MethodPost, "/v1/submit/"+f.ShareURL, "", map[string]any{
		"values": map[string]string{textID: "Ada"},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_PUBLISHED")

	w = doJSON(t, r, http.MethodPost, "/v1/forms/"+f.ID+"/publish", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Missing required value fails per-field.
	w = doJSON(t, r, http.MethodPost, "/v1/submit/"+f.ShareURL, "", map[string]any{
		"values": map[string]string{},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), textID)

	// Valid submission is accepted.
	w = doJSON(t, r, http.MethodPost, "/v1/submit/"+f.ShareURL, "", map[string]any{
		"values": map[string]string{textID: "Ada"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	ctx := context.Background()
	got, subs, err := st.GetFormWithSubmissions(ctx, "alice", f.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Submissions)
	assert.Equal(t, int64(1), got.Visits)
	require.Len(t, subs, 1)
	assert.Contains(t, subs[0].Content, `"Ada"`)

	// Rejected attempts above must not have bumped the counter.
	w = doJSON(t, r, http.MethodGet, "/v1/forms/"+f.ID+"/stats", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats types.FormStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.Submissions)
	assert.Equal(t, float64(100), stats.SubmissionRate)
}

func TestSubmitSanitizesValues(t *testing.T) {
	r, st := newTestRouter(t)
	f := createForm(t, r, "alice", "Customer Survey")
	textID, _ := savedLayout(t, r, f.ID)
	doJSON(t, r, http.MethodPost, "/v1/forms/"+f.ID+"/publish", "alice", nil)

	w := doJSON(t, r, http.MethodPost, "/v1/submit/"+f.ShareURL, "", map[string]any{
		"values": map[string]string{textID: `<script>alert(1)</script>Ada`},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	_, subs, err := st.GetFormWithSubmissions(context.Background(), "alice", f.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.NotContains(t, subs[0].Content, "<script>")
	assert.Contains(t, subs[0].Content, "Ada")
}

func TestSubmitUnknownToken(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodPost, "/v1/submit/no-such-token", "", map[string]any{
		"values": map[string]string{},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAggregateStats(t *testing.T) {
	r, _ := newTestRouter(t)
	f := createForm(t, r, "alice", "Customer Survey")
	for i := 0; i < 2; i++ {
		doJSON(t, r, http.MethodGet, "/v1/submit/"+f.ShareURL, "", nil)
	}

	w := doJSON(t, r, http.MethodGet, "/v1/stats", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats types.FormStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(2), stats.Visits)
	assert.Equal(t, int64(0), stats.Submissions)
	assert.Equal(t, float64(100), stats.BounceRate)
}

func TestGetFormWithSubmissionsJoin(t *testing.T) {
	r, _ := newTestRouter(t)
	f := createForm(t, r, "alice", "Customer Survey")
	textID, _ := savedLayout(t, r, f.ID)
	doJSON(t, r, http.MethodPost, "/v1/forms/"+f.ID+"/publish", "alice", nil)
	doJSON(t, r, http.MethodPost, "/v1/submit/"+f.ShareURL, "", map[string]any{
		"values": map[string]string{textID: "Ada"},
	})

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/v1/forms/%s?submissions=true", f.ID), "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Form        types.Form         `json:"form"`
		Submissions []types.Submission `json:"submissions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, f.ID, resp.Form.ID)
	require.Len(t, resp.Submissions, 1)
	assert.True(t, strings.Contains(resp.Submissions[0].Content, "Ada"))
}
