package designer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formforge/formforge/internal/field"
)

func ids(doc *Document) []string {
	els := doc.Elements()
	out := make([]string, len(els))
	for i, el := range els {
		out[i] = el.ID
	}
	return out
}

func placed(t *testing.T, doc *Document, kinds ...field.Kind) []*field.Instance {
	t.Helper()
	out := make([]*field.Instance, len(kinds))
	for i, k := range kinds {
		inst := field.New(k)
		require.NoError(t, doc.AddElement(doc.Len(), inst))
		out[i] = inst
	}
	return out
}

func TestAddElementClampsIndex(t *testing.T) {
	doc := NewDocument()
	a := field.New(field.KindText)
	b := field.New(field.KindText)
	c := field.New(field.KindText)

	require.NoError(t, doc.AddElement(-5, a))
	require.NoError(t, doc.AddElement(99, b))
	require.NoError(t, doc.AddElement(1, c))

	assert.Equal(t, []string{a.ID, c.ID, b.ID}, ids(doc))
	assert.True(t, doc.Dirty())
}

func TestAddElementRejectsDuplicateID(t *testing.T) {
	doc := NewDocument()
	inst := field.New(field.KindText)
	require.NoError(t, doc.AddElement(0, inst))
	assert.Error(t, doc.AddElement(0, inst))
	assert.Equal(t, 1, doc.Len())
}

func TestRemoveElement(t *testing.T) {
	doc := NewDocument()
	els := placed(t, doc, field.KindText, field.KindCheckbox, field.KindDate)

	doc.RemoveElement(els[1].ID)
	assert.Equal(t, []string{els[0].ID, els[2].ID}, ids(doc))

	// Unknown id is a no-op.
	doc.RemoveElement("nope")
	assert.Equal(t, []string{els[0].ID, els[2].ID}, ids(doc))
}

func TestRemoveElementClearsSelection(t *testing.T) {
	doc := NewDocument()
	els := placed(t, doc, field.KindText, field.KindCheckbox)

	require.NoError(t, doc.SetSelected(els[1].ID))
	doc.RemoveElement(els[1].ID)
	assert.Empty(t, doc.SelectedID())

	require.NoError(t, doc.SetSelected(els[0].ID))
	doc.RemoveElement("unrelated")
	assert.Equal(t, els[0].ID, doc.SelectedID(), "removing another element keeps the selection")
}

func TestUpdateElementPreservesPosition(t *testing.T) {
	doc := NewDocument()
	els := placed(t, doc, field.KindText, field.KindText, field.KindText)

	edited := els[1].Clone()
	edited.Attributes["label"] = "Edited"
	doc.UpdateElement(els[1].ID, edited)

	assert.Equal(t, []string{els[0].ID, els[1].ID, els[2].ID}, ids(doc))
	assert.Equal(t, "Edited", doc.Element(els[1].ID).StringAttr("label"))
}

func TestUpdateElementNotFoundIsNoOp(t *testing.T) {
	doc := NewDocument()
	els := placed(t, doc, field.KindText)
	doc.MarkSaved()

	doc.UpdateElement("ghost", field.New(field.KindText))
	assert.Equal(t, []string{els[0].ID}, ids(doc))
	assert.False(t, doc.Dirty(), "a no-op update must not dirty the document")
}

func TestMoveElementBeforeAndAfter(t *testing.T) {
	doc := NewDocument()
	els := placed(t, doc, field.KindText, field.KindCheckbox, field.KindDate)
	a, b, c := els[0].ID, els[1].ID, els[2].ID

	// Offset 0 places active immediately before over.
	require.NoError(t, doc.MoveElement(c, a, 0))
	assert.Equal(t, []string{c, a, b}, ids(doc))

	// Offset 1 places active immediately after over.
	require.NoError(t, doc.MoveElement(c, b, 1))
	assert.Equal(t, []string{a, b, c}, ids(doc))
}

func TestMoveElementToLast(t *testing.T) {
	doc := NewDocument()
	els := placed(t, doc, field.KindText, field.KindCheckbox, field.KindDate)
	a, b, c := els[0].ID, els[1].ID, els[2].ID

	require.NoError(t, doc.MoveElement(a, OverLast, 0))
	assert.Equal(t, []string{b, c, a}, ids(doc))

	// Already last: still last, still safe.
	require.NoError(t, doc.MoveElement(a, OverLast, 0))
	assert.Equal(t, []string{b, c, a}, ids(doc))

	// Unresolvable over id falls back to append.
	require.NoError(t, doc.MoveElement(b, "ghost", 0))
	assert.Equal(t, []string{c, a, b}, ids(doc))
}

func TestMoveElementMissingActiveFails(t *testing.T) {
	doc := NewDocument()
	placed(t, doc, field.KindText)
	err := doc.MoveElement("ghost", OverLast, 0)
	assert.ErrorIs(t, err, ErrElementNotFound)
}

func TestMutationSequencePreservesIDSet(t *testing.T) {
	doc := NewDocument()
	els := placed(t, doc, field.KindText, field.KindCheckbox, field.KindDate, field.KindSelect)
	a, b, c, d := els[0].ID, els[1].ID, els[2].ID, els[3].ID

	require.NoError(t, doc.MoveElement(a, c, 1))
	require.NoError(t, doc.MoveElement(d, b, 0))
	doc.RemoveElement(c)
	extra := field.New(field.KindSpacer)
	require.NoError(t, doc.AddElement(1, extra))
	require.NoError(t, doc.MoveElement(b, OverLast, 0))

	got := ids(doc)
	assert.ElementsMatch(t, []string{a, b, d, extra.ID}, got,
		"elements contain exactly the inserted ids minus the removed ones")
	seen := map[string]bool{}
	for _, id := range got {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestSetSelected(t *testing.T) {
	doc := NewDocument()
	els := placed(t, doc, field.KindText)

	require.NoError(t, doc.SetSelected(els[0].ID))
	assert.Equal(t, els[0].ID, doc.SelectedID())

	assert.ErrorIs(t, doc.SetSelected("ghost"), ErrElementNotFound)
	assert.Equal(t, els[0].ID, doc.SelectedID(), "failed select leaves selection intact")

	require.NoError(t, doc.SetSelected(""))
	assert.Empty(t, doc.SelectedID())
}

func TestDirtyLifecycle(t *testing.T) {
	doc := NewDocument()
	assert.False(t, doc.Dirty())

	els := placed(t, doc, field.KindText)
	assert.True(t, doc.Dirty())

	doc.MarkSaved()
	assert.False(t, doc.Dirty())

	doc.RemoveElement(els[0].ID)
	assert.True(t, doc.Dirty())
}

func TestElementsReturnsIsolatedSlice(t *testing.T) {
	doc := NewDocument()
	placed(t, doc, field.KindText, field.KindCheckbox)

	snapshot := doc.Elements()
	require.NoError(t, doc.AddElement(0, field.New(field.KindDate)))

	assert.Len(t, snapshot, 2, "earlier snapshot must not observe later mutations")
	assert.Len(t, doc.Elements(), 3)
}

func TestLoadStartsClean(t *testing.T) {
	doc := Load([]*field.Instance{field.New(field.KindText)})
	assert.Equal(t, 1, doc.Len())
	assert.False(t, doc.Dirty())
	assert.Empty(t, doc.SelectedID())
}
