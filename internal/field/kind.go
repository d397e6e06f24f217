// Package field defines the closed set of form field types and the
// registry that resolves each kind to its descriptor: default attribute
// bag, attribute schema, and value validation rule. The registry is
// populated at init time and consumed by the designer (construction,
// property edits) and by the submission engine (value validation).
package field

// Kind discriminates a form field's type. The set is closed and known at
// build time; an unrecognized kind on a construction path is a
// programming error, not a runtime input error.
type Kind string

const (
	KindText      Kind = "text"
	KindNumber    Kind = "number"
	KindTextarea  Kind = "textarea"
	KindDate      Kind = "date"
	KindSelect    Kind = "select"
	KindCheckbox  Kind = "checkbox"
	KindTitle     Kind = "title"
	KindSubtitle  Kind = "subtitle"
	KindParagraph Kind = "paragraph"
	KindSeparator Kind = "separator"
	KindSpacer    Kind = "spacer"
)

// allKinds fixes the palette order.
var allKinds = []Kind{
	KindText,
	KindNumber,
	KindTextarea,
	KindDate,
	KindSelect,
	KindCheckbox,
	KindTitle,
	KindSubtitle,
	KindParagraph,
	KindSeparator,
	KindSpacer,
}

func (k Kind) String() string { return string(k) }

// Valid reports whether k names a registered kind.
func (k Kind) Valid() bool {
	_, ok := registry[k]
	return ok
}
