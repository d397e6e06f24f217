package field

import (
	"fmt"

	"cuelang.org/go/cue"
	"github.com/google/uuid"
)

// RenderContext tags a UI surface a field kind participates in. Rendering
// itself lives in the client; the tags tell it which component slots a
// kind fills.
type RenderContext string

const (
	// ContextDesigner is the read-only preview inside the designer canvas.
	ContextDesigner RenderContext = "designer"
	// ContextForm is the live submission form. The form surface receives
	// a submit callback to report the committed value plus an invalid flag.
	ContextForm RenderContext = "form"
	// ContextProperties is the attribute editor shown for the selected element.
	ContextProperties RenderContext = "properties"
)

// ValidateFunc reports whether a committed value is acceptable for the
// given instance. Values arrive as strings regardless of logical type.
type ValidateFunc func(inst *Instance, value string) bool

// Descriptor declares one field kind: its palette metadata, initial
// attribute bag, attribute schema, and value validation rule. Descriptors
// are immutable after registration.
type Descriptor struct {
	Kind  Kind
	Label string // palette button label
	Icon  string // palette icon name, resolved by the client

	// ValueBearing is false for layout-only kinds (title, separator,
	// spacer, ...) that never carry a submitted value.
	ValueBearing bool

	Contexts []RenderContext

	// DefaultAttributes is the initial property bag for new instances.
	// Construct deep-copies it; instances must never alias this map.
	DefaultAttributes map[string]any

	// Schema is CUE source constraining legal attribute values. It is
	// compiled once at registration and enforced at construction and on
	// every property-edit commit.
	Schema string

	Validate ValidateFunc

	schema cue.Value
}

var registry = map[Kind]*Descriptor{}

// register compiles the descriptor's schema and adds it to the registry.
// Called from init; any failure is a programming error.
func register(d *Descriptor) {
	if _, dup := registry[d.Kind]; dup {
		panic(fmt.Sprintf("field: duplicate kind %q", d.Kind))
	}
	d.schema = compileSchema(d.Kind, d.Schema)
	if d.Validate == nil {
		d.Validate = alwaysValid
	}
	registry[d.Kind] = d
}

// Lookup resolves a kind to its descriptor in O(1).
func Lookup(k Kind) (*Descriptor, bool) {
	d, ok := registry[k]
	return d, ok
}

// MustLookup is Lookup for construction paths, where an unknown kind is
// a bug. It fails fast.
func MustLookup(k Kind) *Descriptor {
	d, ok := registry[k]
	if !ok {
		panic(fmt.Sprintf("field: unknown kind %q", k))
	}
	return d
}

// Descriptors returns all registered descriptors in palette order.
func Descriptors() []*Descriptor {
	out := make([]*Descriptor, 0, len(allKinds))
	for _, k := range allKinds {
		out = append(out, registry[k])
	}
	return out
}

// Construct returns a fresh instance of this kind with the given id. The
// attribute bag is a deep copy of DefaultAttributes; editing one instance
// must never corrupt the type-wide defaults or any sibling instance.
func (d *Descriptor) Construct(id string) *Instance {
	return &Instance{
		ID:         id,
		Kind:       d.Kind,
		Attributes: copyAttributes(d.DefaultAttributes),
	}
}

// New constructs an instance of kind k with a generated id. Collisions
// are negligible; ordering of ids carries no meaning.
func New(k Kind) *Instance {
	return MustLookup(k).Construct(uuid.NewString())
}
