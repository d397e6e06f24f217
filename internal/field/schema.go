package field

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// cuectx is the shared CUE runtime for schema compilation and attribute
// validation. cue.Value is safe for concurrent use once built.
var cuectx = cuecontext.New()

func compileSchema(kind Kind, src string) cue.Value {
	v := cuectx.CompileString(src)
	if err := v.Err(); err != nil {
		panic(fmt.Sprintf("field: %s schema: %v", kind, err))
	}
	return v
}

// ValidateAttributes checks an attribute bag against the kind's schema.
// It is the boundary check applied at construction commit and on every
// property-edit commit: unvalidated external input never enters the
// document model. Unknown keys, missing keys, and out-of-range values
// all fail.
func ValidateAttributes(kind Kind, attrs map[string]any) error {
	d, ok := Lookup(kind)
	if !ok {
		return fmt.Errorf("field: unknown kind %q", kind)
	}
	if attrs == nil {
		attrs = map[string]any{}
	}
	val := cuectx.Encode(attrs)
	if err := val.Err(); err != nil {
		return fmt.Errorf("field: %s attributes: %w", kind, err)
	}
	if err := d.schema.Unify(val).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("field: %s attributes: %w", kind, err)
	}
	return nil
}
