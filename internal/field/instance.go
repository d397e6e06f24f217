package field

// Instance is a placed, uniquely-identified occurrence of a field kind
// within one form layout. Its JSON form {id, kind, attributes} is the
// persisted layout record and must round-trip exactly through save and
// load.
type Instance struct {
	ID         string         `json:"id"`
	Kind       Kind           `json:"kind"`
	Attributes map[string]any `json:"attributes"`
}

// Clone returns a deep copy. Instances never share attribute storage;
// mutating one must not be observable through another.
func (in *Instance) Clone() *Instance {
	return &Instance{
		ID:         in.ID,
		Kind:       in.Kind,
		Attributes: copyAttributes(in.Attributes),
	}
}

// StringAttr returns the named attribute as a string, or "" when absent
// or of another type.
func (in *Instance) StringAttr(key string) string {
	s, _ := in.Attributes[key].(string)
	return s
}

// BoolAttr returns the named attribute as a bool, or false when absent
// or of another type.
func (in *Instance) BoolAttr(key string) bool {
	b, _ := in.Attributes[key].(bool)
	return b
}

// Options returns the "options" attribute as a string slice. Both
// []string (fresh construction) and []any (after a JSON round-trip) are
// accepted.
func (in *Instance) Options() []string {
	switch v := in.Attributes["options"].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, o := range v {
			if s, ok := o.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func copyAttributes(attrs map[string]any) map[string]any {
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch v := v.(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = copyValue(e)
		}
		return out
	case map[string]any:
		return copyAttributes(v)
	default:
		return v
	}
}
