package field

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MarshalLayout serializes an ordered element sequence to the persisted
// content format: a JSON array of {id, kind, attributes} records. Map
// keys marshal in sorted order, so equal layouts serialize identically
// and save/load round-trips are byte-exact.
func MarshalLayout(elements []*Instance) (string, error) {
	if elements == nil {
		elements = []*Instance{}
	}
	b, err := json.Marshal(elements)
	if err != nil {
		return "", fmt.Errorf("field: marshal layout: %w", err)
	}
	return string(b), nil
}

// UnmarshalLayout parses persisted content back into an element sequence,
// validating every record at the boundary: known kind, non-empty unique
// id, attributes conforming to the kind's schema. Stored content is
// external input and is never trusted into the document model unchecked.
func UnmarshalLayout(content string) ([]*Instance, error) {
	if strings.TrimSpace(content) == "" {
		return []*Instance{}, nil
	}
	var elements []*Instance
	if err := json.Unmarshal([]byte(content), &elements); err != nil {
		return nil, fmt.Errorf("field: unmarshal layout: %w", err)
	}
	seen := make(map[string]bool, len(elements))
	for i, el := range elements {
		if el == nil || el.ID == "" {
			return nil, fmt.Errorf("field: layout element %d: missing id", i)
		}
		if seen[el.ID] {
			return nil, fmt.Errorf("field: layout element %d: duplicate id %q", i, el.ID)
		}
		seen[el.ID] = true
		if !el.Kind.Valid() {
			return nil, fmt.Errorf("field: layout element %d: unknown kind %q", i, el.Kind)
		}
		if err := ValidateAttributes(el.Kind, el.Attributes); err != nil {
			return nil, fmt.Errorf("field: layout element %d: %w", i, err)
		}
	}
	return elements, nil
}
