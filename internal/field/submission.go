package field

// ValidateSubmission checks submitted values against a saved layout and
// returns the ids of elements whose value failed their kind's rule. A
// submission is accepted only when the result is empty. Layout-only
// kinds carry no value and are skipped; a missing value validates as the
// empty string.
func ValidateSubmission(elements []*Instance, values map[string]string) []string {
	var invalid []string
	for _, el := range elements {
		d, ok := Lookup(el.Kind)
		if !ok || !d.ValueBearing {
			continue
		}
		if !d.Validate(el, values[el.ID]) {
			invalid = append(invalid, el.ID)
		}
	}
	return invalid
}
