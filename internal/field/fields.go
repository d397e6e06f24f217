package field

import (
	"slices"
	"strconv"
	"time"
)

// Value validation rules. The default rule is "always valid"; a required
// flag without a stricter rule falls back to "non-empty string". Rules
// never reject emptiness on non-required fields.

func alwaysValid(*Instance, string) bool { return true }

func requiredNonEmpty(inst *Instance, value string) bool {
	if !inst.BoolAttr("required") {
		return true
	}
	return value != ""
}

func validNumber(inst *Instance, value string) bool {
	if value == "" {
		return !inst.BoolAttr("required")
	}
	_, err := strconv.ParseFloat(value, 64)
	return err == nil
}

func validDate(inst *Instance, value string) bool {
	if value == "" {
		return !inst.BoolAttr("required")
	}
	_, err := time.Parse("2006-01-02", value)
	return err == nil
}

func validOption(inst *Instance, value string) bool {
	if value == "" {
		return !inst.BoolAttr("required")
	}
	return slices.Contains(inst.Options(), value)
}

// A checked checkbox submits "true"; required means it must be checked.
func validCheckbox(inst *Instance, value string) bool {
	if !inst.BoolAttr("required") {
		return true
	}
	return value == "true"
}

var allContexts = []RenderContext{ContextDesigner, ContextForm, ContextProperties}

// inputSchema is the attribute schema shared by the plain input kinds.
const inputSchema = `
import "strings"

close({
	label:       string & strings.MinRunes(2) & strings.MaxRunes(50)
	helperText:  string & strings.MaxRunes(200)
	required:    bool
	placeholder: string & strings.MaxRunes(50)
})
`

const labelOnlySchema = `
import "strings"

close({
	label:      string & strings.MinRunes(2) & strings.MaxRunes(50)
	helperText: string & strings.MaxRunes(200)
	required:   bool
})
`

const titleSchema = `
import "strings"

close({
	title: string & strings.MinRunes(2) & strings.MaxRunes(50)
})
`

func init() {
	register(&Descriptor{
		Kind:         KindText,
		Label:        "Text Field",
		Icon:         "text-fields",
		ValueBearing: true,
		Contexts:     allContexts,
		DefaultAttributes: map[string]any{
			"label":       "Text field",
			"helperText":  "Helper text",
			"required":    false,
			"placeholder": "Value here...",
		},
		Schema:   inputSchema,
		Validate: requiredNonEmpty,
	})

	register(&Descriptor{
		Kind:         KindNumber,
		Label:        "Number Field",
		Icon:         "hash",
		ValueBearing: true,
		Contexts:     allContexts,
		DefaultAttributes: map[string]any{
			"label":       "Number field",
			"helperText":  "Helper text",
			"required":    false,
			"placeholder": "0",
		},
		Schema:   inputSchema,
		Validate: validNumber,
	})

	register(&Descriptor{
		Kind:         KindTextarea,
		Label:        "Textarea Field",
		Icon:         "text-paragraph",
		ValueBearing: true,
		Contexts:     allContexts,
		DefaultAttributes: map[string]any{
			"label":       "Textarea",
			"helperText":  "Helper text",
			"required":    false,
			"placeholder": "Value here...",
			"rows":        3,
		},
		Schema: `
import "strings"

close({
	label:       string & strings.MinRunes(2) & strings.MaxRunes(50)
	helperText:  string & strings.MaxRunes(200)
	required:    bool
	placeholder: string & strings.MaxRunes(50)
	rows:        number & >=1 & <=10
})
`,
		Validate: requiredNonEmpty,
	})

	register(&Descriptor{
		Kind:         KindDate,
		Label:        "Date Field",
		Icon:         "calendar",
		ValueBearing: true,
		Contexts:     allContexts,
		DefaultAttributes: map[string]any{
			"label":      "Date field",
			"helperText": "Pick a date",
			"required":   false,
		},
		Schema:   labelOnlySchema,
		Validate: validDate,
	})

	register(&Descriptor{
		Kind:         KindSelect,
		Label:        "Select Field",
		Icon:         "dropdown",
		ValueBearing: true,
		Contexts:     allContexts,
		DefaultAttributes: map[string]any{
			"label":       "Select field",
			"helperText":  "Helper text",
			"required":    false,
			"placeholder": "Value here...",
			"options":     []string{},
		},
		Schema: `
import "strings"

close({
	label:       string & strings.MinRunes(2) & strings.MaxRunes(50)
	helperText:  string & strings.MaxRunes(200)
	required:    bool
	placeholder: string & strings.MaxRunes(50)
	options: [...string]
})
`,
		Validate: validOption,
	})

	register(&Descriptor{
		Kind:         KindCheckbox,
		Label:        "Checkbox Field",
		Icon:         "checkbox",
		ValueBearing: true,
		Contexts:     allContexts,
		DefaultAttributes: map[string]any{
			"label":      "Checkbox field",
			"helperText": "Helper text",
			"required":   false,
		},
		Schema:   labelOnlySchema,
		Validate: validCheckbox,
	})

	register(&Descriptor{
		Kind:     KindTitle,
		Label:    "Title Field",
		Icon:     "heading-1",
		Contexts: allContexts,
		DefaultAttributes: map[string]any{
			"title": "Title field",
		},
		Schema: titleSchema,
	})

	register(&Descriptor{
		Kind:     KindSubtitle,
		Label:    "Subtitle Field",
		Icon:     "heading-2",
		Contexts: allContexts,
		DefaultAttributes: map[string]any{
			"title": "Subtitle field",
		},
		Schema: titleSchema,
	})

	register(&Descriptor{
		Kind:     KindParagraph,
		Label:    "Paragraph Field",
		Icon:     "pilcrow",
		Contexts: allContexts,
		DefaultAttributes: map[string]any{
			"text": "Text here",
		},
		Schema: `
import "strings"

close({
	text: string & strings.MinRunes(2) & strings.MaxRunes(500)
})
`,
	})

	// Separator has no editable properties.
	register(&Descriptor{
		Kind:              KindSeparator,
		Label:             "Separator Field",
		Icon:              "minus",
		Contexts:          []RenderContext{ContextDesigner, ContextForm},
		DefaultAttributes: map[string]any{},
		Schema:            `close({})`,
	})

	register(&Descriptor{
		Kind:     KindSpacer,
		Label:    "Spacer Field",
		Icon:     "move-vertical",
		Contexts: allContexts,
		DefaultAttributes: map[string]any{
			"height": 20,
		},
		Schema: `
close({
	height: number & >=5 & <=200
})
`,
	})
}
