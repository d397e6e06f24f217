package handler

import (
	"net/http"

	"github.com/formforge/formforge/internal/field"
)

type paletteEntry struct {
	Kind              field.Kind            `json:"kind"`
	Label             string                `json:"label"`
	Icon              string                `json:"icon"`
	ValueBearing      bool                  `json:"value_bearing"`
	Contexts          []field.RenderContext `json:"contexts"`
	DefaultAttributes map[string]any        `json:"default_attributes"`
}

// Palette returns the registered field kinds in palette order, with the
// metadata the client needs to render the designer sidebar.
func Palette(w http.ResponseWriter, r *http.Request) {
	descriptors := field.Descriptors()
	entries := make([]paletteEntry, 0, len(descriptors))
	for _, d := range descriptors {
		entries = append(entries, paletteEntry{
			Kind:              d.Kind,
			Label:             d.Label,
			Icon:              d.Icon,
			ValueBearing:      d.ValueBearing,
			Contexts:          d.Contexts,
			DefaultAttributes: d.DefaultAttributes,
		})
	}
	writeJSON(w, http.StatusOK, entries)
}
