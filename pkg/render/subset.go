package render

import (
	"strings"

	"github.com/goliatone/go-leadforms/pkg/model"
)

// FieldSubset selects fields by name or by section id. A field matching
// either list is kept.
type FieldSubset struct {
	Names    []string
	Sections []string
}

// Empty reports whether the subset selects nothing in particular.
func (s FieldSubset) Empty() bool {
	return len(s.Names) == 0 && len(s.Sections) == 0
}

// ApplySubset removes fields that do not match subset and prunes sections
// left without fields so renderers never show empty cards. An empty subset
// leaves the form unchanged.
func ApplySubset(form *model.Form, subset FieldSubset) {
	if form == nil || subset.Empty() {
		return
	}

	names := tokenSet(subset.Names)
	sections := tokenSet(subset.Sections)

	filtered := make([]model.Field, 0, len(form.Fields))
	used := make(map[string]struct{})
	for _, field := range form.Fields {
		_, byName := names[field.Name]
		_, bySection := sections[field.Section]
		if !byName && !bySection {
			continue
		}
		filtered = append(filtered, field)
		used[field.Section] = struct{}{}
	}
	form.Fields = filtered
	if len(form.Fields) == 0 {
		form.Fields = nil
	}

	kept := form.Sections[:0:0]
	for _, section := range form.Sections {
		if _, ok := used[section.ID]; ok {
			kept = append(kept, section)
		}
	}
	form.Sections = kept
	if len(form.Sections) == 0 {
		form.Sections = nil
	}
}

func tokenSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out[trimmed] = struct{}{}
		}
	}
	return out
}
