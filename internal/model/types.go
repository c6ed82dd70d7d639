package model

import (
	"maps"
	"slices"
)

// FieldKind is the input kind a descriptor renders as.
type FieldKind string

const (
	FieldKindText      FieldKind = "text"
	FieldKindNumber    FieldKind = "number"
	FieldKindDate      FieldKind = "date"
	FieldKindDateTime  FieldKind = "datetime"
	FieldKindMultiline FieldKind = "multiline"
	FieldKindSelect    FieldKind = "select"
)

// SubmittedAtKey is the snapshot key holding the submission timestamp. Field
// names may not collide with it.
const SubmittedAtKey = "submittedAt"

// Valid reports whether the kind is one of the supported input kinds.
func (k FieldKind) Valid() bool {
	switch k {
	case FieldKindText, FieldKindNumber, FieldKindDate, FieldKindDateTime,
		FieldKindMultiline, FieldKindSelect:
		return true
	}
	return false
}

// Field describes a single labeled input. Descriptors are static and shared by
// every engine built from the same form.
type Field struct {
	Name            string            `json:"name" yaml:"name"`
	Label           string            `json:"label,omitempty" yaml:"label,omitempty"`
	Kind            FieldKind         `json:"kind" yaml:"kind"`
	Options         []string          `json:"options,omitempty" yaml:"options,omitempty"`
	Required        bool              `json:"required" yaml:"required"`
	RequiredMessage string            `json:"requiredMessage,omitempty" yaml:"requiredMessage,omitempty"`
	Section         string            `json:"section,omitempty" yaml:"section,omitempty"`
	Placeholder     string            `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	HelpText        string            `json:"helpText,omitempty" yaml:"helpText,omitempty"`
	Rows            int               `json:"rows,omitempty" yaml:"rows,omitempty"`
	Span            int               `json:"span,omitempty" yaml:"span,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Section groups fields into a titled card.
type Section struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	Icon  string `json:"icon,omitempty" yaml:"icon,omitempty"`
}

// FilenameRule controls the suggested name of an exported snapshot:
// <Prefix>-<value of Field, or Fallback>-<epoch millis>.json
type FilenameRule struct {
	Prefix   string `json:"prefix" yaml:"prefix"`
	Field    string `json:"field,omitempty" yaml:"field,omitempty"`
	Fallback string `json:"fallback,omitempty" yaml:"fallback,omitempty"`
}

// Form is the complete definition of one data-entry form.
type Form struct {
	ID             string `json:"id" yaml:"id"`
	Title          string `json:"title" yaml:"title"`
	Subtitle       string `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	Route          string `json:"route" yaml:"route"`
	SuccessMessage string `json:"successMessage,omitempty" yaml:"successMessage,omitempty"`
	Order          int    `json:"order,omitempty" yaml:"order,omitempty"`
	// FlashMillis is how long the success notice stays visible.
	FlashMillis int          `json:"flashMillis,omitempty" yaml:"flashMillis,omitempty"`
	Filename    FilenameRule `json:"filename" yaml:"filename"`
	Sections    []Section    `json:"sections,omitempty" yaml:"sections,omitempty"`
	Fields      []Field      `json:"fields" yaml:"fields"`
}

// Field returns the descriptor registered under name.
func (f Form) Field(name string) (Field, bool) {
	for _, field := range f.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// FieldNames lists descriptor names in declaration order.
func (f Form) FieldNames() []string {
	names := make([]string, 0, len(f.Fields))
	for _, field := range f.Fields {
		names = append(names, field.Name)
	}
	return names
}

// FieldsIn returns the descriptors assigned to the given section, in
// declaration order.
func (f Form) FieldsIn(section string) []Field {
	var out []Field
	for _, field := range f.Fields {
		if field.Section == section {
			out = append(out, field)
		}
	}
	return out
}

// Clone returns a deep copy so callers can decorate without touching shared
// definitions.
func (f Form) Clone() Form {
	out := f
	if f.Sections != nil {
		out.Sections = append([]Section(nil), f.Sections...)
	}
	if f.Fields != nil {
		out.Fields = make([]Field, len(f.Fields))
		for i, field := range f.Fields {
			out.Fields[i] = field.clone()
		}
	}
	return out
}

// Equal reports whether two definitions describe the same form. Nil and
// empty collections compare equal.
func (f Form) Equal(other Form) bool {
	if f.ID != other.ID || f.Title != other.Title || f.Subtitle != other.Subtitle ||
		f.Route != other.Route || f.SuccessMessage != other.SuccessMessage ||
		f.Order != other.Order || f.FlashMillis != other.FlashMillis ||
		f.Filename != other.Filename {
		return false
	}
	return slices.Equal(f.Sections, other.Sections) &&
		slices.EqualFunc(f.Fields, other.Fields, Field.Equal)
}

// Equal compares every attribute of two descriptors.
func (f Field) Equal(other Field) bool {
	return f.Name == other.Name && f.Label == other.Label && f.Kind == other.Kind &&
		f.Required == other.Required && f.RequiredMessage == other.RequiredMessage &&
		f.Section == other.Section && f.Placeholder == other.Placeholder &&
		f.HelpText == other.HelpText && f.Rows == other.Rows && f.Span == other.Span &&
		slices.Equal(f.Options, other.Options) && maps.Equal(f.Metadata, other.Metadata)
}

func (f Field) clone() Field {
	out := f
	if f.Options != nil {
		out.Options = append([]string(nil), f.Options...)
	}
	if f.Metadata != nil {
		out.Metadata = make(map[string]string, len(f.Metadata))
		for key, value := range f.Metadata {
			out.Metadata[key] = value
		}
	}
	return out
}
