package model

import internalmodel "github.com/goliatone/go-leadforms/internal/model"

// FieldKind re-exports the internal FieldKind enumeration.
type FieldKind = internalmodel.FieldKind

const (
	FieldKindText      = internalmodel.FieldKindText
	FieldKindNumber    = internalmodel.FieldKindNumber
	FieldKindDate      = internalmodel.FieldKindDate
	FieldKindDateTime  = internalmodel.FieldKindDateTime
	FieldKindMultiline = internalmodel.FieldKindMultiline
	FieldKindSelect    = internalmodel.FieldKindSelect
)

// SubmittedAtKey is the snapshot key carrying the submission timestamp.
const SubmittedAtKey = internalmodel.SubmittedAtKey

type Field = internalmodel.Field
type Section = internalmodel.Section
type FilenameRule = internalmodel.FilenameRule
type Form = internalmodel.Form

// Validate reports structural problems in a form definition.
func Validate(form Form) error {
	return internalmodel.ValidateForm(form)
}

// DefaultLabeler derives a display label from a field name.
func DefaultLabeler(name string) string {
	return internalmodel.DefaultLabeler(name)
}

// DefaultRequiredMessage returns "<label> is required".
func DefaultRequiredMessage(label string) string {
	return internalmodel.DefaultRequiredMessage(label)
}
