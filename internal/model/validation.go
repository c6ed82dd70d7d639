package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	errFormIDMissing    = errors.New("form id is required")
	errFormRouteInvalid = errors.New("form route must start with '/'")
	errFormHasNoFields  = errors.New("form declares no fields")
	errFilenamePrefix   = errors.New("filename prefix is required")
)

// ValidateForm checks a definition for structural problems that would make the
// engine or the renderers misbehave. Every problem is reported, joined.
func ValidateForm(form Form) error {
	var errs []error
	if strings.TrimSpace(form.ID) == "" {
		errs = append(errs, errFormIDMissing)
	}
	if !strings.HasPrefix(form.Route, "/") {
		errs = append(errs, errFormRouteInvalid)
	}
	if len(form.Fields) == 0 {
		errs = append(errs, errFormHasNoFields)
	}
	if strings.TrimSpace(form.Filename.Prefix) == "" {
		errs = append(errs, errFilenamePrefix)
	}

	sections := make(map[string]struct{}, len(form.Sections))
	for _, section := range form.Sections {
		if strings.TrimSpace(section.ID) == "" {
			errs = append(errs, errors.New("section id is required"))
			continue
		}
		if _, dup := sections[section.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate section %q", section.ID))
		}
		sections[section.ID] = struct{}{}
	}

	seen := make(map[string]struct{}, len(form.Fields))
	for _, field := range form.Fields {
		if err := validateField(field, sections); err != nil {
			errs = append(errs, err)
		}
		if _, dup := seen[field.Name]; dup {
			errs = append(errs, fmt.Errorf("duplicate field %q", field.Name))
		}
		seen[field.Name] = struct{}{}
	}

	if name := form.Filename.Field; name != "" {
		if _, ok := seen[name]; !ok {
			errs = append(errs, fmt.Errorf("filename field %q is not declared", name))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("model: invalid form %q: %w", form.ID, errors.Join(errs...))
}

func validateField(field Field, sections map[string]struct{}) error {
	name := strings.TrimSpace(field.Name)
	switch {
	case name == "":
		return errors.New("field name is required")
	case name != field.Name:
		return fmt.Errorf("field %q has surrounding whitespace", field.Name)
	case name == SubmittedAtKey:
		return fmt.Errorf("field name %q is reserved", name)
	case !field.Kind.Valid():
		return fmt.Errorf("field %q has unknown kind %q", name, field.Kind)
	case field.Kind == FieldKindSelect && len(field.Options) == 0:
		return fmt.Errorf("select field %q has no options", name)
	case field.Kind != FieldKindSelect && len(field.Options) > 0:
		return fmt.Errorf("field %q declares options but is %s", name, field.Kind)
	}
	if field.Section != "" && len(sections) > 0 {
		if _, ok := sections[field.Section]; !ok {
			return fmt.Errorf("field %q references unknown section %q", name, field.Section)
		}
	}
	switch field.Span {
	case 0, 4, 6, 12:
	default:
		return fmt.Errorf("field %q span must be 4, 6 or 12", name)
	}
	return nil
}
