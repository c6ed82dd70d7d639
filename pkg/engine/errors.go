package engine

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrUnknownField is returned when a value targets a name the form does
	// not declare.
	ErrUnknownField = errors.New("engine: unknown field")
	// ErrInvalidValue is returned when a value is a map, slice or array
	// rather than a scalar.
	ErrInvalidValue = errors.New("engine: invalid field value")
)

// ValidationErrors maps field names to the message shown next to the field.
// A non-empty set means the most recent submit was rejected.
type ValidationErrors map[string]string

// Error lists the failing fields alphabetically.
func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "engine: validation passed"
	}
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	sort.Strings(names)
	return "engine: validation failed: " + strings.Join(names, ", ")
}

// Has reports whether name carries an error.
func (v ValidationErrors) Has(name string) bool {
	_, ok := v[name]
	return ok
}

// Fields returns the failing names sorted alphabetically.
func (v ValidationErrors) Fields() []string {
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AsMessages converts the set into the multi-message shape renderers use.
func (v ValidationErrors) AsMessages() map[string][]string {
	if len(v) == 0 {
		return nil
	}
	out := make(map[string][]string, len(v))
	for name, message := range v {
		out[name] = []string{message}
	}
	return out
}

func (v ValidationErrors) clone() ValidationErrors {
	if len(v) == 0 {
		return nil
	}
	out := make(ValidationErrors, len(v))
	for name, message := range v {
		out[name] = message
	}
	return out
}
