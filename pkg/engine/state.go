package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// State tracks the values entered so far, keyed by field name. Unset fields
// are absent from the map.
type State struct {
	values map[string]any
}

// NewState seeds the state with prefilled values.
func NewState(prefill map[string]any) *State {
	return &State{values: cloneValues(prefill)}
}

// Get returns the stored value for name.
func (s *State) Get(name string) (any, bool) {
	if s == nil {
		return nil, false
	}
	value, ok := s.values[name]
	return value, ok
}

// Set stores value under name, normalised to a JSON scalar.
func (s *State) Set(name string, value any) {
	if s.values == nil {
		s.values = make(map[string]any)
	}
	s.values[name] = normalizeValue(value)
}

// Values returns a copy of the current values.
func (s *State) Values() map[string]any {
	if s == nil {
		return map[string]any{}
	}
	return cloneValues(s.values)
}

// Clear drops every stored value.
func (s *State) Clear() {
	s.values = make(map[string]any)
}

func cloneValues(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = normalizeValue(v)
	}
	return out
}

// normalizeValue folds Go values into the shapes encoding/json produces when
// decoding, so a snapshot compares equal to its own exported file.
func normalizeValue(value any) any {
	switch v := value.(type) {
	case nil, bool:
		return v
	case string:
		return strings.ToValidUTF8(v, "\uFFFD")
	case float64:
		return finite(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return finite(f)
		}
		return v.String()
	case float32:
		return finite(float64(v))
	case int:
		return float64(v)
	case int8:
		return float64(v)
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint8:
		return float64(v)
	case uint16:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case []byte:
		return strings.ToValidUTF8(string(v), "\uFFFD")
	case fmt.Stringer:
		return strings.ToValidUTF8(v.String(), "\uFFFD")
	default:
		return strings.ToValidUTF8(fmt.Sprint(v), "\uFFFD")
	}
}

// checkScalar rejects containers. Field values are single JSON scalars; a
// map or slice has no input kind that could have produced it.
func checkScalar(name string, value any) error {
	if value == nil {
		return nil
	}
	if _, ok := value.([]byte); ok {
		return nil
	}
	switch reflect.ValueOf(value).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return fmt.Errorf("%w: %q holds %T", ErrInvalidValue, name, value)
	}
	return nil
}
