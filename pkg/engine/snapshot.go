package engine

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/goliatone/go-leadforms/pkg/model"
)

// TimestampLayout renders submission times as ISO-8601 UTC with millisecond
// precision, for example 2024-01-01T00:00:00.000Z.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Snapshot is the immutable record of one successful submit. It holds every
// descriptor key (blank fields as "") plus the submission timestamp.
type Snapshot struct {
	FormID      string
	SubmittedAt time.Time

	keys   []string
	values map[string]any
}

func newSnapshot(form model.Form, values map[string]any, at time.Time) Snapshot {
	keys := form.FieldNames()
	captured := make(map[string]any, len(keys))
	for _, key := range keys {
		value, ok := values[key]
		if !ok || value == nil {
			value = ""
		}
		captured[key] = value
	}
	return Snapshot{
		FormID:      form.ID,
		SubmittedAt: at.UTC(),
		keys:        keys,
		values:      captured,
	}
}

// IsZero reports whether the snapshot is empty.
func (s Snapshot) IsZero() bool {
	return s.FormID == "" && s.values == nil
}

// Keys lists the field keys in descriptor order, without the timestamp key.
func (s Snapshot) Keys() []string {
	return append([]string(nil), s.keys...)
}

// Get returns a field value captured at submit time.
func (s Snapshot) Get(name string) (any, bool) {
	if name == model.SubmittedAtKey {
		return s.Timestamp(), true
	}
	value, ok := s.values[name]
	return value, ok
}

// Timestamp formats SubmittedAt with TimestampLayout.
func (s Snapshot) Timestamp() string {
	return s.SubmittedAt.UTC().Format(TimestampLayout)
}

// Map returns the snapshot as a plain map, including the timestamp key. The
// result equals what json.Unmarshal produces for the exported document.
func (s Snapshot) Map() map[string]any {
	out := make(map[string]any, len(s.values)+1)
	for key, value := range s.values {
		out[key] = value
	}
	out[model.SubmittedAtKey] = s.Timestamp()
	return out
}

// MarshalJSON emits the fields in descriptor order followed by submittedAt.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	out := bytes.NewBufferString("{")
	write := func(key string, value any, first bool) error {
		if !first {
			out.WriteByte(',')
		}
		buf.Reset()
		if err := enc.Encode(key); err != nil {
			return err
		}
		out.Write(bytes.TrimRight(buf.Bytes(), "\n"))
		out.WriteByte(':')
		buf.Reset()
		if err := enc.Encode(value); err != nil {
			return err
		}
		out.Write(bytes.TrimRight(buf.Bytes(), "\n"))
		return nil
	}

	for i, key := range s.keys {
		if err := write(key, s.values[key], i == 0); err != nil {
			return nil, err
		}
	}
	if err := write(model.SubmittedAtKey, s.Timestamp(), len(s.keys) == 0); err != nil {
		return nil, err
	}
	out.WriteByte('}')
	return out.Bytes(), nil
}

// Indented renders the snapshot as 2-space indented JSON with no trailing
// newline.
func (s Snapshot) Indented() ([]byte, error) {
	compact, err := s.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
