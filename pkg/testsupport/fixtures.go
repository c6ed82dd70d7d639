package testsupport

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-leadforms/pkg/forms"
	"github.com/goliatone/go-leadforms/pkg/model"
)

// FixedTime is the instant returned by FixedClock: 2024-01-15T09:30:00.250Z.
var FixedTime = time.Date(2024, time.January, 15, 9, 30, 0, 250_000_000, time.UTC)

// FixedClock returns a clock that always reports FixedTime.
func FixedClock() func() time.Time {
	return func() time.Time { return FixedTime }
}

// Form returns a built-in form definition by id, failing the test when it is
// missing.
func Form(t testing.TB, id string) model.Form {
	t.Helper()

	catalog, err := forms.Builtin()
	if err != nil {
		t.Fatalf("load builtin forms: %v", err)
	}
	form, err := catalog.Get(id)
	if err != nil {
		t.Fatalf("form %q: %v", id, err)
	}
	return form
}

// SampleValue returns a deterministic value suited to the field kind.
func SampleValue(field model.Field) any {
	switch field.Kind {
	case model.FieldKindNumber:
		return "12.5"
	case model.FieldKindDate:
		return "2024-01-15"
	case model.FieldKindDateTime:
		return "2024-01-15T10:30"
	case model.FieldKindMultiline:
		return field.Label + "\nsecond line"
	case model.FieldKindSelect:
		if len(field.Options) > 0 {
			return field.Options[0]
		}
		return ""
	default:
		return field.Label + " value"
	}
}

// FilledValues returns sample values for every field in the form.
func FilledValues(form model.Form) map[string]any {
	out := make(map[string]any, len(form.Fields))
	for _, field := range form.Fields {
		out[field.Name] = SampleValue(field)
	}
	return out
}

// RequiredValues returns sample values for required fields only.
func RequiredValues(form model.Form) map[string]any {
	out := make(map[string]any)
	for _, field := range form.Fields {
		if field.Required {
			out[field.Name] = SampleValue(field)
		}
	}
	return out
}

// RequiredNames lists the required field names in declaration order.
func RequiredNames(form model.Form) []string {
	var out []string
	for _, field := range form.Fields {
		if field.Required {
			out = append(out, field.Name)
		}
	}
	return out
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t testing.TB, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t testing.TB, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t testing.TB, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
