package pongo_test

import (
	"io"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-leadforms/pkg/render/template/pongo"
	"github.com/goliatone/go-leadforms/pkg/testsupport"
)

var templatesFS = fstest.MapFS{
	"hello.tmpl":      {Data: []byte("Hello {{ name }}")},
	"use-global.tmpl": {Data: []byte("{{ appTitle }}: {{ name }}")},
	"escape.tmpl":     {Data: []byte("<p>{{ label }}</p>")},
	"flash.tmpl":      {Data: []byte("{{ millis|ms2s }}s")},
	"rows.tmpl":       {Data: []byte("{{ rows }}/{{ millis|ms2s }}")},
	"legacy.tpl":      {Data: []byte("tpl {{ name }}")},
}

func newEngine(t *testing.T, opts ...pongo.Option) *pongo.Engine {
	t.Helper()
	engine, err := pongo.New(append([]pongo.Option{pongo.WithFS(templatesFS)}, opts...)...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestEngine_RenderTemplate(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("hello", map[string]any{"name": "Ada"}, w)
	})
	if result != "Hello Ada" || written != result {
		t.Fatalf("unexpected output result=%q written=%q", result, written)
	}
}

func TestEngine_RenderStructData(t *testing.T) {
	engine := newEngine(t)
	data := struct {
		Name string `json:"name"`
	}{Name: "Lost Form"}

	got, err := engine.RenderTemplate("hello.tmpl", data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Hello Lost Form" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEngine_StructNumbersRenderAsIntegers(t *testing.T) {
	engine := newEngine(t)
	data := struct {
		Rows   int `json:"rows"`
		Millis int `json:"millis"`
	}{Rows: 2, Millis: 4500}

	got, err := engine.RenderTemplate("rows", data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "2/4.5" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEngine_Escaping(t *testing.T) {
	engine := newEngine(t)

	escaped, err := engine.RenderTemplate("escape", map[string]any{"label": "<script>x</script>"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(escaped, "<script>") {
		t.Fatalf("output not escaped: %q", escaped)
	}
}

func TestEngine_GlobalData(t *testing.T) {
	engine := newEngine(t, pongo.WithGlobalData(map[string]any{"appTitle": "Lead Forms"}))

	got, err := engine.RenderTemplate("use-global", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Lead Forms: Ada" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEngine_Extension(t *testing.T) {
	engine := newEngine(t, pongo.WithExtension("tpl"))

	got, err := engine.RenderTemplate("legacy", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "tpl Ada" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEngine_MillisFilter(t *testing.T) {
	engine := newEngine(t)
	for millis, want := range map[int]string{5000: "5s", 4500: "4.5s"} {
		got, err := engine.RenderTemplate("flash", map[string]any{"millis": millis})
		if err != nil {
			t.Fatalf("render: %v", err)
		}
		if got != want {
			t.Fatalf("millis %d: got %q want %q", millis, got, want)
		}
	}
}

func TestEngine_Errors(t *testing.T) {
	if _, err := pongo.New(); err == nil {
		t.Fatalf("expected error without template source")
	}

	engine := newEngine(t)
	if _, err := engine.RenderTemplate("missing", nil); err == nil {
		t.Fatalf("expected error for a missing template")
	}
	if _, err := engine.RenderTemplate("hello", []string{"not", "an", "object"}); err == nil {
		t.Fatalf("expected error for non-object view data")
	}
}
