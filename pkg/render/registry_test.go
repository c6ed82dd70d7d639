package render_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-leadforms/pkg/model"
	"github.com/goliatone/go-leadforms/pkg/render"
)

type stubRenderer struct{ name string }

func (s stubRenderer) Name() string        { return s.name }
func (s stubRenderer) ContentType() string { return "text/plain" }
func (s stubRenderer) Render(context.Context, model.Form, render.RenderOptions) ([]byte, error) {
	return []byte(s.name), nil
}

func TestRegistry(t *testing.T) {
	registry := render.NewRegistry()
	registry.MustRegister(stubRenderer{name: "html"})
	if err := registry.Register(stubRenderer{name: "tui"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register(stubRenderer{name: "html"}); err == nil {
		t.Fatalf("expected duplicate error")
	}
	if err := registry.Register(nil); err == nil {
		t.Fatalf("expected nil renderer error")
	}

	if diff := cmp.Diff([]string{"html", "tui"}, registry.List()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	fallback, err := registry.Get("")
	if err != nil || fallback.Name() != "html" {
		t.Fatalf("expected html default, got %v %v", fallback, err)
	}
	if _, err := registry.Get("pdf"); !errors.Is(err, render.ErrRendererNotFound) {
		t.Fatalf("expected ErrRendererNotFound, got %v", err)
	}
	if !registry.Has("tui") || registry.Has("pdf") {
		t.Fatalf("unexpected Has results")
	}
}

func TestNavigation(t *testing.T) {
	forms := []model.Form{
		{ID: "budgetary-quotation", Title: "Budgetary Quotation", Route: "/budgetary-quotation"},
		{ID: "lost", Title: "Lost Form", Route: "/lost"},
	}
	items := render.Navigation(forms, "lost")
	want := []render.NavItem{
		{ID: "budgetary-quotation", Title: "Budgetary Quotation", Route: "/budgetary-quotation"},
		{ID: "lost", Title: "Lost Form", Route: "/lost", Active: true},
	}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Fatalf("navigation mismatch (-want +got):\n%s", diff)
	}
}
