package vanilla_test

import (
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-leadforms/pkg/engine"
	"github.com/goliatone/go-leadforms/pkg/forms"
	"github.com/goliatone/go-leadforms/pkg/render"
	"github.com/goliatone/go-leadforms/pkg/renderers/vanilla"
	"github.com/goliatone/go-leadforms/pkg/testsupport"
	"github.com/goliatone/go-leadforms/pkg/themes"
)

func newRenderer(t *testing.T) *vanilla.Renderer {
	t.Helper()
	renderer, err := vanilla.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return renderer
}

func assertContains(t *testing.T, html string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(html, fragment) {
			t.Errorf("output missing %q", fragment)
		}
	}
}

func TestRender_EmptyForm(t *testing.T) {
	renderer := newRenderer(t)
	form := testsupport.Form(t, "budgetary-quotation")

	out, err := renderer.Render(context.Background(), form, render.RenderOptions{
		HiddenFields: render.MergeHiddenFields(nil, render.CSRFToken("tok-1")),
		Navigation:   render.Navigation(forms.MustBuiltin().List(), form.ID),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)

	assertContains(t, html,
		`<title>Budgetary Quotation | Lead Forms</title>`,
		`action="/budgetary-quotation"`,
		`formaction="/budgetary-quotation/reset"`,
		`<input type="hidden" name="_csrf" value="tok-1">`,
		`name="slno"`,
		`type="number"`,
		`type="date"`,
		`<textarea id="lf-budgetary-quotation-competitors" name="competitors" rows="2"`,
		`<option value="Open">Open</option>`,
		`aria-current="page"`,
		`<div class="lf-shell">`,
		`<nav class="lf-sidebar" aria-label="Forms">`,
		`<header class="lf-header">`,
		`<div class="lf-grid">`,
		`<div class="lf-actions">`,
		`href="/lost"`,
		`📋`,
	)
	for _, absent := range []string{"lf-snackbar", "Download JSON", "lf-field__error"} {
		if strings.Contains(html, absent) {
			t.Errorf("empty form should not contain %q", absent)
		}
	}
}

func TestRender_ErrorsAndValues(t *testing.T) {
	renderer := newRenderer(t)
	form := testsupport.Form(t, "lost")

	out, err := renderer.Render(context.Background(), form, render.RenderOptions{
		Values: map[string]any{"tenderName": `Radar "B" <upgrade>`, "tenderType": "Limited Tender"},
		Errors: map[string][]string{"slno": {"Sl.No is required"}},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)

	assertContains(t, html,
		`<p class="lf-field__error" id="lf-lost-slno-error">Sl.No is required</p>`,
		`aria-invalid="true" aria-describedby="lf-lost-slno-error"`,
		`lf-field--invalid`,
		`value="Radar &quot;B&quot; &lt;upgrade&gt;"`,
		`<option value="Limited Tender" selected>Limited Tender</option>`,
	)
	if strings.Contains(html, "<upgrade>") {
		t.Fatalf("values must be escaped")
	}
}

func TestRender_SnapshotFlashAndTheme(t *testing.T) {
	renderer := newRenderer(t)
	form := testsupport.Form(t, "lost")

	eng, err := engine.New(form, engine.WithClock(testsupport.FixedClock()))
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	values := testsupport.RequiredValues(form)
	if err := eng.SetValues(values); err != nil {
		t.Fatalf("set values: %v", err)
	}
	snapshot, err := eng.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	selector, err := themes.NewSelector()
	if err != nil {
		t.Fatalf("selector: %v", err)
	}
	cfg, err := selector.Resolve(themes.DefaultTheme, "dark")
	if err != nil {
		t.Fatalf("theme: %v", err)
	}

	out, err := renderer.Render(context.Background(), form, render.RenderOptions{
		Values:   eng.Values(),
		Snapshot: snapshot,
		Phase:    eng.Phase(),
		Flash:    form.SuccessMessage,
		Theme:    cfg,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)

	assertContains(t, html,
		`data-phase="submitted"`,
		`class="lf-snackbar" id="lf-snackbar" role="status" data-timeout="4500"`,
		`style="--lf-flash-duration: 4.5s"`,
		`<pre class="lf-preview">`,
		`}, 4500);`,
		form.SuccessMessage,
		`href="/lost/download" download>Download JSON</a>`,
		`&quot;submittedAt&quot;: &quot;2024-01-15T09:30:00.250Z&quot;`,
		`data-theme-variant="dark"`,
		`--color-primary: #90caf9;`,
		`href="/assets/leadforms.css"`,
	)
}

func TestRender_ErrorKeysOutsideTheFormBecomeFormErrors(t *testing.T) {
	renderer := newRenderer(t)
	form := testsupport.Form(t, "lost")

	out, err := renderer.Render(context.Background(), form, render.RenderOptions{
		Errors: map[string][]string{
			"/slno":   {" Sl.No is required "},
			"form":    {"Session expired"},
			"ghost":   {"Unknown column"},
			"__all__": {"Session expired"},
		},
		FormErrors: []string{"Try again"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)

	assertContains(t, html,
		`<div class="lf-errors" role="alert">`,
		`<li>Try again</li>`,
		`<li>Session expired</li>`,
		`<li>Unknown column</li>`,
		`<p class="lf-field__error" id="lf-lost-slno-error">Sl.No is required</p>`,
	)
	if n := strings.Count(html, "<li>Session expired</li>"); n != 1 {
		t.Fatalf("form errors not deduplicated: %d copies", n)
	}
}

func TestRenderIndex(t *testing.T) {
	renderer := newRenderer(t)
	list := forms.MustBuiltin().List()

	out, err := renderer.RenderIndex(context.Background(), list, render.RenderOptions{
		Navigation: render.Navigation(list, ""),
	})
	if err != nil {
		t.Fatalf("render index: %v", err)
	}
	html := string(out)
	assertContains(t, html, `href="/export-leads"`, `22 fields`, `<h2>Lost Form</h2>`)
}

func TestRender_CanceledContext(t *testing.T) {
	renderer := newRenderer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := renderer.Render(ctx, testsupport.Form(t, "lost"), render.RenderOptions{}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestAssetsFS(t *testing.T) {
	if _, err := vanilla.AssetsFS().Open(vanilla.StylesheetName); err != nil {
		t.Fatalf("stylesheet not embedded: %v", err)
	}
}
