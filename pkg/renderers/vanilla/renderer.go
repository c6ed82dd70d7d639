package vanilla

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/goliatone/go-leadforms/pkg/model"
	"github.com/goliatone/go-leadforms/pkg/render"
	rendertemplate "github.com/goliatone/go-leadforms/pkg/render/template"
	"github.com/goliatone/go-leadforms/pkg/render/template/pongo"
	"github.com/goliatone/go-leadforms/pkg/widgets"
)

const (
	templateLayout = "templates/layout.tmpl"
	templateForm   = "templates/form.tmpl"
	templateIndex  = "templates/index.tmpl"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	widgets          *widgets.Registry
	appTitle         string
}

// WithTemplatesFS supplies an alternate template bundle.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template engine.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithWidgets replaces the widget registry used to pick controls.
func WithWidgets(registry *widgets.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.widgets = registry
		}
	}
}

// WithAppTitle sets the heading shown in the sidebar.
func WithAppTitle(title string) Option {
	return func(cfg *config) {
		if title != "" {
			cfg.appTitle = title
		}
	}
}

// Renderer renders complete HTML pages: the navigation shell around either
// a form or the index of forms.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	widgets   *widgets.Registry
	appTitle  string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the renderer.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS: TemplatesFS(),
		appTitle:   "Lead Forms",
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.widgets == nil {
		cfg.widgets = widgets.NewRegistry()
	}

	templates := cfg.templateRenderer
	if templates == nil {
		engine, err := pongo.New(
			pongo.WithFS(cfg.templateFS),
			pongo.WithExtension(".tmpl"),
			pongo.WithGlobalData(map[string]any{"appTitle": cfg.appTitle}),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		templates = engine
	}

	return &Renderer{
		templates: templates,
		widgets:   cfg.widgets,
		appTitle:  cfg.appTitle,
	}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render produces the page for one form.
func (r *Renderer) Render(ctx context.Context, form model.Form, opts render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, errors.New("vanilla renderer: template renderer is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	view, err := r.buildFormView(form, opts)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: build view: %w", err)
	}
	content, err := r.templates.RenderTemplate(templateForm, map[string]any{"form": view})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render form: %w", err)
	}
	return r.page(form.Title, form.Subtitle, content, opts)
}

// RenderIndex produces the landing page listing every form.
func (r *Renderer) RenderIndex(ctx context.Context, forms []model.Form, opts render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, errors.New("vanilla renderer: template renderer is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cards := make([]indexCardView, 0, len(forms))
	for _, form := range forms {
		required := 0
		for _, field := range form.Fields {
			if field.Required {
				required++
			}
		}
		cards = append(cards, indexCardView{
			Title:    form.Title,
			Subtitle: form.Subtitle,
			Route:    form.Route,
			Fields:   len(form.Fields),
			Required: required,
		})
	}
	content, err := r.templates.RenderTemplate(templateIndex, map[string]any{"forms": cards})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render index: %w", err)
	}
	return r.page(r.appTitle, "", content, opts)
}

func (r *Renderer) page(title, subtitle, content string, opts render.RenderOptions) ([]byte, error) {
	page := buildPage(title, subtitle, content, opts.Navigation, opts.Theme)
	out, err := r.templates.RenderTemplate(templateLayout, map[string]any{"page": page})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render layout: %w", err)
	}
	return []byte(out), nil
}
