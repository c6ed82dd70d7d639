// Package pongo implements template.TemplateRenderer on top of pongo2.
package pongo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-leadforms/pkg/render/template"
)

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	templates fs.FS
	extension string
	globals   map[string]any
}

// WithFS loads templates from an fs.FS, typically an embed.FS.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithExtension overrides the default ".tmpl" extension.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// WithGlobalData seeds values visible to every template, such as the
// application title shown in the page shell.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) == 0 {
			return
		}
		if cfg.globals == nil {
			cfg.globals = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globals[strings.TrimSpace(key)] = value
		}
	}
}

// Engine is a pongo2 template set. Parsed templates are cached by the set.
type Engine struct {
	set *pongo2.TemplateSet
	ext string
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New builds an engine over the templates in WithFS.
func New(options ...Option) (*Engine, error) {
	cfg := &config{extension: ".tmpl"}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.templates == nil {
		return nil, errors.New("pongo: templates fs is required")
	}

	set := pongo2.NewSet("leadforms", pongo2.NewFSLoader(cfg.templates))
	if len(cfg.globals) > 0 {
		globals, err := viewContext(cfg.globals)
		if err != nil {
			return nil, fmt.Errorf("pongo: global data: %w", err)
		}
		set.Globals.Update(globals)
	}
	registerFilters()

	return &Engine{set: set, ext: cfg.extension}, nil
}

// RenderTemplate executes a template file. The extension is optional.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("pongo: engine is nil")
	}
	path := name
	if !strings.HasSuffix(path, e.ext) {
		path += e.ext
	}

	tmpl, err := e.set.FromCache(path)
	if err != nil {
		return "", fmt.Errorf("pongo: load template %q: %w", path, err)
	}
	ctx, err := viewContext(data)
	if err != nil {
		return "", fmt.Errorf("pongo: convert data for %q: %w", path, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(ctx, &buf); err != nil {
		return "", fmt.Errorf("pongo: execute template %q: %w", path, err)
	}

	rendered := buf.String()
	for _, w := range out {
		if w == nil {
			continue
		}
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", err
		}
	}
	return rendered, nil
}

// viewContext flattens view structs into plain maps through their json tags.
// Numbers stay json.Number so integers print without fractional digits.
func viewContext(data any) (pongo2.Context, error) {
	if data == nil {
		return pongo2.Context{}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var ctx map[string]any
	if err := decoder.Decode(&ctx); err != nil {
		return nil, fmt.Errorf("view data must encode to an object: %w", err)
	}
	return pongo2.Context(ctx), nil
}

// registerFilters installs the filters the bundled templates use. pongo2
// filters are process-wide, so repeated engines skip registration.
func registerFilters() {
	if !pongo2.FilterExists("ms2s") {
		_ = pongo2.RegisterFilter("ms2s", filterMillisToSeconds)
	}
}

// filterMillisToSeconds renders a millisecond count as seconds, trimming a
// trailing ".0" (5000 -> "5", 4500 -> "4.5").
func filterMillisToSeconds(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	seconds := in.Float() / 1000
	text := fmt.Sprintf("%.1f", seconds)
	return pongo2.AsValue(strings.TrimSuffix(text, ".0")), nil
}
