package forms

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-leadforms/pkg/model"
)

// DefaultFlashMillis is used when a definition does not say how long the
// success notice stays visible.
const DefaultFlashMillis = 5000

// LoadOption configures LoadFS.
type LoadOption func(*loadConfig)

type loadConfig struct {
	decorators []model.Decorator
}

func newLoadConfig(opts ...LoadOption) loadConfig {
	cfg := loadConfig{
		decorators: []model.Decorator{
			model.DecoratorFunc(applyDefaults),
			model.DecoratorFunc(sanitizeIcons),
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithDecorators appends decorators that run after the built-in defaults.
func WithDecorators(decorators ...model.Decorator) LoadOption {
	return func(cfg *loadConfig) {
		cfg.decorators = append(cfg.decorators, decorators...)
	}
}

// applyDefaults fills labels, required messages, the filename prefix and the
// notice duration left blank by a definition.
func applyDefaults(form *model.Form) error {
	if form.Title == "" {
		form.Title = model.DefaultLabeler(form.ID)
	}
	if form.Filename.Prefix == "" {
		form.Filename.Prefix = form.ID
	}
	if form.FlashMillis <= 0 {
		form.FlashMillis = DefaultFlashMillis
	}
	if form.SuccessMessage == "" {
		form.SuccessMessage = form.Title + " submitted successfully!"
	}
	for i := range form.Fields {
		field := &form.Fields[i]
		if field.Kind == "" {
			field.Kind = model.FieldKindText
		}
		if field.Label == "" {
			field.Label = model.DefaultLabeler(field.Name)
		}
		if field.Required && field.RequiredMessage == "" {
			field.RequiredMessage = model.DefaultRequiredMessage(field.Label)
		}
		if field.Kind == model.FieldKindMultiline && field.Rows <= 0 {
			field.Rows = 2
		}
	}
	return nil
}

func sanitizeIcons(form *model.Form) error {
	for i := range form.Sections {
		form.Sections[i].Icon = SanitizeIcon(form.Sections[i].Icon)
	}
	return nil
}

var (
	iconPolicyOnce sync.Once
	iconPolicy     *bluemonday.Policy
)

// SanitizeIcon keeps plain text (emoji) and a safe SVG subset. Renderers
// call it again before emitting icons unescaped.
func SanitizeIcon(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(iconSanitizer().Sanitize(trimmed))
}

func iconSanitizer() *bluemonday.Policy {
	iconPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("svg", "g", "path", "circle", "rect", "line", "polyline", "polygon", "title")
		policy.AllowAttrs(
			"xmlns", "viewBox", "width", "height", "fill", "stroke",
			"stroke-width", "stroke-linecap", "stroke-linejoin", "aria-hidden", "role",
		).OnElements("svg")
		for _, el := range []string{"path", "circle", "rect", "line", "polyline", "polygon"} {
			policy.AllowAttrs(
				"d", "cx", "cy", "r", "x", "y", "x1", "y1", "x2", "y2",
				"points", "rx", "ry", "fill", "stroke", "stroke-width",
			).OnElements(el)
		}
		iconPolicy = policy
	})
	return iconPolicy
}
