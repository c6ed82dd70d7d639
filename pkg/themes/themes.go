// Package themes holds the go-theme manifests used by the HTML renderer and a
// selector that turns a theme/variant pair into renderer configuration.
package themes

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
)

// DefaultTheme is the built-in manifest name.
const DefaultTheme = "leadforms"

// ErrThemeNotFound is returned when a theme or variant is not registered.
var ErrThemeNotFound = errors.New("themes: theme not found")

// Stylesheet is the asset key of the main stylesheet.
const Stylesheet = "stylesheet"

// Manifest returns the built-in manifest with light (default) and dark
// variants. Tokens become CSS custom properties on the page root.
func Manifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultTheme,
		Version: "1.0.0",
		Tokens: map[string]string{
			"color-primary":      "#1976d2",
			"color-success":      "#2e7d32",
			"color-error":        "#d32f2f",
			"color-surface":      "#ffffff",
			"color-background":   "#f5f7fa",
			"color-text":         "#1f2933",
			"color-muted":        "#616e7c",
			"color-border":       "#d9e2ec",
			"color-sidebar":      "#102a43",
			"color-sidebar-text": "#f0f4f8",
			"color-preview-bg":   "#1e1e1e",
			"color-preview-text": "#d4d4d4",
			"radius":             "8px",
			"font-family":        "Roboto, Helvetica, Arial, sans-serif",
		},
		Assets: theme.Assets{
			Prefix: "/assets",
			Files: map[string]string{
				Stylesheet: "leadforms.css",
			},
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					"color-primary":    "#90caf9",
					"color-surface":    "#1f2933",
					"color-background": "#121212",
					"color-text":       "#e4e7eb",
					"color-muted":      "#9aa5b1",
					"color-border":     "#323f4b",
					"color-sidebar":    "#0b1622",
				},
			},
		},
	}
}

type manifestRegistry interface {
	Register(*theme.Manifest) error
}

// Selector resolves theme/variant names against registered manifests. It
// satisfies theme.ThemeSelector.
type Selector struct {
	mu             sync.RWMutex
	registry       manifestRegistry
	manifests      map[string]*theme.Manifest
	defaultTheme   string
	defaultVariant string
}

var _ theme.ThemeSelector = (*Selector)(nil)

// NewSelector builds a selector with the built-in manifest registered plus
// any extras.
func NewSelector(extra ...*theme.Manifest) (*Selector, error) {
	s := &Selector{
		registry:     theme.NewRegistry(),
		manifests:    make(map[string]*theme.Manifest),
		defaultTheme: DefaultTheme,
	}
	for _, manifest := range append([]*theme.Manifest{Manifest()}, extra...) {
		if err := s.Register(manifest); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Register validates the manifest through go-theme and makes it selectable.
func (s *Selector) Register(manifest *theme.Manifest) error {
	if manifest == nil || strings.TrimSpace(manifest.Name) == "" {
		return errors.New("themes: manifest name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.registry.Register(manifest); err != nil {
		return fmt.Errorf("themes: register %q: %w", manifest.Name, err)
	}
	s.manifests[manifest.Name] = manifest
	return nil
}

// SetDefaults changes the theme and variant used when Select receives empty
// names.
func (s *Selector) SetDefaults(name, variant string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name != "" {
		s.defaultTheme = name
	}
	s.defaultVariant = variant
}

// Names lists registered themes.
func (s *Selector) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.manifests))
	for name := range s.manifests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select implements theme.ThemeSelector.
func (s *Selector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if name == "" {
		name = s.defaultTheme
		if variant == "" {
			variant = s.defaultVariant
		}
	}
	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrThemeNotFound, name)
	}
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("%w: %q has no variant %q", ErrThemeNotFound, name, variant)
		}
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// RendererConfig flattens a selection into the configuration renderers read:
// variant tokens override base tokens, each token is exposed as a "--name"
// CSS variable and AssetURL resolves asset keys under the manifest prefix.
func RendererConfig(selection *theme.Selection) *theme.RendererConfig {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	manifest := selection.Manifest
	variant := manifest.Variants[selection.Variant]

	tokens := mergeStrings(manifest.Tokens, variant.Tokens)
	partials := mergeStrings(manifest.Templates, variant.Templates)
	files := mergeStrings(manifest.Assets.Files, variant.Assets.Files)
	prefix := manifest.Assets.Prefix
	if variant.Assets.Prefix != "" {
		prefix = variant.Assets.Prefix
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+key] = value
	}

	return &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok || file == "" {
				return ""
			}
			return strings.TrimSuffix(prefix, "/") + "/" + strings.TrimPrefix(file, "/")
		},
	}
}

// Resolve selects and flattens in one step.
func (s *Selector) Resolve(name, variant string) (*theme.RendererConfig, error) {
	selection, err := s.Select(name, variant)
	if err != nil {
		return nil, err
	}
	return RendererConfig(selection), nil
}

// CSSVarsStyle renders CSS variables as a sorted declaration list suitable
// for a style attribute.
func CSSVarsStyle(cfg *theme.RendererConfig) string {
	if cfg == nil || len(cfg.CSSVars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(cfg.CSSVars))
	for key := range cfg.CSSVars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(cfg.CSSVars[key])
		b.WriteByte(';')
	}
	return b.String()
}

func mergeStrings(base, override map[string]string) map[string]string {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(override))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range override {
		out[key] = value
	}
	return out
}
