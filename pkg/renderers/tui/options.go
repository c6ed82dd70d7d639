package tui

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-leadforms/pkg/engine"
)

// Theme holds the message prefixes used when printing to the terminal.
type Theme struct {
	SectionPrefix string
	InfoPrefix    string
	ErrorPrefix   string
}

// DefaultTheme is applied when no theme is configured.
var DefaultTheme = Theme{
	SectionPrefix: "==",
	InfoPrefix:    "✔",
	ErrorPrefix:   "✖",
}

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithEngineOptions forwards options to the engine created per session.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(r *Renderer) {
		r.engineOpts = append(r.engineOpts, opts...)
	}
}

// WithDownloader delivers the export after a successful submission.
func WithDownloader(d engine.Downloader) Option {
	return func(r *Renderer) {
		r.downloader = d
	}
}

// WithMaxAttempts caps how many failed submissions a session tolerates.
// Zero means no limit.
func WithMaxAttempts(n int) Option {
	return func(r *Renderer) {
		if n >= 0 {
			r.maxAttempts = n
		}
	}
}

// WithConfirm asks for confirmation before each submission.
func WithConfirm(enabled bool) Option {
	return func(r *Renderer) {
		r.confirm = enabled
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}

// WithLogger sets the logger for session events.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}
