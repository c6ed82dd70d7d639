package formserver

import (
	"net/http"
	"time"

	"github.com/goliatone/go-theme"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/goliatone/go-leadforms/pkg/engine"
	"github.com/goliatone/go-leadforms/pkg/forms"
	"github.com/goliatone/go-leadforms/pkg/renderers/vanilla"
)

// GuardFunc may reject a request before it reaches a handler. Errors that
// implement HTTPError choose the status code; others yield 403.
type GuardFunc func(r *http.Request) error

type Options struct {
	Source          *forms.Source
	Renderer        *vanilla.Renderer
	Theme           *theme.RendererConfig
	Logger          *zap.Logger
	EngineOptions   []engine.Option
	SessionTTL      time.Duration
	JanitorInterval time.Duration
	CookieName      string
	SecureCookie    bool
	RateLimit       rate.Limit
	RateBurst       int
	MaxBodyBytes    int64
	APITitle        string
	Guard           GuardFunc
	Now             func() time.Time
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		SessionTTL:      30 * time.Minute,
		JanitorInterval: time.Minute,
		CookieName:      "leadforms_session",
		RateLimit:       5,
		RateBurst:       20,
		MaxBodyBytes:    1 << 20,
		APITitle:        "Lead Forms API",
		Logger:          zap.NewNop(),
		Now:             time.Now,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	defaults := DefaultOptions()
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = defaults.SessionTTL
	}
	if opts.JanitorInterval <= 0 {
		opts.JanitorInterval = defaults.JanitorInterval
	}
	if opts.CookieName == "" {
		opts.CookieName = defaults.CookieName
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = defaults.RateBurst
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaults.MaxBodyBytes
	}
	if opts.APITitle == "" {
		opts.APITitle = defaults.APITitle
	}
	if opts.Logger == nil {
		opts.Logger = defaults.Logger
	}
	if opts.Now == nil {
		opts.Now = defaults.Now
	}
	if opts.EngineOptions != nil {
		opts.EngineOptions = append([]engine.Option{}, opts.EngineOptions...)
	}
	return opts
}

// WithSource serves the catalog held by source; swaps are picked up on the
// next request.
func WithSource(source *forms.Source) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Source = source
	}
}

// WithCatalog serves a fixed catalog.
func WithCatalog(catalog *forms.Catalog) OptionFn {
	return func(o *Options) {
		if o == nil || catalog == nil {
			return
		}
		o.Source = forms.NewSource(catalog)
	}
}

func WithRenderer(renderer *vanilla.Renderer) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Renderer = renderer
	}
}

func WithTheme(cfg *theme.RendererConfig) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Theme = cfg
	}
}

func WithLogger(logger *zap.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}

func WithEngineOptions(opts ...engine.Option) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.EngineOptions = append(o.EngineOptions, opts...)
	}
}

func WithSessionTTL(ttl time.Duration) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.SessionTTL = ttl
	}
}

func WithJanitorInterval(interval time.Duration) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.JanitorInterval = interval
	}
}

func WithCookie(name string, secure bool) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.CookieName = name
		o.SecureCookie = secure
	}
}

// WithRateLimit limits mutating requests per client IP. A zero limit
// disables limiting.
func WithRateLimit(perSecond float64, burst int) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RateLimit = rate.Limit(perSecond)
		o.RateBurst = burst
	}
}

func WithMaxBodyBytes(n int64) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MaxBodyBytes = n
	}
}

func WithAPITitle(title string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.APITitle = title
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

// WithNow overrides the clock used for session expiry.
func WithNow(now func() time.Time) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Now = now
	}
}
