package formserver

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-leadforms/pkg/forms"
	"github.com/goliatone/go-leadforms/pkg/renderers/vanilla"
	"github.com/goliatone/go-leadforms/pkg/themes"
)

// Component wires the form pages, the JSON API and the session janitor.
type Component struct {
	opts     Options
	renderer *vanilla.Renderer
	sessions *sessionStore
	limiter  *ipLimiter

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	started bool
}

// New constructs a component with default options plus any overrides. The
// built-in catalog and the vanilla renderer are used when none are given.
func New(fns ...OptionFn) (*Component, error) {
	opts := NewOptions(fns...)
	if opts.Source == nil {
		catalog, err := forms.Builtin()
		if err != nil {
			return nil, fmt.Errorf("formserver: %w", err)
		}
		opts.Source = forms.NewSource(catalog)
	}
	renderer := opts.Renderer
	if renderer == nil {
		var err error
		if renderer, err = vanilla.New(); err != nil {
			return nil, fmt.Errorf("formserver: renderer: %w", err)
		}
	}
	if opts.Theme == nil {
		selector, err := themes.NewSelector()
		if err != nil {
			return nil, fmt.Errorf("formserver: theme: %w", err)
		}
		if opts.Theme, err = selector.Resolve(themes.DefaultTheme, ""); err != nil {
			return nil, fmt.Errorf("formserver: theme: %w", err)
		}
	}
	return &Component{
		opts:     opts,
		renderer: renderer,
		sessions: newSessionStore(opts.SessionTTL, opts.Now),
		limiter:  newIPLimiter(opts.RateLimit, opts.RateBurst, opts.Now),
	}, nil
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	return NewOptions(func(o *Options) { *o = c.opts })
}

// Handler serves every route from the root path.
func (c *Component) Handler() http.Handler {
	return c.handlerFor("")
}

// RegisterRoutes mounts the component under basePath on mux and returns the
// registered pattern.
func (c *Component) RegisterRoutes(mux Mux, basePath string) (string, error) {
	if mux == nil {
		return "", fmt.Errorf("formserver: missing mux")
	}
	base := normaliseBase(basePath)
	pattern := mountPath(base, "/")
	if base == "" {
		mux.Handle(pattern, c.handlerFor(""))
		return pattern, nil
	}
	mux.Handle(pattern, http.StripPrefix(base, c.handlerFor(base)))
	return pattern, nil
}

// Start launches the janitor that evicts idle sessions and rate-limit
// entries. It returns immediately; call Stop to end it.
func (c *Component) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return
	}
	c.started = true
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	go c.janitor(ctx, c.stop, c.done)
}

// Stop ends the janitor and waits for it to exit. Safe to call repeatedly.
func (c *Component) Stop() {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	c.started = false
	stop, done := c.stop, c.done
	c.mu.Unlock()

	close(stop)
	<-done
}

// Sweep evicts idle sessions now and reports how many were removed.
func (c *Component) Sweep() int {
	c.limiter.sweep()
	return c.sessions.sweep()
}

func (c *Component) janitor(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := newTicker(c.opts.JanitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			if removed := c.Sweep(); removed > 0 {
				c.opts.Logger.Debug("sessions evicted", zap.Int("count", removed))
			}
		}
	}
}

func (c *Component) handlerFor(base string) http.Handler {
	srv := &server{
		opts:     c.opts,
		base:     base,
		renderer: c.renderer,
		theme:    themeForBase(c.opts.Theme, base),
		sessions: c.sessions,
		limiter:  c.limiter,
		logger:   c.opts.Logger,
	}
	return srv.routes()
}

// themeForBase prefixes asset URLs with the mount base.
func themeForBase(cfg *theme.RendererConfig, base string) *theme.RendererConfig {
	if cfg == nil || base == "" || cfg.AssetURL == nil {
		return cfg
	}
	clone := *cfg
	assetURL := cfg.AssetURL
	clone.AssetURL = func(key string) string {
		url := assetURL(key)
		if strings.HasPrefix(url, "/") {
			return base + url
		}
		return url
	}
	return &clone
}
