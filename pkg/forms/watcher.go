package forms

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher reloads definitions from a directory whenever a file in it
// changes. Reloaded forms are merged over a base catalog and published to a
// Source. A reload that fails keeps the previous catalog active.
type Watcher struct {
	dir      string
	base     *Catalog
	source   *Source
	logger   *zap.Logger
	debounce time.Duration
	onReload func(*Catalog, error)

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the logger used for reload events.
func WithWatcherLogger(logger *zap.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithDebounce sets how long the watcher waits for writes to settle.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithReloadHook registers a callback invoked after every reload attempt.
func WithReloadHook(fn func(*Catalog, error)) WatcherOption {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// NewWatcher builds a watcher for dir. Call Reload once to publish the
// initial merged catalog, then Start to follow changes.
func NewWatcher(dir string, base *Catalog, source *Source, opts ...WatcherOption) (*Watcher, error) {
	if dir == "" {
		return nil, errors.New("forms: watch directory is required")
	}
	if source == nil {
		return nil, errors.New("forms: source is required")
	}
	w := &Watcher{
		dir:      dir,
		base:     base,
		source:   source,
		logger:   zap.NewNop(),
		debounce: defaultDebounce,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w, nil
}

// Reload parses the directory, merges it over the base catalog and publishes
// the result.
func (w *Watcher) Reload() (*Catalog, error) {
	catalog, err := w.load()
	if err != nil {
		w.logger.Warn("forms reload failed, keeping previous catalog",
			zap.String("dir", w.dir), zap.Error(err))
	} else {
		w.source.Store(catalog)
		w.logger.Info("forms reloaded",
			zap.String("dir", w.dir), zap.Int("forms", catalog.Len()))
	}
	if w.onReload != nil {
		w.onReload(catalog, err)
	}
	return catalog, err
}

func (w *Watcher) load() (*Catalog, error) {
	custom, err := LoadFS(os.DirFS(w.dir))
	if err != nil {
		return nil, err
	}
	base := w.base
	if base == nil {
		base = NewCatalog()
	}
	return base.Merge(custom)
}

// Start begins watching. It returns once the directory is registered; events
// are processed in a goroutine until ctx ends or Stop is called. Either way
// the watcher can be started again afterwards.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("forms: create watcher: %w", err)
	}
	if err := watcher.Add(w.dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("forms: watch %s: %w", w.dir, err)
	}

	w.watcher = watcher
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.running = true
	go w.run(ctx, watcher, w.stopCh, w.doneCh)
	return nil
}

// Stop ends the event loop and waits for it to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.running {
		w.running = false
		close(w.stopCh)
	}
	done := w.doneCh
	w.mu.Unlock()

	if done != nil {
		<-done
	}
}

// release closes watcher and, when the loop exited on its own, marks the
// watcher stopped so a later Start registers the directory again.
func (w *Watcher) release(watcher *fsnotify.Watcher) {
	w.mu.Lock()
	if w.watcher == watcher {
		w.watcher = nil
		w.running = false
	}
	w.mu.Unlock()

	if err := watcher.Close(); err != nil {
		w.logger.Warn("close forms watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context, watcher *fsnotify.Watcher, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer w.release(watcher)

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !isDefinitionFile(event.Name) {
				continue
			}
			w.logger.Debug("forms change detected",
				zap.String("path", event.Name), zap.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			pending = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("forms watcher error", zap.Error(err))
		case <-pending:
			pending = nil
			_, _ = w.Reload()
		}
	}
}
