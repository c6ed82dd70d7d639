package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-leadforms/components/formserver"
	"github.com/goliatone/go-leadforms/pkg/engine"
	"github.com/goliatone/go-leadforms/pkg/forms"
	"github.com/goliatone/go-leadforms/pkg/themes"
)

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the forms over HTTP",
		Long: `Serves every form on its own route, the JSON submission API and the
OpenAPI description at /openapi.json. With --watch, definitions in
--forms-dir are reloaded when they change.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			listener, err := net.Listen("tcp", a.cfg.Addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", a.cfg.Addr, err)
			}
			return a.serve(cmd.Context(), listener)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&a.flags.addr, "addr", "", "listen address")
	flags.BoolVar(&a.flags.watch, "watch", false, "reload --forms-dir definitions on change")
	flags.StringVar(&a.flags.theme, "theme", "", "theme name")
	flags.StringVar(&a.flags.variant, "variant", "", "theme variant (light or dark)")
	return cmd
}

// serve runs until ctx ends, then drains in-flight requests for at most
// the configured shutdown grace.
func (a *app) serve(ctx context.Context, listener net.Listener) error {
	cfg := a.cfg
	source := forms.NewSource(a.catalog)

	if cfg.Watch {
		if cfg.FormsDir == "" {
			_ = listener.Close()
			return errors.New("--watch needs --forms-dir")
		}
		watcher, err := forms.NewWatcher(cfg.FormsDir, a.builtin, source, forms.WithWatcherLogger(a.logger))
		if err != nil {
			_ = listener.Close()
			return err
		}
		if err := watcher.Start(ctx); err != nil {
			_ = listener.Close()
			return err
		}
		defer watcher.Stop()
	}

	selector, err := themes.NewSelector()
	if err != nil {
		_ = listener.Close()
		return err
	}
	themeCfg, err := selector.Resolve(cfg.Theme, cfg.Variant)
	if err != nil {
		_ = listener.Close()
		return fmt.Errorf("theme: %w", err)
	}

	component, err := formserver.New(
		formserver.WithSource(source),
		formserver.WithTheme(themeCfg),
		formserver.WithLogger(a.logger),
		formserver.WithEngineOptions(
			engine.WithRetainSnapshotOnFailure(cfg.RetainSnapshotOnFailure),
			engine.WithLogger(a.logger),
		),
		formserver.WithSessionTTL(cfg.SessionTTL.Std()),
		formserver.WithRateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
	)
	if err != nil {
		_ = listener.Close()
		return err
	}
	component.Start(ctx)
	defer component.Stop()

	srv := &http.Server{
		Handler:           component.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(a.logger.Named("http")),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()
	a.logger.Info("serving forms",
		zap.String("addr", listener.Addr().String()),
		zap.Int("forms", a.catalog.Len()),
		zap.String("theme", cfg.Theme))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace.Std())
	defer cancel()
	a.logger.Info("shutting down", zap.Duration("grace", cfg.ShutdownGrace.Std()))
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
