package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-leadforms/internal/config"
	"github.com/goliatone/go-leadforms/internal/logging"
	"github.com/goliatone/go-leadforms/pkg/forms"
	"github.com/goliatone/go-leadforms/pkg/model"
	"github.com/goliatone/go-leadforms/pkg/renderers/tui"
)

// app carries state shared by every subcommand. It is populated by the
// root command's PersistentPreRunE.
type app struct {
	configPath string
	flags      flagValues

	cfg     *config.Config
	logger  *zap.Logger
	level   zap.AtomicLevel
	builtin *forms.Catalog
	catalog *forms.Catalog

	// driver replaces the survey prompts in tests.
	driver tui.PromptDriver
}

// flagValues mirror config keys; a flag only wins when it was set.
type flagValues struct {
	addr      string
	formsDir  string
	watch     bool
	exportDir string
	theme     string
	variant   string
	logLevel  string
	logFormat string
}

func newApp() *app {
	return &app{logger: zap.NewNop()}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "leadforms",
		Short: "Lead and tender capture forms",
		Long: `leadforms serves six lead/tender capture forms, validates submissions
and exports each accepted submission as a JSON file.

Run "leadforms serve" for the browser forms or "leadforms fill <form>" to
complete a form in the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", os.Getenv(config.EnvPrefix+"CONFIG"), "YAML config file")
	pf.StringVar(&a.flags.formsDir, "forms-dir", "", "directory of extra or overriding form definitions")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&a.flags.logFormat, "log-format", "", "json or console")

	root.AddCommand(
		a.serveCmd(),
		a.fillCmd(),
		a.listCmd(),
		a.schemaCmd(),
		a.verifyCmd(),
		a.openapiCmd(),
		a.importCmd(),
	)
	return root
}

// setup resolves configuration as defaults, file, environment, then flags,
// and loads the catalog.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	override := func(name string, apply func()) {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			apply()
		}
	}
	override("addr", func() { cfg.Addr = a.flags.addr })
	override("forms-dir", func() { cfg.FormsDir = a.flags.formsDir })
	override("watch", func() { cfg.Watch = a.flags.watch })
	override("export-dir", func() { cfg.ExportDir = a.flags.exportDir })
	override("theme", func() { cfg.Theme = a.flags.theme })
	override("variant", func() { cfg.Variant = a.flags.variant })
	override("log-level", func() { cfg.LogLevel = a.flags.logLevel })
	override("log-format", func() { cfg.LogFormat = a.flags.logFormat })
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, level, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	a.cfg, a.logger, a.level = cfg, logger, level

	if a.builtin, err = forms.Builtin(); err != nil {
		return err
	}
	a.catalog = a.builtin
	if cfg.FormsDir != "" {
		custom, err := forms.LoadFS(os.DirFS(cfg.FormsDir))
		if err != nil {
			return fmt.Errorf("load %s: %w", cfg.FormsDir, err)
		}
		if a.catalog, err = a.builtin.Merge(custom); err != nil {
			return err
		}
		a.logger.Debug("custom forms loaded", zap.String("dir", cfg.FormsDir), zap.Int("forms", custom.Len()))
	}
	return nil
}

// lookupForm accepts a form id or its route.
func (a *app) lookupForm(ref string) (model.Form, error) {
	if form, err := a.catalog.Get(ref); err == nil {
		return form, nil
	}
	form, err := a.catalog.ByRoute(ref)
	if err != nil {
		return model.Form{}, fmt.Errorf("%w: %q (known: %v)", forms.ErrFormNotFound, ref, a.catalog.IDs())
	}
	return form, nil
}
