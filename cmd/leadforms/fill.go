package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-leadforms/pkg/download"
	"github.com/goliatone/go-leadforms/pkg/engine"
	"github.com/goliatone/go-leadforms/pkg/render"
	"github.com/goliatone/go-leadforms/pkg/renderers/tui"
)

func (a *app) fillCmd() *cobra.Command {
	var (
		prefill map[string]string
		confirm bool
	)
	cmd := &cobra.Command{
		Use:   "fill <form>",
		Short: "Complete a form in the terminal and save its export",
		Long: `Prompts for every field of the form, re-prompts the fields that fail
validation and writes the accepted submission to --export-dir as
<prefix>-<name>-<epoch ms>.json.

Example:
  leadforms fill lost --set tenderName="Radar upgrade"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := a.lookupForm(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			writer := download.NewDirWriter(a.cfg.ExportDir,
				download.WithDirLogger(a.logger),
				download.WithOnWritten(func(path string) {
					fmt.Fprintf(out, "Saved %s\n", path)
				}),
			)

			options := []tui.Option{
				tui.WithEngineOptions(engine.WithLogger(a.logger)),
				tui.WithDownloader(writer),
				tui.WithConfirm(confirm),
				tui.WithLogger(a.logger),
			}
			driver := a.driver
			if driver == nil {
				driver = tui.NewSurveyDriver(out)
			}
			options = append(options, tui.WithPromptDriver(driver))

			renderer, err := tui.New(options...)
			if err != nil {
				return err
			}
			values := make(map[string]any, len(prefill))
			for name, value := range prefill {
				values[name] = value
			}
			if _, err := renderer.Render(cmd.Context(), form, render.RenderOptions{Values: values}); err != nil {
				if errors.Is(err, tui.ErrAborted) {
					fmt.Fprintln(cmd.ErrOrStderr(), "Aborted")
				}
				return err
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&a.flags.exportDir, "export-dir", "", "directory that receives exported files")
	flags.StringToStringVar(&prefill, "set", nil, "pre-fill a field (name=value), repeatable")
	flags.BoolVar(&confirm, "confirm", false, "ask before submitting; declining resets the form")
	return cmd
}
