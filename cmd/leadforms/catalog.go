package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-leadforms/pkg/forms"
	"github.com/goliatone/go-leadforms/pkg/openapi"
	"github.com/goliatone/go-leadforms/pkg/schema"
)

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available forms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tROUTE\tFIELDS\tREQUIRED\tTITLE")
			for _, form := range a.catalog.List() {
				required := 0
				for _, field := range form.Fields {
					if field.Required {
						required++
					}
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", form.ID, form.Route, len(form.Fields), required, form.Title)
			}
			return tw.Flush()
		},
	}
}

func (a *app) schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema <form>",
		Short: "Print the JSON Schema of a form's export file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := a.lookupForm(args[0])
			if err != nil {
				return err
			}
			data, err := schema.Marshal(form)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}

func (a *app) verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <form> <file|->",
		Short: "Check an exported file against the form's schema",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := a.lookupForm(args[0])
			if err != nil {
				return err
			}
			data, err := readInput(cmd.InOrStdin(), args[1])
			if err != nil {
				return err
			}
			result, err := schema.Validate(form, data)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if result.Valid {
				fmt.Fprintf(out, "%s: valid %s export\n", args[1], form.ID)
				return nil
			}
			for _, issue := range result.Issues {
				location := issue.Field
				if location == "" {
					location = issue.Path
				}
				fmt.Fprintf(out, "%s: %s\n", location, issue.Message)
			}
			return fmt.Errorf("%s: %d issue(s)", args[1], len(result.Issues))
		},
	}
}

func (a *app) openapiCmd() *cobra.Command {
	var title, serverURL string
	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Print the OpenAPI document of the submission API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := []openapi.DescribeOption{}
			if title != "" {
				opts = append(opts, openapi.WithTitle(title))
			}
			if serverURL != "" {
				opts = append(opts, openapi.WithServerURL(serverURL))
			}
			doc, err := openapi.Describe(cmd.Context(), a.catalog, opts...)
			if err != nil {
				return err
			}
			data, err := openapi.MarshalDocument(doc)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "document title")
	cmd.Flags().StringVar(&serverURL, "server-url", "", "server URL advertised in the document")
	return cmd
}

func (a *app) importCmd() *cobra.Command {
	var (
		outPath   string
		allowHTTP bool
		timeout   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "import <file|url>",
		Short: "Convert an OpenAPI document into form definitions",
		Long: `Reads an OpenAPI 3 document and writes one form definition per
operation with a JSON object request body. Documents produced by
"leadforms openapi" convert back to the exact definitions.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := openapi.ParseSource(args[0])
			if err != nil {
				return err
			}
			var loaderOpts []openapi.LoaderOption
			if allowHTTP {
				loaderOpts = append(loaderOpts, openapi.WithHTTPFallback(timeout))
			}
			catalog, err := openapi.ImportSource(cmd.Context(), openapi.NewLoader(loaderOpts...), src)
			if err != nil {
				return err
			}
			data, err := forms.MarshalYAML(catalog.List())
			if err != nil {
				return err
			}
			if outPath == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			a.logger.Info("forms imported", zap.String("out", outPath), zap.Strings("forms", catalog.IDs()))
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d form(s) to %s\n", catalog.Len(), outPath)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&outPath, "out", "o", "", "write definitions here instead of stdout")
	flags.BoolVar(&allowHTTP, "allow-http", false, "allow http(s) sources")
	flags.DurationVar(&timeout, "timeout", 30*time.Second, "timeout for http(s) sources")
	return cmd
}

func readInput(stdin io.Reader, name string) ([]byte, error) {
	if strings.TrimSpace(name) == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}
