package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/propimport/internal/application"
	"github.com/JonMunkholm/propimport/internal/core"
	"github.com/JonMunkholm/propimport/internal/i18n"
)

type loadOptions struct {
	file            string
	encoding        string
	strictHouseRoom bool
	dryRun          bool
}

// importRunner is the part of *core.Importer the load command needs.
type importRunner interface {
	RunEncoded(ctx context.Context, src io.Reader, encoding string) (*core.ImportResult, error)
	Preview(ctx context.Context, src io.Reader, encoding string) (*core.PreviewResponse, error)
	Locale() *i18n.Locale
}

func newLoadCmd(global *globalOptions) *cobra.Command {
	var opts loadOptions

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Import a property CSV file",
		Long: "Validates every row of the file, then upserts the valid rows in one transaction.\n" +
			"Invalid rows are reported and skipped; any database failure rolls the whole file back.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("strict-house-room") {
				cfg.Import.StrictHouseRoom = opts.strictHouseRoom
			}
			if opts.encoding == "" {
				opts.encoding = cfg.Import.SourceEncoding
			}

			f, err := os.Open(opts.file)
			if err != nil {
				return withCode(exitUsage, err)
			}
			defer f.Close()

			app, err := application.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Import.Timeout)
			defer cancel()

			if opts.dryRun {
				return runPreview(ctx, app.Importer, f, opts.encoding, cfg.Diagnostic(), cmd.OutOrStdout())
			}
			return runLoad(ctx, app.Importer, f, opts.encoding, cfg.Diagnostic(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "CSV file to import (required)")
	cmd.Flags().StringVar(&opts.encoding, "encoding", "", "Source character set, e.g. utf-8 or shift_jis (default: IMPORT_SOURCE_ENCODING)")
	cmd.Flags().BoolVar(&opts.strictHouseRoom, "strict-house-room", false, "Reject house rows that carry a room number")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Validate the file and report what would be written, without writing")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// fatal wraps a pipeline failure for the exit path.
func fatal(err error, locale *i18n.Locale, diagnostic bool) error {
	msg := core.FatalMessage(err, locale, diagnostic) + "\n" + core.FormatUserError(err)
	return withCode(exitFatal, errors.New(msg))
}

// runLoad imports src and prints the summary to out. A fatal failure is
// returned as the localized message naming the failed operation.
func runLoad(ctx context.Context, imp importRunner, src io.Reader, encoding string, diagnostic bool, out io.Writer) error {
	result, err := imp.RunEncoded(ctx, src, encoding)
	if err != nil {
		return fatal(err, imp.Locale(), diagnostic)
	}

	_, err = fmt.Fprintln(out, result.String())
	return err
}

// runPreview validates src and prints what a load would do. A key repeated
// within one write batch makes a load fail, so it exits non-zero.
func runPreview(ctx context.Context, imp importRunner, src io.Reader, encoding string, diagnostic bool, out io.Writer) error {
	resp, err := imp.Preview(ctx, src, encoding)
	if err != nil {
		return fatal(err, imp.Locale(), diagnostic)
	}

	sum := resp.Summary
	fmt.Fprintf(out, "rows: %d, valid: %d, errors: %d, duplicate keys: %d\n",
		sum.TotalRows, sum.ValidRows, sum.ErrorRows, sum.DuplicateInBatch)
	for _, e := range resp.ErrorSamples {
		fmt.Fprintf(out, "  line %d: %s\n", e.LineNumber, e.Message)
	}
	for _, d := range resp.DuplicateSamples {
		fmt.Fprintf(out, "  duplicate key %q in batch %d on lines %v\n", d.RowKey, d.Batch, d.LineNumbers)
	}

	if resp.HasDuplicates() {
		return withCode(exitFatal, fmt.Errorf("%d rows repeat a key already used in the same batch", sum.DuplicateInBatch))
	}
	return nil
}
