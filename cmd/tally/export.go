package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/sheets"
)

func exportCmd(a *app) *cobra.Command {
	var (
		flags    filterFlags
		output   string
		title    string
		toSheets bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export transactions as JSON or to Google Sheets",
		Long: `Export the transactions matching the filter. By default the JSON array is
written to stdout; --output writes it to a file instead. The JSON layout is the
one 'tally import' reads.

With --sheets a report with the summary, the per-category breakdown and every
matching transaction is written to the configured Google spreadsheet.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			filter, err := flags.filter()
			if err != nil {
				return err
			}

			l, closeLedger, err := a.openLedger(ctx)
			if err != nil {
				return err
			}
			defer closeLedger()

			txns := l.Transactions(filter)

			if toSheets {
				exporter, err := a.newExporter(ctx, a.cfg.Sheets)
				if err != nil {
					return fmt.Errorf("failed to initialize sheets writer: %w", err)
				}
				report := sheets.NewReport(title, filter, txns, l.CategoryBreakdown(filter), l.CategoryName)
				if err := exporter.Write(ctx, report); err != nil {
					if common.IsRetryable(err) {
						return common.NewUserError("Google Sheets is not accepting writes right now; try again in a few minutes", err)
					}
					return fmt.Errorf("failed to export to sheets: %w", err)
				}
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Exported %d transaction(s) to Google Sheets", len(txns))))
				if output == "" {
					return nil
				}
			}

			if output == "" {
				return writeJSON(out, txns)
			}

			var buf bytes.Buffer
			if err := writeJSON(&buf, txns); err != nil {
				return err
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o600); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Exported %d transaction(s) to %s", len(txns), output)))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write JSON to this file instead of stdout")
	cmd.Flags().BoolVar(&toSheets, "sheets", false, "write a report to Google Sheets")
	cmd.Flags().StringVar(&title, "title", "Tally Report", "report title for --sheets")

	return cmd
}
