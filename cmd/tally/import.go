package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/ledger"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/ofx"
)

// Import formats.
const (
	formatAuto = "auto"
	formatJSON = "json"
	formatOFX  = "ofx"
)

func importCmd(a *app) *cobra.Command {
	var (
		format   string
		category string
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "import <files...>",
		Short: "Import transactions from JSON or OFX/QFX files",
		Long: `Import transactions from files. JSON files hold an array of transactions in
the same layout tally stores them. OFX and QFX files are bank or credit card
statements; deposits become income and withdrawals become expenses.

Transactions whose id is already in the ledger are skipped, so importing the
same statement twice is harmless.`,
		Example: `  tally import backup.json
  tally import --category 2 ~/Downloads/checking_*.qfx
  tally import --dry-run statement.ofx --category 3`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			files, err := expandFiles(args)
			if err != nil {
				return err
			}

			l, closeLedger, err := a.openLedger(ctx)
			if err != nil {
				return err
			}
			defer closeLedger()

			bar := cli.NewProgressBar(cmd.ErrOrStderr(), len(files), "Reading files...")
			var (
				all    []model.Transaction
				failed int
			)
			for _, path := range files {
				txns, err := readTransactions(ctx, path, format, category)
				if err != nil {
					slog.Error("Failed to read file", "file", path, "error", err)
					failed++
				} else {
					all = append(all, txns...)
				}
				_ = bar.Add(1)
			}
			if failed == len(files) {
				return fmt.Errorf("no file could be read")
			}

			if dryRun {
				preview := previewImport(l, all)
				fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Dry run: %d new, %d already present, %d invalid",
					preview.added, preview.skipped, preview.invalid)))
				return nil
			}

			result, err := l.ImportTransactions(ctx, all)
			if err != nil {
				return fmt.Errorf("failed to import transactions: %w", err)
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d transaction(s)", len(result.Added))))
			if result.Skipped > 0 {
				fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("%d already present", result.Skipped)))
			}
			if result.Invalid > 0 {
				fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%d invalid record(s) ignored", result.Invalid)))
			}
			if failed > 0 {
				fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%d file(s) could not be read", failed)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", formatAuto, "file format (auto, json, ofx)")
	cmd.Flags().StringVar(&category, "category", "", "category id for records without one (required for OFX)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "preview the import without saving")

	return cmd
}

// expandFiles resolves glob patterns. A pattern without matches is kept when it names an existing file.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		if _, err := os.Stat(pattern); err == nil {
			files = append(files, pattern)
		} else {
			slog.Warn("No files found matching pattern", "pattern", pattern)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files found to import")
	}
	return files, nil
}

func detectFormat(path, format string) (string, error) {
	switch strings.ToLower(format) {
	case formatJSON:
		return formatJSON, nil
	case formatOFX:
		return formatOFX, nil
	case "", formatAuto:
		switch strings.ToLower(filepath.Ext(path)) {
		case ".ofx", ".qfx":
			return formatOFX, nil
		default:
			return formatJSON, nil
		}
	default:
		return "", fmt.Errorf("unknown format %q (want auto, json or ofx)", format)
	}
}

func readTransactions(ctx context.Context, path, format, category string) ([]model.Transaction, error) {
	format, err := detectFormat(path, format)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	if format == formatOFX {
		if category == "" {
			return nil, fmt.Errorf("--category is required for OFX files")
		}
		stmt, err := ofx.NewParser(category).Parse(ctx, f)
		if err != nil {
			return nil, err
		}
		slog.Debug("Parsed statement",
			"file", filepath.Base(path),
			"accounts", stmt.Accounts,
			"transactions", len(stmt.Transactions),
			"skipped", stmt.Skipped)
		return stmt.Transactions, nil
	}

	return decodeTransactions(f, category)
}

// decodeTransactions reads a JSON array of transactions. Records without a
// category are filed under category when one is given.
func decodeTransactions(r io.Reader, category string) ([]model.Transaction, error) {
	var txns []model.Transaction
	if err := json.NewDecoder(r).Decode(&txns); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}
	if category != "" {
		for i := range txns {
			if strings.TrimSpace(txns[i].Category) == "" {
				txns[i].Category = category
			}
		}
	}
	return txns, nil
}

// importPreview mirrors ledger.ImportResult for a dry run.
type importPreview struct {
	added   int
	skipped int
	invalid int
}

// previewImport counts what ImportTransactions would do without touching the ledger.
func previewImport(l *ledger.Ledger, txns []model.Transaction) importPreview {
	var preview importPreview
	seen := make(map[string]bool, len(txns))
	for _, txn := range txns {
		id := strings.TrimSpace(txn.ID)
		switch {
		case txn.Validate() != nil:
			preview.invalid++
		case id != "" && (seen[id] || hasTransaction(l, id)):
			preview.skipped++
		default:
			preview.added++
			if id != "" {
				seen[id] = true
			}
		}
	}
	return preview
}

func hasTransaction(l *ledger.Ledger, id string) bool {
	_, ok := l.Transaction(id)
	return ok
}
