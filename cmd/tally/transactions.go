package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/ledger"
	"github.com/Veraticus/tally/internal/model"
)

func transactionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transactions"},
		Short:   "Manage income and expense transactions",
		Long:    `Add, list, show, update and delete ledger transactions.`,
	}

	cmd.AddCommand(addTransactionCmd(a))
	cmd.AddCommand(listTransactionsCmd(a))
	cmd.AddCommand(showTransactionCmd(a))
	cmd.AddCommand(updateTransactionCmd(a))
	cmd.AddCommand(deleteTransactionCmd(a))

	return cmd
}

func addTransactionCmd(a *app) *cobra.Command {
	var (
		id          string
		date        string
		txType      string
		category    string
		description string
		amount      float64
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Example: `  tally tx add --type income --category 1 --amount 2500 --description "March salary"
  tally tx add --type expense --category 2 --amount 42.10 --date 2024-03-02`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			txn, err := buildTransaction(id, date, txType, category, description, amount)
			if err != nil {
				return err
			}

			l, closeLedger, err := a.openLedger(ctx)
			if err != nil {
				return err
			}
			defer closeLedger()

			added, err := l.AddTransaction(ctx, txn)
			if err != nil {
				return fmt.Errorf("failed to add transaction: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s of %.2f (ID: %s)", added.Type, added.Amount, added.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "transaction id (generated when empty)")
	cmd.Flags().StringVar(&date, "date", "", "transaction date, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&txType, "type", "", "income or expense")
	cmd.Flags().StringVar(&category, "category", "", "category id")
	cmd.Flags().Float64Var(&amount, "amount", 0, "positive amount")
	cmd.Flags().StringVar(&description, "description", "", "free-form description")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func buildTransaction(id, date, txType, category, description string, amount float64) (model.Transaction, error) {
	parsedType, err := model.ParseTransactionType(txType)
	if err != nil {
		return model.Transaction{}, err
	}

	d := model.DateOf(time.Now())
	if date != "" {
		if d, err = model.ParseDate(date); err != nil {
			return model.Transaction{}, err
		}
	}

	txn := model.Transaction{
		ID:          strings.TrimSpace(id),
		Date:        d,
		Type:        parsedType,
		Category:    strings.TrimSpace(category),
		Amount:      amount,
		Description: strings.TrimSpace(description),
	}
	return txn, txn.Validate()
}

func listTransactionsCmd(a *app) *cobra.Command {
	var (
		flags  filterFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions matching a filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

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
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, txns)
			}

			if len(txns) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No transactions found. Use 'tally tx add' to record one."))
				return nil
			}
			return writeTransactionTable(out, l, txns)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the transactions as a JSON array")

	return cmd
}

func writeTransactionTable(out io.Writer, l *ledger.Ledger, txns []model.Transaction) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
		cli.HeaderStyle.Render("ID"),
		cli.HeaderStyle.Render("Date"),
		cli.HeaderStyle.Render("Type"),
		cli.HeaderStyle.Render("Category"),
		cli.HeaderStyle.Render("Amount"),
		cli.HeaderStyle.Render("Description"))

	for _, txn := range txns {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			txn.ID,
			txn.Date,
			txn.Type,
			categoryLabel(l, txn.Category),
			cli.FormatAmount(txn.Amount, txn.Type == model.TransactionTypeExpense),
			txn.Description)
	}

	return w.Flush()
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func showTransactionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			l, closeLedger, err := a.openLedger(ctx)
			if err != nil {
				return err
			}
			defer closeLedger()

			txn, ok := l.Transaction(args[0])
			if !ok {
				return fmt.Errorf("transaction %q not found", args[0])
			}

			var b strings.Builder
			fmt.Fprintf(&b, "ID:          %s\n", txn.ID)
			fmt.Fprintf(&b, "Date:        %s\n", txn.Date)
			fmt.Fprintf(&b, "Type:        %s\n", txn.Type)
			fmt.Fprintf(&b, "Category:    %s\n", categoryLabel(l, txn.Category))
			fmt.Fprintf(&b, "Amount:      %s\n", cli.FormatAmount(txn.Amount, txn.Type == model.TransactionTypeExpense))
			fmt.Fprintf(&b, "Description: %s", txn.Description)

			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox("Transaction", b.String()))
			return nil
		},
	}
}

func updateTransactionCmd(a *app) *cobra.Command {
	var (
		date        string
		txType      string
		category    string
		description string
		amount      float64
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a transaction",
		Long:  `Only the flags given are changed; everything else is kept.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			flags := cmd.Flags()

			var patch model.TransactionPatch
			if flags.Changed("date") {
				d, err := model.ParseDate(date)
				if err != nil {
					return err
				}
				patch.Date = &d
			}
			if flags.Changed("type") {
				t, err := model.ParseTransactionType(txType)
				if err != nil {
					return err
				}
				patch.Type = &t
			}
			if flags.Changed("category") {
				patch.Category = &category
			}
			if flags.Changed("amount") {
				patch.Amount = &amount
			}
			if flags.Changed("description") {
				patch.Description = &description
			}
			if patch.IsEmpty() {
				return errors.New("must specify at least one of --date, --type, --category, --amount or --description")
			}

			l, closeLedger, err := a.openLedger(ctx)
			if err != nil {
				return err
			}
			defer closeLedger()

			updated, err := l.UpdateTransaction(ctx, args[0], patch)
			if err != nil {
				return fmt.Errorf("failed to update transaction: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated transaction %s", updated.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "new date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&txType, "type", "", "new type (income or expense)")
	cmd.Flags().StringVar(&category, "category", "", "new category id")
	cmd.Flags().Float64Var(&amount, "amount", 0, "new amount")
	cmd.Flags().StringVar(&description, "description", "", "new description")

	return cmd
}

func deleteTransactionCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			id := args[0]

			l, closeLedger, err := a.openLedger(ctx)
			if err != nil {
				return err
			}
			defer closeLedger()

			txn, ok := l.Transaction(id)
			if !ok {
				fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("Transaction %s not found; nothing deleted", id)))
				return nil
			}

			if !yes {
				question := fmt.Sprintf("Delete %s of %.2f on %s?", txn.Type, txn.Amount, txn.Date)
				confirmed, err := cli.Confirm(ctx, cli.NewNonBlockingReader(cmd.InOrStdin()), out, question)
				if err != nil {
					return err
				}
				if !confirmed {
					fmt.Fprintln(out, cli.FormatInfo("Canceled"))
					return nil
				}
			}

			if _, err := l.DeleteTransaction(ctx, id); err != nil {
				return fmt.Errorf("failed to delete transaction: %w", err)
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Deleted transaction %s", id)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}
