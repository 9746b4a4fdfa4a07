package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/cli"
)

func dashboardCmd(a *app) *cobra.Command {
	var flags filterFlags

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show income, expenses and balance",
		Long: `Summarize the transactions matching the filter: total income, total
expenses, the balance between them and a per-category breakdown.`,
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

			summary := l.Summary(filter)

			var b strings.Builder
			fmt.Fprintf(&b, "Income:       %s\n", cli.IncomeStyle.Render(summary.Income.StringFixed(2)))
			fmt.Fprintf(&b, "Expenses:     %s\n", cli.ExpenseStyle.Render(summary.Expense.StringFixed(2)))
			fmt.Fprintf(&b, "Balance:      %s\n", cli.FormatBalance(summary.Balance.InexactFloat64()))
			fmt.Fprintf(&b, "Transactions: %d", summary.Count)
			fmt.Fprintln(out, cli.RenderBox(cli.ChartIcon+" "+filter.String(), b.String()))

			breakdown := l.CategoryBreakdown(filter)
			if len(breakdown) == 0 {
				return nil
			}

			fmt.Fprintln(out)
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				cli.HeaderStyle.Render("Category"),
				cli.HeaderStyle.Render("Count"),
				cli.HeaderStyle.Render("Income"),
				cli.HeaderStyle.Render("Expenses"),
				cli.HeaderStyle.Render("Net"))
			for _, c := range breakdown {
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
					categoryLabel(l, c.CategoryID),
					c.Count,
					c.Income.StringFixed(2),
					c.Expense.StringFixed(2),
					c.Net().StringFixed(2))
			}
			return w.Flush()
		},
	}

	flags.register(cmd)

	return cmd
}
