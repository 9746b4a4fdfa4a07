package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/model"
)

func categoriesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage transaction categories",
		Long:  `List, add, update, delete and reset the categories transactions are filed under.`,
	}

	cmd.AddCommand(listCategoriesCmd(a))
	cmd.AddCommand(addCategoryCmd(a))
	cmd.AddCommand(updateCategoryCmd(a))
	cmd.AddCommand(deleteCategoryCmd(a))
	cmd.AddCommand(resetCategoriesCmd(a))

	return cmd
}

func listCategoriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			l, closeLedger, err := a.openLedger(ctx)
			if err != nil {
				return err
			}
			defer closeLedger()

			categories := l.Categories()
			out := cmd.OutOrStdout()
			if len(categories) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No categories found. Use 'tally categories add' or 'tally categories reset'."))
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				cli.HeaderStyle.Render("ID"),
				cli.HeaderStyle.Render("Name"),
				cli.HeaderStyle.Render("Transactions"))
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				strings.Repeat("-", 4),
				strings.Repeat("-", 20),
				strings.Repeat("-", 12))

			for _, c := range categories {
				fmt.Fprintf(w, "%s\t%s\t%d\n", c.ID, c.Name, l.TransactionsInCategory(c.ID))
			}
			return w.Flush()
		},
	}
}

func addCategoryCmd(a *app) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			l, closeLedger, err := a.openLedger(ctx)
			if err != nil {
				return err
			}
			defer closeLedger()

			added, err := l.AddCategory(ctx, model.Category{
				ID:   strings.TrimSpace(id),
				Name: strings.TrimSpace(args[0]),
			})
			if err != nil {
				return fmt.Errorf("failed to create category: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created category %q (ID: %s)", added.Name, added.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "category id (generated when empty)")

	return cmd
}

func updateCategoryCmd(a *app) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if !cmd.Flags().Changed("name") {
				return fmt.Errorf("must specify --name to update")
			}

			l, closeLedger, err := a.openLedger(ctx)
			if err != nil {
				return err
			}
			defer closeLedger()

			trimmed := strings.TrimSpace(name)
			updated, err := l.UpdateCategory(ctx, args[0], model.CategoryPatch{Name: &trimmed})
			if err != nil {
				return fmt.Errorf("failed to update category: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated category %s to %q", updated.ID, updated.Name)))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new category name")

	return cmd
}

func deleteCategoryCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category",
		Long: `Delete a category. Transactions filed under it keep the category id and
are shown as unknown. A category still in use is only deleted with --force.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			id := args[0]

			l, closeLedger, err := a.openLedger(ctx)
			if err != nil {
				return err
			}
			defer closeLedger()

			if used := l.TransactionsInCategory(id); used > 0 && !force {
				return fmt.Errorf("category %s is used by %d transaction(s); use --force to delete it anyway", id, used)
			}

			removed, err := l.RemoveCategory(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to delete category: %w", err)
			}
			if !removed {
				fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("Category %s not found; nothing deleted", id)))
				return nil
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Deleted category %s", id)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "delete even when transactions use the category")

	return cmd
}

func resetCategoriesCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Replace all categories with the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if !yes {
				confirmed, err := cli.Confirm(ctx, cli.NewNonBlockingReader(cmd.InOrStdin()), out, "Replace every category with the defaults?")
				if err != nil {
					return err
				}
				if !confirmed {
					fmt.Fprintln(out, cli.FormatInfo("Canceled"))
					return nil
				}
			}

			l, closeLedger, err := a.openLedger(ctx)
			if err != nil {
				return err
			}
			defer closeLedger()

			if err := l.ResetCategories(ctx); err != nil {
				return fmt.Errorf("failed to reset categories: %w", err)
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Restored %d default categories", len(l.Categories()))))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}
