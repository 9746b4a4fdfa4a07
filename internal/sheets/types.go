package sheets

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/projection"
)

// Exporter writes a report somewhere.
type Exporter interface {
	Write(ctx context.Context, report *Report) error
}

// TransactionRow is a single line of the transaction details section.
type TransactionRow struct {
	Date        model.Date
	Amount      decimal.Decimal
	Type        string
	Category    string
	Description string
}

// CategoryRow is a single line of the category breakdown section.
type CategoryRow struct {
	Category string
	Income   decimal.Decimal
	Expense  decimal.Decimal
	Count    int
}

// Report holds everything written to the spreadsheet.
type Report struct {
	Title        string
	Filter       model.Filter
	Summary      projection.Summary
	Categories   []CategoryRow
	Transactions []TransactionRow
}

// NewReport builds a report from already-filtered transactions. categoryName
// resolves a category id for display; unknown ids fall back to the raw id.
func NewReport(title string, filter model.Filter, txns []model.Transaction, breakdown []projection.CategoryTotal, categoryName func(string) string) *Report {
	label := func(id string) string {
		if name := categoryName(id); name != "" {
			return name
		}
		return id
	}

	report := &Report{
		Title:        title,
		Filter:       filter.Normalize(),
		Summary:      projection.Summarize(txns),
		Categories:   make([]CategoryRow, 0, len(breakdown)),
		Transactions: make([]TransactionRow, 0, len(txns)),
	}

	for _, c := range breakdown {
		report.Categories = append(report.Categories, CategoryRow{
			Category: label(c.CategoryID),
			Income:   c.Income,
			Expense:  c.Expense,
			Count:    c.Count,
		})
	}

	for _, txn := range txns {
		report.Transactions = append(report.Transactions, TransactionRow{
			Date:        txn.Date,
			Amount:      decimal.NewFromFloat(txn.Amount),
			Type:        string(txn.Type),
			Category:    label(txn.Category),
			Description: txn.Description,
		})
	}

	// Newest first
	sort.SliceStable(report.Transactions, func(i, j int) bool {
		return report.Transactions[i].Date.After(report.Transactions[j].Date.Time)
	})

	return report
}
