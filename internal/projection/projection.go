// Package projection derives the visible transaction subset and dashboard totals
// from the ledger's collections. Every function here is pure.
package projection

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally/internal/model"
)

// Matches reports whether a single transaction passes the filter.
func Matches(txn model.Transaction, filter model.Filter) bool {
	filter = filter.Normalize()

	if filter.Type != model.FilterAll && string(txn.Type) != filter.Type {
		return false
	}
	if filter.Category != model.FilterAll && txn.Category != filter.Category {
		return false
	}
	if !filter.From.IsEmpty() && txn.Date.Before(filter.From.Time) {
		return false
	}
	if !filter.To.IsEmpty() && txn.Date.After(filter.To.Time) {
		return false
	}
	return true
}

// Project returns the transactions that pass the filter, in input order.
// The result never aliases the input slice.
func Project(txns []model.Transaction, filter model.Filter) []model.Transaction {
	out := make([]model.Transaction, 0, len(txns))
	for _, txn := range txns {
		if Matches(txn, filter) {
			out = append(out, txn)
		}
	}
	return out
}

// Summary holds the dashboard totals for a set of transactions.
type Summary struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Balance decimal.Decimal
	Count   int
}

// Summarize totals income and expenses. Amounts are accumulated as decimals so
// that sums of currency values do not drift.
func Summarize(txns []model.Transaction) Summary {
	s := Summary{
		Income:  decimal.Zero,
		Expense: decimal.Zero,
	}
	for _, txn := range txns {
		amount := decimal.NewFromFloat(txn.Amount)
		switch txn.Type {
		case model.TransactionTypeIncome:
			s.Income = s.Income.Add(amount)
		case model.TransactionTypeExpense:
			s.Expense = s.Expense.Add(amount)
		default:
			continue
		}
		s.Count++
	}
	s.Balance = s.Income.Sub(s.Expense)
	return s
}

// CategoryTotal is the per-category slice of a Summary.
type CategoryTotal struct {
	CategoryID string
	Name       string
	Income     decimal.Decimal
	Expense    decimal.Decimal
	Count      int
}

// Net returns income minus expenses for the category.
func (c CategoryTotal) Net() decimal.Decimal {
	return c.Income.Sub(c.Expense)
}

// ByCategory groups transactions by category. Transactions that reference a
// category that no longer exists are grouped under their raw id with an empty name.
// Groups are ordered by total volume, largest first, then by id.
func ByCategory(txns []model.Transaction, categories []model.Category) []CategoryTotal {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	groups := make(map[string]*CategoryTotal)
	for _, txn := range txns {
		group, ok := groups[txn.Category]
		if !ok {
			group = &CategoryTotal{
				CategoryID: txn.Category,
				Name:       names[txn.Category],
				Income:     decimal.Zero,
				Expense:    decimal.Zero,
			}
			groups[txn.Category] = group
		}

		amount := decimal.NewFromFloat(txn.Amount)
		switch txn.Type {
		case model.TransactionTypeIncome:
			group.Income = group.Income.Add(amount)
		case model.TransactionTypeExpense:
			group.Expense = group.Expense.Add(amount)
		}
		group.Count++
	}

	out := make([]CategoryTotal, 0, len(groups))
	for _, group := range groups {
		out = append(out, *group)
	}
	sort.Slice(out, func(i, j int) bool {
		vi := out[i].Income.Add(out[i].Expense)
		vj := out[j].Income.Add(out[j].Expense)
		if cmp := vi.Cmp(vj); cmp != 0 {
			return cmp > 0
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	return out
}
