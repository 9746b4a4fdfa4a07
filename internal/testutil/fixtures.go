package testutil

import (
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/Veraticus/tally/internal/model"
)

// TransactionFactory produces valid, reproducible transactions.
type TransactionFactory struct {
	faker      *gofakeit.Faker
	categories []string
	start      time.Time
	end        time.Time
}

// NewTransactionFactory creates a factory. The same seed yields the same sequence.
func NewTransactionFactory(seed int64) *TransactionFactory {
	return &TransactionFactory{
		faker:      gofakeit.New(seed),
		categories: []string{"1", "2", "3", "4"},
		start:      time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC),
		end:        time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
}

// WithCategories restricts generated category ids.
func (f *TransactionFactory) WithCategories(ids ...string) *TransactionFactory {
	if len(ids) > 0 {
		f.categories = ids
	}
	return f
}

// Transaction returns one transaction with a fresh id.
func (f *TransactionFactory) Transaction() model.Transaction {
	typ := model.TransactionTypeExpense
	if f.faker.Bool() {
		typ = model.TransactionTypeIncome
	}
	return model.Transaction{
		ID:          f.faker.UUID(),
		Date:        model.DateOf(f.faker.DateRange(f.start, f.end)),
		Type:        typ,
		Category:    f.faker.RandomString(f.categories),
		Amount:      f.faker.Price(1, 2000),
		Description: f.faker.Company(),
	}
}

// Transactions returns n transactions.
func (f *TransactionFactory) Transactions(n int) []model.Transaction {
	out := make([]model.Transaction, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, f.Transaction())
	}
	return out
}

// Income returns a valid income transaction with the given id and amount.
func Income(id string, amount float64) model.Transaction {
	return model.Transaction{
		ID:       id,
		Date:     model.NewDate(2024, time.January, 1),
		Type:     model.TransactionTypeIncome,
		Category: "1",
		Amount:   amount,
	}
}

// Expense returns a valid expense transaction with the given id and amount.
func Expense(id string, amount float64) model.Transaction {
	return model.Transaction{
		ID:       id,
		Date:     model.NewDate(2024, time.January, 2),
		Type:     model.TransactionTypeExpense,
		Category: "2",
		Amount:   amount,
	}
}
