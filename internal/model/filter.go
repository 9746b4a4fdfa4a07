package model

import (
	"errors"
	"fmt"
	"strings"
)

// FilterAll matches every transaction type or category.
const FilterAll = "all"

// ErrInvalidFilter is returned when filter criteria are inconsistent.
var ErrInvalidFilter = errors.New("invalid filter")

// Filter selects the visible subset of transactions. It is never persisted.
type Filter struct {
	From     Date   // inclusive; zero means unbounded
	To       Date   // inclusive; zero means unbounded
	Type     string // FilterAll, "income" or "expense"
	Category string // FilterAll or a category ID
}

// DefaultFilter returns a filter that matches everything.
func DefaultFilter() Filter {
	return Filter{Type: FilterAll, Category: FilterAll}
}

// Reset restores the default criteria.
func (f *Filter) Reset() {
	*f = DefaultFilter()
}

// Normalize fills empty criteria with FilterAll.
func (f Filter) Normalize() Filter {
	if f.Type == "" {
		f.Type = FilterAll
	}
	if f.Category == "" {
		f.Category = FilterAll
	}
	return f
}

// Validate checks the type value and the ordering of the date bounds.
func (f Filter) Validate() error {
	f = f.Normalize()
	switch f.Type {
	case FilterAll, string(TransactionTypeIncome), string(TransactionTypeExpense):
	default:
		return fmt.Errorf("%w: type must be all, income or expense, got %q", ErrInvalidFilter, f.Type)
	}
	if !f.From.IsEmpty() && !f.To.IsEmpty() && f.To.Before(f.From.Time) {
		return fmt.Errorf("%w: end date %s is before start date %s", ErrInvalidFilter, f.To, f.From)
	}
	return nil
}

// String describes the filter for headings, e.g. "Expense in category 2 since 2024-03-01".
func (f Filter) String() string {
	f = f.Normalize()
	parts := []string{"All transactions"}
	if f.Type != FilterAll {
		parts[0] = strings.ToUpper(f.Type[:1]) + f.Type[1:]
	}
	if f.Category != FilterAll {
		parts = append(parts, "in category "+f.Category)
	}
	switch {
	case !f.From.IsEmpty() && !f.To.IsEmpty():
		parts = append(parts, fmt.Sprintf("from %s to %s", f.From, f.To))
	case !f.From.IsEmpty():
		parts = append(parts, "since "+f.From.String())
	case !f.To.IsEmpty():
		parts = append(parts, "until "+f.To.String())
	}
	return strings.Join(parts, " ")
}
