package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// TransactionType indicates whether money came in or went out.
type TransactionType string

const (
	// TransactionTypeIncome represents money received.
	TransactionTypeIncome TransactionType = "income"
	// TransactionTypeExpense represents money spent.
	TransactionTypeExpense TransactionType = "expense"
)

// ErrInvalidTransaction is returned when a transaction fails validation.
var ErrInvalidTransaction = errors.New("invalid transaction")

// ParseTransactionType converts user input into a TransactionType.
func ParseTransactionType(s string) (TransactionType, error) {
	switch t := TransactionType(strings.ToLower(strings.TrimSpace(s))); t {
	case TransactionTypeIncome, TransactionTypeExpense:
		return t, nil
	default:
		return "", fmt.Errorf("%w: type must be %q or %q, got %q",
			ErrInvalidTransaction, TransactionTypeIncome, TransactionTypeExpense, s)
	}
}

// Transaction is a single income or expense entry in the ledger.
type Transaction struct {
	Date        Date            `json:"date"`
	ID          string          `json:"id"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"` // Category ID, not enforced to exist
	Description string          `json:"description"`
	Amount      float64         `json:"amount"`
}

// EntityID returns the transaction's identifier.
func (t Transaction) EntityID() string {
	return t.ID
}

// WithEntityID returns a copy of the transaction carrying the given id.
func (t Transaction) WithEntityID(id string) Transaction {
	t.ID = id
	return t
}

// Validate checks the fields a transaction form requires before it is recorded.
func (t Transaction) Validate() error {
	if t.Date.IsEmpty() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if t.Type != TransactionTypeIncome && t.Type != TransactionTypeExpense {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, t.Type)
	}
	if strings.TrimSpace(t.Category) == "" {
		return fmt.Errorf("%w: missing category", ErrInvalidTransaction)
	}
	if math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) || t.Amount <= 0 {
		return fmt.Errorf("%w: amount must be a positive number, got %v", ErrInvalidTransaction, t.Amount)
	}
	return nil
}

// SignedAmount returns the amount as a balance delta: positive for income, negative for expenses.
func (t Transaction) SignedAmount() float64 {
	if t.Type == TransactionTypeExpense {
		return -t.Amount
	}
	return t.Amount
}

// TransactionPatch holds the fields to merge into an existing transaction.
// Nil fields are left untouched.
type TransactionPatch struct {
	Date        *Date
	Type        *TransactionType
	Category    *string
	Amount      *float64
	Description *string
}

// IsEmpty reports whether the patch changes nothing.
func (p TransactionPatch) IsEmpty() bool {
	return p.Date == nil && p.Type == nil && p.Category == nil && p.Amount == nil && p.Description == nil
}

// Apply merges the patch into t and returns the result. The id is never changed.
func (p TransactionPatch) Apply(t Transaction) Transaction {
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	return t
}
