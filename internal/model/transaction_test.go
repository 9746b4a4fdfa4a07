package model

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTransaction() Transaction {
	return Transaction{
		ID:          "t1",
		Date:        NewDate(2024, time.January, 15),
		Type:        TransactionTypeIncome,
		Category:    "1",
		Amount:      100,
		Description: "January salary",
	}
}

func TestTransaction_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Transaction)
		errMsg  string
		wantErr bool
	}{
		{
			name:   "valid income",
			mutate: func(_ *Transaction) {},
		},
		{
			name:   "description is optional",
			mutate: func(tx *Transaction) { tx.Description = "" },
		},
		{
			name:    "missing date",
			mutate:  func(tx *Transaction) { tx.Date = Date{} },
			wantErr: true,
			errMsg:  "missing date",
		},
		{
			name:    "unknown type",
			mutate:  func(tx *Transaction) { tx.Type = "transfer" },
			wantErr: true,
			errMsg:  "unknown type",
		},
		{
			name:    "missing category",
			mutate:  func(tx *Transaction) { tx.Category = "  " },
			wantErr: true,
			errMsg:  "missing category",
		},
		{
			name:    "zero amount",
			mutate:  func(tx *Transaction) { tx.Amount = 0 },
			wantErr: true,
			errMsg:  "positive number",
		},
		{
			name:    "negative amount",
			mutate:  func(tx *Transaction) { tx.Amount = -5 },
			wantErr: true,
			errMsg:  "positive number",
		},
		{
			name:    "NaN amount",
			mutate:  func(tx *Transaction) { tx.Amount = math.NaN() },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction()
			tt.mutate(&tx)
			err := tx.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidTransaction)
			if tt.errMsg != "" {
				assert.Contains(t, err.Error(), tt.errMsg)
			}
		})
	}
}

func TestParseTransactionType(t *testing.T) {
	got, err := ParseTransactionType(" Expense ")
	require.NoError(t, err)
	assert.Equal(t, TransactionTypeExpense, got)

	_, err = ParseTransactionType("all")
	assert.ErrorIs(t, err, ErrInvalidTransaction)
}

func TestTransactionPatch_Apply(t *testing.T) {
	tx := validTransaction()

	amount := 250.5
	desc := "bonus"
	patched := TransactionPatch{Amount: &amount, Description: &desc}.Apply(tx)

	assert.Equal(t, "t1", patched.ID)
	assert.Equal(t, 250.5, patched.Amount)
	assert.Equal(t, "bonus", patched.Description)
	assert.Equal(t, tx.Date, patched.Date)
	assert.Equal(t, tx.Category, patched.Category)
	assert.Equal(t, 100.0, tx.Amount, "original must not be modified")

	assert.True(t, TransactionPatch{}.IsEmpty())
	assert.False(t, TransactionPatch{Amount: &amount}.IsEmpty())
}

func TestTransaction_SignedAmount(t *testing.T) {
	tx := validTransaction()
	assert.Equal(t, 100.0, tx.SignedAmount())

	tx.Type = TransactionTypeExpense
	assert.Equal(t, -100.0, tx.SignedAmount())
}

func TestTransaction_JSONLayout(t *testing.T) {
	data, err := json.Marshal(validTransaction())
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"id":"t1","date":"2024-01-15","type":"income","category":"1","amount":100,"description":"January salary"}`,
		string(data))

	var decoded Transaction
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, validTransaction(), decoded)
}

func TestDate_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Date
		wantErr bool
	}{
		{name: "calendar date", input: `"2024-02-29"`, want: NewDate(2024, time.February, 29)},
		{name: "rfc3339 timestamp", input: `"2024-02-29T18:30:00Z"`, want: NewDate(2024, time.February, 29)},
		{name: "empty string", input: `""`, want: Date{}},
		{name: "null", input: `null`, want: Date{}},
		{name: "garbage", input: `"yesterday"`, wantErr: true},
		{name: "number", input: `20240229`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(d.Time), "want %s, got %s", tt.want, d)
		})
	}
}
