package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDashboard(t *testing.T) {
	env := newCLIEnv(t)
	seedIncomeAndExpense(env)

	out := env.mustRun("dashboard")
	assert.Contains(t, out, "Income:       100.00")
	assert.Contains(t, out, "Expenses:     40.00")
	assert.Contains(t, out, "Balance:      60.00")
	assert.Contains(t, out, "Transactions: 2")
	assert.Contains(t, out, "Salary")
	assert.Contains(t, out, "Groceries")

	out = env.mustRun("dashboard", "--type", "income")
	assert.Contains(t, out, "Income:       100.00")
	assert.Contains(t, out, "Expenses:     0.00")
	assert.Contains(t, out, "Balance:      100.00")
	assert.NotContains(t, out, "Groceries")
}

func TestDashboard_Empty(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun("dashboard")
	assert.Contains(t, out, "Balance:      0.00")
	assert.Contains(t, out, "Transactions: 0")
}
