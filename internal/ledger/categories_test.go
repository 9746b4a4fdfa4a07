package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/testutil"
)

func TestAddCategory(t *testing.T) {
	ctx := context.Background()
	tl := testutil.SetupLedger(t)

	added, err := tl.AddCategory(ctx, model.Category{Name: "Travel"})
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)
	assert.Len(t, tl.Categories(), 5)
	assert.Equal(t, "Travel", tl.CategoryName(added.ID))

	_, err = tl.AddCategory(ctx, model.Category{Name: " "})
	assert.ErrorIs(t, err, model.ErrInvalidCategory)

	_, err = tl.AddCategory(ctx, model.Category{ID: model.FilterAll, Name: "Everything"})
	assert.ErrorIs(t, err, model.ErrInvalidCategory)
	_, ok := tl.Category(model.FilterAll)
	assert.False(t, ok)

	// Persisted categories replace the defaults on the next open.
	reloaded := tl.Reopen()
	assert.Len(t, reloaded.Categories(), 5)
	assert.Equal(t, []string{"category.created"}, tl.Events.Kinds())
}

func TestRemoveCategory(t *testing.T) {
	ctx := context.Background()
	tl := testutil.SetupLedgerWithOptions(t, testutil.TestLedgerOptions{
		Transactions: []model.Transaction{testutil.Expense("t1", 10)},
	})
	assert.Equal(t, 1, tl.TransactionsInCategory("2"))

	removed, err := tl.RemoveCategory(ctx, "2")
	require.NoError(t, err)
	assert.True(t, removed)

	// Transactions keep dangling references.
	txn, ok := tl.Transaction("t1")
	require.True(t, ok)
	assert.Equal(t, "2", txn.Category)
	assert.Empty(t, tl.CategoryName("2"))

	removed, err = tl.RemoveCategory(ctx, "2")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, []string{"category.deleted"}, tl.Events.Kinds())

	tl.Blobs.FailPuts(true)
	_, err = tl.RemoveCategory(ctx, "1")
	assert.ErrorIs(t, err, testutil.ErrInjected)
	_, ok = tl.Category("1")
	assert.True(t, ok)
}

func TestUpdateCategory(t *testing.T) {
	ctx := context.Background()
	tl := testutil.SetupLedger(t)

	name := "Paycheck"
	updated, err := tl.UpdateCategory(ctx, "1", model.CategoryPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, model.Category{ID: "1", Name: "Paycheck"}, updated)

	_, err = tl.UpdateCategory(ctx, "99", model.CategoryPatch{Name: &name})
	assert.ErrorIs(t, err, common.ErrNotFound)

	blank := ""
	_, err = tl.UpdateCategory(ctx, "1", model.CategoryPatch{Name: &blank})
	assert.ErrorIs(t, err, model.ErrInvalidCategory)

	unchanged, err := tl.UpdateCategory(ctx, "1", model.CategoryPatch{})
	require.NoError(t, err)
	assert.Equal(t, "Paycheck", unchanged.Name)
}

func TestResetCategories(t *testing.T) {
	ctx := context.Background()
	tl := testutil.SetupLedgerWithOptions(t, testutil.TestLedgerOptions{
		Categories: []model.Category{{ID: "x", Name: "Custom"}},
	})

	require.NoError(t, tl.ResetCategories(ctx))
	assert.Equal(t, model.DefaultCategories(), tl.Categories())
	assert.Equal(t, model.DefaultCategories(), tl.Reopen().Categories())
	assert.Equal(t, []string{"category.reset"}, tl.Events.Kinds())

	_, err := tl.AddCategory(ctx, model.Category{ID: "y", Name: "Extra"})
	require.NoError(t, err)
	tl.Blobs.FailPuts(true)
	assert.ErrorIs(t, tl.ResetCategories(ctx), testutil.ErrInjected)
	assert.Len(t, tl.Categories(), 5, "failed reset must be rolled back")
}
