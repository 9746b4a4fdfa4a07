package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tally/internal/model"
)

type failingBlobStore struct {
	err error
}

func (f failingBlobStore) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingBlobStore) Put(context.Context, string, []byte) error   { return f.err }
func (f failingBlobStore) Close() error                                { return nil }

func fakeTransactions(faker *gofakeit.Faker, n int) []model.Transaction {
	txns := make([]model.Transaction, 0, n)
	for i := 0; i < n; i++ {
		typ := model.TransactionTypeExpense
		if faker.Bool() {
			typ = model.TransactionTypeIncome
		}
		when := faker.DateRange(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
		txns = append(txns, model.Transaction{
			ID:          faker.UUID(),
			Date:        model.DateOf(when),
			Type:        typ,
			Category:    faker.RandomString([]string{"1", "2", "3", "4"}),
			Amount:      faker.Price(0.01, 5000),
			Description: faker.Sentence(4),
		})
	}
	return txns
}

func TestRepository_TransactionsRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(NewMemoryBlobStore(), nil)

	want := fakeTransactions(gofakeit.New(11), 50)
	require.NoError(t, repo.SaveTransactions(ctx, want))

	got, err := repo.LoadTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID, "order must be preserved")
		assert.True(t, want[i].Date.Equal(got[i].Date.Time))
		assert.Equal(t, want[i].Type, got[i].Type)
		assert.Equal(t, want[i].Category, got[i].Category)
		assert.Equal(t, want[i].Amount, got[i].Amount)
		assert.Equal(t, want[i].Description, got[i].Description)
	}
}

func TestRepository_LoadTransactions(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		blob  *string
		count int
	}{
		{name: "absent", blob: nil, count: 0},
		{name: "empty array", blob: ptr(`[]`), count: 0},
		{name: "null", blob: ptr(`null`), count: 0},
		{name: "truncated json", blob: ptr(`[{"id":"1","date":"2024-01-01"`), count: 0},
		{name: "object instead of array", blob: ptr(`{"id":"1"}`), count: 0},
		{name: "bad date", blob: ptr(`[{"id":"1","date":"soon","type":"income","category":"1","amount":5}]`), count: 0},
		{
			name:  "amount as string",
			blob:  ptr(`[{"id":"1717171717171","date":"2024-05-31","type":"expense","category":"2","amount":"12.5","description":"milk"}]`),
			count: 0,
		},
		{
			name:  "valid",
			blob:  ptr(`[{"id":"a","date":"2024-05-31","type":"expense","category":"2","amount":12.5,"description":"milk"},{"id":"b","date":"2024-06-01","type":"income","category":"1","amount":100}]`),
			count: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blobs := NewMemoryBlobStore()
			if tt.blob != nil {
				require.NoError(t, blobs.Put(ctx, TransactionsKey, []byte(*tt.blob)))
			}

			got, err := NewRepository(blobs, nil).LoadTransactions(ctx)
			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Len(t, got, tt.count)
		})
	}
}

func TestRepository_BackendErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk on fire")
	repo := NewRepository(failingBlobStore{err: boom}, nil)

	_, err := repo.LoadTransactions(ctx)
	assert.ErrorIs(t, err, boom)

	err = repo.SaveTransactions(ctx, nil)
	assert.ErrorIs(t, err, boom)

	_, _, err = repo.LoadCategories(ctx)
	assert.ErrorIs(t, err, boom)
}

func TestRepository_SaveEmptyWritesArray(t *testing.T) {
	ctx := context.Background()
	blobs := NewMemoryBlobStore()
	repo := NewRepository(blobs, nil)

	require.NoError(t, repo.SaveTransactions(ctx, nil))
	data, err := blobs.Get(ctx, TransactionsKey)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
}

func TestRepository_Categories(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(NewMemoryBlobStore(), nil)

	got, found, err := repo.LoadCategories(ctx)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, got)

	want := append(model.DefaultCategories(), model.Category{ID: "custom", Name: "Travel"})
	require.NoError(t, repo.SaveCategories(ctx, want))

	got, found, err = repo.LoadCategories(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)

	// An emptied list is still "found" so defaults are not re-seeded.
	require.NoError(t, repo.SaveCategories(ctx, []model.Category{}))
	got, found, err = repo.LoadCategories(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, got)
}

func TestRepository_OverSQLite(t *testing.T) {
	ctx := context.Background()
	blobs, err := NewSQLiteBlobStore(t.TempDir() + "/tally.db")
	require.NoError(t, err)
	repo := NewRepository(blobs, nil)
	defer func() { _ = repo.Close() }()

	want := []model.Transaction{{
		ID:       "1",
		Date:     model.NewDate(2024, time.January, 2),
		Type:     model.TransactionTypeIncome,
		Category: "1",
		Amount:   100,
	}}
	require.NoError(t, repo.SaveTransactions(ctx, want))

	got, err := repo.LoadTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func ptr(s string) *string { return &s }
