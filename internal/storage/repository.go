package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/goccy/go-json"

	"github.com/Veraticus/tally/internal/model"
)

// Blob keys for the persisted collections.
const (
	TransactionsKey = "transactions"
	CategoriesKey   = "categories"
)

// Repository loads and saves whole collections as JSON arrays.
// Each save overwrites the previous blob; there is no incremental write.
type Repository struct {
	blobs  BlobStore
	logger *slog.Logger
}

// NewRepository wraps a blob store.
func NewRepository(blobs BlobStore, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{blobs: blobs, logger: logger}
}

// LoadTransactions returns the stored transactions. A missing or malformed blob
// yields an empty list; only backend failures are returned as errors.
func (r *Repository) LoadTransactions(ctx context.Context) ([]model.Transaction, error) {
	txns, _, err := loadList[model.Transaction](ctx, r, TransactionsKey)
	return txns, err
}

// SaveTransactions overwrites the stored transactions with txns.
func (r *Repository) SaveTransactions(ctx context.Context, txns []model.Transaction) error {
	return saveList(ctx, r, TransactionsKey, txns)
}

// LoadCategories returns the stored categories. found is false when nothing has
// been stored yet, which callers treat as "seed the defaults".
func (r *Repository) LoadCategories(ctx context.Context) (categories []model.Category, found bool, err error) {
	return loadList[model.Category](ctx, r, CategoriesKey)
}

// SaveCategories overwrites the stored categories.
func (r *Repository) SaveCategories(ctx context.Context, categories []model.Category) error {
	return saveList(ctx, r, CategoriesKey, categories)
}

// Close closes the underlying blob store.
func (r *Repository) Close() error {
	return r.blobs.Close()
}

func loadList[T any](ctx context.Context, r *Repository, key string) ([]T, bool, error) {
	data, err := r.blobs.Get(ctx, key)
	if errors.Is(err, ErrBlobNotFound) {
		return []T{}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load %s: %w", key, err)
	}

	var list []T
	if err := json.Unmarshal(data, &list); err != nil {
		r.logger.Warn("stored data is malformed, starting empty", "key", key, "error", err)
		return []T{}, true, nil
	}
	if list == nil {
		list = []T{}
	}
	return list, true, nil
}

func saveList[T any](ctx context.Context, r *Repository, key string, list []T) error {
	if list == nil {
		list = []T{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := r.blobs.Put(ctx, key, data); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}
