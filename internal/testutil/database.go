// Package testutil provides helpers for building ledgers and fixtures in tests.
package testutil

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Veraticus/tally/internal/ledger"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/storage"
)

// ErrInjected is returned by a FlakyBlobStore when writes are failing.
var ErrInjected = errors.New("injected storage failure")

// FlakyBlobStore is an in-memory blob store whose writes can be made to fail.
type FlakyBlobStore struct {
	*storage.MemoryBlobStore
	puts     int
	failPuts bool
	mu       sync.Mutex
}

// NewFlakyBlobStore creates a store that succeeds until FailPuts is called.
func NewFlakyBlobStore() *FlakyBlobStore {
	return &FlakyBlobStore{MemoryBlobStore: storage.NewMemoryBlobStore()}
}

// FailPuts makes every following Put fail (or succeed again when fail is false).
func (f *FlakyBlobStore) FailPuts(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failPuts = fail
}

// Puts returns the number of successful writes.
func (f *FlakyBlobStore) Puts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.puts
}

// Put writes through unless failures are switched on.
func (f *FlakyBlobStore) Put(ctx context.Context, key string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPuts {
		return ErrInjected
	}
	if err := f.MemoryBlobStore.Put(ctx, key, data); err != nil {
		return err
	}
	f.puts++
	return nil
}

// TestLedger is a ledger over an in-memory blob store with a recording publisher.
type TestLedger struct {
	*ledger.Ledger
	Blobs  *FlakyBlobStore
	Repo   *storage.Repository
	Events *Recorder
	t      *testing.T
}

// TestLedgerOptions seeds the store before the ledger is opened.
type TestLedgerOptions struct {
	Transactions []model.Transaction
	Categories   []model.Category // nil keeps the defaults
	LedgerOpts   []ledger.Option
}

// SetupLedger opens a ledger with no stored data.
func SetupLedger(t *testing.T) *TestLedger {
	t.Helper()
	return SetupLedgerWithOptions(t, TestLedgerOptions{})
}

// SetupLedgerWithOptions seeds the blob store and opens a ledger over it.
//
// Example:
//
//	tl := testutil.SetupLedgerWithOptions(t, testutil.TestLedgerOptions{
//		Transactions: testutil.NewTransactionFactory(1).Transactions(10),
//	})
func SetupLedgerWithOptions(t *testing.T, opts TestLedgerOptions) *TestLedger {
	t.Helper()
	ctx := context.Background()

	blobs := NewFlakyBlobStore()
	repo := storage.NewRepository(blobs, nil)

	if opts.Transactions != nil {
		if err := repo.SaveTransactions(ctx, opts.Transactions); err != nil {
			t.Fatalf("failed to seed transactions: %v", err)
		}
	}
	if opts.Categories != nil {
		if err := repo.SaveCategories(ctx, opts.Categories); err != nil {
			t.Fatalf("failed to seed categories: %v", err)
		}
	}

	recorder := NewRecorder()
	ledgerOpts := append([]ledger.Option{ledger.WithPublisher(recorder)}, opts.LedgerOpts...)
	l, err := ledger.Open(ctx, repo, ledgerOpts...)
	if err != nil {
		t.Fatalf("failed to open ledger: %v", err)
	}

	t.Cleanup(func() {
		_ = repo.Close()
	})

	return &TestLedger{
		Ledger: l,
		Blobs:  blobs,
		Repo:   repo,
		Events: recorder,
		t:      t,
	}
}

// Reopen loads a fresh ledger from the same blob store.
func (tl *TestLedger) Reopen() *ledger.Ledger {
	tl.t.Helper()
	l, err := ledger.Open(context.Background(), tl.Repo)
	if err != nil {
		tl.t.Fatalf("failed to reopen ledger: %v", err)
	}
	return l
}
