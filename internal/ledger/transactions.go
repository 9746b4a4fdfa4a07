package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/events"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/store"
)

// AddTransaction validates and records a new transaction. An empty id is
// replaced with a generated one.
func (l *Ledger) AddTransaction(ctx context.Context, txn model.Transaction) (model.Transaction, error) {
	if err := txn.Validate(); err != nil {
		return model.Transaction{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	restore := l.transactions.Snapshot()
	added, err := l.transactions.Add(txn)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to add transaction: %w", err)
	}
	if err := l.repo.SaveTransactions(ctx, l.transactions.All()); err != nil {
		restore()
		return model.Transaction{}, err
	}

	l.publish(ctx, events.New(events.KindCreated, events.EntityTransaction, added.ID))
	return added, nil
}

// DeleteTransaction removes a transaction. Deleting an unknown id is a no-op
// and reports false.
func (l *Ledger) DeleteTransaction(ctx context.Context, id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	restore := l.transactions.Snapshot()
	if !l.transactions.Remove(id) {
		return false, nil
	}
	if err := l.repo.SaveTransactions(ctx, l.transactions.All()); err != nil {
		restore()
		return false, err
	}

	l.publish(ctx, events.New(events.KindDeleted, events.EntityTransaction, id))
	return true, nil
}

// UpdateTransaction merges patch into the stored transaction. The merged
// result must still be valid.
func (l *Ledger) UpdateTransaction(ctx context.Context, id string, patch model.TransactionPatch) (model.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, ok := l.transactions.Get(id)
	if !ok {
		return model.Transaction{}, fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	if patch.IsEmpty() {
		return current, nil
	}

	merged := patch.Apply(current)
	if err := merged.Validate(); err != nil {
		return model.Transaction{}, err
	}

	restore := l.transactions.Snapshot()
	updated, _ := l.transactions.Update(id, func(model.Transaction) model.Transaction { return merged })
	if err := l.repo.SaveTransactions(ctx, l.transactions.All()); err != nil {
		restore()
		return model.Transaction{}, err
	}

	l.publish(ctx, events.New(events.KindUpdated, events.EntityTransaction, id))
	return updated, nil
}

// ImportResult counts what ImportTransactions did with each record.
type ImportResult struct {
	Added   []model.Transaction
	Skipped int // id already present
	Invalid int // failed validation
}

// ImportTransactions adds every valid transaction whose id is not already in
// the ledger, then persists once. Nothing is kept if the save fails.
func (l *Ledger) ImportTransactions(ctx context.Context, txns []model.Transaction) (ImportResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var result ImportResult
	restore := l.transactions.Snapshot()

	for _, txn := range txns {
		if err := txn.Validate(); err != nil {
			l.logger.Warn("skipping invalid transaction", "id", txn.ID, "error", err)
			result.Invalid++
			continue
		}
		added, err := l.transactions.Add(txn)
		if errors.Is(err, store.ErrDuplicateID) {
			result.Skipped++
			continue
		}
		if err != nil {
			restore()
			return ImportResult{}, fmt.Errorf("failed to import transaction: %w", err)
		}
		result.Added = append(result.Added, added)
	}

	if len(result.Added) == 0 {
		return result, nil
	}
	if err := l.repo.SaveTransactions(ctx, l.transactions.All()); err != nil {
		restore()
		return ImportResult{}, err
	}

	for _, added := range result.Added {
		l.publish(ctx, events.New(events.KindCreated, events.EntityTransaction, added.ID))
	}
	l.logger.Info("imported transactions",
		"added", len(result.Added),
		"skipped", result.Skipped,
		"invalid", result.Invalid)
	return result, nil
}
