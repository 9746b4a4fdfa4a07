package ledger

import (
	"context"
	"fmt"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/events"
	"github.com/Veraticus/tally/internal/model"
)

// AddCategory records a new category. An empty id is replaced with a generated one.
func (l *Ledger) AddCategory(ctx context.Context, c model.Category) (model.Category, error) {
	if err := c.Validate(); err != nil {
		return model.Category{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	restore := l.categories.Snapshot()
	added, err := l.categories.Add(c)
	if err != nil {
		return model.Category{}, fmt.Errorf("failed to add category: %w", err)
	}
	if err := l.repo.SaveCategories(ctx, l.categories.All()); err != nil {
		restore()
		return model.Category{}, err
	}

	l.publish(ctx, events.New(events.KindCreated, events.EntityCategory, added.ID))
	return added, nil
}

// RemoveCategory deletes a category. Transactions that reference it are left
// alone. Removing an unknown id is a no-op and reports false.
func (l *Ledger) RemoveCategory(ctx context.Context, id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	restore := l.categories.Snapshot()
	if !l.categories.Remove(id) {
		return false, nil
	}
	if err := l.repo.SaveCategories(ctx, l.categories.All()); err != nil {
		restore()
		return false, err
	}

	l.publish(ctx, events.New(events.KindDeleted, events.EntityCategory, id))
	return true, nil
}

// UpdateCategory merges patch into the stored category.
func (l *Ledger) UpdateCategory(ctx context.Context, id string, patch model.CategoryPatch) (model.Category, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, ok := l.categories.Get(id)
	if !ok {
		return model.Category{}, fmt.Errorf("category %s: %w", id, common.ErrNotFound)
	}
	if patch.IsEmpty() {
		return current, nil
	}

	merged := patch.Apply(current)
	if err := merged.Validate(); err != nil {
		return model.Category{}, err
	}

	restore := l.categories.Snapshot()
	updated, _ := l.categories.Update(id, func(model.Category) model.Category { return merged })
	if err := l.repo.SaveCategories(ctx, l.categories.All()); err != nil {
		restore()
		return model.Category{}, err
	}

	l.publish(ctx, events.New(events.KindUpdated, events.EntityCategory, id))
	return updated, nil
}

// TransactionsInCategory counts transactions that reference the category.
func (l *Ledger) TransactionsInCategory(id string) int {
	return len(l.Transactions(model.Filter{Category: id}))
}

// ResetCategories replaces every category with the defaults.
func (l *Ledger) ResetCategories(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	restore := l.categories.Snapshot()
	if err := l.categories.SetAll(model.DefaultCategories()); err != nil {
		return fmt.Errorf("failed to reset categories: %w", err)
	}
	if err := l.repo.SaveCategories(ctx, l.categories.All()); err != nil {
		restore()
		return err
	}

	l.publish(ctx, events.New(events.KindReset, events.EntityCategory, ""))
	return nil
}
