// Package ledger owns the transaction and category collections and applies
// every change to them as a single step: validate, mutate, persist, announce.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/tally/internal/events"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/projection"
	"github.com/Veraticus/tally/internal/store"
)

// Repository persists whole collections.
type Repository interface {
	LoadTransactions(ctx context.Context) ([]model.Transaction, error)
	SaveTransactions(ctx context.Context, txns []model.Transaction) error
	LoadCategories(ctx context.Context) ([]model.Category, bool, error)
	SaveCategories(ctx context.Context, categories []model.Category) error
}

// Ledger is the application state container. Reads may run concurrently;
// mutations are serialized.
type Ledger struct {
	repo         Repository
	publisher    events.Publisher
	logger       *slog.Logger
	transactions *store.Entities[model.Transaction]
	categories   *store.Entities[model.Category]
	newID        store.IDGenerator
	mu           sync.Mutex
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithPublisher sets where change events go. The default discards them.
func WithPublisher(p events.Publisher) Option {
	return func(l *Ledger) {
		if p != nil {
			l.publisher = p
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithIDGenerator overrides how ids are assigned to new records.
func WithIDGenerator(gen store.IDGenerator) Option {
	return func(l *Ledger) {
		if gen != nil {
			l.newID = gen
		}
	}
}

// Open loads both collections from repo. When no categories have ever been
// stored the defaults are used.
func Open(ctx context.Context, repo Repository, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		repo:      repo,
		publisher: events.Noop{},
		logger:    slog.Default(),
		newID:     store.NewUUID,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.transactions = store.New[model.Transaction](store.WithIDGenerator(l.newID))
	l.categories = store.New[model.Category](store.WithIDGenerator(l.newID))

	var (
		txns       []model.Transaction
		categories []model.Category
		found      bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txns, err = repo.LoadTransactions(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, found, err = repo.LoadCategories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}

	if !found {
		categories = model.DefaultCategories()
	}

	if err := l.transactions.SetAll(stableIDs("transaction", dedupe(l.logger, "transaction", txns))); err != nil {
		return nil, fmt.Errorf("failed to index transactions: %w", err)
	}
	if err := l.categories.SetAll(stableIDs("category", dedupe(l.logger, "category", categories))); err != nil {
		return nil, fmt.Errorf("failed to index categories: %w", err)
	}

	l.logger.Debug("ledger loaded",
		"transactions", l.transactions.Len(),
		"categories", l.categories.Len(),
		"default_categories", !found)
	return l, nil
}

// dedupe drops later records that repeat an earlier id. Stored data written by
// other tools is not guaranteed to be unique.
func dedupe[T store.Entity[T]](logger *slog.Logger, kind string, records []T) []T {
	seen := make(map[string]bool, len(records))
	out := make([]T, 0, len(records))
	for _, r := range records {
		id := r.EntityID()
		if id != "" && seen[id] {
			logger.Warn("dropping stored record with repeated id", "kind", kind, "id", id)
			continue
		}
		seen[id] = id != ""
		out = append(out, r)
	}
	return out
}

// stableIDs names stored records that carry no id after their position and
// contents, so every open of the same blob yields the same ids until the
// collection is saved with them.
func stableIDs[T store.Entity[T]](kind string, records []T) []T {
	for i, r := range records {
		if strings.TrimSpace(r.EntityID()) != "" {
			continue
		}
		name := fmt.Sprintf("%s/%d/%+v", kind, i, r)
		records[i] = r.WithEntityID(uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String())
	}
	return records
}

// Transaction returns the transaction with the given id.
func (l *Ledger) Transaction(id string) (model.Transaction, bool) {
	return l.transactions.Get(id)
}

// Transactions returns the transactions that pass filter, in insertion order.
func (l *Ledger) Transactions(filter model.Filter) []model.Transaction {
	return projection.Project(l.transactions.All(), filter)
}

// Summary totals the transactions that pass filter.
func (l *Ledger) Summary(filter model.Filter) projection.Summary {
	return projection.Summarize(l.Transactions(filter))
}

// CategoryBreakdown groups the transactions that pass filter by category.
func (l *Ledger) CategoryBreakdown(filter model.Filter) []projection.CategoryTotal {
	return projection.ByCategory(l.Transactions(filter), l.categories.All())
}

// Category returns the category with the given id.
func (l *Ledger) Category(id string) (model.Category, bool) {
	return l.categories.Get(id)
}

// Categories returns every category in insertion order.
func (l *Ledger) Categories() []model.Category {
	return l.categories.All()
}

// CategoryName resolves a category id for display. Unknown ids resolve to "".
func (l *Ledger) CategoryName(id string) string {
	c, ok := l.categories.Get(id)
	if !ok {
		return ""
	}
	return c.Name
}

func (l *Ledger) publish(ctx context.Context, event events.Event) {
	if err := l.publisher.Publish(ctx, event); err != nil {
		l.logger.Warn("failed to publish change event",
			"kind", event.Kind,
			"entity", event.Entity,
			"id", event.ID,
			"error", err)
	}
}
