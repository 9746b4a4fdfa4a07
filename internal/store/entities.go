// Package store provides a normalized, in-process entity collection keyed by id.
package store

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Store errors.
var (
	ErrDuplicateID = errors.New("duplicate id")
	ErrEmptyID     = errors.New("id cannot be empty")
)

// Entity is a record that can report its id and return a copy of itself with a new id.
type Entity[T any] interface {
	EntityID() string
	WithEntityID(id string) T
}

// IDGenerator produces identifiers for records added without one.
type IDGenerator func() string

// NewUUID is the default IDGenerator.
func NewUUID() string {
	return uuid.NewString()
}

// Entities is a keyed collection that remembers insertion order.
// All methods are safe for concurrent use and apply atomically.
type Entities[T Entity[T]] struct {
	byID  map[string]T
	newID IDGenerator
	order []string
	mu    sync.RWMutex
}

// Option configures an Entities collection.
type Option func(*options)

type options struct {
	newID IDGenerator
}

// WithIDGenerator overrides the generator used for records added without an id.
func WithIDGenerator(gen IDGenerator) Option {
	return func(o *options) {
		if gen != nil {
			o.newID = gen
		}
	}
}

// New creates an empty collection.
func New[T Entity[T]](opts ...Option) *Entities[T] {
	o := options{newID: NewUUID}
	for _, opt := range opts {
		opt(&o)
	}
	return &Entities[T]{
		byID:  make(map[string]T),
		newID: o.newID,
	}
}

// Add inserts a record, assigning an id when it has none.
// It returns the stored record, or ErrDuplicateID if the id is taken.
func (e *Entities[T]) Add(record T) (T, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := strings.TrimSpace(record.EntityID())
	if id == "" {
		id = e.newID()
		if id == "" {
			var zero T
			return zero, ErrEmptyID
		}
	}
	if _, exists := e.byID[id]; exists {
		var zero T
		return zero, fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}

	record = record.WithEntityID(id)
	e.byID[id] = record
	e.order = append(e.order, id)
	return record, nil
}

// Remove deletes the record with the given id. It reports whether anything was removed.
func (e *Entities[T]) Remove(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.byID[id]; !exists {
		return false
	}
	delete(e.byID, id)
	if i := slices.Index(e.order, id); i >= 0 {
		e.order = slices.Delete(e.order, i, i+1)
	}
	return true
}

// Update replaces the record with the result of merge. The record keeps its id and
// position regardless of what merge returns. It reports whether the id was found.
func (e *Entities[T]) Update(id string, merge func(T) T) (T, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	current, exists := e.byID[id]
	if !exists {
		var zero T
		return zero, false
	}
	updated := merge(current).WithEntityID(id)
	e.byID[id] = updated
	return updated, true
}

// Get returns the record with the given id.
func (e *Entities[T]) Get(id string) (T, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	record, exists := e.byID[id]
	return record, exists
}

// All returns every record in insertion order.
func (e *Entities[T]) All() []T {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]T, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.byID[id])
	}
	return out
}

// Len returns the number of records.
func (e *Entities[T]) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.order)
}

// SetAll replaces the whole collection. Records without an id are assigned one.
// On a duplicate id the collection is left unchanged.
func (e *Entities[T]) SetAll(records []T) error {
	byID := make(map[string]T, len(records))
	order := make([]string, 0, len(records))
	for _, record := range records {
		id := strings.TrimSpace(record.EntityID())
		if id == "" {
			id = e.newID()
		}
		if _, exists := byID[id]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateID, id)
		}
		byID[id] = record.WithEntityID(id)
		order = append(order, id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.byID = byID
	e.order = order
	return nil
}

// Snapshot returns a restore function that puts the collection back to its current state.
func (e *Entities[T]) Snapshot() func() {
	e.mu.RLock()
	byID := make(map[string]T, len(e.byID))
	for id, record := range e.byID {
		byID[id] = record
	}
	order := slices.Clone(e.order)
	e.mu.RUnlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.byID = byID
		e.order = order
	}
}
