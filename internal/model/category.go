package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCategory is returned when a category fails validation.
var ErrInvalidCategory = errors.New("invalid category")

// Category is a user-defined label that transactions reference by ID.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DefaultCategories returns the categories a fresh ledger is seeded with.
func DefaultCategories() []Category {
	return []Category{
		{ID: "1", Name: "Salary"},
		{ID: "2", Name: "Groceries"},
		{ID: "3", Name: "Utilities"},
		{ID: "4", Name: "Entertainment"},
	}
}

// EntityID returns the category's identifier.
func (c Category) EntityID() string {
	return c.ID
}

// WithEntityID returns a copy of the category carrying the given id.
func (c Category) WithEntityID(id string) Category {
	c.ID = id
	return c
}

// Validate checks that the category has a name and an id filters can tell apart from FilterAll.
func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidCategory)
	}
	if strings.EqualFold(strings.TrimSpace(c.ID), FilterAll) {
		return fmt.Errorf("%w: id %q is reserved", ErrInvalidCategory, FilterAll)
	}
	return nil
}

// CategoryPatch holds the fields to merge into an existing category.
type CategoryPatch struct {
	Name *string
}

// IsEmpty reports whether the patch changes nothing.
func (p CategoryPatch) IsEmpty() bool {
	return p.Name == nil
}

// Apply merges the patch into c and returns the result.
func (p CategoryPatch) Apply(c Category) Category {
	if p.Name != nil {
		c.Name = *p.Name
	}
	return c
}
