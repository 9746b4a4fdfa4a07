// Package events announces ledger changes to interested consumers.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Kind describes what happened to an entity.
type Kind string

// Event kinds.
const (
	KindCreated Kind = "created"
	KindUpdated Kind = "updated"
	KindDeleted Kind = "deleted"
	KindReset   Kind = "reset"
)

// Entity names the collection an event refers to.
type Entity string

// Entities.
const (
	EntityTransaction Entity = "transaction"
	EntityCategory    Entity = "category"
)

// Event is a single change notification.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Kind      Kind      `json:"kind"`
	Entity    Entity    `json:"entity"`
	ID        string    `json:"id,omitempty"`
}

// New creates an event stamped with the current time.
func New(kind Kind, entity Entity, id string) Event {
	return Event{
		Timestamp: time.Now().UTC(),
		Kind:      kind,
		Entity:    entity,
		ID:        id,
	}
}

// RoutingKey returns "<entity>.<kind>".
func (e Event) RoutingKey() string {
	return string(e.Entity) + "." + string(e.Kind)
}

// ToJSON encodes the event as a message body.
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON decodes a message body.
func FromJSON(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	return e, nil
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Noop discards every event.
type Noop struct{}

// Publish does nothing.
func (Noop) Publish(context.Context, Event) error { return nil }

// Close does nothing.
func (Noop) Close() error { return nil }
