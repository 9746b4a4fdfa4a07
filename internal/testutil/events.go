package testutil

import (
	"context"
	"sync"

	"github.com/Veraticus/tally/internal/events"
)

// Recorder is an events.Publisher that keeps everything it is given.
type Recorder struct {
	err    error
	events []events.Event
	mu     sync.Mutex
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// FailWith makes Publish record nothing and return err. Pass nil to recover.
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Publish records the event.
func (r *Recorder) Publish(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	return nil
}

// Close does nothing.
func (r *Recorder) Close() error { return nil }

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

// Kinds returns the recorded events as "<entity>.<kind>" strings.
func (r *Recorder) Kinds() []string {
	recorded := r.Events()
	out := make([]string, 0, len(recorded))
	for _, e := range recorded {
		out = append(out, e.RoutingKey())
	}
	return out
}
