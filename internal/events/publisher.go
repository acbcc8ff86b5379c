package events

import (
	"context"
	"sync"
)

// Publisher delivers record events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, ev RecordEvent) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, RecordEvent) error { return nil }
func (Nop) Close() error                               { return nil }

// Recorder keeps published events in memory. Err, when set, is returned
// from Publish instead of recording.
type Recorder struct {
	mu     sync.Mutex
	events []RecordEvent
	Err    error
}

func (r *Recorder) Publish(ctx context.Context, ev RecordEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, ev)
	return nil
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []RecordEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RecordEvent(nil), r.events...)
}

func (r *Recorder) Close() error { return nil }

var (
	_ Publisher = Nop{}
	_ Publisher = (*Recorder)(nil)
)
