// Package events publishes storefront domain events. Publishing is best
// effort: callers log failures and carry on.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/Skotchmaster/lucaria/pkg/logging"
)

const (
	TopicUser    = "user_events"
	TopicCart    = "cart_events"
	TopicProduct = "product_events"

	publishTimeout = 5 * time.Second
)

type Event struct {
	Topic   string         `json:"-"`
	Key     string         `json:"-"`
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
	At      time.Time      `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Emit publishes ev under a bounded timeout and only logs a failure.
func Emit(ctx context.Context, p Publisher, ev Event) {
	if p == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := p.Publish(ctx, ev); err != nil {
		logging.FromContext(ctx).Error("event_publish_failed", "topic", ev.Topic, "type", ev.Type, "error", err)
	}
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

func (r *Recorder) Publish(_ context.Context, ev Event) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *Recorder) Types() []string {
	evs := r.Events()
	out := make([]string, len(evs))
	for i, ev := range evs {
		out[i] = ev.Type
	}
	return out
}
