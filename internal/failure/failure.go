// Package failure carries structured store-failure events from the data
// layer to whoever renders or logs them. The domain service reports
// through the Reporter interface; the process-wide Bus fan-out lives in
// cmd wiring so the core has no hidden global.
package failure

import "sync"

// Operation names the store access that failed.
type Operation string

const (
	OpGet    Operation = "get"
	OpList   Operation = "list"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
	OpWrite  Operation = "write"
)

// Event describes a failed store operation.
type Event struct {
	Path                string
	Operation           Operation
	RequestResourceData any
}

// Reporter receives failure events. Report must not block.
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(Event)

// Report calls the wrapped function.
func (f ReporterFunc) Report(e Event) { f(e) }

// Bus is an in-process publish/subscribe channel for failure events.
// Slow subscribers drop events rather than blocking the publisher.
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

// NewBus constructs an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Report publishes the event to every subscriber without blocking.
func (b *Bus) Report(e Event) {
	recordFailure(e.Operation)

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe registers a listener. The returned cancel func removes the
// subscription and closes the channel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Event, 16)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if existing, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(existing)
		}
	}
	return ch, cancel
}
