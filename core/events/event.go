package events

import (
	"sync"

	"creatorpay/core/types"
)

// Event represents a structured state change emitted by a settlement operation.
type Event interface {
	EventType() string
}

// Emitter broadcasts events to downstream subscribers (e.g. RPC, indexers).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter is a helper that satisfies the Emitter interface while discarding
// all events. It is useful when a component wants to optionally expose events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

// Wire is implemented by events that have a wire representation.
type Wire interface {
	Event() *types.Event
}

// ToWire converts evt into its wire form, or nil when it has none.
func ToWire(evt Event) *types.Event {
	if w, ok := evt.(Wire); ok {
		return w.Event()
	}
	return nil
}

// Multi fans every event out to each non-nil emitter in order.
type Multi []Emitter

func (m Multi) Emit(evt Event) {
	for _, e := range m {
		if e != nil {
			e.Emit(evt)
		}
	}
}

// Buffer holds events until Flush. The state processor uses it so observers
// never see events of an operation that was rolled back.
type Buffer struct {
	mu     sync.Mutex
	events []Event
}

func (b *Buffer) Emit(evt Event) {
	if evt == nil {
		return
	}
	b.mu.Lock()
	b.events = append(b.events, evt)
	b.mu.Unlock()
}

// Events returns a snapshot of the buffered events.
func (b *Buffer) Events() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Event, len(b.events))
	copy(out, b.events)
	return out
}

// Flush forwards buffered events to dst and empties the buffer.
func (b *Buffer) Flush(dst Emitter) {
	b.mu.Lock()
	pending := b.events
	b.events = nil
	b.mu.Unlock()
	if dst == nil {
		return
	}
	for _, evt := range pending {
		dst.Emit(evt)
	}
}

// Reset drops buffered events.
func (b *Buffer) Reset() {
	b.mu.Lock()
	b.events = nil
	b.mu.Unlock()
}
