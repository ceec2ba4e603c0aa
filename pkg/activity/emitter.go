package activity

import (
	"sync"
	"time"
)

// subscriberBuffer bounds how many undelivered events a single subscriber
// may accumulate before publishes to it are dropped. A dropped event cannot
// flip a sampling window from active to silent: an earlier buffered event
// already marks the window active.
const subscriberBuffer = 64

// Emitter is a multicast Source fed by Publish. Subscribers registered at
// publish time each receive the event; there is no replay of history.
type Emitter struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
	closed bool
}

// NewEmitter creates an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{
		subs: make(map[int]chan Event),
	}
}

// Publish delivers an event to every live subscriber. Publishing to a
// closed emitter is a no-op.
func (e *Emitter) Publish(ev Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}

	for _, ch := range e.subs {
		select {
		case ch <- ev:
		default:
			// Subscriber stopped draining; drop rather than block.
		}
	}
}

// Touch publishes an event of the given kind stamped with the current time.
func (e *Emitter) Touch(kind Kind) {
	e.Publish(Event{Kind: kind, Time: time.Now()})
}

// Subscribe implements Source.
func (e *Emitter) Subscribe() (<-chan Event, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if e.closed {
		close(ch)
		return ch, func() {}
	}

	id := e.nextID
	e.nextID++
	e.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			if sub, ok := e.subs[id]; ok {
				delete(e.subs, id)
				close(sub)
			}
		})
	}
	return ch, cancel
}

// Close terminates the emitter and closes all subscriber channels.
func (e *Emitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.closed = true

	for id, ch := range e.subs {
		delete(e.subs, id)
		close(ch)
	}
}

// SubscriberCount returns the number of live subscriptions.
func (e *Emitter) SubscriberCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subs)
}
