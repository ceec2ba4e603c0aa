package idlewatch

import "sync"

// streamBuffer bounds undelivered transitions per subscriber. Idle
// transitions are rare (two per idle episode), so the buffer only fills
// when a subscriber has abandoned its channel; publishes then drop rather
// than block the state machine.
const streamBuffer = 16

// Stream is a multicast stream of boolean events. Every subscriber sees
// the same events from its point of subscription onward; there is no
// replay of history.
type Stream struct {
	mu     sync.Mutex
	subs   map[int]chan bool
	nextID int
}

// NewStream creates an empty stream.
func NewStream() *Stream {
	return &Stream{
		subs: make(map[int]chan bool),
	}
}

// Subscribe registers a listener and returns its channel plus a cancel
// function. Cancel is idempotent and closes the channel.
func (s *Stream) Subscribe() (<-chan bool, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan bool, streamBuffer)
	id := s.nextID
	s.nextID++
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if sub, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(sub)
			}
		})
	}
	return ch, cancel
}

// Publish delivers v to every live subscriber.
func (s *Stream) Publish(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- v:
		default:
		}
	}
}

// SubscriberCount returns the number of live subscriptions.
func (s *Stream) SubscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
