// Package activity defines the raw user-activity event feed consumed by the
// sampler and the idle watcher.
package activity

import "time"

// Kind identifies what produced an activity event.
type Kind int

const (
	// KindInput is a keypress or other direct user input.
	KindInput Kind = iota
	// KindResize is a terminal or window resize.
	KindResize
	// KindCustom is an event injected by a host-supplied source.
	KindCustom
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindResize:
		return "resize"
	case KindCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// Event is a single raw activity occurrence. The payload carries no meaning
// beyond "the user did something"; only occurrence order matters.
type Event struct {
	Kind Kind
	Time time.Time
}

// Source is a push-based feed of raw activity events. Subscribe returns a
// channel delivering events from the point of subscription onward and a
// cancel function that releases the subscription. Cancel is idempotent.
type Source interface {
	Subscribe() (<-chan Event, func())
}
