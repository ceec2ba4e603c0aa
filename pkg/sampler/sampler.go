// Package sampler batches a raw activity feed into fixed-duration windows.
package sampler

import (
	"context"
	"time"

	"github.com/idlewatch/idlewatch/pkg/activity"
)

// Sampler converts a continuous activity feed into a discrete sequence of
// windows, each holding the (possibly empty) events seen during one
// sampling interval. A window that straddles the start or end of a run is
// truncated to the live interval and judged by its content, not duration.
type Sampler struct {
	source activity.Source
	window time.Duration
}

// New creates a sampler over the given source with the given window length.
func New(source activity.Source, window time.Duration) *Sampler {
	return &Sampler{
		source: source,
		window: window,
	}
}

// Run subscribes to the source and returns a channel that receives one
// batch per elapsed window until ctx is cancelled, at which point the
// subscription is released and the channel closed. Each call makes an
// independent subscription, so a sampler is restartable.
func (s *Sampler) Run(ctx context.Context) <-chan []activity.Event {
	out := make(chan []activity.Event, 1)

	events, cancel := s.source.Subscribe()

	go func() {
		defer close(out)
		defer cancel()

		ticker := time.NewTicker(s.window)
		defer ticker.Stop()

		var batch []activity.Event
		for {
			select {
			case <-ctx.Done():
				s.flushFinal(out, batch)
				return
			case ev, ok := <-events:
				if !ok {
					s.flushFinal(out, batch)
					return
				}
				batch = append(batch, ev)
			case <-ticker.C:
				flush := batch
				batch = nil
				select {
				case out <- flush:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}

// flushFinal delivers the window truncated by the end of the run. Empty
// final windows are not delivered: their only meaning is "no activity",
// which must not be announced while tearing down. The send is best effort
// since the consumer is usually shutting down too.
func (s *Sampler) flushFinal(out chan<- []activity.Event, batch []activity.Event) {
	if len(batch) == 0 {
		return
	}
	select {
	case out <- batch:
	default:
	}
}

// Window returns the configured window length.
func (s *Sampler) Window() time.Duration {
	return s.window
}
