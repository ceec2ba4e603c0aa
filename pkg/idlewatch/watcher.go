// Package idlewatch detects user inactivity. A Watcher samples a raw
// activity feed into fixed windows, marks the session idle on the first
// silent window, and runs a cancelable countdown that fires a one-shot
// timeout event when the user stays away past the configured threshold.
package idlewatch

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/idlewatch/idlewatch/pkg/activity"
	"github.com/idlewatch/idlewatch/pkg/config"
	"github.com/idlewatch/idlewatch/pkg/sampler"
)

// Watcher tracks one inactivity timer per instance. It owns the last
// activity timestamp and the idle flag; both change only in reaction to
// sampled windows, countdown ticks and raw cancellation events.
//
// Two pipelines run per watching session: the activity-sampling pipeline
// refreshes the last activity timestamp on every non-empty window, and the
// idle-detection pipeline enters the idle state on a silent window and
// starts the countdown. Both are created by StartWatching and torn down by
// StopWatching, independently of each other.
type Watcher struct {
	cfg config.Config

	mu           sync.Mutex
	source       activity.Source
	lastActivity time.Time
	idle         bool
	watching     bool
	cancelPing   context.CancelFunc
	cancelIdle   context.CancelFunc

	idleChanges *Stream
	timeouts    *Stream

	// Injectable for tests, as the platform detectors inject their
	// command executors.
	now  func() time.Time
	tick time.Duration
	logf func(format string, args ...any)
}

// New creates a watcher with the given configuration. Unset fields fall
// back to the defaults (300s timeout, 1500ms sensitivity). The last
// activity timestamp starts at construction time.
func New(cfg config.Config) *Watcher {
	eff := cfg.WithDefaults()
	w := &Watcher{
		cfg:         eff,
		idleChanges: NewStream(),
		timeouts:    NewStream(),
		now:         time.Now,
		tick:        time.Second,
		logf: func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, "idlewatch: "+format+"\n", args...)
		},
	}
	w.lastActivity = time.Unix(w.now().Unix(), 0)
	return w
}

// StartWatching begins both pipelines. It is idempotent: any existing
// session is stopped first. If no activity source was set, a terminal
// source over stdin is installed. A watcher stopped while idle keeps the
// idle flag, so restarting resumes the countdown for it.
func (w *Watcher) StartWatching() {
	w.StopWatching()

	w.mu.Lock()
	if w.source == nil {
		w.source = activity.NewTerminalSource(os.Stdin)
	}
	src := w.source
	window := w.cfg.Sensitivity
	idle := w.idle

	pingCtx, cancelPing := context.WithCancel(context.Background())
	idleCtx, cancelIdle := context.WithCancel(context.Background())
	w.cancelPing = cancelPing
	w.cancelIdle = cancelIdle
	w.watching = true
	w.mu.Unlock()

	go w.runSampling(pingCtx, src, window)
	go w.runIdleDetection(idleCtx, src, window)
	if idle {
		go w.countdown(idleCtx, src)
	}
}

// StopWatching cancels both pipelines. Calling it when not watching is a
// no-op. It does not reset the last activity timestamp or the idle flag.
func (w *Watcher) StopWatching() {
	w.mu.Lock()
	cancelPing := w.cancelPing
	cancelIdle := w.cancelIdle
	w.cancelPing = nil
	w.cancelIdle = nil
	w.watching = false
	w.mu.Unlock()

	if cancelPing != nil {
		cancelPing()
	}
	if cancelIdle != nil {
		cancelIdle()
	}
}

// OnIdleStatusChanged subscribes to idle flag transitions: true on entering
// idle, false on leaving it (cancellation or timeout). Every subscriber
// sees the same transitions from its subscription point onward.
func (w *Watcher) OnIdleStatusChanged() (<-chan bool, func()) {
	return w.idleChanges.Subscribe()
}

// OnTimeout subscribes to the timeout event. A single true value is
// emitted when the countdown expires; firing stops watching as a side
// effect. No other values ever reach subscribers.
func (w *Watcher) OnTimeout() (<-chan bool, func()) {
	return w.timeouts.Subscribe()
}

// Config returns the effective configuration.
func (w *Watcher) Config() config.Config {
	return w.cfg
}

// SetActivitySource replaces the feed used by both the sampler and the
// countdown cancellation. While the idle-detection pipeline is live this
// is a misuse: it logs a diagnostic and leaves the prior source in place.
func (w *Watcher) SetActivitySource(src activity.Source) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.watching {
		w.logf("cannot replace the activity source while watching; call StopWatching first")
		return
	}
	w.source = src
}

// LastActivity returns the most recent recorded activity time, at second
// resolution.
func (w *Watcher) LastActivity() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastActivity
}

// IsIdle reports whether a countdown is currently live.
func (w *Watcher) IsIdle() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.idle
}

// IsWatching reports whether a watching session is live.
func (w *Watcher) IsWatching() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.watching
}

// runSampling keeps the last activity timestamp fresh.
func (w *Watcher) runSampling(ctx context.Context, src activity.Source, window time.Duration) {
	for batch := range sampler.New(src, window).Run(ctx) {
		if len(batch) > 0 {
			w.markActivity()
		}
	}
}

// runIdleDetection enters the idle state on silent windows.
func (w *Watcher) runIdleDetection(ctx context.Context, src activity.Source, window time.Duration) {
	for batch := range sampler.New(src, window).Run(ctx) {
		if len(batch) == 0 {
			w.enterIdle(ctx, src)
		}
	}
}

func (w *Watcher) markActivity() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastActivity = time.Unix(w.now().Unix(), 0)
}

// enterIdle flips the idle flag and starts the countdown. At most one
// countdown is live at a time: while the flag is set further silent
// windows are no-ops.
func (w *Watcher) enterIdle(ctx context.Context, src activity.Source) {
	w.mu.Lock()
	if w.idle {
		w.mu.Unlock()
		return
	}
	w.idle = true
	w.mu.Unlock()

	w.idleChanges.Publish(true)
	go w.countdown(ctx, src)
}

// exitIdle clears the idle flag and announces the transition. No-op when
// the flag is already clear.
func (w *Watcher) exitIdle() {
	w.mu.Lock()
	if !w.idle {
		w.mu.Unlock()
		return
	}
	w.idle = false
	w.mu.Unlock()

	w.idleChanges.Publish(false)
}

// countdown ticks once per second while idle. Any single raw event cancels
// it immediately, without waiting for the window to close. Stopping the
// watch cancels it silently: StopWatching must not reset the idle flag.
func (w *Watcher) countdown(ctx context.Context, src activity.Source) {
	events, cancel := src.Subscribe()
	defer cancel()

	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			w.exitIdle()
			return
		case <-ticker.C:
			if w.deadlineReached() {
				w.timeouts.Publish(true)
				w.exitIdle()
				w.StopWatching()
				return
			}
		}
	}
}

// deadlineReached reports whether the timeout threshold has passed.
func (w *Watcher) deadlineReached() bool {
	w.mu.Lock()
	deadline := w.lastActivity.Add(w.cfg.Timeout)
	w.mu.Unlock()
	return !w.now().Before(deadline)
}
