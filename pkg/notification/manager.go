package notification

import (
	"sync"

	"github.com/idlewatch/idlewatch/pkg/config"
)

// Manager gates notification delivery: quiet mode drops everything, the
// rate limiter drops bursts, everything else goes to the notifier.
type Manager struct {
	config      *config.Config
	notifier    Notifier
	rateLimiter RateLimiter

	mu sync.Mutex
}

// NewManager creates a notification manager.
func NewManager(cfg *config.Config, notifier Notifier, rateLimiter RateLimiter) *Manager {
	return &Manager{
		config:      cfg,
		notifier:    notifier,
		rateLimiter: rateLimiter,
	}
}

// Send delivers a notification unless quiet mode or the rate limit drops
// it. Drops are silent: notifications are best effort.
func (m *Manager) Send(n Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.config != nil && m.config.Quiet {
		return nil
	}

	if m.rateLimiter != nil && !m.rateLimiter.Allow() {
		return nil
	}

	return m.notifier.Send(n)
}
