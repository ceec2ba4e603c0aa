// Package testutil provides shared test doubles.
package testutil

import (
	"sync"

	"github.com/idlewatch/idlewatch/pkg/notification"
)

// MockNotifier is a thread-safe mock implementation of
// notification.Notifier for testing.
type MockNotifier struct {
	mu            sync.Mutex
	notifications []notification.Notification
	attempts      []notification.Notification
	sendErr       error
}

// NewMockNotifier creates a new mock notifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// Send implements the Notifier interface.
func (m *MockNotifier) Send(n notification.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.attempts = append(m.attempts, n)
	if m.sendErr != nil {
		return m.sendErr
	}

	m.notifications = append(m.notifications, n)
	return nil
}

// SetSendError makes subsequent sends fail with err.
func (m *MockNotifier) SetSendError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendErr = err
}

// Notifications returns a copy of successfully sent notifications.
func (m *MockNotifier) Notifications() []notification.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]notification.Notification, len(m.notifications))
	copy(result, m.notifications)
	return result
}

// Attempts returns a copy of all attempted sends, including failures.
func (m *MockNotifier) Attempts() []notification.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]notification.Notification, len(m.attempts))
	copy(result, m.attempts)
	return result
}
