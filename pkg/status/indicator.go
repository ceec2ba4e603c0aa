// Package status renders a small idle-state marker for the wrapped
// session.
package status

import (
	"fmt"
	"io"
	"sync"
)

// Indicator manages the status display in the terminal. It shows a marker
// on the last line while the watched session is idle and clears it when
// activity resumes.
type Indicator struct {
	mu      sync.Mutex
	enabled bool
	writer  io.Writer
	isIdle  bool
}

// NewIndicator creates a new status indicator.
func NewIndicator(writer io.Writer, enabled bool) *Indicator {
	return &Indicator{
		writer:  writer,
		enabled: enabled,
	}
}

// SetIdleState updates the idle marker. Drawing is best effort.
func (i *Indicator) SetIdleState(idle bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if idle == i.isIdle {
		return
	}
	i.isIdle = idle

	if idle {
		_ = i.draw("\033[33mⓏ idle\033[0m")
	} else {
		_ = i.clear()
	}
}

// Clear removes the marker, typically on shutdown.
func (i *Indicator) Clear() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.isIdle = false
	return i.clear()
}

// draw writes text on the terminal's last line. DEC save/restore cursor
// (\0337/\0338) is used over \033[s/\033[u for wider terminal support;
// line 999 clamps to the actual last line without scrolling.
func (i *Indicator) draw(text string) error {
	if !i.enabled || i.writer == nil {
		return nil
	}

	sequence := fmt.Sprintf("\0337\033[r\033[999;1H\033[2K%s\0338", text)
	_, err := fmt.Fprint(i.writer, sequence)
	return err
}

func (i *Indicator) clear() error {
	if !i.enabled || i.writer == nil {
		return nil
	}

	_, err := fmt.Fprint(i.writer, "\0337\033[r\033[999;1H\033[2K\0338")
	return err
}
