package notification

import (
	"fmt"
	"io"
	"os"
)

// StdoutNotifier writes notifications as plain text, the fallback when no
// ntfy topic is configured.
type StdoutNotifier struct {
	out io.Writer
}

// NewStdoutNotifier creates a notifier writing to stderr.
func NewStdoutNotifier() *StdoutNotifier {
	return &StdoutNotifier{out: os.Stderr}
}

// NewWriterNotifier creates a notifier writing to the given writer.
func NewWriterNotifier(out io.Writer) *StdoutNotifier {
	return &StdoutNotifier{out: out}
}

// Send implements Notifier.
func (s *StdoutNotifier) Send(n Notification) error {
	_, err := fmt.Fprintf(s.out, "[%s] %s: %s\n", n.Time.Format("15:04:05"), n.Title, n.Message)
	return err
}
