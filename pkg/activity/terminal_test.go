package activity

import (
	"io"
	"testing"
	"time"
)

func TestTerminalSource_ReadsBecomeInputEvents(t *testing.T) {
	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()

	src := NewTerminalSource(pr)
	ch, cancel := src.Subscribe()
	defer cancel()

	go func() { _, _ = pw.Write([]byte("k")) }()

	select {
	case ev := <-ch:
		if ev.Kind != KindInput {
			t.Errorf("Kind = %v, want %v", ev.Kind, KindInput)
		}
	case <-time.After(time.Second):
		t.Fatal("no event for input read")
	}
}

func TestTerminalSource_NoPumpWithoutSubscribers(t *testing.T) {
	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()
	defer func() { _ = pr.Close() }()

	_ = NewTerminalSource(pr)

	// With no subscription the source must not read the input stream: a
	// write would block forever on an unread pipe, so probe with a
	// goroutine.
	wrote := make(chan struct{})
	go func() {
		_, _ = pw.Write([]byte("x"))
		close(wrote)
	}()

	select {
	case <-wrote:
		t.Error("source consumed input without subscribers")
	case <-time.After(100 * time.Millisecond):
	}
}
