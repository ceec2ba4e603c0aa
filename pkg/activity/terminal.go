package activity

import (
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// TerminalSource is the default activity feed for terminal-hosted programs.
// It treats every read from the input stream as an input event and every
// SIGWINCH as a resize event, the terminal equivalents of the keydown,
// mousemove and window-resize feeds a graphical host would merge.
//
// The pump goroutines only run while at least one subscription is live, so
// constructing a TerminalSource does not touch the input stream.
type TerminalSource struct {
	emitter *Emitter
	input   io.Reader

	mu   sync.Mutex
	refs int
	stop chan struct{}
	wg   sync.WaitGroup
}

// NewTerminalSource creates a source pumping from the given input stream,
// typically os.Stdin.
func NewTerminalSource(input io.Reader) *TerminalSource {
	return &TerminalSource{
		emitter: NewEmitter(),
		input:   input,
	}
}

// Subscribe implements Source. The first subscription starts the input and
// resize pumps; cancelling the last one stops them.
func (t *TerminalSource) Subscribe() (<-chan Event, func()) {
	ch, cancelSub := t.emitter.Subscribe()

	t.mu.Lock()
	t.refs++
	if t.refs == 1 {
		t.stop = make(chan struct{})
		t.startPumps(t.stop)
	}
	t.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			cancelSub()
			t.mu.Lock()
			t.refs--
			if t.refs == 0 && t.stop != nil {
				close(t.stop)
				t.stop = nil
			}
			t.mu.Unlock()
		})
	}
	return ch, cancel
}

func (t *TerminalSource) startPumps(stop chan struct{}) {
	t.wg.Add(2)

	go func() {
		defer t.wg.Done()
		buf := make([]byte, 1024)
		for {
			// The read itself cannot be interrupted; the stop check
			// takes effect once input (or EOF) arrives.
			n, err := t.input.Read(buf)
			select {
			case <-stop:
				return
			default:
			}
			if n > 0 {
				t.emitter.Touch(KindInput)
			}
			if err != nil {
				return
			}
		}
	}()

	go func() {
		defer t.wg.Done()
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGWINCH)
		defer signal.Stop(sigChan)
		for {
			select {
			case <-sigChan:
				t.emitter.Touch(KindResize)
			case <-stop:
				return
			}
		}
	}()
}
