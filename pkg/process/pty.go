// Package process runs an interactive child command under a PTY and taps
// the user's input stream as an activity feed.
package process

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/creack/pty"
	"golang.org/x/term"
)

// PTYManager handles PTY-based process execution.
type PTYManager struct {
	cmd         *exec.Cmd
	pty         *os.File
	mu          sync.Mutex
	restoreFunc func()
}

// Ensure PTYManager implements PTY
var _ PTY = (*PTYManager)(nil)

// NewPTYManager creates a new PTY manager.
func NewPTYManager() *PTYManager {
	return &PTYManager{}
}

// Start starts a process with PTY.
func (p *PTYManager) Start(command string, args []string, env []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd != nil {
		return fmt.Errorf("process already started")
	}

	p.cmd = exec.Command(command, args...)
	p.cmd.Env = env

	var err error
	p.pty, err = pty.Start(p.cmd)
	if err != nil {
		p.cmd = nil
		return fmt.Errorf("failed to start PTY: %w", err)
	}

	// Some environments don't have a terminal; run with the default size.
	if err := p.resizeLocked(); err != nil {
		fmt.Fprintf(os.Stderr, "idlewatch: failed to copy terminal size: %v\n", err)
	}

	return nil
}

// Wait waits for the process to complete.
func (p *PTYManager) Wait() error {
	if p.cmd == nil {
		return fmt.Errorf("process not started")
	}

	err := p.cmd.Wait()

	p.mu.Lock()
	if p.pty != nil {
		_ = p.pty.Close()
	}
	p.mu.Unlock()

	return err
}

// ProcessState returns the process state.
func (p *PTYManager) ProcessState() *os.ProcessState {
	if p.cmd == nil {
		return nil
	}
	return p.cmd.ProcessState
}

// Process returns the underlying process.
func (p *PTYManager) Process() *os.Process {
	if p.cmd == nil {
		return nil
	}
	return p.cmd.Process
}

// Resize copies the controlling terminal's size to the PTY.
func (p *PTYManager) Resize() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resizeLocked()
}

func (p *PTYManager) resizeLocked() error {
	if p.pty == nil {
		return fmt.Errorf("PTY not initialized")
	}

	size, err := pty.GetsizeFull(os.Stdin)
	if err != nil {
		return err
	}

	return pty.Setsize(p.pty, size)
}

// Stop restores the terminal state.
func (p *PTYManager) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.restoreFunc != nil {
		p.restoreFunc()
		p.restoreFunc = nil
	}

	return nil
}

// CopyIO copies stdin to the PTY and the PTY to stdout. Every chunk read
// from stdin is reported to inputTap before being forwarded, which is how
// keystrokes become activity events.
func (p *PTYManager) CopyIO(stdin io.Reader, stdout io.Writer, inputTap func([]byte)) error {
	p.mu.Lock()
	if p.pty == nil {
		p.mu.Unlock()
		return fmt.Errorf("PTY not initialized")
	}
	ptyFile := p.pty
	p.mu.Unlock()

	if file, ok := stdin.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		if oldState, err := term.MakeRaw(int(file.Fd())); err == nil {
			restore := func() { _ = term.Restore(int(file.Fd()), oldState) }
			p.mu.Lock()
			p.restoreFunc = restore
			p.mu.Unlock()
			defer func() {
				p.mu.Lock()
				if p.restoreFunc != nil {
					p.restoreFunc()
					p.restoreFunc = nil
				}
				p.mu.Unlock()
			}()
		}
	}

	errChan := make(chan error, 2)

	// Copy from stdin to PTY through the tap. This copy ends with the
	// session; it is not waited on, as stdin reads cannot be interrupted.
	go func() {
		reader := &inputReader{reader: stdin, tap: inputTap}
		if _, err := io.Copy(ptyFile, reader); err != nil {
			errChan <- fmt.Errorf("stdin copy error: %w", err)
		}
	}()

	// Copy from PTY to stdout; finishes when the child exits.
	if _, err := io.Copy(stdout, ptyFile); err != nil {
		errChan <- fmt.Errorf("stdout copy error: %w", err)
	}

	select {
	case err := <-errChan:
		return err
	default:
		return nil
	}
}

// inputReader wraps a reader and reports each chunk of data to a tap.
type inputReader struct {
	reader io.Reader
	tap    func([]byte)
}

func (r *inputReader) Read(p []byte) (n int, err error) {
	n, err = r.reader.Read(p)
	if n > 0 && r.tap != nil {
		r.tap(p[:n])
	}
	return n, err
}
