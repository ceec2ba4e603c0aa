package process

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/idlewatch/idlewatch/pkg/activity"
)

// Manager runs the wrapped command and publishes user activity. Keystrokes
// (stdin chunks) and terminal resizes are the raw events the watcher
// samples.
type Manager struct {
	ptyManager PTY
	emitter    *activity.Emitter
	exitCode   int
	mu         sync.Mutex
	sigChan    chan os.Signal
	done       chan struct{}
}

// NewManager creates a process manager publishing activity into emitter.
func NewManager(emitter *activity.Emitter) *Manager {
	return &Manager{
		ptyManager: NewPTYManager(),
		emitter:    emitter,
		done:       make(chan struct{}),
	}
}

// Start starts the wrapped command.
func (m *Manager) Start(command string, args []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Check for self-wrap
	if os.Getenv("IDLEWATCH_WRAPPED") == "1" {
		return fmt.Errorf("already wrapped by idlewatch")
	}
	env := append(os.Environ(), "IDLEWATCH_WRAPPED=1")

	if err := m.ptyManager.Start(command, args, env); err != nil {
		return fmt.Errorf("failed to start process: %w", err)
	}

	go func() {
		tap := func(data []byte) {
			m.emitter.Touch(activity.KindInput)
		}
		if err := m.ptyManager.CopyIO(os.Stdin, os.Stdout, tap); err != nil {
			fmt.Fprintf(os.Stderr, "idlewatch: I/O error: %v\n", err)
		}
	}()

	m.setupSignalForwarding()

	return nil
}

// Wait waits for the process to exit.
func (m *Manager) Wait() error {
	if m.ptyManager == nil {
		return fmt.Errorf("process not started")
	}

	err := m.ptyManager.Wait()

	m.mu.Lock()
	if m.ptyManager.ProcessState() != nil {
		m.exitCode = m.ptyManager.ProcessState().ExitCode()
	}
	m.mu.Unlock()

	close(m.done)
	m.cleanupSignals()

	return err
}

// ExitCode returns the exit code of the process.
func (m *Manager) ExitCode() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exitCode
}

// setupSignalForwarding forwards signals to the child. SIGWINCH doubles as
// a resize activity event.
func (m *Manager) setupSignalForwarding() {
	m.sigChan = make(chan os.Signal, 1)
	signal.Notify(m.sigChan,
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGHUP,
		syscall.SIGQUIT,
		syscall.SIGUSR1,
		syscall.SIGUSR2,
		syscall.SIGWINCH,
	)

	go m.forwardSignals()
}

func (m *Manager) forwardSignals() {
	for {
		select {
		case sig := <-m.sigChan:
			if sig == syscall.SIGWINCH {
				if err := m.ptyManager.Resize(); err != nil {
					fmt.Fprintf(os.Stderr, "idlewatch: failed to resize PTY: %v\n", err)
				}
				m.emitter.Touch(activity.KindResize)
				continue
			}
			if m.ptyManager.Process() != nil {
				if err := m.ptyManager.Process().Signal(sig); err != nil {
					if err != os.ErrProcessDone {
						fmt.Fprintf(os.Stderr, "idlewatch: signal forward error: %v\n", err)
					}
				}
			}
		case <-m.done:
			return
		}
	}
}

func (m *Manager) cleanupSignals() {
	if m.sigChan != nil {
		signal.Stop(m.sigChan)
		close(m.sigChan)
	}
}

// Stop gracefully stops the wrapped process and restores the terminal.
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if pm, ok := m.ptyManager.(*PTYManager); ok {
		_ = pm.Stop()
	}

	if m.ptyManager.Process() != nil {
		if err := m.ptyManager.Process().Signal(syscall.SIGTERM); err != nil {
			if err != os.ErrProcessDone {
				return m.ptyManager.Process().Kill()
			}
		}
	}

	return nil
}
