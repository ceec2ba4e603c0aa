package process

import (
	"io"
	"os"
)

// PTY defines the interface for PTY operations.
type PTY interface {
	Start(command string, args []string, env []string) error
	Wait() error
	ProcessState() *os.ProcessState
	Process() *os.Process
	Resize() error
	CopyIO(stdin io.Reader, stdout io.Writer, inputTap func([]byte)) error
}
