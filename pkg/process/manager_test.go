package process

import (
	"io"
	"strings"
	"testing"

	"github.com/idlewatch/idlewatch/pkg/activity"
)

func TestInputReader_ReportsChunksToTap(t *testing.T) {
	var tapped []string
	r := &inputReader{
		reader: strings.NewReader("hello"),
		tap:    func(data []byte) { tapped = append(tapped, string(data)) },
	}

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}

	if string(got) != "hello" {
		t.Errorf("data = %q, want hello", got)
	}
	if strings.Join(tapped, "") != "hello" {
		t.Errorf("tapped = %q, want hello", strings.Join(tapped, ""))
	}
}

func TestInputReader_NilTap(t *testing.T) {
	r := &inputReader{reader: strings.NewReader("x")}

	if _, err := io.ReadAll(r); err != nil {
		t.Fatalf("ReadAll() with nil tap error = %v", err)
	}
}

func TestManager_RefusesSelfWrap(t *testing.T) {
	t.Setenv("IDLEWATCH_WRAPPED", "1")

	m := NewManager(activity.NewEmitter())
	if err := m.Start("true", nil); err == nil {
		t.Error("Start() inside a wrapped session succeeded, want error")
	}
}

func TestPTYManager_FailsBeforeStart(t *testing.T) {
	p := NewPTYManager()

	if err := p.Resize(); err == nil {
		t.Error("Resize() before Start succeeded, want error")
	}
	if err := p.CopyIO(strings.NewReader(""), io.Discard, nil); err == nil {
		t.Error("CopyIO() before Start succeeded, want error")
	}
	if err := p.Wait(); err == nil {
		t.Error("Wait() before Start succeeded, want error")
	}
	if p.Process() != nil || p.ProcessState() != nil {
		t.Error("Process()/ProcessState() before Start should be nil")
	}
}
