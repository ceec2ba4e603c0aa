package status

import (
	"strings"
	"testing"
)

func TestIndicator_DrawsOnIdleAndClearsOnActive(t *testing.T) {
	var buf strings.Builder
	i := NewIndicator(&buf, true)

	i.SetIdleState(true)
	if !strings.Contains(buf.String(), "idle") {
		t.Errorf("output = %q, want idle marker", buf.String())
	}

	buf.Reset()
	i.SetIdleState(false)
	if !strings.Contains(buf.String(), "\033[2K") {
		t.Errorf("output = %q, want clear sequence", buf.String())
	}
}

func TestIndicator_NoRedundantDraws(t *testing.T) {
	var buf strings.Builder
	i := NewIndicator(&buf, true)

	i.SetIdleState(true)
	first := buf.String()
	i.SetIdleState(true)

	if buf.String() != first {
		t.Error("repeated SetIdleState(true) drew again")
	}
}

func TestIndicator_DisabledWritesNothing(t *testing.T) {
	var buf strings.Builder
	i := NewIndicator(&buf, false)

	i.SetIdleState(true)
	if err := i.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	if buf.Len() != 0 {
		t.Errorf("disabled indicator wrote %q", buf.String())
	}
}
