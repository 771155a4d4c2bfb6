package progress

import (
	"bytes"
	"testing"
)

func TestSpinner_NotATerminal(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := NewSpinner(&buf, "Working")
	s.Start()
	s.UpdateMessage("Still working")
	s.Stop()

	if buf.Len() != 0 {
		t.Errorf("spinner wrote %q to a non-terminal", buf.String())
	}
}

func TestSpinner_StopBeforeStart(t *testing.T) {
	t.Parallel()

	s := NewSpinner(&bytes.Buffer{}, "Test")
	// Stop without Start should not panic
	s.Stop()
}
