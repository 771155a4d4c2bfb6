package static

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/raphi011/twig/internal/ui/styles"
)

func TestRenderTable(t *testing.T) {
	t.Parallel()

	out := RenderTable(
		[]string{"REPO", "BRANCH"},
		[][]string{{"api", "feat-x"}, {"web", "main"}},
	)

	for _, want := range []string{"REPO", "BRANCH", "api", "feat-x", "web", "main"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("table should end with a newline")
	}
}

func TestRenderTable_Empty(t *testing.T) {
	t.Parallel()

	if got := RenderTable([]string{"REPO"}, nil); got != "" {
		t.Errorf("RenderTable() with no rows = %q, want empty", got)
	}
}

func TestFormatAge(t *testing.T) {
	t.Parallel()

	if got := FormatAge(time.Time{}, 14); got != "-" {
		t.Errorf("FormatAge(zero) = %q, want -", got)
	}

	recent := FormatAge(time.Now().Add(-3*time.Hour), 14)
	if recent != "3 hours ago" {
		t.Errorf("FormatAge(recent) = %q, want plain %q", recent, "3 hours ago")
	}

	old := time.Now().Add(-21 * 24 * time.Hour)
	stale := FormatAge(old, 14)
	if stale == "3 weeks ago" {
		t.Error("expected stale age to be styled, got plain text")
	}
	if !strings.Contains(stale, "3 weeks ago") {
		t.Errorf("stale age should contain text, got %q", stale)
	}

	if got := FormatAge(old, 0); got != "3 weeks ago" {
		t.Errorf("disabled stale: got %q, want plain text", got)
	}
}

func TestStatusLine(t *testing.T) {
	t.Parallel()

	line := StatusLine(styles.StatusFailed, "/wt/feat", "worktree remove failed")
	for _, want := range []string{"✗", "/wt/feat", "worktree remove failed"} {
		if !strings.Contains(line, want) {
			t.Errorf("StatusLine() = %q, missing %q", line, want)
		}
	}

	if got := StatusLine(styles.StatusOK, "/wt/a", ""); strings.Contains(got, "(") {
		t.Errorf("StatusLine() without detail should not add parens: %q", got)
	}
}

func TestNewWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewWriter(&buf)
	if _, err := w.Write([]byte("plain\n")); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "plain\n" {
		t.Errorf("got %q", buf.String())
	}
}
