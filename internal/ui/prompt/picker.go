package prompt

import (
	"context"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// Picker asks the user to choose. Implementations return errs.ErrCancelled
// when the user aborts.
type Picker interface {
	// Select returns the index of the chosen option.
	Select(ctx context.Context, title string, options []string) (int, error)
	// MultiSelect returns the chosen indices in ascending order.
	MultiSelect(ctx context.Context, title string, options []string) ([]int, error)
	Text(ctx context.Context, title, placeholder string) (string, error)
	Confirm(ctx context.Context, question string) (bool, error)
}

// New returns the terminal picker when in and out are both terminals,
// otherwise a numbered picker reading lines from in.
func New(in io.Reader, out io.Writer) Picker {
	if IsTerminal(in) && IsTerminal(out) {
		return &TUI{}
	}
	return NewFallback(in, out)
}

// IsTerminal reports whether v is an *os.File attached to a terminal.
func IsTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
