package prompt

import (
	"context"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/colorprofile"

	"github.com/raphi011/twig/internal/errs"
)

// TUI is the bubbletea-backed Picker. It renders to stderr so stdout stays
// free for the path a command prints.
type TUI struct{}

func runProgram(ctx context.Context, m tea.Model) (tea.Model, error) {
	// Detect color profile for stderr (handles piped output, NO_COLOR, etc.)
	profile := colorprofile.Detect(os.Stderr, os.Environ())

	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithOutput(os.Stderr),
		tea.WithColorProfile(profile),
	)
	final, err := p.Run()
	if err != nil {
		if ctx.Err() != nil {
			return nil, errs.ErrCancelled
		}
		return nil, err
	}
	return final, nil
}

// Select implements Picker.
func (TUI) Select(ctx context.Context, title string, options []string) (int, error) {
	if len(options) == 0 {
		return -1, errs.ErrCancelled
	}
	final, err := runProgram(ctx, newSelectModel(title, options))
	if err != nil {
		return -1, err
	}
	m := final.(selectModel)
	if m.cancelled || m.selected < 0 || m.selected >= len(options) {
		return -1, errs.ErrCancelled
	}
	return m.selected, nil
}

// MultiSelect implements Picker.
func (TUI) MultiSelect(ctx context.Context, title string, options []string) ([]int, error) {
	if len(options) == 0 {
		return nil, errs.ErrCancelled
	}
	final, err := runProgram(ctx, newMultiSelectModel(title, options))
	if err != nil {
		return nil, err
	}
	m := final.(*multiSelectModel)
	if m.cancelled {
		return nil, errs.ErrCancelled
	}
	return m.Selected(), nil
}

// Text implements Picker.
func (TUI) Text(ctx context.Context, title, placeholder string) (string, error) {
	final, err := runProgram(ctx, newTextInputModel(title, placeholder))
	if err != nil {
		return "", err
	}
	m := final.(textInputModel)
	if m.cancelled {
		return "", errs.ErrCancelled
	}
	return m.textInput.Value(), nil
}

// Confirm implements Picker.
func (TUI) Confirm(ctx context.Context, question string) (bool, error) {
	final, err := runProgram(ctx, confirmModel{prompt: question})
	if err != nil {
		return false, err
	}
	m := final.(confirmModel)
	if m.cancelled {
		return false, errs.ErrCancelled
	}
	return m.confirmed, nil
}
