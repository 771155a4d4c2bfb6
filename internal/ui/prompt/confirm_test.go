package prompt

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/raphi011/twig/internal/errs"
)

const deleteAllQuestion = "Delete all 3 worktrees under /home/dev/worktrees?"

// answer feeds keys to a fresh confirm prompt until it quits.
func answer(keys ...tea.KeyPressMsg) (confirmModel, bool) {
	var m tea.Model = confirmModel{prompt: deleteAllQuestion}
	for _, k := range keys {
		var cmd tea.Cmd
		m, cmd = m.Update(k)
		if cmd != nil {
			return m.(confirmModel), true
		}
	}
	return m.(confirmModel), false
}

func TestConfirmModel_DeleteAll(t *testing.T) {
	t.Parallel()

	var (
		yes    = tea.KeyPressMsg{Code: 'y'}
		no     = tea.KeyPressMsg{Code: 'N'}
		enter  = tea.KeyPressMsg{Code: tea.KeyEnter}
		escape = tea.KeyPressMsg{Code: tea.KeyEscape}
		ctrlC  = tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl}
		other  = tea.KeyPressMsg{Code: 'x'}
	)

	tests := []struct {
		name      string
		keys      []tea.KeyPressMsg
		confirmed bool
		cancelled bool
	}{
		{"confirmed", []tea.KeyPressMsg{yes}, true, false},
		{"declined", []tea.KeyPressMsg{no}, false, false},
		{"enter keeps the worktrees", []tea.KeyPressMsg{enter}, false, false},
		{"stray keys wait for an answer", []tea.KeyPressMsg{other, other, yes}, true, false},
		{"escape cancels", []tea.KeyPressMsg{escape}, false, true},
		{"interrupt cancels", []tea.KeyPressMsg{ctrlC}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m, quit := answer(tt.keys...)
			if !quit || !m.done {
				t.Fatalf("prompt still open after %d key(s)", len(tt.keys))
			}
			if m.confirmed != tt.confirmed || m.cancelled != tt.cancelled {
				t.Errorf("confirmed, cancelled = %v, %v, want %v, %v",
					m.confirmed, m.cancelled, tt.confirmed, tt.cancelled)
			}
		})
	}
}

func TestConfirmModel_StaysOpenWithoutAnswer(t *testing.T) {
	t.Parallel()

	m, quit := answer(tea.KeyPressMsg{Code: 'x'})
	if quit || m.done {
		t.Fatal("an unrelated key must not close the prompt")
	}
	if got := m.View().Content; got != deleteAllQuestion+" [y/N] " {
		t.Errorf("View() = %q, want the question with a [y/N] hint", got)
	}
}

func TestFallback_ConfirmDeleteAllCancelled(t *testing.T) {
	t.Parallel()

	// stdin closed before an answer
	f := NewFallback(strings.NewReader(""), &strings.Builder{})
	if _, err := f.Confirm(context.Background(), deleteAllQuestion); !errors.Is(err, errs.ErrCancelled) {
		t.Errorf("Confirm() at EOF err = %v, want ErrCancelled", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f = NewFallback(strings.NewReader("y\n"), &strings.Builder{})
	if _, err := f.Confirm(ctx, deleteAllQuestion); !errors.Is(err, errs.ErrCancelled) {
		t.Errorf("Confirm() after interrupt err = %v, want ErrCancelled", err)
	}
}
