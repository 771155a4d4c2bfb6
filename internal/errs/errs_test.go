package errs

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestTypedErrorsUnwrapToSentinels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"not found", &NotFoundError{Kind: "repository", Name: "api"}, ErrNotFound},
		{"already exists", &AlreadyExistsError{Kind: "worktree", Name: "/tmp/x"}, ErrAlreadyExists},
		{"partial batch", &PartialBatchFailure{Op: "delete", Failed: 1, Total: 3}, ErrPartialBatch},
		{"wrapped", fmt.Errorf("create: %w", &NotFoundError{Kind: "branch", Name: "x"}), ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if !errors.Is(tt.err, tt.want) {
				t.Errorf("errors.Is(%v, %v) = false, want true", tt.err, tt.want)
			}
		})
	}
}

func TestNotFoundErrorMessage(t *testing.T) {
	t.Parallel()

	err := &NotFoundError{Kind: "repository", Name: "apu", Hint: "did you mean: api"}
	want := `repository "apu" not found (did you mean: api)`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"cancelled", fmt.Errorf("select repo: %w", ErrCancelled), ExitCancelled},
		{"partial", &PartialBatchFailure{Op: "delete", Failed: 1, Total: 2}, ExitFailure},
		{"context", context.Canceled, ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
