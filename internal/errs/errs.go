// Package errs defines the error taxonomy shared by twig's packages.
//
// Each failure class has a sentinel that callers match with [errors.Is].
// Typed errors carry details and unwrap to their sentinel:
//
//   - [ErrCancelled]: the user aborted a prompt; nothing was mutated
//   - [ErrNotFound]: a repository, branch, worktree or ticket is absent
//   - [ErrAlreadyExists]: a precondition failed because the target exists
//   - [ErrExternalTool]: git or a collaborator process exited non-zero
//   - [ErrPartialBatch]: one or more items of a batch operation failed
//   - [ErrInvalidName]: a name sanitized to the empty string
package errs

import (
	"errors"
	"fmt"
)

var (
	ErrCancelled     = errors.New("cancelled")
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrExternalTool  = errors.New("external tool failed")
	ErrPartialBatch  = errors.New("partial batch failure")
	ErrInvalidName   = errors.New("invalid name")
)

// NotFoundError reports a missing entity of the given kind.
type NotFoundError struct {
	Kind string // "repository", "branch", "worktree", "ticket", ...
	Name string
	Hint string // optional suggestion appended to the message
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("%s %q not found", e.Kind, e.Name)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// AlreadyExistsError reports a precondition violation on an existing entity.
type AlreadyExistsError struct {
	Kind string
	Name string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s already exists: %s", e.Kind, e.Name)
}

func (e *AlreadyExistsError) Unwrap() error { return ErrAlreadyExists }

// PartialBatchFailure summarizes a batch where some items failed.
// Items that succeeded stay committed.
type PartialBatchFailure struct {
	Op     string
	Failed int
	Total  int
}

func (e *PartialBatchFailure) Error() string {
	return fmt.Sprintf("%s: %d of %d item(s) failed", e.Op, e.Failed, e.Total)
}

func (e *PartialBatchFailure) Unwrap() error { return ErrPartialBatch }

// Exit codes returned by the CLI.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitCancelled = 130
)

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrCancelled):
		return ExitCancelled
	default:
		return ExitFailure
	}
}
