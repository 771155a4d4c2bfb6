// Package cmd runs external processes with stderr captured into errors.
//
// twig shells out to git rather than linking a git library so that the
// user's configuration (SSH keys, credential helpers, hooks) applies.
package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/raphi011/twig/internal/errs"
	"github.com/raphi011/twig/internal/log"
)

const waitDelay = 2 * time.Second

// Error describes a process that exited unsuccessfully.
// The message is the trimmed stderr when there is any.
type Error struct {
	Name     string
	Args     []string
	Stderr   string
	ExitCode int
	Err      error
}

func (e *Error) Error() string {
	if e.Stderr != "" {
		return e.Stderr
	}
	return fmt.Sprintf("%s %s: %v", e.Name, strings.Join(e.Args, " "), e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports a match against errs.ErrExternalTool.
func (e *Error) Is(target error) bool { return target == errs.ErrExternalTool }

// RunContext executes name with args in dir, discarding stdout.
func RunContext(ctx context.Context, dir, name string, args ...string) error {
	_, err := OutputContext(ctx, dir, name, args...)
	return err
}

// OutputContext executes name with args in dir and returns stdout.
// If ctx is done the context error is returned unchanged.
func OutputContext(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	c := exec.CommandContext(ctx, name, args...)
	c.Dir = dir
	// grandchildren holding stdout open must not outlive a cancelled ctx
	c.WaitDelay = waitDelay
	return output(ctx, c)
}

// ShellContext runs script through sh -c in dir and returns stdout.
func ShellContext(ctx context.Context, dir, script string) ([]byte, error) {
	return OutputContext(ctx, dir, "sh", "-c", script)
}

func output(ctx context.Context, c *exec.Cmd) ([]byte, error) {
	done := log.FromContext(ctx).Command(c.Dir, c.Args[0], c.Args[1:]...)
	start := time.Now()

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	err := c.Run()
	done(time.Since(start))

	if err == nil {
		return stdout.Bytes(), nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	e := &Error{
		Name:     c.Args[0],
		Args:     c.Args[1:],
		Stderr:   strings.TrimSpace(stderr.String()),
		ExitCode: -1,
		Err:      err,
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		e.ExitCode = exitErr.ExitCode()
	}
	return nil, e
}
