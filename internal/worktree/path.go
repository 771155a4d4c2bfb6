package worktree

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/raphi011/twig/internal/errs"
	"github.com/raphi011/twig/internal/git"
	"github.com/raphi011/twig/internal/reconcile"
)

// ResolveTarget turns a command-line argument into an absolute path.
// Absolute paths are kept, a bare name that exists under the root is taken
// from there, anything else is relative to the working directory.
func (m *Manager) ResolveTarget(arg string) string {
	if filepath.IsAbs(arg) {
		return filepath.Clean(arg)
	}
	if filepath.Base(arg) == arg {
		under := filepath.Join(m.Root(), arg)
		if _, err := os.Lstat(under); err == nil {
			return under
		}
	}
	base := m.workDir
	if base == "" {
		base, _ = os.Getwd()
	}
	return filepath.Join(base, arg)
}

// IsManaged reports whether path lies under the worktrees root.
func (m *Manager) IsManaged(path string) bool {
	return reconcile.IsManaged(m.Root(), path) ||
		reconcile.IsManaged(canonical(m.Root()), canonical(path))
}

// isTopLevel reports whether path is a direct child of the worktrees root.
func (m *Manager) isTopLevel(path string) bool {
	return filepath.Dir(filepath.Clean(path)) == filepath.Clean(m.Root()) ||
		filepath.Dir(canonical(path)) == canonical(m.Root())
}

// canonical resolves symlinks where possible so paths from git (which are
// real paths) compare equal to configured ones.
func canonical(path string) string {
	if real, err := filepath.EvalSymlinks(path); err == nil {
		return real
	}
	// the leaf may not exist yet
	dir, base := filepath.Split(filepath.Clean(path))
	if real, err := filepath.EvalSymlinks(dir); err == nil {
		return filepath.Join(real, base)
	}
	return filepath.Clean(path)
}

func samePath(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b) || canonical(a) == canonical(b)
}

func findEntry(entries []git.WorktreeEntry, path string) (git.WorktreeEntry, bool) {
	if e, ok := git.FindEntry(entries, path); ok {
		return e, true
	}
	for _, e := range entries {
		if samePath(e.Path, path) {
			return e, true
		}
	}
	return git.WorktreeEntry{}, false
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

// registered is a managed worktree as seen by its repository.
type registered struct {
	Path  string
	Repo  git.Repository
	Entry git.WorktreeEntry
}

// lookupRegistered validates that path is a managed worktree known to the
// registry of the repository its .git file points at.
func (m *Manager) lookupRegistered(ctx context.Context, path string) (registered, error) {
	if !m.IsManaged(path) {
		return registered{}, fmt.Errorf("%s is not under the worktrees root %s", path, m.Root())
	}
	if !exists(path) {
		return registered{}, &errs.NotFoundError{Kind: "worktree", Name: path}
	}
	repoPath, err := git.GetMainRepoPath(path)
	if err != nil {
		return registered{}, &errs.NotFoundError{Kind: "worktree", Name: path, Hint: err.Error()}
	}
	entries, err := git.ListWorktrees(ctx, repoPath)
	if err != nil {
		return registered{}, err
	}
	entry, ok := findEntry(entries, path)
	if !ok {
		return registered{}, &errs.NotFoundError{Kind: "worktree", Name: path, Hint: "not registered in " + repoPath}
	}
	return registered{Path: entry.Path, Repo: git.NewRepository(repoPath), Entry: entry}, nil
}
