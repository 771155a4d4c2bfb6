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
	"github.com/raphi011/twig/internal/log"
	"github.com/raphi011/twig/internal/naming"
)

// MoveResult describes a completed move or rename.
type MoveResult struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Repo     string `json:"repo"`
	RepoPath string `json:"repo_path"`
	Branch   string `json:"branch,omitempty"`
	// RenamedBranch is the new branch name when Rename renamed it.
	RenamedBranch string   `json:"renamed_branch,omitempty"`
	Manual        bool     `json:"manual,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
}

// compensations is a stack of undo steps run newest first.
type compensations []compensation

type compensation struct {
	desc string
	undo func() error
}

func (c *compensations) push(desc string, undo func() error) {
	*c = append(*c, compensation{desc: desc, undo: undo})
}

// rollback runs every undo step in reverse and joins their failures.
func (c compensations) rollback() error {
	var errList []error
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i].undo(); err != nil {
			errList = append(errList, fmt.Errorf("%s: %w", c[i].desc, err))
		}
	}
	return errors.Join(errList...)
}

// Move relocates a managed worktree. dst must be under the worktrees root
// and must not exist unless force is set, in which case it is removed first.
func (m *Manager) Move(ctx context.Context, src, dst string, force bool) (*MoveResult, error) {
	unlock, err := m.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	return m.move(ctx, m.ResolveTarget(src), m.resolveDest(dst), force)
}

// Rename moves a worktree to a new name under the worktrees root. The name
// is sanitized like a branch name. If the branch is named after the old
// directory it is renamed too; a failing branch rename moves the worktree
// back.
func (m *Manager) Rename(ctx context.Context, oldName, newName string, force bool) (*MoveResult, error) {
	name, err := naming.Slug(newName)
	if err != nil {
		return nil, err
	}

	unlock, err := m.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	src := m.ResolveTarget(oldName)
	dst := filepath.Join(m.Root(), name)

	res, err := m.move(ctx, src, dst, force)
	if err != nil {
		return res, err
	}

	branch := res.Branch
	if branch == "" || branch != filepath.Base(res.From) || branch == name {
		return res, nil
	}

	repoPath := res.RepoPath
	renameErr := func() error {
		if git.LocalBranchExists(ctx, repoPath, name) {
			return &errs.AlreadyExistsError{Kind: "branch", Name: name}
		}
		return git.RenameBranch(ctx, repoPath, branch, name)
	}()
	if renameErr == nil {
		res.RenamedBranch = name
		return res, nil
	}

	if _, err := m.move(ctx, res.To, res.From, false); err != nil {
		return res, errors.Join(renameErr, fmt.Errorf("moving back to %s: %w", res.From, err))
	}
	return nil, renameErr
}

// resolveDest maps a destination argument to a path; bare names land under
// the worktrees root.
func (m *Manager) resolveDest(arg string) string {
	if filepath.IsAbs(arg) {
		return filepath.Clean(arg)
	}
	if filepath.Base(arg) == arg {
		return filepath.Join(m.Root(), arg)
	}
	return m.ResolveTarget(arg)
}

func (m *Manager) move(ctx context.Context, src, dst string, force bool) (*MoveResult, error) {
	l := log.FromContext(ctx)

	reg, err := m.lookupRegistered(ctx, src)
	if err != nil {
		return nil, err
	}
	if !m.IsManaged(dst) {
		return nil, fmt.Errorf("destination %s is not under the worktrees root %s", dst, m.Root())
	}
	if samePath(reg.Path, dst) {
		return nil, fmt.Errorf("source and destination are the same: %s", dst)
	}
	if exists(dst) {
		if !force {
			return nil, &errs.AlreadyExistsError{Kind: "destination", Name: dst}
		}
		if err := m.clearDestination(ctx, dst); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return nil, err
	}

	res := &MoveResult{
		From:     reg.Path,
		To:       dst,
		Repo:     reg.Repo.Name,
		RepoPath: reg.Repo.Path,
		Branch:   reg.Entry.Branch,
	}

	if m.nativeMove(ctx) {
		l.Debug("moving worktree", "from", reg.Path, "to", dst)
		return res, git.MoveWorktree(ctx, reg.Repo.Path, reg.Path, dst)
	}

	l.Debug("git lacks worktree move, relinking manually", "from", reg.Path, "to", dst)
	res.Manual = true
	if err := m.manualMove(ctx, reg, dst, res); err != nil {
		return nil, err
	}
	return res, nil
}

// clearDestination removes whatever is at dst: a registered worktree through
// git, anything else from disk.
func (m *Manager) clearDestination(ctx context.Context, dst string) error {
	if reg, err := m.lookupRegistered(ctx, dst); err == nil {
		if err := git.RemoveWorktree(ctx, reg.Repo.Path, reg.Path, true); err != nil {
			return err
		}
	}
	if err := os.RemoveAll(dst); err != nil {
		return fmt.Errorf("failed to remove %s: %w", dst, err)
	}
	return nil
}

// manualMove relinks a worktree without git worktree move:
//
//  1. set the admin dir aside so git forgets the worktree
//  2. move the directory
//  3. register a fresh admin entry and point it at the moved directory,
//     carrying over the index and HEAD
//
// A failing step undoes the completed ones in reverse order.
func (m *Manager) manualMove(ctx context.Context, reg registered, dst string, res *MoveResult) (err error) {
	l := log.FromContext(ctx)
	src := reg.Path
	var undo compensations
	defer func() {
		if err == nil {
			return
		}
		if rbErr := undo.rollback(); rbErr != nil {
			err = errors.Join(err, fmt.Errorf("rollback incomplete: %w", rbErr))
		}
	}()

	admin, err := git.ReadGitdir(src)
	if err != nil {
		return err
	}
	aside := filepath.Join(filepath.Dir(filepath.Dir(admin)), "twig-move-"+filepath.Base(admin))
	if err := os.Rename(admin, aside); err != nil {
		return fmt.Errorf("failed to deregister worktree: %w", err)
	}
	undo.push("restore admin dir", func() error { return os.Rename(aside, admin) })

	if err := moveDir(src, dst); err != nil {
		return err
	}
	undo.push("move directory back", func() error { return moveDir(dst, src) })

	tmpParent, err := os.MkdirTemp(filepath.Dir(dst), ".twig-move-")
	if err != nil {
		return err
	}
	undo.push("remove temp dir", func() error { return os.RemoveAll(tmpParent) })

	tmp := filepath.Join(tmpParent, filepath.Base(dst))
	if err := git.AddDetachedWorktree(ctx, reg.Repo.Path, tmp); err != nil {
		return err
	}
	newAdmin, err := git.ReadGitdir(tmp)
	if err != nil {
		return err
	}
	undo.push("drop new admin dir", func() error { return os.RemoveAll(newAdmin) })

	dotGit := filepath.Join(dst, ".git")
	oldDotGit, err := os.ReadFile(dotGit)
	if err != nil {
		return err
	}
	if err := os.Rename(filepath.Join(tmp, ".git"), dotGit); err != nil {
		return err
	}
	undo.push("restore .git file", func() error { return os.WriteFile(dotGit, oldDotGit, 0o644) })

	if err := os.WriteFile(filepath.Join(newAdmin, "gitdir"), []byte(dotGit+"\n"), 0o644); err != nil {
		return err
	}

	index := filepath.Join(aside, "index")
	hasIndex := exists(index)
	if hasIndex {
		newIndex := filepath.Join(newAdmin, "index")
		if err := os.Remove(newIndex); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		if err := copyFile(index, newIndex, 0o644); err != nil {
			l.Debug("could not carry over index", "error", err)
			hasIndex = false
		}
	}

	if reg.Entry.Branch != "" {
		err = git.PointHeadAt(ctx, dst, reg.Entry.Branch)
	} else {
		err = git.DetachHeadAt(ctx, dst, reg.Entry.Head)
	}
	if err != nil {
		return err
	}
	if !hasIndex {
		if err := git.ResetIndex(ctx, dst); err != nil {
			return err
		}
	}

	// committed: leftovers only cost disk space
	if err := os.RemoveAll(tmpParent); err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("failed to remove %s: %v", tmpParent, err))
	}
	if err := os.RemoveAll(aside); err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("failed to remove %s: %v", aside, err))
	}
	for _, w := range res.Warnings {
		l.Warnf("%s", w)
	}
	return nil
}
