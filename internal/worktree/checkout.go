package worktree

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/raphi011/twig/internal/errs"
	"github.com/raphi011/twig/internal/git"
	"github.com/raphi011/twig/internal/log"
	"github.com/raphi011/twig/internal/naming"
)

// CheckoutResult describes a worktree created for an existing branch.
type CheckoutResult struct {
	Path     string         `json:"path"`
	Branch   string         `json:"branch"`
	Repo     git.Repository `json:"repo"`
	Tracking bool           `json:"tracking,omitempty"`
}

// Checkout creates a worktree for an existing branch. A local branch is
// checked out as is; a branch only on origin gets a local tracking branch.
// Without a branch the picker offers the repository's branches.
func (m *Manager) Checkout(ctx context.Context, branch, repoName string) (*CheckoutResult, error) {
	l := log.FromContext(ctx)

	repo, err := m.resolveRepo(ctx, repoName)
	if err != nil {
		return nil, err
	}

	if branch == "" {
		if m.picker == nil {
			return nil, fmt.Errorf("no branch given")
		}
		branches, err := git.ListBranches(ctx, repo.Path)
		if err != nil {
			return nil, err
		}
		idx, err := m.picker.Select(ctx, "Checkout branch", branches)
		if err != nil {
			return nil, err
		}
		branch = branches[idx]
	}

	name, err := naming.Sanitize(branch)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(m.Root(), name)
	res := &CheckoutResult{Path: path, Branch: branch, Repo: repo}

	unlock, err := m.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if exists(path) {
		return nil, &errs.AlreadyExistsError{Kind: "worktree", Name: path}
	}

	switch {
	case git.LocalBranchExists(ctx, repo.Path, branch):
		l.Debug("checking out local branch", "branch", branch, "path", path)
		err = git.AddExistingWorktree(ctx, repo.Path, path, branch)
	case git.RemoteTrackingBranchExists(ctx, repo.Path, branch):
		l.Debug("checking out remote branch", "branch", branch, "path", path)
		res.Tracking = true
		err = git.AddTrackingWorktree(ctx, repo.Path, path, branch)
	default:
		return nil, &errs.NotFoundError{Kind: "branch", Name: branch, Hint: "fetch first if it only exists on origin"}
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}
