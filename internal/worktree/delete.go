package worktree

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/raphi011/twig/internal/errs"
	"github.com/raphi011/twig/internal/git"
	"github.com/raphi011/twig/internal/log"
)

// DeleteOptions selects what Delete removes.
type DeleteOptions struct {
	// All targets every managed worktree.
	All bool
	// Force skips the confirmation for All.
	Force bool
}

// Delete removes each target worktree, its local branch and the branch on
// origin. Items are processed in order and independently; the report has one
// entry per target. Without targets the picker offers the managed worktrees.
func (m *Manager) Delete(ctx context.Context, targets []string, opts DeleteOptions) (*BatchReport, error) {
	paths, err := m.deleteTargets(ctx, targets, opts)
	if err != nil {
		return nil, err
	}

	unlock, err := m.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	report := newReport("delete")
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.add(m.deleteOne(ctx, path))
	}
	return report, report.Err()
}

func (m *Manager) deleteTargets(ctx context.Context, targets []string, opts DeleteOptions) ([]string, error) {
	if len(targets) > 0 && !opts.All {
		paths := make([]string, len(targets))
		for i, t := range targets {
			paths[i] = m.ResolveTarget(t)
		}
		return paths, nil
	}

	listed, err := m.List(ctx, true)
	if err != nil {
		return nil, err
	}
	// missing directories are stale references, clean prunes those
	infos := slices.DeleteFunc(listed, func(i Info) bool { return i.Missing })
	if len(infos) == 0 {
		return nil, nil
	}
	if m.picker == nil && !(opts.All && opts.Force) {
		return nil, fmt.Errorf("no worktree given")
	}

	if opts.All {
		if !opts.Force {
			ok, err := m.picker.Confirm(ctx, fmt.Sprintf("Delete all %d worktrees under %s?", len(infos), m.Root()))
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, errs.ErrCancelled
			}
		}
		paths := make([]string, len(infos))
		for i, info := range infos {
			paths[i] = info.Path
		}
		return paths, nil
	}

	labels := make([]string, len(infos))
	for i, info := range infos {
		labels[i] = info.Label()
	}
	picked, err := m.picker.MultiSelect(ctx, "Delete worktrees", labels)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(picked))
	for i, idx := range picked {
		paths[i] = infos[idx].Path
	}
	return paths, nil
}

// deleteOne runs the whole deletion sequence for path and never panics the
// batch: every outcome is captured in the returned item.
func (m *Manager) deleteOne(ctx context.Context, path string) ItemResult {
	l := log.FromContext(ctx)
	item := ItemResult{Subject: path, Status: StatusOK}

	if !m.IsManaged(path) {
		item.fail(fmt.Errorf("not under the worktrees root %s", m.Root()))
		return item
	}
	if !exists(path) {
		item.fail(&errs.NotFoundError{Kind: "worktree", Name: path})
		return item
	}
	// below the top level only linked worktrees are targets, never a
	// directory inside one
	if !m.isTopLevel(path) && !git.IsWorktree(path) {
		item.fail(fmt.Errorf("%s is not a worktree", path))
		return item
	}
	if git.IsPrimaryCheckout(path) {
		item.fail(fmt.Errorf("%s is a primary checkout, not a worktree", path))
		return item
	}

	repoPath, err := git.GetMainRepoPath(path)
	if err == nil && !git.IsPrimaryCheckout(repoPath) {
		err = fmt.Errorf("owning repository %s is gone", repoPath)
	}
	if err != nil {
		// no usable metadata: nothing to tell git
		l.Debug("removing corrupted worktree", "path", path, "reason", err)
		if err := os.RemoveAll(path); err != nil {
			item.fail(fmt.Errorf("failed to remove directory: %w", err))
			return item
		}
		item.Detail = "no git metadata, directory removed"
		return item
	}

	repo := git.NewRepository(repoPath)
	item.Repo = repo.Name
	branch := m.resolveBranch(ctx, repo, path)
	item.Branch = branch

	if err := git.RemoveWorktree(ctx, repo.Path, path, false); err != nil {
		l.Debug("worktree remove failed, retrying with --force", "path", path, "error", err)
		if err := git.RemoveWorktree(ctx, repo.Path, path, true); err != nil {
			item.fail(err)
			return item
		}
	}

	if branch != "" {
		m.deleteBranch(ctx, repo, branch, &item)
	}

	if exists(path) {
		if err := os.RemoveAll(path); err != nil {
			item.fail(fmt.Errorf("failed to remove directory: %w", err))
			return item
		}
	}
	return item
}

// resolveBranch finds the branch checked out at path: asked from inside the
// worktree, then from the registry, then guessed from the directory name.
func (m *Manager) resolveBranch(ctx context.Context, repo git.Repository, path string) string {
	if branch, err := git.GetCurrentBranch(ctx, path); err == nil && branch != "" {
		return branch
	}
	if entries, err := git.ListWorktrees(ctx, repo.Path); err == nil {
		if e, ok := findEntry(entries, path); ok && e.Branch != "" {
			return e.Branch
		}
	}
	if base := filepath.Base(path); git.LocalBranchExists(ctx, repo.Path, base) {
		return base
	}
	return ""
}

// deleteBranch removes branch locally and on origin. The trunk candidates
// are never deleted. Failures are warnings.
func (m *Manager) deleteBranch(ctx context.Context, repo git.Repository, branch string, item *ItemResult) {
	cfg := m.repoConfig(ctx, repo)
	if slices.Contains(cfg.MainBranches, branch) {
		item.warn(ctx, "kept trunk branch %s", branch)
		return
	}

	if git.LocalBranchExists(ctx, repo.Path, branch) {
		if err := git.DeleteLocalBranch(ctx, repo.Path, branch, true); err != nil {
			item.warn(ctx, "%v", err)
		}
	}

	if !git.HasRemote(ctx, repo.Path, "origin") {
		return
	}
	onRemote, err := git.RemoteBranchExists(ctx, repo.Path, branch)
	if err != nil {
		item.warn(ctx, "%v", err)
		return
	}
	if onRemote {
		if err := git.DeleteRemoteBranch(ctx, repo.Path, branch); err != nil {
			item.warn(ctx, "%v", err)
		}
	}
}
