package git

import (
	"context"
	"fmt"
)

// AddWorktree creates path with a new branch started from base. The new
// branch never tracks base, even when base is a remote-tracking ref.
func AddWorktree(ctx context.Context, repoPath, path, branch, base string) error {
	if err := runGit(ctx, repoPath, "worktree", "add", "--no-track", "-b", branch, path, base); err != nil {
		return fmt.Errorf("failed to create worktree: %w", err)
	}
	return nil
}

// AddExistingWorktree checks out an existing local branch at path.
func AddExistingWorktree(ctx context.Context, repoPath, path, branch string) error {
	if err := runGit(ctx, repoPath, "worktree", "add", path, branch); err != nil {
		return fmt.Errorf("failed to create worktree: %w", err)
	}
	return nil
}

// AddTrackingWorktree creates a local branch tracking origin/<branch> at path.
func AddTrackingWorktree(ctx context.Context, repoPath, path, branch string) error {
	if err := runGit(ctx, repoPath, "worktree", "add", "--track", "-b", branch, path, "origin/"+branch); err != nil {
		return fmt.Errorf("failed to create worktree: %w", err)
	}
	return nil
}

// AddDetachedWorktree registers path without checking files out.
// Used to mint a fresh admin entry when relinking a moved worktree.
func AddDetachedWorktree(ctx context.Context, repoPath, path string) error {
	if err := runGit(ctx, repoPath, "worktree", "add", "--detach", "--no-checkout", path); err != nil {
		return fmt.Errorf("failed to register worktree: %w", err)
	}
	return nil
}

// RemoveWorktree removes a git worktree
func RemoveWorktree(ctx context.Context, repoPath, path string, force bool) error {
	args := []string{"worktree", "remove", path}
	if force {
		args = append(args, "--force")
	}
	if err := runGit(ctx, repoPath, args...); err != nil {
		return fmt.Errorf("failed to remove worktree: %w", err)
	}
	return nil
}

// MoveWorktree moves a git worktree to a new path
func MoveWorktree(ctx context.Context, repoPath, src, dst string) error {
	if err := runGit(ctx, repoPath, "worktree", "move", src, dst); err != nil {
		return fmt.Errorf("failed to move worktree: %w", err)
	}
	return nil
}

// PruneWorktrees prunes stale worktree references
func PruneWorktrees(ctx context.Context, repoPath string) error {
	if err := runGit(ctx, repoPath, "worktree", "prune"); err != nil {
		return fmt.Errorf("failed to prune worktrees: %w", err)
	}
	return nil
}

// PointHeadAt makes HEAD of the worktree at path a symbolic ref to branch.
// The index is left alone.
func PointHeadAt(ctx context.Context, path, branch string) error {
	if err := runGit(ctx, path, "symbolic-ref", "HEAD", "refs/heads/"+branch); err != nil {
		return fmt.Errorf("failed to point HEAD at %s: %w", branch, err)
	}
	return nil
}

// DetachHeadAt sets HEAD of the worktree at path to commit, detached.
func DetachHeadAt(ctx context.Context, path, commit string) error {
	if err := runGit(ctx, path, "update-ref", "--no-deref", "HEAD", commit); err != nil {
		return fmt.Errorf("failed to detach HEAD at %s: %w", commit, err)
	}
	return nil
}

// ResetIndex rebuilds the index of path from HEAD without touching files.
func ResetIndex(ctx context.Context, path string) error {
	if err := runGit(ctx, path, "reset", "--quiet"); err != nil {
		return fmt.Errorf("failed to refresh index: %w", err)
	}
	return nil
}

// RepairWorktree rewrites the links between repoPath and the worktree at
// path after the worktree directory was moved by hand. Needs git 2.29+.
func RepairWorktree(ctx context.Context, repoPath, path string) error {
	if err := runGit(ctx, repoPath, "worktree", "repair", path); err != nil {
		return fmt.Errorf("failed to repair worktree: %w", err)
	}
	return nil
}
