package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/raphi011/twig/internal/cmd"
)

// Repository is a primary checkout.
type Repository struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// NewRepository returns the repository rooted at path.
func NewRepository(path string) Repository {
	path = filepath.Clean(path)
	return Repository{Path: path, Name: filepath.Base(path)}
}

// IsPrimaryCheckout reports whether path contains a .git directory.
func IsPrimaryCheckout(path string) bool {
	info, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil && info.IsDir()
}

// IsWorktree returns true if path is a linked worktree (not a main repo).
// Worktrees have .git as a file pointing to the main repo.
func IsWorktree(path string) bool {
	info, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil && info.Mode().IsRegular()
}

// ReadGitdir parses the "gitdir: <path>" line of a worktree's .git file and
// returns the absolute admin directory (<repo>/.git/worktrees/<name>).
func ReadGitdir(worktreePath string) (string, error) {
	content, err := os.ReadFile(filepath.Join(worktreePath, ".git"))
	if err != nil {
		return "", fmt.Errorf("failed to read .git file: %w", err)
	}

	// Only the first line matters
	line, _, _ := strings.Cut(string(content), "\n")
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "gitdir: ") {
		return "", fmt.Errorf("invalid .git file format: expected 'gitdir: <path>'")
	}

	gitdir := strings.TrimSpace(strings.TrimPrefix(line, "gitdir: "))
	if gitdir == "" {
		return "", fmt.Errorf("invalid .git file format: empty gitdir path")
	}
	if !filepath.IsAbs(gitdir) {
		gitdir = filepath.Join(worktreePath, gitdir)
	}
	return filepath.Clean(gitdir), nil
}

// GetMainRepoPath extracts the owning repository path from a worktree's .git file.
func GetMainRepoPath(worktreePath string) (string, error) {
	gitdir, err := ReadGitdir(worktreePath)
	if err != nil {
		return "", err
	}

	// gitdir is like /path/to/repo/.git/worktrees/name; walk up to .git
	dir := gitdir
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find main repo path from gitdir: %s", gitdir)
		}
		if filepath.Base(dir) == ".git" {
			return parent, nil
		}
		dir = parent
	}
}

// GetRepoRoot returns the primary checkout owning dir, which may be the
// checkout itself or any of its linked worktrees.
func GetRepoRoot(ctx context.Context, dir string) (string, error) {
	out, err := outputGit(ctx, dir, "rev-parse", "--path-format=absolute", "--git-common-dir")
	if err != nil {
		return "", fmt.Errorf("not in a git repository: %w", err)
	}
	common := filepath.Clean(strings.TrimSpace(string(out)))
	if filepath.Base(common) != ".git" {
		return "", fmt.Errorf("bare repositories are not supported: %s", common)
	}
	return filepath.Dir(common), nil
}

// GetTopLevel returns the root of the working tree containing dir.
func GetTopLevel(ctx context.Context, dir string) (string, error) {
	out, err := outputGit(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("not in a git worktree: %w", err)
	}
	return filepath.Clean(strings.TrimSpace(string(out))), nil
}

// GetCurrentBranch returns the checked out branch, or "" for a detached HEAD.
func GetCurrentBranch(ctx context.Context, path string) (string, error) {
	output, err := outputGit(ctx, path, "branch", "--show-current")
	if err != nil {
		return "", fmt.Errorf("failed to get branch: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// RefExists reports whether ref resolves in repoPath.
func RefExists(ctx context.Context, repoPath, ref string) bool {
	return runGit(ctx, repoPath, "rev-parse", "--verify", "--quiet", ref) == nil
}

// LocalBranchExists reports whether refs/heads/<branch> exists.
func LocalBranchExists(ctx context.Context, repoPath, branch string) bool {
	return RefExists(ctx, repoPath, "refs/heads/"+branch)
}

// RemoteTrackingBranchExists reports whether refs/remotes/origin/<branch> exists.
func RemoteTrackingBranchExists(ctx context.Context, repoPath, branch string) bool {
	return RefExists(ctx, repoPath, "refs/remotes/origin/"+branch)
}

// HasRemote reports whether a remote with the given name is configured.
func HasRemote(ctx context.Context, repoPath, remote string) bool {
	return runGit(ctx, repoPath, "remote", "get-url", remote) == nil
}

// RemoteBranchExists asks origin whether it still has branch.
func RemoteBranchExists(ctx context.Context, repoPath, branch string) (bool, error) {
	out, err := outputGit(ctx, repoPath, "ls-remote", "--heads", "origin", "refs/heads/"+branch)
	if err != nil {
		return false, fmt.Errorf("failed to query origin: %w", err)
	}
	return strings.TrimSpace(string(out)) != "", nil
}

// DeleteRemoteBranch deletes branch on origin.
func DeleteRemoteBranch(ctx context.Context, repoPath, branch string) error {
	if err := runGit(ctx, repoPath, "push", "origin", "--delete", branch); err != nil {
		return fmt.Errorf("failed to delete origin/%s: %w", branch, err)
	}
	return nil
}

// DeleteLocalBranch deletes a local branch
func DeleteLocalBranch(ctx context.Context, repoPath, branch string, force bool) error {
	flag := "-d"
	if force {
		flag = "-D"
	}
	if err := runGit(ctx, repoPath, "branch", flag, branch); err != nil {
		return fmt.Errorf("failed to delete branch %s: %w", branch, err)
	}
	return nil
}

// RenameBranch renames a local branch.
func RenameBranch(ctx context.Context, repoPath, oldName, newName string) error {
	if err := runGit(ctx, repoPath, "branch", "-m", oldName, newName); err != nil {
		return fmt.Errorf("failed to rename branch %s to %s: %w", oldName, newName, err)
	}
	return nil
}

// ListBranches returns local branches and origin's remote-tracking branches
// (without the "origin/" prefix), deduplicated, local first.
func ListBranches(ctx context.Context, repoPath string) ([]string, error) {
	out, err := outputGit(ctx, repoPath, "for-each-ref", "--format=%(refname)", "refs/heads", "refs/remotes/origin")
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}

	seen := make(map[string]bool)
	var branches []string
	for _, line := range strings.Split(string(out), "\n") {
		var name string
		switch {
		case strings.HasPrefix(line, "refs/heads/"):
			name = strings.TrimPrefix(line, "refs/heads/")
		case strings.HasPrefix(line, "refs/remotes/origin/"):
			name = strings.TrimPrefix(line, "refs/remotes/origin/")
		}
		if name == "" || name == "HEAD" || seen[name] {
			continue
		}
		seen[name] = true
		branches = append(branches, name)
	}
	return branches, nil
}

// IsAncestor reports whether branch is reachable from target, i.e. merged
// into it. Exit status 1 means "not an ancestor"; other failures are errors.
func IsAncestor(ctx context.Context, repoPath, branch, target string) (bool, error) {
	err := runGit(ctx, repoPath, "merge-base", "--is-ancestor", branch, target)
	if err == nil {
		return true, nil
	}
	var cmdErr *cmd.Error
	if errors.As(err, &cmdErr) && cmdErr.ExitCode == 1 {
		return false, nil
	}
	return false, fmt.Errorf("failed to check if %s is merged into %s: %w", branch, target, err)
}

// IsDirty reports uncommitted changes (including untracked files) in path.
func IsDirty(ctx context.Context, path string) (bool, error) {
	out, err := outputGit(ctx, path, "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("failed to get status: %w", err)
	}
	return strings.TrimSpace(string(out)) != "", nil
}

// GetUpstream returns the upstream of HEAD (e.g. "origin/feature"),
// or "" when none is configured.
func GetUpstream(ctx context.Context, path string) string {
	out, err := outputGit(ctx, path, "rev-parse", "--abbrev-ref", "--symbolic-full-name", "@{u}")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// GetUpstreamRemote returns the remote the current branch tracks.
func GetUpstreamRemote(ctx context.Context, path, branch string) string {
	out, err := outputGit(ctx, path, "config", "--get", "branch."+branch+".remote")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// RevParse resolves ref to a commit hash.
func RevParse(ctx context.Context, path, ref string) (string, error) {
	out, err := outputGit(ctx, path, "rev-parse", ref)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", ref, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Fetch fetches remote.
func Fetch(ctx context.Context, path, remote string) error {
	if err := runGit(ctx, path, "fetch", remote); err != nil {
		return fmt.Errorf("failed to fetch %s: %w", remote, err)
	}
	return nil
}

// Checkout switches path to branch.
func Checkout(ctx context.Context, path, branch string) error {
	if err := runGit(ctx, path, "checkout", branch); err != nil {
		return fmt.Errorf("failed to checkout %s: %w", branch, err)
	}
	return nil
}

// CheckoutTracking creates branch from origin/<branch> with upstream set
// and switches path to it.
func CheckoutTracking(ctx context.Context, path, branch string) error {
	if err := runGit(ctx, path, "checkout", "--track", "-b", branch, "origin/"+branch); err != nil {
		return fmt.Errorf("failed to checkout %s from origin: %w", branch, err)
	}
	return nil
}

// PullFastForward runs `git pull --ff-only --prune`.
func PullFastForward(ctx context.Context, path string) error {
	if err := runGit(ctx, path, "pull", "--ff-only", "--prune"); err != nil {
		return fmt.Errorf("failed to pull: %w", err)
	}
	return nil
}

// Rebase rebases HEAD onto ref. On failure the rebase is aborted so the
// worktree is left as it was.
func Rebase(ctx context.Context, path, onto string) error {
	if err := runGit(ctx, path, "rebase", onto); err != nil {
		// Best effort: the original error is what matters.
		_ = runGit(context.WithoutCancel(ctx), path, "rebase", "--abort")
		return fmt.Errorf("rebase onto %s failed (aborted): %w", onto, err)
	}
	return nil
}

// MergeFastForward fast-forwards HEAD to ref.
func MergeFastForward(ctx context.Context, path, ref string) error {
	if err := runGit(ctx, path, "merge", "--ff-only", ref); err != nil {
		return fmt.Errorf("fast-forward to %s failed: %w", ref, err)
	}
	return nil
}

// CommitEmpty creates an empty commit with message.
func CommitEmpty(ctx context.Context, path, message string) error {
	if err := runGit(ctx, path, "commit", "--allow-empty", "-m", message); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// GetLastCommitTime returns the committer time of HEAD.
func GetLastCommitTime(ctx context.Context, path string) (time.Time, error) {
	out, err := outputGit(ctx, path, "log", "-1", "--format=%ct")
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get last commit time: %w", err)
	}
	sec, err := strconv.ParseInt(strings.TrimSpace(string(out)), 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse commit time: %w", err)
	}
	return time.Unix(sec, 0), nil
}
