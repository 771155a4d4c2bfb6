package worktree

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/raphi011/twig/internal/git"
	"github.com/raphi011/twig/internal/log"
)

// Info describes one managed worktree.
type Info struct {
	Path       string    `json:"path"`
	Repo       string    `json:"repo"`
	RepoPath   string    `json:"repo_path"`
	Branch     string    `json:"branch,omitempty"`
	Detached   bool      `json:"detached,omitempty"`
	Dirty      bool      `json:"dirty"`
	Missing    bool      `json:"missing,omitempty"`
	Locked     bool      `json:"locked,omitempty"`
	LastCommit time.Time `json:"last_commit,omitzero"`
}

// Label is how the worktree is offered in pickers.
func (i Info) Label() string {
	branch := i.Branch
	if branch == "" {
		branch = "(detached)"
	}
	return fmt.Sprintf("%s/%s", i.Repo, branch)
}

// List returns the managed worktrees of the current repository, or of every
// repository under the programming root when all is set or the working
// directory is not inside a repository. Sorted by repository, then path.
func (m *Manager) List(ctx context.Context, all bool) ([]Info, error) {
	l := log.FromContext(ctx)

	var repos []git.Repository
	if !all && m.workDir != "" {
		if root, err := git.GetRepoRoot(ctx, m.workDir); err == nil {
			repos = []git.Repository{git.NewRepository(root)}
		}
	}
	if repos == nil {
		repos = m.repos()
	}

	var infos []Info
	for _, repo := range repos {
		entries, err := git.ListWorktrees(ctx, repo.Path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", repo.Name, err)
		}
		for _, e := range entries {
			if e.Bare || !m.IsManaged(e.Path) {
				continue
			}
			info := Info{
				Path:     e.Path,
				Repo:     repo.Name,
				RepoPath: repo.Path,
				Branch:   e.Branch,
				Detached: e.Detached(),
				Locked:   e.Locked,
			}
			if !exists(e.Path) {
				info.Missing = true
				infos = append(infos, info)
				continue
			}
			if dirty, err := git.IsDirty(ctx, e.Path); err == nil {
				info.Dirty = dirty
			} else {
				l.Debug("status failed", "path", e.Path, "error", err)
			}
			if t, err := git.GetLastCommitTime(ctx, e.Path); err == nil {
				info.LastCommit = t
			}
			infos = append(infos, info)
		}
	}

	slices.SortFunc(infos, func(a, b Info) int {
		if c := strings.Compare(a.Repo, b.Repo); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	})
	return infos, nil
}
