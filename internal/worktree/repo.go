package worktree

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/raphi011/twig/internal/errs"
	"github.com/raphi011/twig/internal/git"
	"github.com/raphi011/twig/internal/log"
)

// resolveRepo finds the repository to operate on: by name when given, else
// the repository containing the working directory, else an interactive pick.
func (m *Manager) resolveRepo(ctx context.Context, name string) (git.Repository, error) {
	if name != "" {
		return git.ResolveRepo(m.cfg.RepoDir, m.cfg.ScanDepth, name)
	}
	if m.workDir != "" {
		if root, err := git.GetRepoRoot(ctx, m.workDir); err == nil {
			return git.NewRepository(root), nil
		}
	}
	return m.SelectRepo(ctx)
}

// SelectRepo asks the picker for a repository under the programming root.
// The last pick is offered first and the new pick is remembered; the store
// failing only costs the ordering.
func (m *Manager) SelectRepo(ctx context.Context) (git.Repository, error) {
	l := log.FromContext(ctx)

	repos := m.repos()
	if len(repos) == 0 {
		return git.Repository{}, &errs.NotFoundError{
			Kind: "repository",
			Name: "*",
			Hint: "no repositories under " + m.cfg.RepoDir,
		}
	}
	if m.picker == nil {
		return git.Repository{}, fmt.Errorf("no repository given and no picker available")
	}

	last, err := m.store.Load()
	if err != nil {
		l.Debug("failed to load last selection", "error", err)
	}
	if i := slices.IndexFunc(repos, func(r git.Repository) bool { return r.Name == last }); i > 0 {
		picked := repos[i]
		repos = slices.Delete(repos, i, i+1)
		repos = slices.Insert(repos, 0, picked)
	}

	labels := make([]string, len(repos))
	for i, r := range repos {
		labels[i] = r.Name
		if rel, err := filepath.Rel(m.cfg.RepoDir, r.Path); err == nil && rel != r.Name {
			labels[i] = rel
		}
	}

	idx, err := m.picker.Select(ctx, "Select repository", labels)
	if err != nil {
		return git.Repository{}, err
	}
	repo := repos[idx]
	if err := m.store.Save(repo.Name); err != nil {
		l.Debug("failed to save last selection", "error", err)
	}
	return repo, nil
}

// RepoInfo is a discovered repository with its managed worktree count.
type RepoInfo struct {
	git.Repository
	MainBranch string `json:"main_branch,omitempty"`
	Worktrees  int    `json:"worktrees"`
}

// Repos lists the repositories under the programming root.
func (m *Manager) Repos(ctx context.Context) ([]RepoInfo, error) {
	var out []RepoInfo
	for _, repo := range m.repos() {
		info := RepoInfo{Repository: repo}
		if main, err := m.mainBranch(ctx, repo); err == nil {
			info.MainBranch = main
		}
		entries, err := git.ListWorktrees(ctx, repo.Path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", repo.Name, err)
		}
		for _, e := range entries {
			if m.IsManaged(e.Path) {
				info.Worktrees++
			}
		}
		out = append(out, info)
	}
	return out, nil
}
