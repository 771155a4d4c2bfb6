package doctor

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/raphi011/twig/internal/git"
	"github.com/raphi011/twig/internal/reconcile"
)

// Run checks git itself and every worktree registration of repos against
// the directories under root. Repositories outside repos that own a
// directory under root are checked as well.
func Run(ctx context.Context, root string, repos []git.Repository) (Report, error) {
	report := Report{Issues: []Issue{}}

	version, toolIssues := checkTools(ctx)
	report.GitVersion = version
	report.Issues = append(report.Issues, toolIssues...)

	repos = reconcile.WithOwners(root, repos)
	linkIssues, stats, err := checkWorktrees(ctx, root, repos)
	if err != nil {
		return Report{}, err
	}
	stats.Repos = len(repos)
	report.Stats = stats
	report.Issues = append(report.Issues, linkIssues...)
	return report, nil
}

// checkTools reports git versions lacking worktree move or repair.
func checkTools(ctx context.Context) (string, []Issue) {
	v, err := git.GetVersion(ctx)
	if err != nil {
		return "", []Issue{{
			Key:         "git",
			Description: fmt.Sprintf("cannot determine version: %v", err),
			Category:    CategoryTools,
		}}
	}

	var issues []Issue
	switch {
	case !v.AtLeast(2, 17):
		issues = append(issues, Issue{
			Key:         "git",
			Description: fmt.Sprintf("%s has no worktree move, moves relink by hand", v),
			Category:    CategoryTools,
		})
	case !v.AtLeast(2, 29):
		issues = append(issues, Issue{
			Key:         "git",
			Description: fmt.Sprintf("%s has no worktree repair, --fix cannot relink moved worktrees", v),
			Category:    CategoryTools,
		})
	}
	return v.String(), issues
}

func checkWorktrees(ctx context.Context, root string, repos []git.Repository) ([]Issue, Stats, error) {
	var (
		issues []Issue
		regs   []reconcile.Registration
		failed = make(map[string]bool)
	)
	for _, repo := range repos {
		r, err := reconcile.CollectRegistrations(ctx, slices.Values([]git.Repository{repo}))
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, Stats{}, ctxErr
			}
			failed[repo.Path] = true
			issues = append(issues, Issue{
				Key:         repo.Path,
				Description: fmt.Sprintf("cannot list worktrees: %v", err),
				Category:    CategoryLink,
				RepoPath:    repo.Path,
			})
			continue
		}
		regs = append(regs, r...)
	}

	scan, err := reconcile.NewScanner(root).Scan(regs)
	if err != nil {
		return nil, Stats{}, err
	}

	stats := Stats{Healthy: len(scan.Current), Stale: len(scan.Stale)}
	for _, e := range scan.Stale {
		issues = append(issues, Issue{
			Key:         e.Path,
			Description: fmt.Sprintf("registered in %s but the directory is gone", e.Repo.Name),
			FixAction:   FixPrune,
			Category:    CategoryLink,
			RepoPath:    e.Repo.Path,
		})
	}
	for _, e := range scan.Orphaned {
		issue := classifyOrphan(e.Path)
		if failed[issue.RepoPath] {
			continue
		}
		if issue.FixAction == FixRepair {
			stats.Moved++
		} else {
			stats.Orphaned++
		}
		issues = append(issues, issue)
	}
	return issues, stats, nil
}

// classifyOrphan explains why an unregistered directory is unregistered.
// A worktree whose admin directory still exists was moved without git.
func classifyOrphan(path string) Issue {
	issue := Issue{Key: path, Category: CategoryOrphan}
	if !git.IsWorktree(path) {
		issue.Description = "not a git worktree"
		return issue
	}
	gitdir, err := git.ReadGitdir(path)
	if err != nil {
		issue.Description = err.Error()
		return issue
	}
	owner, err := git.GetMainRepoPath(path)
	if err != nil {
		issue.Description = err.Error()
		return issue
	}
	if !git.IsPrimaryCheckout(owner) {
		issue.Description = fmt.Sprintf("owning repository %s is gone", owner)
		return issue
	}
	issue.RepoPath = owner
	if _, err := os.Stat(gitdir); err != nil {
		issue.Description = fmt.Sprintf("registration was pruned from %s", owner)
		return issue
	}
	issue.Category = CategoryLink
	issue.Description = "moved without git, links point to the old location"
	issue.FixAction = FixRepair
	return issue
}
