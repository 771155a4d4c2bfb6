package worktree

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/raphi011/twig/internal/errs"
	"github.com/raphi011/twig/internal/git"
	"github.com/raphi011/twig/internal/log"
	"github.com/raphi011/twig/internal/reconcile"
)

// CleanOptions controls Clean.
type CleanOptions struct {
	DryRun bool
	// Force removes orphaned directories and merged worktrees with
	// uncommitted changes.
	Force bool
	// IncludeRemote also removes merged worktrees whose branch still
	// exists on origin.
	IncludeRemote bool
}

// Candidate is a merged worktree selected for removal, or skipped.
type Candidate struct {
	Path   string `json:"path"`
	Repo   string `json:"repo"`
	Branch string `json:"branch"`
	Reason string `json:"reason,omitempty"`
}

// CleanReport is everything Clean found and did.
type CleanReport struct {
	DryRun bool `json:"dry_run"`
	// Repos has one item per repository that was synced with its trunk.
	Repos *BatchReport `json:"repos"`
	// Merged lists the worktrees whose branch is merged into the trunk.
	Merged []Candidate `json:"merged"`
	// Kept lists merged worktrees left alone, with the reason.
	Kept []Candidate `json:"kept,omitempty"`
	// Deleted is nil on a dry run.
	Deleted *BatchReport     `json:"deleted,omitempty"`
	Scan    reconcile.Report `json:"scan"`
	// Pruned has one item per repository with stale references.
	Pruned *BatchReport `json:"pruned,omitempty"`
	// Orphans is only set when orphaned directories were removed.
	Orphans *BatchReport `json:"orphans,omitempty"`
}

// Err aggregates failures of every phase.
func (r *CleanReport) Err() error {
	failed, total := 0, 0
	for _, b := range []*BatchReport{r.Repos, r.Deleted, r.Pruned, r.Orphans} {
		if b == nil {
			continue
		}
		failed += b.Count(StatusFailed)
		total += len(b.Items)
	}
	if failed > 0 {
		return &errs.PartialBatchFailure{Op: "clean", Failed: failed, Total: total}
	}
	return nil
}

// Clean removes worktrees whose branch is merged into the trunk and
// reconciles the registries with the worktrees root. Each repository with
// managed worktrees is first switched to its trunk and pulled. A dry run
// still syncs the repositories but removes nothing.
func (m *Manager) Clean(ctx context.Context, opts CleanOptions) (*CleanReport, error) {
	l := log.FromContext(ctx)

	repos := reconcile.WithOwners(canonical(m.Root()), m.repos())
	regs, err := reconcile.CollectRegistrations(ctx, slices.Values(repos))
	if err != nil {
		return nil, err
	}

	var managed []reconcile.Registration
	byRepo := make(map[string][]reconcile.Registration)
	for _, reg := range regs {
		if m.IsManaged(reg.Path) {
			managed = append(managed, reg)
			byRepo[reg.Repo.Path] = append(byRepo[reg.Repo.Path], reg)
		}
	}

	scan, err := reconcile.NewScanner(canonical(m.Root())).Scan(managed)
	if err != nil {
		return nil, err
	}
	stale := make(map[string]bool, len(scan.Stale))
	for _, e := range scan.Stale {
		stale[e.Path] = true
	}

	report := &CleanReport{DryRun: opts.DryRun, Repos: newReport("sync"), Scan: scan}

	for _, repo := range repos {
		wts := byRepo[repo.Path]
		if len(wts) == 0 {
			continue
		}
		item := ItemResult{Subject: repo.Path, Repo: repo.Name, Status: StatusOK}
		main, err := m.syncTrunk(ctx, repo, &item)
		report.Repos.add(item)
		if err != nil {
			continue
		}

		for _, reg := range wts {
			if stale[reg.Path] {
				continue
			}
			c, merged := m.mergedCandidate(ctx, repo, main, reg, opts)
			if !merged {
				continue
			}
			if c.Reason != "" {
				report.Kept = append(report.Kept, c)
			} else {
				report.Merged = append(report.Merged, c)
			}
		}
	}

	if opts.DryRun {
		return report, report.Err()
	}

	unlock, err := m.lock(ctx)
	if err != nil {
		return report, err
	}
	defer unlock()

	report.Deleted = newReport("delete")
	for _, c := range report.Merged {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Deleted.add(m.deleteOne(ctx, c.Path))
	}

	report.Pruned = newReport("prune")
	for _, repo := range scan.StaleRepos() {
		item := ItemResult{Subject: repo.Path, Repo: repo.Name, Status: StatusOK}
		if err := git.PruneWorktrees(ctx, repo.Path); err != nil {
			item.fail(err)
		}
		report.Pruned.add(item)
	}

	if opts.Force && len(scan.Orphaned) > 0 {
		report.Orphans = newReport("orphans")
		for _, e := range scan.Orphaned {
			item := ItemResult{Subject: e.Path, Status: StatusOK}
			l.Debug("removing orphaned directory", "path", e.Path)
			if err := os.RemoveAll(e.Path); err != nil {
				item.fail(fmt.Errorf("failed to remove directory: %w", err))
			}
			report.Orphans.add(item)
		}
	}

	return report, report.Err()
}

// syncTrunk checks out the trunk in the primary checkout and pulls it.
// A failing pull only warns; anything else fails the repository.
func (m *Manager) syncTrunk(ctx context.Context, repo git.Repository, item *ItemResult) (string, error) {
	main, err := m.mainBranch(ctx, repo)
	if err != nil {
		item.fail(err)
		return "", err
	}
	item.Branch = main

	checkout := git.Checkout
	if git.StartPoint(ctx, repo.Path, main) != main {
		checkout = git.CheckoutTracking
	}
	if err := checkout(ctx, repo.Path, main); err != nil {
		item.fail(err)
		return "", err
	}
	if git.HasRemote(ctx, repo.Path, "origin") {
		if err := git.PullFastForward(ctx, repo.Path); err != nil {
			item.warn(ctx, "%v", err)
		}
	}
	return main, nil
}

// mergedCandidate reports whether reg's branch is merged into main. A
// merged worktree that must be kept comes back with a Reason.
func (m *Manager) mergedCandidate(ctx context.Context, repo git.Repository, main string, reg reconcile.Registration, opts CleanOptions) (Candidate, bool) {
	l := log.FromContext(ctx)
	c := Candidate{Path: reg.Path, Repo: repo.Name, Branch: reg.Branch}

	if reg.Branch == "" || reg.Branch == main {
		return c, false
	}
	merged, err := git.IsAncestor(ctx, repo.Path, reg.Branch, git.StartPoint(ctx, repo.Path, main))
	if err != nil {
		l.Warnf("%s: %v", reg.Path, err)
		return c, false
	}
	if !merged {
		return c, false
	}

	if !opts.Force {
		if dirty, err := git.IsDirty(ctx, reg.Path); err != nil || dirty {
			c.Reason = "uncommitted changes"
			return c, true
		}
	}

	cfg := m.repoConfig(ctx, repo)
	if cfg.Clean.SkipRemoteBranches && !opts.IncludeRemote && git.HasRemote(ctx, repo.Path, "origin") {
		onRemote, err := git.RemoteBranchExists(ctx, repo.Path, reg.Branch)
		switch {
		case err != nil:
			c.Reason = "could not query origin"
		case onRemote:
			c.Reason = "branch still on origin"
		}
	}
	return c, true
}
