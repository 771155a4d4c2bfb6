package worktree

import (
	"context"
	"fmt"

	"github.com/raphi011/twig/internal/git"
)

// UpdateOptions controls Update.
type UpdateOptions struct {
	// All updates every managed worktree instead of the current one.
	All bool
	// PullOnly fast-forwards instead of rebasing.
	PullOnly bool
	// Rebase additionally rebases onto the trunk after syncing.
	Rebase bool
}

// Update brings worktrees up to date with their upstream. Detached, dirty
// and untracked worktrees are skipped; a conflicting rebase is aborted and
// the item fails.
func (m *Manager) Update(ctx context.Context, opts UpdateOptions) (*BatchReport, error) {
	var targets []Info
	if opts.All {
		infos, err := m.List(ctx, true)
		if err != nil {
			return nil, err
		}
		for _, info := range infos {
			if !info.Missing {
				targets = append(targets, info)
			}
		}
	} else {
		top, err := git.GetTopLevel(ctx, m.workDir)
		if err != nil {
			return nil, err
		}
		root, err := git.GetRepoRoot(ctx, top)
		if err != nil {
			return nil, err
		}
		repo := git.NewRepository(root)
		targets = []Info{{Path: top, Repo: repo.Name, RepoPath: repo.Path}}
	}

	report := newReport("update")
	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.add(m.updateOne(ctx, t, opts))
	}
	return report, report.Err()
}

func (m *Manager) updateOne(ctx context.Context, t Info, opts UpdateOptions) ItemResult {
	item := ItemResult{Subject: t.Path, Repo: t.Repo, Status: StatusOK}

	branch, err := git.GetCurrentBranch(ctx, t.Path)
	if err != nil {
		item.fail(err)
		return item
	}
	item.Branch = branch
	if branch == "" {
		item.skip("detached HEAD")
		return item
	}

	dirty, err := git.IsDirty(ctx, t.Path)
	if err != nil {
		item.fail(err)
		return item
	}
	if dirty {
		item.skip("uncommitted changes")
		return item
	}

	upstream := git.GetUpstream(ctx, t.Path)
	if upstream == "" {
		item.skip("no upstream")
		return item
	}
	if remote := git.GetUpstreamRemote(ctx, t.Path, branch); remote != "" && remote != "." {
		if err := git.Fetch(ctx, t.Path, remote); err != nil {
			item.fail(err)
			return item
		}
	}

	before, err := git.RevParse(ctx, t.Path, "HEAD")
	if err != nil {
		item.fail(err)
		return item
	}
	target, err := git.RevParse(ctx, t.Path, "@{u}")
	if err != nil {
		item.fail(err)
		return item
	}

	if before != target {
		if opts.PullOnly {
			err = git.MergeFastForward(ctx, t.Path, "@{u}")
		} else {
			err = git.Rebase(ctx, t.Path, "@{u}")
		}
		if err != nil {
			item.fail(err)
			return item
		}
	}

	if opts.Rebase {
		repo := git.NewRepository(t.RepoPath)
		main, err := m.mainBranch(ctx, repo)
		if err != nil {
			item.fail(err)
			return item
		}
		onto := main
		if git.RemoteTrackingBranchExists(ctx, repo.Path, main) {
			onto = "origin/" + main
		}
		if branch != main {
			if err := git.Rebase(ctx, t.Path, onto); err != nil {
				item.fail(err)
				return item
			}
		}
	}

	after, err := git.RevParse(ctx, t.Path, "HEAD")
	if err != nil {
		item.fail(err)
		return item
	}
	if after == before {
		item.skip("up to date")
		return item
	}
	item.Detail = fmt.Sprintf("%.7s..%.7s", before, after)
	return item
}
