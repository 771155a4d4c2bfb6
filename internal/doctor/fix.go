package doctor

import (
	"context"
	"errors"

	"github.com/raphi011/twig/internal/git"
)

var errRepairFailed = errors.New("skipped, a repair in this repository failed")

// Fix relinks moved worktrees, then prunes stale registrations once per
// repository. Repairs run first so that prune cannot drop the admin
// directory of a moved worktree; a repository with a failed repair is not
// pruned at all. Issues without a FixAction are ignored.
func Fix(ctx context.Context, issues []Issue) []FixResult {
	var results []FixResult
	repairFailed := make(map[string]bool)

	for _, issue := range issues {
		if issue.FixAction != FixRepair {
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = git.RepairWorktree(ctx, issue.RepoPath, issue.Key)
		}
		if err != nil {
			repairFailed[issue.RepoPath] = true
		}
		results = append(results, FixResult{Issue: issue, Err: err})
	}

	pruned := make(map[string]error)
	for _, issue := range issues {
		if issue.FixAction != FixPrune {
			continue
		}
		err, done := pruned[issue.RepoPath]
		if !done {
			switch {
			case ctx.Err() != nil:
				err = ctx.Err()
			case repairFailed[issue.RepoPath]:
				err = errRepairFailed
			default:
				err = git.PruneWorktrees(ctx, issue.RepoPath)
			}
			pruned[issue.RepoPath] = err
		}
		results = append(results, FixResult{Issue: issue, Err: err})
	}
	return results
}
