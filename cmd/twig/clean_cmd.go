package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphi011/twig/internal/output"
	"github.com/raphi011/twig/internal/reconcile"
	"github.com/raphi011/twig/internal/ui/static"
	"github.com/raphi011/twig/internal/ui/styles"
	"github.com/raphi011/twig/internal/worktree"
)

func (a *app) newCleanCmd() *cobra.Command {
	var (
		dryRun        bool
		force         bool
		includeRemote bool
		jsonOutput    bool
	)

	cmd := &cobra.Command{
		Use:     "clean",
		Short:   "Delete merged worktrees and prune stale references",
		Aliases: []string{"prune"},
		GroupID: GroupCore,
		Args:    cobra.NoArgs,
		Long: `Delete worktrees whose branch is merged into the main branch.

Every repository with managed worktrees is switched to its main branch and
pulled first. Merged branches that still exist on origin are kept unless
--include-remote is given (or clean.skip_remote_branches is false), merged
worktrees with uncommitted changes are kept unless --force is given.

References to worktrees whose directory is gone are pruned. Directories under
the worktrees root that no repository knows about are reported and only
removed with --force.`,
		Example: `  twig clean --dry-run       # Show what would happen
  twig clean
  twig clean --force         # Also remove orphaned directories`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			m, err := a.manager(ctx)
			if err != nil {
				return err
			}

			stop := a.spin("Syncing repositories")
			report, err := m.Clean(ctx, worktree.CleanOptions{
				DryRun:        dryRun,
				Force:         force,
				IncludeRemote: includeRemote,
			})
			stop()
			if report == nil {
				return err
			}
			if jsonOutput {
				if jerr := output.FromContext(ctx).JSON(report); jerr != nil {
					return jerr
				}
				return err
			}
			printCleanReport(cmd, report, force)
			return err
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would be removed without removing anything")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Remove orphaned directories and dirty merged worktrees")
	cmd.Flags().BoolVar(&includeRemote, "include-remote", false, "Also remove merged worktrees whose branch is still on origin")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func printCleanReport(cmd *cobra.Command, r *worktree.CleanReport, force bool) {
	w := stdout(cmd.Context())

	for _, item := range r.Repos.Items {
		if item.Status == worktree.StatusFailed || len(item.Warnings) > 0 {
			printItems(w, []worktree.ItemResult{item})
		}
	}

	if r.DryRun {
		for _, c := range r.Merged {
			fmt.Fprintln(w, static.StatusLine(styles.StatusPlanned, c.Path, fmt.Sprintf("%s/%s merged", c.Repo, c.Branch)))
		}
		for _, e := range r.Scan.Stale {
			fmt.Fprintln(w, static.StatusLine(styles.StatusPlanned, e.Path, "stale reference, will be pruned"))
		}
		detail := "orphaned, kept without --force"
		if force {
			detail = "orphaned, will be removed"
		}
		for _, e := range r.Scan.Orphaned {
			fmt.Fprintln(w, static.StatusLine(styles.StatusPlanned, e.Path, detail))
		}
	} else {
		if r.Deleted != nil {
			printItems(w, r.Deleted.Items)
		}
		for _, e := range r.Scan.Stale {
			status, detail := staleOutcome(r.Pruned, e)
			fmt.Fprintln(w, static.StatusLine(status, e.Path, detail))
		}
		if r.Pruned != nil {
			printItems(w, r.Pruned.Failed())
		}
		if r.Orphans != nil {
			printItems(w, r.Orphans.Items)
		} else {
			for _, e := range r.Scan.Orphaned {
				fmt.Fprintln(w, static.StatusLine(styles.StatusSkipped, e.Path, "orphaned, use --force to remove"))
			}
		}
	}

	for _, c := range r.Kept {
		fmt.Fprintln(w, static.StatusLine(styles.StatusSkipped, c.Path, c.Reason))
	}

	if len(r.Merged) == 0 && len(r.Scan.Stale) == 0 && len(r.Scan.Orphaned) == 0 && len(r.Kept) == 0 {
		fmt.Fprintln(w, "nothing to clean")
	}
}

// staleOutcome reports what happened to a stale reference, going by the
// prune item of its repository. No item means prune never ran.
func staleOutcome(pruned *worktree.BatchReport, e reconcile.Entry) (styles.Status, string) {
	if pruned != nil {
		for _, item := range pruned.Items {
			if item.Subject != e.Repo.Path {
				continue
			}
			if item.Status == worktree.StatusFailed {
				return styles.StatusFailed, "stale reference, prune failed"
			}
			return styles.StatusOK, "stale reference pruned"
		}
	}
	return styles.StatusSkipped, "stale reference, not pruned"
}
