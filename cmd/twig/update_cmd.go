package main

import (
	"github.com/spf13/cobra"

	"github.com/raphi011/twig/internal/worktree"
)

func (a *app) newUpdateCmd() *cobra.Command {
	var opts worktree.UpdateOptions

	cmd := &cobra.Command{
		Use:     "update",
		Short:   "Bring worktrees up to date with their upstream",
		Aliases: []string{"sync"},
		GroupID: GroupCore,
		Args:    cobra.NoArgs,
		Long: `Fetch and rebase the current worktree (or all with --all) onto its upstream.

Worktrees with a detached HEAD, uncommitted changes or no upstream are
skipped. A conflicting rebase is aborted and reported as failed.`,
		Example: `  twig update
  twig update --all --pull-only     # Fast-forward only
  twig update --rebase              # Also rebase onto origin/<main>`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			m, err := a.manager(ctx)
			if err != nil {
				return err
			}

			stop := a.spin("Updating worktrees")
			report, err := m.Update(ctx, opts)
			stop()
			printReport(ctx, report, map[worktree.Status]string{
				worktree.StatusOK:      "updated",
				worktree.StatusSkipped: "skipped",
				worktree.StatusFailed:  "failed",
			})
			return err
		},
	}

	cmd.Flags().BoolVarP(&opts.All, "all", "a", false, "Update every managed worktree")
	cmd.Flags().BoolVar(&opts.PullOnly, "pull-only", false, "Fast-forward instead of rebasing")
	cmd.Flags().BoolVar(&opts.Rebase, "rebase", false, "Also rebase onto the main branch")

	return cmd
}
