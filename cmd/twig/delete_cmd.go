package main

import (
	"github.com/spf13/cobra"

	"github.com/raphi011/twig/internal/worktree"
)

func (a *app) newDeleteCmd() *cobra.Command {
	var (
		all   bool
		force bool
	)

	cmd := &cobra.Command{
		Use:     "delete [path...]",
		Short:   "Delete worktrees and their branches",
		Aliases: []string{"rm", "remove"},
		GroupID: GroupCore,
		Long: `Delete worktrees together with their local branch and the branch on origin.

Arguments are worktree paths or names under the worktrees root. Without
arguments the managed worktrees are offered for selection. Each worktree is
handled independently; the command fails if any of them failed.

Directories without git metadata are removed from disk.`,
		Example: `  twig delete ABC-123-add-oauth       # By name
  twig delete ~/worktrees/a ~/worktrees/b
  twig delete                           # Pick interactively
  twig delete --all --force             # Everything, no confirmation`,
		ValidArgsFunction: a.completeWorktreeNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			m, err := a.manager(ctx)
			if err != nil {
				return err
			}

			report, err := m.Delete(ctx, args, worktree.DeleteOptions{All: all, Force: force})
			printReport(ctx, report, map[worktree.Status]string{
				worktree.StatusOK:     "deleted",
				worktree.StatusFailed: "failed",
			})
			return err
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Delete every managed worktree")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Do not ask for confirmation")

	return cmd
}
