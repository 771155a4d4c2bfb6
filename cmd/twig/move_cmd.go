package main

import (
	"github.com/spf13/cobra"

	"github.com/raphi011/twig/internal/log"
	"github.com/raphi011/twig/internal/output"
	"github.com/raphi011/twig/internal/worktree"
)

func (a *app) newMoveCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "move <src> <dst>",
		Short:   "Move a worktree within the worktrees root",
		Aliases: []string{"mv"},
		GroupID: GroupUtility,
		Args:    cobra.ExactArgs(2),
		Long: `Move a managed worktree to another path under the worktrees root.

A bare destination name is placed directly under the root. git's registry is
updated; with git older than 2.17 the worktree is relinked manually and every
step is undone if a later one fails.`,
		Example: `  twig move ABC-123 ABC-123-old
  twig move ABC-123 ~/worktrees/archive/ABC-123
  twig move ABC-123 taken --force     # Replace the destination`,
		ValidArgsFunction: a.completeWorktreeNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			m, err := a.manager(ctx)
			if err != nil {
				return err
			}
			res, err := m.Move(ctx, args[0], args[1], force)
			if err != nil {
				return err
			}
			printMoved(cmd, res)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Replace an existing destination")

	return cmd
}

func (a *app) newRenameCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "rename <old> <new>",
		Short:   "Rename a worktree and its branch",
		GroupID: GroupUtility,
		Args:    cobra.ExactArgs(2),
		Long: `Rename a managed worktree. The new name is sanitized like a branch name.

When the branch is named after the worktree directory it is renamed as well.
If the branch cannot be renamed the worktree is moved back.`,
		Example:           `  twig rename ABC-123 "ABC-123 oauth v2"`,
		ValidArgsFunction: a.completeWorktreeNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			m, err := a.manager(ctx)
			if err != nil {
				return err
			}
			res, err := m.Rename(ctx, args[0], args[1], force)
			if err != nil {
				return err
			}
			printMoved(cmd, res)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Replace an existing destination")

	return cmd
}

// printMoved logs the move and prints the new path.
func printMoved(cmd *cobra.Command, res *worktree.MoveResult) {
	ctx := cmd.Context()
	l := log.FromContext(ctx)

	l.Printf("Moved %s -> %s\n", res.From, res.To)
	if res.RenamedBranch != "" {
		l.Printf("Renamed branch %s -> %s\n", res.Branch, res.RenamedBranch)
	}
	output.FromContext(ctx).Println(res.To)
}
