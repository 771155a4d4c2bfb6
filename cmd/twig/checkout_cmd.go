package main

import (
	"github.com/spf13/cobra"

	"github.com/raphi011/twig/internal/log"
	"github.com/raphi011/twig/internal/output"
)

func (a *app) newCheckoutCmd() *cobra.Command {
	var repo string

	cmd := &cobra.Command{
		Use:     "checkout [branch]",
		Short:   "Create a worktree for an existing branch",
		Aliases: []string{"co"},
		GroupID: GroupCore,
		Args:    cobra.MaximumNArgs(1),
		Long: `Create a worktree for a branch that already exists locally or on origin.

A branch that only exists on origin gets a local tracking branch. Without a
branch the repository's branches are offered for selection. The worktree path
is printed on stdout.`,
		Example: `  twig checkout feature/login
  twig checkout -r api             # Pick a branch of api`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)

			m, err := a.manager(ctx)
			if err != nil {
				return err
			}

			var branch string
			if len(args) > 0 {
				branch = args[0]
			}
			res, err := m.Checkout(ctx, branch, repo)
			if err != nil {
				return err
			}

			if res.Tracking {
				l.Printf("Checked out %s tracking origin/%s\n", res.Branch, res.Branch)
			} else {
				l.Printf("Checked out %s\n", res.Branch)
			}
			output.FromContext(ctx).Println(res.Path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&repo, "repo", "r", "", "Repository name (default: current repository)")
	cmd.RegisterFlagCompletionFunc("repo", a.completeRepoNames)

	return cmd
}
