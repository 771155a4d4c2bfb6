package main

import (
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/raphi011/twig/internal/log"
	"github.com/raphi011/twig/internal/naming"
	"github.com/raphi011/twig/internal/output"
	"github.com/raphi011/twig/internal/worktree"
)

func (a *app) newCreateCmd() *cobra.Command {
	var (
		repo        string
		description string
		commitType  string
		noInstall   bool
		copyPath    bool
	)

	cmd := &cobra.Command{
		Use:     "create [ticket-or-name]",
		Short:   "Create a worktree for a ticket or description",
		Aliases: []string{"new"},
		GroupID: GroupCore,
		Args:    cobra.MaximumNArgs(1),
		Long: `Create a worktree with a new branch based on the repository's main branch.

A ticket id (e.g. ABC-123) is looked up in the configured tracker and its
summary becomes part of the branch name. Anything else is used as the name
directly. The worktree gets an empty initial commit and its dependencies
installed.

The path of the new worktree is printed on stdout.`,
		Example: `  twig create ABC-123                  # Look up the ticket summary
  twig create ABC-123 -m "fix login"   # Skip the lookup
  twig create "Spike: new cache" -r api
  cd "$(twig create ABC-123 -q)"`,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			out := output.FromContext(ctx)

			m, err := a.manager(ctx)
			if err != nil {
				return err
			}

			var input string
			if len(args) > 0 {
				input = args[0]
			}
			res, err := m.Create(ctx, worktree.CreateRequest{
				Input:       input,
				Repo:        repo,
				Description: description,
				Type:        commitType,
				NoInstall:   noInstall,
			})
			if err != nil {
				return err
			}

			l.Printf("Created worktree %s (%s from %s)\n", res.Branch, res.Repo.Name, res.Base)
			if copyPath {
				if err := clipboard.WriteAll(res.Path); err != nil {
					l.Warnf("copy to clipboard: %v", err)
				}
			}
			out.Println(res.Path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&repo, "repo", "r", "", "Repository name (default: current repository)")
	cmd.Flags().StringVarP(&description, "message", "m", "", "Description used instead of the ticket summary")
	cmd.Flags().StringVarP(&commitType, "type", "t", "", "Commit type of the initial commit (default: inferred)")
	cmd.Flags().BoolVar(&noInstall, "no-install", false, "Skip dependency installation")
	cmd.Flags().BoolVarP(&copyPath, "copy", "c", false, "Copy the worktree path to the clipboard")

	cmd.RegisterFlagCompletionFunc("repo", a.completeRepoNames)
	cmd.RegisterFlagCompletionFunc("type", completeCommitTypes)

	return cmd
}

func completeCommitTypes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, t := range naming.CommitTypes() {
		if strings.HasPrefix(string(t), toComplete) {
			out = append(out, string(t))
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
