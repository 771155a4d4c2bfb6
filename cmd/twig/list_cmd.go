package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/raphi011/twig/internal/output"
	"github.com/raphi011/twig/internal/ui/static"
	"github.com/raphi011/twig/internal/ui/styles"
	"github.com/raphi011/twig/internal/worktree"
)

// staleDays highlights worktrees without commits for longer than this.
const staleDays = 30

func (a *app) newListCmd() *cobra.Command {
	var (
		all        bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List managed worktrees",
		Aliases: []string{"ls"},
		GroupID: GroupUtility,
		Args:    cobra.NoArgs,
		Long: `List the managed worktrees of the current repository.

Outside a repository, or with --all, the worktrees of every repository under
repo_dir are listed.`,
		Example: `  twig list
  twig list --all --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			m, err := a.manager(ctx)
			if err != nil {
				return err
			}
			infos, err := m.List(ctx, all)
			if err != nil {
				return err
			}

			if jsonOutput {
				if infos == nil {
					infos = []worktree.Info{}
				}
				return out.JSON(infos)
			}
			if len(infos) == 0 {
				out.Println("No worktrees")
				return nil
			}

			rows := make([][]string, 0, len(infos))
			for _, info := range infos {
				rows = append(rows, []string{
					info.Repo,
					branchLabel(info),
					worktreeState(info),
					static.FormatAge(info.LastCommit, staleDays),
					relativeTo(m.Root(), info.Path),
				})
			}
			fmt.Fprint(stdout(ctx), static.RenderTable([]string{"REPO", "BRANCH", "STATE", "LAST COMMIT", "PATH"}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "List worktrees of every repository")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func branchLabel(info worktree.Info) string {
	if info.Detached {
		return styles.MutedStyle.Render("(detached)")
	}
	return info.Branch
}

func worktreeState(info worktree.Info) string {
	switch {
	case info.Missing:
		return styles.ErrorStyle.Render("missing")
	case info.Dirty:
		return styles.WarningStyle.Render("dirty")
	case info.Locked:
		return styles.InfoStyle.Render("locked")
	default:
		return styles.SuccessStyle.Render("clean")
	}
}

// relativeTo shortens path to be relative to root when it lies below it.
func relativeTo(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil && filepath.IsLocal(rel) {
		return rel
	}
	return path
}
