package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/raphi011/twig/internal/output"
	"github.com/raphi011/twig/internal/ui/static"
	"github.com/raphi011/twig/internal/ui/styles"
	"github.com/raphi011/twig/internal/worktree"
)

func (a *app) newReposCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "repos",
		Short:   "List repositories under repo_dir",
		GroupID: GroupUtility,
		Args:    cobra.NoArgs,
		Example: `  twig repos
  twig repos --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			m, err := a.manager(ctx)
			if err != nil {
				return err
			}
			repos, err := m.Repos(ctx)
			if err != nil {
				return err
			}

			if jsonOutput {
				if repos == nil {
					repos = []worktree.RepoInfo{}
				}
				return out.JSON(repos)
			}
			if len(repos) == 0 {
				out.Println("No repositories")
				return nil
			}

			rows := make([][]string, 0, len(repos))
			for _, r := range repos {
				main := r.MainBranch
				if main == "" {
					main = styles.ErrorStyle.Render("none")
				}
				rows = append(rows, []string{r.Name, main, strconv.Itoa(r.Worktrees), r.Path})
			}
			fmt.Fprint(stdout(ctx), static.RenderTable([]string{"NAME", "MAIN", "WORKTREES", "PATH"}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
