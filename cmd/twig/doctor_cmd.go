package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/raphi011/twig/internal/doctor"
	"github.com/raphi011/twig/internal/output"
	"github.com/raphi011/twig/internal/ui/static"
	"github.com/raphi011/twig/internal/ui/styles"
)

func (a *app) newDoctorCmd() *cobra.Command {
	var (
		fix        bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:     "doctor",
		Short:   "Diagnose and repair worktree links",
		GroupID: GroupConfig,
		Args:    cobra.NoArgs,
		Long: `Diagnose the worktrees root.

Checks:
- git is recent enough for worktree move and repair
- every registered worktree still has its directory
- every directory under the root belongs to a repository

With --fix, worktrees moved without git are relinked (git worktree repair)
and registrations whose directory is gone are pruned. Orphaned directories
are left alone, see 'twig clean --force'.`,
		Example: `  twig doctor          # Check for issues
  twig doctor --fix    # Repair what git can repair`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			m, err := a.manager(ctx)
			if err != nil {
				return err
			}
			report, results, err := m.Doctor(ctx, fix)
			if err != nil {
				return err
			}
			if jsonOutput {
				return output.FromContext(ctx).JSON(report)
			}

			w := stdout(ctx)
			printDoctorSummary(w, report)
			if len(report.Issues) == 0 {
				fmt.Fprintln(w, "\nNo issues found")
				return nil
			}
			printIssuesByCategory(w, report.Issues)

			if !fix {
				if report.Fixable() > 0 {
					fmt.Fprintln(w, "\nRun 'twig doctor --fix' to repair.")
				}
				return fmt.Errorf("%d issue(s) found", len(report.Issues))
			}

			if len(results) > 0 {
				fmt.Fprintln(w)
			}
			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
					fmt.Fprintln(w, static.StatusLine(styles.StatusFailed, string(r.Issue.FixAction)+" "+r.Issue.Key, r.Err.Error()))
					continue
				}
				fmt.Fprintln(w, static.StatusLine(styles.StatusOK, string(r.Issue.FixAction)+" "+r.Issue.Key, ""))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d fix(es) failed", failed, len(results))
			}
			if manual := len(report.Issues) - report.Fixable(); manual > 0 {
				return fmt.Errorf("%d issue(s) need manual attention", manual)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "Repair moved worktrees and prune stale references")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the diagnosis as JSON")

	return cmd
}

func printDoctorSummary(w io.Writer, r doctor.Report) {
	if r.GitVersion != "" {
		fmt.Fprintln(w, static.StatusLine(styles.StatusOK, "git "+r.GitVersion, ""))
	}
	fmt.Fprintln(w, static.StatusLine(styles.StatusOK, fmt.Sprintf("%d repositories", r.Stats.Repos), ""))
	fmt.Fprintln(w, static.StatusLine(styles.StatusOK, fmt.Sprintf("%d worktrees healthy", r.Stats.Healthy), ""))
	if r.Stats.Moved > 0 {
		fmt.Fprintln(w, static.WarningLine(fmt.Sprintf("%d moved without git (repairable)", r.Stats.Moved)))
	}
	if r.Stats.Stale > 0 {
		fmt.Fprintln(w, static.WarningLine(fmt.Sprintf("%d stale references (prunable)", r.Stats.Stale)))
	}
	if r.Stats.Orphaned > 0 {
		fmt.Fprintln(w, static.WarningLine(fmt.Sprintf("%d orphaned directories", r.Stats.Orphaned)))
	}
}

func printIssuesByCategory(w io.Writer, issues []doctor.Issue) {
	byCategory := make(map[doctor.IssueCategory][]doctor.Issue)
	for _, issue := range issues {
		byCategory[issue.Category] = append(byCategory[issue.Category], issue)
	}

	names := map[doctor.IssueCategory]string{
		doctor.CategoryTools:  "Tool issues",
		doctor.CategoryLink:   "Link issues",
		doctor.CategoryOrphan: "Orphan issues",
	}
	for _, cat := range []doctor.IssueCategory{doctor.CategoryTools, doctor.CategoryLink, doctor.CategoryOrphan} {
		if len(byCategory[cat]) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s:\n", names[cat])
		for _, issue := range byCategory[cat] {
			fmt.Fprintf(w, "  • %s: %s\n", issue.Key, issue.Description)
		}
	}
}
