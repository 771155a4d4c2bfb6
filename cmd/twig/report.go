package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/raphi011/twig/internal/output"
	"github.com/raphi011/twig/internal/ui/static"
	"github.com/raphi011/twig/internal/ui/styles"
	"github.com/raphi011/twig/internal/worktree"
)

// stdout returns the printer's writer, downsampled for the terminal.
func stdout(ctx context.Context) io.Writer {
	return static.NewWriter(output.FromContext(ctx).Writer())
}

// printItems renders one line per batch item, warnings indented below.
func printItems(w io.Writer, items []worktree.ItemResult) {
	for _, item := range items {
		fmt.Fprintln(w, static.StatusLine(styles.Status(item.Status), itemSubject(item), item.Detail))
		for _, warning := range item.Warnings {
			fmt.Fprintln(w, static.WarningLine(warning))
		}
	}
}

func itemSubject(item worktree.ItemResult) string {
	if item.Repo != "" && item.Branch != "" {
		return fmt.Sprintf("%s (%s/%s)", item.Subject, item.Repo, item.Branch)
	}
	return item.Subject
}

// summary renders "2 deleted, 1 failed", leaving out zero counts.
func summary(report *worktree.BatchReport, labels map[worktree.Status]string) string {
	var parts []string
	for _, s := range []worktree.Status{worktree.StatusOK, worktree.StatusPlanned, worktree.StatusSkipped, worktree.StatusFailed} {
		label, ok := labels[s]
		if !ok {
			continue
		}
		if n := report.Count(s); n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, label))
		}
	}
	if len(parts) == 0 {
		return "nothing to do"
	}
	return strings.Join(parts, ", ")
}

// printReport renders a batch report followed by its summary line.
func printReport(ctx context.Context, report *worktree.BatchReport, labels map[worktree.Status]string) {
	if report == nil {
		return
	}
	w := stdout(ctx)
	printItems(w, report.Items)
	fmt.Fprintln(w, summary(report, labels))
}
