package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphi011/twig/internal/git"
)

// completeRepoNames completes repository names under repo_dir.
func (a *app) completeRepoNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := a.config()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var names []string
	for repo := range git.FindRepos(cfg.RepoDir, cfg.ScanDepth) {
		if strings.HasPrefix(repo.Name, toComplete) {
			names = append(names, repo.Name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// completeWorktreeNames completes directory names under the worktrees root.
func (a *app) completeWorktreeNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := a.config()
	if err != nil {
		return nil, cobra.ShellCompDirectiveDefault
	}
	entries, err := os.ReadDir(cfg.WorktreeDir)
	if err != nil {
		return nil, cobra.ShellCompDirectiveDefault
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && !git.SkipDir(e.Name()) && strings.HasPrefix(e.Name(), toComplete) {
			if git.IsWorktree(filepath.Join(cfg.WorktreeDir, e.Name())) {
				names = append(names, e.Name())
			}
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
