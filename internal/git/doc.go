// Package git wraps the git CLI.
//
// Every operation shells out through [github.com/raphi011/twig/internal/cmd]
// so failures carry git's stderr and verbose mode logs each invocation.
//
// # Worktree registry
//
// [ListWorktrees] parses `git worktree list --porcelain` in two steps:
// [ParsePorcelain] tags each line as a [Record], and [AssembleEntries] folds
// the records into [WorktreeEntry] values.
//
// # Repositories
//
//   - [FindRepos]: lazy scan of a directory tree for primary checkouts
//   - [ResolveRepo]: name lookup with fuzzy suggestions on failure
//   - [MainBranchResolver]: trunk detection from an ordered preference list
package git
