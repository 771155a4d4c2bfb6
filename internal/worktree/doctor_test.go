package worktree

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphi011/twig/internal/doctor"
)

func worktreeIssues(report doctor.Report) map[string]doctor.Issue {
	issues := make(map[string]doctor.Issue)
	for _, issue := range report.Issues {
		if issue.Category != doctor.CategoryTools {
			issues[issue.Key] = issue
		}
	}
	return issues
}

func TestDoctor(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	repo := env.initRepo("api", "main")
	healthy := env.addWorktree(repo, "healthy", "main")
	gone := env.addWorktree(repo, "gone", "main")
	before := env.addWorktree(repo, "before", "main")
	after := filepath.Join(env.root, "after")
	orphan := filepath.Join(env.root, "leftover")

	require.NoError(t, os.RemoveAll(gone))
	require.NoError(t, os.Rename(before, after))
	require.NoError(t, os.MkdirAll(orphan, 0o755))

	m := env.manager(Options{})

	report, results, err := m.Doctor(env.ctx, false)
	require.NoError(t, err)
	assert.Nil(t, results)
	assert.Equal(t, doctor.Stats{Repos: 1, Healthy: 1, Moved: 1, Stale: 2, Orphaned: 1}, report.Stats)

	issues := worktreeIssues(report)
	require.Len(t, issues, 4)
	assert.Equal(t, doctor.FixPrune, issues[gone].FixAction)
	assert.Equal(t, doctor.FixPrune, issues[before].FixAction)
	assert.Equal(t, doctor.FixRepair, issues[after].FixAction)
	assert.Equal(t, repo, issues[after].RepoPath)
	assert.Equal(t, doctor.FixNone, issues[orphan].FixAction)
	assert.Equal(t, "not a git worktree", issues[orphan].Description)
	assert.Equal(t, 3, report.Fixable())

	_, results, err = m.Doctor(env.ctx, true)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.NoError(t, r.Err, r.Issue.Key)
	}
	assert.ElementsMatch(t, []string{repo, healthy, after}, env.registered(repo))
	assert.Equal(t, "before", env.gitOut(after, "branch", "--show-current"))

	report, _, err = m.Doctor(env.ctx, false)
	require.NoError(t, err)
	assert.Equal(t, doctor.Stats{Repos: 1, Healthy: 2, Orphaned: 1}, report.Stats)
	assert.Len(t, worktreeIssues(report), 1)
}

func TestDoctor_OwnerOutsideRepoDir(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	repo := env.initRepo("api", "main")
	path := env.addWorktree(repo, "feature", "main")

	env.cfg.RepoDir = filepath.Join(env.tmp, "elsewhere")
	m := env.manager(Options{})

	report, _, err := m.Doctor(env.ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Stats.Repos)
	assert.Equal(t, 1, report.Stats.Healthy)
	assert.NotContains(t, worktreeIssues(report), path)
}

func TestDoctor_OwningRepoGone(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	repo := env.initRepo("api", "main")
	path := env.addWorktree(repo, "feature", "main")
	require.NoError(t, os.RemoveAll(repo))

	m := env.manager(Options{})
	report, _, err := m.Doctor(env.ctx, false)
	require.NoError(t, err)

	issue, ok := worktreeIssues(report)[path]
	require.True(t, ok)
	assert.Equal(t, doctor.CategoryOrphan, issue.Category)
	assert.Contains(t, issue.Description, "is gone")
	assert.Zero(t, report.Fixable())
}
