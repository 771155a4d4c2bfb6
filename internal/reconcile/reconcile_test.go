package reconcile

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphi011/twig/internal/git"
)

func paths(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Path
	}
	slices.Sort(out)
	return out
}

func mkdirs(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.MkdirAll(filepath.Join(root, n), 0o755))
	}
}

func TestIsManaged(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want bool
	}{
		{"/wt/feature", true},
		{"/wt/a/b", true},
		{"/wt", false},
		{"/wt/", false},
		{"/wtx/feature", false},
		{"/src/api", false},
		{"/wt/../src", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsManaged("/wt", tt.path), tt.path)
	}
}

func TestScan_Partition(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	repo := git.NewRepository("/src/api")
	mkdirs(t, root, "current", "orphan", ".hidden", "node_modules", "primary/.git")

	regs := []Registration{
		{Path: filepath.Join(root, "current"), Repo: repo},
		{Path: filepath.Join(root, "stale"), Repo: repo},
		{Path: "/src/api", Repo: repo}, // not managed
		{Path: filepath.Join(root, "current"), Repo: repo},
	}

	report, err := NewScanner(root).Scan(regs)
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(root, "current")}, paths(report.Current))
	assert.Equal(t, []string{filepath.Join(root, "stale")}, paths(report.Stale))
	assert.Equal(t, []string{filepath.Join(root, "orphan")}, paths(report.Orphaned))
	assert.Equal(t, []git.Repository{repo}, report.StaleRepos())

	// every path lands in exactly one set
	seen := map[string]int{}
	for _, set := range [][]Entry{report.Current, report.Stale, report.Orphaned} {
		for _, e := range set {
			seen[e.Path]++
		}
	}
	for p, n := range seen {
		assert.Equal(t, 1, n, p)
	}
}

func TestScan_InjectedStat(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	s := NewScanner(root)
	s.Stat = func(name string) (fs.FileInfo, error) {
		if filepath.Base(name) == "gone" {
			return nil, fs.ErrNotExist
		}
		return nil, fs.ErrPermission
	}

	report, err := s.Scan([]Registration{
		{Path: filepath.Join(root, "gone")},
		{Path: filepath.Join(root, "unreadable")},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "gone")}, paths(report.Stale))
	// only a definite not-found counts as stale
	assert.Equal(t, []string{filepath.Join(root, "unreadable")}, paths(report.Current))
}

func TestScan_MissingRoot(t *testing.T) {
	t.Parallel()

	report, err := NewScanner(filepath.Join(t.TempDir(), "absent")).Scan(nil)
	require.NoError(t, err)
	assert.Empty(t, report.Current)
	assert.Empty(t, report.Orphaned)
	assert.Empty(t, report.Stale)
}

func TestCollectRegistrations(t *testing.T) {
	t.Parallel()

	tmp, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	repoPath := filepath.Join(tmp, "api")
	for _, args := range [][]string{
		{"init", "-b", "main", repoPath},
		{"-C", repoPath, "-c", "user.email=t@t", "-c", "user.name=T", "commit", "--allow-empty", "-m", "init"},
		{"-C", repoPath, "worktree", "add", "-b", "feat", filepath.Join(tmp, "wt", "feat")},
	} {
		require.NoError(t, git.Run(ctx, "", args...))
	}

	repos := func(yield func(git.Repository) bool) { yield(git.NewRepository(repoPath)) }
	regs, err := CollectRegistrations(ctx, repos)
	require.NoError(t, err)
	require.Len(t, regs, 1)
	assert.Equal(t, filepath.Join(tmp, "wt", "feat"), regs[0].Path)
	assert.Equal(t, "feat", regs[0].Branch)
	assert.Equal(t, "api", regs[0].Repo.Name)

	broken := func(yield func(git.Repository) bool) { yield(git.NewRepository(tmp)) }
	_, err = CollectRegistrations(ctx, broken)
	assert.Error(t, err)
}
