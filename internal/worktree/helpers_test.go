package worktree

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/raphi011/twig/internal/cmd"
	"github.com/raphi011/twig/internal/config"
	"github.com/raphi011/twig/internal/git"
)

// testEnv is a programming root with repositories and an empty worktrees root.
type testEnv struct {
	t       *testing.T
	ctx     context.Context
	tmp     string
	repoDir string
	root    string
	cfg     *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	tmp, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	cfg := config.Default()
	cfg.RepoDir = filepath.Join(tmp, "code")
	cfg.WorktreeDir = filepath.Join(tmp, "worktrees")
	require.NoError(t, os.MkdirAll(cfg.RepoDir, 0o755))

	return &testEnv{
		t:       t,
		ctx:     context.Background(),
		tmp:     tmp,
		repoDir: cfg.RepoDir,
		root:    cfg.WorktreeDir,
		cfg:     &cfg,
	}
}

// manager returns a Manager over the env with a recording installer and
// the native move decided by native.
func (e *testEnv) manager(opts Options) *Manager {
	opts.Config = e.cfg
	if opts.Installer == nil {
		opts.Installer = &recordingInstaller{}
	}
	return New(opts)
}

func (e *testEnv) git(dir string, args ...string) {
	e.t.Helper()
	require.NoError(e.t, git.Run(e.ctx, dir, args...), "git %s", strings.Join(args, " "))
}

func (e *testEnv) gitOut(dir string, args ...string) string {
	e.t.Helper()
	out, err := cmd.OutputContext(e.ctx, dir, "git", args...)
	require.NoError(e.t, err, "git %s", strings.Join(args, " "))
	return strings.TrimSpace(string(out))
}

// initRepo creates repoDir/name with one commit on trunk.
func (e *testEnv) initRepo(name, trunk string) string {
	e.t.Helper()
	path := filepath.Join(e.repoDir, name)
	e.git("", "init", "-b", trunk, path)
	e.configure(path)
	require.NoError(e.t, os.WriteFile(filepath.Join(path, "README.md"), []byte("# "+name+"\n"), 0o644))
	e.git(path, "add", "README.md")
	e.git(path, "commit", "-m", "Initial commit")
	return path
}

// initRepoWithOrigin creates a bare origin and a clone of it under repoDir.
func (e *testEnv) initRepoWithOrigin(name, trunk string) (repo, origin string) {
	e.t.Helper()
	origin = filepath.Join(e.tmp, "remotes", name+".git")
	seed := e.initRepo(name, trunk)
	e.git("", "clone", "--bare", seed, origin)
	e.git(seed, "remote", "add", "origin", origin)
	e.git(seed, "fetch", "origin")
	e.git(seed, "branch", "--set-upstream-to=origin/"+trunk, trunk)
	return seed, origin
}

// cloneRepo seeds a repository outside repoDir with a commit on each of
// branches and clones it to repoDir/name. Only branches[0] exists locally in
// the clone; the others are origin/ refs.
func (e *testEnv) cloneRepo(name string, branches ...string) (clone, seed string) {
	e.t.Helper()
	seed = filepath.Join(e.tmp, "seeds", name)
	e.git("", "init", "-b", branches[0], seed)
	e.configure(seed)
	e.commit(seed, "README.md", "# "+name+"\n")
	for _, b := range branches[1:] {
		e.git(seed, "checkout", "-b", b)
		e.commit(seed, b+".txt", b)
	}
	e.git(seed, "checkout", branches[0])

	clone = filepath.Join(e.repoDir, name)
	e.git("", "clone", seed, clone)
	e.configure(clone)
	return clone, seed
}

func (e *testEnv) configure(path string) {
	e.t.Helper()
	e.git(path, "config", "user.email", "test@example.com")
	e.git(path, "config", "user.name", "Test User")
	e.git(path, "config", "commit.gpgsign", "false")
}

// addWorktree creates root/name on a new branch name from base.
func (e *testEnv) addWorktree(repo, name, base string) string {
	e.t.Helper()
	path := filepath.Join(e.root, name)
	e.git(repo, "worktree", "add", "-b", name, path, base)
	return path
}

// commit adds a file with content and commits it in dir.
func (e *testEnv) commit(dir, file, content string) {
	e.t.Helper()
	require.NoError(e.t, os.WriteFile(filepath.Join(dir, file), []byte(content), 0o644))
	e.git(dir, "add", file)
	e.git(dir, "commit", "-m", "add "+file)
}

func (e *testEnv) branchExists(repo, branch string) bool {
	return git.LocalBranchExists(e.ctx, repo, branch)
}

func (e *testEnv) registered(repo string) []string {
	e.t.Helper()
	entries, err := git.ListWorktrees(e.ctx, repo)
	require.NoError(e.t, err)
	var paths []string
	for _, en := range entries {
		paths = append(paths, en.Path)
	}
	return paths
}

type recordingInstaller struct {
	mu   sync.Mutex
	dirs []string
	err  error
}

func (r *recordingInstaller) Install(_ context.Context, dir string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dirs = append(r.dirs, dir)
	return r.err
}
