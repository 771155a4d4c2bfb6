package worktree

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphi011/twig/internal/errs"
	"github.com/raphi011/twig/internal/git"
	"github.com/raphi011/twig/internal/ticket"
	"github.com/raphi011/twig/internal/ui/prompt"
)

func summaryLookup(summary string, err error) ticket.Lookup {
	return ticket.LookupFunc(func(context.Context, string) (string, error) {
		return summary, err
	})
}

func TestCreate_TicketOnDevelop(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	repo := env.initRepo("api", "develop")
	inst := &recordingInstaller{}
	m := env.manager(Options{
		Lookup:    summaryLookup("Add OAuth support", nil),
		Installer: inst,
	})

	res, err := m.Create(env.ctx, CreateRequest{Input: "ABC-123", Repo: "api"})
	require.NoError(t, err)

	wantPath := filepath.Join(env.root, "ABC-123-add-oauth-support")
	assert.Equal(t, wantPath, res.Path)
	assert.Equal(t, "ABC-123-add-oauth-support", res.Branch)
	assert.Equal(t, "develop", res.Base)
	assert.Empty(t, res.Warnings)

	assert.Equal(t, "ABC-123-add-oauth-support", env.gitOut(res.Path, "branch", "--show-current"))
	assert.Equal(t, env.gitOut(repo, "rev-parse", "develop"), env.gitOut(res.Path, "rev-parse", "HEAD~1"))

	subject := env.gitOut(res.Path, "log", "-1", "--format=%s")
	assert.Contains(t, subject, "ABC-123")
	assert.Contains(t, subject, "add oauth support")
	assert.True(t, strings.HasPrefix(subject, "feat: "), subject)

	assert.Equal(t, []string{wantPath}, inst.dirs)
	assert.Contains(t, env.registered(repo), wantPath)
}

func TestCreate_TrunkOnlyOnOrigin(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	clone, _ := env.cloneRepo("api", "master", "develop")
	require.False(t, env.branchExists(clone, "develop"))

	m := env.manager(Options{})
	res, err := m.Create(env.ctx, CreateRequest{Input: "add oauth", Repo: "api"})
	require.NoError(t, err)

	assert.Equal(t, "develop", res.Base)
	assert.Equal(t, env.gitOut(clone, "rev-parse", "origin/develop"), env.gitOut(res.Path, "rev-parse", "HEAD~1"))
	assert.FileExists(t, filepath.Join(res.Path, "develop.txt"))
	assert.Empty(t, git.GetUpstream(env.ctx, res.Path), "new branch must not track the trunk")
}

func TestCreate_DescriptionSkipsLookup(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.initRepo("api", "main")
	m := env.manager(Options{
		Lookup: ticket.LookupFunc(func(context.Context, string) (string, error) {
			t.Error("lookup must not run when a description is given")
			return "", nil
		}),
	})

	res, err := m.Create(env.ctx, CreateRequest{Input: "abc-9", Repo: "api", Description: "Fix typo", Type: "docs"})
	require.NoError(t, err)
	assert.Equal(t, "ABC-9-fix-typo", res.Branch)

	subject := env.gitOut(res.Path, "log", "-1", "--format=%s")
	assert.True(t, strings.HasPrefix(subject, "docs: "), subject)
	body := env.gitOut(res.Path, "log", "-1", "--format=%b")
	assert.Equal(t, "Ticket: ABC-9", body)
}

func TestCreate_LookupFailure(t *testing.T) {
	t.Parallel()

	t.Run("non-interactive uses the ticket id", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.initRepo("api", "main")
		m := env.manager(Options{Lookup: summaryLookup("", ticket.ErrTicketNotFound)})

		res, err := m.Create(env.ctx, CreateRequest{Input: "ABC-7", Repo: "api"})
		require.NoError(t, err)
		assert.Equal(t, "ABC-7", res.Branch)
	})

	t.Run("interactive asks for a description", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.initRepo("api", "main")
		m := env.manager(Options{
			Lookup:      summaryLookup("", errors.New("connection refused")),
			Picker:      prompt.NewFallback(strings.NewReader("Fix the login\n"), io.Discard),
			Interactive: true,
		})

		res, err := m.Create(env.ctx, CreateRequest{Input: "ABC-7", Repo: "api"})
		require.NoError(t, err)
		assert.Equal(t, "ABC-7-fix-the-login", res.Branch)
		assert.True(t, strings.HasPrefix(env.gitOut(res.Path, "log", "-1", "--format=%s"), "fix: "))
	})

	t.Run("no provider behaves like a failed lookup", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.initRepo("api", "main")
		m := env.manager(Options{})

		res, err := m.Create(env.ctx, CreateRequest{Input: "ABC-8", Repo: "api"})
		require.NoError(t, err)
		assert.Equal(t, "ABC-8", res.Branch)
	})
}

func TestCreate_FreeText(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.initRepo("api", "main")
	m := env.manager(Options{})

	res, err := m.Create(env.ctx, CreateRequest{Input: "Fix: user login!", Repo: "api"})
	require.NoError(t, err)
	assert.Equal(t, "Fix-user-login", res.Branch)
	assert.Equal(t, filepath.Join(env.root, "Fix-user-login"), res.Path)
}

func TestCreate_TargetExists(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	repo := env.initRepo("api", "main")
	require.NoError(t, os.MkdirAll(filepath.Join(env.root, "feature"), 0o755))
	m := env.manager(Options{})

	_, err := m.Create(env.ctx, CreateRequest{Input: "feature", Repo: "api"})
	require.ErrorIs(t, err, errs.ErrAlreadyExists)
	assert.False(t, env.branchExists(repo, "feature"), "no branch may be created")
}

func TestCreate_BranchExists(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	repo := env.initRepo("api", "main")
	env.git(repo, "branch", "feature")
	m := env.manager(Options{})

	_, err := m.Create(env.ctx, CreateRequest{Input: "feature", Repo: "api"})
	require.ErrorIs(t, err, errs.ErrAlreadyExists)
	assert.NoDirExists(t, filepath.Join(env.root, "feature"))
}

func TestCreate_InvalidName(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.initRepo("api", "main")
	m := env.manager(Options{})

	_, err := m.Create(env.ctx, CreateRequest{Input: "!!!", Repo: "api"})
	require.ErrorIs(t, err, errs.ErrInvalidName)
}

func TestCreate_NoMainBranch(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.initRepo("api", "trunk")
	m := env.manager(Options{})

	_, err := m.Create(env.ctx, CreateRequest{Input: "feature", Repo: "api"})
	require.ErrorIs(t, err, errs.ErrNotFound)
	assert.NoDirExists(t, env.root)
}

func TestCreate_InstallFailureIsWarning(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.initRepo("api", "main")
	m := env.manager(Options{Installer: &recordingInstaller{err: errors.New("npm exploded")}})

	res, err := m.Create(env.ctx, CreateRequest{Input: "feature", Repo: "api"})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "npm exploded")
	assert.DirExists(t, res.Path)
}

func TestCreate_NoInstall(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.initRepo("api", "main")
	inst := &recordingInstaller{}
	m := env.manager(Options{Installer: inst})

	_, err := m.Create(env.ctx, CreateRequest{Input: "feature", Repo: "api", NoInstall: true})
	require.NoError(t, err)
	assert.Empty(t, inst.dirs)
}

func TestCreate_CancelledAfterAddStillCommits(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.initRepo("api", "main")

	ctx, cancel := context.WithCancel(env.ctx)
	defer cancel()
	inst := &cancellingInstaller{cancel: cancel}
	m := env.manager(Options{Installer: inst})

	res, err := m.Create(ctx, CreateRequest{Input: "feature", Repo: "api"})
	require.NoError(t, err)
	assert.NoError(t, inst.ctxErr, "best-effort steps must not see the cancellation")
	assert.Contains(t, env.gitOut(res.Path, "log", "-1", "--format=%s"), "feature")
}

// cancellingInstaller cancels the request context and records whether its
// own context was affected.
type cancellingInstaller struct {
	cancel context.CancelFunc
	ctxErr error
}

func (c *cancellingInstaller) Install(ctx context.Context, _ string) error {
	c.cancel()
	c.ctxErr = ctx.Err()
	return nil
}

func TestCreate_RepoFromWorkDir(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	repo := env.initRepo("web", "main")
	env.initRepo("api", "main")
	m := env.manager(Options{WorkDir: repo})

	res, err := m.Create(env.ctx, CreateRequest{Input: "feature"})
	require.NoError(t, err)
	assert.Equal(t, "web", res.Repo.Name)
}
