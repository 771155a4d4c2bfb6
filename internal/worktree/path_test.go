package worktree

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTarget(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	require.NoError(t, os.MkdirAll(filepath.Join(env.root, "feature"), 0o755))
	work := filepath.Join(env.tmp, "work")
	m := env.manager(Options{WorkDir: work})

	tests := []struct {
		arg  string
		want string
	}{
		{"/abs/path/", "/abs/path"},
		{"feature", filepath.Join(env.root, "feature")},
		{"missing", filepath.Join(work, "missing")},
		{"sub/feature", filepath.Join(work, "sub", "feature")},
		{"../feature", filepath.Join(env.tmp, "feature")},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, m.ResolveTarget(tt.arg), "ResolveTarget(%q)", tt.arg)
	}
}

func TestIsManaged(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	link := filepath.Join(env.tmp, "link")
	require.NoError(t, os.MkdirAll(env.root, 0o755))
	require.NoError(t, os.Symlink(env.root, link))
	m := env.manager(Options{})

	assert.True(t, m.IsManaged(filepath.Join(env.root, "a")))
	assert.True(t, m.IsManaged(filepath.Join(env.root, "a", "b")))
	assert.True(t, m.IsManaged(filepath.Join(link, "a")))
	assert.False(t, m.IsManaged(env.root))
	assert.False(t, m.IsManaged(env.tmp))
	assert.False(t, m.IsManaged(env.root+"-other/a"))
}
