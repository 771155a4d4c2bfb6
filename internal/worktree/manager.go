// Package worktree implements the lifecycle of managed worktrees: creating,
// deleting, cleaning, moving, renaming and updating the per-branch working
// directories under the worktrees root.
//
// Every operation re-reads git's registry instead of caching it, since the
// registry and the filesystem can both change behind twig's back.
package worktree

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/raphi011/twig/internal/config"
	"github.com/raphi011/twig/internal/git"
	"github.com/raphi011/twig/internal/installer"
	"github.com/raphi011/twig/internal/log"
	"github.com/raphi011/twig/internal/selection"
	"github.com/raphi011/twig/internal/ticket"
	"github.com/raphi011/twig/internal/ui/prompt"
)

const lockFileName = ".twig.lock"

// Options wires a Manager to its collaborators.
type Options struct {
	Config *config.Config
	// Resolver merges per-repository .twig.toml files. Built from Config when nil.
	Resolver *config.Resolver
	// Lookup fetches ticket summaries; nil disables lookups.
	Lookup ticket.Lookup
	// Installer overrides the per-repository installer.Runner.
	Installer installer.Installer
	Picker    prompt.Picker
	// Store remembers the last picked repository. Nil keeps nothing.
	Store selection.Store
	// Interactive allows optional prompts, such as asking for a description
	// when a ticket lookup fails.
	Interactive bool
	// WorkDir is where the current repository is detected from.
	WorkDir string
}

// Manager runs lifecycle operations against the configured roots.
type Manager struct {
	cfg         *config.Config
	resolver    *config.Resolver
	lookup      ticket.Lookup
	installer   installer.Installer
	picker      prompt.Picker
	store       selection.Store
	interactive bool
	workDir     string

	// nativeMove reports whether git can move worktrees itself.
	nativeMove func(context.Context) bool
}

// New returns a Manager. Config is required.
func New(opts Options) *Manager {
	resolver := opts.Resolver
	if resolver == nil {
		resolver = config.NewResolver(opts.Config)
	}
	store := opts.Store
	if store == nil {
		store = &selection.MemoryStore{}
	}
	return &Manager{
		cfg:         opts.Config,
		resolver:    resolver,
		lookup:      opts.Lookup,
		installer:   opts.Installer,
		picker:      opts.Picker,
		store:       store,
		interactive: opts.Interactive,
		workDir:     opts.WorkDir,
		nativeMove:  git.SupportsWorktreeMove,
	}
}

// Root returns the worktrees root.
func (m *Manager) Root() string {
	return m.cfg.WorktreeDir
}

// lock takes the root-wide lock, creating the root if needed.
func (m *Manager) lock(ctx context.Context) (func(), error) {
	if err := os.MkdirAll(m.Root(), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create worktrees root: %w", err)
	}
	l := newFileLock(filepath.Join(m.Root(), lockFileName))
	if err := l.Lock(ctx); err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", m.Root(), err)
	}
	return func() {
		if err := l.Unlock(); err != nil {
			log.FromContext(ctx).Debug("unlock failed", "error", err)
		}
	}, nil
}

// repoConfig returns the effective config for repo, falling back to the
// global config when the local file is broken.
func (m *Manager) repoConfig(ctx context.Context, repo git.Repository) *config.Config {
	cfg, err := m.resolver.ForRepo(repo.Path)
	if err != nil {
		log.FromContext(ctx).Warnf("%s: ignoring %s: %v", repo.Name, config.LocalConfigFileName, err)
		return m.resolver.Global()
	}
	return cfg
}

// mainBranch resolves the trunk of repo using its effective preferences.
func (m *Manager) mainBranch(ctx context.Context, repo git.Repository) (string, error) {
	cfg := m.repoConfig(ctx, repo)
	return git.NewMainBranchResolver(cfg.MainBranches).Resolve(ctx, repo.Path)
}

func (m *Manager) installerFor(cfg *config.Config) installer.Installer {
	if m.installer != nil {
		return m.installer
	}
	return &installer.Runner{
		Command: cfg.Install.Command,
		Timeout: cfg.Install.TimeoutDuration(),
	}
}

// repos returns every repository under the programming root.
func (m *Manager) repos() []git.Repository {
	var out []git.Repository
	for repo := range git.FindRepos(m.cfg.RepoDir, m.cfg.ScanDepth) {
		out = append(out, repo)
	}
	return out
}
