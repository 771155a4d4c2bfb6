// Package reconcile compares git's worktree registries with what is actually
// on disk under the worktrees root.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/raphi011/twig/internal/git"
)

// Registration is a worktree path as recorded by its repository.
type Registration struct {
	Path   string
	Branch string // empty when detached
	Repo   git.Repository
}

// Entry is one classified path. Repo is zero for orphaned directories.
type Entry struct {
	Path string         `json:"path"`
	Repo git.Repository `json:"repo"`
}

// Report partitions every path seen into exactly one set.
type Report struct {
	Current  []Entry `json:"current"`
	Orphaned []Entry `json:"orphaned"`
	Stale    []Entry `json:"stale"`
}

// StaleRepos returns the distinct repositories that have stale entries.
func (r Report) StaleRepos() []git.Repository {
	var repos []git.Repository
	for _, e := range r.Stale {
		if !slices.Contains(repos, e.Repo) {
			repos = append(repos, e.Repo)
		}
	}
	return repos
}

// IsManaged reports whether path lies strictly below root.
func IsManaged(root, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Scanner classifies worktree directories. It never mutates anything.
type Scanner struct {
	Root string
	// Stat is os.Stat unless overridden.
	Stat func(name string) (fs.FileInfo, error)
}

// NewScanner returns a Scanner for root.
func NewScanner(root string) *Scanner {
	return &Scanner{Root: filepath.Clean(root), Stat: os.Stat}
}

// Scan classifies the union of registered managed paths and the root's
// direct child directories:
//
//	registered, exists on disk      -> Current
//	registered, stat says not found -> Stale
//	on disk, unregistered           -> Orphaned
//
// Hidden directories, dependency caches and primary checkouts are never
// orphans.
func (s *Scanner) Scan(regs []Registration) (Report, error) {
	stat := s.Stat
	if stat == nil {
		stat = os.Stat
	}

	var report Report
	registered := make(map[string]bool)

	for _, reg := range regs {
		path := filepath.Clean(reg.Path)
		if !IsManaged(s.Root, path) || registered[path] {
			continue
		}
		registered[path] = true

		entry := Entry{Path: path, Repo: reg.Repo}
		if _, err := stat(path); errors.Is(err, fs.ErrNotExist) {
			report.Stale = append(report.Stale, entry)
		} else {
			report.Current = append(report.Current, entry)
		}
	}

	dirs, err := os.ReadDir(s.Root)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Report{}, fmt.Errorf("failed to read %s: %w", s.Root, err)
	}
	for _, d := range dirs {
		if !d.IsDir() || git.SkipDir(d.Name()) {
			continue
		}
		path := filepath.Join(s.Root, d.Name())
		if registered[path] || git.IsPrimaryCheckout(path) {
			continue
		}
		report.Orphaned = append(report.Orphaned, Entry{Path: path})
	}

	return report, nil
}

// WithOwners appends the primary checkouts that own worktree directories
// directly under root but are missing from repos, so their worktrees are
// not mistaken for orphans.
func WithOwners(root string, repos []git.Repository) []git.Repository {
	dirs, err := os.ReadDir(root)
	if err != nil {
		return repos
	}
	out := slices.Clone(repos)
	for _, d := range dirs {
		path := filepath.Join(root, d.Name())
		if !d.IsDir() || git.SkipDir(d.Name()) || !git.IsWorktree(path) {
			continue
		}
		owner, err := git.GetMainRepoPath(path)
		if err != nil || !git.IsPrimaryCheckout(owner) {
			continue
		}
		if !slices.ContainsFunc(out, func(r git.Repository) bool { return sameDir(r.Path, owner) }) {
			out = append(out, git.NewRepository(owner))
		}
	}
	return out
}

func sameDir(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	ra, errA := filepath.EvalSymlinks(a)
	rb, errB := filepath.EvalSymlinks(b)
	return errA == nil && errB == nil && ra == rb
}

// CollectRegistrations lists the worktrees of every repository. Any failing
// listing fails the whole collection, since a missing registry would make
// live worktrees look orphaned.
func CollectRegistrations(ctx context.Context, repos iter.Seq[git.Repository]) ([]Registration, error) {
	var regs []Registration
	for repo := range repos {
		entries, err := git.ListWorktrees(ctx, repo.Path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", repo.Name, err)
		}
		for _, e := range entries {
			if e.Bare || e.Path == repo.Path {
				continue
			}
			regs = append(regs, Registration{Path: e.Path, Branch: e.Branch, Repo: repo})
		}
	}
	return regs, nil
}
