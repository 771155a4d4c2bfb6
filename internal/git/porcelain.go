package git

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// RecordKind tags one line of `git worktree list --porcelain`.
type RecordKind string

const (
	KindWorktree RecordKind = "worktree"
	KindHead     RecordKind = "HEAD"
	KindBranch   RecordKind = "branch"
	KindDetached RecordKind = "detached"
	KindBare     RecordKind = "bare"
	KindLocked   RecordKind = "locked"
	KindPrunable RecordKind = "prunable"
)

// Record is a single tagged porcelain line.
type Record struct {
	Kind  RecordKind
	Value string
}

// WorktreeEntry is one worktree as reported by git.
type WorktreeEntry struct {
	Path     string `json:"path"`
	Head     string `json:"head,omitempty"`
	Branch   string `json:"branch,omitempty"` // short name; empty when detached
	Bare     bool   `json:"bare,omitempty"`
	Locked   bool   `json:"locked,omitempty"`
	Prunable bool   `json:"prunable,omitempty"`
}

// Detached reports whether the entry has no branch checked out.
func (e WorktreeEntry) Detached() bool { return e.Branch == "" && !e.Bare }

// ErrBranchBeforeWorktree is returned for porcelain output where a branch
// line precedes every worktree line.
var ErrBranchBeforeWorktree = errors.New("malformed worktree list: branch line before any worktree line")

// ParsePorcelain tokenizes porcelain output into records. Blank separator
// lines and unknown attributes are skipped.
func ParsePorcelain(r io.Reader) ([]Record, error) {
	var records []Record
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		key, value, _ := strings.Cut(line, " ")
		switch kind := RecordKind(key); kind {
		case KindWorktree, KindHead, KindBranch, KindDetached, KindBare, KindLocked, KindPrunable:
			records = append(records, Record{Kind: kind, Value: value})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read worktree list: %w", err)
	}
	return records, nil
}

// AssembleEntries folds records into entries. Attributes belong to the most
// recent worktree record.
func AssembleEntries(records []Record) ([]WorktreeEntry, error) {
	var entries []WorktreeEntry
	var cur *WorktreeEntry

	for _, rec := range records {
		if rec.Kind == KindWorktree {
			entries = append(entries, WorktreeEntry{Path: filepath.Clean(rec.Value)})
			cur = &entries[len(entries)-1]
			continue
		}
		if cur == nil {
			if rec.Kind == KindBranch {
				return nil, ErrBranchBeforeWorktree
			}
			continue
		}
		switch rec.Kind {
		case KindHead:
			cur.Head = rec.Value
		case KindBranch:
			cur.Branch = strings.TrimPrefix(rec.Value, "refs/heads/")
		case KindDetached:
			cur.Branch = ""
		case KindBare:
			cur.Bare = true
		case KindLocked:
			cur.Locked = true
		case KindPrunable:
			cur.Prunable = true
		}
	}
	return entries, nil
}

// ListWorktrees returns all worktrees registered in repoPath, including the
// primary checkout. A failing git invocation fails the whole listing.
func ListWorktrees(ctx context.Context, repoPath string) ([]WorktreeEntry, error) {
	out, err := outputGit(ctx, repoPath, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("failed to list worktrees: %w", err)
	}
	records, err := ParsePorcelain(strings.NewReader(string(out)))
	if err != nil {
		return nil, err
	}
	return AssembleEntries(records)
}

// FindEntry returns the entry registered at exactly path.
func FindEntry(entries []WorktreeEntry, path string) (WorktreeEntry, bool) {
	path = filepath.Clean(path)
	for _, e := range entries {
		if e.Path == path {
			return e, true
		}
	}
	return WorktreeEntry{}, false
}
