package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/raphi011/twig/internal/errs"
)

// DefaultMainBranches is the preference order used when none is configured.
var DefaultMainBranches = []string{"develop", "main", "master"}

// NoMainBranchError is returned when none of the preferred trunk names exist.
type NoMainBranchError struct {
	Repo       string
	Candidates []string
}

func (e *NoMainBranchError) Error() string {
	return fmt.Sprintf("no main branch found in %s (tried %s)", e.Repo, strings.Join(e.Candidates, ", "))
}

func (e *NoMainBranchError) Unwrap() error { return errs.ErrNotFound }

// MainBranchResolver picks a repository's trunk from an ordered list.
type MainBranchResolver struct {
	Preferences []string
}

// NewMainBranchResolver returns a resolver; empty prefs select DefaultMainBranches.
func NewMainBranchResolver(prefs []string) *MainBranchResolver {
	if len(prefs) == 0 {
		prefs = DefaultMainBranches
	}
	return &MainBranchResolver{Preferences: prefs}
}

// Resolve returns the first preference that exists locally or on origin.
func (r *MainBranchResolver) Resolve(ctx context.Context, repoPath string) (string, error) {
	for _, b := range r.Preferences {
		if LocalBranchExists(ctx, repoPath, b) || RemoteTrackingBranchExists(ctx, repoPath, b) {
			return b, nil
		}
	}
	return "", &NoMainBranchError{Repo: repoPath, Candidates: r.Preferences}
}

// StartPoint returns the ref to branch off: branch itself when it exists
// locally, else origin/<branch>. Clones usually only carry the trunk as a
// remote-tracking ref.
func StartPoint(ctx context.Context, repoPath, branch string) string {
	if !LocalBranchExists(ctx, repoPath, branch) && RemoteTrackingBranchExists(ctx, repoPath, branch) {
		return "origin/" + branch
	}
	return branch
}
