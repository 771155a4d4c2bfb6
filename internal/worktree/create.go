package worktree

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/raphi011/twig/internal/errs"
	"github.com/raphi011/twig/internal/git"
	"github.com/raphi011/twig/internal/log"
	"github.com/raphi011/twig/internal/naming"
	"github.com/raphi011/twig/internal/ticket"
)

// CreateRequest describes a new worktree.
type CreateRequest struct {
	// Input is a ticket id or free text. Empty falls back to Description,
	// then to a prompt.
	Input string
	// Repo names the repository; empty means the current one or a pick.
	Repo string
	// Description replaces the ticket lookup for ticket input.
	Description string
	// Type forces the commit type instead of inferring it.
	Type      string
	NoInstall bool
}

// CreateResult describes the created worktree.
type CreateResult struct {
	Path     string            `json:"path"`
	Branch   string            `json:"branch"`
	Base     string            `json:"base"`
	Repo     git.Repository    `json:"repo"`
	Spec     naming.BranchSpec `json:"-"`
	Warnings []string          `json:"warnings,omitempty"`
}

func (r *CreateResult) warn(ctx context.Context, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.FromContext(ctx).Warnf("%s", msg)
	r.Warnings = append(r.Warnings, msg)
}

// Create adds a worktree with a new branch based on the repository's trunk,
// makes the initial commit and installs dependencies. Once git has added the
// worktree, the commit and install run to completion even if ctx is
// cancelled; their failures are warnings.
func (m *Manager) Create(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	l := log.FromContext(ctx)

	repo, err := m.resolveRepo(ctx, req.Repo)
	if err != nil {
		return nil, err
	}
	base, err := m.mainBranch(ctx, repo)
	if err != nil {
		return nil, err
	}

	spec, err := m.branchSpec(ctx, req)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(m.Root(), spec.SanitizedName)
	l.Debug("creating worktree", "repo", repo.Name, "branch", spec.SanitizedName, "base", base, "path", path)

	unlock, err := m.lock(ctx)
	if err != nil {
		return nil, err
	}
	err = m.addWorktree(ctx, repo, path, spec.SanitizedName, base)
	unlock()
	if err != nil {
		return nil, err
	}

	res := &CreateResult{
		Path:   path,
		Branch: spec.SanitizedName,
		Base:   base,
		Repo:   repo,
		Spec:   spec,
	}

	bctx := context.WithoutCancel(ctx)
	rcfg := m.repoConfig(bctx, repo)

	msg := naming.CommitMessage(spec, m.cfg.Ticket.LinkPrefix)
	if err := git.CommitEmpty(bctx, path, msg); err != nil {
		res.warn(ctx, "initial commit: %v", err)
	}

	if !req.NoInstall && rcfg.Install.Enabled {
		if err := m.installerFor(rcfg).Install(bctx, path); err != nil {
			res.warn(ctx, "dependency install: %v", err)
		}
	}

	entries, err := git.ListWorktrees(bctx, repo.Path)
	if err != nil {
		return res, err
	}
	if e, ok := findEntry(entries, path); !ok || e.Branch != spec.SanitizedName {
		return res, fmt.Errorf("worktree %s not registered on branch %s after create", path, spec.SanitizedName)
	}
	return res, nil
}

// addWorktree checks the preconditions and runs git worktree add.
func (m *Manager) addWorktree(ctx context.Context, repo git.Repository, path, branch, base string) error {
	if exists(path) {
		return &errs.AlreadyExistsError{Kind: "worktree", Name: path}
	}
	if git.LocalBranchExists(ctx, repo.Path, branch) {
		return &errs.AlreadyExistsError{Kind: "branch", Name: branch}
	}
	return git.AddWorktree(ctx, repo.Path, path, branch, git.StartPoint(ctx, repo.Path, base))
}

// branchSpec turns the request into a BranchSpec, looking up the ticket
// summary when the input is a ticket id.
func (m *Manager) branchSpec(ctx context.Context, req CreateRequest) (naming.BranchSpec, error) {
	var commitType naming.CommitType
	if req.Type != "" {
		ct, err := naming.ParseCommitType(req.Type)
		if err != nil {
			return naming.BranchSpec{}, err
		}
		commitType = ct
	}

	input := strings.TrimSpace(req.Input)
	description := strings.TrimSpace(req.Description)
	if input == "" {
		input = description
		description = ""
	}
	if input == "" {
		if !m.interactive || m.picker == nil {
			return naming.BranchSpec{}, fmt.Errorf("a ticket id or name is required")
		}
		text, err := m.picker.Text(ctx, "Ticket or description", "PROJ-123 or add oauth support")
		if err != nil {
			return naming.BranchSpec{}, err
		}
		if input = strings.TrimSpace(text); input == "" {
			return naming.BranchSpec{}, errs.ErrCancelled
		}
	}

	matcher, err := naming.NewTicketMatcher(m.cfg.Ticket.Pattern)
	if err != nil {
		return naming.BranchSpec{}, err
	}
	id, isTicket := matcher.Match(input)
	if !isTicket {
		return naming.NewBranchSpec(input, "", "", commitType)
	}

	summary := description
	if summary == "" {
		summary, err = m.ticketSummary(ctx, id)
		if err != nil {
			return naming.BranchSpec{}, err
		}
	}
	return naming.NewBranchSpec(input, id, summary, commitType)
}

// ticketSummary asks the tracker for id's summary. When that is impossible
// the user is asked instead, or the bare id is used.
func (m *Manager) ticketSummary(ctx context.Context, id string) (string, error) {
	l := log.FromContext(ctx)

	var lookupErr error
	if m.lookup == nil {
		lookupErr = errors.New("no ticket provider configured")
	} else {
		summary, err := m.lookup.FetchSummary(ctx, id)
		if err == nil && strings.TrimSpace(summary) != "" {
			l.Debug("ticket summary", "ticket", id, "summary", summary)
			return summary, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		lookupErr = err
		if lookupErr == nil {
			lookupErr = ticket.ErrTicketNotFound
		}
	}

	if m.interactive && m.picker != nil {
		l.Debug("ticket lookup failed", "ticket", id, "error", lookupErr)
		text, err := m.picker.Text(ctx, fmt.Sprintf("Description for %s (empty for none)", id), "")
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(text), nil
	}

	if m.lookup != nil {
		l.Warnf("%s: %v, using the ticket id only", id, lookupErr)
	}
	return "", nil
}
