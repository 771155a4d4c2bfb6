// Package ticket looks up issue-tracker summaries for ticket ids.
package ticket

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/raphi011/twig/internal/config"
	"github.com/raphi011/twig/internal/errs"
)

// ErrTicketNotFound is returned when the tracker has no such ticket.
var ErrTicketNotFound = fmt.Errorf("ticket %w", errs.ErrNotFound)

// Lookup fetches the one-line summary of a ticket.
type Lookup interface {
	FetchSummary(ctx context.Context, id string) (string, error)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(ctx context.Context, id string) (string, error)

// FetchSummary implements Lookup.
func (f LookupFunc) FetchSummary(ctx context.Context, id string) (string, error) {
	return f(ctx, id)
}

// New builds the Lookup selected by cfg.Provider. It returns nil when no
// provider is configured.
func New(cfg config.TicketConfig) (Lookup, error) {
	switch cfg.Provider {
	case config.ProviderNone:
		return nil, nil
	case config.ProviderCommand:
		return &CommandLookup{Template: cfg.Command}, nil
	case config.ProviderJira:
		var token string
		if cfg.Jira.TokenEnv != "" {
			token = strings.TrimSpace(os.Getenv(cfg.Jira.TokenEnv))
			if token == "" {
				return nil, fmt.Errorf("ticket.jira.token_env: $%s is empty", cfg.Jira.TokenEnv)
			}
		}
		return NewJiraClient(JiraOptions{
			BaseURL: cfg.Jira.URL,
			Email:   cfg.Jira.Email,
			Token:   token,
			Timeout: cfg.Jira.TimeoutDuration(),
		}), nil
	default:
		return nil, fmt.Errorf("unknown ticket provider %q", cfg.Provider)
	}
}
