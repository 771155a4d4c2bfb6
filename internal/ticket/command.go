package ticket

import (
	"context"
	"fmt"
	"strings"

	"github.com/raphi011/twig/internal/cmd"
	"github.com/raphi011/twig/internal/shell"
)

// CommandLookup runs a user-supplied shell template and uses the first line
// of stdout as the summary. {ticket} expands to the shell-quoted id.
type CommandLookup struct {
	Template string
}

// FetchSummary implements Lookup.
func (c *CommandLookup) FetchSummary(ctx context.Context, id string) (string, error) {
	script := shell.Expand(c.Template, map[string]string{"ticket": id})
	out, err := cmd.ShellContext(ctx, "", script)
	if err != nil {
		return "", fmt.Errorf("ticket command: %w", err)
	}
	line, _, _ := strings.Cut(string(out), "\n")
	if line = strings.TrimSpace(line); line == "" {
		return "", fmt.Errorf("%s: %w", id, ErrTicketNotFound)
	}
	return line, nil
}
