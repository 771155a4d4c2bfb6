package ticket

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphi011/twig/internal/config"
)

func TestCommandLookup(t *testing.T) {
	t.Parallel()

	l := &CommandLookup{Template: `printf 'Summary for %s\nsecond line\n' {ticket}`}
	got, err := l.FetchSummary(context.Background(), "ABC-7")
	require.NoError(t, err)
	assert.Equal(t, "Summary for ABC-7", got)
}

func TestCommandLookup_EmptyOutput(t *testing.T) {
	t.Parallel()

	_, err := (&CommandLookup{Template: "true"}).FetchSummary(context.Background(), "ABC-7")
	assert.True(t, errors.Is(err, ErrTicketNotFound))
}

func TestCommandLookup_Failure(t *testing.T) {
	t.Parallel()

	_, err := (&CommandLookup{Template: "echo nope >&2; exit 2"}).FetchSummary(context.Background(), "ABC-7")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}

func TestNew(t *testing.T) {
	l, err := New(config.TicketConfig{})
	require.NoError(t, err)
	assert.Nil(t, l)

	l, err = New(config.TicketConfig{Provider: config.ProviderCommand, Command: "echo x"})
	require.NoError(t, err)
	assert.IsType(t, &CommandLookup{}, l)

	t.Setenv("TWIG_TEST_JIRA_TOKEN", "tok")
	l, err = New(config.TicketConfig{
		Provider: config.ProviderJira,
		Jira:     config.JiraConfig{URL: "https://jira.example.com", TokenEnv: "TWIG_TEST_JIRA_TOKEN"},
	})
	require.NoError(t, err)
	assert.IsType(t, &JiraClient{}, l)

	t.Setenv("TWIG_TEST_JIRA_TOKEN", "")
	_, err = New(config.TicketConfig{
		Provider: config.ProviderJira,
		Jira:     config.JiraConfig{URL: "https://jira.example.com", TokenEnv: "TWIG_TEST_JIRA_TOKEN"},
	})
	assert.Error(t, err)
}

func TestLookupFunc(t *testing.T) {
	t.Parallel()

	var l Lookup = LookupFunc(func(_ context.Context, id string) (string, error) {
		return "summary of " + id, nil
	})
	got, err := l.FetchSummary(context.Background(), "X-1")
	require.NoError(t, err)
	assert.Equal(t, "summary of X-1", got)
}
