package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Environment overrides.
const (
	EnvWorktreeDir = "TWIG_WORKTREE_DIR"
	EnvRepoDir     = "TWIG_REPO_DIR"
	EnvConfig      = "TWIG_CONFIG"
)

// Defaults.
const (
	DefaultWorktreeDir    = "~/worktrees"
	DefaultRepoDir        = "~/code"
	DefaultScanDepth      = 3
	DefaultInstallTimeout = 5 * time.Minute
	DefaultJiraTimeout    = 10 * time.Second
)

// Ticket providers.
const (
	ProviderNone    = ""
	ProviderJira    = "jira"
	ProviderCommand = "command"
)

// JiraConfig configures the Jira REST lookup.
type JiraConfig struct {
	URL      string `toml:"url"`
	Email    string `toml:"email"`     // basic auth user; empty means bearer token
	TokenEnv string `toml:"token_env"` // env var holding the API token
	Timeout  string `toml:"timeout"`

	timeout time.Duration
}

// TimeoutDuration returns the parsed request timeout.
func (j JiraConfig) TimeoutDuration() time.Duration {
	if j.timeout == 0 {
		return DefaultJiraTimeout
	}
	return j.timeout
}

// TicketConfig configures ticket recognition and lookup.
type TicketConfig struct {
	Pattern    string     `toml:"pattern"`     // ticket id regex, matched case-insensitively
	LinkPrefix string     `toml:"link_prefix"` // prepended to the id in commit bodies
	Provider   string     `toml:"provider"`    // "", "jira" or "command"
	Command    string     `toml:"command"`     // shell template with {ticket}
	Jira       JiraConfig `toml:"jira"`
}

// InstallConfig configures dependency installation after create.
type InstallConfig struct {
	Enabled bool   `toml:"enabled"`
	Timeout string `toml:"timeout"`
	Command string `toml:"command"` // overrides manifest detection; {path} placeholder

	timeout time.Duration
}

// TimeoutDuration returns the parsed install timeout.
func (i InstallConfig) TimeoutDuration() time.Duration {
	if i.timeout == 0 {
		return DefaultInstallTimeout
	}
	return i.timeout
}

// CleanConfig configures the clean command.
type CleanConfig struct {
	// SkipRemoteBranches keeps merged worktrees whose branch still exists on origin.
	SkipRemoteBranches bool `toml:"skip_remote_branches"`
}

// Config holds the twig configuration
type Config struct {
	WorktreeDir  string        `toml:"worktree_dir"`
	RepoDir      string        `toml:"repo_dir"`
	ScanDepth    int           `toml:"scan_depth"`
	MainBranches []string      `toml:"main_branches"`
	Ticket       TicketConfig  `toml:"ticket"`
	Install      InstallConfig `toml:"install"`
	Clean        CleanConfig   `toml:"clean"`
}

// Default returns the default configuration
func Default() Config {
	return Config{
		WorktreeDir:  DefaultWorktreeDir,
		RepoDir:      DefaultRepoDir,
		ScanDepth:    DefaultScanDepth,
		MainBranches: []string{"develop", "main", "master"},
		Install: InstallConfig{
			Enabled: true,
			Timeout: DefaultInstallTimeout.String(),
		},
		Clean: CleanConfig{SkipRemoteBranches: true},
	}
}

// ValidatePath checks that the path is absolute or starts with ~
// Returns error if path is relative (like "." or "..")
func ValidatePath(path, fieldName string) error {
	if path == "" {
		return fmt.Errorf("%s must not be empty", fieldName)
	}
	if path[0] == '~' {
		return nil
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%s must be absolute or start with ~, got: %q", fieldName, path)
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) (string, error) {
	if path == "~" || (len(path) >= 2 && path[:2] == "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand ~: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// Path returns the config file location: $TWIG_CONFIG, else
// $XDG_CONFIG_HOME/twig/config.toml, else ~/.config/twig/config.toml.
func Path() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, nil
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "twig", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "twig", "config.toml"), nil
}

// Load reads the config file, applies env overrides and validates.
// A missing file yields Default() with overrides applied.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Default(), fmt.Errorf("locate config: %w", err)
	}
	return LoadFile(path)
}

// LoadFile is Load for an explicit path.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Default(), fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Default(), fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if v := os.Getenv(EnvWorktreeDir); v != "" {
		cfg.WorktreeDir = v
	}
	if v := os.Getenv(EnvRepoDir); v != "" {
		cfg.RepoDir = v
	}

	if err := cfg.finalize(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// finalize validates every field and expands paths.
func (c *Config) finalize() error {
	var err error
	if err = ValidatePath(c.WorktreeDir, "worktree_dir"); err != nil {
		return err
	}
	if err = ValidatePath(c.RepoDir, "repo_dir"); err != nil {
		return err
	}
	if c.WorktreeDir, err = ExpandPath(c.WorktreeDir); err != nil {
		return fmt.Errorf("expand worktree_dir: %w", err)
	}
	if c.RepoDir, err = ExpandPath(c.RepoDir); err != nil {
		return fmt.Errorf("expand repo_dir: %w", err)
	}
	c.WorktreeDir = filepath.Clean(c.WorktreeDir)
	c.RepoDir = filepath.Clean(c.RepoDir)

	if c.ScanDepth < 1 {
		return fmt.Errorf("invalid scan_depth %d: must be at least 1", c.ScanDepth)
	}
	if len(c.MainBranches) == 0 {
		return fmt.Errorf("main_branches must not be empty")
	}
	if err := validatePattern(c.Ticket.Pattern, "ticket.pattern"); err != nil {
		return err
	}
	if err := validateEnum(c.Ticket.Provider, "ticket.provider", ValidProviders); err != nil {
		return err
	}
	switch c.Ticket.Provider {
	case ProviderJira:
		if c.Ticket.Jira.URL == "" {
			return fmt.Errorf("ticket.jira.url is required when ticket.provider is %q", ProviderJira)
		}
	case ProviderCommand:
		if c.Ticket.Command == "" {
			return fmt.Errorf("ticket.command is required when ticket.provider is %q", ProviderCommand)
		}
	}
	if c.Ticket.Jira.timeout, err = parseDuration(c.Ticket.Jira.Timeout, "ticket.jira.timeout"); err != nil {
		return err
	}
	if c.Install.timeout, err = parseDuration(c.Install.Timeout, "install.timeout"); err != nil {
		return err
	}
	return nil
}

// String renders the effective configuration as TOML.
func (c Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("# failed to encode config: %v\n", err)
	}
	return buf.String()
}

const defaultConfig = `# twig configuration

# Directory holding all managed worktrees (one sub-directory per branch).
# Must be an absolute path or start with ~ (no relative paths like "." or "..")
# Overridden by TWIG_WORKTREE_DIR.
# worktree_dir = "~/worktrees"

# Directory scanned for repositories (create --repo, clean, repos).
# Overridden by TWIG_REPO_DIR.
# repo_dir = "~/code"

# How many directory levels below repo_dir are searched.
# scan_depth = 3

# Trunk candidates, first existing branch (local or origin/) wins.
# main_branches = ["develop", "main", "master"]

# [ticket]
# pattern = "^[A-Z][A-Z0-9]+-[0-9]+$"   # matched case-insensitively
# link_prefix = "https://example.atlassian.net/browse/"
#
# Summary lookup: "jira", "command", or empty to disable.
# provider = "jira"
#
# For provider = "command": {ticket} is replaced with the id, the first line
# of stdout is used as the summary.
# command = "jira issue view {ticket} --plain --raw | jq -r .fields.summary"
#
# [ticket.jira]
# url = "https://example.atlassian.net"
# email = "you@example.com"      # omit to send the token as a bearer PAT
# token_env = "JIRA_API_TOKEN"
# timeout = "10s"

# [install]
# enabled = true
# timeout = "5m"
# Run this instead of detecting the package manager. {path} is the worktree.
# command = "make deps"

# [clean]
# Keep merged worktrees whose branch still exists on origin.
# skip_remote_branches = true

# Per-repository overrides live in <repo>/.twig.toml and may set
# main_branches, [install] and [clean].
`

// Init creates a default config file at Path().
// If force is true, overwrites existing file
// Returns the path to the created file
func Init(force bool) (string, error) {
	path, err := Path()
	if err != nil {
		return "", err
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", errors.New("config file already exists: " + path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(defaultConfig), 0644); err != nil {
		return "", err
	}
	return path, nil
}
