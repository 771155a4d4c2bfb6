// Package config handles loading and validation of twig configuration.
//
// Configuration is read from ~/.config/twig/config.toml ($XDG_CONFIG_HOME is
// honoured, $TWIG_CONFIG overrides the location) with environment variable
// overrides for directory settings.
//
// # Configuration Sources (highest priority first)
//
//   - TWIG_WORKTREE_DIR env var: directory holding managed worktrees
//   - TWIG_REPO_DIR env var: directory scanned for repositories
//   - Per-repo .twig.toml (main_branches, [install], [clean] only)
//   - Config file settings
//   - Default values
//
// # Path Validation
//
// Directory paths must be absolute or start with ~ (no relative paths like "."
// or "..") to avoid confusion about the working directory.
package config
