package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// LocalConfigFileName is the per-repo override file at the repository root.
const LocalConfigFileName = ".twig.toml"

// LocalConfig holds per-repo configuration overrides from .twig.toml.
// Pointer fields and zero-value strings indicate "not set" (inherit from global).
type LocalConfig struct {
	MainBranches []string     `toml:"main_branches"`
	Install      LocalInstall `toml:"install"`
	Clean        LocalClean   `toml:"clean"`
}

// LocalInstall holds local install overrides
type LocalInstall struct {
	Enabled *bool  `toml:"enabled"`
	Timeout string `toml:"timeout"`
	Command string `toml:"command"`
}

// LocalClean holds local clean overrides
type LocalClean struct {
	SkipRemoteBranches *bool `toml:"skip_remote_branches"`
}

// LoadLocal reads a per-repo .twig.toml config from the given repo path.
// Returns nil (no error) if the file doesn't exist.
// Returns an error only on parse or validation failure.
func LoadLocal(repoPath string) (*LocalConfig, error) {
	configFile := filepath.Join(repoPath, LocalConfigFileName)

	data, err := os.ReadFile(configFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read local config %s: %w", configFile, err)
	}

	var local LocalConfig
	if err := toml.Unmarshal(data, &local); err != nil {
		return nil, fmt.Errorf("failed to parse local config %s: %w", configFile, err)
	}

	if _, err := parseDuration(local.Install.Timeout, "install.timeout"); err != nil {
		return nil, fmt.Errorf("%w in %s", err, configFile)
	}
	return &local, nil
}
