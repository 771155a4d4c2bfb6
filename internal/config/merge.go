package config

import "slices"

// MergeLocal merges a local per-repo config into a global config,
// returning a new Config without mutating the global.
// Returns global unchanged if local is nil.
func MergeLocal(global *Config, local *LocalConfig) *Config {
	if local == nil {
		return global
	}

	// Shallow copy: fields LocalConfig cannot set are inherited as-is.
	merged := *global

	if len(local.MainBranches) > 0 {
		merged.MainBranches = slices.Clone(local.MainBranches)
	}

	if local.Install.Enabled != nil {
		merged.Install.Enabled = *local.Install.Enabled
	}
	if local.Install.Command != "" {
		merged.Install.Command = local.Install.Command
	}
	if local.Install.Timeout != "" {
		// validated by LoadLocal
		d, _ := parseDuration(local.Install.Timeout, "install.timeout")
		merged.Install.Timeout = local.Install.Timeout
		merged.Install.timeout = d
	}

	if local.Clean.SkipRemoteBranches != nil {
		merged.Clean.SkipRemoteBranches = *local.Clean.SkipRemoteBranches
	}

	return &merged
}
