package config

import "sync"

// Resolver provides lazy per-repo config resolution with caching.
// It loads and merges per-repo .twig.toml files with the global config on demand.
type Resolver struct {
	global *Config

	mu    sync.Mutex
	cache map[string]*Config // repoPath -> merged config
}

// NewResolver creates a new Resolver backed by the given global config.
func NewResolver(global *Config) *Resolver {
	return &Resolver{
		global: global,
		cache:  make(map[string]*Config),
	}
}

// ForRepo returns the effective config for a repo. Results are cached per repoPath.
func (r *Resolver) ForRepo(repoPath string) (*Config, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.cache[repoPath]; ok {
		return cached, nil
	}

	local, err := LoadLocal(repoPath)
	if err != nil {
		return nil, err
	}

	merged := MergeLocal(r.global, local)
	r.cache[repoPath] = merged
	return merged, nil
}

// Global returns the global config (without any local overrides).
func (r *Resolver) Global() *Config {
	return r.global
}
