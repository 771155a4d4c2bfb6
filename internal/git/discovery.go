package git

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/raphi011/twig/internal/errs"
)

// DefaultScanDepth is how deep below the programming root repos are searched.
const DefaultScanDepth = 3

// dependency caches never contain repositories worth listing
var skippedDirs = map[string]bool{
	"node_modules":     true,
	"vendor":           true,
	"bower_components": true,
	"__pycache__":      true,
}

// SkipDir reports whether a directory name is hidden or a dependency cache.
func SkipDir(name string) bool {
	return strings.HasPrefix(name, ".") || skippedDirs[name]
}

// FindRepos lazily walks root up to maxDepth levels and yields every primary
// checkout. Repositories are not descended into. Each call rescans.
func FindRepos(root string, maxDepth int) iter.Seq[Repository] {
	if maxDepth <= 0 {
		maxDepth = DefaultScanDepth
	}
	return func(yield func(Repository) bool) {
		walkRepos(filepath.Clean(root), 1, maxDepth, yield)
	}
}

func walkRepos(dir string, depth, maxDepth int, yield func(Repository) bool) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return true
	}
	for _, entry := range entries {
		if !entry.IsDir() || SkipDir(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if IsPrimaryCheckout(path) {
			if !yield(NewRepository(path)) {
				return false
			}
			continue
		}
		if depth < maxDepth {
			if !walkRepos(path, depth+1, maxDepth, yield) {
				return false
			}
		}
	}
	return true
}

// ResolveRepo finds a repository under root by name: an exact basename match
// wins, else the first case-insensitive substring match.
func ResolveRepo(root string, maxDepth int, name string) (Repository, error) {
	var (
		partial Repository
		found   bool
		names   []string
	)
	lower := strings.ToLower(name)
	for repo := range FindRepos(root, maxDepth) {
		if repo.Name == name {
			return repo, nil
		}
		if !found && strings.Contains(strings.ToLower(repo.Name), lower) {
			partial, found = repo, true
		}
		names = append(names, repo.Name)
	}
	if found {
		return partial, nil
	}

	nf := &errs.NotFoundError{Kind: "repository", Name: name}
	if similar := SimilarNames(name, names, 3); len(similar) > 0 {
		nf.Hint = "did you mean: " + strings.Join(similar, ", ")
	} else {
		nf.Hint = fmt.Sprintf("no match under %s", root)
	}
	return Repository{}, nf
}

// SimilarNames returns up to limit fuzzy matches of pattern in names, best first.
func SimilarNames(pattern string, names []string, limit int) []string {
	matches := fuzzy.Find(pattern, names)
	var out []string
	for _, m := range matches {
		if len(out) == limit {
			break
		}
		out = append(out, m.Str)
	}
	return out
}
