package git

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/raphi011/twig/internal/errs"
)

// makeRepoDirs fakes primary checkouts by creating .git directories.
func makeRepoDirs(t *testing.T, root string, rels ...string) {
	t.Helper()
	for _, rel := range rels {
		if err := os.MkdirAll(filepath.Join(root, rel, ".git"), 0755); err != nil {
			t.Fatal(err)
		}
	}
}

func repoNames(root string, depth int) []string {
	var names []string
	for r := range FindRepos(root, depth) {
		names = append(names, r.Name)
	}
	slices.Sort(names)
	return names
}

func TestFindRepos(t *testing.T) {
	t.Parallel()

	root := resolveTempDir(t)
	makeRepoDirs(t, root,
		"api",
		"org/web",
		"org/deep/nested/too-deep",
		".hidden/secret",
		"node_modules/pkg",
		"api/sub/inner", // inside a repo, not descended into
	)
	// a linked worktree has a .git file and is not a primary checkout
	if err := os.MkdirAll(filepath.Join(root, "linked"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "linked", ".git"), []byte("gitdir: /x/.git/worktrees/linked\n"), 0644); err != nil {
		t.Fatal(err)
	}

	got := repoNames(root, 3)
	want := []string{"api", "web"}
	if !slices.Equal(got, want) {
		t.Errorf("FindRepos() = %v, want %v", got, want)
	}

	if got := repoNames(root, 4); !slices.Contains(got, "too-deep") {
		t.Errorf("FindRepos(depth 4) = %v, want too-deep included", got)
	}
}

func TestFindRepos_EarlyStop(t *testing.T) {
	t.Parallel()

	root := resolveTempDir(t)
	makeRepoDirs(t, root, "a", "b", "c")

	count := 0
	for range FindRepos(root, 1) {
		count++
		break
	}
	if count != 1 {
		t.Errorf("iterated %d times after break, want 1", count)
	}
}

func TestFindRepos_FreshScan(t *testing.T) {
	t.Parallel()

	root := resolveTempDir(t)
	makeRepoDirs(t, root, "a")
	seq := FindRepos(root, 2)

	first := 0
	for range seq {
		first++
	}
	makeRepoDirs(t, root, "b")
	second := 0
	for range seq {
		second++
	}
	if first != 1 || second != 2 {
		t.Errorf("scans yielded %d then %d, want 1 then 2", first, second)
	}
}

func TestResolveRepo(t *testing.T) {
	t.Parallel()

	root := resolveTempDir(t)
	makeRepoDirs(t, root, "api-gateway", "api", "frontend")

	tests := []struct {
		name    string
		query   string
		want    string
		wantErr bool
	}{
		{"exact wins over substring", "api", "api", false},
		{"case-insensitive substring", "FRONT", "frontend", false},
		{"missing", "billing", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ResolveRepo(root, 2, tt.query)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveRepo(%q) error = %v, wantErr %v", tt.query, err, tt.wantErr)
			}
			if got.Name != tt.want {
				t.Errorf("ResolveRepo(%q) = %q, want %q", tt.query, got.Name, tt.want)
			}
			if tt.wantErr && !errors.Is(err, errs.ErrNotFound) {
				t.Errorf("error %v should wrap ErrNotFound", err)
			}
		})
	}
}

func TestResolveRepo_Suggestions(t *testing.T) {
	t.Parallel()

	root := resolveTempDir(t)
	makeRepoDirs(t, root, "frontend", "backend")

	_, err := ResolveRepo(root, 2, "frnd")
	var nf *errs.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error = %v, want NotFoundError", err)
	}
	if nf.Hint != "did you mean: frontend" {
		t.Errorf("Hint = %q, want suggestion for frontend", nf.Hint)
	}
}
