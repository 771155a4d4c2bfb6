package selection

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileStore_Roundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state", "twig", "last-repo")
	s := NewFileStore(path)

	got, err := s.Load()
	if err != nil || got != "" {
		t.Fatalf("Load() on missing file = (%q, %v), want empty", got, err)
	}

	if err := s.Save("/src/api"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err = s.Load()
	if err != nil || got != "/src/api" {
		t.Errorf("Load() = (%q, %v), want /src/api", got, err)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}
}

func TestFileStore_Corrupt(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "last-repo")
	if err := os.WriteFile(path, []byte("\x00\x01garbage"), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := NewFileStore(path).Load()
	if err != nil || got != "" {
		t.Errorf("Load() on corrupt file = (%q, %v), want empty", got, err)
	}
}

func TestFileStore_FirstLineOnly(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "last-repo")
	if err := os.WriteFile(path, []byte("  /src/web  \nextra\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	got, _ := NewFileStore(path).Load()
	if got != "/src/web" {
		t.Errorf("Load() = %q, want /src/web", got)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/state")
	got, err := DefaultPath()
	if err != nil || got != "/state/twig/last-repo" {
		t.Errorf("DefaultPath() = (%q, %v)", got, err)
	}

	t.Setenv("XDG_STATE_HOME", "")
	t.Setenv("HOME", "/home/me")
	got, err = DefaultPath()
	if err != nil || got != "/home/me/.local/state/twig/last-repo" {
		t.Errorf("DefaultPath() = (%q, %v)", got, err)
	}
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	var s Store = &MemoryStore{}
	if got, _ := s.Load(); got != "" {
		t.Errorf("zero MemoryStore Load() = %q", got)
	}
	_ = s.Save("api")
	if got, _ := s.Load(); got != "api" {
		t.Errorf("Load() = %q, want api", got)
	}
}
