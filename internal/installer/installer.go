// Package installer installs a fresh worktree's dependencies.
package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/raphi011/twig/internal/cmd"
	"github.com/raphi011/twig/internal/log"
	"github.com/raphi011/twig/internal/shell"
)

// ErrTimeout is returned when installation exceeds its time budget.
var ErrTimeout = errors.New("dependency installation timed out")

// Installer installs dependencies in dir.
type Installer interface {
	Install(ctx context.Context, dir string) error
}

// Plan is a detected install command.
type Plan struct {
	Manifest string
	Name     string
	Args     []string
}

func (p Plan) String() string {
	s := p.Name
	for _, a := range p.Args {
		s += " " + a
	}
	return s
}

// manifest detection order; first hit wins
var detectors = []struct {
	manifest string
	plan     func(dir string) Plan
}{
	{"package.json", nodePlan},
	{"go.mod", fixed("go", "mod", "download")},
	{"Cargo.toml", fixed("cargo", "fetch")},
	{"Gemfile", fixed("bundle", "install")},
	{"composer.json", fixed("composer", "install")},
	{"pyproject.toml", pythonPlan},
	{"requirements.txt", fixed("pip", "install", "-r", "requirements.txt")},
}

func fixed(name string, args ...string) func(string) Plan {
	return func(string) Plan { return Plan{Name: name, Args: args} }
}

func nodePlan(dir string) Plan {
	switch {
	case exists(dir, "pnpm-lock.yaml"):
		return Plan{Name: "pnpm", Args: []string{"install", "--frozen-lockfile"}}
	case exists(dir, "yarn.lock"):
		return Plan{Name: "yarn", Args: []string{"install"}}
	case exists(dir, "bun.lockb"), exists(dir, "bun.lock"):
		return Plan{Name: "bun", Args: []string{"install"}}
	case exists(dir, "package-lock.json"):
		return Plan{Name: "npm", Args: []string{"ci"}}
	default:
		return Plan{Name: "npm", Args: []string{"install"}}
	}
}

func pythonPlan(dir string) Plan {
	switch {
	case exists(dir, "uv.lock"):
		return Plan{Name: "uv", Args: []string{"sync"}}
	case exists(dir, "poetry.lock"):
		return Plan{Name: "poetry", Args: []string{"install"}}
	default:
		return Plan{Name: "pip", Args: []string{"install", "-e", "."}}
	}
}

func exists(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}

// Detect returns the install plan for dir based on its manifest files.
func Detect(dir string) (Plan, bool) {
	for _, d := range detectors {
		if exists(dir, d.manifest) {
			p := d.plan(dir)
			p.Manifest = d.manifest
			return p, true
		}
	}
	return Plan{}, false
}

// Runner is the default Installer. A non-empty Command replaces manifest
// detection and runs through sh -c with {path} expanded.
type Runner struct {
	Command string
	Timeout time.Duration
}

// Install runs the detected or configured command in dir. It is a no-op
// when no manifest is found.
func (r *Runner) Install(ctx context.Context, dir string) error {
	l := log.FromContext(ctx)

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var err error
	if r.Command != "" {
		script := shell.Expand(r.Command, map[string]string{"path": dir})
		l.Printf("Installing dependencies: %s\n", script)
		_, err = cmd.ShellContext(ctx, dir, script)
	} else {
		plan, ok := Detect(dir)
		if !ok {
			l.Debug("no dependency manifest found", "dir", dir)
			return nil
		}
		l.Printf("Installing dependencies (%s): %s\n", plan.Manifest, plan)
		_, err = cmd.OutputContext(ctx, dir, plan.Name, plan.Args...)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
	return err
}
