package git

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ErrGitNotFound indicates git is not installed or not in PATH
var ErrGitNotFound = errors.New("git not found: please install git (https://git-scm.com)")

// CheckGit verifies that git is available in PATH
func CheckGit() error {
	if _, err := exec.LookPath("git"); err != nil {
		return ErrGitNotFound
	}
	return nil
}

// Version is a parsed git version.
type Version struct {
	Major, Minor, Patch int
}

// AtLeast reports whether v >= major.minor.
func (v Version) AtLeast(major, minor int) bool {
	if v.Major != major {
		return v.Major > major
	}
	return v.Minor >= minor
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// ParseVersion parses `git --version` output such as
// "git version 2.39.3 (Apple Git-146)" or "git version 2.45.1.windows.1".
func ParseVersion(out string) (Version, error) {
	fields := strings.Fields(out)
	if len(fields) < 3 || fields[0] != "git" || fields[1] != "version" {
		return Version{}, fmt.Errorf("unexpected git version output: %q", strings.TrimSpace(out))
	}
	parts := strings.Split(fields[2], ".")
	var nums [3]int
	for i := 0; i < len(parts) && i < 3; i++ {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			if i == 0 {
				return Version{}, fmt.Errorf("unexpected git version %q", fields[2])
			}
			break
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// GetVersion returns the installed git version.
func GetVersion(ctx context.Context) (Version, error) {
	out, err := outputGit(ctx, "", "--version")
	if err != nil {
		return Version{}, err
	}
	return ParseVersion(string(out))
}

// SupportsWorktreeMove reports whether git has `worktree move` (2.17+).
func SupportsWorktreeMove(ctx context.Context) bool {
	v, err := GetVersion(ctx)
	return err == nil && v.AtLeast(2, 17)
}
