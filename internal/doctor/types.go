package doctor

// IssueCategory groups issues by type.
type IssueCategory string

const (
	CategoryTools  IssueCategory = "tools"
	CategoryLink   IssueCategory = "link"
	CategoryOrphan IssueCategory = "orphan"
)

// FixAction is what Fix does about an issue.
type FixAction string

const (
	FixNone   FixAction = ""
	FixRepair FixAction = "repair" // git worktree repair <path>
	FixPrune  FixAction = "prune"  // git worktree prune
)

// Issue is one problem found by Run.
type Issue struct {
	Key         string        `json:"key"` // path, or tool name
	Description string        `json:"description"`
	FixAction   FixAction     `json:"fix_action,omitempty"`
	Category    IssueCategory `json:"category"`
	RepoPath    string        `json:"repo_path,omitempty"`
}

// Stats counts what Run looked at.
type Stats struct {
	Repos    int `json:"repos"`
	Healthy  int `json:"healthy"`
	Moved    int `json:"moved"`
	Stale    int `json:"stale"`
	Orphaned int `json:"orphaned"`
}

// Report is the result of Run.
type Report struct {
	GitVersion string  `json:"git_version,omitempty"`
	Stats      Stats   `json:"stats"`
	Issues     []Issue `json:"issues"`
}

// Fixable counts issues that Fix would act on.
func (r Report) Fixable() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.FixAction != FixNone {
			n++
		}
	}
	return n
}

// FixResult is the outcome of one attempted fix.
type FixResult struct {
	Issue Issue
	Err   error
}
