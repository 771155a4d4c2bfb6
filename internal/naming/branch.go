package naming

import (
	"fmt"
	"strings"
)

// CommitType is a conventional-commit type.
type CommitType string

const (
	Feat     CommitType = "feat"
	Fix      CommitType = "fix"
	Docs     CommitType = "docs"
	Style    CommitType = "style"
	Refactor CommitType = "refactor"
	Test     CommitType = "test"
	Chore    CommitType = "chore"
	Revert   CommitType = "revert"
	Build    CommitType = "build"
	CI       CommitType = "ci"
	Perf     CommitType = "perf"
)

var emojis = map[CommitType]string{
	Feat:     "✨",
	Fix:      "🐛",
	Docs:     "📝",
	Style:    "💄",
	Refactor: "♻️",
	Test:     "✅",
	Chore:    "🔧",
	Revert:   "⏪",
	Build:    "📦",
	CI:       "👷",
	Perf:     "⚡",
}

// keyword -> type, checked against the first word of a description
var keywords = map[string]CommitType{
	"feat":     Feat,
	"feature":  Feat,
	"add":      Feat,
	"fix":      Fix,
	"bug":      Fix,
	"bugfix":   Fix,
	"hotfix":   Fix,
	"docs":     Docs,
	"doc":      Docs,
	"style":    Style,
	"refactor": Refactor,
	"test":     Test,
	"tests":    Test,
	"chore":    Chore,
	"revert":   Revert,
	"build":    Build,
	"ci":       CI,
	"perf":     Perf,
}

// Emoji returns the gitmoji for t.
func (t CommitType) Emoji() string { return emojis[t] }

// CommitTypes lists the valid types in display order.
func CommitTypes() []CommitType {
	return []CommitType{Feat, Fix, Docs, Style, Refactor, Test, Chore, Revert, Build, CI, Perf}
}

// ParseCommitType validates a --type value.
func ParseCommitType(s string) (CommitType, error) {
	t := CommitType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := emojis[t]; !ok {
		return "", fmt.Errorf("unknown commit type %q (valid: %s)", s, joinTypes())
	}
	return t, nil
}

func joinTypes() string {
	types := CommitTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// InferCommitType picks a type from the leading keyword of text, defaulting to feat.
func InferCommitType(text string) CommitType {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return r == ' ' || r == ':' || r == '(' || r == '-' || r == '_' || r == '/'
	})
	if len(fields) == 0 {
		return Feat
	}
	if t, ok := keywords[fields[0]]; ok {
		return t
	}
	return Feat
}

// BranchSpec is the fully resolved naming input for a new worktree.
type BranchSpec struct {
	RawInput      string
	TicketID      string
	Summary       string
	CommitType    CommitType
	SanitizedName string
}

// NewBranchSpec composes and sanitizes the branch name once.
// A zero commitType is inferred from the summary or raw input.
func NewBranchSpec(rawInput, ticketID, summary string, commitType CommitType) (BranchSpec, error) {
	freeText := rawInput
	if ticketID == "" && summary != "" {
		freeText = summary
	}
	name, err := Sanitize(Compose(ticketID, summary, freeText))
	if err != nil {
		return BranchSpec{}, &InvalidNameError{Input: rawInput}
	}
	if commitType == "" {
		commitType = InferCommitType(freeText)
		if ticketID != "" {
			commitType = InferCommitType(summary)
		}
	}
	return BranchSpec{
		RawInput:      rawInput,
		TicketID:      ticketID,
		Summary:       summary,
		CommitType:    commitType,
		SanitizedName: name,
	}, nil
}

// CommitMessage renders the initial commit for spec.
// The body links the ticket when there is one.
func CommitMessage(spec BranchSpec, linkPrefix string) string {
	var subject string
	if spec.TicketID != "" {
		subject = fmt.Sprintf("%s: %s %s", spec.CommitType, spec.CommitType.Emoji(), spec.TicketID)
		if s := strings.TrimSpace(spec.Summary); s != "" && !strings.EqualFold(s, spec.TicketID) {
			subject += " " + strings.ToLower(s)
		}
	} else {
		text := strings.TrimSpace(spec.Summary)
		if text == "" {
			text = strings.TrimSpace(spec.RawInput)
		}
		subject = fmt.Sprintf("%s: %s %s", spec.CommitType, spec.CommitType.Emoji(), text)
	}

	if spec.TicketID == "" {
		return subject
	}
	return subject + "\n\nTicket: " + linkPrefix + spec.TicketID
}
