// Package naming turns ticket ids, summaries and free text into git-safe
// branch and directory names.
package naming

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/raphi011/twig/internal/errs"
)

// DefaultTicketPattern matches ids like ABC-123.
const DefaultTicketPattern = `^[A-Z][A-Z0-9]+-[0-9]+$`

var (
	nonAlnumLowerRe = regexp.MustCompile(`[^a-z0-9]+`)
	nonAlnumRe      = regexp.MustCompile(`[^A-Za-z0-9]+`)
	invalidRefRe    = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
	dashRunRe       = regexp.MustCompile(`-{2,}`)
	dotRunRe        = regexp.MustCompile(`\.{2,}`)
)

// InvalidNameError is returned when input sanitizes to nothing.
type InvalidNameError struct {
	Input string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("%q does not contain any characters usable in a branch name", e.Input)
}

func (e *InvalidNameError) Unwrap() error { return errs.ErrInvalidName }

// stripDiacritics removes combining marks: "Crème" -> "Creme".
func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// CleanSummary lower-cases s and reduces it to [a-z0-9] words joined by "-".
func CleanSummary(s string) string {
	s = strings.ToLower(stripDiacritics(s))
	return strings.Trim(nonAlnumLowerRe.ReplaceAllString(s, "-"), "-")
}

// cleanFreeText is CleanSummary without lower-casing.
func cleanFreeText(s string) string {
	s = stripDiacritics(s)
	return strings.Trim(nonAlnumRe.ReplaceAllString(s, "-"), "-")
}

// Sanitize applies git's ref-name rules to a single path component.
// It is idempotent and never returns an empty name without an error.
func Sanitize(name string) (string, error) {
	s := invalidRefRe.ReplaceAllString(name, "-")
	s = collapse(s)
	if strings.HasSuffix(s, ".lock") {
		s = strings.TrimSuffix(s, ".lock") + "-lock"
	}
	s = collapse(s)
	if s == "" {
		return "", &InvalidNameError{Input: name}
	}
	return s, nil
}

func collapse(s string) string {
	s = dashRunRe.ReplaceAllString(s, "-")
	s = dotRunRe.ReplaceAllString(s, ".")
	return strings.Trim(s, "-.")
}

// Compose builds the unsanitized branch name.
// With a ticket id: "<TICKET>-<cleaned summary>", or the id alone when the
// summary cleans to nothing. Without: the case-preserving cleaned free text.
func Compose(ticketID, summary, freeText string) string {
	if ticketID != "" {
		cleaned := CleanSummary(summary)
		if cleaned == "" {
			return ticketID
		}
		return ticketID + "-" + cleaned
	}
	return cleanFreeText(freeText)
}

// Slug sanitizes free text for use as a worktree name.
func Slug(text string) (string, error) {
	name, err := Sanitize(cleanFreeText(text))
	if err != nil {
		return "", &InvalidNameError{Input: text}
	}
	return name, nil
}

// TicketMatcher recognizes ticket ids in user input.
type TicketMatcher struct {
	re *regexp.Regexp
}

// NewTicketMatcher compiles pattern case-insensitively.
// An empty pattern selects DefaultTicketPattern.
func NewTicketMatcher(pattern string) (*TicketMatcher, error) {
	if pattern == "" {
		pattern = DefaultTicketPattern
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid ticket pattern %q: %w", pattern, err)
	}
	return &TicketMatcher{re: re}, nil
}

// Match returns the upper-cased ticket id if input is one.
func (m *TicketMatcher) Match(input string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" || !m.re.MatchString(input) {
		return "", false
	}
	return strings.ToUpper(input), true
}
