// Package shell expands user-configured command templates safely.
package shell

import (
	"regexp"
	"strings"
)

// Quote escapes a string for safe use in shell commands.
// It wraps the value in single quotes and escapes any embedded single quotes:
//
//	Quote("it's") == `'it'\''s'`
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
}

// placeholderRe matches {key} and {key:raw}.
var placeholderRe = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_-]*)(:raw)?\}`)

// Expand replaces {key} with the shell-quoted value of vars[key] and
// {key:raw} with the value as-is. Unknown placeholders are left untouched.
func Expand(template string, vars map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(template, func(match string) string {
		sub := placeholderRe.FindStringSubmatch(match)
		val, ok := vars[sub[1]]
		if !ok {
			return match
		}
		if sub[2] == ":raw" {
			return val
		}
		return Quote(val)
	})
}
