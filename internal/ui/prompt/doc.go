// Package prompt provides the interactive choices twig asks for.
//
// [New] returns a [Picker] backed by bubbletea when both stdin and stderr are
// terminals, and a numbered line-based fallback otherwise. Every prompt
// returns [errs.ErrCancelled] when the user backs out.
//
// Available prompts:
//   - Select: single selection from a fuzzy-filterable list
//   - MultiSelect: toggle any number of entries
//   - Text: single-line text input
//   - Confirm: yes/no confirmation, defaulting to no
package prompt
