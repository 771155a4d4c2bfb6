// Package doctor diagnoses the worktrees root and repairs what git can fix
// on its own.
//
// Issues fall into three categories:
//
//   - [CategoryTools]: git is missing or too old for some operations
//   - [CategoryLink]: worktrees moved without git, and registrations whose
//     directory is gone
//   - [CategoryOrphan]: directories under the root that no repository knows
//
// Each [Issue] names the [FixAction] that [Fix] takes for it, if any.
// [Run] never mutates anything.
package doctor
