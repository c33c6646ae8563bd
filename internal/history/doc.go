// Package history answers "when was this path last changed" for directory
// listings. The answer is the author date of the newest commit touching the
// path, formatted as YYYY-MM-DD HH:MM, or "" when no history is available.
//
// Providers:
//   - Repository: in-process lookups through go-git (default)
//   - Exec: shells out to the git binary, matching `git log -1`
//   - None: always empty
package history
