package config

import "strings"

// HistoryMode selects the provider used for last-modified timestamps.
type HistoryMode string

const (
	HistoryGit  HistoryMode = "git"  // in-process go-git lookups
	HistoryExec HistoryMode = "exec" // shell out to the git binary
	HistoryNone HistoryMode = "none" // always empty
)

// NormalizeHistoryMode returns the canonical mode or "" when unknown.
func NormalizeHistoryMode(raw string) HistoryMode {
	switch HistoryMode(strings.ToLower(strings.TrimSpace(raw))) {
	case HistoryGit:
		return HistoryGit
	case HistoryExec:
		return HistoryExec
	case HistoryNone, "off", "disabled":
		return HistoryNone
	default:
		return ""
	}
}
