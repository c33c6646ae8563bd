// Package workspace manages the directory a preview server builds into and
// serves from, in ephemeral (timestamped, removed on cleanup) or persistent
// (fixed path, kept across runs) mode.
//
// A workspace holds two trees: the live site that is being served and a
// staging tree the next build writes to. Promote swaps staging into place, so
// a failed build leaves the previous site untouched.
package workspace
