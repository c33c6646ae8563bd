// Package version holds build metadata stamped in at link time.
package version

import "fmt"

// Set via ldflags, e.g.
// go build -ldflags "-X git.home.luguber.info/inful/webbuild/internal/version.Version=v1.0.0".
var (
	Version   = "unknown"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// String renders the metadata as printed by --version.
func String() string {
	return fmt.Sprintf("webbuild %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
