package history

import (
	"context"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/webbuild/internal/logfields"
)

// Exec runs `git log -1` for every lookup.
type Exec struct {
	binary string
}

// NewExec returns an Exec provider using binary (default "git").
func NewExec(binary string) *Exec {
	if binary == "" {
		binary = "git"
	}
	return &Exec{binary: binary}
}

func (e *Exec) LastModified(ctx context.Context, path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return ""
	}
	// #nosec G204 -- fixed argument vector, path is passed after "--"
	cmd := exec.CommandContext(ctx, e.binary, "log", "-1", "--format=%ad", "--date=format:%Y-%m-%d %H:%M", "--", abs)
	cmd.Dir = filepath.Dir(abs)
	out, err := cmd.Output()
	if err != nil {
		slog.Debug("git log command failed", logfields.Path(path), logfields.Error(err))
		return ""
	}
	return strings.TrimSpace(string(out))
}
