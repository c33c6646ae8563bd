package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/webbuild/internal/logfields"
)

const (
	siteDir    = "site"
	stagingDir = "staging"
)

// Manager handles workspace operations (both temporary and persistent)
type Manager struct {
	baseDir    string
	dir        string
	persistent bool // If true, use dir as given and keep it on Cleanup
}

// NewManager creates a workspace manager with an ephemeral timestamped
// directory below baseDir (os.TempDir() when empty).
func NewManager(baseDir string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Manager{baseDir: baseDir}
}

// NewPersistentManager creates a workspace manager that uses dir as is.
func NewPersistentManager(dir string) *Manager {
	return &Manager{baseDir: filepath.Dir(dir), dir: dir, persistent: true}
}

// Create creates the workspace directory.
func (m *Manager) Create() error {
	if m.persistent {
		if err := os.MkdirAll(m.dir, 0o750); err != nil {
			return fmt.Errorf("failed to create persistent workspace directory: %w", err)
		}
		slog.Info("Using persistent workspace", logfields.Path(m.dir))
		return nil
	}

	pattern := "webbuild-" + time.Now().Format("20060102-150405") + "-*"
	dir, err := os.MkdirTemp(m.baseDir, pattern)
	if err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}
	m.dir = dir
	slog.Info("Created workspace", logfields.Path(dir))
	return nil
}

// Path returns the workspace directory, or "" before Create.
func (m *Manager) Path() string {
	return m.dir
}

// SitePath is the live tree served to clients.
func (m *Manager) SitePath() string {
	return filepath.Join(m.dir, siteDir)
}

// StagingPath is where the next build writes. It must not exist when a build
// starts; Reset removes leftovers from an earlier failed build.
func (m *Manager) StagingPath() string {
	return filepath.Join(m.dir, stagingDir)
}

// Reset removes the staging tree.
func (m *Manager) Reset() error {
	if m.dir == "" {
		return errors.New("workspace not created")
	}
	if err := os.RemoveAll(m.StagingPath()); err != nil {
		return fmt.Errorf("failed to reset staging: %w", err)
	}
	return nil
}

// Promote replaces the live site with the staging tree.
func (m *Manager) Promote() error {
	if m.dir == "" {
		return errors.New("workspace not created")
	}
	if _, err := os.Stat(m.StagingPath()); err != nil {
		return fmt.Errorf("nothing staged: %w", err)
	}
	if err := os.RemoveAll(m.SitePath()); err != nil {
		return fmt.Errorf("failed to remove previous site: %w", err)
	}
	if err := os.Rename(m.StagingPath(), m.SitePath()); err != nil {
		return fmt.Errorf("failed to promote staging: %w", err)
	}
	slog.Debug("Promoted staged site", logfields.Path(m.SitePath()))
	return nil
}

// Cleanup removes an ephemeral workspace. Persistent workspaces are kept.
func (m *Manager) Cleanup() error {
	if m.dir == "" {
		return nil
	}

	if m.persistent {
		slog.Debug("Skipping cleanup for persistent workspace", logfields.Path(m.dir))
		return nil
	}

	if err := os.RemoveAll(m.dir); err != nil {
		return fmt.Errorf("failed to cleanup workspace: %w", err)
	}

	slog.Info("Cleaned up workspace", logfields.Path(m.dir))
	m.dir = ""
	return nil
}
