package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/webbuild/internal/logfields"
)

// Watcher reports changes anywhere below a set of root directories.
// Directories created after start are added as they appear.
type Watcher struct {
	w *fsnotify.Watcher
}

// NewWatcher starts watching every root and all of their subdirectories.
func NewWatcher(roots ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	for _, root := range roots {
		if err := addDirsRecursive(w, root); err != nil {
			_ = w.Close()
			return nil, err
		}
	}
	return &Watcher{w: w}, nil
}

// Run calls trigger for every relevant event until ctx is done or the
// watcher is closed.
func (wt *Watcher) Run(ctx context.Context, trigger func()) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-wt.w.Events:
			if !ok {
				return nil
			}
			wt.handle(ev, trigger)
		case err, ok := <-wt.w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", logfields.Error(err))
		}
	}
}

func (wt *Watcher) handle(ev fsnotify.Event, trigger func()) {
	if ShouldIgnore(ev.Name) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = addDirsRecursive(wt.w, ev.Name)
		}
	}
	slog.Debug("File change detected", logfields.Path(ev.Name), "op", ev.Op.String())
	trigger()
}

// Close stops the watcher.
func (wt *Watcher) Close() error {
	return wt.w.Close()
}

func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	if _, err := os.Stat(root); err != nil {
		return fmt.Errorf("watch root: %w", err)
	}
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := w.Add(path); err != nil {
				slog.Warn("watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// ShouldIgnore reports whether an event on path should not trigger a rebuild:
// hidden files, editor swap and backup files, and OS metadata files.
func ShouldIgnore(path string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".") {
		return true
	}

	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}

	return base == "Thumbs.db" || base == "4913"
}
