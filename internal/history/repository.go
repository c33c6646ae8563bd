package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"git.home.luguber.info/inful/webbuild/internal/logfields"
)

var errStop = errors.New("stop iteration")

// Repository resolves timestamps from a git repository opened with go-git.
type Repository struct {
	repo *git.Repository
	root string // absolute, symlink-free worktree root
}

// OpenRepository opens the repository containing dir, searching parent directories.
func OpenRepository(dir string) (*Repository, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository at %s: %w", dir, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("repository at %s has no worktree: %w", dir, err)
	}
	root, err := canonical(wt.Filesystem.Root())
	if err != nil {
		return nil, err
	}
	return &Repository{repo: repo, root: root}, nil
}

// LastModified returns the author date of the newest commit that touched path
// (any file below it, for directories).
func (r *Repository) LastModified(ctx context.Context, path string) string {
	rel, err := r.relative(path)
	if err != nil {
		slog.Debug("Path outside repository", logfields.Path(path), logfields.Error(err))
		return ""
	}

	head, err := r.repo.Head()
	if err != nil {
		return "" // empty repository
	}
	iter, err := r.repo.Log(&git.LogOptions{
		From:       head.Hash(),
		PathFilter: matcher(rel),
	})
	if err != nil {
		slog.Debug("git log failed", logfields.Path(path), logfields.Error(err))
		return ""
	}
	defer iter.Close()

	var stamp string
	err = iter.ForEach(func(c *object.Commit) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		stamp = c.Author.When.Format(Layout)
		return errStop
	})
	if err != nil && !errors.Is(err, errStop) {
		return ""
	}
	return stamp
}

// relative maps path to a slash-separated path inside the worktree ("." for the root).
func (r *Repository) relative(path string) (string, error) {
	abs, err := canonical(path)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(r.root, abs)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%s is outside %s", path, r.root)
	}
	return rel, nil
}

// matcher selects changed files equal to rel or nested below it.
func matcher(rel string) func(string) bool {
	if rel == "." {
		return func(string) bool { return true }
	}
	prefix := rel + "/"
	return func(p string) bool {
		return p == rel || strings.HasPrefix(p, prefix)
	}
}

// canonical returns an absolute path with symlinks resolved where the path exists.
func canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}
