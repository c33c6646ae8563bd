package history

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/webbuild/internal/config"
	"git.home.luguber.info/inful/webbuild/internal/logfields"
)

// Layout is the timestamp format shown in listings.
const Layout = "2006-01-02 15:04"

// Provider returns the last-modified timestamp for a source path.
// Implementations never fail: missing history is reported as "".
type Provider interface {
	LastModified(ctx context.Context, path string) string
}

// ProviderFunc adapts a plain function to Provider.
type ProviderFunc func(ctx context.Context, path string) string

func (f ProviderFunc) LastModified(ctx context.Context, path string) string { return f(ctx, path) }

// None is a Provider without history.
type None struct{}

func (None) LastModified(context.Context, string) string { return "" }

// Static serves fixed timestamps keyed by path; unknown paths yield "".
type Static map[string]string

func (s Static) LastModified(_ context.Context, path string) string { return s[path] }

// New builds the provider selected by mode for a source tree rooted at sourceRoot.
// A git mode that cannot open a repository degrades to None.
func New(mode config.HistoryMode, sourceRoot string) Provider {
	switch mode {
	case config.HistoryExec:
		return NewExec("")
	case config.HistoryNone:
		return None{}
	default:
		repo, err := OpenRepository(sourceRoot)
		if err != nil {
			slog.Warn("No git history for source tree; timestamps will be empty",
				logfields.Path(sourceRoot), logfields.Provider(string(mode)), logfields.Error(err))
			return None{}
		}
		return repo
	}
}
