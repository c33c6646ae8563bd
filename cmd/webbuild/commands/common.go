package commands

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/webbuild/internal/config"
	"git.home.luguber.info/inful/webbuild/internal/observability"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"webbuild.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Build the site from the source tree"`
	Clean   CleanCmd   `cmd:"" help:"Remove the output directory"`
	Preview PreviewCmd `cmd:"" help:"Serve the site and rebuild on changes"`
	History HistoryCmd `cmd:"" help:"List past builds from the build ledger"`

	Stdout io.Writer `kong:"-"`
	Stderr io.Writer `kong:"-"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	handler := slog.NewTextHandler(c.errOut(), &slog.HandlerOptions{Level: parseLogLevel(c.Verbose)})
	logger := slog.New(observability.NewContextHandler(handler))
	slog.SetDefault(logger)
	return nil
}

// parseLogLevel honours --verbose first, then WEBBUILD_LOG_LEVEL.
func parseLogLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch strings.ToLower(os.Getenv("WEBBUILD_LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LoadConfig loads the configuration file named by --config.
func (c *CLI) LoadConfig() (*config.Config, error) {
	return config.Load(c.Config)
}

func (c *CLI) out() io.Writer {
	if c.Stdout != nil {
		return c.Stdout
	}
	return os.Stdout
}

func (c *CLI) errOut() io.Writer {
	if c.Stderr != nil {
		return c.Stderr
	}
	return os.Stderr
}
