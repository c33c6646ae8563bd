package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/webbuild/internal/history"
	"git.home.luguber.info/inful/webbuild/internal/logfields"
	"git.home.luguber.info/inful/webbuild/internal/metrics"
	"git.home.luguber.info/inful/webbuild/internal/observability"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct{}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var rec metrics.Recorder = metrics.NoopRecorder{}
	var promRec *metrics.PrometheusRecorder
	if cfg.Metrics.Textfile != "" {
		promRec = metrics.NewPrometheusRecorder(prom.NewRegistry())
		rec = promRec
	}

	rep := openReporter(cfg)
	defer rep.Close()

	sb := &siteBuild{
		cfg:      cfg,
		history:  history.New(cfg.Build.History, cfg.Paths.Source),
		recorder: rec,
		reporter: rep,
	}
	res, buildErr := sb.run(observability.WithTrigger(ctx, "cli"), cfg.Paths.Output)

	if promRec != nil {
		if err := promRec.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			slog.Warn("Failed to write metrics textfile", logfields.Path(cfg.Metrics.Textfile), logfields.Error(err))
		}
	}
	if buildErr != nil {
		return buildErr
	}

	fmt.Fprintf(root.out(), "Built %s: %d directories, %d pages, %d files\n",
		cfg.Paths.Output, res.Directories, res.Pages+res.Markdown, res.Copies)
	return nil
}
