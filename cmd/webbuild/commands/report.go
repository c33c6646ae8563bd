package commands

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/webbuild/internal/buildlog"
	"git.home.luguber.info/inful/webbuild/internal/config"
	"git.home.luguber.info/inful/webbuild/internal/history"
	"git.home.luguber.info/inful/webbuild/internal/logfields"
	"git.home.luguber.info/inful/webbuild/internal/metrics"
	"git.home.luguber.info/inful/webbuild/internal/notify"
	"git.home.luguber.info/inful/webbuild/internal/sitetree"
)

// reporter records finished builds in the ledger and publishes them.
// Neither sink can fail a build: problems are logged and skipped.
type reporter struct {
	ledger *buildlog.Store
	pub    notify.Publisher
}

func openReporter(cfg *config.Config) *reporter {
	r := &reporter{pub: notify.Noop{}}
	if cfg.State.Database != "" {
		store, err := buildlog.Open(cfg.State.Database)
		if err != nil {
			slog.Warn("Build ledger unavailable", logfields.Path(cfg.State.Database), logfields.Error(err))
		} else {
			r.ledger = store
		}
	}
	pub, err := notify.New(cfg.Notify)
	if err != nil {
		slog.Warn("Build notifications unavailable", logfields.Error(err))
	} else {
		r.pub = pub
	}
	return r
}

func (r *reporter) report(ctx context.Context, output string, res *sitetree.Result, buildErr error) {
	outcome := string(metrics.OutcomeFor(buildErr))
	errText := ""
	if buildErr != nil {
		errText = buildErr.Error()
	}
	// the build context may already be canceled; recording must still happen
	ctx = context.WithoutCancel(ctx)

	if r.ledger != nil {
		rec := buildlog.Record{
			BuildID:     res.BuildID,
			StartedAt:   res.StartedAt,
			Duration:    res.Duration,
			Outcome:     outcome,
			Directories: res.Directories,
			Pages:       res.Pages + res.Markdown,
			Copies:      res.Copies,
			Bytes:       res.Bytes,
			Error:       errText,
		}
		if err := r.ledger.Append(ctx, rec); err != nil {
			slog.Warn("Failed to record build", logfields.BuildID(res.BuildID), logfields.Error(err))
		}
	}

	event := notify.BuildEvent{
		BuildID:     res.BuildID,
		Outcome:     outcome,
		Output:      output,
		StartedAt:   res.StartedAt,
		DurationMS:  res.Duration.Milliseconds(),
		Directories: res.Directories,
		Pages:       res.Pages + res.Markdown,
		Copies:      res.Copies,
		Bytes:       res.Bytes,
		Error:       errText,
	}
	if err := r.pub.Publish(ctx, event); err != nil {
		slog.Warn("Failed to publish build event", logfields.BuildID(res.BuildID), logfields.Error(err))
	}
}

func (r *reporter) Close() {
	if r.ledger != nil {
		if err := r.ledger.Close(); err != nil {
			slog.Warn("Failed to close build ledger", logfields.Error(err))
		}
	}
	r.pub.Close()
}

// siteBuild holds what repeated builds of one configuration share.
type siteBuild struct {
	cfg      *config.Config
	history  history.Provider
	recorder metrics.Recorder
	reporter *reporter
	readonly bool
}

// run performs one full build into output and reports it.
func (s *siteBuild) run(ctx context.Context, output string) (*sitetree.Result, error) {
	b := sitetree.New(sitetree.Options{
		SourceRoot:     s.cfg.Paths.Source,
		OutputRoot:     output,
		TemplateRoot:   s.cfg.Paths.Template,
		History:        s.history,
		Recorder:       s.recorder,
		EscapeNames:    s.cfg.Build.EscapeNames,
		ReadonlySource: s.readonly || s.cfg.Build.ReadonlySource,
		RenderMarkdown: s.cfg.Build.Markdown,
		ResolveLinks:   s.cfg.Build.ResolveLinks,
	})
	res, err := b.Build(ctx)
	if res == nil {
		res = b.Result()
	}
	if s.reporter != nil {
		s.reporter.report(ctx, output, res, err)
	}
	return res, err
}
