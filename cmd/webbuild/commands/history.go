package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"git.home.luguber.info/inful/webbuild/internal/buildlog"
	berrors "git.home.luguber.info/inful/webbuild/internal/errors"
	"git.home.luguber.info/inful/webbuild/internal/history"
	"git.home.luguber.info/inful/webbuild/internal/sitetree"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int `short:"n" help:"Number of builds to show (0 for all)" default:"20"`
}

func (h *HistoryCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.State.Database == "" {
		return berrors.ConfigInvalid("state.database", "required to list build history")
	}

	store, err := buildlog.Open(cfg.State.Database)
	if err != nil {
		return berrors.FilesystemError("open", cfg.State.Database, err)
	}
	defer func() { _ = store.Close() }()

	records, err := store.Recent(context.Background(), h.Limit)
	if err != nil {
		return berrors.InternalError("failed to read build ledger", err)
	}

	tw := tabwriter.NewWriter(root.out(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tOUTCOME\tDURATION\tDIRS\tPAGES\tFILES\tSIZE\tBUILD ID")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			r.StartedAt.Local().Format(history.Layout),
			r.Outcome,
			r.Duration,
			r.Directories,
			r.Pages,
			r.Copies,
			sitetree.FormatSize(r.Bytes),
			r.BuildID)
	}
	return tw.Flush()
}
