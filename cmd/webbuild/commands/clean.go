package commands

import "git.home.luguber.info/inful/webbuild/internal/sitetree"

// CleanCmd implements the 'clean' command.
type CleanCmd struct{}

func (c *CleanCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	return sitetree.Clean(cfg.Paths.Output)
}
