package config

import (
	"path/filepath"

	berrors "git.home.luguber.info/inful/webbuild/internal/errors"
)

// Validate checks a defaulted configuration for values the builder cannot work with.
func Validate(cfg *Config) error {
	if cfg.Paths.Source == "" {
		return berrors.ConfigInvalid("paths.source", "must not be empty")
	}
	if cfg.Paths.Output == "" {
		return berrors.ConfigInvalid("paths.output", "must not be empty")
	}
	if cfg.Paths.Template == "" {
		return berrors.ConfigInvalid("paths.template", "must not be empty")
	}
	if filepath.Clean(cfg.Paths.Source) == filepath.Clean(cfg.Paths.Output) {
		return berrors.ConfigInvalid("paths.output", "must differ from paths.source")
	}
	if NormalizeHistoryMode(string(cfg.Build.History)) == "" {
		return berrors.ConfigInvalid("build.history", "must be one of git, exec, none")
	}
	if cfg.Preview.Port < 0 || cfg.Preview.Port > 65535 {
		return berrors.ConfigInvalid("preview.port", "must be between 0 and 65535")
	}
	if cfg.Preview.Interval < 0 {
		return berrors.ConfigInvalid("preview.interval", "must not be negative")
	}
	return nil
}
