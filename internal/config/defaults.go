package config

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// PathsDefaultApplier fills the fixed directory layout.
type PathsDefaultApplier struct{}

func (p *PathsDefaultApplier) Domain() string { return "paths" }

func (p *PathsDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Paths.Source == "" {
		cfg.Paths.Source = "./src"
	}
	if cfg.Paths.Output == "" {
		cfg.Paths.Output = "./build"
	}
	if cfg.Paths.Template == "" {
		cfg.Paths.Template = "./_template"
	}
	return nil
}

// BuildDefaultApplier handles Build configuration defaults.
type BuildDefaultApplier struct{}

func (b *BuildDefaultApplier) Domain() string { return "build" }

func (b *BuildDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Build.History == "" {
		cfg.Build.History = HistoryGit
		return nil
	}
	// Unknown values are kept as-is so validation can report them.
	if m := NormalizeHistoryMode(string(cfg.Build.History)); m != "" {
		cfg.Build.History = m
	}
	return nil
}

// NotifyDefaultApplier handles notification defaults.
type NotifyDefaultApplier struct{}

func (n *NotifyDefaultApplier) Domain() string { return "notify" }

func (n *NotifyDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Notify.Subject == "" {
		cfg.Notify.Subject = "webbuild.builds"
	}
	return nil
}

// PreviewDefaultApplier handles preview server defaults.
type PreviewDefaultApplier struct{}

func (p *PreviewDefaultApplier) Domain() string { return "preview" }

func (p *PreviewDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Preview.Port == 0 {
		cfg.Preview.Port = 1313
	}
	return nil
}

var defaultAppliers = []DefaultApplier{
	&PathsDefaultApplier{},
	&BuildDefaultApplier{},
	&NotifyDefaultApplier{},
	&PreviewDefaultApplier{},
}

// ApplyDefaults runs every domain applier in order.
func ApplyDefaults(cfg *Config) error {
	for _, a := range defaultAppliers {
		if err := a.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}
