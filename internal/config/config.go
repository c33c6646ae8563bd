package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	berrors "git.home.luguber.info/inful/webbuild/internal/errors"
)

// DefaultPath is the configuration file looked up when --config is not given.
const DefaultPath = "webbuild.yaml"

// Config represents the application configuration
type Config struct {
	Paths   PathsConfig   `yaml:"paths"`
	Build   BuildConfig   `yaml:"build"`
	Metrics MetricsConfig `yaml:"metrics"`
	State   StateConfig   `yaml:"state"`
	Notify  NotifyConfig  `yaml:"notify"`
	Preview PreviewConfig `yaml:"preview"`
}

// PathsConfig locates the three trees a build works with.
type PathsConfig struct {
	Source   string `yaml:"source"`
	Output   string `yaml:"output"`
	Template string `yaml:"template"`
}

// BuildConfig tunes how the tree builder renders pages.
type BuildConfig struct {
	History        HistoryMode `yaml:"history"`
	EscapeNames    bool        `yaml:"escape_names"`    // HTML-escape names and hrefs in listings
	ReadonlySource bool        `yaml:"readonly_source"` // never create missing index fragments on disk
	Markdown       bool        `yaml:"markdown"`        // render *.p.md fragments to NAME.html
	ResolveLinks   bool        `yaml:"resolve_links"`   // link listing rows to output names
}

// MetricsConfig controls Prometheus output for one-shot builds.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"` // node_exporter textfile target
}

// StateConfig locates the build ledger database.
type StateConfig struct {
	Database string `yaml:"database,omitempty"`
}

// NotifyConfig configures build event publication.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// PreviewConfig configures the preview server.
type PreviewConfig struct {
	Port      int           `yaml:"port"`
	Interval  time.Duration `yaml:"interval,omitempty"`  // periodic full rebuild, 0 disables
	Workspace string        `yaml:"workspace,omitempty"` // persistent workspace; temporary when empty
}

// Load loads configuration from the specified file. A missing DefaultPath is
// not an error: defaults (plus environment overrides) are returned instead.
// Any other missing path is reported.
func Load(configPath string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	cfg := &Config{}
	data, err := os.ReadFile(configPath) // #nosec G304 -- path comes from the CLI flag
	switch {
	case err == nil:
		if err := decode(data, cfg); err != nil {
			return nil, berrors.ConfigLoadFailed(configPath, err)
		}
		slog.Debug("Loaded configuration", "path", configPath)
	case errors.Is(err, os.ErrNotExist) && filepath.Clean(configPath) == DefaultPath:
		slog.Debug("Configuration file not found, using defaults", "path", configPath)
	default:
		return nil, berrors.ConfigLoadFailed(configPath, err)
	}

	applyEnvOverrides(cfg)
	if err := ApplyDefaults(cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode expands environment variables and strictly unmarshals YAML content.
func decode(data []byte, cfg *Config) error {
	expanded := os.ExpandEnv(string(data))
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	_ = ApplyDefaults(cfg)
	return cfg
}
