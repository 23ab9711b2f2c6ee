// Package config loads the sitebuilder configuration from YAML with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/registry"
)

// Config represents the application configuration.
type Config struct {
	Server  ServerConfig            `yaml:"server"`
	Storage StorageConfig           `yaml:"storage"`
	Publish PublishConfig           `yaml:"publish"`
	Logging LoggingConfig           `yaml:"logging"`
	Layouts map[string]LayoutConfig `yaml:"layouts,omitempty"`
}

// ServerConfig configures the editor HTTP server. Durations are Go duration
// strings ("15s", "1m").
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ReadTimeout     string `yaml:"read_timeout,omitempty"`
	WriteTimeout    string `yaml:"write_timeout,omitempty"`
	ShutdownTimeout string `yaml:"shutdown_timeout,omitempty"`
}

// StorageConfig configures the SQLite page store.
type StorageConfig struct {
	Path string `yaml:"path"`
	// RevisionRetention bounds how long saved page revisions are kept before
	// the pruning job removes them. Empty disables pruning.
	RevisionRetention string `yaml:"revision_retention,omitempty"`
	PruneInterval     string `yaml:"prune_interval,omitempty"`
}

// PublishConfig configures the optional NATS publisher for save events.
// Downstream renderers subscribe to rebuild published pages.
type PublishConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject"`
}

// Enabled reports whether a NATS publisher should be wired.
func (p PublishConfig) Enabled() bool {
	return p.NATSURL != ""
}

// LoggingConfig configures slog output.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// LayoutConfig declares one page layout's section policy.
type LayoutConfig struct {
	Required []string `yaml:"required"`
	Optional []string `yaml:"optional"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     "15s",
			WriteTimeout:    "15s",
			ShutdownTimeout: "10s",
		},
		Storage: StorageConfig{
			Path:              "sitebuilder.db",
			RevisionRetention: "720h",
			PruneInterval:     "1h",
		},
		Publish: PublishConfig{
			Subject: "site.page.saved",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a config file, applies defaults and env overrides, and
// validates the result. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- path comes from the CLI flag
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to read config file").
					WithContext("path", path).Build()
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to parse config file").
				WithContext("path", path).Build()
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies SITEBUILDER_* environment variables on top of the
// file values. Only scalar knobs are overridable this way.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SITEBUILDER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("SITEBUILDER_DB_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("SITEBUILDER_NATS_URL"); v != "" {
		cfg.Publish.NATSURL = v
	}
	if v := os.Getenv("SITEBUILDER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SITEBUILDER_REVISION_RETENTION"); v != "" {
		cfg.Storage.RevisionRetention = v
	}
}

// Validate checks field and cross-field constraints.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return ferrors.ConfigError("server.addr must not be empty").Build()
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return ferrors.ConfigError("logging.level must be one of debug, info, warn, error").
			WithContext("level", c.Logging.Level).Build()
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return ferrors.ConfigError("logging.format must be text or json").
			WithContext("format", c.Logging.Format).Build()
	}
	for field, v := range map[string]string{
		"server.read_timeout":        c.Server.ReadTimeout,
		"server.write_timeout":       c.Server.WriteTimeout,
		"server.shutdown_timeout":    c.Server.ShutdownTimeout,
		"storage.revision_retention": c.Storage.RevisionRetention,
		"storage.prune_interval":     c.Storage.PruneInterval,
	} {
		if v == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryConfig, "invalid duration").
				WithContext("field", field).
				WithContext("value", v).Build()
		}
	}
	for name, lc := range c.Layouts {
		for _, t := range append(append([]string(nil), lc.Required...), lc.Optional...) {
			if !registry.Known(registry.SectionType(t)) {
				return ferrors.ConfigError("layout references unknown section type").
					WithContext("layout", name).
					WithContext("type", t).Build()
			}
		}
	}
	return nil
}

// Duration parses a duration field that Validate has already checked,
// falling back to def when the field is empty.
func Duration(v string, def time.Duration) time.Duration {
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// BuildLayouts merges the configured layouts over the built-in defaults.
func (c *Config) BuildLayouts() map[string]*registry.Layout {
	layouts := registry.DefaultLayouts()
	for name, lc := range c.Layouts {
		layout := &registry.Layout{Name: name}
		for _, t := range lc.Required {
			layout.Required = append(layout.Required, registry.SectionType(t))
		}
		for _, t := range lc.Optional {
			layout.Optional = append(layout.Optional, registry.SectionType(t))
		}
		layouts[name] = layout
	}
	return layouts
}

// WriteExample writes a commented starter configuration.
func WriteExample(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return ferrors.ConfigError("config file already exists").
				WithContext("path", path).Build()
		}
	}
	return os.WriteFile(path, []byte(exampleConfig), 0o644)
}

const exampleConfig = `# sitebuilder configuration
server:
  addr: ":8080"

storage:
  path: "sitebuilder.db"
  revision_retention: 720h
  prune_interval: 1h

publish:
  # nats_url: "nats://localhost:4222"
  subject: "site.page.saved"

logging:
  level: info
  format: text

# layouts override or extend the built-in page archetypes
# layouts:
#   landing:
#     required: [hero]
#     optional: [text, features, faq, richText, cta]
`

// String renders a one-line summary for startup logging.
func (c *Config) String() string {
	return fmt.Sprintf("addr=%s db=%s nats=%t layouts=%d",
		c.Server.Addr, c.Storage.Path, c.Publish.Enabled(), len(c.Layouts))
}
