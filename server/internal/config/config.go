package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/launchdash/launchdash/pkg/types"
	"github.com/launchdash/launchdash/server/internal/store"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LAUNCHDASH_"

// Default values for the server configuration.
const (
	DefaultHTTPPort    = 8050
	DefaultLogLevel    = "info"
	DefaultDatasetPath = "spacex_launch_dash.csv"
	DefaultMarkEvery   = 1000.0
	DefaultPingPeriod  = 54 * time.Second
	DefaultSendBuffer  = 16
)

// Config is the full server configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" envPrefix:"SERVER_"`
	Dataset  DatasetConfig  `yaml:"dataset" envPrefix:"DATASET_"`
	Controls ControlsConfig `yaml:"controls" envPrefix:"CONTROLS_"`
	Session  SessionConfig  `yaml:"session" envPrefix:"SESSION_"`
}

// ServerConfig holds process-level settings.
type ServerConfig struct {
	// HTTPPort is the port the REST API, WebSocket sessions and /metrics
	// listen on.
	HTTPPort int `yaml:"http_port" env:"HTTP_PORT"`

	// LogLevel is one of debug | info | warn | error. It is the only field
	// applied on hot reload.
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	// UIDir serves a pre-built UI from this directory when set.
	UIDir string `yaml:"ui_dir" env:"UI_DIR"`
}

// Level returns the parsed log level, or info when it cannot be parsed.
func (s ServerConfig) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// DatasetConfig describes the launch table loaded at startup.
type DatasetConfig struct {
	Path   string `yaml:"path" env:"PATH"`
	Format string `yaml:"format" env:"FORMAT"`
	Table  string `yaml:"table" env:"TABLE"`

	// OutcomeLabels renames outcome classes in the summary chart,
	// e.g. {1: "Landed", 0: "Lost"}.
	OutcomeLabels map[int]string `yaml:"outcome_labels"`
}

// Source converts the dataset settings to a store.Source.
func (d DatasetConfig) Source() store.Source {
	return store.Source{Path: d.Path, Format: d.Format, Table: d.Table}
}

// ControlsConfig shapes the payload range control.
type ControlsConfig struct {
	PayloadMin  float64 `yaml:"payload_min" env:"PAYLOAD_MIN"`
	PayloadMax  float64 `yaml:"payload_max" env:"PAYLOAD_MAX"`
	PayloadStep float64 `yaml:"payload_step" env:"PAYLOAD_STEP"`
	MarkEvery   float64 `yaml:"mark_every" env:"MARK_EVERY"`
}

// Range returns the default slider value, spanning the whole control.
func (c ControlsConfig) Range() types.PayloadRange {
	return types.PayloadRange{Min: c.PayloadMin, Max: c.PayloadMax}
}

// SessionConfig tunes WebSocket sessions.
type SessionConfig struct {
	// PingPeriod is how often the server pings idle clients.
	PingPeriod time.Duration `yaml:"ping_period" env:"PING_PERIOD"`

	// SendBuffer is the per-session outgoing message buffer depth.
	SendBuffer int `yaml:"send_buffer" env:"SEND_BUFFER"`
}

// Load reads and parses the config file at path. An empty path skips the
// file and uses defaults plus environment overrides.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("server config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("server config: parse yaml: %w", err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("server config: parse env: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("server config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort: DefaultHTTPPort,
			LogLevel: DefaultLogLevel,
		},
		Dataset: DatasetConfig{
			Path:   DefaultDatasetPath,
			Format: store.FormatAuto,
			Table:  store.DefaultTable,
		},
		Controls: ControlsConfig{
			PayloadMin:  types.PayloadDomainMin,
			PayloadMax:  types.PayloadDomainMax,
			PayloadStep: types.PayloadStep,
			MarkEvery:   DefaultMarkEvery,
		},
		Session: SessionConfig{
			PingPeriod: DefaultPingPeriod,
			SendBuffer: DefaultSendBuffer,
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", cfg.Server.HTTPPort)
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(cfg.Server.LogLevel)); err != nil {
		return fmt.Errorf("server.log_level %q unknown: want debug|info|warn|error", cfg.Server.LogLevel)
	}

	if cfg.Dataset.Path == "" {
		return fmt.Errorf("dataset.path is required")
	}
	switch cfg.Dataset.Format {
	case store.FormatAuto, store.FormatCSV, store.FormatBrotli, store.FormatSQLite, "":
	default:
		return fmt.Errorf("dataset.format %q unknown: want auto|csv|csv.br|sqlite", cfg.Dataset.Format)
	}
	if cfg.Dataset.Table != "" && !store.ValidTable(cfg.Dataset.Table) {
		return fmt.Errorf("dataset.table %q is not a valid table name", cfg.Dataset.Table)
	}

	c := cfg.Controls
	if c.PayloadMin < 0 {
		return fmt.Errorf("controls.payload_min must not be negative")
	}
	if c.PayloadMax <= c.PayloadMin {
		return fmt.Errorf("controls.payload_max %.0f must exceed payload_min %.0f", c.PayloadMax, c.PayloadMin)
	}
	if c.PayloadStep <= 0 {
		return fmt.Errorf("controls.payload_step must be positive")
	}
	if c.MarkEvery <= 0 {
		return fmt.Errorf("controls.mark_every must be positive")
	}

	if cfg.Session.PingPeriod <= 0 {
		return fmt.Errorf("session.ping_period must be positive")
	}
	if cfg.Session.SendBuffer <= 0 {
		return fmt.Errorf("session.send_buffer must be positive")
	}
	return nil
}
