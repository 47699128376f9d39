// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment is the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

// Store backends.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config is the file-backed configuration.
type Config struct {
	Environment Environment `yaml:"environment"`

	// LogLevel is a slog level name: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	Matrix  MatrixConfig  `yaml:"matrix"`
	Index   IndexConfig   `yaml:"index"`
	Store   StoreConfig   `yaml:"store"`
	Errors  ErrorsConfig  `yaml:"errors"`
	Metrics MetricsConfig `yaml:"metrics"`

	Development *Overrides `yaml:"development,omitempty"`
	Production  *Overrides `yaml:"production,omitempty"`
}

// Overrides holds the settings an environment section may replace.
// Empty fields leave the base value alone.
type Overrides struct {
	LogLevel string         `yaml:"log_level,omitempty"`
	Matrix   *MatrixConfig  `yaml:"matrix,omitempty"`
	Store    *StoreConfig   `yaml:"store,omitempty"`
	Errors   *ErrorsConfig  `yaml:"errors,omitempty"`
	Metrics  *MetricsConfig `yaml:"metrics,omitempty"`
}

// MatrixConfig is the homeserver connection.
type MatrixConfig struct {
	HomeserverURL string `yaml:"homeserver_url"`

	// UserID is the bot account. The access token must belong to it.
	UserID string `yaml:"user_id"`

	// SendRate is outbound events per second; 0 disables limiting.
	SendRate  float64 `yaml:"send_rate"`
	SendBurst int     `yaml:"send_burst"`

	SyncTimeout time.Duration `yaml:"sync_timeout"`
	MaxBackoff  time.Duration `yaml:"max_backoff"`
}

// IndexConfig locates the search index built by timezoner-index.
type IndexConfig struct {
	Path string `yaml:"path"`
}

// StoreConfig selects and sizes the record store. The Postgres
// connection string is a secret and comes from the environment.
type StoreConfig struct {
	Backend string `yaml:"backend"`

	SQLitePath string `yaml:"sqlite_path"`
	PoolSize   int    `yaml:"pool_size"`

	PostgresMaxConns int32 `yaml:"postgres_max_conns"`
}

// ErrorsConfig is where failure reports go.
type ErrorsConfig struct {
	// File receives one JSON line per report. Empty disables.
	File string `yaml:"file"`

	// OwnerRoom receives a notice per report. Empty disables.
	OwnerRoom string `yaml:"owner_room"`
}

// MetricsConfig is the Prometheus endpoint.
type MetricsConfig struct {
	// Listen is the address for /metrics. Empty disables.
	Listen string `yaml:"listen"`
}

// Error is one configuration problem.
type Error struct {
	Field   string
	Problem string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Problem)
}

// Default returns the base configuration a file is loaded over.
func Default() *Config {
	return &Config{
		Environment: Development,
		LogLevel:    "info",
		Matrix: MatrixConfig{
			SendRate:    5,
			SendBurst:   10,
			SyncTimeout: 30 * time.Second,
			MaxBackoff:  30 * time.Second,
		},
		Index: IndexConfig{
			Path: "${TIMEZONER_DATA:-/var/lib/timezoner}/timezones.idx",
		},
		Store: StoreConfig{
			Backend:          BackendSQLite,
			SQLitePath:       "${TIMEZONER_DATA:-/var/lib/timezoner}/timezones.db",
			PostgresMaxConns: 8,
		},
		Errors: ErrorsConfig{
			File: "timezoner_errors.txt",
		},
	}
}

// Load loads the file named by TIMEZONER_CONFIG.
func Load() (*Config, error) {
	path := os.Getenv("TIMEZONER_CONFIG")
	if path == "" {
		return nil, fmt.Errorf("TIMEZONER_CONFIG environment variable not set; " +
			"set it to the path of your timezoner.yaml, or use --config")
	}
	return LoadFile(path)
}

// LoadFile loads path over Default, applies the matching environment
// section, and expands variables. It does not validate.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse is LoadFile on in-memory YAML.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing: %w", err)
	}
	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *Overrides
	switch c.Environment {
	case Development:
		overrides = c.Development
		if overrides == nil {
			overrides = &Overrides{LogLevel: "debug"}
		}
	case Production:
		overrides = c.Production
	}
	if overrides == nil {
		return
	}

	if overrides.LogLevel != "" {
		c.LogLevel = overrides.LogLevel
	}

	if matrix := overrides.Matrix; matrix != nil {
		if matrix.HomeserverURL != "" {
			c.Matrix.HomeserverURL = matrix.HomeserverURL
		}
		if matrix.UserID != "" {
			c.Matrix.UserID = matrix.UserID
		}
		if matrix.SendRate != 0 {
			c.Matrix.SendRate = matrix.SendRate
		}
		if matrix.SendBurst != 0 {
			c.Matrix.SendBurst = matrix.SendBurst
		}
		if matrix.SyncTimeout != 0 {
			c.Matrix.SyncTimeout = matrix.SyncTimeout
		}
		if matrix.MaxBackoff != 0 {
			c.Matrix.MaxBackoff = matrix.MaxBackoff
		}
	}

	if store := overrides.Store; store != nil {
		if store.Backend != "" {
			c.Store.Backend = store.Backend
		}
		if store.SQLitePath != "" {
			c.Store.SQLitePath = store.SQLitePath
		}
		if store.PoolSize != 0 {
			c.Store.PoolSize = store.PoolSize
		}
		if store.PostgresMaxConns != 0 {
			c.Store.PostgresMaxConns = store.PostgresMaxConns
		}
	}

	if errorsConfig := overrides.Errors; errorsConfig != nil {
		if errorsConfig.File != "" {
			c.Errors.File = errorsConfig.File
		}
		if errorsConfig.OwnerRoom != "" {
			c.Errors.OwnerRoom = errorsConfig.OwnerRoom
		}
	}

	if overrides.Metrics != nil && overrides.Metrics.Listen != "" {
		c.Metrics.Listen = overrides.Metrics.Listen
	}
}

func (c *Config) expandVariables() {
	c.Matrix.HomeserverURL = expandVars(c.Matrix.HomeserverURL)
	c.Index.Path = expandVars(c.Index.Path)
	c.Store.SQLitePath = expandVars(c.Store.SQLitePath)
	c.Errors.File = expandVars(c.Errors.File)
	c.Metrics.Listen = expandVars(c.Metrics.Listen)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars replaces ${VAR} and ${VAR:-default} from the environment.
// An unset or empty variable takes the default.
func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	problem := func(field, format string, args ...any) {
		errs = append(errs, &Error{Field: field, Problem: fmt.Sprintf(format, args...)})
	}

	if c.Environment != Development && c.Environment != Production {
		problem("environment", "must be development or production, got %q", c.Environment)
	}
	if _, err := c.SlogLevel(); err != nil {
		problem("log_level", "%v", err)
	}

	if c.Matrix.HomeserverURL == "" {
		problem("matrix.homeserver_url", "is required")
	} else if parsed, err := url.Parse(c.Matrix.HomeserverURL); err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		problem("matrix.homeserver_url", "must be an http or https URL, got %q", c.Matrix.HomeserverURL)
	}
	if !matrixUserID.MatchString(c.Matrix.UserID) {
		problem("matrix.user_id", "must look like @name:server, got %q", c.Matrix.UserID)
	}
	if c.Matrix.SendRate < 0 {
		problem("matrix.send_rate", "must not be negative")
	}
	if c.Matrix.SendBurst < 0 {
		problem("matrix.send_burst", "must not be negative")
	}
	if c.Matrix.SyncTimeout <= 0 {
		problem("matrix.sync_timeout", "must be positive")
	}
	if c.Matrix.MaxBackoff < time.Second {
		problem("matrix.max_backoff", "must be at least 1s")
	}

	if c.Index.Path == "" {
		problem("index.path", "is required")
	}

	switch c.Store.Backend {
	case BackendSQLite:
		if c.Store.SQLitePath == "" {
			problem("store.sqlite_path", "is required for the sqlite backend")
		}
	case BackendPostgres:
		if c.Store.PostgresMaxConns <= 0 {
			problem("store.postgres_max_conns", "must be positive")
		}
	default:
		problem("store.backend", "must be %s or %s, got %q", BackendSQLite, BackendPostgres, c.Store.Backend)
	}
	if c.Store.PoolSize < 0 {
		problem("store.pool_size", "must not be negative")
	}

	if c.Errors.OwnerRoom != "" && !matrixRoomID.MatchString(c.Errors.OwnerRoom) {
		problem("errors.owner_room", "must be a room ID like !id:server, got %q", c.Errors.OwnerRoom)
	}

	return errors.Join(errs...)
}

var (
	matrixUserID = regexp.MustCompile(`^@[^:\s]+:\S+$`)
	matrixRoomID = regexp.MustCompile(`^![^:\s]+:\S+$`)
)

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return level, nil
}
