// Package config loads bluenotes settings from defaults, an optional YAML
// file, BLUE_* environment variables and command-line flags, in that order
// of increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendVault    = "vault"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

var backends = []string{BackendMemory, BackendFile, BackendVault, BackendSQLite, BackendPostgres}

// Config is the full application configuration.
type Config struct {
	Storage Storage `envPrefix:"STORAGE_" yaml:"storage"`
	Preview Preview `envPrefix:"PREVIEW_" yaml:"preview"`
	Render  Render  `envPrefix:"RENDER_" yaml:"render"`
	Log     Log     `envPrefix:"LOG_" yaml:"log"`

	// File is the optional YAML config path. Env: BLUE_CONFIG.
	File string `env:"CONFIG" yaml:"-"`
}

// Storage selects and locates the key-value backend.
type Storage struct {
	// Backend is one of memory, file, vault, sqlite, postgres.
	// Env: BLUE_STORAGE_BACKEND
	Backend string `env:"BACKEND" yaml:"backend"`

	// Path is the store file for the file and vault backends.
	// Env: BLUE_STORAGE_PATH
	Path string `env:"PATH" yaml:"path"`

	// DSN is the database location for sqlite and postgres.
	// Env: BLUE_STORAGE_DSN
	DSN string `env:"DSN" yaml:"dsn"`

	// Timeout bounds each SQL statement.
	// Env: BLUE_STORAGE_TIMEOUT
	Timeout time.Duration `env:"TIMEOUT" yaml:"timeout"`

	// VaultPassword skips the TUI password prompt. Env only.
	VaultPassword string `env:"VAULT_PASSWORD" yaml:"-"`
}

// Preview configures the local HTML preview server.
type Preview struct {
	Enabled bool   `env:"ENABLED" yaml:"enabled"`
	Address string `env:"ADDRESS" yaml:"address"`
}

// Render configures the terminal markdown preview.
type Render struct {
	Style   string `env:"STYLE" yaml:"style"`
	UseGlow bool   `env:"USE_GLOW" yaml:"use_glow"`
}

// Log configures the log file.
type Log struct {
	Path  string `env:"PATH" yaml:"path"`
	Level string `env:"LEVEL" yaml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		Storage: Storage{
			Backend: BackendFile,
			Path:    filepath.Join(home, ".bluenotes"),
			Timeout: 5 * time.Second,
		},
		Preview: Preview{
			Address: "127.0.0.1:7070",
		},
		Render: Render{
			Style: "auto",
		},
		Log: Log{
			Path:  filepath.Join(home, ".bluenotes.log"),
			Level: "info",
		},
	}
}

// Load merges defaults, the YAML file, the environment and flags. flags may
// be nil; its non-zero fields win. The YAML file path comes from flags or
// BLUE_CONFIG.
func Load(flags *Config) (*Config, error) {
	return newBuilder().
		withDefaults().
		withEnv().
		withFile(flags).
		withFlags(flags).
		build()
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	var errs []error
	if !slices.Contains(backends, c.Storage.Backend) {
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.Storage.Backend))
	}
	switch c.Storage.Backend {
	case BackendFile, BackendVault:
		if c.Storage.Path == "" {
			errs = append(errs, fmt.Errorf("storage path is required for the %s backend", c.Storage.Backend))
		}
	case BackendSQLite, BackendPostgres:
		if c.Storage.DSN == "" {
			errs = append(errs, fmt.Errorf("storage dsn is required for the %s backend", c.Storage.Backend))
		}
	}
	if c.Preview.Enabled && c.Preview.Address == "" {
		errs = append(errs, errors.New("preview address is required when preview is enabled"))
	}
	return errors.Join(errs...)
}

type builder struct {
	layers []*Config
	env    *Config
	err    error
}

func newBuilder() *builder {
	return &builder{layers: make([]*Config, 0, 4)}
}

func (b *builder) withDefaults() *builder {
	b.layers = append(b.layers, Default())
	return b
}

func (b *builder) withEnv() *builder {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "BLUE_"}); err != nil {
		b.err = errors.Join(b.err, fmt.Errorf("error getting env configs: %w", err))
		return b
	}
	b.env = cfg
	return b
}

// withFile must run after withEnv so BLUE_CONFIG is known; the file layer
// sits below env in priority.
func (b *builder) withFile(flags *Config) *builder {
	path := ""
	if b.env != nil {
		path = b.env.File
	}
	if flags != nil && flags.File != "" {
		path = flags.File
	}
	if path != "" {
		cfg, err := parseYAML(path)
		if err != nil {
			b.err = errors.Join(b.err, err)
		} else {
			b.layers = append(b.layers, cfg)
		}
	}
	if b.env != nil {
		b.layers = append(b.layers, b.env)
	}
	return b
}

func (b *builder) withFlags(flags *Config) *builder {
	if flags != nil {
		b.layers = append(b.layers, flags)
	}
	return b
}

func (b *builder) build() (*Config, error) {
	if b.err != nil {
		return nil, fmt.Errorf("error occurred during building config: %w", b.err)
	}
	cfg := new(Config)
	for _, layer := range b.layers {
		if err := mergo.Merge(cfg, layer, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("error merging configs: %w", err)
		}
	}
	return cfg, cfg.Validate()
}

func parseYAML(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("error decoding config file: %w", err)
	}
	return cfg, nil
}
