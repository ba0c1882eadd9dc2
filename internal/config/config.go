// Package config provides layered configuration loading for stikie.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values can use the usual
// human-readable form ("250ms", "1m30s").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the complete stikie configuration.
type Config struct {
	// StateDir is where the board state files live.
	StateDir string     `yaml:"state_dir"`
	Remote   RemoteConf `yaml:"remote"`
	Sync     SyncConf   `yaml:"sync"`
}

// RemoteConf configures the remote note store.
type RemoteConf struct {
	// DSN is the Postgres connection string. Empty means local-only
	// mode: notes never leave the state directory.
	DSN string `yaml:"dsn"`
	// BatchSize chunks batch upserts (default 50).
	BatchSize int `yaml:"batch_size"`
}

// SyncConf configures push timing.
type SyncConf struct {
	// Debounce is the coalescing window for content-edit pushes.
	Debounce Duration `yaml:"debounce"`
	// ProbeInterval is how often connectivity is re-checked in watch
	// mode.
	ProbeInterval Duration `yaml:"probe_interval"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		StateDir: defaultStateDir(),
		Remote: RemoteConf{
			BatchSize: 50,
		},
		Sync: SyncConf{
			Debounce:      Duration(500 * time.Millisecond),
			ProbeInterval: Duration(30 * time.Second),
		},
	}
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".stikie"
	}
	return filepath.Join(home, ".stikie")
}

// LoadFromFile reads a config file. Missing files propagate the
// os.IsNotExist error so callers can treat them as empty layers.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// Merge overlays non-zero fields of other onto c.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.StateDir != "" {
		c.StateDir = other.StateDir
	}
	if other.Remote.DSN != "" {
		c.Remote.DSN = other.Remote.DSN
	}
	if other.Remote.BatchSize > 0 {
		c.Remote.BatchSize = other.Remote.BatchSize
	}
	if other.Sync.Debounce > 0 {
		c.Sync.Debounce = other.Sync.Debounce
	}
	if other.Sync.ProbeInterval > 0 {
		c.Sync.ProbeInterval = other.Sync.ProbeInterval
	}
}

// Validate checks the final configuration.
func (c *Config) Validate() error {
	if c.StateDir == "" {
		return fmt.Errorf("state_dir must not be empty")
	}
	if c.Sync.Debounce < 0 {
		return fmt.Errorf("sync.debounce must not be negative")
	}
	return nil
}
