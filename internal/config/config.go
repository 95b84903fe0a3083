// Package config provides unified configuration loading for family-tree.
// It supports loading from YAML files and environment variables.
package config

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/rcliao/family-tree/internal/generate"
	"github.com/rcliao/family-tree/internal/model"
	"github.com/rcliao/family-tree/internal/refdata"
)

// EnvPrefix prefixes every environment override, e.g. FAMILY_TREE_SEED.
const EnvPrefix = "FAMILY_TREE_"

// DefaultFile is read from the working directory when no config path is
// given and it exists.
const DefaultFile = "family-tree.yaml"

// Config contains all family-tree settings.
type Config struct {
	// Seed drives every random draw. 0 picks a fresh seed per run.
	Seed int64 `json:"seed" yaml:"seed" env:"SEED"`

	// Policy selects the generation variant.
	Policy generate.Policy `json:"policy" yaml:"policy" envPrefix:"POLICY_"`

	// Founders is the couple the tree grows from. Individual fields can be
	// overridden with FAMILY_TREE_FOUNDER_<index>_<FIELD>.
	Founders []generate.Founder `json:"founders" yaml:"founders" envPrefix:"FOUNDER_"`

	// Data locates the reference tables.
	Data DataConfig `json:"data" yaml:"data" envPrefix:"DATA_"`

	// Logging contains settings for operational logging.
	Logging LoggingConfig `json:"logging" yaml:"logging" envPrefix:"LOG_"`
}

// DataConfig locates the reference tables. When DB is set the tables are
// read from the SQLite cache instead of the CSV directory.
type DataConfig struct {
	Dir string `json:"dir" yaml:"dir" env:"DIR"`
	DB  string `json:"db,omitempty" yaml:"db,omitempty" env:"DB"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	Level string `json:"level" yaml:"level" env:"LEVEL"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	founders := generate.DefaultFounders()
	return &Config{
		Policy:   generate.DefaultPolicy(),
		Founders: founders[:],
		Data:     DataConfig{Dir: "."},
		Logging:  LoggingConfig{Level: "info"},
	}
}

// Load builds the configuration: defaults -> YAML file -> environment.
// path may be empty, in which case $FAMILY_TREE_CONFIG and then
// ./family-tree.yaml are tried.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		cfg = fileCfg
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a specific YAML file on top of
// the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with FAMILY_TREE_* environment variables. Unset
// variables leave the current values alone.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := c.Policy.Validate(); err != nil {
		return err
	}

	if len(c.Founders) != 2 {
		return fmt.Errorf("founders must list exactly 2 people, got %d", len(c.Founders))
	}
	for i, f := range c.Founders {
		if f.Gender != "" && !model.ValidGenders[f.Gender] {
			return fmt.Errorf("founder %d: invalid gender %q (valid: male, female)", i+1, f.Gender)
		}
		if f.YearBorn < refdata.MinYear || f.YearBorn > refdata.MaxYear {
			return fmt.Errorf("founder %d: year_born must be within %d-%d, got %d", i+1, refdata.MinYear, refdata.MaxYear, f.YearBorn)
		}
	}

	if c.Data.Dir == "" && c.Data.DB == "" {
		return fmt.Errorf("data.dir or data.db is required")
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// ResolveSeed returns the configured seed, drawing one from crypto/rand
// when it is 0.
func (c *Config) ResolveSeed() (int64, error) {
	if c.Seed != 0 {
		return c.Seed, nil
	}
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
