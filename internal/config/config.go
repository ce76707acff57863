// Package config provides configuration loading for mnemo.
// Precedence: defaults < YAML file < environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration.
type Config struct {
	DBPath      string    `yaml:"db_path"`
	RecallLimit int       `yaml:"recall_limit"`
	Sweep       Sweep     `yaml:"sweep"`
	Synthetic   Synthetic `yaml:"synthetic"`
}

// Sweep holds eviction schedule and thresholds.
type Sweep struct {
	Interval           time.Duration `yaml:"interval"`             // periodic sweep cadence
	StaleAfterDays     int           `yaml:"stale_after_days"`     // last access older than this is stale
	MaxImportance      int           `yaml:"max_importance"`       // soft-delete below this importance
	MaxEffectiveness   float64       `yaml:"max_effectiveness"`    // soft-delete below this effectiveness
	SyntheticMaxAccess int           `yaml:"synthetic_max_access"` // hard-delete synthetic below this access count
}

// Synthetic holds the continuity-memory generation policy.
type Synthetic struct {
	TrustThreshold float64 `yaml:"trust_threshold"`
	Probability    float64 `yaml:"probability"`
}

// Default returns the built-in configuration.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DBPath:      filepath.Join(home, ".mnemo", "memory.db"),
		RecallLimit: 10,
		Sweep: Sweep{
			Interval:           24 * time.Hour,
			StaleAfterDays:     365,
			MaxImportance:      3,
			MaxEffectiveness:   0.3,
			SyntheticMaxAccess: 2,
		},
		Synthetic: Synthetic{
			TrustThreshold: 7.0,
			Probability:    0.3,
		},
	}
}

// Load builds the configuration. An empty path skips the file layer;
// a missing file at an explicit path is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if env := os.Getenv("MNEMO_DB"); env != "" {
		cfg.DBPath = env
	}

	return cfg, nil
}
