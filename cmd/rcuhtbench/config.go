package main

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is a durable benchmark scenario loaded from a .toml file (spec.md
// §4.2.6/§4.2.7 parameters a stress harness needs tunable): table sizing,
// reader/writer counts, run duration, and whether to exercise auto-resize.
type Config struct {
	Readers    int           `toml:"readers"`
	Writers    int           `toml:"writers"`
	TableSize  uint64        `toml:"table_size"`
	MinSize    uint64        `toml:"min_size"`
	MaxSize    uint64        `toml:"max_size"`
	AutoResize bool          `toml:"auto_resize"`
	Duration   time.Duration `toml:"duration"`
	ReportPath string        `toml:"report_path"`
	KeySpace   int           `toml:"key_space"`
}

// DefaultConfig returns the scenario rcuhtbench runs when no flags or
// config file override it.
func DefaultConfig() Config {
	return Config{
		Readers:    4,
		Writers:    1,
		TableSize:  16,
		MinSize:    1,
		MaxSize:    1 << 20,
		AutoResize: true,
		Duration:   2 * time.Second,
		KeySpace:   10000,
	}
}

// LoadConfig reads and decodes a TOML scenario file on top of
// DefaultConfig, so a config file only needs to name the fields it wants
// to override.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("rcuhtbench: decoding %s: %w", path, err)
	}
	return cfg, nil
}
