package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tailscale/hujson"
)

func msToDuration(ms int) time.Duration { return time.Duration(ms) * time.Millisecond }

// Scenario is a one-off, hand-edited stress scenario read from a
// .hujson file — commented, trailing-comma-tolerant JSON, for a quick ad
// hoc run an operator is iterating on locally rather than a committed
// .toml config.
type Scenario struct {
	Readers    int    `json:"readers"`
	Writers    int    `json:"writers"`
	TableSize  uint64 `json:"table_size"`
	DurationMS int    `json:"duration_ms"`
	Note       string `json:"note,omitempty"`
}

// LoadScenario reads a HuJSON file, standardizes it to plain JSON (strips
// comments and trailing commas), and decodes it.
func LoadScenario(path string) (Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("rcuhtbench: reading %s: %w", path, err)
	}
	standardized, err := hujson.Standardize(raw)
	if err != nil {
		return Scenario{}, fmt.Errorf("rcuhtbench: standardizing %s: %w", path, err)
	}
	var s Scenario
	if err := json.Unmarshal(standardized, &s); err != nil {
		return Scenario{}, fmt.Errorf("rcuhtbench: decoding %s: %w", path, err)
	}
	return s, nil
}

// toConfig overlays a Scenario onto base, for scenarios that only name a
// few fields.
func (s Scenario) toConfig(base Config) Config {
	cfg := base
	if s.Readers != 0 {
		cfg.Readers = s.Readers
	}
	if s.Writers != 0 {
		cfg.Writers = s.Writers
	}
	if s.TableSize != 0 {
		cfg.TableSize = s.TableSize
	}
	if s.DurationMS != 0 {
		cfg.Duration = msToDuration(s.DurationMS)
	}
	return cfg
}
