package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/chazu/lath/pkg/plan"
)

// Config is the application configuration, loaded from lath.yaml next to
// the executable. Every field has a working default; a missing file is
// not an error.
type Config struct {
	// Kernel selects the geometry backend: "sdfx" or "manifold".
	Kernel string `yaml:"kernel"`
	// MeshCells is the sdfx marching-cubes resolution.
	MeshCells int `yaml:"mesh_cells"`
	// JoinStrategy is the default junction strategy: automatic, butt, miter.
	JoinStrategy string `yaml:"join_strategy"`
	// Tolerance is the endpoint matching distance.
	Tolerance float64 `yaml:"tolerance"`
	// OverlapMargin is the extra junction extension for union stability.
	OverlapMargin float64 `yaml:"overlap_margin"`
	// CutterDepthFactor oversizes door cutters across the wall.
	CutterDepthFactor float64 `yaml:"cutter_depth_factor"`
	// RebuildDelayMillis is the debounce window for edit-triggered rebuilds.
	RebuildDelayMillis int `yaml:"rebuild_delay_millis"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		Kernel:             "sdfx",
		MeshCells:          128,
		JoinStrategy:       "automatic",
		Tolerance:          plan.DefaultTolerance,
		OverlapMargin:      plan.DefaultOverlapMargin,
		CutterDepthFactor:  1.2,
		RebuildDelayMillis: 150,
	}
}

// LoadConfig reads the config file at path, applying defaults for any
// missing field. A missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Kernel {
	case "sdfx", "manifold":
	default:
		return fmt.Errorf("unknown kernel %q, expected sdfx or manifold", c.Kernel)
	}
	if _, err := plan.ParseStrategy(c.JoinStrategy); err != nil {
		return err
	}
	if c.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive, got %v", c.Tolerance)
	}
	if c.OverlapMargin <= 0 {
		return fmt.Errorf("overlap_margin must be positive, got %v", c.OverlapMargin)
	}
	if c.CutterDepthFactor <= 1 {
		return fmt.Errorf("cutter_depth_factor must exceed 1, got %v", c.CutterDepthFactor)
	}
	return nil
}
