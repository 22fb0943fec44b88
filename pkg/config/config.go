package config

import (
	"fmt"
	"os"

	"regiontree/pkg/geom"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Tree  TreeConfig  `yaml:"tree"`
	Log   LogConfig   `yaml:"log"`
	Bench BenchConfig `yaml:"bench"`
}

type TreeConfig struct {
	Dimensions  int       `yaml:"dimensions"`
	Lower       []float64 `yaml:"lower"`
	Upper       []float64 `yaml:"upper"`
	MaxNodeSize int       `yaml:"max_node_size"`
	ZOrderBuild bool      `yaml:"zorder_build"` // insert bulk loads in Morton order
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

type BenchConfig struct {
	Entries     int     `yaml:"entries"`
	Queries     int     `yaml:"queries"`
	QueryExtent float64 `yaml:"query_extent"` // half side of a query box, as a fraction of the bounds
	Workers     int     `yaml:"workers"`
	Seed        uint64  `yaml:"seed"`
	MetricsAddr string  `yaml:"metrics_addr"` // e.g. :2112, empty disables /metrics
}

func Load(configPath string) (*Config, error) {
	cfg := &Config{
		Tree: TreeConfig{
			Dimensions:  2,
			MaxNodeSize: 8,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Bench: BenchConfig{
			Entries:     100000,
			Queries:     1000,
			QueryExtent: 0.01,
			Workers:     4,
			Seed:        1,
		},
	}

	if configPath == "" {
		for _, p := range []string{"configs/regiontree.yaml", "regiontree.yaml"} {
			data, err := os.ReadFile(p)
			if err == nil {
				if err := yaml.Unmarshal(data, cfg); err != nil {
					return cfg, err
				}
				applyDefaults(cfg)
				return cfg, nil
			}
		}
		applyDefaults(cfg)
		return cfg, nil // no file found: use defaults
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return cfg, err
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Tree.Dimensions != 3 {
		cfg.Tree.Dimensions = 2
	}
	if len(cfg.Tree.Lower) == 0 {
		cfg.Tree.Lower = make([]float64, cfg.Tree.Dimensions)
	}
	if len(cfg.Tree.Upper) == 0 {
		cfg.Tree.Upper = make([]float64, cfg.Tree.Dimensions)
		for i := range cfg.Tree.Upper {
			cfg.Tree.Upper[i] = 1
		}
	}
	if cfg.Tree.MaxNodeSize <= 0 {
		cfg.Tree.MaxNodeSize = 8
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format != "json" {
		cfg.Log.Format = "text"
	}
	if cfg.Bench.Entries <= 0 {
		cfg.Bench.Entries = 100000
	}
	if cfg.Bench.Queries < 0 {
		cfg.Bench.Queries = 0
	}
	if cfg.Bench.QueryExtent <= 0 || cfg.Bench.QueryExtent > 0.5 {
		cfg.Bench.QueryExtent = 0.01
	}
	if cfg.Bench.Workers <= 0 {
		cfg.Bench.Workers = 4
	}
}

// Bounds turns the configured corners into a box of the configured dimension.
func (tc TreeConfig) Bounds() (geom.Box, error) {
	if len(tc.Lower) != tc.Dimensions || len(tc.Upper) != tc.Dimensions {
		return geom.Box{}, fmt.Errorf("bounds: want %d coordinates per corner, got lower=%d upper=%d",
			tc.Dimensions, len(tc.Lower), len(tc.Upper))
	}
	lower, err := geom.NewPoint(tc.Lower...)
	if err != nil {
		return geom.Box{}, fmt.Errorf("bounds lower: %w", err)
	}
	upper, err := geom.NewPoint(tc.Upper...)
	if err != nil {
		return geom.Box{}, fmt.Errorf("bounds upper: %w", err)
	}
	for i := 0; i < tc.Dimensions; i++ {
		if lower.Coord(i) > upper.Coord(i) {
			return geom.Box{}, fmt.Errorf("bounds: lower %v exceeds upper %v on axis %d", tc.Lower[i], tc.Upper[i], i)
		}
	}
	return geom.NewBox(lower, upper)
}
