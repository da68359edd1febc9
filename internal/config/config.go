package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ekarst/flowlab/internal/router"
)

const (
	DefaultRows    = 40
	DefaultCols    = 40
	DefaultSpacing = 10.0
	DefaultSeed    = 42
)

// Config gathers everything one route invocation needs: the grid to build
// and the router options to run over it.
type Config struct {
	Terrain string  `yaml:"terrain"`
	Rows    int     `yaml:"rows"`
	Cols    int     `yaml:"cols"`
	Spacing float64 `yaml:"spacing"`
	Seed    int64   `yaml:"seed"`

	Router router.Options `yaml:"router"`
}

func DefaultConfig() *Config {
	return &Config{
		Terrain: "tutorial",
		Rows:    DefaultRows,
		Cols:    DefaultCols,
		Spacing: DefaultSpacing,
		Seed:    DefaultSeed,
		Router:  router.DefaultOptions(),
	}
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := Overlay(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Overlay applies the settings a file names over cfg, leaving everything
// the file omits untouched.
func Overlay(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
