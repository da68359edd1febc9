package config

import "github.com/ekarst/flowlab/internal/router"

func presetBase(terrain, metric string) *Config {
	cfg := DefaultConfig()
	cfg.Terrain = terrain
	cfg.Router.Metric = metric
	return cfg
}

// Presets, keyed by terrain then preset name. Each pins the options the demo
// narrative walks through.
var Presets = map[string]map[string]*Config{
	"tutorial": {
		"steepest": presetBase("tutorial", "d8"),
		"cardinal": presetBase("tutorial", "d4"),
		"random": func() *Config {
			cfg := presetBase("tutorial", "rho8")
			cfg.Router.Seed = 5
			return cfg
		}(),
		"spread": func() *Config {
			cfg := presetBase("tutorial", "quinn")
			return cfg
		}(),
		"focused": func() *Config {
			cfg := presetBase("tutorial", "holmgren")
			cfg.Router.Exponent = 5.0
			return cfg
		}(),
		"angular": presetBase("tutorial", "dinf"),
		"breach": func() *Config {
			cfg := presetBase("tutorial", "d8")
			cfg.Router.DepressionHandler = router.HandlerBreach
			return cfg
		}(),
	},
	"volcano": {
		"crater": func() *Config {
			cfg := presetBase("volcano", "d8")
			cfg.Rows, cfg.Cols = 60, 60
			return cfg
		}(),
		"crater-breach": func() *Config {
			cfg := presetBase("volcano", "d8")
			cfg.Rows, cfg.Cols = 60, 60
			cfg.Router.DepressionHandler = router.HandlerBreach
			return cfg
		}(),
		"dispersed": func() *Config {
			cfg := presetBase("volcano", "freeman")
			cfg.Rows, cfg.Cols = 60, 60
			return cfg
		}(),
	},
	"ridged": {
		"parallel": presetBase("ridged", "d8"),
		"hillslopes": func() *Config {
			cfg := presetBase("ridged", "d8")
			cfg.Router.SeparateHillFlow = true
			cfg.Router.HillMetric = "quinn"
			return cfg
		}(),
	},
}

func GetPreset(terrain, preset string) *Config {
	terrainPresets, ok := Presets[terrain]
	if !ok {
		return nil
	}
	cfg, ok := terrainPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(terrain string) []string {
	terrainPresets, ok := Presets[terrain]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(terrainPresets))
	for name := range terrainPresets {
		names = append(names, name)
	}
	return names
}
