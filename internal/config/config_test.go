package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Terrain != "tutorial" {
		t.Errorf("expected terrain tutorial, got %s", cfg.Terrain)
	}
	if cfg.Rows < 3 || cfg.Cols < 3 {
		t.Error("default grid too small to route")
	}
	if cfg.Router.Metric != "d8" {
		t.Errorf("expected d8 default, got %s", cfg.Router.Metric)
	}
	if !cfg.Router.AccumulateFlow {
		t.Error("accumulation should default on")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Terrain = "volcano"
	cfg.Rows = 25
	cfg.Router.Metric = "holmgren"
	cfg.Router.Exponent = 4.0

	path := filepath.Join(t.TempDir(), "flowlab.yaml")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Terrain != "volcano" || loaded.Rows != 25 {
		t.Errorf("grid settings lost: %+v", loaded)
	}
	if loaded.Router.Metric != "holmgren" || loaded.Router.Exponent != 4.0 {
		t.Errorf("router settings lost: %+v", loaded.Router)
	}
	// untouched values keep their defaults
	if loaded.Cols != DefaultCols {
		t.Errorf("expected default cols, got %d", loaded.Cols)
	}
}

func TestOverlayKeepsOmittedSettings(t *testing.T) {
	cfg := *GetPreset("tutorial", "focused")
	cfg.Rows = 25

	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("cols: 80\nrouter:\n  epsilon: 0.01\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := Overlay(path, &cfg); err != nil {
		t.Fatalf("Overlay: %v", err)
	}

	if cfg.Cols != 80 || cfg.Router.Epsilon != 0.01 {
		t.Errorf("file settings not applied: %+v", cfg)
	}
	// settings the file does not name keep their preset values
	if cfg.Rows != 25 {
		t.Errorf("expected rows 25, got %d", cfg.Rows)
	}
	if cfg.Router.Metric != "holmgren" || cfg.Router.Exponent != 5.0 {
		t.Errorf("preset router settings lost: %+v", cfg.Router)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("tutorial", "focused")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Router.Metric != "holmgren" || cfg.Router.Exponent != 5.0 {
		t.Errorf("unexpected preset contents: %+v", cfg.Router)
	}

	if GetPreset("tutorial", "nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if GetPreset("marsdem", "steepest") != nil {
		t.Error("expected nil for nonexistent terrain")
	}
}

func TestListPresets(t *testing.T) {
	if len(ListPresets("tutorial")) == 0 {
		t.Error("expected presets for tutorial")
	}
	if ListPresets("marsdem") != nil {
		t.Error("expected nil for unknown terrain")
	}
}
