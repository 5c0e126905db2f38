package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidateCollectsAllViolations(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Performance.ParticleCount = -5
	cfg.Performance.TargetFPS = 500
	cfg.Performance.QualityPreset = "ultra"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}

	var cerr *ConfigurationError
	if !errors.As(err, &cerr) {
		t.Fatalf("error type %T, want *ConfigurationError", err)
	}
	if len(cerr.Fields) != 3 {
		t.Fatalf("reported %d invalid fields, want 3: %v", len(cerr.Fields), cerr.Fields)
	}

	msg := err.Error()
	for _, want := range []string{"particle_count", "target_fps", "quality_preset"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error message missing %q: %s", want, msg)
		}
	}
}

func TestValidateBounds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"fps at min", func(c *Config) { c.Performance.TargetFPS = MinFPS }, true},
		{"fps at max", func(c *Config) { c.Performance.TargetFPS = MaxFPS }, true},
		{"fps zero", func(c *Config) { c.Performance.TargetFPS = 0 }, false},
		{"speed at limit", func(c *Config) { c.Animation.Speed = 4 }, true},
		{"speed over", func(c *Config) { c.Animation.Speed = 4.1 }, false},
		{"speed zero", func(c *Config) { c.Animation.Speed = 0 }, false},
		{"empty preset name", func(c *Config) { c.Performance.QualityPreset = "" }, true},
		{"negative link distance", func(c *Config) { c.Animation.LinkDistance = -1 }, false},
		{"negative depth", func(c *Config) { c.Animation.SpaceDepth = -100 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestApply(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Performance.QualityPreset = "high"
	cfg.Performance.ParticleCount = 333
	cfg.Performance.TargetFPS = 48
	cfg.Animation.LinkDistance = 222

	p, err := cfg.Apply()
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "high" {
		t.Errorf("preset name = %q, want high", p.Name)
	}
	if p.ParticleCount != 333 {
		t.Errorf("particle count = %d, want config override 333", p.ParticleCount)
	}
	if p.TargetFPS != 48 {
		t.Errorf("target fps = %d, want config override 48", p.TargetFPS)
	}
	if p.LinkRadius != 222 {
		t.Errorf("link radius = %g, want config override 222", p.LinkRadius)
	}
}

func TestApplyZeroLinkDistanceUsesPreset(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Performance.QualityPreset = "medium"

	p, err := cfg.Apply()
	if err != nil {
		t.Fatal(err)
	}
	if p.LinkRadius != Presets["medium"].LinkRadius {
		t.Fatalf("link radius = %g, want preset default %g", p.LinkRadius, Presets["medium"].LinkRadius)
	}
}

func TestApplyRejectsInvalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Performance.ParticleCount = 0
	if _, err := cfg.Apply(); err == nil {
		t.Fatal("Apply accepted an invalid config")
	}
}

func TestLoadLayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
performance:
  particle_count: 64
  quality_preset: pi4
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Performance.ParticleCount != 64 {
		t.Errorf("particle_count = %d, want 64 from file", cfg.Performance.ParticleCount)
	}
	if cfg.Performance.QualityPreset != "pi4" {
		t.Errorf("quality_preset = %q, want pi4 from file", cfg.Performance.QualityPreset)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Performance.TargetFPS != DefaultTargetFPS {
		t.Errorf("target_fps = %d, want default %d", cfg.Performance.TargetFPS, DefaultTargetFPS)
	}
	if cfg.Animation.Speed != DefaultSpeed {
		t.Errorf("animation_speed = %g, want default %g", cfg.Animation.Speed, DefaultSpeed)
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{not yaml::["), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted malformed yaml")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Performance.ParticleCount = 77
	cfg.Animation.Seed = 12345

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if *got != *cfg {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}
}

func TestPresets(t *testing.T) {
	for _, name := range []string{"low", "medium", "high", "pi3", "pi4", "pi5"} {
		p, ok := GetPreset(name)
		if !ok {
			t.Errorf("preset %q missing", name)
			continue
		}
		if p.Name != name {
			t.Errorf("preset %q carries name %q", name, p.Name)
		}
		if p.ParticleCount <= 0 || p.LinkRadius <= 0 || p.TargetFPS <= 0 {
			t.Errorf("preset %q has zero fields: %+v", name, p)
		}
	}

	if _, ok := GetPreset("ultra"); ok {
		t.Error("unknown preset name resolved")
	}

	names := ListPresets()
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("ListPresets not sorted: %v", names)
		}
	}
}
