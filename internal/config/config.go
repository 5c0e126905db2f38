// Package config loads, validates and persists the wallpaper
// configuration, and adapts it into a QualityPreset for the engine.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pilively/plexus/internal/quality"
)

const (
	DefaultTargetFPS     = 60
	DefaultParticles     = 200
	DefaultSpeed         = 1.0
	DefaultCameraDist    = 800.0
	DefaultSpaceDepth    = 1000.0
	DefaultQualityPreset = "medium"

	MinFPS = 1
	MaxFPS = 240
)

type Config struct {
	Performance PerformanceConfig `yaml:"performance"`
	Animation   AnimationConfig   `yaml:"animation"`
}

type PerformanceConfig struct {
	TargetFPS          int    `yaml:"target_fps"`
	ParticleCount      int    `yaml:"particle_count"`
	UseGPUAcceleration bool   `yaml:"use_gpu_acceleration"`
	QualityPreset      string `yaml:"quality_preset"`
}

type AnimationConfig struct {
	Speed          float64 `yaml:"animation_speed"`
	CameraDistance float64 `yaml:"camera_distance"`
	SpaceDepth     float64 `yaml:"space_depth"`
	LinkDistance   float64 `yaml:"link_distance"` // 0 = take from preset
	Seed           int64   `yaml:"seed"`
}

func DefaultConfig() *Config {
	return &Config{
		Performance: PerformanceConfig{
			TargetFPS:          DefaultTargetFPS,
			ParticleCount:      DefaultParticles,
			UseGPUAcceleration: true,
			QualityPreset:      DefaultQualityPreset,
		},
		Animation: AnimationConfig{
			Speed:          DefaultSpeed,
			CameraDistance: DefaultCameraDist,
			SpaceDepth:     DefaultSpaceDepth,
		},
	}
}

// DefaultPath is the user-scoped config location, shared with the
// configuration editor tool.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "pilively", "config.yaml"), nil
}

// Load reads a config file, layering it over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ConfigurationError lists every invalid field found during
// validation, so a bad file is reported in one pass instead of one
// error per edit-retry cycle.
type ConfigurationError struct {
	Fields []string
}

func (e *ConfigurationError) Error() string {
	return "config: invalid fields: " + strings.Join(e.Fields, "; ")
}

// Validate checks every bound and collects all violations. A nil
// return means the config can be applied.
func (c *Config) Validate() error {
	var bad []string

	if c.Performance.ParticleCount <= 0 {
		bad = append(bad, fmt.Sprintf("performance.particle_count: must be positive (got %d)", c.Performance.ParticleCount))
	}
	if c.Performance.TargetFPS < MinFPS || c.Performance.TargetFPS > MaxFPS {
		bad = append(bad, fmt.Sprintf("performance.target_fps: must be in [%d,%d] (got %d)", MinFPS, MaxFPS, c.Performance.TargetFPS))
	}
	if c.Performance.QualityPreset != "" {
		if _, ok := Presets[c.Performance.QualityPreset]; !ok {
			bad = append(bad, fmt.Sprintf("performance.quality_preset: unknown preset %q (available: %s)",
				c.Performance.QualityPreset, strings.Join(ListPresets(), ", ")))
		}
	}
	if c.Animation.Speed <= 0 || c.Animation.Speed > 4 {
		bad = append(bad, fmt.Sprintf("animation.animation_speed: must be in (0,4] (got %g)", c.Animation.Speed))
	}
	if c.Animation.CameraDistance <= 0 {
		bad = append(bad, fmt.Sprintf("animation.camera_distance: must be positive (got %g)", c.Animation.CameraDistance))
	}
	if c.Animation.SpaceDepth <= 0 {
		bad = append(bad, fmt.Sprintf("animation.space_depth: must be positive (got %g)", c.Animation.SpaceDepth))
	}
	if c.Animation.LinkDistance < 0 {
		bad = append(bad, fmt.Sprintf("animation.link_distance: must be positive (got %g)", c.Animation.LinkDistance))
	}

	if len(bad) > 0 {
		return &ConfigurationError{Fields: bad}
	}
	return nil
}

// Apply validates the config and adapts it into a QualityPreset. On
// error no preset is produced; callers keep whatever preset was active.
func (c *Config) Apply() (quality.Preset, error) {
	if err := c.Validate(); err != nil {
		return quality.Preset{}, err
	}

	name := c.Performance.QualityPreset
	if name == "" {
		name = DefaultQualityPreset
	}
	p := Presets[name]

	p.ParticleCount = c.Performance.ParticleCount
	p.TargetFPS = c.Performance.TargetFPS
	if c.Animation.LinkDistance > 0 {
		p.LinkRadius = c.Animation.LinkDistance
	}
	return p, nil
}
