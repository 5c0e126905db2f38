package config

import (
	"sort"

	"github.com/pilively/plexus/internal/quality"
)

// Presets are the named quality tiers plus hardware profiles tuned per
// Raspberry Pi generation. Values are starting points; the governor
// still adapts them at runtime.
var Presets = map[string]quality.Preset{
	"low": {
		Name:                "low",
		ParticleCount:       120,
		LinkRadius:          140,
		TargetFPS:           30,
		Detail:              quality.DetailLow,
		MaxLinksPerParticle: 6,
	},
	"medium": {
		Name:                "medium",
		ParticleCount:       200,
		LinkRadius:          170,
		TargetFPS:           60,
		Detail:              quality.DetailMedium,
		MaxLinksPerParticle: 8,
	},
	"high": {
		Name:                "high",
		ParticleCount:       400,
		LinkRadius:          200,
		TargetFPS:           60,
		Detail:              quality.DetailHigh,
		MaxLinksPerParticle: 8,
	},

	// Hardware tiers. The 3B+ has no headroom for glow or wide lines;
	// the 5 sustains the full effect at 60fps.
	"pi3": {
		Name:                "pi3",
		ParticleCount:       100,
		LinkRadius:          130,
		TargetFPS:           30,
		Detail:              quality.DetailLow,
		MaxLinksPerParticle: 5,
	},
	"pi4": {
		Name:                "pi4",
		ParticleCount:       220,
		LinkRadius:          170,
		TargetFPS:           45,
		Detail:              quality.DetailMedium,
		MaxLinksPerParticle: 8,
	},
	"pi5": {
		Name:                "pi5",
		ParticleCount:       500,
		LinkRadius:          200,
		TargetFPS:           60,
		Detail:              quality.DetailHigh,
		MaxLinksPerParticle: 8,
	},
}

// GetPreset returns the named preset, or false if unknown.
func GetPreset(name string) (quality.Preset, bool) {
	p, ok := Presets[name]
	return p, ok
}

// ListPresets returns all preset names, sorted.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
