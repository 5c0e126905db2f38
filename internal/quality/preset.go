package quality

import (
	"fmt"
	"time"
)

// Detail selects the rendering detail tier of a preset.
type Detail int

const (
	DetailLow Detail = iota
	DetailMedium
	DetailHigh
)

func (d Detail) String() string {
	switch d {
	case DetailLow:
		return "low"
	case DetailMedium:
		return "medium"
	case DetailHigh:
		return "high"
	default:
		return fmt.Sprintf("detail(%d)", int(d))
	}
}

// LineWidth is the base link line width in pixels for this detail tier.
func (d Detail) LineWidth() float64 {
	switch d {
	case DetailHigh:
		return 2.0
	case DetailMedium:
		return 1.5
	default:
		return 1.0
	}
}

// Glow reports whether particles get a radial glow sprite.
func (d Detail) Glow() bool { return d >= DetailMedium }

// AntiAlias reports whether link lines are drawn with smoothing.
func (d Detail) AntiAlias() bool { return d == DetailHigh }

// Preset bundles every performance-affecting parameter. Presets are
// replaced wholesale, never mutated in place: the governor publishes a
// new value on every quality change and readers hold snapshots.
type Preset struct {
	Name                string
	ParticleCount       int
	LinkRadius          float64
	TargetFPS           int
	Detail              Detail
	MaxLinksPerParticle int
}

// FrameBudget returns the per-tick time budget implied by TargetFPS.
func (p Preset) FrameBudget() time.Duration {
	if p.TargetFPS <= 0 {
		return 0
	}
	return time.Second / time.Duration(p.TargetFPS)
}

// WithParticleCount returns a copy with an adjusted particle count.
func (p Preset) WithParticleCount(n int) Preset {
	p.ParticleCount = n
	return p
}

// WithLinkRadius returns a copy with an adjusted link radius.
func (p Preset) WithLinkRadius(r float64) Preset {
	p.LinkRadius = r
	return p
}

func (p Preset) String() string {
	return fmt.Sprintf("%s: %d particles, radius %.0f, %d fps, %s detail",
		p.Name, p.ParticleCount, p.LinkRadius, p.TargetFPS, p.Detail)
}
