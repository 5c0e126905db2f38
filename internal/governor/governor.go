// Package governor holds the target frame rate by trading visual
// quality against measured frame time.
//
// The control loop is an explicit three-state machine with hysteresis
// rather than a proportional controller: quality only changes after a
// sustained run of out-of-band averages, and every change is followed
// by a cooldown before the next one. Decrease steps are larger than
// increase steps, so the loop settles instead of hunting between two
// adjacent quality levels.
package governor

import (
	"sync/atomic"
	"time"

	"github.com/pilively/plexus/internal/quality"
)

// State is the governor's control state.
type State int

const (
	// Steady: average frame time within +-10% of target.
	Steady State = iota
	// Throttling: sustained overload, quality being stepped down.
	Throttling
	// Recovering: sustained headroom, quality cautiously stepped up.
	Recovering
)

func (s State) String() string {
	switch s {
	case Steady:
		return "steady"
	case Throttling:
		return "throttling"
	case Recovering:
		return "recovering"
	default:
		return "unknown"
	}
}

const (
	// DefaultWindow is the rolling sample window, in ticks.
	DefaultWindow = 30
	// DefaultSustain is how many consecutive out-of-band ticks are
	// required before any quality change.
	DefaultSustain = 30
	// DefaultCooldown is how many ticks to wait after a change before
	// the next one is allowed.
	DefaultCooldown = 45

	// MinParticles is the floor the governor will never throttle below.
	MinParticles = 40
	// MinLinkRadius is the smallest link radius worth drawing.
	MinLinkRadius = 60
)

// Governor owns the active QualityPreset and the rolling frame-time
// window. Tick is called from the loop goroutine only; Preset and
// Apply may be called from any goroutine (the preset reference is
// swapped atomically, never mutated).
type Governor struct {
	Sustain  int
	Cooldown int

	preset atomic.Pointer[quality.Preset]

	window       *sampleWindow
	state        State
	baseRadius   float64
	maxParticles int

	overRun   int
	underRun  int
	inBandRun int
	cooldown  int
}

// New creates a governor starting from p in the Steady state. The
// preset's particle count and link radius are the ceilings recovery
// will climb back to.
func New(p quality.Preset) *Governor {
	g := &Governor{
		Sustain:      DefaultSustain,
		Cooldown:     DefaultCooldown,
		window:       newSampleWindow(DefaultWindow),
		baseRadius:   p.LinkRadius,
		maxParticles: p.ParticleCount,
	}
	g.preset.Store(&p)
	return g
}

// Preset returns an immutable snapshot of the active preset.
func (g *Governor) Preset() quality.Preset { return *g.preset.Load() }

// State returns the current control state.
func (g *Governor) State() State { return g.state }

// Apply installs a new preset wholesale, e.g. after a config reload.
// All control bookkeeping restarts from Steady.
func (g *Governor) Apply(p quality.Preset) {
	g.preset.Store(&p)
	g.baseRadius = p.LinkRadius
	g.maxParticles = p.ParticleCount
	g.state = Steady
	g.window.reset()
	g.overRun, g.underRun, g.inBandRun = 0, 0, 0
	g.cooldown = 0
}

// Tick records one frame duration and returns the (possibly updated)
// preset snapshot and state. Pure bookkeeping; never blocks.
func (g *Governor) Tick(frame time.Duration) (quality.Preset, State) {
	g.window.add(frame)
	p := g.Preset()
	if !g.window.full() {
		return p, g.state
	}

	avg := g.window.average()
	target := p.FrameBudget()
	band := target / 10

	over := avg > target+band
	under := avg < target*7/10
	inBand := !over && avg >= target-band

	if over {
		g.overRun++
	} else {
		g.overRun = 0
	}
	if under {
		g.underRun++
	} else {
		g.underRun = 0
	}
	if inBand {
		g.inBandRun++
	} else {
		g.inBandRun = 0
	}

	if g.cooldown > 0 {
		g.cooldown--
	} else {
		switch {
		case g.overRun >= g.Sustain:
			g.throttle(p)
			return g.Preset(), g.state
		case g.underRun >= g.Sustain && g.headroom(p):
			g.recover(p)
			return g.Preset(), g.state
		}
	}

	if g.inBandRun >= g.window.size {
		g.state = Steady
	}
	return g.Preset(), g.state
}

func (g *Governor) headroom(p quality.Preset) bool {
	return p.ParticleCount < g.maxParticles || p.LinkRadius < g.baseRadius
}

// throttle drops particle count by 10% and shrinks the link radius by
// 5%, then starts a cooldown so the effect can be observed before the
// next change.
func (g *Governor) throttle(p quality.Preset) {
	n := p.ParticleCount * 9 / 10
	if n < MinParticles {
		n = MinParticles
	}
	r := p.LinkRadius * 0.95
	if r < MinLinkRadius {
		r = MinLinkRadius
	}
	next := p.WithParticleCount(n).WithLinkRadius(r)
	g.preset.Store(&next)
	g.state = Throttling
	g.afterChange()
}

// recover climbs back with a smaller step than throttle takes down:
// asymmetric hysteresis keeps the loop from oscillating around the
// budget edge.
func (g *Governor) recover(p quality.Preset) {
	step := p.ParticleCount / 20
	if step < 1 {
		step = 1
	}
	n := p.ParticleCount + step
	if n > g.maxParticles {
		n = g.maxParticles
	}
	r := p.LinkRadius * 1.02
	if r > g.baseRadius {
		r = g.baseRadius
	}
	next := p.WithParticleCount(n).WithLinkRadius(r)
	g.preset.Store(&next)
	g.state = Recovering
	g.afterChange()
}

func (g *Governor) afterChange() {
	g.cooldown = g.Cooldown
	g.overRun, g.underRun, g.inBandRun = 0, 0, 0
	g.window.reset()
}
