package field

import (
	"math"
	"math/rand"

	"github.com/aquilax/go-perlin"
)

// Bounds is the simulation volume. Positions live in [0,Width] x
// [0,Height] x [0,Depth] with the camera looking down +Z.
type Bounds struct {
	Width, Height, Depth float64
}

// DefaultBounds matches the reference wallpaper space.
func DefaultBounds() Bounds {
	return Bounds{Width: 1200, Height: 800, Depth: 1000}
}

// Particle carries the kinematic state of one point in the plexus
// field plus its visual attributes. Pure data, no behavior.
type Particle struct {
	Index      int
	X, Y, Z    float64
	VX, VY, VZ float64

	Size       float64 // base sprite size before depth scaling
	Brightness float64
	PulsePhase float64
	PulseSpeed float64
}

const (
	maxSpeedXY = 30.0
	maxSpeedZ  = 20.0

	noiseScale = 0.004
	noiseRate  = 0.3
)

// Field owns the particle set and advances it each tick. Not
// thread-safe: one loop goroutine is the only writer.
type Field struct {
	Bounds    Bounds
	Particles []Particle

	// Drift is the magnitude of the smooth-noise acceleration term.
	// Zero disables drift entirely, leaving pure linear motion.
	Drift float64

	// NominalDt bounds a single step: dt is clamped to 3x this value
	// so a stall never flings particles outside link range.
	NominalDt float64

	noise *perlin.Perlin
	rng   *rand.Rand
	clock float64
}

// New creates a field of n particles seeded deterministically. The
// same seed always produces the same initial layout and drift.
func New(n int, b Bounds, seed int64) *Field {
	f := &Field{
		Bounds:    b,
		Drift:     18.0,
		NominalDt: 1.0 / 60.0,
		noise:     perlin.NewPerlin(2, 2, 3, seed),
		rng:       rand.New(rand.NewSource(seed)),
	}
	f.Particles = make([]Particle, 0, n)
	for i := 0; i < n; i++ {
		f.Particles = append(f.Particles, f.spawn(i))
	}
	return f
}

func (f *Field) spawn(i int) Particle {
	return Particle{
		Index:      i,
		X:          f.rng.Float64() * f.Bounds.Width,
		Y:          f.rng.Float64() * f.Bounds.Height,
		Z:          f.rng.Float64() * f.Bounds.Depth,
		VX:         (f.rng.Float64()*2 - 1) * 15,
		VY:         (f.rng.Float64()*2 - 1) * 15,
		VZ:         (f.rng.Float64()*2 - 1) * 10,
		Size:       2 + f.rng.Float64()*4,
		Brightness: 0.6 + f.rng.Float64()*0.4,
		PulsePhase: f.rng.Float64() * 2 * math.Pi,
		PulseSpeed: 0.5 + f.rng.Float64(),
	}
}

// Count returns the current particle count.
func (f *Field) Count() int { return len(f.Particles) }

// Advance integrates the field forward by dt seconds. dt <= 0 is a
// no-op. Velocities are perturbed by seeded Perlin noise and particles
// reflect off the volume boundary.
func (f *Field) Advance(dt float64) {
	if dt <= 0 {
		return
	}
	if f.NominalDt > 0 && dt > 3*f.NominalDt {
		dt = 3 * f.NominalDt
	}
	f.clock += dt

	for i := range f.Particles {
		p := &f.Particles[i]

		if f.Drift != 0 {
			t := f.clock * noiseRate
			ax := f.noise.Noise3D(p.X*noiseScale, p.Y*noiseScale, t)
			ay := f.noise.Noise3D(p.Y*noiseScale, p.Z*noiseScale, t+31.7)
			az := f.noise.Noise3D(p.Z*noiseScale, p.X*noiseScale, t+64.2)
			p.VX = clampAbs(p.VX+ax*f.Drift*dt, maxSpeedXY)
			p.VY = clampAbs(p.VY+ay*f.Drift*dt, maxSpeedXY)
			p.VZ = clampAbs(p.VZ+az*f.Drift*dt, maxSpeedZ)
		}

		p.X += p.VX * dt
		p.Y += p.VY * dt
		p.Z += p.VZ * dt

		p.X, p.VX = reflect(p.X, p.VX, f.Bounds.Width)
		p.Y, p.VY = reflect(p.Y, p.VY, f.Bounds.Height)
		p.Z, p.VZ = reflect(p.Z, p.VZ, f.Bounds.Depth)

		p.PulsePhase += p.PulseSpeed * dt
	}
}

// reflect mirrors pos back inside [0,limit] and negates vel on a
// crossing. A single step can overshoot by at most one step's travel,
// which the mirror folds back inside.
func reflect(pos, vel, limit float64) (float64, float64) {
	if pos < 0 {
		return -pos, -vel
	}
	if pos > limit {
		return 2*limit - pos, -vel
	}
	return pos, vel
}

// Resize grows or shrinks the particle set in bulk. Survivors keep
// their state; new particles are spawned from the field's rng stream
// so a given seed still yields a reproducible sequence.
func (f *Field) Resize(n int) {
	if n < 0 {
		n = 0
	}
	switch {
	case n < len(f.Particles):
		f.Particles = f.Particles[:n]
	case n > len(f.Particles):
		for i := len(f.Particles); i < n; i++ {
			f.Particles = append(f.Particles, f.spawn(i))
		}
	}
}

func clampAbs(v, max float64) float64 {
	if v > max {
		return max
	}
	if v < -max {
		return -max
	}
	return v
}
