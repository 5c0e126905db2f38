package field

import (
	"math"
	"testing"
)

func TestNewDeterministic(t *testing.T) {
	a := New(50, DefaultBounds(), 42)
	b := New(50, DefaultBounds(), 42)

	for i := range a.Particles {
		if a.Particles[i] != b.Particles[i] {
			t.Fatalf("particle %d differs between same-seed fields", i)
		}
	}

	c := New(50, DefaultBounds(), 43)
	same := 0
	for i := range a.Particles {
		if a.Particles[i].X == c.Particles[i].X {
			same++
		}
	}
	if same == len(a.Particles) {
		t.Fatal("different seeds produced identical layout")
	}
}

func TestSpawnRanges(t *testing.T) {
	b := DefaultBounds()
	f := New(500, b, 7)
	for _, p := range f.Particles {
		if p.X < 0 || p.X > b.Width || p.Y < 0 || p.Y > b.Height || p.Z < 0 || p.Z > b.Depth {
			t.Errorf("particle %d spawned outside bounds: (%g,%g,%g)", p.Index, p.X, p.Y, p.Z)
		}
		if p.Size < 2 || p.Size > 6 {
			t.Errorf("particle %d size %g outside [2,6]", p.Index, p.Size)
		}
		if p.Brightness < 0.6 || p.Brightness > 1.0 {
			t.Errorf("particle %d brightness %g outside [0.6,1.0]", p.Index, p.Brightness)
		}
		if math.Abs(p.VX) > 15 || math.Abs(p.VY) > 15 || math.Abs(p.VZ) > 10 {
			t.Errorf("particle %d velocity (%g,%g,%g) outside spawn range", p.Index, p.VX, p.VY, p.VZ)
		}
	}
}

func TestAdvanceZeroDtIsNoop(t *testing.T) {
	f := New(20, DefaultBounds(), 1)
	before := make([]Particle, len(f.Particles))
	copy(before, f.Particles)

	f.Advance(0)
	f.Advance(-0.5)

	for i := range f.Particles {
		if f.Particles[i] != before[i] {
			t.Fatalf("particle %d changed on non-positive dt", i)
		}
	}
}

// With drift off, advancing N steps of dt must equal pos + v*N*dt.
func TestAdvanceLinearMotion(t *testing.T) {
	f := New(1, Bounds{Width: 1e6, Height: 1e6, Depth: 1e6}, 3)
	f.Drift = 0

	p0 := f.Particles[0]
	const dt = 1.0 / 60.0
	for i := 0; i < 60; i++ {
		f.Advance(dt)
	}

	p := f.Particles[0]
	const tol = 1e-6
	if math.Abs(p.X-(p0.X+p0.VX)) > tol ||
		math.Abs(p.Y-(p0.Y+p0.VY)) > tol ||
		math.Abs(p.Z-(p0.Z+p0.VZ)) > tol {
		t.Fatalf("after 1s: got (%g,%g,%g), want (%g,%g,%g)",
			p.X, p.Y, p.Z, p0.X+p0.VX, p0.Y+p0.VY, p0.Z+p0.VZ)
	}
}

func TestAdvanceClampsLargeDt(t *testing.T) {
	f := New(1, Bounds{Width: 1e6, Height: 1e6, Depth: 1e6}, 3)
	f.Drift = 0

	p0 := f.Particles[0]
	f.Advance(10) // stall: way past 3x nominal

	maxTravel := 3 * f.NominalDt * math.Abs(p0.VX)
	if got := math.Abs(f.Particles[0].X - p0.X); got > maxTravel+1e-9 {
		t.Fatalf("dt not clamped: traveled %g, max %g", got, maxTravel)
	}
}

func TestReflect(t *testing.T) {
	tests := []struct {
		name            string
		pos, vel, limit float64
		wantPos         float64
		wantVel         float64
	}{
		{"inside", 50, 3, 100, 50, 3},
		{"under", -10, -3, 100, 10, 3},
		{"over", 110, 3, 100, 90, -3},
		{"at limit", 100, 3, 100, 100, 3},
		{"at zero", 0, -3, 100, 0, -3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, vel := reflect(tt.pos, tt.vel, tt.limit)
			if pos != tt.wantPos || vel != tt.wantVel {
				t.Errorf("reflect(%g,%g,%g) = (%g,%g), want (%g,%g)",
					tt.pos, tt.vel, tt.limit, pos, vel, tt.wantPos, tt.wantVel)
			}
		})
	}
}

func TestParticlesStayInBounds(t *testing.T) {
	b := Bounds{Width: 200, Height: 200, Depth: 200}
	f := New(100, b, 11)
	for i := 0; i < 2000; i++ {
		f.Advance(1.0 / 60.0)
	}
	for _, p := range f.Particles {
		if p.X < 0 || p.X > b.Width || p.Y < 0 || p.Y > b.Height || p.Z < 0 || p.Z > b.Depth {
			t.Fatalf("particle %d escaped: (%g,%g,%g)", p.Index, p.X, p.Y, p.Z)
		}
	}
}

func TestResize(t *testing.T) {
	f := New(100, DefaultBounds(), 5)

	survivors := make([]Particle, 40)
	copy(survivors, f.Particles[:40])

	f.Resize(40)
	if f.Count() != 40 {
		t.Fatalf("Count() = %d after Resize(40)", f.Count())
	}
	for i := range survivors {
		if f.Particles[i] != survivors[i] {
			t.Fatalf("particle %d mutated by shrink", i)
		}
	}

	f.Resize(60)
	if f.Count() != 60 {
		t.Fatalf("Count() = %d after Resize(60)", f.Count())
	}
	for i := 40; i < 60; i++ {
		if f.Particles[i].Index != i {
			t.Errorf("grown particle %d has Index %d", i, f.Particles[i].Index)
		}
	}

	f.Resize(-5)
	if f.Count() != 0 {
		t.Fatalf("Count() = %d after Resize(-5)", f.Count())
	}
}
