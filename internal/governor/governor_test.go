package governor

import (
	"testing"
	"time"

	"github.com/pilively/plexus/internal/quality"
)

func testPreset() quality.Preset {
	return quality.Preset{
		Name:          "test",
		ParticleCount: 200,
		LinkRadius:    170,
		TargetFPS:     60,
		Detail:        quality.DetailMedium,
	}
}

// feed pushes n identical frame durations and returns the final preset.
func feed(g *Governor, d time.Duration, n int) (quality.Preset, State) {
	var p quality.Preset
	var s State
	for i := 0; i < n; i++ {
		p, s = g.Tick(d)
	}
	return p, s
}

func TestSteadyOnTarget(t *testing.T) {
	g := New(testPreset())
	budget := testPreset().FrameBudget()

	p, s := feed(g, budget, 200)
	if s != Steady {
		t.Fatalf("state = %v after 200 on-budget ticks, want steady", s)
	}
	if p.ParticleCount != 200 || p.LinkRadius != 170 {
		t.Fatalf("preset changed while on budget: %d particles, radius %g",
			p.ParticleCount, p.LinkRadius)
	}
}

func TestThrottleAfterSustainedOverload(t *testing.T) {
	g := New(testPreset())
	budget := testPreset().FrameBudget()

	// Window must fill, then the overload must sustain.
	p, s := feed(g, budget*2, DefaultWindow+DefaultSustain)
	if s != Throttling {
		t.Fatalf("state = %v under sustained overload, want throttling", s)
	}
	if p.ParticleCount != 180 {
		t.Errorf("particle count = %d, want 180 (10%% cut)", p.ParticleCount)
	}
	if p.LinkRadius >= 170 {
		t.Errorf("link radius = %g, want < 170", p.LinkRadius)
	}
}

func TestBriefSpikeDoesNotThrottle(t *testing.T) {
	g := New(testPreset())
	budget := testPreset().FrameBudget()

	// A two-frame stutter is absorbed by the rolling average.
	feed(g, budget, DefaultWindow)
	feed(g, budget*2, 2)
	p, _ := feed(g, budget, 2*DefaultWindow)

	if p.ParticleCount != 200 {
		t.Fatalf("particle count = %d after brief spike, want 200", p.ParticleCount)
	}
}

func TestRecoverIsSmallerStep(t *testing.T) {
	g := New(testPreset())
	budget := testPreset().FrameBudget()

	// Throttle once, then wait out the cooldown on fast frames.
	feed(g, budget*2, DefaultWindow+DefaultSustain)
	throttled := g.Preset()

	p, s := feed(g, budget/2, DefaultCooldown+DefaultWindow+DefaultSustain)
	if s != Recovering {
		t.Fatalf("state = %v with sustained headroom, want recovering", s)
	}

	down := 200 - throttled.ParticleCount
	up := p.ParticleCount - throttled.ParticleCount
	if up <= 0 {
		t.Fatal("recovery did not raise particle count")
	}
	if up >= down {
		t.Fatalf("recovery step %d not smaller than throttle step %d", up, down)
	}
}

func TestRecoveryCapsAtBase(t *testing.T) {
	g := New(testPreset())
	budget := testPreset().FrameBudget()

	feed(g, budget*2, DefaultWindow+DefaultSustain)
	// A long stretch of headroom climbs all the way back, never past it.
	p, _ := feed(g, budget/3, 100*(DefaultCooldown+DefaultSustain))

	if p.ParticleCount > 200 {
		t.Fatalf("recovered past base: %d particles", p.ParticleCount)
	}
	if p.LinkRadius > 170 {
		t.Fatalf("recovered past base: radius %g", p.LinkRadius)
	}
	if p.ParticleCount != 200 {
		t.Fatalf("did not fully recover: %d particles", p.ParticleCount)
	}
}

func TestThrottleFloor(t *testing.T) {
	g := New(testPreset())
	budget := testPreset().FrameBudget()

	// Permanent overload bottoms out at the floors, not at zero.
	p, _ := feed(g, budget*4, 100*(DefaultCooldown+DefaultSustain))

	if p.ParticleCount < MinParticles {
		t.Fatalf("throttled below floor: %d particles", p.ParticleCount)
	}
	if p.LinkRadius < MinLinkRadius {
		t.Fatalf("throttled below floor: radius %g", p.LinkRadius)
	}
}

// Alternating overload and headroom must not flap the preset: the
// cooldown admits at most one change per window.
func TestAntiThrash(t *testing.T) {
	g := New(testPreset())
	budget := testPreset().FrameBudget()

	changes := 0
	prev := g.Preset().ParticleCount
	for i := 0; i < 1000; i++ {
		d := budget * 2
		if i%2 == 0 {
			d = budget / 2
		}
		p, _ := g.Tick(d)
		if p.ParticleCount != prev {
			changes++
			prev = p.ParticleCount
		}
	}
	if changes > 1000/DefaultCooldown+1 {
		t.Fatalf("%d preset changes in 1000 alternating ticks", changes)
	}
}

func TestApplyResets(t *testing.T) {
	g := New(testPreset())
	budget := testPreset().FrameBudget()

	feed(g, budget*2, DefaultWindow+DefaultSustain)
	if g.State() != Throttling {
		t.Fatal("setup: expected throttling state")
	}

	next := testPreset()
	next.ParticleCount = 500
	g.Apply(next)

	if g.State() != Steady {
		t.Fatalf("state = %v after Apply, want steady", g.State())
	}
	if got := g.Preset().ParticleCount; got != 500 {
		t.Fatalf("particle count = %d after Apply, want 500", got)
	}

	// New ceiling: recovery may now climb to 500.
	feed(g, budget*2, DefaultWindow+DefaultSustain)
	p, _ := feed(g, budget/3, 100*(DefaultCooldown+DefaultSustain))
	if p.ParticleCount != 500 {
		t.Fatalf("recovered to %d, want new ceiling 500", p.ParticleCount)
	}
}

func TestSampleWindow(t *testing.T) {
	w := newSampleWindow(3)
	if w.full() {
		t.Fatal("empty window reports full")
	}

	w.add(10 * time.Millisecond)
	w.add(20 * time.Millisecond)
	w.add(30 * time.Millisecond)
	if !w.full() {
		t.Fatal("window not full after size samples")
	}
	if got := w.average(); got != 20*time.Millisecond {
		t.Fatalf("average = %v, want 20ms", got)
	}

	// Oldest sample evicted.
	w.add(40 * time.Millisecond)
	if got := w.average(); got != 30*time.Millisecond {
		t.Fatalf("average after eviction = %v, want 30ms", got)
	}

	w.reset()
	if w.full() || w.average() != 0 {
		t.Fatal("reset did not clear window")
	}
}
