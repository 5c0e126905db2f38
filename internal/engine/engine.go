// Package engine runs the wallpaper loop: one goroutine executing
// simulate -> link -> render per tick, feeding measured frame times
// back into the governor.
package engine

import (
	"context"
	"log"
	"time"

	"github.com/charmbracelet/harmonica"

	"github.com/pilively/plexus/internal/field"
	"github.com/pilively/plexus/internal/governor"
	"github.com/pilively/plexus/internal/linker"
	"github.com/pilively/plexus/internal/quality"
	"github.com/pilively/plexus/internal/render"
)

// Stats describes one completed tick.
type Stats struct {
	Frame     int
	Duration  time.Duration
	Particles int
	Links     int
	State     governor.State
}

// Options tunes a loop. The zero value is usable.
type Options struct {
	// Speed multiplies simulated time per tick.
	Speed float64
	// OnTick is called after every tick with its stats (bench and
	// tests hook in here). May be nil.
	OnTick func(Stats)
	// Logf receives per-tick failures. Defaults to log.Printf.
	Logf func(format string, args ...any)
	// Clock is a test hook. Defaults to time.Now.
	Clock func() time.Time
}

// Engine wires field, linker, renderer and governor into a single
// cooperative loop. All simulation state is owned by the loop
// goroutine; the only outside entry points are Reload and the context.
type Engine struct {
	fld *field.Field
	lnk *linker.Linker
	ren render.Renderer
	gov *governor.Governor

	opts   Options
	reload chan quality.Preset

	// radius trails the preset's link radius through a damped spring
	// so a governor step changes the picture gradually instead of
	// popping links in and out on one frame.
	radius    float64
	radiusVel float64
}

func New(f *field.Field, l *linker.Linker, r render.Renderer, g *governor.Governor, opts Options) *Engine {
	if opts.Speed <= 0 {
		opts.Speed = 1
	}
	if opts.Logf == nil {
		opts.Logf = log.Printf
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Engine{
		fld:    f,
		lnk:    l,
		ren:    r,
		gov:    g,
		opts:   opts,
		reload: make(chan quality.Preset, 1),
		radius: g.Preset().LinkRadius,
	}
}

// Reload queues a preset to be applied atomically between ticks. A
// pending unapplied preset is replaced; never blocks.
func (e *Engine) Reload(p quality.Preset) {
	for {
		select {
		case e.reload <- p:
			return
		default:
			select {
			case <-e.reload:
			default:
			}
		}
	}
}

// Run executes ticks until ctx is canceled or the render surface asks
// to close. The in-flight tick always completes before Run returns, so
// teardown never tears a frame.
func (e *Engine) Run(ctx context.Context) error {
	p := e.gov.Preset()
	spring := harmonica.NewSpring(harmonica.FPS(p.TargetFPS), 4.0, 0.8)

	frame := 0
	last := e.opts.Clock().Add(-p.FrameBudget())

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if wc, ok := e.ren.(interface{ ShouldClose() bool }); ok && wc.ShouldClose() {
			return nil
		}

		// Non-blocking poll: a reload lands between ticks or not at all.
		select {
		case np := <-e.reload:
			e.gov.Apply(np)
		default:
		}

		p = e.gov.Preset()
		if e.fld.Count() != p.ParticleCount {
			e.fld.Resize(p.ParticleCount)
		}
		e.lnk.MaxPerParticle = p.MaxLinksPerParticle
		e.lnk.MaxTotal = 4 * p.ParticleCount
		e.radius, e.radiusVel = spring.Update(e.radius, e.radiusVel, p.LinkRadius)

		now := e.opts.Clock()
		dt := now.Sub(last).Seconds() * e.opts.Speed
		last = now

		start := e.opts.Clock()
		links := e.tick(dt, p)
		elapsed := e.opts.Clock().Sub(start)

		p, state := e.gov.Tick(elapsed)
		frame++

		if e.opts.OnTick != nil {
			e.opts.OnTick(Stats{
				Frame:     frame,
				Duration:  elapsed,
				Particles: e.fld.Count(),
				Links:     links,
				State:     state,
			})
		}

		if rest := p.FrameBudget() - elapsed; rest > 0 {
			timer := time.NewTimer(rest)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil
			case <-timer.C:
			}
		}
	}
}

// tick runs one simulate -> link -> render pass. A panic in any stage
// is logged and the tick skipped, holding the previous frame instead
// of taking the whole process down.
func (e *Engine) tick(dt float64, p quality.Preset) (links int) {
	defer func() {
		if r := recover(); r != nil {
			e.opts.Logf("engine: tick skipped after panic: %v", r)
		}
	}()

	e.fld.Advance(dt)
	set := e.lnk.Compute(e.fld.Particles, e.radius)
	if err := e.ren.RenderFrame(e.fld.Particles, set, p); err != nil {
		e.opts.Logf("engine: render: %v", err)
	}
	return len(set)
}
