// Package linker computes the plexus link set: the unordered particle
// pairs close enough to be drawn as a fading line.
//
// Below GridThreshold particles a direct pairwise sweep is cheapest.
// Above it the linker bins particles into a uniform grid with cells of
// edge length radius, so each particle only checks its own and the 26
// neighboring cells. Output is identical either way; only enumeration
// order differs, and callers must treat the result as an unordered set.
package linker

import (
	"math"

	"github.com/pilively/plexus/internal/field"
)

// Link is a transient pairing of two particle indices (A < B) with a
// render weight in [0,1], inverse to distance. Links never survive a
// tick.
type Link struct {
	A, B   int
	Weight float64
}

// DefaultGridThreshold is the particle count above which the spatial
// grid beats the naive sweep.
const DefaultGridThreshold = 300

// Linker computes link sets. The zero value is not usable; call New.
type Linker struct {
	// GridThreshold switches between the pairwise sweep and the grid.
	GridThreshold int

	// MaxPerParticle caps links per particle; 0 means unlimited.
	MaxPerParticle int

	// MaxTotal caps the whole link set; 0 means unlimited. Keeps a
	// pathological clump from turning one tick into a fill-rate stall.
	MaxTotal int

	links  []Link
	counts []int
	cells  map[int64][]int
}

func New() *Linker {
	return &Linker{
		GridThreshold: DefaultGridThreshold,
		cells:         make(map[int64][]int),
	}
}

// Compute returns all links between particles closer than radius.
// The returned slice is reused across calls; callers must not retain
// it past the next Compute.
func (l *Linker) Compute(particles []field.Particle, radius float64) []Link {
	l.links = l.links[:0]
	if radius <= 0 || len(particles) < 2 {
		return l.links
	}

	if cap(l.counts) < len(particles) {
		l.counts = make([]int, len(particles))
	}
	l.counts = l.counts[:len(particles)]
	for i := range l.counts {
		l.counts[i] = 0
	}

	if len(particles) <= l.GridThreshold {
		l.sweep(particles, radius)
	} else {
		l.gridSweep(particles, radius)
	}
	return l.links
}

func (l *Linker) sweep(particles []field.Particle, radius float64) {
	for i := range particles {
		for j := i + 1; j < len(particles); j++ {
			l.tryLink(particles, i, j, radius)
		}
	}
}

// cellKey packs three non-negative cell coordinates into one map key.
// Positions are bounded, so 20 bits per axis is ample.
func cellKey(cx, cy, cz int) int64 {
	return int64(cx)<<40 | int64(cy)<<20 | int64(cz)
}

func (l *Linker) gridSweep(particles []field.Particle, radius float64) {
	for k := range l.cells {
		delete(l.cells, k)
	}
	for i, p := range particles {
		key := cellKey(int(p.X/radius), int(p.Y/radius), int(p.Z/radius))
		l.cells[key] = append(l.cells[key], i)
	}

	for i, p := range particles {
		cx, cy, cz := int(p.X/radius), int(p.Y/radius), int(p.Z/radius)
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for dz := -1; dz <= 1; dz++ {
					nx, ny, nz := cx+dx, cy+dy, cz+dz
					if nx < 0 || ny < 0 || nz < 0 {
						continue
					}
					for _, j := range l.cells[cellKey(nx, ny, nz)] {
						if j > i {
							l.tryLink(particles, i, j, radius)
						}
					}
				}
			}
		}
	}
}

func (l *Linker) tryLink(particles []field.Particle, i, j int, radius float64) {
	if l.MaxTotal > 0 && len(l.links) >= l.MaxTotal {
		return
	}
	if l.MaxPerParticle > 0 &&
		(l.counts[i] >= l.MaxPerParticle || l.counts[j] >= l.MaxPerParticle) {
		return
	}
	a, b := &particles[i], &particles[j]
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	d2 := dx*dx + dy*dy + dz*dz
	if d2 > radius*radius {
		return
	}
	w := 1 - math.Sqrt(d2)/radius
	if w < 0 {
		w = 0
	} else if w > 1 {
		w = 1
	}
	l.links = append(l.links, Link{A: i, B: j, Weight: w})
	l.counts[i]++
	l.counts[j]++
}
