package render

import (
	"math"

	"github.com/pilively/plexus/internal/field"
)

// nearClip keeps particles from projecting through the camera plane.
const nearClip = 50.0

// Camera is a fixed perspective camera looking down +Z at the center
// of the field volume.
type Camera struct {
	Distance float64 // camera to focus plane
	Focal    float64
	Width    int
	Height   int
	Bounds   field.Bounds

	viewScale float64
}

// NewCamera builds a camera for a w x h pixel surface over bounds b.
func NewCamera(w, h int, b field.Bounds) Camera {
	vs := float64(w) / b.Width
	if alt := float64(h) / b.Height; alt < vs {
		vs = alt
	}
	return Camera{
		Distance:  800,
		Focal:     600,
		Width:     w,
		Height:    h,
		Bounds:    b,
		viewScale: vs,
	}
}

// Projected is a particle mapped to screen space.
type Projected struct {
	X, Y    float64
	Scale   float64 // size multiplier from perspective
	Alpha   float64 // depth fade in [0.3, 1.0]
	Visible bool
}

// Project maps a particle to screen coordinates. Particles closer to
// the camera than the near clip, or off-screen, come back invisible.
func (c Camera) Project(p field.Particle) Projected {
	zc := p.Z - c.Bounds.Depth/2
	if zc >= c.Distance-nearClip {
		return Projected{}
	}
	scale := c.Focal / (c.Distance - zc)

	sx := float64(c.Width)/2 + (p.X-c.Bounds.Width/2)*scale*c.viewScale
	sy := float64(c.Height)/2 + (p.Y-c.Bounds.Height/2)*scale*c.viewScale

	depth := p.Z / c.Bounds.Depth
	return Projected{
		X:       sx,
		Y:       sy,
		Scale:   scale * c.viewScale,
		Alpha:   0.3 + 0.7*(1-depth),
		Visible: sx >= 0 && sx <= float64(c.Width) && sy >= 0 && sy <= float64(c.Height),
	}
}

// Luminance combines a particle's base brightness, its pulse cycle and
// the camera's depth fade into one [0,1] intensity.
func Luminance(p field.Particle, pr Projected) float64 {
	pulse := 0.8 + 0.2*math.Sin(p.PulsePhase)
	l := p.Brightness * pulse * pr.Alpha
	if l < 0 {
		return 0
	}
	if l > 1 {
		return 1
	}
	return l
}
