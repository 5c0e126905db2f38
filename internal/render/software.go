package render

import (
	"image"
	"image/color"
	"image/draw"
	"sort"

	"github.com/pilively/plexus/internal/field"
	"github.com/pilively/plexus/internal/linker"
	"github.com/pilively/plexus/internal/quality"
)

// Palette lifted from the reference wallpaper.
var (
	colBackground = color.RGBA{4, 8, 16, 255}
	colParticle   = color.RGBA{240, 250, 255, 255}
	colLink       = color.RGBA{140, 180, 220, 255}
)

// Software rasterizes frames into an image.RGBA on the CPU. It is the
// fallback backend for headless or GPU-less setups and the one tests
// exercise.
type Software struct {
	cam   Camera
	img   *image.RGBA
	proj  []Projected
	order []int
}

func NewSoftware(w, h int, b field.Bounds) *Software {
	return &Software{
		cam: NewCamera(w, h, b),
		img: image.NewRGBA(image.Rect(0, 0, w, h)),
	}
}

// Image returns the frame buffer of the most recent RenderFrame. The
// buffer is reused; copy it to keep a frame.
func (s *Software) Image() *image.RGBA { return s.img }

// Camera exposes the projection in use, mainly for the preview UI.
func (s *Software) Camera() Camera { return s.cam }

// SetCameraDistance moves the camera along its axis; larger values
// pull back for a wider, flatter view.
func (s *Software) SetCameraDistance(d float64) {
	if d > nearClip {
		s.cam.Distance = d
	}
}

func (s *Software) Close() error { return nil }

func (s *Software) RenderFrame(particles []field.Particle, links []linker.Link, p quality.Preset) error {
	draw.Draw(s.img, s.img.Bounds(), &image.Uniform{colBackground}, image.Point{}, draw.Src)

	if cap(s.proj) < len(particles) {
		s.proj = make([]Projected, len(particles))
		s.order = make([]int, len(particles))
	}
	s.proj = s.proj[:len(particles)]
	s.order = s.order[:len(particles)]
	for i, pt := range particles {
		s.proj[i] = s.cam.Project(pt)
		s.order[i] = i
	}

	// Links go under particles.
	for _, ln := range links {
		pa, pb := s.proj[ln.A], s.proj[ln.B]
		if !pa.Visible || !pb.Visible {
			continue
		}
		alpha := ln.Weight * (pa.Alpha + pb.Alpha) / 2 * 0.8
		if alpha < 0.04 {
			continue
		}
		s.line(pa.X, pa.Y, pb.X, pb.Y, alpha, p.Detail)
	}

	// Back to front so nearer particles paint over farther ones.
	sort.Slice(s.order, func(a, b int) bool {
		return particles[s.order[a]].Z < particles[s.order[b]].Z
	})
	for _, i := range s.order {
		pr := s.proj[i]
		if !pr.Visible {
			continue
		}
		r := particles[i].Size * pr.Scale
		if r < 1 {
			r = 1
		}
		s.disc(pr.X, pr.Y, r, Luminance(particles[i], pr))
	}
	return nil
}

// line draws a Bresenham line blended at the given alpha. High detail
// adds a half-alpha neighbor row as cheap smoothing.
func (s *Software) line(x0f, y0f, x1f, y1f, alpha float64, d quality.Detail) {
	x0, y0 := int(x0f), int(y0f)
	x1, y1 := int(x1f), int(y1f)

	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy
	for {
		s.blend(x0, y0, colLink, alpha)
		if d.AntiAlias() {
			s.blend(x0, y0+1, colLink, alpha/2)
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (s *Software) disc(cxf, cyf, r, lum float64) {
	cx, cy := int(cxf), int(cyf)
	ri := int(r + 0.5)
	for y := -ri; y <= ri; y++ {
		for x := -ri; x <= ri; x++ {
			if float64(x*x+y*y) > r*r {
				continue
			}
			s.blend(cx+x, cy+y, colParticle, lum)
		}
	}
}

// blend does source-over alpha compositing of c at opacity a.
func (s *Software) blend(x, y int, c color.RGBA, a float64) {
	if a <= 0 || !(image.Point{x, y}.In(s.img.Bounds())) {
		return
	}
	if a > 1 {
		a = 1
	}
	i := s.img.PixOffset(x, y)
	px := s.img.Pix[i : i+4 : i+4]
	px[0] = mix(px[0], c.R, a)
	px[1] = mix(px[1], c.G, a)
	px[2] = mix(px[2], c.B, a)
	px[3] = 255
}

func mix(dst, src uint8, a float64) uint8 {
	return uint8(float64(dst)*(1-a) + float64(src)*a)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
