package render

import (
	"os"
	"sort"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pilively/plexus/internal/field"
	"github.com/pilively/plexus/internal/linker"
	"github.com/pilively/plexus/internal/quality"
)

var (
	rlBackground = rl.NewColor(4, 8, 16, 255)
	rlParticle   = rl.NewColor(240, 250, 255, 255)
	rlLink       = rl.NewColor(140, 180, 220, 255)
	rlGlow       = rl.NewColor(150, 200, 255, 255)
)

// Raylib renders into a borderless always-on-bottom window, the shape
// a desktop compositor expects from a live wallpaper surface.
type Raylib struct {
	cam  Camera
	glow rl.Texture2D

	proj  []Projected
	order []int
}

// NewRaylib opens the render window. Without a display server it
// returns ErrBackendUnavailable before touching the windowing stack so
// the caller can fall back to the software backend.
func NewRaylib(w, h int, b field.Bounds, title string) (*Raylib, error) {
	if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
		return nil, ErrBackendUnavailable
	}

	rl.SetConfigFlags(rl.FlagWindowUndecorated)
	rl.InitWindow(int32(w), int32(h), title)
	rl.SetExitKey(0)

	img := rl.GenImageGradientRadial(64, 64, 0.0, rl.White, rl.NewColor(0, 0, 0, 0))
	glow := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)

	return &Raylib{cam: NewCamera(w, h, b), glow: glow}, nil
}

// SetCameraDistance moves the camera along its axis.
func (r *Raylib) SetCameraDistance(d float64) {
	if d > nearClip {
		r.cam.Distance = d
	}
}

// ShouldClose reports whether the window manager asked us to quit.
func (r *Raylib) ShouldClose() bool { return rl.WindowShouldClose() }

func (r *Raylib) Close() error {
	rl.UnloadTexture(r.glow)
	rl.CloseWindow()
	return nil
}

func (r *Raylib) RenderFrame(particles []field.Particle, links []linker.Link, p quality.Preset) error {
	if cap(r.proj) < len(particles) {
		r.proj = make([]Projected, len(particles))
		r.order = make([]int, len(particles))
	}
	r.proj = r.proj[:len(particles)]
	r.order = r.order[:len(particles)]
	for i, pt := range particles {
		r.proj[i] = r.cam.Project(pt)
		r.order[i] = i
	}
	sort.Slice(r.order, func(a, b int) bool {
		return particles[r.order[a]].Z < particles[r.order[b]].Z
	})

	rl.BeginDrawing()
	rl.ClearBackground(rlBackground)

	lineWidth := float32(p.Detail.LineWidth())
	for _, ln := range links {
		pa, pb := r.proj[ln.A], r.proj[ln.B]
		if !pa.Visible || !pb.Visible {
			continue
		}
		alpha := float32(ln.Weight * (pa.Alpha + pb.Alpha) / 2 * 0.8)
		if alpha < 0.04 {
			continue
		}
		rl.DrawLineEx(
			rl.NewVector2(float32(pa.X), float32(pa.Y)),
			rl.NewVector2(float32(pb.X), float32(pb.Y)),
			lineWidth*(0.5+alpha),
			rl.Fade(rlLink, alpha),
		)
	}

	for _, i := range r.order {
		pr := r.proj[i]
		if !pr.Visible {
			continue
		}
		size := float32(particles[i].Size * pr.Scale)
		if size < 1 {
			size = 1
		}
		lum := float32(Luminance(particles[i], pr))

		if p.Detail.Glow() {
			gs := size * 6
			rl.DrawTextureEx(r.glow,
				rl.NewVector2(float32(pr.X)-gs/2, float32(pr.Y)-gs/2),
				0, gs/64, rl.Fade(rlGlow, lum*0.3))
		}
		rl.DrawCircleV(rl.NewVector2(float32(pr.X), float32(pr.Y)), size, rl.Fade(rlParticle, lum))
	}

	rl.EndDrawing()
	return nil
}
