// Package render draws one plexus frame from a particle set and a
// link set. Two backends share the same projection math:
//
//   - Software: CPU rasterizer into an image.RGBA, used by tests, the
//     terminal preview, and as the fallback when no GPU path exists
//   - Raylib: hardware-accelerated window, the normal wallpaper path
//
// Renderers hold no per-frame state: every frame is drawn entirely
// from the arguments, so a late frame is still a correct frame.
package render

import (
	"errors"

	"github.com/pilively/plexus/internal/field"
	"github.com/pilively/plexus/internal/linker"
	"github.com/pilively/plexus/internal/quality"
)

// ErrBackendUnavailable indicates the GPU backend cannot run in this
// environment (e.g. no display server). Callers fall back to the
// software backend rather than terminating.
var ErrBackendUnavailable = errors.New("render: gpu backend unavailable")

// Renderer produces one frame per call.
type Renderer interface {
	RenderFrame(particles []field.Particle, links []linker.Link, p quality.Preset) error
	Close() error
}
