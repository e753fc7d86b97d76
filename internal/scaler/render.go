package scaler

import (
	"image"
	"sync"

	"golang.org/x/image/draw"
)

// Renderer draws sources onto one reusable surface. Each Render call
// resizes and clears the surface, so the raster returned by a previous
// call is overwritten.
type Renderer struct {
	mu      sync.Mutex
	surface *image.RGBA
	interp  draw.Interpolator
}

type RendererOption func(*Renderer)

// WithInterpolator overrides the resampling kernel.
func WithInterpolator(interp draw.Interpolator) RendererOption {
	return func(r *Renderer) {
		r.interp = interp
	}
}

// NewRenderer returns a Renderer that resamples with Catmull-Rom.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{interp: draw.CatmullRom}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render scales src to exactly fill a w×h transparent surface. Sides are
// clamped to [MinDimension, MaxDimension].
func (r *Renderer) Render(src image.Image, w, h int) *image.RGBA {
	r.mu.Lock()
	defer r.mu.Unlock()

	w = clampDimension(float64(w))
	h = clampDimension(float64(h))
	r.reset(w, h)

	r.interp.Scale(r.surface, r.surface.Rect, src, src.Bounds(), draw.Over, nil)
	return r.surface
}

// reset resizes the surface to w×h and clears it, reusing the pixel buffer
// when it is large enough.
func (r *Renderer) reset(w, h int) {
	n := 4 * w * h
	if r.surface == nil || cap(r.surface.Pix) < n {
		r.surface = image.NewRGBA(image.Rect(0, 0, w, h))
		return
	}

	pix := r.surface.Pix[:n]
	clear(pix)
	r.surface.Pix = pix
	r.surface.Stride = 4 * w
	r.surface.Rect = image.Rect(0, 0, w, h)
}
