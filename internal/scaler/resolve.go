package scaler

import (
	"fmt"
	"math"
)

const (
	// MinDimension and MaxDimension bound every rendered side, in pixels.
	MinDimension = 1
	MaxDimension = 20000
)

// Request carries the inputs of a dimension resolution.
type Request struct {
	Width        int
	Height       int
	ScalePercent float64
	LockAspect   bool
	Aspect       float64
	Edited       Field
}

// Resolution is the outcome of Resolve. Width and Height are the
// aspect-adjusted base values to show back in the editable fields;
// OutWidth and OutHeight are the final raster size.
type Resolution struct {
	Width     int
	Height    int
	OutWidth  int
	OutHeight int
}

// AspectRatio returns w/h for a source raster.
func AspectRatio(w, h int) (float64, error) {
	if w <= 0 || h <= 0 {
		return 0, fmt.Errorf("%w: %dx%d", ErrInvalidSource, w, h)
	}
	return float64(w) / float64(h), nil
}

// Resolve computes the target raster size. It is pure: the same request
// always yields the same resolution.
//
// With LockAspect set, the field opposite to Edited is re-derived from the
// aspect ratio. Scale is applied after that, and both output sides are
// clamped to [MinDimension, MaxDimension].
func Resolve(r Request) Resolution {
	w, h := r.Width, r.Height

	if r.LockAspect && r.Aspect > 0 && !math.IsInf(r.Aspect, 0) {
		switch r.Edited {
		case FieldWidth:
			h = roundInt(float64(w) / r.Aspect)
		case FieldHeight:
			w = roundInt(float64(h) * r.Aspect)
		}
	}

	scale := clampFloat(r.ScalePercent, MinScalePercent, MaxScalePercent) / 100

	return Resolution{
		Width:     w,
		Height:    h,
		OutWidth:  clampDimension(float64(w) * scale),
		OutHeight: clampDimension(float64(h) * scale),
	}
}

// roundInt rounds half up.
func roundInt(v float64) int {
	return int(math.Floor(v + 0.5))
}

func clampDimension(v float64) int {
	v = math.Floor(v + 0.5)
	if v != v || v < MinDimension {
		return MinDimension
	}
	if v > MaxDimension {
		return MaxDimension
	}
	return int(v)
}
