package scaler

import (
	"fmt"
	"strings"
)

// Format is an output encoding, identified by its MIME type.
type Format string

const (
	FormatPNG  Format = "image/png"
	FormatJPEG Format = "image/jpeg"
	FormatWEBP Format = "image/webp"
)

// Formats lists the supported output formats in display order.
var Formats = []Format{FormatJPEG, FormatPNG, FormatWEBP}

// ParseFormat accepts a MIME type or a short name such as "jpg" or "webp".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png", string(FormatPNG):
		return FormatPNG, nil
	case "jpg", "jpeg", string(FormatJPEG):
		return FormatJPEG, nil
	case "webp", string(FormatWEBP):
		return FormatWEBP, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrEncodeUnsupported, s)
	}
}

// Extension returns the conventional file extension, without the dot.
func (f Format) Extension() string {
	ext := strings.TrimPrefix(string(f), "image/")
	return strings.Replace(ext, "jpeg", "jpg", 1)
}

// Lossy reports whether the quality setting affects the encoded output.
func (f Format) Lossy() bool {
	return f == FormatJPEG || f == FormatWEBP
}

func (f Format) Valid() bool {
	switch f {
	case FormatPNG, FormatJPEG, FormatWEBP:
		return true
	}
	return false
}

// Field names the dimension input the user edited last.
type Field int

const (
	FieldNone Field = iota
	FieldWidth
	FieldHeight
)

func (f Field) String() string {
	switch f {
	case FieldWidth:
		return "width"
	case FieldHeight:
		return "height"
	default:
		return "none"
	}
}

const (
	MinScalePercent     = 10.0
	MaxScalePercent     = 200.0
	DefaultScalePercent = 100.0

	MinQuality     = 0.01
	MaxQuality     = 1.0
	DefaultQuality = 0.9

	DefaultFormat = FormatJPEG
)

// Settings is the live, user-editable resize state.
type Settings struct {
	Width        int
	Height       int
	LockAspect   bool
	ScalePercent float64
	Format       Format
	Quality      float64

	// Anchor is the dimension field edited last. With LockAspect set the
	// other field is derived from it.
	Anchor Field
}

// DefaultSettings returns the settings a reset restores for a w×h source.
func DefaultSettings(w, h int) Settings {
	return Settings{
		Width:        w,
		Height:       h,
		LockAspect:   true,
		ScalePercent: DefaultScalePercent,
		Format:       DefaultFormat,
		Quality:      DefaultQuality,
	}
}

// Normalize clamps scale and quality into range and validates the format.
func (s Settings) Normalize() (Settings, error) {
	if !s.Format.Valid() {
		return s, fmt.Errorf("%w: %q", ErrEncodeUnsupported, s.Format)
	}
	s.ScalePercent = clampFloat(s.ScalePercent, MinScalePercent, MaxScalePercent)
	s.Quality = clampFloat(s.Quality, MinQuality, MaxQuality)
	return s, nil
}

// Request builds a resolver request from the settings for a source with
// the given aspect ratio.
func (s Settings) Request(aspect float64, edited Field) Request {
	return Request{
		Width:        s.Width,
		Height:       s.Height,
		ScalePercent: s.ScalePercent,
		LockAspect:   s.LockAspect,
		Aspect:       aspect,
		Edited:       edited,
	}
}

// Snapshot freezes the settings for a batch run.
func (s Settings) Snapshot() Snapshot {
	return Snapshot{settings: s}
}

// Snapshot is an immutable copy of Settings. The zero value is not useful;
// obtain one from Settings.Snapshot.
type Snapshot struct {
	settings Settings
}

// Settings returns a copy of the frozen settings.
func (s Snapshot) Settings() Settings {
	return s.settings
}

func clampFloat(v, lo, hi float64) float64 {
	if v != v || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
