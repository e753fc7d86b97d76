package scaler

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"math"

	"github.com/chai2010/webp"
)

// Output is an encoded image ready to be saved.
type Output struct {
	Data     []byte
	Filename string
	MIME     string
}

// Export encodes img and derives the download name
// "<nameBase>-resized.<ext>". PNG accepts but ignores quality.
func Export(img image.Image, f Format, quality float64, nameBase string) (Output, error) {
	var buf bytes.Buffer
	if err := encode(&buf, img, f, quality); err != nil {
		return Output{}, err
	}
	return Output{
		Data:     buf.Bytes(),
		Filename: nameBase + "-resized." + f.Extension(),
		MIME:     string(f),
	}, nil
}

// Estimate returns the number of bytes img would occupy when encoded. The
// encoding is counted and discarded.
func Estimate(img image.Image, f Format, quality float64) (int, error) {
	var cw countingWriter
	if err := encode(&cw, img, f, quality); err != nil {
		return 0, err
	}
	return cw.n, nil
}

// FormatBytes renders a byte count as "N B", "N.N KB" or "N.NN MB".
func FormatBytes(n int) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.2f MB", float64(n)/1024/1024)
	}
}

func encode(w io.Writer, img image.Image, f Format, quality float64) error {
	quality = clampFloat(quality, MinQuality, MaxQuality)

	var err error
	switch f {
	case FormatPNG:
		enc := png.Encoder{CompressionLevel: png.DefaultCompression}
		err = enc.Encode(w, img)
	case FormatJPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality(quality)})
	case FormatWEBP:
		err = webp.Encode(w, img, &webp.Options{Quality: float32(quality * 100)})
	default:
		return fmt.Errorf("%w: %q", ErrEncodeUnsupported, f)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrEncodeUnsupported, f, err)
	}
	return nil
}

func jpegQuality(q float64) int {
	v := int(math.Round(q * 100))
	if v < 1 {
		return 1
	}
	if v > 100 {
		return 100
	}
	return v
}

type countingWriter struct {
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	c.n += len(p)
	return len(p), nil
}
