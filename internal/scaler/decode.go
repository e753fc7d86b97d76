package scaler

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"rescale/pkg/imgutil"
)

// MaxSourcePixels bounds the raster size read from a file header. Larger
// images are rejected before any pixel data is allocated.
const MaxSourcePixels = 100_000_000

// Source is a decoded raster. It is never modified after construction.
type Source struct {
	img      image.Image
	width    int
	height   int
	aspect   float64
	nameBase string
	kind     imgutil.Kind
}

// NewSource wraps an already decoded raster. name is the original file
// name; its extension is dropped.
func NewSource(name string, img image.Image) (*Source, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: %s: no raster", ErrInvalidSource, name)
	}
	b := img.Bounds()
	aspect, err := AspectRatio(b.Dx(), b.Dy())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &Source{
		img:      img,
		width:    b.Dx(),
		height:   b.Dy(),
		aspect:   aspect,
		nameBase: NameBase(name),
	}, nil
}

func (s *Source) Image() image.Image { return s.img }
func (s *Source) Width() int         { return s.width }
func (s *Source) Height() int        { return s.height }

// Aspect returns Width/Height.
func (s *Source) Aspect() float64 { return s.aspect }

// NameBase is the original file name without its extension.
func (s *Source) NameBase() string { return s.nameBase }

// Kind is the sniffed container type, KindUnknown for NewSource rasters.
func (s *Source) Kind() imgutil.Kind { return s.kind }

// Decode reads and decodes in. The input stream is closed before Decode
// returns, on success and on failure.
func Decode(ctx context.Context, in Input) (*Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rc, err := in.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidSource, in.Name(), err)
	}
	data, err := io.ReadAll(rc)
	closeErr := rc.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidSource, in.Name(), err)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidSource, in.Name(), closeErr)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return DecodeBytes(in.Name(), data)
}

// DecodeBytes decodes an in-memory image file. JPEG and TIFF rasters are
// rotated according to their EXIF orientation.
func DecodeBytes(name string, data []byte) (*Source, error) {
	kind, err := imgutil.SniffBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidSource, name, err)
	}

	conf, err := decodeImageConfig(kind, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidSource, name, err)
	}
	if int64(conf.Width)*int64(conf.Height) > MaxSourcePixels {
		return nil, fmt.Errorf("%w: %s: %dx%d exceeds %d pixels", ErrInvalidSource, name, conf.Width, conf.Height, MaxSourcePixels)
	}

	img, err := decodeImageData(kind, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidSource, name, err)
	}

	if kind.HasExif() {
		img = applyOrientation(img, readOrientation(data))
	}

	src, err := NewSource(name, img)
	if err != nil {
		return nil, err
	}
	src.kind = kind
	return src, nil
}

func decodeImageData(kind imgutil.Kind, r io.Reader) (img image.Image, err error) {
	switch kind {
	case imgutil.KindJPEG:
		img, err = jpeg.Decode(r)
	case imgutil.KindPNG:
		img, err = png.Decode(r)
	case imgutil.KindGIF:
		img, err = gif.Decode(r)
	case imgutil.KindWEBP:
		img, err = webp.Decode(r)
	case imgutil.KindBMP:
		img, err = bmp.Decode(r)
	case imgutil.KindTIFF:
		img, err = tiff.Decode(r)
	default:
		return nil, fmt.Errorf("unsupported file type")
	}
	if err != nil {
		return nil, err
	}

	return img, nil
}

func decodeImageConfig(kind imgutil.Kind, r io.Reader) (image.Config, error) {
	switch kind {
	case imgutil.KindJPEG:
		return jpeg.DecodeConfig(r)
	case imgutil.KindPNG:
		return png.DecodeConfig(r)
	case imgutil.KindGIF:
		return gif.DecodeConfig(r)
	case imgutil.KindWEBP:
		return webp.DecodeConfig(r)
	case imgutil.KindBMP:
		return bmp.DecodeConfig(r)
	case imgutil.KindTIFF:
		return tiff.DecodeConfig(r)
	default:
		return image.Config{}, fmt.Errorf("unsupported file type")
	}
}
