package scaler

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/gif"
	"image/jpeg"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"rescale/pkg/imgutil"
)

type trackedInput struct {
	data    []byte
	openErr error
	closed  bool
}

func (i *trackedInput) Name() string     { return "tracked.png" }
func (i *trackedInput) MIMEType() string { return "image/png" }

func (i *trackedInput) Open() (io.ReadCloser, error) {
	if i.openErr != nil {
		return nil, i.openErr
	}
	return &trackedCloser{Reader: bytes.NewReader(i.data), in: i}, nil
}

type trackedCloser struct {
	io.Reader
	in *trackedInput
}

func (c *trackedCloser) Close() error {
	c.in.closed = true
	return nil
}

func TestDecodePNG(t *testing.T) {
	in := &trackedInput{data: encodePNG(t, patternImage(120, 80))}

	src, err := Decode(context.Background(), in)
	require.NoError(t, err)
	require.True(t, in.closed)
	require.Equal(t, 120, src.Width())
	require.Equal(t, 80, src.Height())
	require.InDelta(t, 1.5, src.Aspect(), 1e-9)
	require.Equal(t, "tracked", src.NameBase())
	require.Equal(t, imgutil.KindPNG, src.Kind())
}

func TestDecodeCorruptClosesInput(t *testing.T) {
	data := encodePNG(t, patternImage(20, 20))
	in := &trackedInput{data: data[:len(data)/2]}

	_, err := Decode(context.Background(), in)
	require.ErrorIs(t, err, ErrInvalidSource)
	require.True(t, in.closed)
}

func TestDecodeOpenFailure(t *testing.T) {
	openErr := errors.New("permission denied")
	_, err := Decode(context.Background(), &trackedInput{openErr: openErr})
	require.ErrorIs(t, err, ErrInvalidSource)
	require.ErrorIs(t, err, openErr)
}

func TestDecodeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := &trackedInput{data: encodePNG(t, patternImage(4, 4))}
	_, err := Decode(ctx, in)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDecodeBytesFormats(t *testing.T) {
	img := patternImage(16, 9)

	var jpegBuf, gifBuf bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpegBuf, img, nil))
	require.NoError(t, gif.Encode(&gifBuf, img, nil))

	cs := []struct {
		Name string
		Data []byte
		Kind imgutil.Kind
	}{
		{"a.png", encodePNG(t, img), imgutil.KindPNG},
		{"b.jpg", jpegBuf.Bytes(), imgutil.KindJPEG},
		{"c.gif", gifBuf.Bytes(), imgutil.KindGIF},
	}

	for _, c := range cs {
		src, err := DecodeBytes(c.Name, c.Data)
		require.NoError(t, err, c.Name)
		require.Equal(t, 16, src.Width(), c.Name)
		require.Equal(t, 9, src.Height(), c.Name)
		require.Equal(t, c.Kind, src.Kind(), c.Name)
	}
}

func TestDecodeBytesRejectsNonImages(t *testing.T) {
	cs := [][]byte{
		nil,
		[]byte("short"),
		[]byte("definitely not an image file at all"),
	}
	for _, data := range cs {
		_, err := DecodeBytes("x.png", data)
		require.ErrorIs(t, err, ErrInvalidSource)
	}
}

func TestNewSourceRejectsEmptyRaster(t *testing.T) {
	_, err := NewSource("empty.png", image.NewRGBA(image.Rect(0, 0, 0, 10)))
	require.ErrorIs(t, err, ErrInvalidSource)

	_, err = NewSource("nil.png", nil)
	require.ErrorIs(t, err, ErrInvalidSource)
}

func TestDecodeAppliesExifOrientation(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, patternImage(40, 20), nil))
	data := withExifOrientation(buf.Bytes(), 6)

	require.Equal(t, 6, readOrientation(data))

	src, err := DecodeBytes("rotated.jpg", data)
	require.NoError(t, err)
	require.Equal(t, 20, src.Width())
	require.Equal(t, 40, src.Height())
}

// withPNGSize rewrites the IHDR dimensions of an encoded PNG, keeping the
// chunk checksum valid.
func withPNGSize(data []byte, w, h uint32) []byte {
	out := append([]byte(nil), data...)
	binary.BigEndian.PutUint32(out[16:20], w)
	binary.BigEndian.PutUint32(out[20:24], h)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestDecodeRejectsOversizedHeader(t *testing.T) {
	data := withPNGSize(encodePNG(t, patternImage(1, 1)), 60000, 60000)

	_, err := DecodeBytes("huge.png", data)
	require.ErrorIs(t, err, ErrInvalidSource)
	require.ErrorContains(t, err, "60000x60000")

	results, err := NewBatch().Run(context.Background(), []Input{
		BytesInput("huge.png", "image/png", data),
		pngInput(t, "ok.png", 8, 4),
	}, DefaultSettings(8, 4).Snapshot())
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.ErrorIs(t, results[0].Err, ErrInvalidSource)
	require.NoError(t, results[1].Err)
}

func TestReadOrientationWithoutExif(t *testing.T) {
	require.Equal(t, 1, readOrientation(encodePNG(t, patternImage(4, 4))))
}

func TestApplyOrientation(t *testing.T) {
	img := patternImage(3, 2)
	for o := 1; o <= 8; o++ {
		b := applyOrientation(img, o).Bounds()
		if o >= 5 {
			require.Equal(t, image.Pt(2, 3), b.Size(), "orientation %d", o)
		} else {
			require.Equal(t, image.Pt(3, 2), b.Size(), "orientation %d", o)
		}
	}
}

// withExifOrientation inserts an APP1 segment holding a single IFD0
// Orientation entry right after the JPEG SOI marker.
func withExifOrientation(jpegData []byte, orientation uint16) []byte {
	var tiff bytes.Buffer
	tiff.Write([]byte{0x49, 0x49, 0x2a, 0x00})
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(8))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(1))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(orientationTag))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(3))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(1))
	_ = binary.Write(&tiff, binary.LittleEndian, orientation)
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(0))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(0))

	exif := append([]byte("Exif\x00\x00"), tiff.Bytes()...)

	var out bytes.Buffer
	out.Write(jpegData[:2])
	out.Write([]byte{0xff, 0xe1})
	_ = binary.Write(&out, binary.BigEndian, uint16(len(exif)+2))
	out.Write(exif)
	out.Write(jpegData[2:])
	return out.Bytes()
}
