package scaler

import (
	"image"

	"github.com/disintegration/imaging"
	exif "github.com/dsoprea/go-exif/v3"
)

const orientationTag = 0x0112

// readOrientation returns the EXIF orientation (1-8) stored in an image
// file, or 1 when there is none or it cannot be read.
func readOrientation(data []byte) int {
	raw, err := exif.SearchAndExtractExif(data)
	if err != nil {
		return 1
	}

	tags, _, err := exif.GetFlatExifData(raw, nil)
	if err != nil {
		return 1
	}

	for _, tag := range tags {
		if tag.TagId != orientationTag || tag.IfdPath == "IFD1" {
			continue
		}
		var v int
		switch value := tag.Value.(type) {
		case []uint16:
			if len(value) > 0 {
				v = int(value[0])
			}
		case uint16:
			v = int(value)
		}
		if v >= 1 && v <= 8 {
			return v
		}
	}
	return 1
}

// applyOrientation returns img transformed so that it displays upright.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
