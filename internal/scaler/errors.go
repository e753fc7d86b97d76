package scaler

import "errors"

var (
	// ErrInvalidSource is returned when an input cannot be decoded as an
	// image or decodes to an empty raster. It is scoped to one item.
	ErrInvalidSource = errors.New("invalid image source")

	// ErrEncodeUnsupported is returned when a raster cannot be encoded in
	// the requested format.
	ErrEncodeUnsupported = errors.New("unsupported encode format")
)
