// Package raster provides the in-memory image model shared by the texture
// post-processing stages.
package raster

import "errors"

// Sentinel errors for raster operations.
var (
	// ErrInvalidParameter is returned (wrapped) by every transform that rejects
	// an argument before doing any work: radii, color counts, target sizes.
	ErrInvalidParameter = errors.New("raster: invalid parameter")

	// ErrShapeMismatch is returned when two images that must share a size or
	// channel layout do not.
	ErrShapeMismatch = errors.New("raster: image shapes do not match")

	// ErrEmptyImage is returned when image data is empty.
	ErrEmptyImage = errors.New("raster: image data is empty")

	// ErrDecode is returned when image data cannot be decoded.
	ErrDecode = errors.New("raster: failed to decode image")
)
