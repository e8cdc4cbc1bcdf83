package raster

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// Resize scales the image to width x height with Catmull-Rom resampling.
// The mode is preserved.
func (m *Image) Resize(width, height int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: resize target %dx%d must be positive", ErrInvalidParameter, width, height)
	}
	if m.Empty() {
		return nil, fmt.Errorf("%w: cannot resize a %dx%d image", ErrInvalidParameter, m.Width, m.Height)
	}
	if width == m.Width && height == m.Height {
		return m.Clone(), nil
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), m.Image(), m.Bounds(), draw.Src, nil)

	scaled := &Image{Width: width, Height: height, Mode: RGBA, Pix: dst.Pix}
	if m.Mode == RGBA {
		return scaled, nil
	}
	return scaled.Convert(m.Mode), nil
}
