package seamless

import (
	"fmt"

	"texgen/raster"
)

// DefaultFeather is the feather width, in pixels, used by the CLI when none
// is given.
const DefaultFeather = 18

// Blend returns an RGBA copy of img shifted by half its size, so the old
// wrap seam crosses the center, with a blurred copy composited over the seam
// through a feathered mask.
//
// A feather of 0 yields the shifted image with no blending. A negative
// feather is rejected with raster.ErrInvalidParameter before any work is
// done.
func Blend(img *raster.Image, feather int) (*raster.Image, error) {
	if feather < 0 {
		return nil, fmt.Errorf("%w: feather must be >= 0, got %d", raster.ErrInvalidParameter, feather)
	}
	if img.Empty() {
		return raster.New(0, 0, raster.RGBA), nil
	}

	off := img.Convert(raster.RGBA).Offset(img.Width/2, img.Height/2)

	mask := BlendMask(off.Width, off.Height, feather)
	if mask == nil {
		return off, nil
	}

	return raster.Composite(off.GaussianBlur(float64(feather)), off, mask)
}

// BlendMask builds the Gray weight mask used by Blend for a w x h image.
//
// The weight ramps from feather on the center lines (x = w/2 and y = h/2)
// down to 0 at distance feather, the larger of the vertical and horizontal
// ramp wins, and the result is scaled to [0,255] and blurred by feather
// pixels. It returns nil when every weight is zero, which is the case for
// feather <= 0.
//
// The mask mirrors about x = w/2 only while w is odd or feather < w/2-1, and
// likewise for h. An even dimension leaves one pixel fewer on the far side of
// the center line, so a wider feather reaches the clamped image edge unevenly.
func BlendMask(w, h, feather int) *raster.Image {
	if feather <= 0 || w <= 0 || h <= 0 {
		return nil
	}

	cx, cy := w/2, h/2
	ramp := func(d int) int {
		if d < 0 {
			d = -d
		}
		v := feather - d
		if v < 0 {
			return 0
		}
		return v
	}

	raw := make([]int, w*h)
	peak := 0
	for y := 0; y < h; y++ {
		mh := ramp(y - cy)
		for x := 0; x < w; x++ {
			v := max(ramp(x-cx), mh)
			raw[y*w+x] = v
			peak = max(peak, v)
		}
	}
	if peak == 0 {
		return nil
	}

	mask := raster.New(w, h, raster.Gray)
	for i, v := range raw {
		mask.Pix[i] = uint8(v * 255 / peak)
	}

	return mask.GaussianBlur(float64(feather))
}
