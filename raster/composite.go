package raster

import "fmt"

// Composite blends fg over bg through a Gray mask: where the mask is 255 the
// result is fg, where it is 0 the result is bg, and in between
// (fg*m + bg*(255-m)) / 255 rounded. Every channel, alpha included, is
// blended the same way.
func Composite(fg, bg, mask *Image) (*Image, error) {
	if !fg.SameShape(bg) {
		return nil, fmt.Errorf("%w: fg %dx%d %s, bg %dx%d %s", ErrShapeMismatch,
			fg.Width, fg.Height, fg.Mode, bg.Width, bg.Height, bg.Mode)
	}
	if mask.Mode != Gray || mask.Width != fg.Width || mask.Height != fg.Height {
		return nil, fmt.Errorf("%w: mask must be %dx%d L, got %dx%d %s", ErrShapeMismatch,
			fg.Width, fg.Height, mask.Width, mask.Height, mask.Mode)
	}

	out := New(fg.Width, fg.Height, fg.Mode)
	c := fg.Mode.Channels()

	for i, m := range mask.Pix {
		a := int(m)
		for ch := 0; ch < c; ch++ {
			k := i*c + ch
			out.Pix[k] = uint8((int(fg.Pix[k])*a + int(bg.Pix[k])*(255-a) + 127) / 255)
		}
	}

	return out, nil
}
