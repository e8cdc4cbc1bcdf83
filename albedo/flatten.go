// Package albedo flattens shaded texture candidates into flat base-color art
// by reducing them to a small palette.
//
// The palette is chosen with an adaptive octree: every pixel color is
// inserted, then the sparsest deepest branches are folded into their parents
// until the requested number of colors remains. Pixels are then mapped
// either directly to their octree leaf or through Floyd-Steinberg error
// diffusion against the same palette.
//
// Example:
//
//	flat, err := albedo.Flatten(img, albedo.Options{Colors: 6})
//	if err != nil {
//	    return err
//	}
//	_ = flat.Save("textures/flat.png")
package albedo

import (
	"fmt"
	"image"

	"github.com/makeworld-the-better-one/dither/v2"

	"texgen/raster"
)

const (
	// MinColors is the smallest palette Flatten accepts.
	MinColors = 1
	// MaxColors is the largest palette an 8-bit paletted image can index.
	MaxColors = 256
	// DefaultColors is the palette size used when none is configured.
	DefaultColors = 8
)

// Options controls Flatten.
type Options struct {
	// Colors is the maximum number of palette entries, in [1, 256].
	Colors int
	// Dither enables Floyd-Steinberg error diffusion.
	Dither bool
	// Blur is the Gaussian radius applied after quantization. 0 disables it.
	Blur int
}

// DefaultOptions returns 8 colors, no dithering and no blur.
func DefaultOptions() Options {
	return Options{Colors: DefaultColors}
}

// Validate checks the option ranges.
func (o Options) Validate() error {
	if o.Colors < MinColors || o.Colors > MaxColors {
		return fmt.Errorf("%w: colors must be in [%d, %d], got %d",
			raster.ErrInvalidParameter, MinColors, MaxColors, o.Colors)
	}
	if o.Blur < 0 {
		return fmt.Errorf("%w: blur must be >= 0, got %d", raster.ErrInvalidParameter, o.Blur)
	}
	return nil
}

// Result is the output of Quantize.
type Result struct {
	Paletted *image.Paletted
	Palette  Palette
}

// Flatten returns an RGB copy of img reduced to at most opts.Colors colors,
// optionally dithered and then blurred. Options are validated before any
// pixel is touched.
func Flatten(img *raster.Image, opts Options) (*raster.Image, error) {
	out, _, err := FlattenWithPalette(img, opts)
	return out, err
}

// FlattenWithPalette is Flatten that also returns the palette it chose,
// darkest first.
func FlattenWithPalette(img *raster.Image, opts Options) (*raster.Image, Palette, error) {
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}

	res, err := Quantize(img, opts.Colors, opts.Dither)
	if err != nil {
		return nil, nil, err
	}

	out := res.Image()
	if opts.Blur > 0 {
		out = out.GaussianBlur(float64(opts.Blur))
	}
	return out, res.Palette, nil
}

// Quantize picks a palette of at most colors entries for img and maps every
// pixel to it. Alpha is ignored.
func Quantize(img *raster.Image, colors int, useDither bool) (*Result, error) {
	if err := (Options{Colors: colors}).Validate(); err != nil {
		return nil, err
	}

	src := img.Convert(raster.RGB)
	w, h := src.Width, src.Height

	tree := newOctree()
	for i := 0; i+2 < len(src.Pix); i += 3 {
		tree.add(src.Pix[i], src.Pix[i+1], src.Pix[i+2])
	}
	tree.reduce(colors)

	palette := sortByLightness(tree.leafNodes())
	if len(palette) == 0 {
		return &Result{Paletted: image.NewPaletted(src.Bounds(), nil), Palette: palette}, nil
	}

	if useDither && len(palette) > 1 {
		d := dither.NewDitherer(palette.Colors())
		d.Matrix = dither.FloydSteinberg
		return &Result{Paletted: d.DitherPaletted(src.Image()), Palette: palette}, nil
	}

	out := image.NewPaletted(src.Bounds(), palette.Colors())
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := src.PixOffset(x, y)
			out.SetColorIndex(x, y, uint8(tree.lookup(src.Pix[i], src.Pix[i+1], src.Pix[i+2])))
		}
	}

	return &Result{Paletted: out, Palette: palette}, nil
}

// Image expands the palette indices back to RGB samples.
func (res *Result) Image() *raster.Image {
	b := res.Paletted.Bounds()
	out := raster.New(b.Dx(), b.Dy(), raster.RGB)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := res.Palette[res.Paletted.ColorIndexAt(b.Min.X+x, b.Min.Y+y)]
			i := out.PixOffset(x, y)
			out.Pix[i], out.Pix[i+1], out.Pix[i+2] = c.R, c.G, c.B
		}
	}
	return out
}
