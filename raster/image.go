package raster

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Mode is the channel layout of an Image.
type Mode int

const (
	// RGB stores three 8-bit samples per pixel.
	RGB Mode = iota
	// RGBA stores four 8-bit samples per pixel, alpha not premultiplied.
	RGBA
	// Gray stores one 8-bit sample per pixel.
	Gray
)

// Channels returns the number of samples per pixel for the mode.
func (m Mode) Channels() int {
	switch m {
	case RGBA:
		return 4
	case Gray:
		return 1
	default:
		return 3
	}
}

// String returns the conventional name of the mode.
func (m Mode) String() string {
	switch m {
	case RGB:
		return "RGB"
	case RGBA:
		return "RGBA"
	case Gray:
		return "L"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Image is a dense, interleaved 8-bit raster.
//
// len(Pix) is always Width*Height*Mode.Channels(). Rows are stored top to
// bottom with no padding.
type Image struct {
	Width  int
	Height int
	Mode   Mode
	Pix    []uint8
}

// New allocates a zeroed image. Negative dimensions are treated as zero.
func New(width, height int, mode Mode) *Image {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Image{
		Width:  width,
		Height: height,
		Mode:   mode,
		Pix:    make([]uint8, width*height*mode.Channels()),
	}
}

// Stride returns the number of bytes per row.
func (m *Image) Stride() int {
	return m.Width * m.Mode.Channels()
}

// PixOffset returns the index of the first sample of pixel (x, y).
func (m *Image) PixOffset(x, y int) int {
	return y*m.Stride() + x*m.Mode.Channels()
}

// Empty reports whether the image has zero area.
func (m *Image) Empty() bool {
	return m == nil || m.Width == 0 || m.Height == 0
}

// Bounds returns the image rectangle anchored at the origin.
func (m *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Width, m.Height)
}

// Clone returns a deep copy.
func (m *Image) Clone() *Image {
	out := &Image{Width: m.Width, Height: m.Height, Mode: m.Mode, Pix: make([]uint8, len(m.Pix))}
	copy(out.Pix, m.Pix)
	return out
}

// SameShape reports whether o has the same size and mode as m.
func (m *Image) SameShape(o *Image) bool {
	return m.Width == o.Width && m.Height == o.Height && m.Mode == o.Mode
}

// Convert returns a copy of the image in the requested mode. Conversions never
// fail: alpha is synthesized as fully opaque when absent and dropped (not
// composited) when the target has none. Gray uses ITU-R 601 luma.
func (m *Image) Convert(mode Mode) *Image {
	if m.Mode == mode {
		return m.Clone()
	}

	out := New(m.Width, m.Height, mode)
	sc := m.Mode.Channels()
	dc := mode.Channels()
	n := m.Width * m.Height

	for i := 0; i < n; i++ {
		s := m.Pix[i*sc : i*sc+sc]
		d := out.Pix[i*dc : i*dc+dc]

		var r, g, b, a uint8
		switch m.Mode {
		case Gray:
			r, g, b, a = s[0], s[0], s[0], 255
		case RGB:
			r, g, b, a = s[0], s[1], s[2], 255
		case RGBA:
			r, g, b, a = s[0], s[1], s[2], s[3]
		}

		switch mode {
		case Gray:
			d[0] = luma(r, g, b)
		case RGB:
			d[0], d[1], d[2] = r, g, b
		case RGBA:
			d[0], d[1], d[2], d[3] = r, g, b, a
		}
	}

	return out
}

func luma(r, g, b uint8) uint8 {
	return uint8((299*int(r) + 587*int(g) + 114*int(b) + 500) / 1000)
}

// FromImage copies any image.Image into a raster Image. Gray sources stay
// Gray, opaque sources become RGB and everything else becomes RGBA.
func FromImage(src image.Image) *Image {
	b := src.Bounds()

	if g, ok := src.(*image.Gray); ok {
		out := New(b.Dx(), b.Dy(), Gray)
		for y := 0; y < b.Dy(); y++ {
			row := g.Pix[g.PixOffset(b.Min.X, b.Min.Y+y):]
			copy(out.Pix[y*out.Width:(y+1)*out.Width], row[:b.Dx()])
		}
		return out
	}

	nrgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), src, b.Min, draw.Src)

	rgba := &Image{Width: b.Dx(), Height: b.Dy(), Mode: RGBA, Pix: nrgba.Pix}
	if nrgba.Opaque() {
		return rgba.Convert(RGB)
	}
	return rgba
}

// Image returns a standard library view suitable for encoding: *image.Gray
// for Gray and *image.NRGBA otherwise. The returned image does not share
// memory with m.
func (m *Image) Image() image.Image {
	r := m.Bounds()
	switch m.Mode {
	case Gray:
		g := image.NewGray(r)
		copy(g.Pix, m.Pix)
		return g
	case RGBA:
		n := image.NewNRGBA(r)
		copy(n.Pix, m.Pix)
		return n
	default:
		return &image.NRGBA{Pix: m.Convert(RGBA).Pix, Stride: 4 * m.Width, Rect: r}
	}
}

// ColorAt returns the pixel at (x, y) as a non-premultiplied color.
func (m *Image) ColorAt(x, y int) color.NRGBA {
	i := m.PixOffset(x, y)
	switch m.Mode {
	case Gray:
		v := m.Pix[i]
		return color.NRGBA{R: v, G: v, B: v, A: 255}
	case RGB:
		return color.NRGBA{R: m.Pix[i], G: m.Pix[i+1], B: m.Pix[i+2], A: 255}
	default:
		return color.NRGBA{R: m.Pix[i], G: m.Pix[i+1], B: m.Pix[i+2], A: m.Pix[i+3]}
	}
}

// SetColor stores c at (x, y), dropping channels the mode does not carry.
func (m *Image) SetColor(x, y int, c color.NRGBA) {
	i := m.PixOffset(x, y)
	switch m.Mode {
	case Gray:
		m.Pix[i] = luma(c.R, c.G, c.B)
	case RGB:
		m.Pix[i], m.Pix[i+1], m.Pix[i+2] = c.R, c.G, c.B
	default:
		m.Pix[i], m.Pix[i+1], m.Pix[i+2], m.Pix[i+3] = c.R, c.G, c.B, c.A
	}
}
