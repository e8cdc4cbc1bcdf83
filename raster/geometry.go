package raster

// Offset shifts the image by (dx, dy) with wrap-around. The sample at (x, y)
// in the result is the input sample at ((x-dx) mod w, (y-dy) mod h), so no
// pixel is cropped or duplicated.
func (m *Image) Offset(dx, dy int) *Image {
	out := New(m.Width, m.Height, m.Mode)
	if m.Empty() {
		return out
	}

	c := m.Mode.Channels()
	dx = mod(dx, m.Width)
	dy = mod(dy, m.Height)

	for y := 0; y < m.Height; y++ {
		sy := mod(y-dy, m.Height)
		srcRow := m.Pix[sy*m.Stride() : (sy+1)*m.Stride()]
		dstRow := out.Pix[y*out.Stride() : (y+1)*out.Stride()]

		// Two contiguous copies per row: [dx, w) <- [0, w-dx) and [0, dx) <- [w-dx, w).
		split := (m.Width - dx) * c
		copy(dstRow[dx*c:], srcRow[:split])
		copy(dstRow[:dx*c], srcRow[split:])
	}

	return out
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
