package raster

import "math"

// GaussianKernel returns the right half of a normalized 1D Gaussian kernel
// with sigma = radius: element j is the weight at distance j from the center.
// The full kernel spans 2*ceil(3*radius)+1 taps and sums to 1.
//
// For radius <= 0 it returns [1] (identity).
func GaussianKernel(radius float64) []float64 {
	if radius <= 0 {
		return []float64{1}
	}

	half := int(math.Ceil(radius * 3))
	weights := make([]float64, half+1)
	twoSigmaSq := 2 * radius * radius

	sum := 0.0
	for j := 0; j <= half; j++ {
		w := math.Exp(-float64(j*j) / twoSigmaSq)
		weights[j] = w
		if j == 0 {
			sum += w
		} else {
			sum += 2 * w
		}
	}
	for j := range weights {
		weights[j] /= sum
	}

	return weights
}

// GaussianBlur returns a blurred copy of the image. Every channel (alpha
// included) is convolved with a separable Gaussian of sigma = radius, edges
// extended by clamping.
//
// Each output sample is evaluated as w0*a[x] + sum_j wj*(a[x-j]+a[x+j]) so an
// input that is mirror-symmetric around some column produces a bit-identical
// mirror-symmetric output.
func (m *Image) GaussianBlur(radius float64) *Image {
	if radius <= 0 || m.Empty() {
		return m.Clone()
	}

	weights := GaussianKernel(radius)
	c := m.Mode.Channels()
	w, h := m.Width, m.Height

	// Horizontal pass into a float buffer, vertical pass back to bytes.
	tmp := make([]float64, len(m.Pix))
	for y := 0; y < h; y++ {
		row := y * w
		for x := 0; x < w; x++ {
			for ch := 0; ch < c; ch++ {
				acc := weights[0] * float64(m.Pix[(row+x)*c+ch])
				for j := 1; j < len(weights); j++ {
					l := clampIndex(x-j, w)
					r := clampIndex(x+j, w)
					acc += weights[j] * (float64(m.Pix[(row+l)*c+ch]) + float64(m.Pix[(row+r)*c+ch]))
				}
				tmp[(row+x)*c+ch] = acc
			}
		}
	}

	out := New(w, h, m.Mode)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for ch := 0; ch < c; ch++ {
				acc := weights[0] * tmp[(y*w+x)*c+ch]
				for j := 1; j < len(weights); j++ {
					u := clampIndex(y-j, h)
					d := clampIndex(y+j, h)
					acc += weights[j] * (tmp[(u*w+x)*c+ch] + tmp[(d*w+x)*c+ch])
				}
				out.Pix[(y*w+x)*c+ch] = ClampUint8(acc)
			}
		}
	}

	return out
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// ClampUint8 rounds v to the nearest integer and clips it to [0, 255].
func ClampUint8(v float64) uint8 {
	v = math.Round(v)
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
