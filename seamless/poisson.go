// Package seamless turns generated texture candidates into tileable images.
//
// Two detilers are provided:
//
//   - Poisson removes the wrap-around discontinuity with a periodic plus
//     smooth decomposition solved exactly in the frequency domain. Interior
//     content is perturbed as little as possible.
//   - Blend shifts the seam to the center of the image and hides it behind a
//     feathered blur. It is cheaper and changes the look near the seam.
//
// Both are pure functions of their input and safe for concurrent use on
// independent images.
package seamless

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"texgen/raster"
)

// Poisson returns an RGB copy of img whose opposite edges match when tiled.
//
// Each channel is split into a periodic component and a smooth component.
// The smooth component is the solution of a discrete Poisson equation whose
// source is the difference between opposite borders, and it is subtracted
// from the input. Its mean is forced to zero so overall brightness does not
// move.
//
// Zero-area input yields an empty RGB image. A 1x1 or uniform image comes
// back unchanged.
func Poisson(img *raster.Image) *raster.Image {
	if img.Empty() {
		return raster.New(0, 0, raster.RGB)
	}

	src := img.Convert(raster.RGB)
	w, h := src.Width, src.Height
	out := raster.New(w, h, raster.RGB)

	plan := newFFT2(w, h)
	denom := laplacianSpectrum(w, h)
	arr := make([]float64, w*h)
	field := make([]complex128, w*h)

	for ch := 0; ch < 3; ch++ {
		for i := range arr {
			arr[i] = float64(src.Pix[i*3+ch])
		}

		boundaryField(field, arr, w, h)
		plan.forward(field)

		for i := range field {
			field[i] /= complex(denom[i], 0)
		}
		field[0] = 0

		plan.inverse(field)

		n := float64(w * h)
		for i, a := range arr {
			out.Pix[i*3+ch] = raster.ClampUint8(a - real(field[i])/n)
		}
	}

	return out
}

// boundaryField writes into v the difference across the wrap seam on the
// border rows and columns and zero elsewhere. Row 0 carries
// arr[h-1]-arr[0] and row h-1 its negation; columns likewise. For a
// dimension of length 1 the two borders coincide and the terms cancel.
// The field must use last minus first: with first minus last, subtracting
// the smooth component widens the seam instead of closing it.
func boundaryField(v []complex128, arr []float64, w, h int) {
	for i := range v {
		v[i] = 0
	}

	top, bottom := 0, (h-1)*w
	for x := 0; x < w; x++ {
		d := arr[bottom+x] - arr[top+x]
		v[top+x] += complex(d, 0)
		v[bottom+x] -= complex(d, 0)
	}

	for y := 0; y < h; y++ {
		row := y * w
		d := arr[row+w-1] - arr[row]
		v[row] += complex(d, 0)
		v[row+w-1] -= complex(d, 0)
	}
}

// laplacianSpectrum returns the eigenvalues of the periodic 5-point
// Laplacian, 2cos(2πkx/w) + 2cos(2πky/h) - 4, laid out like the image.
// The zero frequency is set to 1 so dividing by it is always defined.
func laplacianSpectrum(w, h int) []float64 {
	cx := make([]float64, w)
	for kx := range cx {
		cx[kx] = 2 * math.Cos(2*math.Pi*float64(kx)/float64(w))
	}

	d := make([]float64, w*h)
	for ky := 0; ky < h; ky++ {
		cy := 2 * math.Cos(2*math.Pi*float64(ky)/float64(h))
		for kx := 0; kx < w; kx++ {
			d[ky*w+kx] = cx[kx] + cy - 4
		}
	}
	d[0] = 1

	return d
}

// fft2 runs unnormalized 2D complex transforms over a row-major w x h
// buffer, rows first and then columns. Axes of length 1 are skipped since
// their transform is the identity.
type fft2 struct {
	w, h   int
	rows   *fourier.CmplxFFT
	cols   *fourier.CmplxFFT
	rowOut []complex128
	colIn  []complex128
	colOut []complex128
}

func newFFT2(w, h int) *fft2 {
	f := &fft2{w: w, h: h}
	if w > 1 {
		f.rows = fourier.NewCmplxFFT(w)
		f.rowOut = make([]complex128, w)
	}
	if h > 1 {
		f.cols = fourier.NewCmplxFFT(h)
		f.colIn = make([]complex128, h)
		f.colOut = make([]complex128, h)
	}
	return f
}

func (f *fft2) forward(data []complex128) {
	f.apply(data, (*fourier.CmplxFFT).Coefficients)
}

// inverse leaves the result scaled by w*h.
func (f *fft2) inverse(data []complex128) {
	f.apply(data, (*fourier.CmplxFFT).Sequence)
}

func (f *fft2) apply(data []complex128, transform func(*fourier.CmplxFFT, []complex128, []complex128) []complex128) {
	if f.rows != nil {
		for y := 0; y < f.h; y++ {
			row := data[y*f.w : (y+1)*f.w]
			transform(f.rows, f.rowOut, row)
			copy(row, f.rowOut)
		}
	}

	if f.cols != nil {
		for x := 0; x < f.w; x++ {
			for y := 0; y < f.h; y++ {
				f.colIn[y] = data[y*f.w+x]
			}
			transform(f.cols, f.colOut, f.colIn)
			for y := 0; y < f.h; y++ {
				data[y*f.w+x] = f.colOut[y]
			}
		}
	}
}

// SeamError is the mean absolute difference between opposite borders of
// img, averaged over both seams and all channels. A perfectly tileable
// image scores 0.
func SeamError(img *raster.Image) float64 {
	if img.Empty() {
		return 0
	}
	w, h := img.Width, img.Height
	c := img.Mode.Channels()

	var sum float64
	for x := 0; x < w; x++ {
		for ch := 0; ch < c; ch++ {
			top := img.Pix[img.PixOffset(x, 0)+ch]
			bottom := img.Pix[img.PixOffset(x, h-1)+ch]
			sum += math.Abs(float64(top) - float64(bottom))
		}
	}
	for y := 0; y < h; y++ {
		for ch := 0; ch < c; ch++ {
			left := img.Pix[img.PixOffset(0, y)+ch]
			right := img.Pix[img.PixOffset(w-1, y)+ch]
			sum += math.Abs(float64(left) - float64(right))
		}
	}

	return sum / float64((w+h)*c)
}
