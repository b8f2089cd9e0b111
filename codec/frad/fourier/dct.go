// Package fourier implements the DCT-II / IDCT-II transform pair used by
// every FrAD coding profile, built on top of a length-2N complex FFT.
package fourier

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Planner computes the forward and inverse DCT-II used by FrAD's profiles.
// It is an interface so a different FFT backend can be substituted (the
// normalization is enforced at this layer, so swapping planners must not
// change wire output).
type Planner interface {
	DCT(x []float64) []float64
	IDCT(y []float64) []float64
}

// FFTPlanner implements Planner on top of github.com/mjibson/go-dsp/fft,
// the same FFT package the teacher already pulls in for fast convolution
// (codec/pcm/filters.go).
type FFTPlanner struct{}

// NewPlanner returns the default FFT-backed Planner.
func NewPlanner() *FFTPlanner { return &FFTPlanner{} }

// DCT computes the forward DCT-II of x with 1/N normalization:
//
//	y[k] = (1/N) * sum_n x[n] * cos(pi*(2n+1)*k / (2N))
//
// via a length-2N complex FFT of the even extension of x (whose rotated
// output is divided by 2N), per spec section 4.2.
func (FFTPlanner) DCT(x []float64) []float64 {
	n := len(x)
	if n == 0 {
		return nil
	}
	m := 2 * n
	beta := make([]complex128, m)
	for i, v := range x {
		beta[i] = complex(v, 0)
		beta[m-1-i] = complex(v, 0)
	}
	spec := fft.FFT(beta)

	y := make([]float64, n)
	for k := 0; k < n; k++ {
		theta := -math.Pi * float64(k) / float64(m)
		w := cmplx.Rect(1, theta)
		y[k] = real(spec[k]*w) / float64(m)
	}
	return y
}

// IDCT computes the inverse of DCT, the transpose of the forward
// transform: form alpha[k] = y[k]*e^{-i*pi*k/(2N)}, build the conjugate-
// symmetric spectrum described in spec section 4.2, and take the real
// part of the first N entries of its unnormalized ("scale 1.0") inverse
// FFT. go-dsp's IFFT divides by the transform length internally, so that
// scaling is undone here to get the unnormalized transform the spec
// calls for (the forward DCT already folded in the 1/(2N) factor).
func (FFTPlanner) IDCT(y []float64) []float64 {
	n := len(y)
	if n == 0 {
		return nil
	}
	m := 2 * n
	alpha := make([]complex128, n)
	for k, v := range y {
		theta := -math.Pi * float64(k) / float64(m)
		w := cmplx.Rect(1, theta)
		alpha[k] = complex(v, 0) * w
	}

	beta := make([]complex128, m)
	for k := 0; k < n; k++ {
		beta[k] = cmplx.Conj(alpha[k])
	}
	beta[n] = 0
	for j := 0; j < n-1; j++ {
		beta[n+1+j] = alpha[n-1-j]
	}

	back := fft.IFFT(beta)
	x := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = real(back[i]) * float64(m)
	}
	return x
}
