// Package analyzer implements the windowed spectral-feature analyzer that
// closes the loop to adaptive automation: a rolling input ring, an FFT, Bark
// bands, display bars and derived audio features.
//
// No FFT library appears anywhere in the example pack's go.mod files (see
// DESIGN.md), and the choice of FFT implementation is left open — any
// transform of equivalent size is interchangeable — so this is one of the
// few places the module reaches for a from-scratch stdlib routine rather
// than a pack dependency.
package analyzer

import "math"

// FFTSize and Bins are fixed. Bins excludes the Nyquist bin (FFTSize/2) to
// match the frame's literal 512-wide magnitude array; the Nyquist component
// itself carries negligible energy for audio-rate content and is dropped
// rather than the DC bin.
const (
	FFTSize = 1024
	Bins    = FFTSize / 2
)

// complex128 pair kept as parallel float64 slices rather than the built-in
// complex128 type so the in-place radix-2 butterfly never allocates.
type fftBuffers struct {
	re, im []float64
}

func newFFTBuffers(n int) fftBuffers {
	return fftBuffers{re: make([]float64, n), im: make([]float64, n)}
}

// bitReverseIndices precomputes the bit-reversal permutation for an
// n = FFTSize (power-of-two) transform.
func bitReverseIndices(n int) []int {
	bits := int(math.Log2(float64(n)))
	idx := make([]int, n)
	for i := range idx {
		idx[i] = reverseBits(i, bits)
	}
	return idx
}

func reverseBits(x, bits int) int {
	r := 0
	for i := 0; i < bits; i++ {
		r = (r << 1) | (x & 1)
		x >>= 1
	}
	return r
}

// forwardReal computes an in-place iterative radix-2 FFT of a real-valued
// windowed input of length FFTSize, leaving the full complex spectrum in
// buf.re/buf.im (buf.re is overwritten with the input on entry).
func forwardReal(input []float64, buf fftBuffers, bitrev []int) {
	n := len(input)
	for i, bi := range bitrev {
		buf.re[i] = input[bi]
		buf.im[i] = 0
	}
	for size := 2; size <= n; size <<= 1 {
		half := size / 2
		angleStep := -2 * math.Pi / float64(size)
		for start := 0; start < n; start += size {
			for k := 0; k < half; k++ {
				angle := angleStep * float64(k)
				wr, wi := math.Cos(angle), math.Sin(angle)
				evenI, oddI := start+k, start+k+half
				tr := wr*buf.re[oddI] - wi*buf.im[oddI]
				ti := wr*buf.im[oddI] + wi*buf.re[oddI]
				buf.re[oddI] = buf.re[evenI] - tr
				buf.im[oddI] = buf.im[evenI] - ti
				buf.re[evenI] += tr
				buf.im[evenI] += ti
			}
		}
	}
}

// hannWindow returns a precomputed Hann window of length n.
func hannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}
