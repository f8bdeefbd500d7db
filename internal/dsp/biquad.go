package dsp

import "math"

// BiquadType selects which RBJ cookbook formula FilterCoeffs computes.
type BiquadType int

const (
	BiquadBell BiquadType = iota
	BiquadLowShelf
	BiquadHighShelf
	BiquadLowPass
	BiquadHighPass
	BiquadNotch
	BiquadAllPass
)

// Biquad is a direct-form-I biquad section, the workhorse behind the
// parametric EQ bands, per-track filters and the engines' resonators (the
// master tilt/lowpass stages use OnePole instead). Coefficients are computed with the RBJ Audio EQ Cookbook formulas.
type Biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
	x1, x2     float64
	y1, y2     float64
}

// SetCoeffs configures the section for the given RBJ filter type at
// sampleRate Hz, center/corner frequency freqHz, Q, and gain in dB (gainDB is
// only meaningful for Bell/Shelf types).
func (b *Biquad) SetCoeffs(kind BiquadType, sampleRate, freqHz, q, gainDB float64) {
	if sampleRate <= 0 {
		return
	}
	if freqHz < 1 {
		freqHz = 1
	}
	if freqHz > sampleRate/2-1 {
		freqHz = sampleRate/2 - 1
	}
	if q < 0.01 {
		q = 0.01
	}

	omega := twoPi * freqHz / sampleRate
	sinW, cosW := math.Sin(omega), math.Cos(omega)
	alpha := sinW / (2 * q)
	a := math.Pow(10, gainDB/40)

	var b0, b1, b2, a0, a1, a2 float64
	switch kind {
	case BiquadBell:
		b0 = 1 + alpha*a
		b1 = -2 * cosW
		b2 = 1 - alpha*a
		a0 = 1 + alpha/a
		a1 = -2 * cosW
		a2 = 1 - alpha/a
	case BiquadLowShelf:
		sq := math.Sqrt(a)
		b0 = a * ((a + 1) - (a-1)*cosW + 2*sq*alpha)
		b1 = 2 * a * ((a - 1) - (a+1)*cosW)
		b2 = a * ((a + 1) - (a-1)*cosW - 2*sq*alpha)
		a0 = (a + 1) + (a-1)*cosW + 2*sq*alpha
		a1 = -2 * ((a - 1) + (a+1)*cosW)
		a2 = (a + 1) + (a-1)*cosW - 2*sq*alpha
	case BiquadHighShelf:
		sq := math.Sqrt(a)
		b0 = a * ((a + 1) + (a-1)*cosW + 2*sq*alpha)
		b1 = -2 * a * ((a - 1) + (a+1)*cosW)
		b2 = a * ((a + 1) + (a-1)*cosW - 2*sq*alpha)
		a0 = (a + 1) - (a-1)*cosW + 2*sq*alpha
		a1 = 2 * ((a - 1) - (a+1)*cosW)
		a2 = (a + 1) - (a-1)*cosW - 2*sq*alpha
	case BiquadLowPass:
		b0 = (1 - cosW) / 2
		b1 = 1 - cosW
		b2 = (1 - cosW) / 2
		a0 = 1 + alpha
		a1 = -2 * cosW
		a2 = 1 - alpha
	case BiquadHighPass:
		b0 = (1 + cosW) / 2
		b1 = -(1 + cosW)
		b2 = (1 + cosW) / 2
		a0 = 1 + alpha
		a1 = -2 * cosW
		a2 = 1 - alpha
	case BiquadNotch:
		b0 = 1
		b1 = -2 * cosW
		b2 = 1
		a0 = 1 + alpha
		a1 = -2 * cosW
		a2 = 1 - alpha
	case BiquadAllPass:
		b0 = 1 - alpha
		b1 = -2 * cosW
		b2 = 1 + alpha
		a0 = 1 + alpha
		a1 = -2 * cosW
		a2 = 1 - alpha
	}

	b.b0, b.b1, b.b2 = b0/a0, b1/a0, b2/a0
	b.a1, b.a2 = a1/a0, a2/a0
}

// Process filters a single sample through the direct-form-I difference
// equation.
func (b *Biquad) Process(x float32) float32 {
	xf := float64(x)
	y := b.b0*xf + b.b1*b.x1 + b.b2*b.x2 - b.a1*b.y1 - b.a2*b.y2
	b.x2, b.x1 = b.x1, xf
	b.y2, b.y1 = b.y1, y
	return float32(y)
}

// Reset zeroes the filter's memory without touching its coefficients.
func (b *Biquad) Reset() {
	b.x1, b.x2, b.y1, b.y2 = 0, 0, 0, 0
}
