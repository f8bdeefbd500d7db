package dsp

import "math"

// OnePole is a one-pole low/high-pass filter using the standard
// alpha = dt/(rc+dt) coefficient.
type OnePole struct {
	alpha   float64
	state   float64
	highPas bool
}

// NewOnePoleLowPass builds a one-pole low-pass at the given corner
// frequency and sample rate.
func NewOnePoleLowPass(cutoffHz, sampleRate float64) *OnePole {
	p := &OnePole{}
	p.SetCutoff(cutoffHz, sampleRate)
	return p
}

// NewOnePoleHighPass builds a one-pole high-pass (implemented as input
// minus the low-passed signal) at the given corner frequency.
func NewOnePoleHighPass(cutoffHz, sampleRate float64) *OnePole {
	p := &OnePole{highPas: true}
	p.SetCutoff(cutoffHz, sampleRate)
	return p
}

// SetCutoff recomputes alpha for a new corner frequency.
func (p *OnePole) SetCutoff(cutoffHz, sampleRate float64) {
	if cutoffHz <= 0 || sampleRate <= 0 {
		p.alpha = 1
		return
	}
	dt := 1.0 / sampleRate
	rc := 1.0 / (twoPi * cutoffHz)
	p.alpha = dt / (rc + dt)
}

// Process advances the filter by one sample.
func (p *OnePole) Process(x float32) float32 {
	xf := float64(x)
	p.state += p.alpha * (xf - p.state)
	if p.highPas {
		return float32(xf - p.state)
	}
	return float32(p.state)
}

// Reset zeroes the filter's held state.
func (p *OnePole) Reset() {
	p.state = 0
}

// ClampUnit clamps x into [-limit, limit]; used by the limiter and anywhere
// else hard clipping beats overflow.
func ClampUnit(x, limit float32) float32 {
	if x > limit {
		return limit
	}
	if x < -limit {
		return -limit
	}
	return x
}

// ExpDecay returns e^-k, the per-tick multiplier an exponential release
// ramp applies for a tick spanning a fraction k of its time constant.
func ExpDecay(k float64) float64 {
	return math.Exp(-k)
}

// DbToLinear converts a decibel gain to a linear amplitude multiplier.
func DbToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDb converts a linear amplitude multiplier to decibels; returns a
// large negative number instead of -Inf for a zero input.
func LinearToDb(lin float64) float64 {
	if lin <= 1e-9 {
		return -180
	}
	return 20 * math.Log10(lin)
}
