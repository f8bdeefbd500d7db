package effects

import "github.com/grainlab/groove-core/internal/dsp"

// Filter is the per-track chain's tone-shaping stage: a single switchable
// lowpass/highpass biquad, independent of the master bus's tilt/parametric
// EQ/lowpass stages.
type Filter struct {
	sampleRate float64
	kind       dsp.BiquadType
	freq, q    float64
	bqL, bqR   dsp.Biquad
}

func NewFilter(sampleRate int) *Filter {
	f := &Filter{sampleRate: float64(sampleRate), kind: dsp.BiquadLowPass, freq: 20000, q: 0.707}
	f.apply()
	return f
}

func (f *Filter) apply() {
	f.bqL.SetCoeffs(f.kind, f.sampleRate, f.freq, f.q, 0)
	f.bqR.SetCoeffs(f.kind, f.sampleRate, f.freq, f.q, 0)
}

// SetLowpass switches to lowpass mode at the given cutoff and Q.
func (f *Filter) SetLowpass(cutoffHz, q float64) {
	f.kind, f.freq, f.q = dsp.BiquadLowPass, cutoffHz, q
	f.apply()
}

// SetHighpass switches to highpass mode at the given cutoff and Q.
func (f *Filter) SetHighpass(cutoffHz, q float64) {
	f.kind, f.freq, f.q = dsp.BiquadHighPass, cutoffHz, q
	f.apply()
}

func (f *Filter) Process(l, r float32) (float32, float32) {
	return f.bqL.Process(l), f.bqR.Process(r)
}

func (f *Filter) Reset() {
	f.bqL.Reset()
	f.bqR.Reset()
}
