// Package dsp holds the real-time-safe building blocks shared by every
// synthesis engine and effect: oscillators, filters, envelope followers and
// smoothed parameters. Nothing here allocates once constructed.
package dsp

import "math"

const twoPi = 2 * math.Pi

// Waveform selects the shape produced by Oscillator.Sample.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveTriangle
	WaveSawUp
	WaveSawDown
	WaveSquare
	WaveNoise
	WaveSampleHold
	WaveWavetable
)

const sineTableSize = 2048

var sineTable [sineTableSize + 1]float64

func init() {
	for i := range sineTable {
		sineTable[i] = math.Sin(twoPi * float64(i) / sineTableSize)
	}
}

func sineLookup(phase float64) float64 {
	f := phase / twoPi * sineTableSize
	i0 := int(f)
	frac := f - float64(i0)
	i0 %= sineTableSize
	if i0 < 0 {
		i0 += sineTableSize
	}
	i1 := i0 + 1
	return sineTable[i0]*(1-frac) + sineTable[i1]*frac
}

// Oscillator is a single band-limited-ish generator: phase accumulator plus
// shape selection. Frequency is set explicitly rather than recomputed every
// sample so the audio loop never does trig work it doesn't need to.
type Oscillator struct {
	sampleRate float64
	phase      float64 // radians, wraps in [0, 2pi)
	phaseInc   float64
	pulseWidth float64
	rng        LCG
	shHeld     float64
	table      []float64 // used when Waveform == WaveWavetable
}

// NewOscillator creates an oscillator at the given sample rate with a
// default 50% pulse width.
func NewOscillator(sampleRate float64) *Oscillator {
	return &Oscillator{sampleRate: sampleRate, pulseWidth: 0.5, rng: NewLCG(0x2545F4914F6CDD1D)}
}

// SetSampleRate updates the sample rate used for frequency-to-increment
// conversion; existing phase is preserved.
func (o *Oscillator) SetSampleRate(sr float64) {
	o.sampleRate = sr
}

// SetFrequency recomputes the phase increment for a new frequency in Hz.
func (o *Oscillator) SetFrequency(hz float64) {
	if o.sampleRate <= 0 {
		o.phaseInc = 0
		return
	}
	o.phaseInc = twoPi * hz / o.sampleRate
}

// SetPulseWidth clamps and stores the square-wave duty cycle, in [0.1, 0.9].
func (o *Oscillator) SetPulseWidth(pw float64) {
	if pw < 0.1 {
		pw = 0.1
	}
	if pw > 0.9 {
		pw = 0.9
	}
	o.pulseWidth = pw
}

// SetWavetable installs a single-cycle wavetable played back at the
// oscillator's current phase increment; used when shape == WaveWavetable.
func (o *Oscillator) SetWavetable(table []float64) {
	o.table = table
}

// Phase returns the current phase in [0, 2pi).
func (o *Oscillator) Phase() float64 { return o.phase }

// SetPhase forces the phase, wrapping into [0, 2pi).
func (o *Oscillator) SetPhase(p float64) {
	o.phase = math.Mod(p, twoPi)
	if o.phase < 0 {
		o.phase += twoPi
	}
}

// Sample advances the oscillator by one sample and returns the shaped
// output in [-1, 1] for the given waveform.
func (o *Oscillator) Sample(shape Waveform) float64 {
	var out float64
	frac := o.phase / twoPi
	switch shape {
	case WaveSine:
		out = sineLookup(o.phase)
	case WaveTriangle:
		if frac < 0.5 {
			out = 4*frac - 1
		} else {
			out = 3 - 4*frac
		}
	case WaveSawUp:
		out = 2*frac - 1
	case WaveSawDown:
		out = 1 - 2*frac
	case WaveSquare:
		if frac < o.pulseWidth {
			out = 1
		} else {
			out = -1
		}
	case WaveNoise:
		out = o.smoothNoiseSample()
	case WaveSampleHold:
		out = o.shHeld
	case WaveWavetable:
		out = o.wavetableSample()
	default:
		out = sineLookup(o.phase)
	}

	prevFrac := frac
	o.phase += o.phaseInc
	for o.phase >= twoPi {
		o.phase -= twoPi
	}
	for o.phase < 0 {
		o.phase += twoPi
	}
	if shape == WaveSampleHold && o.phase/twoPi < prevFrac {
		o.shHeld = o.rng.NextBipolar()
	}
	return out
}

// smoothNoiseSample produces white noise: a fresh bipolar LCG draw per
// sample, with no smoothing applied.
func (o *Oscillator) smoothNoiseSample() float64 {
	return o.rng.NextBipolar()
}

func (o *Oscillator) wavetableSample() float64 {
	if len(o.table) == 0 {
		return sineLookup(o.phase)
	}
	n := float64(len(o.table))
	pos := o.phase / twoPi * n
	i0 := int(pos) % len(o.table)
	if i0 < 0 {
		i0 += len(o.table)
	}
	i1 := (i0 + 1) % len(o.table)
	frac := pos - math.Floor(pos)
	return o.table[i0]*(1-frac) + o.table[i1]*frac
}

// UnipolarToBipolarExp maps x in [0,1] to [-1,1] with an exponential shaper;
// amount in [0,1] controls curvature (0 = linear).
func UnipolarToBipolarExp(x, amount float64) float64 {
	lin := 2*x - 1
	if amount <= 0 {
		return lin
	}
	shaped := math.Copysign(math.Pow(math.Abs(lin), 1+3*amount), lin)
	return shaped
}

// UnipolarToBipolarLog is the inverse-feeling complement of
// UnipolarToBipolarExp: it expands small values and compresses large ones.
func UnipolarToBipolarLog(x, amount float64) float64 {
	lin := 2*x - 1
	if amount <= 0 {
		return lin
	}
	shaped := math.Copysign(math.Pow(math.Abs(lin), 1/(1+3*amount)), lin)
	return shaped
}
