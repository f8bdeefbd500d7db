package modulation

import (
	"math"

	"github.com/grainlab/groove-core/internal/dsp"
	"github.com/grainlab/groove-core/internal/voice"
)

// LFOWaveform selects the shape an LFO samples each update tick.
type LFOWaveform int

const (
	LFOSine LFOWaveform = iota
	LFOTriangle
	LFOSawUp
	LFOSawDown
	LFOSquare
	LFORandom
)

// SyncMode selects whether an LFO runs at a free-running rate in Hz or
// tracks the sequencer's tempo via a clock division.
type SyncMode int

const (
	SyncFree SyncMode = iota
	SyncTempo
)

// LFO is a tempo-syncable, FM/AM-modulatable low-frequency oscillator with
// an optional envelope sub-mode that replaces waveform sampling with an
// internal ADSR.
type LFO struct {
	Waveform       LFOWaveform
	Sync           SyncMode
	ClockDivision  float64 // cycles per beat when Sync == SyncTempo, e.g. 4 = one cycle per 1/16 note
	RateHz         float64
	Depth          float64 // [0,1]
	Offset         float64
	Bipolar        bool
	Invert         bool
	PulseWidth     float64
	Smooth         float64 // [0,1], crossfades toward a one-pole-smoothed output
	FMAmount       float64
	AMAmount       float64
	PhaseRandom    float64
	RateRandom     float64
	Enabled        bool
	Retrigger      bool

	// Envelope sub-mode: when EnvelopeMode is true the waveform is ignored
	// and output is driven directly by env.
	EnvelopeMode bool
	env          *voice.ADSR

	phase      float64 // [0,1)
	sampleRate float64
	rng        dsp.LCG
	shHeld     float64
	lastOut    float64
	smoothed   float64
}

// NewLFO builds a free-running sine LFO at 1 Hz.
func NewLFO(sampleRate float64) *LFO {
	l := &LFO{
		Waveform: LFOSine, Sync: SyncFree, RateHz: 1, Depth: 1, PulseWidth: 0.5,
		Enabled: true, sampleRate: sampleRate, rng: dsp.NewLCG(0xA5A5A5A5),
		env: voice.NewADSR(sampleRate),
	}
	return l
}

// SetSampleRate updates the update-rate this LFO is ticked at.
func (l *LFO) SetSampleRate(sr float64) {
	l.sampleRate = sr
	l.env.SetSampleRate(sr)
}

// SetEnvelope configures the sub-mode ADSR's stage times.
func (l *LFO) SetEnvelope(attack, decay, sustain, release float64) {
	l.env.SetADSR(attack, decay, sustain, release)
}

// Trigger resets phase to 0 (or a random phase if PhaseRandom > 0) and, in
// envelope sub-mode, re-triggers the internal ADSR.
func (l *LFO) Trigger() {
	if l.PhaseRandom > 0 {
		l.phase = l.rng.NextUnipolar() * l.PhaseRandom
	} else {
		l.phase = 0
	}
	if l.EnvelopeMode {
		l.env.NoteOn()
	}
}

// Advance moves the LFO forward by dt seconds (one update-tick interval),
// applying fmInput to the rate and amInput to the output amplitude, and
// returns the new bipolar-or-unipolar sample per Bipolar. tempoBPM is the
// sequencer's current tempo, consulted only when Sync == SyncTempo.
func (l *LFO) Advance(dt, tempoBPM, fmInput, amInput float64) float64 {
	if !l.Enabled {
		return l.Offset
	}

	rate := l.effectiveRate(tempoBPM)
	rate *= 1 + l.FMAmount*fmInput

	var raw float64
	if l.EnvelopeMode {
		raw = l.env.Next()*2 - 1
	} else {
		l.phase += rate * dt
		for l.phase >= 1 {
			l.phase -= 1
		}
		for l.phase < 0 {
			l.phase += 1
		}
		raw = l.sampleWaveform(l.phase)
	}

	if l.Invert {
		raw = -raw
	}

	out := raw * l.Depth * (1 + l.AMAmount*amInput)

	if l.Smooth > 0 {
		alpha := 1 - l.Smooth*0.98
		l.smoothed += alpha * (out - l.smoothed)
		out = out*(1-l.Smooth) + l.smoothed*l.Smooth
	}

	if !l.Bipolar {
		out = (out + 1) / 2
	}
	out += l.Offset
	l.lastOut = out
	return out
}

// Last returns the most recently computed output without advancing phase.
func (l *LFO) Last() float64 { return l.lastOut }

// effectiveRate returns the rate in Hz this tick should advance phase at:
// RateHz when free-running, or tempoBPM*ClockDivision converted to Hz when
// Sync == SyncTempo, either way with RateRandom jitter applied on top.
func (l *LFO) effectiveRate(tempoBPM float64) float64 {
	rate := l.RateHz
	if l.Sync == SyncTempo {
		rate = TempoToRateHz(tempoBPM, l.ClockDivision)
	}
	if l.RateRandom > 0 {
		rate *= 1 + (l.rng.NextBipolar())*l.RateRandom
	}
	return rate
}

// sampleWaveform evaluates the selected shape at phase p in [0,1).
func (l *LFO) sampleWaveform(p float64) float64 {
	switch l.Waveform {
	case LFOSine:
		return math.Sin(2 * math.Pi * p)
	case LFOTriangle:
		if p < 0.5 {
			return 4*p - 1
		}
		return 3 - 4*p
	case LFOSawUp:
		return 2*p - 1
	case LFOSawDown:
		return 1 - 2*p
	case LFOSquare:
		if p < l.PulseWidth {
			return 1
		}
		return -1
	case LFORandom:
		if p < 1.0/l.sampleRateSafeDiv() {
			l.shHeld = l.rng.NextBipolar()
		}
		return l.shHeld
	default:
		return math.Sin(2 * math.Pi * p)
	}
}

func (l *LFO) sampleRateSafeDiv() float64 {
	if l.sampleRate <= 0 {
		return 1000
	}
	return l.sampleRate
}

// TempoToRateHz converts a BPM and clock division into an equivalent free
// rate in Hz, matching the `(tempo/60) * clock_div_multiplier` rule.
func TempoToRateHz(bpm, clockDivMultiplier float64) float64 {
	return (bpm / 60.0) * clockDivMultiplier
}

// PhaseShift applies a phase offset to a bipolar LFO sample via
// arcsine-then-sine: recover the underlying angle, add the offset, and
// resample sine at the shifted angle.
func PhaseShift(sample, phaseOffsetRadians float64) float64 {
	clamped := sample
	if clamped > 1 {
		clamped = 1
	}
	if clamped < -1 {
		clamped = -1
	}
	theta := math.Asin(clamped)
	return math.Sin(theta + phaseOffsetRadians)
}
