package dsp

import "math"

// PeakFollower tracks the envelope of an audio signal with independent
// attack and release times — a shared "how loud right now" signal, used by
// the modulation fabric's envelope followers.
type PeakFollower struct {
	attackCoeff  float64
	releaseCoeff float64
	level        float64
}

// NewPeakFollower builds a follower with attack/release times in
// milliseconds at the given sample rate.
func NewPeakFollower(attackMs, releaseMs, sampleRate float64) *PeakFollower {
	p := &PeakFollower{}
	p.SetTimes(attackMs, releaseMs, sampleRate)
	return p
}

// SetTimes recomputes the attack/release coefficients.
func (p *PeakFollower) SetTimes(attackMs, releaseMs, sampleRate float64) {
	p.attackCoeff = timeConstantCoeff(attackMs, sampleRate)
	p.releaseCoeff = timeConstantCoeff(releaseMs, sampleRate)
}

func timeConstantCoeff(ms, sampleRate float64) float64 {
	if ms <= 0 || sampleRate <= 0 {
		return 0
	}
	return math.Exp(-1.0 / (ms * 0.001 * sampleRate))
}

// Process feeds one sample (full-wave rectified internally) and returns the
// current envelope level in [0, inf).
func (p *PeakFollower) Process(x float32) float64 {
	rectified := math.Abs(float64(x))
	if rectified > p.level {
		p.level = p.attackCoeff*p.level + (1-p.attackCoeff)*rectified
	} else {
		p.level = p.releaseCoeff*p.level + (1-p.releaseCoeff)*rectified
	}
	return p.level
}

// Level returns the last computed envelope level without advancing it.
func (p *PeakFollower) Level() float64 { return p.level }

// Reset zeroes the tracked level.
func (p *PeakFollower) Reset() { p.level = 0 }
