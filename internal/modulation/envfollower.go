package modulation

import "github.com/grainlab/groove-core/internal/dsp"

// EnvFollower tracks an audio signal's amplitude for use as a modulation
// source (the ENV1..3 sources), wrapping the shared peak-follower
// primitive with a [0,1] output range.
type EnvFollower struct {
	follower *dsp.PeakFollower
	gain     float64
}

// NewEnvFollower builds a follower with the given attack/release times in
// milliseconds.
func NewEnvFollower(attackMs, releaseMs, sampleRate float64) *EnvFollower {
	return &EnvFollower{follower: dsp.NewPeakFollower(attackMs, releaseMs, sampleRate), gain: 4}
}

// Feed processes one audio-rate sample and returns the current tracked
// level, clamped to [0,1].
func (e *EnvFollower) Feed(x float32) float64 {
	lvl := e.follower.Process(x) * e.gain
	if lvl > 1 {
		lvl = 1
	}
	return lvl
}

// Level returns the last computed level without advancing.
func (e *EnvFollower) Level() float64 {
	lvl := e.follower.Level() * e.gain
	if lvl > 1 {
		lvl = 1
	}
	return lvl
}

// SetGain scales the raw peak-follower reading before clamping; lets a
// quiet source still reach full modulation depth.
func (e *EnvFollower) SetGain(g float64) { e.gain = g }
