package effects

import (
	"math"

	"github.com/grainlab/groove-core/internal/dsp"
)

// GentleChorus is the soft, track-level alternative to Chorus: its
// modulation LFO is shaped through a squared-Hann window instead of a raw
// sine, rounding off the sweep's turnarounds, and its output passes
// through a one-pole low-pass at 8kHz to tame the shimmer of high
// harmonics that a straight chorus can bring out.
type GentleChorus struct {
	bufL, bufR []float32
	pos        int
	size       int
	depth      float32
	phaseStep  float64
	phase      float64
	feedback float32
	wet      float32
	hfLimitL dsp.OnePole
	hfLimitR dsp.OnePole
}

func NewGentleChorus(sampleRate int, delayMs, feedback, depthMs, rateHz, wet float32) *GentleChorus {
	baseSamples := int(float64(delayMs) * float64(sampleRate) / 1000.0)
	depthSamples := float64(depthMs) * float64(sampleRate) / 1000.0
	size := baseSamples + int(depthSamples) + 2
	if size < 4 {
		size = 4
	}
	gc := &GentleChorus{
		bufL:      make([]float32, size),
		bufR:      make([]float32, size),
		size:      size,
		depth:     float32(depthSamples),
		phaseStep: float64(rateHz) / float64(sampleRate),
		feedback:  clamp(feedback, 0, 0.9),
		wet:       clamp(wet, 0, 1),
	}
	gc.hfLimitL.SetCutoff(8000, float64(sampleRate))
	gc.hfLimitR.SetCutoff(8000, float64(sampleRate))
	return gc
}

// lfoValue converts the running [0,1) phase into a bipolar squared-Hann
// sweep: the window shape used as an oscillator rather than a taper.
func (gc *GentleChorus) lfoValue() float32 {
	hann := 0.5 - 0.5*math.Cos(2*math.Pi*gc.phase)
	return float32(hann*hann)*2 - 1
}

func (gc *GentleChorus) Process(l, r float32) (float32, float32) {
	mod := gc.lfoValue() * gc.depth
	gc.phase += gc.phaseStep
	if gc.phase >= 1 {
		gc.phase -= 1
	}

	gc.bufL[gc.pos] = l
	gc.bufR[gc.pos] = r

	delay := float32(gc.size/2) + mod
	readPos := float32(gc.pos) - delay
	for readPos < 0 {
		readPos += float32(gc.size)
	}
	idx := int(readPos)
	frac := readPos - float32(idx)
	idx2 := idx + 1
	if idx2 >= gc.size {
		idx2 = 0
	}
	delL := gc.bufL[idx]*(1-frac) + gc.bufL[idx2]*frac
	delR := gc.bufR[idx]*(1-frac) + gc.bufR[idx2]*frac

	gc.bufL[gc.pos] += delL * gc.feedback
	gc.bufR[gc.pos] += delR * gc.feedback

	gc.pos++
	if gc.pos >= gc.size {
		gc.pos = 0
	}

	outL := l*(1-gc.wet) + delL*gc.wet
	outR := r*(1-gc.wet) + delR*gc.wet
	return gc.hfLimitL.Process(outL), gc.hfLimitR.Process(outR)
}

func (gc *GentleChorus) Reset() {
	for i := range gc.bufL {
		gc.bufL[i] = 0
		gc.bufR[i] = 0
	}
	gc.pos = 0
	gc.phase = 0
	gc.hfLimitL.Reset()
	gc.hfLimitR.Reset()
}
