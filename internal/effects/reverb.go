package effects

import "github.com/grainlab/groove-core/internal/dsp"

// Reverb is the master bus reverb: four parallel comb
// filters per channel (with a one-pole damper inside each comb's feedback
// loop) feeding two series all-passes. Left and right run independent comb
// banks at slightly different delay lengths so the tail doesn't collapse
// to mono.
type Reverb struct {
	combsL, combsR [4]damperComb
	apL1, apL2     allpassFilter
	apR1, apR2     allpassFilter
	wet            float32
}

var combDelaysMsL = [4]float64{29.7, 37.1, 41.1, 43.7}
var combDelaysMsR = [4]float64{30.5, 36.4, 40.8, 42.9}

const (
	reverbCombFeedback   = 0.85
	reverbDamperCutoffHz = 5000
	reverbAP1Ms          = 5.0
	reverbAP2Ms          = 1.7
	reverbAPFeedback     = 0.7
)

// NewReverb builds the fixed-topology master reverb at sampleRate with the
// given wet/dry mix.
func NewReverb(sampleRate int, wet float32) *Reverb {
	r := &Reverb{wet: clamp(wet, 0, 1)}
	sr := float64(sampleRate)
	for i := 0; i < 4; i++ {
		r.combsL[i] = newDamperComb(msToSamples(combDelaysMsL[i], sr), reverbCombFeedback, sr)
		r.combsR[i] = newDamperComb(msToSamples(combDelaysMsR[i], sr), reverbCombFeedback, sr)
	}
	r.apL1 = newAllpass(msToSamples(reverbAP1Ms, sr), reverbAPFeedback)
	r.apL2 = newAllpass(msToSamples(reverbAP2Ms, sr), reverbAPFeedback)
	r.apR1 = newAllpass(msToSamples(reverbAP1Ms, sr), reverbAPFeedback)
	r.apR2 = newAllpass(msToSamples(reverbAP2Ms, sr), reverbAPFeedback)
	return r
}

func msToSamples(ms, sampleRate float64) int {
	n := int(ms * sampleRate / 1000)
	if n < 1 {
		n = 1
	}
	return n
}

// SetWet updates the wet/dry mix.
func (r *Reverb) SetWet(wet float32) { r.wet = clamp(wet, 0, 1) }

// ProcessWet renders the fully-wet reverb tail for l, r without mixing in
// dry signal, so callers (the master bus) can combine it with the shimmer
// tap before applying the single overall wet/dry blend.
func (r *Reverb) ProcessWet(l, r2 float32) (float32, float32) {
	var outL, outR float32
	for i := range r.combsL {
		outL += r.combsL[i].process(l)
		outR += r.combsR[i].process(r2)
	}
	outL *= 0.25
	outR *= 0.25
	outL = r.apL1.process(outL)
	outL = r.apL2.process(outL)
	outR = r.apR1.process(outR)
	outR = r.apR2.process(outR)
	return outL, outR
}

// Process applies the reverb's own wet/dry blend in isolation; the master
// bus instead calls ProcessWet directly so it can fold shimmer into the
// same wet signal before blending once: out = dry*(1-wet) + (rev+shimmer)*wet.
func (r *Reverb) Process(l, r2 float32) (float32, float32) {
	wetL, wetR := r.ProcessWet(l, r2)
	return l*(1-r.wet) + wetL*r.wet, r2*(1-r.wet) + wetR*r.wet
}

func (r *Reverb) Reset() {
	for i := range r.combsL {
		r.combsL[i].reset()
		r.combsR[i].reset()
	}
	r.apL1.reset()
	r.apL2.reset()
	r.apR1.reset()
	r.apR2.reset()
}

// damperComb is a comb filter with a one-pole low-pass damper inside its
// feedback loop, so the reverb tail darkens as it decays instead of
// ringing indefinitely at full bandwidth.
type damperComb struct {
	buf    []float32
	pos    int
	fb     float32
	damper dsp.OnePole
}

func newDamperComb(delaySamples int, feedback, sampleRate float64) damperComb {
	c := damperComb{buf: make([]float32, delaySamples), fb: float32(feedback)}
	c.damper.SetCutoff(reverbDamperCutoffHz, sampleRate)
	return c
}

func (c *damperComb) process(in float32) float32 {
	out := c.buf[c.pos]
	damped := c.damper.Process(out)
	c.buf[c.pos] = in + damped*c.fb
	c.pos++
	if c.pos >= len(c.buf) {
		c.pos = 0
	}
	return out
}

func (c *damperComb) reset() {
	for i := range c.buf {
		c.buf[i] = 0
	}
	c.pos = 0
	c.damper.Reset()
}

type allpassFilter struct {
	buf []float32
	pos int
	fb  float32
}

func newAllpass(delaySamples int, feedback float64) allpassFilter {
	return allpassFilter{buf: make([]float32, delaySamples), fb: float32(feedback)}
}

func (a *allpassFilter) process(in float32) float32 {
	bufOut := a.buf[a.pos]
	out := -in + bufOut
	a.buf[a.pos] = in + bufOut*a.fb
	a.pos++
	if a.pos >= len(a.buf) {
		a.pos = 0
	}
	return out
}

func (a *allpassFilter) reset() {
	for i := range a.buf {
		a.buf[i] = 0
	}
	a.pos = 0
}
