package effects

import "math"

// Chorus is a per-track chorus built from two independently LFO-modulated
// delay lines (one per channel, in quadrature with each other) rather than
// a single modulated line shared across both channels — that's what keeps
// the stereo image moving instead of breathing in mono.
type Chorus struct {
	bufL, bufR []float32
	posL, posR int
	size       int
	depth      float32 // modulation depth in samples
	rate       float64 // modulation rate in radians per sample
	phaseL     float64
	phaseR     float64
	feedback   float32
	wet        float32
}

// NewChorus creates a chorus effect.
// delayMs: with depthMs, sets the delay line length in ms; the modulated
// tap sweeps around the line's midpoint, about (delayMs+depthMs)/2 ms
// feedback: feedback amount 0..1
// depthMs: modulation depth in ms
// rateHz: modulation rate in Hz (typically 0.1-5Hz)
// wet: wet/dry mix 0..1
func NewChorus(sampleRate int, delayMs, feedback, depthMs, rateHz, wet float32) *Chorus {
	baseSamples := int(float64(delayMs) * float64(sampleRate) / 1000.0)
	depthSamples := float64(depthMs) * float64(sampleRate) / 1000.0
	size := baseSamples + int(depthSamples) + 2
	if size < 4 {
		size = 4
	}
	return &Chorus{
		bufL:     make([]float32, size),
		bufR:     make([]float32, size),
		size:     size,
		depth:    float32(depthSamples),
		rate:     2.0 * math.Pi * float64(rateHz) / float64(sampleRate),
		phaseR:   math.Pi / 2, // quadrature offset: R's sweep leads L's by 90 degrees
		feedback: clamp(feedback, 0, 0.9),
		wet:      clamp(wet, 0, 1),
	}
}

// tapLine reads a fractionally-delayed sample from one channel's ring
// buffer, feeds the input plus its own feedback into it, and advances that
// channel's write cursor independently of the other.
func (c *Chorus) tapLine(buf []float32, pos int, in, modSamples float32) (out float32, nextPos int) {
	buf[pos] = in

	delay := float32(c.size/2) + modSamples
	readPos := float32(pos) - delay
	for readPos < 0 {
		readPos += float32(c.size)
	}
	idx := int(readPos)
	frac := readPos - float32(idx)
	idx2 := idx + 1
	if idx2 >= c.size {
		idx2 = 0
	}
	tapped := buf[idx]*(1-frac) + buf[idx2]*frac

	buf[pos] += tapped * c.feedback
	pos++
	if pos >= c.size {
		pos = 0
	}
	return tapped, pos
}

func (c *Chorus) Process(l, r float32) (float32, float32) {
	modL := float32(math.Sin(c.phaseL)) * c.depth
	modR := float32(math.Sin(c.phaseR)) * c.depth
	c.phaseL += c.rate
	c.phaseR += c.rate
	if c.phaseL > 2*math.Pi {
		c.phaseL -= 2 * math.Pi
	}
	if c.phaseR > 2*math.Pi {
		c.phaseR -= 2 * math.Pi
	}

	delL, nextL := c.tapLine(c.bufL, c.posL, l, modL)
	delR, nextR := c.tapLine(c.bufR, c.posR, r, modR)
	c.posL, c.posR = nextL, nextR

	return l*(1-c.wet) + delL*c.wet, r*(1-c.wet) + delR*c.wet
}

func (c *Chorus) Reset() {
	for i := range c.bufL {
		c.bufL[i] = 0
		c.bufR[i] = 0
	}
	c.posL, c.posR = 0, 0
	c.phaseL = 0
	c.phaseR = math.Pi / 2
}
