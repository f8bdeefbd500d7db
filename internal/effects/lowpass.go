package effects

import "github.com/grainlab/groove-core/internal/dsp"

// Lowpass is the master bus's one-pole lowpass stage. Its cutoff runs from
// 20kHz down to 200Hz as the lpf knob goes from 0 to 1, with a small gain
// boost to compensate for the perceived loss of loudness as highs are
// removed.
type Lowpass struct {
	sampleRate float64
	lpL, lpR   dsp.OnePole
	lpf        float32
	gain       float32
}

func NewLowpass(sampleRate int) *Lowpass {
	lp := &Lowpass{sampleRate: float64(sampleRate), gain: 1}
	lp.SetAmount(0)
	return lp
}

// SetAmount sets the lpf knob in [0, 1]; 0 is the lightest setting
// (cutoff at 20kHz, unity gain), 1 is maximally dark.
func (lp *Lowpass) SetAmount(lpf float32) {
	lp.lpf = clamp(lpf, 0, 1)
	fc := 20000 - float64(lp.lpf)*19800
	lp.lpL.SetCutoff(fc, lp.sampleRate)
	lp.lpR.SetCutoff(fc, lp.sampleRate)
	lp.gain = 1 + lp.lpf*0.8
}

func (lp *Lowpass) Process(l, r float32) (float32, float32) {
	return lp.lpL.Process(l) * lp.gain, lp.lpR.Process(r) * lp.gain
}

func (lp *Lowpass) Reset() {
	lp.lpL.Reset()
	lp.lpR.Reset()
}
