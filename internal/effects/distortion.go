package effects

import "math"

// Distortion is an optional per-track drive stage: tanh waveshaping
// bracketed by pre/post gain, with an optional one-pole low-pass tail to
// tame the harmonics clipping introduces. Folded into the per-track FX
// chain alongside Chorus/GentleChorus/Filter rather than standing alone.
type Distortion struct {
	preGain, postGain float32
	lpf               onePoleState
}

// onePoleState is the distortion stage's own smoothing tail; kept local
// instead of reusing dsp.OnePole so a disabled filter (lpfCutoff<=0) costs
// nothing beyond a zero alpha check.
type onePoleState struct {
	alpha  float32
	left   float32
	right  float32
}

// NewDistortion builds a drive stage. preGain drives the tanh curve harder
// the higher it is; postGain trims the makeup level; lpfCutoff in Hz tames
// the output above that frequency, or 0 to skip filtering entirely.
func NewDistortion(sampleRate int, preGain, postGain, lpfCutoff float32) *Distortion {
	d := &Distortion{preGain: preGain, postGain: postGain}
	if lpfCutoff > 0 && lpfCutoff < float32(sampleRate)/2 {
		dt := 1.0 / float64(sampleRate)
		rc := 1.0 / (2.0 * math.Pi * float64(lpfCutoff))
		d.lpf.alpha = float32(dt / (rc + dt))
	}
	return d
}

func (d *Distortion) Process(l, r float32) (float32, float32) {
	l = float32(math.Tanh(float64(l*d.preGain))) * d.postGain
	r = float32(math.Tanh(float64(r*d.preGain))) * d.postGain
	if d.lpf.alpha <= 0 {
		return l, r
	}
	d.lpf.left += d.lpf.alpha * (l - d.lpf.left)
	d.lpf.right += d.lpf.alpha * (r - d.lpf.right)
	return d.lpf.left, d.lpf.right
}

func (d *Distortion) Reset() {
	d.lpf.left = 0
	d.lpf.right = 0
}
