package effects

import "github.com/grainlab/groove-core/internal/dsp"

const tiltHingeHz = 1600

// Tilt is a tilt EQ: a single pivot frequency where bass and treble gain
// move in opposite directions around it, driven by one knob in [0, 1]
// (0 = full bass boost, 0.5 = neutral, 1 = full treble boost). Each channel
// splits into bass/treble with an independent one-pole low-pass; the treble
// side is the complement (input minus bass).
type Tilt struct {
	lpL, lpR dsp.OnePole
	amount   float32 // [0,1], 0.5 neutral
}

func NewTilt(sampleRate int) *Tilt {
	t := &Tilt{amount: 0.5}
	t.lpL.SetCutoff(tiltHingeHz, float64(sampleRate))
	t.lpR.SetCutoff(tiltHingeHz, float64(sampleRate))
	return t
}

// SetAmount sets the tilt knob in [0, 1].
func (t *Tilt) SetAmount(amount float32) {
	t.amount = clamp(amount, 0, 1)
}

func (t *Tilt) gains() (bassGain, trebleGain float32) {
	bassGain = 1 + (0.5-t.amount)*0.6
	trebleGain = 1 + (t.amount-0.5)*0.6
	return
}

func (t *Tilt) Process(l, r float32) (float32, float32) {
	bassGain, trebleGain := t.gains()
	bassL := t.lpL.Process(l)
	trebleL := l - bassL
	bassR := t.lpR.Process(r)
	trebleR := r - bassR
	return bassL*bassGain + trebleL*trebleGain, bassR*bassGain + trebleR*trebleGain
}

func (t *Tilt) Reset() {
	t.lpL.Reset()
	t.lpR.Reset()
}
