// Package engines provides the concrete synthesis-engine variants: one
// struct per engine type, each implementing voice.SynthEngine. Every engine
// owns exactly one note's worth of state because it's wrapped by exactly
// one voice.Voice; "active/max voice count" on the interface reports 1/1
// except for the chord engine, which genuinely stacks several oscillators
// per note.
package engines

import (
	"encoding/binary"
	"math"

	"github.com/grainlab/groove-core/internal/voice"
)

// noteToHz converts a MIDI note number to frequency using A4=69=440Hz.
func noteToHz(note int) float64 {
	return 440 * math.Pow(2, float64(note-69)/12)
}

// base carries the fields every engine needs regardless of its synthesis
// method: note lifecycle, sample rate/buffer size, the shared per-voice
// envelope, and a fixed-size parameter/modulation table addressed by
// voice.ParameterID so no engine allocates on a parameter change.
type base struct {
	note       int
	velocity   float64
	aftertouch float64
	active     bool

	sampleRate float64
	bufferSize int

	env *voice.ADSR

	params [voice.ParamCount]float64
	modAmt [voice.ParamCount]float64

	slideFrom    float64
	slideTo      float64
	slideLeft    int
	slideStep    float64
	slideArmTime float64
}

// SetPortamento arms the slide time in seconds for the next NoteOn; the
// sequencer calls this ahead of NoteOn when a step carries the SLIDE flag.
func (b *base) SetPortamento(seconds float64) {
	b.slideArmTime = seconds
}

func newBase(sampleRate float64) base {
	b := base{sampleRate: sampleRate, bufferSize: 256}
	b.params[voice.ParamVolume] = 0.8
	b.params[voice.ParamAttack] = 0.01
	b.params[voice.ParamDecay] = 0.1
	b.params[voice.ParamSustain] = 0.7
	b.params[voice.ParamRelease] = 0.2
	b.params[voice.ParamFilterCutoff] = 1.0
	b.params[voice.ParamFilterResonance] = 0.2
	b.params[voice.ParamPan] = 0.5
	return b
}

func (b *base) AttachEnvelope(env *voice.ADSR) { b.env = env }

func (b *base) applyADSRParams() {
	if b.env == nil {
		return
	}
	attack := b.params[voice.ParamAttack]
	decay := b.params[voice.ParamDecay]
	sustain := b.params[voice.ParamSustain]
	release := b.params[voice.ParamRelease]
	b.env.SetADSR(attack, decay, sustain, release)
}

func (b *base) noteOnCommon(note int, velocity, aftertouch float64) {
	b.note = note
	b.velocity = velocity
	b.aftertouch = aftertouch
	b.active = true
	b.applyADSRParams()
}

func (b *base) NoteOff(note int) {
	if b.note == note {
		// envelope release is driven by the owning Voice; nothing else to do.
	}
}

func (b *base) SetAftertouch(note int, value float64) {
	if b.note == note {
		b.aftertouch = value
	}
}

func (b *base) AllNotesOff() {
	b.active = false
}

func (b *base) SetParameter(id voice.ParameterID, v float64) {
	if id < 0 || int(id) >= voice.ParamCount {
		return
	}
	b.params[id] = v
	if id == voice.ParamAttack || id == voice.ParamDecay || id == voice.ParamSustain || id == voice.ParamRelease {
		b.applyADSRParams()
	}
}

func (b *base) GetParameter(id voice.ParameterID) float64 {
	if id < 0 || int(id) >= voice.ParamCount {
		return 0
	}
	return b.params[id]
}

func (b *base) SetModulation(id voice.ParameterID, amount float64) {
	if id < 0 || int(id) >= voice.ParamCount {
		return
	}
	b.modAmt[id] = amount
}

func (b *base) modulated(id voice.ParameterID) float64 {
	return b.params[id] + b.modAmt[id]
}

func (b *base) ActiveVoiceCount() int {
	if b.active {
		return 1
	}
	return 0
}

func (b *base) MaxVoiceCount() int { return 1 }

func (b *base) SetSampleRate(sr float64) {
	b.sampleRate = sr
	if b.env != nil {
		b.env.SetSampleRate(sr)
	}
}

func (b *base) SetBufferSize(n int) { b.bufferSize = n }

// beginSlide arms a linear portamento from the previous held frequency to
// target over seconds, per the sequencer's SLIDE directive.
func (b *base) beginSlide(fromHz, toHz, seconds float64) {
	if seconds <= 0 || b.sampleRate <= 0 {
		b.slideFrom, b.slideTo, b.slideLeft = toHz, toHz, 0
		return
	}
	b.slideFrom = fromHz
	b.slideTo = toHz
	b.slideLeft = int(seconds * b.sampleRate)
	if b.slideLeft < 1 {
		b.slideLeft = 1
	}
	b.slideStep = (toHz - fromHz) / float64(b.slideLeft)
}

// currentSlideHz returns the next portamento-adjusted frequency, advancing
// the slide by one sample.
func (b *base) currentSlideHz() float64 {
	if b.slideLeft <= 0 {
		return b.slideTo
	}
	b.slideFrom += b.slideStep
	b.slideLeft--
	return b.slideFrom
}

// savePresetParams writes the base parameter table as a little-endian
// binary record; concrete engines call this and append their own extra
// state after it.
func (b *base) savePresetParams(buf []byte) int {
	n := voice.ParamCount * 8
	if len(buf) < n {
		return 0
	}
	for i := 0; i < voice.ParamCount; i++ {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(b.params[i]))
	}
	return n
}

func (b *base) loadPresetParams(buf []byte) int {
	n := voice.ParamCount * 8
	if len(buf) < n {
		return 0
	}
	for i := 0; i < voice.ParamCount; i++ {
		b.params[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
	}
	return n
}

// equalPowerPan returns (leftGain, rightGain) for pan in [0,1] (0=left,
// 0.5=center, 1=right) using the standard cos/sin equal-power pan law.
func equalPowerPan(pan float64) (float64, float64) {
	angle := pan * math.Pi / 2
	return math.Cos(angle), math.Sin(angle)
}
