package engines

import (
	"math"

	"github.com/grainlab/groove-core/internal/dsp"
	"github.com/grainlab/groove-core/internal/voice"
)

// Waveshaper drives a sine through a Chebyshev-style polynomial shaper:
// HARMONICS selects shaper order/character, TIMBRE is drive amount, MORPH
// blends in a sub-octave before shaping.
type Waveshaper struct {
	base

	osc, sub *dsp.Oscillator
	noteHz   float64
}

func NewWaveshaper(sampleRate float64) *Waveshaper {
	e := &Waveshaper{base: newBase(sampleRate), osc: dsp.NewOscillator(sampleRate), sub: dsp.NewOscillator(sampleRate)}
	e.params[voice.ParamHarmonics] = 0.5
	e.params[voice.ParamTimbre] = 0.5
	e.params[voice.ParamMorph] = 0.0
	return e
}

func (e *Waveshaper) Info() voice.Info {
	return voice.Info{Type: voice.EngineWaveshaper, Name: "Waveshaper", Description: "Polynomial waveshaping of a sine carrier"}
}

func (e *Waveshaper) NoteOn(note int, velocity, aftertouch float64) {
	hz := noteToHz(note)
	if e.active && e.slideArmTime > 0 {
		e.beginSlide(e.noteHz, hz, e.slideArmTime)
	} else {
		e.beginSlide(hz, hz, 0)
	}
	e.noteHz = hz
	e.slideArmTime = 0
	e.noteOnCommon(note, velocity, aftertouch)
}

func (e *Waveshaper) HasParameter(id voice.ParameterID) bool {
	switch id {
	case voice.ParamHarmonics, voice.ParamTimbre, voice.ParamMorph,
		voice.ParamAttack, voice.ParamDecay, voice.ParamSustain, voice.ParamRelease,
		voice.ParamVolume, voice.ParamPan:
		return true
	}
	return false
}

func (e *Waveshaper) SupportsParameterModulation(id voice.ParameterID) bool {
	return id == voice.ParamHarmonics || id == voice.ParamTimbre || id == voice.ParamMorph
}

// shape applies a drive-scaled cubic/quintic Chebyshev-ish shaper whose
// character shifts with order in [0,1].
func shape(x, drive, order float64) float64 {
	x = x * (1 + drive*8)
	if x > 1 {
		x = 1
	}
	if x < -1 {
		x = -1
	}
	cheb3 := 4*x*x*x - 3*x
	cheb5 := 16*x*x*x*x*x - 20*x*x*x + 5*x
	return x*(1-order) + (cheb3*(1-order)+cheb5*order)*order
}

func (e *Waveshaper) ProcessAudio(out []float32) {
	e.osc.SetSampleRate(e.sampleRate)
	e.sub.SetSampleRate(e.sampleRate)

	drive := voice.Clamp01(e.modulated(voice.ParamTimbre))
	order := voice.Clamp01(e.modulated(voice.ParamHarmonics))
	subMix := voice.Clamp01(e.modulated(voice.ParamMorph))
	volume := voice.Clamp01(e.modulated(voice.ParamVolume))
	leftGain, rightGain := equalPowerPan(voice.Clamp01(e.modulated(voice.ParamPan)))

	for i := 0; i+1 < len(out); i += 2 {
		hz := e.currentSlideHz()
		e.osc.SetFrequency(hz)
		e.sub.SetFrequency(hz / 2)

		raw := e.osc.Sample(dsp.WaveSine)
		sub := e.sub.Sample(dsp.WaveSine)
		mixed := raw*(1-subMix) + sub*subMix
		shaped := shape(mixed, drive, order)
		shaped = math.Tanh(shaped)

		env := e.env.Next()
		amp := float32(env * volume * e.velocity)
		sample := float32(shaped) * amp

		out[i] += sample * float32(leftGain)
		out[i+1] += sample * float32(rightGain)
	}
}

func (e *Waveshaper) SavePreset(buf []byte) int  { return e.savePresetParams(buf) }
func (e *Waveshaper) LoadPreset(buf []byte) bool { return e.loadPresetParams(buf) > 0 }
