package engines

import (
	"math"

	"github.com/grainlab/groove-core/internal/voice"
)

// FM2 is a two-operator FM engine: a modulator oscillator phase-modulates a
// carrier. HARMONICS sets the modulator:carrier frequency ratio, TIMBRE
// sets modulation index, MORPH crossfades a feedback path on the modulator.
type FM2 struct {
	base

	carrierPhase   float64
	modulatorPhase float64
	feedbackState  float64
	noteHz         float64
}

func NewFM2(sampleRate float64) *FM2 {
	e := &FM2{base: newBase(sampleRate)}
	e.params[voice.ParamHarmonics] = 0.3 // ratio
	e.params[voice.ParamTimbre] = 0.4    // index
	e.params[voice.ParamMorph] = 0.0     // feedback
	return e
}

func (e *FM2) Info() voice.Info {
	return voice.Info{Type: voice.EngineFM2, Name: "FM-2OP", Description: "Two-operator phase-modulation synthesis"}
}

func (e *FM2) NoteOn(note int, velocity, aftertouch float64) {
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

func (e *FM2) HasParameter(id voice.ParameterID) bool {
	switch id {
	case voice.ParamHarmonics, voice.ParamTimbre, voice.ParamMorph,
		voice.ParamAttack, voice.ParamDecay, voice.ParamSustain, voice.ParamRelease,
		voice.ParamVolume, voice.ParamPan, voice.ParamDetune:
		return true
	}
	return false
}

func (e *FM2) SupportsParameterModulation(id voice.ParameterID) bool {
	return id == voice.ParamHarmonics || id == voice.ParamTimbre || id == voice.ParamMorph || id == voice.ParamVolume || id == voice.ParamPan
}

func (e *FM2) ProcessAudio(out []float32) {
	ratio := 0.25 + voice.Clamp01(e.modulated(voice.ParamHarmonics))*7.75
	index := voice.Clamp01(e.modulated(voice.ParamTimbre)) * 12
	feedback := voice.Clamp01(e.modulated(voice.ParamMorph)) * 0.9
	volume := voice.Clamp01(e.modulated(voice.ParamVolume))
	leftGain, rightGain := equalPowerPan(voice.Clamp01(e.modulated(voice.ParamPan)))

	twoPi := 2 * math.Pi
	for i := 0; i+1 < len(out); i += 2 {
		carrierHz := e.currentSlideHz()
		modHz := carrierHz * ratio

		modInc := twoPi * modHz / e.sampleRate
		e.modulatorPhase += modInc
		for e.modulatorPhase >= twoPi {
			e.modulatorPhase -= twoPi
		}
		modOut := math.Sin(e.modulatorPhase+feedback*e.feedbackState) * index
		e.feedbackState = modOut

		carrierInc := twoPi * carrierHz / e.sampleRate
		e.carrierPhase += carrierInc
		for e.carrierPhase >= twoPi {
			e.carrierPhase -= twoPi
		}
		carrierOut := math.Sin(e.carrierPhase + modOut)

		env := e.env.Next()
		amp := float32(env * volume * e.velocity)
		sample := float32(carrierOut) * amp

		out[i] += sample * float32(leftGain)
		out[i+1] += sample * float32(rightGain)
	}
}

func (e *FM2) SavePreset(buf []byte) int   { return e.savePresetParams(buf) }
func (e *FM2) LoadPreset(buf []byte) bool  { return e.loadPresetParams(buf) > 0 }
