package engines

import (
	"math"

	"github.com/grainlab/groove-core/internal/voice"
)

const additivePartialCount = 12

// Additive sums harmonically-related sine partials with a 1/n^k rolloff.
// HARMONICS sets the partial count in use, TIMBRE sets the rolloff
// steepness, MORPH detunes odd partials for a richer, inharmonic texture.
type Additive struct {
	base

	phase  [additivePartialCount]float64
	noteHz float64
}

func NewAdditive(sampleRate float64) *Additive {
	e := &Additive{base: newBase(sampleRate)}
	e.params[voice.ParamHarmonics] = 0.6
	e.params[voice.ParamTimbre] = 0.5
	e.params[voice.ParamMorph] = 0
	return e
}

func (e *Additive) Info() voice.Info {
	return voice.Info{Type: voice.EngineAdditive, Name: "Additive", Description: "Harmonic partial-series synthesis"}
}

func (e *Additive) NoteOn(note int, velocity, aftertouch float64) {
	e.noteHz = noteToHz(note)
	e.noteOnCommon(note, velocity, aftertouch)
}

func (e *Additive) HasParameter(id voice.ParameterID) bool {
	switch id {
	case voice.ParamHarmonics, voice.ParamTimbre, voice.ParamMorph,
		voice.ParamAttack, voice.ParamDecay, voice.ParamSustain, voice.ParamRelease,
		voice.ParamVolume, voice.ParamPan:
		return true
	}
	return false
}

func (e *Additive) SupportsParameterModulation(id voice.ParameterID) bool {
	return id == voice.ParamHarmonics || id == voice.ParamTimbre || id == voice.ParamMorph
}

func (e *Additive) ProcessAudio(out []float32) {
	activePartials := 1 + int(voice.Clamp01(e.modulated(voice.ParamHarmonics))*float64(additivePartialCount-1))
	rolloff := 0.5 + voice.Clamp01(e.modulated(voice.ParamTimbre))*2.5
	inharmonic := voice.Clamp01(e.modulated(voice.ParamMorph)) * 0.02
	volume := voice.Clamp01(e.modulated(voice.ParamVolume))
	leftGain, rightGain := equalPowerPan(voice.Clamp01(e.modulated(voice.ParamPan)))
	twoPi := 2 * math.Pi

	for i := 0; i+1 < len(out); i += 2 {
		hz := e.noteHz
		var mixed float64
		var norm float64
		for n := 1; n <= activePartials; n++ {
			partialHz := hz * float64(n)
			if n%2 == 1 {
				partialHz *= 1 + inharmonic
			}
			inc := twoPi * partialHz / e.sampleRate
			e.phase[n-1] += inc
			for e.phase[n-1] >= twoPi {
				e.phase[n-1] -= twoPi
			}
			weight := 1 / math.Pow(float64(n), rolloff)
			mixed += math.Sin(e.phase[n-1]) * weight
			norm += weight
		}
		if norm > 0 {
			mixed /= norm
		}

		env := e.env.Next()
		amp := float32(env * volume * e.velocity)
		sample := float32(mixed) * amp

		out[i] += sample * float32(leftGain)
		out[i+1] += sample * float32(rightGain)
	}
}

func (e *Additive) SavePreset(buf []byte) int  { return e.savePresetParams(buf) }
func (e *Additive) LoadPreset(buf []byte) bool { return e.loadPresetParams(buf) > 0 }
