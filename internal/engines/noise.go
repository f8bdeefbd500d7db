package engines

import (
	"github.com/grainlab/groove-core/internal/dsp"
	"github.com/grainlab/groove-core/internal/voice"
)

// Noise is a particle/noise engine: LCG noise through a resonant peaking
// (bell, +12 dB) biquad whose center is HARMONICS-driven and tracked by
// note pitch, TIMBRE sets Q, MORPH crossfades a sample-and-hold "grain" layer on
// top for a granular-particle texture.
type Noise struct {
	base

	src    *dsp.Oscillator
	grain  *dsp.Oscillator
	filter dsp.Biquad
	noteHz float64
}

func NewNoise(sampleRate float64) *Noise {
	e := &Noise{base: newBase(sampleRate), src: dsp.NewOscillator(sampleRate), grain: dsp.NewOscillator(sampleRate)}
	e.params[voice.ParamHarmonics] = 0.5
	e.params[voice.ParamTimbre] = 0.3
	e.params[voice.ParamMorph] = 0.2
	return e
}

func (e *Noise) Info() voice.Info {
	return voice.Info{Type: voice.EngineNoise, Name: "Particles", Description: "Filtered noise with a sample-and-hold grain layer"}
}

func (e *Noise) NoteOn(note int, velocity, aftertouch float64) {
	e.noteHz = noteToHz(note)
	e.noteOnCommon(note, velocity, aftertouch)
}

func (e *Noise) HasParameter(id voice.ParameterID) bool {
	switch id {
	case voice.ParamHarmonics, voice.ParamTimbre, voice.ParamMorph,
		voice.ParamAttack, voice.ParamDecay, voice.ParamSustain, voice.ParamRelease,
		voice.ParamVolume, voice.ParamPan:
		return true
	}
	return false
}

func (e *Noise) SupportsParameterModulation(id voice.ParameterID) bool {
	return id == voice.ParamHarmonics || id == voice.ParamTimbre || id == voice.ParamMorph
}

func (e *Noise) ProcessAudio(out []float32) {
	e.src.SetSampleRate(e.sampleRate)
	e.grain.SetSampleRate(e.sampleRate)

	centerHz := 100 + voice.Clamp01(e.modulated(voice.ParamHarmonics))*e.noteHz*8
	q := 0.5 + voice.Clamp01(e.modulated(voice.ParamTimbre))*15
	grainMix := voice.Clamp01(e.modulated(voice.ParamMorph))
	volume := voice.Clamp01(e.modulated(voice.ParamVolume))
	leftGain, rightGain := equalPowerPan(voice.Clamp01(e.modulated(voice.ParamPan)))

	e.filter.SetCoeffs(dsp.BiquadBell, e.sampleRate, centerHz, q, 12)
	e.grain.SetFrequency(e.noteHz / 4)

	for i := 0; i+1 < len(out); i += 2 {
		raw := e.src.Sample(dsp.WaveNoise)
		filtered := e.filter.Process(float32(raw))
		grain := float32(e.grain.Sample(dsp.WaveSampleHold))
		mixed := filtered*(1-float32(grainMix)) + grain*float32(grainMix)

		env := e.env.Next()
		amp := float32(env * volume * e.velocity)
		sample := mixed * amp

		out[i] += sample * float32(leftGain)
		out[i+1] += sample * float32(rightGain)
	}
}

func (e *Noise) SavePreset(buf []byte) int  { return e.savePresetParams(buf) }
func (e *Noise) LoadPreset(buf []byte) bool { return e.loadPresetParams(buf) > 0 }
