package engines

import (
	"github.com/grainlab/groove-core/internal/dsp"
	"github.com/grainlab/groove-core/internal/voice"
)

const modalModeCount = 6

// modalRatios are the modal frequency ratios relative to the fundamental
// for an idealized stiff bar, an Elements-class "modal/elements" stand-in;
// empirical, not derived from a closed-form beam equation.
var modalRatios = [modalModeCount]float64{1.0, 2.76, 5.4, 8.93, 13.34, 18.64}

// Modal is a bank of resonant modes excited by a single impulse on note-on,
// standing in for the "modal/elements" engine. HARMONICS stretches the
// modal ratios towards inharmonicity, TIMBRE sets per-mode Q (material
// coupling), MORPH balances impulse vs. sustained noise excitation.
type Modal struct {
	base

	modes     [modalModeCount]dsp.Biquad
	exciteOsc *dsp.Oscillator
	impulse   float32
	noteHz    float64
}

func NewModal(sampleRate float64) *Modal {
	e := &Modal{base: newBase(sampleRate), exciteOsc: dsp.NewOscillator(sampleRate)}
	e.params[voice.ParamHarmonics] = 0.3
	e.params[voice.ParamTimbre] = 0.5
	e.params[voice.ParamMorph] = 0.0
	return e
}

func (e *Modal) Info() voice.Info {
	return voice.Info{Type: voice.EngineModal, Name: "Modal", Description: "Impulse-excited bank of resonant modes"}
}

func (e *Modal) NoteOn(note int, velocity, aftertouch float64) {
	e.noteHz = noteToHz(note)
	e.impulse = 1
	e.noteOnCommon(note, velocity, aftertouch)
}

func (e *Modal) HasParameter(id voice.ParameterID) bool {
	switch id {
	case voice.ParamHarmonics, voice.ParamTimbre, voice.ParamMorph,
		voice.ParamAttack, voice.ParamDecay, voice.ParamSustain, voice.ParamRelease,
		voice.ParamVolume, voice.ParamPan:
		return true
	}
	return false
}

func (e *Modal) SupportsParameterModulation(id voice.ParameterID) bool {
	return id == voice.ParamHarmonics || id == voice.ParamTimbre || id == voice.ParamMorph
}

func (e *Modal) ProcessAudio(out []float32) {
	e.exciteOsc.SetSampleRate(e.sampleRate)

	stretch := 1 + voice.Clamp01(e.modulated(voice.ParamHarmonics))*0.3
	q := 20 + voice.Clamp01(e.modulated(voice.ParamTimbre))*180
	noiseMix := voice.Clamp01(e.modulated(voice.ParamMorph))
	volume := voice.Clamp01(e.modulated(voice.ParamVolume))
	leftGain, rightGain := equalPowerPan(voice.Clamp01(e.modulated(voice.ParamPan)))

	for m := range e.modes {
		ratio := modalRatios[m]
		stretched := ratio
		if m > 0 {
			stretched = ratio * stretch
		}
		e.modes[m].SetCoeffs(dsp.BiquadBell, e.sampleRate, e.noteHz*stretched, q, 24)
	}

	for i := 0; i+1 < len(out); i += 2 {
		excitation := e.impulse
		e.impulse *= 0.0 // single-sample impulse; only the very first sample excites
		noise := float32(e.exciteOsc.Sample(dsp.WaveNoise)) * float32(noiseMix) * 0.05
		drive := excitation + noise

		var mixed float32
		for m := range e.modes {
			mixed += e.modes[m].Process(drive)
		}
		mixed /= modalModeCount

		env := e.env.Next()
		amp := float32(env * volume * e.velocity)
		sample := mixed * amp

		out[i] += sample * float32(leftGain)
		out[i+1] += sample * float32(rightGain)
	}
}

func (e *Modal) SavePreset(buf []byte) int  { return e.savePresetParams(buf) }
func (e *Modal) LoadPreset(buf []byte) bool { return e.loadPresetParams(buf) > 0 }
