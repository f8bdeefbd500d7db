package engines

import (
	"math"

	"github.com/grainlab/groove-core/internal/dsp"
	"github.com/grainlab/groove-core/internal/voice"
)

// Tidal is a slowly-undulating detuned-pair oscillator whose beat rate is
// driven by a sub-audio LFO rather than a fixed detune, evoking a
// tide-like swell. HARMONICS sets the beat-LFO rate, TIMBRE sets beat
// depth, MORPH crossfades sine/triangle cores.
type Tidal struct {
	base

	oscA, oscB *dsp.Oscillator
	beatPhase  float64
	noteHz     float64
}

func NewTidal(sampleRate float64) *Tidal {
	e := &Tidal{base: newBase(sampleRate), oscA: dsp.NewOscillator(sampleRate), oscB: dsp.NewOscillator(sampleRate)}
	e.params[voice.ParamHarmonics] = 0.2
	e.params[voice.ParamTimbre] = 0.3
	e.params[voice.ParamMorph] = 0
	return e
}

func (e *Tidal) Info() voice.Info {
	return voice.Info{Type: voice.EngineTidal, Name: "Tidal", Description: "Slow beat-rate detuned pair, tide-like swell"}
}

func (e *Tidal) NoteOn(note int, velocity, aftertouch float64) {
	e.noteHz = noteToHz(note)
	e.noteOnCommon(note, velocity, aftertouch)
}

func (e *Tidal) HasParameter(id voice.ParameterID) bool {
	switch id {
	case voice.ParamHarmonics, voice.ParamTimbre, voice.ParamMorph,
		voice.ParamAttack, voice.ParamDecay, voice.ParamSustain, voice.ParamRelease,
		voice.ParamVolume, voice.ParamPan:
		return true
	}
	return false
}

func (e *Tidal) SupportsParameterModulation(id voice.ParameterID) bool {
	return id == voice.ParamHarmonics || id == voice.ParamTimbre || id == voice.ParamMorph
}

func (e *Tidal) ProcessAudio(out []float32) {
	e.oscA.SetSampleRate(e.sampleRate)
	e.oscB.SetSampleRate(e.sampleRate)

	beatRateHz := 0.02 + voice.Clamp01(e.modulated(voice.ParamHarmonics))*1.5
	beatDepth := voice.Clamp01(e.modulated(voice.ParamTimbre)) * 0.03
	morph := voice.Clamp01(e.modulated(voice.ParamMorph))
	volume := voice.Clamp01(e.modulated(voice.ParamVolume))
	leftGain, rightGain := equalPowerPan(voice.Clamp01(e.modulated(voice.ParamPan)))
	twoPi := 2 * math.Pi

	for i := 0; i+1 < len(out); i += 2 {
		e.beatPhase += twoPi * beatRateHz / e.sampleRate
		for e.beatPhase >= twoPi {
			e.beatPhase -= twoPi
		}
		beat := math.Sin(e.beatPhase) * beatDepth

		e.oscA.SetFrequency(e.noteHz * (1 + beat))
		e.oscB.SetFrequency(e.noteHz * (1 - beat))

		phaseA, phaseB := e.oscA.Phase(), e.oscB.Phase()
		a := e.oscA.Sample(dsp.WaveSine)*(1-morph) + triangleAt(phaseA)*morph
		b := e.oscB.Sample(dsp.WaveSine)*(1-morph) + triangleAt(phaseB)*morph
		mixed := (a + b) / 2

		env := e.env.Next()
		amp := float32(env * volume * e.velocity)
		sample := float32(mixed) * amp

		out[i] += sample * float32(leftGain)
		out[i+1] += sample * float32(rightGain)
	}
}

// triangleAt evaluates a triangle wave at phase p (radians, [0, 2pi))
// without touching any oscillator's internal state.
func triangleAt(p float64) float64 {
	frac := p / (2 * math.Pi)
	if frac < 0.5 {
		return 4*frac - 1
	}
	return 3 - 4*frac
}

func (e *Tidal) SavePreset(buf []byte) int  { return e.savePresetParams(buf) }
func (e *Tidal) LoadPreset(buf []byte) bool { return e.loadPresetParams(buf) > 0 }
