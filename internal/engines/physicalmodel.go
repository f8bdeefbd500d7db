package engines

import (
	"github.com/grainlab/groove-core/internal/dsp"
	"github.com/grainlab/groove-core/internal/voice"
)

const physModelDelayLen = 2048

// PhysicalModel is a Rings-class exciter/resonator: a short excitation
// burst (noise "strike" crossfaded with a square-wave "blow" by MORPH)
// drives a Karplus-Strong-style feedback delay line standing in for the
// resonator body, tuned to the note. HARMONICS sets string brightness
// (loop filter cutoff), TIMBRE sets material damping (it lowers both the
// loop filter cutoff and the feedback), MORPH is the strike/blow balance;
// there is no separate bowed exciter.
type PhysicalModel struct {
	base

	delay      [physModelDelayLen]float32
	writeIdx   int
	loopFilter dsp.OnePole
	exciteOsc  *dsp.Oscillator
	exciteLeft int
	noteHz     float64
}

func NewPhysicalModel(sampleRate float64) *PhysicalModel {
	e := &PhysicalModel{base: newBase(sampleRate), exciteOsc: dsp.NewOscillator(sampleRate)}
	e.params[voice.ParamHarmonics] = 0.6
	e.params[voice.ParamTimbre] = 0.5
	e.params[voice.ParamMorph] = 0.0
	return e
}

func (e *PhysicalModel) Info() voice.Info {
	return voice.Info{Type: voice.EnginePhysicalModel, Name: "Resonator", Description: "Exciter into a feedback-delay string/body resonator"}
}

func (e *PhysicalModel) NoteOn(note int, velocity, aftertouch float64) {
	e.noteHz = noteToHz(note)
	period := int(e.sampleRate / e.noteHz)
	if period < 2 {
		period = 2
	}
	if period > physModelDelayLen-1 {
		period = physModelDelayLen - 1
	}
	e.exciteLeft = period / 2
	if e.exciteLeft < 16 {
		e.exciteLeft = 16
	}
	e.noteOnCommon(note, velocity, aftertouch)
}

func (e *PhysicalModel) HasParameter(id voice.ParameterID) bool {
	switch id {
	case voice.ParamHarmonics, voice.ParamTimbre, voice.ParamMorph,
		voice.ParamAttack, voice.ParamDecay, voice.ParamSustain, voice.ParamRelease,
		voice.ParamVolume, voice.ParamPan:
		return true
	}
	return false
}

func (e *PhysicalModel) SupportsParameterModulation(id voice.ParameterID) bool {
	return id == voice.ParamHarmonics || id == voice.ParamTimbre || id == voice.ParamMorph
}

func (e *PhysicalModel) ProcessAudio(out []float32) {
	e.exciteOsc.SetSampleRate(e.sampleRate)

	brightness := voice.Clamp01(e.modulated(voice.ParamHarmonics))
	damping := voice.Clamp01(e.modulated(voice.ParamTimbre))
	exciterMix := voice.Clamp01(e.modulated(voice.ParamMorph))
	volume := voice.Clamp01(e.modulated(voice.ParamVolume))
	leftGain, rightGain := equalPowerPan(voice.Clamp01(e.modulated(voice.ParamPan)))

	e.loopFilter.SetCutoff(500+brightness*(1-damping)*15000, e.sampleRate)

	period := int(e.sampleRate / e.noteHz)
	if period < 2 {
		period = 2
	}
	if period > physModelDelayLen-1 {
		period = physModelDelayLen - 1
	}
	feedback := float32(0.985 - damping*0.08)

	for i := 0; i+1 < len(out); i += 2 {
		var excitation float32
		if e.exciteLeft > 0 {
			e.exciteLeft--
			e.exciteOsc.SetFrequency(e.noteHz * 0.5)
			blow := float32(e.exciteOsc.Sample(dsp.WaveSquare))
			strike := float32(e.exciteOsc.Sample(dsp.WaveNoise))
			excitation = strike*(1-float32(exciterMix)) + blow*float32(exciterMix)
		}

		readIdx := e.writeIdx - period
		for readIdx < 0 {
			readIdx += physModelDelayLen
		}
		delayed := e.delay[readIdx]
		filtered := e.loopFilter.Process(delayed)
		newSample := excitation + filtered*feedback

		e.delay[e.writeIdx] = newSample
		e.writeIdx = (e.writeIdx + 1) % physModelDelayLen

		env := e.env.Next()
		amp := float32(env * volume * e.velocity)
		sample := newSample * amp
		if sample > 4 {
			sample = 4
		}
		if sample < -4 {
			sample = -4
		}

		out[i] += sample * float32(leftGain)
		out[i+1] += sample * float32(rightGain)
	}
}

func (e *PhysicalModel) SavePreset(buf []byte) int  { return e.savePresetParams(buf) }
func (e *PhysicalModel) LoadPreset(buf []byte) bool { return e.loadPresetParams(buf) > 0 }
