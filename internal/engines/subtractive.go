package engines

import (
	"github.com/grainlab/groove-core/internal/dsp"
	"github.com/grainlab/groove-core/internal/voice"
)

// Subtractive is a classic virtual-analog engine: two detuned oscillators
// plus a sub-oscillator into a resonant low-pass, shaped by the shared
// per-voice ADSR. HARMONICS selects oscillator mix/waveform blend, TIMBRE
// drives filter cutoff, MORPH crossfades the sub-oscillator level.
type Subtractive struct {
	base

	osc1, osc2, sub *dsp.Oscillator
	filter          dsp.Biquad
	filterCutoffSm  *dsp.SmoothedParam
	noteHz          float64
}

// NewSubtractive builds a subtractive engine at the given sample rate.
func NewSubtractive(sampleRate float64) *Subtractive {
	e := &Subtractive{
		base: newBase(sampleRate),
		osc1: dsp.NewOscillator(sampleRate),
		osc2: dsp.NewOscillator(sampleRate),
		sub:  dsp.NewOscillator(sampleRate),
	}
	e.params[voice.ParamHarmonics] = 0.5
	e.params[voice.ParamTimbre] = 0.8
	e.params[voice.ParamMorph] = 0.2
	e.params[voice.ParamDetune] = 0.1
	e.params[voice.ParamOscMix] = 0.5
	e.params[voice.ParamSubLevel] = 0.3
	e.filterCutoffSm = dsp.NewSmoothedParam(1.0, int(sampleRate*0.003))
	return e
}

func (e *Subtractive) Info() voice.Info {
	return voice.Info{Type: voice.EngineSubtractive, Name: "Subtractive", Description: "Two-oscillator virtual analog with resonant low-pass"}
}

func (e *Subtractive) NoteOn(note int, velocity, aftertouch float64) {
	hz := noteToHz(note)
	if e.base.active && e.slideArmTime > 0 {
		e.beginSlide(e.noteHz, hz, e.slideArmTime)
	} else {
		e.beginSlide(hz, hz, 0)
	}
	e.noteHz = hz
	e.slideArmTime = 0
	e.noteOnCommon(note, velocity, aftertouch)
}

func (e *Subtractive) HasParameter(id voice.ParameterID) bool {
	switch id {
	case voice.ParamHarmonics, voice.ParamTimbre, voice.ParamMorph,
		voice.ParamFilterCutoff, voice.ParamFilterResonance,
		voice.ParamAttack, voice.ParamDecay, voice.ParamSustain, voice.ParamRelease,
		voice.ParamVolume, voice.ParamPan, voice.ParamDetune, voice.ParamOscMix, voice.ParamSubLevel:
		return true
	}
	return false
}

func (e *Subtractive) SupportsParameterModulation(id voice.ParameterID) bool {
	return e.HasParameter(id) && id != voice.ParamAttack && id != voice.ParamDecay && id != voice.ParamRelease
}

func (e *Subtractive) ProcessAudio(out []float32) {
	detune := e.modulated(voice.ParamDetune) * 0.06
	e.osc1.SetSampleRate(e.sampleRate)
	e.osc2.SetSampleRate(e.sampleRate)
	e.sub.SetSampleRate(e.sampleRate)

	harmonics := voice.Clamp01(e.modulated(voice.ParamHarmonics))
	timbre := voice.Clamp01(e.modulated(voice.ParamTimbre))
	morph := voice.Clamp01(e.modulated(voice.ParamMorph))
	oscMix := voice.Clamp01(e.modulated(voice.ParamOscMix))
	subLevel := voice.Clamp01(e.modulated(voice.ParamSubLevel)) * morph
	resonance := 0.5 + voice.Clamp01(e.modulated(voice.ParamFilterResonance))*9.5
	leftGain, rightGain := equalPowerPan(voice.Clamp01(e.modulated(voice.ParamPan)))
	volume := voice.Clamp01(e.modulated(voice.ParamVolume))

	shape1 := waveformFromHarmonics(harmonics)
	shape2 := waveformFromHarmonics(1 - harmonics)

	for i := 0; i+1 < len(out); i += 2 {
		hz := e.currentSlideHz()
		e.osc1.SetFrequency(hz * (1 + detune))
		e.osc2.SetFrequency(hz * (1 - detune))
		e.sub.SetFrequency(hz / 2)

		s1 := e.osc1.Sample(shape1)
		s2 := e.osc2.Sample(shape2)
		sub := e.sub.Sample(dsp.WaveTriangle)

		mixed := s1*(1-oscMix) + s2*oscMix
		mixed = mixed*(1-subLevel) + sub*subLevel

		cutoffHz := 80 + timbre*timbre*(e.sampleRate/2-80)*0.5
		smoothedCutoff := e.filterCutoffSm
		smoothedCutoff.SetTarget(cutoffHz)
		e.filter.SetCoeffs(dsp.BiquadLowPass, e.sampleRate, smoothedCutoff.Next(), resonance, 0)
		filtered := e.filter.Process(float32(mixed))

		env := e.env.Next()
		amp := float32(env * volume * e.velocity)
		sample := filtered * amp

		out[i] += sample * float32(leftGain)
		out[i+1] += sample * float32(rightGain)
	}
}

func waveformFromHarmonics(h float64) dsp.Waveform {
	switch {
	case h < 0.25:
		return dsp.WaveSine
	case h < 0.5:
		return dsp.WaveTriangle
	case h < 0.75:
		return dsp.WaveSawUp
	default:
		return dsp.WaveSquare
	}
}

func (e *Subtractive) SavePreset(buf []byte) int {
	return e.savePresetParams(buf)
}

func (e *Subtractive) LoadPreset(buf []byte) bool {
	return e.loadPresetParams(buf) > 0
}
