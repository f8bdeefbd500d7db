package engines

import (
	"math"

	"github.com/grainlab/groove-core/internal/dsp"
	"github.com/grainlab/groove-core/internal/voice"
)

// drumVoice is one procedurally synthesized percussion sound.
type drumVoice int

const (
	drumKick drumVoice = iota
	drumSnare
	drumClosedHat
	drumOpenHat
	drumClap
	drumTom
)

// drumkitMap selects a drum voice from a MIDI note, following the common
// GM-ish low-range mapping (36=kick, 38=snare, 42=closed hat, 46=open hat,
// 39=clap, 45=tom), falling back to tom for anything else.
func drumkitMap(note int) drumVoice {
	switch note {
	case 36:
		return drumKick
	case 38:
		return drumSnare
	case 42:
		return drumClosedHat
	case 46:
		return drumOpenHat
	case 39:
		return drumClap
	default:
		return drumTom
	}
}

// DrumKit synthesizes short percussive hits procedurally: a pitched
// sine-sweep body for kick/tom, filtered noise for snare/hat/clap.
// HARMONICS biases body tone vs. noise for kick and tom, TIMBRE shortens/lengthens
// the decay, MORPH adds a click/transient layer.
type DrumKit struct {
	base

	body      *dsp.Oscillator
	noiseSrc  *dsp.Oscillator
	filter    dsp.Biquad
	ageSample int
	sweepHz   float64
	voiceKind drumVoice
}

func NewDrumKit(sampleRate float64) *DrumKit {
	e := &DrumKit{base: newBase(sampleRate), body: dsp.NewOscillator(sampleRate), noiseSrc: dsp.NewOscillator(sampleRate)}
	e.params[voice.ParamHarmonics] = 0.5
	e.params[voice.ParamTimbre] = 0.5
	e.params[voice.ParamMorph] = 0.2
	return e
}

func (e *DrumKit) Info() voice.Info {
	return voice.Info{Type: voice.EngineDrumKit, Name: "Drum Kit", Description: "Procedural kick/snare/hat/clap/tom kit mapped by note"}
}

func (e *DrumKit) NoteOn(note int, velocity, aftertouch float64) {
	e.voiceKind = drumkitMap(note)
	e.ageSample = 0
	switch e.voiceKind {
	case drumKick:
		e.sweepHz = 150
	case drumTom:
		e.sweepHz = noteToHz(note)
	default:
		e.sweepHz = 0
	}
	e.noteOnCommon(note, velocity, aftertouch)
}

func (e *DrumKit) HasParameter(id voice.ParameterID) bool {
	switch id {
	case voice.ParamHarmonics, voice.ParamTimbre, voice.ParamMorph,
		voice.ParamAttack, voice.ParamDecay, voice.ParamSustain, voice.ParamRelease,
		voice.ParamVolume, voice.ParamPan:
		return true
	}
	return false
}

func (e *DrumKit) SupportsParameterModulation(id voice.ParameterID) bool {
	return id == voice.ParamHarmonics || id == voice.ParamTimbre || id == voice.ParamMorph
}

func (e *DrumKit) ProcessAudio(out []float32) {
	e.body.SetSampleRate(e.sampleRate)
	e.noiseSrc.SetSampleRate(e.sampleRate)

	bodyVsNoise := voice.Clamp01(e.modulated(voice.ParamHarmonics))
	decayShape := voice.Clamp01(e.modulated(voice.ParamTimbre))
	click := voice.Clamp01(e.modulated(voice.ParamMorph))
	volume := voice.Clamp01(e.modulated(voice.ParamVolume))
	leftGain, rightGain := equalPowerPan(voice.Clamp01(e.modulated(voice.ParamPan)))

	var filterHz, q float64
	switch e.voiceKind {
	case drumSnare:
		filterHz, q = 1800, 1.2
	case drumClosedHat:
		filterHz, q = 9000, 0.8
	case drumOpenHat:
		filterHz, q = 7000, 0.8
	case drumClap:
		filterHz, q = 1500, 2.0
	default:
		filterHz, q = 4000, 0.7
	}
	e.filter.SetCoeffs(dsp.BiquadHighPass, e.sampleRate, filterHz, q, 0)

	decaySamples := 2000 + decayShape*e.sampleRate*0.6
	if e.voiceKind == drumClosedHat {
		decaySamples = 500 + decayShape*e.sampleRate*0.05
	}

	for i := 0; i+1 < len(out); i += 2 {
		decayEnv := float32(math.Exp(-float64(e.ageSample) / decaySamples))
		e.ageSample++

		var bodySample float32
		if e.voiceKind == drumKick || e.voiceKind == drumTom {
			pitchSweep := e.sweepHz * (1 + 2*float64(decayEnv))
			e.body.SetFrequency(pitchSweep)
			bodySample = float32(e.body.Sample(dsp.WaveSine)) * decayEnv
		}

		noiseRaw := float32(e.noiseSrc.Sample(dsp.WaveNoise))
		filtered := e.filter.Process(noiseRaw) * decayEnv

		mixed := bodySample*float32(bodyVsNoise) + filtered*float32(1-bodyVsNoise)
		if e.voiceKind != drumKick && e.voiceKind != drumTom {
			mixed = filtered
		}

		clickSample := float32(0)
		if e.ageSample < 8 {
			clickSample = float32(click)
		}
		mixed += clickSample

		env := e.env.Next()
		amp := float32(env * volume * e.velocity)
		sample := mixed * amp

		out[i] += sample * float32(leftGain)
		out[i+1] += sample * float32(rightGain)
	}
}

func (e *DrumKit) SavePreset(buf []byte) int  { return e.savePresetParams(buf) }
func (e *DrumKit) LoadPreset(buf []byte) bool { return e.loadPresetParams(buf) > 0 }
