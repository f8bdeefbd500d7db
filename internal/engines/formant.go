package engines

import (
	"github.com/grainlab/groove-core/internal/dsp"
	"github.com/grainlab/groove-core/internal/voice"
)

// formantTable holds (F1, F2, F3) center frequencies for five vowel
// positions, interpolated by HARMONICS; values approximate typical adult
// vowel formants in Hz.
var formantTable = [5][3]float64{
	{800, 1150, 2900},  // A
	{400, 1920, 2560},  // E (front)
	{350, 2300, 3000},  // I
	{450, 800, 2830},   // O
	{325, 700, 2530},   // U
}

// Formant drives a sawtooth glottal source through three resonant band
// passes (approximated as peaking biquads) at vowel formant frequencies.
// HARMONICS selects vowel position, TIMBRE sets formant Q (vocal tension),
// MORPH crossfades breathiness (noise) into the source.
type Formant struct {
	base

	source      *dsp.Oscillator
	noiseSource *dsp.Oscillator
	f1, f2, f3  dsp.Biquad
	noteHz      float64
}

func NewFormant(sampleRate float64) *Formant {
	e := &Formant{base: newBase(sampleRate), source: dsp.NewOscillator(sampleRate), noiseSource: dsp.NewOscillator(sampleRate)}
	e.params[voice.ParamHarmonics] = 0
	e.params[voice.ParamTimbre] = 0.5
	e.params[voice.ParamMorph] = 0.1
	return e
}

func (e *Formant) Info() voice.Info {
	return voice.Info{Type: voice.EngineFormant, Name: "Formant", Description: "Glottal source through vowel formant resonators"}
}

func (e *Formant) NoteOn(note int, velocity, aftertouch float64) {
	e.noteHz = noteToHz(note)
	e.noteOnCommon(note, velocity, aftertouch)
}

func (e *Formant) HasParameter(id voice.ParameterID) bool {
	switch id {
	case voice.ParamHarmonics, voice.ParamTimbre, voice.ParamMorph,
		voice.ParamAttack, voice.ParamDecay, voice.ParamSustain, voice.ParamRelease,
		voice.ParamVolume, voice.ParamPan:
		return true
	}
	return false
}

func (e *Formant) SupportsParameterModulation(id voice.ParameterID) bool {
	return id == voice.ParamHarmonics || id == voice.ParamTimbre || id == voice.ParamMorph
}

func vowelFormants(pos float64) [3]float64 {
	pos = voice.Clamp01(pos) * 4
	idx := int(pos)
	if idx >= 4 {
		return formantTable[4]
	}
	frac := pos - float64(idx)
	a, b := formantTable[idx], formantTable[idx+1]
	return [3]float64{
		a[0]*(1-frac) + b[0]*frac,
		a[1]*(1-frac) + b[1]*frac,
		a[2]*(1-frac) + b[2]*frac,
	}
}

func (e *Formant) ProcessAudio(out []float32) {
	e.source.SetSampleRate(e.sampleRate)
	e.noiseSource.SetSampleRate(e.sampleRate)

	formants := vowelFormants(e.modulated(voice.ParamHarmonics))
	q := 4 + voice.Clamp01(e.modulated(voice.ParamTimbre))*20
	breath := voice.Clamp01(e.modulated(voice.ParamMorph))
	volume := voice.Clamp01(e.modulated(voice.ParamVolume))
	leftGain, rightGain := equalPowerPan(voice.Clamp01(e.modulated(voice.ParamPan)))

	e.f1.SetCoeffs(dsp.BiquadBell, e.sampleRate, formants[0], q, 18)
	e.f2.SetCoeffs(dsp.BiquadBell, e.sampleRate, formants[1], q, 14)
	e.f3.SetCoeffs(dsp.BiquadBell, e.sampleRate, formants[2], q, 10)

	for i := 0; i+1 < len(out); i += 2 {
		e.source.SetFrequency(e.noteHz)
		e.noiseSource.SetFrequency(0)
		glottal := e.source.Sample(dsp.WaveSawUp)
		noise := e.noiseSource.Sample(dsp.WaveNoise)
		excitation := float32(glottal*(1-breath) + noise*breath)

		stage1 := e.f1.Process(excitation)
		stage2 := e.f2.Process(excitation)
		stage3 := e.f3.Process(excitation)
		mixed := (stage1 + stage2 + stage3) / 3

		env := e.env.Next()
		amp := float32(env * volume * e.velocity)
		sample := mixed * amp

		out[i] += sample * float32(leftGain)
		out[i+1] += sample * float32(rightGain)
	}
}

func (e *Formant) SavePreset(buf []byte) int  { return e.savePresetParams(buf) }
func (e *Formant) LoadPreset(buf []byte) bool { return e.loadPresetParams(buf) > 0 }
