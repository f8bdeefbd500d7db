package engines

import (
	"encoding/binary"
	"math"

	"github.com/grainlab/groove-core/internal/voice"
)

// SampleKit plays back a single loaded PCM sample one-shot, pitched by the
// note relative to a configurable root note. Loading real sample audio is
// an external-collaborator concern (file I/O is out of scope here); the
// engine only consumes raw mono float32 PCM handed to it through
// LoadPreset's binary blob, matching the little-endian preset contract
// the other engines use. HARMONICS scales the playback level from 0.3 to
// 1 (no filtering is applied), TIMBRE scales playback speed (retuning),
// MORPH sets loop vs. one-shot.
type SampleKit struct {
	base

	data     []float32
	rootNote int
	playPos  float64
	playing  bool
}

func NewSampleKit(sampleRate float64) *SampleKit {
	e := &SampleKit{base: newBase(sampleRate), rootNote: 60}
	e.params[voice.ParamHarmonics] = 1.0
	e.params[voice.ParamTimbre] = 0.5
	e.params[voice.ParamMorph] = 0
	return e
}

func (e *SampleKit) Info() voice.Info {
	return voice.Info{Type: voice.EngineSampleKit, Name: "Sample Kit", Description: "One-shot/looped mono PCM playback, pitched by note"}
}

// LoadSampleData installs raw mono PCM at rootNote's native pitch; called
// by the control context after the external collaborator reads a sample
// file, never from the audio path.
func (e *SampleKit) LoadSampleData(data []float32, rootNote int) {
	e.data = data
	e.rootNote = rootNote
}

func (e *SampleKit) NoteOn(note int, velocity, aftertouch float64) {
	e.playPos = 0
	e.playing = len(e.data) > 0
	e.noteOnCommon(note, velocity, aftertouch)
}

func (e *SampleKit) HasParameter(id voice.ParameterID) bool {
	switch id {
	case voice.ParamHarmonics, voice.ParamTimbre, voice.ParamMorph,
		voice.ParamAttack, voice.ParamDecay, voice.ParamSustain, voice.ParamRelease,
		voice.ParamVolume, voice.ParamPan:
		return true
	}
	return false
}

func (e *SampleKit) SupportsParameterModulation(id voice.ParameterID) bool {
	return id == voice.ParamTimbre
}

func (e *SampleKit) ProcessAudio(out []float32) {
	if !e.playing {
		return
	}
	speedTrim := 0.25 + voice.Clamp01(e.modulated(voice.ParamTimbre))*3.75
	pitchRatio := semitoneRatio(float64(e.note-e.rootNote)) * speedTrim
	looping := e.modulated(voice.ParamMorph) > 0.5
	tone := voice.Clamp01(e.modulated(voice.ParamHarmonics))
	volume := voice.Clamp01(e.modulated(voice.ParamVolume))
	leftGain, rightGain := equalPowerPan(voice.Clamp01(e.modulated(voice.ParamPan)))

	for i := 0; i+1 < len(out); i += 2 {
		if int(e.playPos) >= len(e.data) {
			if looping {
				e.playPos = 0
			} else {
				e.playing = false
				break
			}
		}
		idx := int(e.playPos)
		frac := e.playPos - float64(idx)
		var raw float32
		if idx+1 < len(e.data) {
			raw = e.data[idx]*(1-float32(frac)) + e.data[idx+1]*float32(frac)
		} else if idx < len(e.data) {
			raw = e.data[idx]
		}
		raw *= float32(0.3 + tone*0.7)

		e.playPos += pitchRatio

		env := e.env.Next()
		amp := float32(env * volume * e.velocity)
		sample := raw * amp

		out[i] += sample * float32(leftGain)
		out[i+1] += sample * float32(rightGain)
	}
}

func (e *SampleKit) SavePreset(buf []byte) int {
	n := e.savePresetParams(buf)
	if n == 0 || len(buf) < n+4 {
		return n
	}
	binary.LittleEndian.PutUint32(buf[n:], uint32(len(e.data)))
	n += 4
	for _, s := range e.data {
		if len(buf) < n+4 {
			break
		}
		binary.LittleEndian.PutUint32(buf[n:], math.Float32bits(s))
		n += 4
	}
	return n
}

func (e *SampleKit) LoadPreset(buf []byte) bool {
	n := e.loadPresetParams(buf)
	if n == 0 || len(buf) < n+4 {
		return n > 0
	}
	count := int(binary.LittleEndian.Uint32(buf[n:]))
	n += 4
	data := make([]float32, 0, count)
	for i := 0; i < count && len(buf) >= n+4; i++ {
		data = append(data, math.Float32frombits(binary.LittleEndian.Uint32(buf[n:])))
		n += 4
	}
	e.data = data
	return true
}
