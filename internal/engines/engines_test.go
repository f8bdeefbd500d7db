package engines

import (
	"math"
	"testing"

	"github.com/grainlab/groove-core/internal/voice"
)

func TestSubtractiveC4Envelope(t *testing.T) {
	const sampleRate = 48000.0
	env := voice.NewADSR(sampleRate)
	e := NewSubtractive(sampleRate)
	e.AttachEnvelope(env)
	e.SetSampleRate(sampleRate)
	e.SetParameter(voice.ParamAttack, 0.01)
	e.SetParameter(voice.ParamDecay, 0.1)
	e.SetParameter(voice.ParamSustain, 0.7)
	e.SetParameter(voice.ParamRelease, 0.2)
	e.SetParameter(voice.ParamVolume, 0.5)

	env.NoteOn()
	e.NoteOn(60, 100.0/127.0, 0)

	buf := make([]float32, 480*2)
	// ProcessAudio advances env.Next() once per rendered frame internally.
	e.ProcessAudio(buf)

	var peak float32
	for _, s := range buf {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	if peak == 0 {
		t.Fatalf("expected non-zero output over first 480 samples")
	}
	if env.Level() <= 0.7 || env.Level() > 1.0 {
		t.Fatalf("expected envelope level in (0.7, 1.0] at sample 480, got %v", env.Level())
	}
}

func TestSubtractiveNoteOffDecaysToSilence(t *testing.T) {
	const sampleRate = 48000.0
	env := voice.NewADSR(sampleRate)
	e := NewSubtractive(sampleRate)
	e.AttachEnvelope(env)
	e.SetParameter(voice.ParamAttack, 0.01)
	e.SetParameter(voice.ParamDecay, 0.1)
	e.SetParameter(voice.ParamSustain, 0.7)
	e.SetParameter(voice.ParamRelease, 0.2)
	e.SetParameter(voice.ParamVolume, 0.5)

	env.NoteOn()
	e.NoteOn(60, 100.0/127.0, 0)
	buf := make([]float32, 480*2)
	e.ProcessAudio(buf)

	env.NoteOff()
	e.NoteOff(60)

	remaining := 48000
	chunk := make([]float32, 512)
	var last float32
	for remaining > 0 {
		n := len(chunk) / 2
		if n > remaining {
			n = remaining
		}
		slice := chunk[:n*2]
		for i := range slice {
			slice[i] = 0
		}
		e.ProcessAudio(slice)
		for i := 0; i < n; i++ {
			_ = env.Next()
		}
		last = slice[len(slice)-1]
		remaining -= n
	}
	if math.Abs(float64(last)) >= 1e-4 {
		t.Fatalf("expected near-silence after release, got %v", last)
	}
	if !env.IsIdle() {
		t.Fatalf("expected envelope Idle after full release render")
	}
}

func TestAllEngineTypesImplementInterface(t *testing.T) {
	types := []voice.EngineType{
		voice.EngineSubtractive, voice.EngineFM2, voice.EngineWavetable, voice.EngineWaveshaper,
		voice.EngineChord, voice.EngineAdditive, voice.EngineFormant, voice.EngineNoise,
		voice.EngineTidal, voice.EnginePhysicalModel, voice.EngineModal, voice.EngineDrumKit,
		voice.EngineSampleKit, voice.EngineSampleSlicer,
	}
	for _, et := range types {
		eng := New(et, 48000)
		env := voice.NewADSR(48000)
		eng.AttachEnvelope(env)
		env.NoteOn()
		eng.NoteOn(60, 0.8, 0)
		buf := make([]float32, 128)
		eng.ProcessAudio(buf)
		for _, s := range buf {
			if math.IsNaN(float64(s)) || math.IsInf(float64(s), 0) {
				t.Fatalf("engine %v produced non-finite sample", eng.Info().Name)
			}
		}
	}
}
