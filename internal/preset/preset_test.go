package preset

import (
	"testing"

	"github.com/grainlab/groove-core/internal/modulation"
	"github.com/grainlab/groove-core/internal/voice"
)

func TestSerializeRoundTrip(t *testing.T) {
	p := &Preset{EngineType: voice.EngineFM2}
	p.Params[voice.ParamFilterCutoff] = 0.75
	p.Params[voice.ParamHarmonics] = 0.25
	p.LFOs = append(p.LFOs, LFOSetting{
		Waveform: modulation.LFOTriangle, Sync: modulation.SyncTempo,
		ClockDivision: 0.25, RateHz: 2, Depth: 0.8, Offset: 0.1,
		Bipolar: true, Invert: false, PulseWidth: 0.5, Enabled: true,
	})
	p.Slots = append(p.Slots, SlotSetting{
		ID: 3, Source: modulation.SourceLFO1, Destination: voice.ParamFilterCutoff,
		Amount: 0.5, Offset: 0, Processing: modulation.ProcExpCurve,
		Bipolar: true, CurveAmount: 0.3, ResponseMs: 20, Enabled: true,
	})

	buf := p.Serialize()
	got := Deserialize(buf)
	if got == nil {
		t.Fatal("expected successful round trip")
	}
	if got.EngineType != p.EngineType {
		t.Errorf("engine type mismatch: got %v want %v", got.EngineType, p.EngineType)
	}
	if got.Params[voice.ParamFilterCutoff] != 0.75 {
		t.Errorf("param mismatch: got %v", got.Params[voice.ParamFilterCutoff])
	}
	if len(got.LFOs) != 1 || got.LFOs[0].RateHz != 2 {
		t.Fatalf("lfo round trip failed: %+v", got.LFOs)
	}
	if len(got.Slots) != 1 || got.Slots[0].Amount != 0.5 || got.Slots[0].Processing != modulation.ProcExpCurve {
		t.Fatalf("slot round trip failed: %+v", got.Slots)
	}
}

func TestDeserializeRejectsBadMagic(t *testing.T) {
	buf := make([]byte, 16)
	if Deserialize(buf) != nil {
		t.Fatal("expected nil for bad magic")
	}
}

func TestDeserializeRejectsTruncated(t *testing.T) {
	p := &Preset{EngineType: voice.EngineSubtractive}
	buf := p.Serialize()
	if Deserialize(buf[:len(buf)-4]) != nil {
		t.Fatal("expected nil for truncated buffer")
	}
}
