package modulation

import (
	"testing"

	"github.com/grainlab/groove-core/internal/voice"
)

func TestGetModulatedValuePassthroughWhenNoSlots(t *testing.T) {
	m := NewMatrix(48000, 4)
	v := m.GetModulatedValue(voice.ParamFilterCutoff, 0.42)
	if v != 0.42 {
		t.Fatalf("expected pass-through base value, got %v", v)
	}
}

func TestGetModulatedValueDisabledSlotIsIgnored(t *testing.T) {
	m := NewMatrix(48000, 4)
	m.SetSourceValue(SourceVelocity, 1)
	m.AddSlot(&Slot{ID: 1, Source: SourceVelocity, Destination: voice.ParamFilterCutoff, Amount: 1, Bipolar: true, Enabled: false})
	v := m.GetModulatedValue(voice.ParamFilterCutoff, 0.5)
	if v != 0.5 {
		t.Fatalf("disabled slot should not affect result, got %v", v)
	}
}

func TestGetModulatedValueAppliesEnabledSlot(t *testing.T) {
	m := NewMatrix(48000, 4)
	m.SetSourceValue(SourceVelocity, 1)
	m.AddSlot(&Slot{ID: 1, Source: SourceVelocity, Destination: voice.ParamFilterCutoff, Amount: 0.5, Bipolar: true, Enabled: true})
	v := m.GetModulatedValue(voice.ParamFilterCutoff, 0.0)
	if v != 0.5 {
		t.Fatalf("expected base+contribution == 0.5, got %v", v)
	}
}

func TestGetModulatedValueConditionGates(t *testing.T) {
	m := NewMatrix(48000, 4)
	m.SetSourceValue(SourceAftertouch, 0)
	m.SetSourceValue(SourceVelocity, 1)
	m.AddSlot(&Slot{
		ID: 1, Source: SourceVelocity, Destination: voice.ParamFilterCutoff, Amount: 1, Bipolar: true, Enabled: true,
		Condition: &Condition{Source: SourceAftertouch, Threshold: 0.5, Invert: false},
	})
	v := m.GetModulatedValue(voice.ParamFilterCutoff, 0.0)
	if v != 0 {
		t.Fatalf("condition unmet should skip slot, got %v", v)
	}
	m.SetSourceValue(SourceAftertouch, 0.9)
	v = m.GetModulatedValue(voice.ParamFilterCutoff, 0.0)
	if v != 1 {
		t.Fatalf("condition met should apply slot, got %v", v)
	}
}

func TestLFOPhaseWraps(t *testing.T) {
	l := NewLFO(1000)
	l.RateHz = 1000
	l.Bipolar = true
	for i := 0; i < 10000; i++ {
		l.Advance(0.001, 120, 0, 0)
		if l.phase < 0 || l.phase >= 1 {
			t.Fatalf("phase out of [0,1) at iter %d: %v", i, l.phase)
		}
	}
}

func TestLFOTempoSyncTracksClockDivision(t *testing.T) {
	l := NewLFO(1000)
	l.Sync = SyncTempo
	l.ClockDivision = 2
	l.Bipolar = true
	l.Depth = 1

	// At 120 BPM with ClockDivision 2 the LFO should run at
	// TempoToRateHz(120, 2) = 4 Hz, i.e. a full cycle every 0.25s.
	const tempo = 120.0
	wantHz := TempoToRateHz(tempo, l.ClockDivision)
	if wantHz != 4 {
		t.Fatalf("TempoToRateHz(120,2): got %v want 4", wantHz)
	}

	steps := int(1.0 / wantHz / 0.001)
	for i := 0; i < steps; i++ {
		l.Advance(0.001, tempo, 0, 0)
	}
	if l.phase > 0.05 && l.phase < 0.95 {
		t.Fatalf("expected phase to have wrapped back near 0 after one tempo-synced cycle, got %v", l.phase)
	}

	l2 := NewLFO(1000)
	l2.Sync = SyncFree
	l2.RateHz = 1000
	l2.ClockDivision = 2
	l2.Bipolar = true
	l2.Advance(0.0001, tempo, 0, 0)
	if l2.phase < 0.05 {
		t.Fatalf("free-running LFO should ignore ClockDivision/tempo and use RateHz, got phase %v", l2.phase)
	}
}

func TestGlobalModAmountScalesContribution(t *testing.T) {
	m := NewMatrix(48000, 1)
	m.SetSourceValue(SourceVelocity, 1)
	m.AddSlot(&Slot{ID: 1, Source: SourceVelocity, Destination: voice.ParamFilterCutoff, Amount: 1, Bipolar: true, Enabled: true})

	full := m.GetModulatedValue(voice.ParamFilterCutoff, 0.0)
	m.GlobalModAmount = 0.5
	half := m.GetModulatedValue(voice.ParamFilterCutoff, 0.0)
	if half != full*0.5 {
		t.Fatalf("expected GlobalModAmount to scale contribution: full=%v half=%v", full, half)
	}
}

func TestMacroWeightedSum(t *testing.T) {
	m := NewMatrix(48000, 1)
	m.SetSourceValue(SourceVelocity, 0.5)
	m.SetSourceValue(SourceAftertouch, 1.0)
	m.SetMacro(0, []MacroWeight{{Source: SourceVelocity, Weight: 0.5}, {Source: SourceAftertouch, Weight: 0.5}})
	m.Tick(0.002, 120, nil, nil)
	got := m.sources[SourceMacro1]
	want := 0.5*0.5 + 1.0*0.5
	if got != want {
		t.Fatalf("macro sum: got %v want %v", got, want)
	}
}
