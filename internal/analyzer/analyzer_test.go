package analyzer

import (
	"math"
	"testing"
)

func TestSilenceHasNoActivity(t *testing.T) {
	a := New(48000)
	block := make([]float32, 512)
	frame, _ := a.ProcessAudioBuffer(block, 0)
	if frame.TotalEnergy != 0 {
		t.Fatalf("expected zero energy for silent block, got %v", frame.TotalEnergy)
	}
	if frame.HasActivity {
		t.Fatal("expected has_activity=false for a silent block")
	}
}

func TestSineProducesActivity(t *testing.T) {
	a := New(48000)
	block := make([]float32, 2*1024)
	freq := 1000.0
	for i := 0; i < 1024; i++ {
		s := float32(math.Sin(2 * math.Pi * freq * float64(i) / 48000))
		block[i*2] = s
		block[i*2+1] = s
	}
	var frame Frame
	for i := 0; i < 4; i++ {
		frame, _ = a.ProcessAudioBuffer(block, int64(i))
	}
	if !frame.HasActivity {
		t.Fatal("expected has_activity=true for a 1kHz tone")
	}
	if frame.TotalEnergy <= 0 {
		t.Fatalf("expected positive energy, got %v", frame.TotalEnergy)
	}
}

func TestHzToBarkMonotonic(t *testing.T) {
	prev := -1.0
	for hz := 20.0; hz < 20000; hz += 500 {
		b := hzToBark(hz)
		if b < prev {
			t.Fatalf("hzToBark not monotonic at %v Hz: %v < %v", hz, b, prev)
		}
		prev = b
	}
}

func TestBarkRangesCoverSpectrum(t *testing.T) {
	ranges := computeBarkRanges(48000)
	if ranges[0][0] != 0 {
		t.Fatalf("expected first band to start at bin 0, got %d", ranges[0][0])
	}
	for i := 1; i < BarkBands; i++ {
		if ranges[i][0] < ranges[i-1][0] {
			t.Fatalf("bark ranges should be non-decreasing, band %d starts before band %d", i, i-1)
		}
	}
}
