package dsp

import (
	"math"
	"testing"
)

func TestOscillatorSineBounds(t *testing.T) {
	o := NewOscillator(48000)
	o.SetFrequency(440)
	for i := 0; i < 48000; i++ {
		v := o.Sample(WaveSine)
		if v < -1.01 || v > 1.01 {
			t.Fatalf("sine sample out of range at %d: %v", i, v)
		}
	}
}

func TestOscillatorSquarePulseWidth(t *testing.T) {
	o := NewOscillator(48000)
	o.SetFrequency(100)
	o.SetPulseWidth(0.25)
	high, low := 0, 0
	for i := 0; i < 480; i++ {
		if o.Sample(WaveSquare) > 0 {
			high++
		} else {
			low++
		}
	}
	if high == 0 || low == 0 {
		t.Fatalf("expected both high and low samples, got high=%d low=%d", high, low)
	}
	if high >= low {
		t.Fatalf("25%% pulse width should have fewer high samples than low, got high=%d low=%d", high, low)
	}
}

func TestBiquadBypassAtUnityGain(t *testing.T) {
	var b Biquad
	b.SetCoeffs(BiquadBell, 48000, 1000, 0.707, 0)
	var maxDiff float32
	for i := 0; i < 2000; i++ {
		x := float32(math.Sin(float64(i) * 0.05))
		y := b.Process(x)
		diff := y - x
		if diff < 0 {
			diff = -diff
		}
		if diff > maxDiff {
			maxDiff = diff
		}
	}
	if maxDiff > 0.05 {
		t.Fatalf("0dB bell should be near-transparent after settling, max diff %v", maxDiff)
	}
}

func TestBiquadResetThenSilenceStaysZero(t *testing.T) {
	var b Biquad
	b.SetCoeffs(BiquadLowPass, 48000, 500, 0.707, 0)
	for i := 0; i < 100; i++ {
		b.Process(1)
	}
	b.Reset()
	out := b.Process(0)
	if out != 0 {
		t.Fatalf("expected zero output after reset+zero input, got %v", out)
	}
}

func TestOnePoleLowPassSmoothsStep(t *testing.T) {
	p := NewOnePoleLowPass(200, 48000)
	var prev float32
	for i := 0; i < 10; i++ {
		out := p.Process(1)
		if i > 0 && out < prev {
			t.Fatalf("low-pass response to a step should be monotonic rising, sample %d dropped", i)
		}
		prev = out
	}
	if prev >= 1 {
		t.Fatalf("low-pass should not reach target instantly, got %v after 10 samples", prev)
	}
}

func TestPeakFollowerTracksLevel(t *testing.T) {
	pf := NewPeakFollower(1, 50, 48000)
	for i := 0; i < 1000; i++ {
		pf.Process(0.8)
	}
	if pf.Level() < 0.7 {
		t.Fatalf("expected peak follower to converge near 0.8, got %v", pf.Level())
	}
	for i := 0; i < 100; i++ {
		pf.Process(0)
	}
	if pf.Level() <= 0 {
		t.Fatalf("expected release to start decaying level, got %v", pf.Level())
	}
}

func TestSmoothedParamRampsAndSettles(t *testing.T) {
	sp := NewSmoothedParam(0, 100)
	sp.SetTarget(1)
	for i := 0; i < 99; i++ {
		v := sp.Next()
		if v >= 1 {
			t.Fatalf("ramp reached target too early at sample %d", i)
		}
	}
	final := sp.Next()
	if final != 1 {
		t.Fatalf("expected ramp to land exactly on target, got %v", final)
	}
}

func TestLCGDeterministicAndBounded(t *testing.T) {
	a := NewLCG(42)
	b := NewLCG(42)
	for i := 0; i < 1000; i++ {
		va, vb := a.NextBipolar(), b.NextBipolar()
		if va != vb {
			t.Fatalf("same seed should reproduce same sequence at %d", i)
		}
		if va < -1 || va >= 1 {
			t.Fatalf("bipolar sample out of range: %v", va)
		}
	}
}
