package effects

import (
	"math"
	"testing"
)

func TestReverbProducesOutput(t *testing.T) {
	r := NewReverb(44100, 1.0)
	r.ProcessWet(1.0, 1.0)
	var maxOut float32
	for i := 0; i < 10000; i++ {
		l, _ := r.ProcessWet(0, 0)
		if l > maxOut {
			maxOut = l
		}
	}
	if maxOut < 0.001 {
		t.Error("expected reverb tail")
	}
}

func TestDistortionClips(t *testing.T) {
	d := NewDistortion(44100, 10, 0.5, 0)
	l, r := d.Process(0.5, 0.5)
	if math.Abs(float64(l)) > 1.0 || math.Abs(float64(r)) > 1.0 {
		t.Error("distortion output should be bounded")
	}
	if math.Abs(float64(l)) < 0.01 {
		t.Error("expected non-zero distortion output")
	}
}

func TestChainProducesOutput(t *testing.T) {
	c := NewChain(
		NewDistortion(44100, 2, 1, 0),
		NewFilter(44100),
	)
	l, r := c.Process(0.5, 0.5)
	if l == 0 || r == 0 {
		t.Error("chain should produce output")
	}
}

// TestParametricEQBypassIsIdentity checks the master EQ's pass-through
// property: with every band disabled and auto-gain off, output must equal
// input to within numerical noise.
func TestParametricEQBypassIsIdentity(t *testing.T) {
	eq := NewParametricEQ7(44100)
	for i := 0; i < 2000; i++ {
		in := float32(math.Sin(float64(i) * 0.1))
		l, r := eq.Process(in, in)
		if math.Abs(float64(l-in)) > 1e-6 || math.Abs(float64(r-in)) > 1e-6 {
			t.Fatalf("expected bypass identity at sample %d, got l=%v want=%v", i, l, in)
		}
	}
}

// TestParametricEQMidBoostDoublesPeak exercises the master bus's scenario:
// a 1kHz sine through the MID band at +6dB, Q=1, centered at 1kHz should
// land near a 2.0x peak gain.
func TestParametricEQMidBoostDoublesPeak(t *testing.T) {
	const sampleRate = 44100
	eq := NewParametricEQ7(sampleRate)
	eq.SetBand(3, 1000, 1, 6, true)

	var inPeak, outPeak float32
	for i := 0; i < sampleRate; i++ {
		x := float32(math.Sin(2 * math.Pi * 1000 * float64(i) / sampleRate))
		l, _ := eq.Process(x, x)
		if i > sampleRate/2 { // skip filter settling
			if x > inPeak {
				inPeak = x
			}
			if l > outPeak {
				outPeak = l
			}
		}
	}
	ratio := outPeak / inPeak
	if ratio < 1.7 || ratio > 2.3 {
		t.Fatalf("expected roughly 2.0x peak gain for +6dB mid boost, got %v", ratio)
	}
}

func TestCompressorReducesLoud(t *testing.T) {
	c := NewCompressor(44100, -10, 4, 1, 50, 0)
	var out float32
	for i := 0; i < 1000; i++ {
		out, _ = c.Process(1.0, 1.0)
	}
	if out >= 1.0 {
		t.Errorf("compressor should reduce loud signals, got %f", out)
	}
}

func TestCompressorRuntimeSetters(t *testing.T) {
	c := NewCompressor(44100, -10, 4, 1, 50, 0)
	c.SetThreshold(-30)
	c.SetRatio(8)
	if c.threshold >= float32(1.0) {
		t.Fatal("expected threshold to update to a lower value")
	}
	if c.ratio != 8 {
		t.Fatalf("expected ratio to update to 8, got %v", c.ratio)
	}
}

func TestLimiterClampsToUnit(t *testing.T) {
	lim := NewLimiter()
	l, r := lim.Process(5, -5)
	if l != limiterCeiling || r != -limiterCeiling {
		t.Fatalf("expected hard clamp to +-%v, got l=%v r=%v", limiterCeiling, l, r)
	}
}

func TestShimmerSilentBelowEngageThreshold(t *testing.T) {
	s := NewShimmer(44100)
	for i := 0; i < 4096; i++ {
		l, r := s.Process(0.5, 0.5, 0.3)
		if l != 0 || r != 0 {
			t.Fatalf("expected shimmer silent below wet=0.4, got l=%v r=%v", l, r)
		}
	}
}

func TestShimmerProducesOutputAboveThreshold(t *testing.T) {
	s := NewShimmer(44100)
	var maxOut float32
	for i := 0; i < 8192; i++ {
		x := float32(math.Sin(float64(i) * 0.05))
		l, _ := s.Process(x, x, 0.8)
		if math.Abs(float64(l)) > float64(maxOut) {
			maxOut = float32(math.Abs(float64(l)))
		}
	}
	if maxOut <= 0 {
		t.Error("expected nonzero shimmer output once engaged")
	}
}

func TestTiltOppositeDirections(t *testing.T) {
	tilt := NewTilt(44100)
	tilt.SetAmount(0) // full bass boost
	lowIn := float32(1)
	var lastLow float32
	for i := 0; i < 200; i++ {
		lastLow, _ = tilt.Process(lowIn, lowIn)
	}
	if lastLow <= 0 {
		t.Fatal("expected nonzero response from tilted low-frequency content")
	}

	treble := NewTilt(44100)
	treble.SetAmount(1) // full treble boost
	var lastHigh float32
	for i := 0; i < 200; i++ {
		lastHigh, _ = treble.Process(lowIn, lowIn)
	}
	if lastHigh >= lastLow {
		t.Fatalf("expected treble tilt to pass less low-frequency content than bass tilt: treble=%v bass=%v", lastHigh, lastLow)
	}
}

func TestTiltGainFormulaMatchesPivotFormula(t *testing.T) {
	const eps = 1e-5
	check := func(amount, wantBass, wantTreble float32) {
		tilt := NewTilt(44100)
		tilt.SetAmount(amount)
		bassGain, trebleGain := tilt.gains()
		if abs32(bassGain-wantBass) > eps || abs32(trebleGain-wantTreble) > eps {
			t.Fatalf("amount=%v: got bass=%v treble=%v want bass=%v treble=%v", amount, bassGain, trebleGain, wantBass, wantTreble)
		}
	}
	check(0, 1.3, 0.7)
	check(1, 0.7, 1.3)
	check(0.5, 1, 1)
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func TestMasterBusProducesBoundedOutput(t *testing.T) {
	m := NewMasterBus(44100)
	for i := 0; i < 4096; i++ {
		x := float32(math.Sin(float64(i) * 0.2))
		l, r := m.Process(x, x)
		if math.Abs(float64(l)) > 1.0 || math.Abs(float64(r)) > 1.0 {
			t.Fatalf("expected master bus output bounded by the limiter, got l=%v r=%v", l, r)
		}
	}
}

func TestTrackChainSkipsUnconfiguredStages(t *testing.T) {
	tc := NewTrackChain(44100, TrackChainConfig{})
	l, r := tc.Process(0.5, 0.5)
	if l != 0.5 || r != 0.5 {
		t.Fatalf("expected a chain with no stages enabled to pass through unchanged, got l=%v r=%v", l, r)
	}
	if tc.Filter() != nil || tc.Drive() != nil {
		t.Fatal("expected nil accessors for stages that weren't configured")
	}
}
