package velocity

import "testing"

func TestCaptureDiscardsBelowNoiseFloor(t *testing.T) {
	c := NewCapture()
	_, ok := c.Process(0, 0.001, 1000)
	if ok {
		t.Fatal("expected sample below noise floor to be discarded")
	}
}

func TestCaptureDebounce(t *testing.T) {
	c := NewCapture()
	_, ok := c.Process(0, 0.5, 1000)
	if !ok {
		t.Fatal("expected first sample to be accepted")
	}
	_, ok = c.Process(0, 0.5, 1100)
	if ok {
		t.Fatal("expected sample inside debounce window to be discarded")
	}
	_, ok = c.Process(0, 0.5, 10000)
	if !ok {
		t.Fatal("expected sample after debounce window to be accepted")
	}
}

func TestCaptureCalibration(t *testing.T) {
	c := NewCapture()
	c.StartCalibration(0)
	var ts int64
	for i := 0; i < CalibrationSamplesRequired; i++ {
		ts += 10000
		c.Process(0, 0.3+float64(i%10)*0.01, ts)
	}
	if !c.channels[0].calibrated {
		t.Fatal("expected channel to be calibrated after required samples")
	}
}

func TestLatchMomentaryReleasesOverTime(t *testing.T) {
	l := NewLatch()
	l.Configure(0, ChannelLatchConfig{Mode: LatchMomentary, Release: ReleaseLinear, ReleaseMs: 100, AttackMs: 1})
	l.Trigger(VelocityEvent{Channel: 0, Value: 1.0})
	out := l.Update(1)
	if out[0] <= 0 {
		t.Fatal("expected nonzero value right after trigger")
	}
	l.state[0].IsAttacking = false
	l.state[0].IsLatched = false
	l.state[0].IsReleasing = true
	for i := 0; i < 200; i++ {
		out = l.Update(1)
	}
	if out[0] != 0 {
		t.Fatalf("expected latch to fully release, got %v", out[0])
	}
}

func TestLatchToggle(t *testing.T) {
	l := NewLatch()
	l.Configure(0, ChannelLatchConfig{Mode: LatchToggle, AttackMs: 1})
	l.Trigger(VelocityEvent{Channel: 0, Value: 0.8})
	if !l.state[0].IsLatched {
		t.Fatal("expected toggle on after first trigger")
	}
	l.Trigger(VelocityEvent{Channel: 0, Value: 0.8})
	if l.state[0].IsLatched {
		t.Fatal("expected toggle off after second trigger")
	}
}

func TestLatchGroupMute(t *testing.T) {
	l := NewLatch()
	l.Configure(0, ChannelLatchConfig{Mode: LatchToggle, Group: 1, MuteOnGroupTrigger: true})
	l.Configure(1, ChannelLatchConfig{Mode: LatchToggle, Group: 1, MuteOnGroupTrigger: true})
	l.Trigger(VelocityEvent{Channel: 0, Value: 1})
	l.Trigger(VelocityEvent{Channel: 1, Value: 1})
	if l.state[0].IsLatched {
		t.Fatal("expected channel 0 to be muted when channel 1 in the same group triggers")
	}
}

func TestEmergencyStopClearsAllChannels(t *testing.T) {
	l := NewLatch()
	l.Configure(0, ChannelLatchConfig{Mode: LatchToggle})
	l.Trigger(VelocityEvent{Channel: 0, Value: 1})
	l.EmergencyStop()
	if l.state[0].IsLatched || l.state[0].CurrentVelocity != 0 {
		t.Fatal("expected emergency stop to clear channel state")
	}
}
