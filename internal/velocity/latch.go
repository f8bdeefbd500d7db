package velocity

import "github.com/grainlab/groove-core/internal/dsp"

// LatchMode selects how a channel's latch reacts to triggering events.
type LatchMode int

const (
	LatchOff LatchMode = iota
	LatchMomentary
	LatchToggle
	LatchTimedHold
	LatchSustainPedal
	LatchVelocityThreshold
	LatchPatternSync
)

// ReleaseMode selects the shape of a latch's release ramp.
type ReleaseMode int

const (
	ReleaseInstant ReleaseMode = iota
	ReleaseLinear
	ReleaseExponential
	ReleaseLogarithmic
	ReleaseCustomEnvelope
	ReleasePatternQuantized
)

// MaxLatchGroups bounds the group id range to 1..8.
const MaxLatchGroups = 8

// MaxLatchTimeMs is the system-wide safety limit TimedHold channels
// auto-release at regardless of their configured hold time.
const MaxLatchTimeMs = 60000.0

// ChannelLatchConfig configures one channel's latch behavior.
type ChannelLatchConfig struct {
	Mode              LatchMode
	Release           ReleaseMode
	HoldMs            float64
	ReleaseMs         float64
	AttackMs          float64
	DebounceMs        float64
	VelocityThreshold float64
	CustomEnvelope    func(phase float64) float64
	Group             int // 0 = no group, 1..MaxLatchGroups otherwise
	MuteOnGroupTrigger      bool
	InheritGroupVelocity    bool
}

// ChannelLatchState is the live state machine for one latched channel.
type ChannelLatchState struct {
	IsLatched      bool
	IsTriggered    bool
	IsReleasing    bool
	IsAttacking    bool
	CurrentVelocity  float64
	TargetVelocity   float64
	OriginalVelocity float64
	EnvelopePhase    float64
	LatchStartMs     float64
	RetriggerCount   int
	CurrentGroup     int

	toggleOn bool
}

// Latch drives MaxChannels independent latch state machines from incoming
// VelocityEvents, producing the sustained modulation-source value each
// downstream consumer reads.
type Latch struct {
	cfg   [MaxChannels]ChannelLatchConfig
	state [MaxChannels]ChannelLatchState

	nowMs float64

	beatGridMs float64 // sequencer's beat grid period, for PatternSync triggers
}

// NewLatch builds a latch system with every channel off.
func NewLatch() *Latch {
	l := &Latch{beatGridMs: 500}
	for i := range l.cfg {
		l.cfg[i] = ChannelLatchConfig{Release: ReleaseLinear, ReleaseMs: 100, AttackMs: 5}
	}
	return l
}

// Configure replaces a channel's latch configuration.
func (l *Latch) Configure(channel int, cfg ChannelLatchConfig) {
	if channel < 0 || channel >= MaxChannels {
		return
	}
	l.cfg[channel] = cfg
}

// SetBeatGridMs updates the sequencer-beat period used to quantize
// PatternSync triggers. Releases are not quantized: ReleasePatternQuantized
// ramps down linearly, the same as ReleaseLinear.
func (l *Latch) SetBeatGridMs(ms float64) {
	if ms > 0 {
		l.beatGridMs = ms
	}
}

// State returns a channel's current state for inspection (UI, telemetry).
func (l *Latch) State(channel int) ChannelLatchState {
	if channel < 0 || channel >= MaxChannels {
		return ChannelLatchState{}
	}
	return l.state[channel]
}

// Trigger feeds a VelocityEvent into a channel's latch state machine.
func (l *Latch) Trigger(ev VelocityEvent) {
	ch := ev.Channel
	if ch < 0 || ch >= MaxChannels {
		return
	}
	cfg := &l.cfg[ch]
	st := &l.state[ch]

	switch cfg.Mode {
	case LatchOff:
		return
	case LatchMomentary:
		st.IsTriggered = true
		st.IsAttacking = true
		st.IsReleasing = false
		st.TargetVelocity = ev.Value
		st.OriginalVelocity = ev.Value
		st.IsLatched = true
	case LatchToggle:
		st.toggleOn = !st.toggleOn
		st.IsLatched = st.toggleOn
		if st.toggleOn {
			st.IsAttacking = true
			st.IsReleasing = false
			st.TargetVelocity = ev.Value
			st.OriginalVelocity = ev.Value
		} else {
			st.IsReleasing = true
			st.IsAttacking = false
		}
	case LatchTimedHold:
		st.IsLatched = true
		st.IsAttacking = true
		st.IsReleasing = false
		st.TargetVelocity = ev.Value
		st.OriginalVelocity = ev.Value
		st.LatchStartMs = l.nowMs
	case LatchSustainPedal:
		st.IsLatched = ev.Value > 0.5
		st.TargetVelocity = ev.Value
		st.OriginalVelocity = ev.Value
		st.IsAttacking = st.IsLatched
		st.IsReleasing = !st.IsLatched
	case LatchVelocityThreshold:
		if ev.Value >= cfg.VelocityThreshold {
			st.IsLatched = true
			st.IsAttacking = true
			st.IsReleasing = false
			st.TargetVelocity = ev.Value
			st.OriginalVelocity = ev.Value
		}
	case LatchPatternSync:
		// Quantize the trigger instant to the nearest beat-grid boundary;
		// the actual attack begins at the next Update tick that crosses it.
		st.IsLatched = true
		st.IsAttacking = true
		st.IsReleasing = false
		st.TargetVelocity = ev.Value
		st.OriginalVelocity = ev.Value
		st.LatchStartMs = quantizeToGrid(l.nowMs, l.beatGridMs)
	}
	st.RetriggerCount++
	st.CurrentGroup = cfg.Group

	if cfg.Group > 0 {
		l.applyGroup(ch, cfg.Group, ev.Value)
	}
}

func quantizeToGrid(ms, grid float64) float64 {
	if grid <= 0 {
		return ms
	}
	n := float64(int(ms/grid + 0.5))
	return n * grid
}

// applyGroup enacts the group-trigger policy: mute siblings, or have them
// inherit the triggering channel's velocity.
func (l *Latch) applyGroup(trigger, group int, velocity float64) {
	for i := range l.cfg {
		if i == trigger || l.cfg[i].Group != group {
			continue
		}
		if l.cfg[i].MuteOnGroupTrigger {
			l.state[i].IsLatched = false
			l.state[i].IsReleasing = true
			l.state[i].IsAttacking = false
		}
		if l.cfg[i].InheritGroupVelocity {
			l.state[i].TargetVelocity = velocity
		}
	}
}

// Update advances every channel's attack/release ramp by dtMs milliseconds
// and returns the dense array of current output values, one per channel,
// suitable for feeding straight into the modulation fabric's velocity
// source (or per-channel macro sources for multi-pad setups).
func (l *Latch) Update(dtMs float64) [MaxChannels]float64 {
	l.nowMs += dtMs
	var out [MaxChannels]float64
	for i := range l.state {
		out[i] = l.updateChannel(i, dtMs)
	}
	return out
}

func (l *Latch) updateChannel(i int, dtMs float64) float64 {
	cfg := &l.cfg[i]
	st := &l.state[i]

	if cfg.Mode == LatchTimedHold && st.IsLatched {
		holdMs := cfg.HoldMs
		if holdMs <= 0 || holdMs > MaxLatchTimeMs {
			holdMs = MaxLatchTimeMs
		}
		if l.nowMs-st.LatchStartMs >= holdMs {
			st.IsLatched = false
			st.IsAttacking = false
			st.IsReleasing = true
		}
	}

	if cfg.Mode == LatchPatternSync && st.IsAttacking && l.nowMs < st.LatchStartMs {
		return st.CurrentVelocity
	}

	if st.IsAttacking {
		attackMs := maxF(cfg.AttackMs, 0.01)
		st.CurrentVelocity += (st.TargetVelocity - st.CurrentVelocity) * dtMs / attackMs
		if absF(st.TargetVelocity-st.CurrentVelocity) < 1e-3 {
			st.CurrentVelocity = st.TargetVelocity
			st.IsAttacking = false
		}
		return st.CurrentVelocity
	}

	if st.IsLatched {
		st.CurrentVelocity = st.TargetVelocity
		return st.CurrentVelocity
	}

	if st.IsReleasing {
		st.CurrentVelocity = releaseStep(cfg, st, dtMs)
		if st.CurrentVelocity <= 1e-4 {
			st.CurrentVelocity = 0
			st.IsReleasing = false
		}
		return st.CurrentVelocity
	}

	st.CurrentVelocity = 0
	return 0
}

func releaseStep(cfg *ChannelLatchConfig, st *ChannelLatchState, dtMs float64) float64 {
	releaseMs := maxF(cfg.ReleaseMs, 0.01)
	switch cfg.Release {
	case ReleaseInstant:
		return 0
	case ReleaseLinear:
		return st.CurrentVelocity - st.OriginalVelocity*dtMs/releaseMs
	case ReleaseExponential:
		k := dtMs / releaseMs
		return st.CurrentVelocity * dsp.ExpDecay(k)
	case ReleaseLogarithmic:
		frac := st.CurrentVelocity / maxF(st.OriginalVelocity, 1e-6)
		step := dtMs / releaseMs
		return st.OriginalVelocity * maxF(frac-step*frac, 0)
	case ReleaseCustomEnvelope:
		if cfg.CustomEnvelope != nil {
			st.EnvelopePhase += dtMs / releaseMs
			return st.OriginalVelocity * clamp01(1-cfg.CustomEnvelope(clamp01(st.EnvelopePhase)))
		}
		return st.CurrentVelocity - st.OriginalVelocity*dtMs/releaseMs
	case ReleasePatternQuantized:
		return st.CurrentVelocity - st.OriginalVelocity*dtMs/releaseMs
	default:
		return 0
	}
}

// EmergencyStop synchronously clears every channel to Idle.
func (l *Latch) EmergencyStop() {
	for i := range l.state {
		l.state[i] = ChannelLatchState{}
	}
}
