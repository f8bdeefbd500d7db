// Package velocity implements the sensor capture pipeline (per-channel
// calibration, velocity curves, ghost suppression) and the latch system
// that turns captured VelocityEvents into a sustained modulation source.
package velocity

import "github.com/grainlab/groove-core/internal/dsp"

// MaxChannels bounds the capture pipeline to 16 channels.
const MaxChannels = 16

// CalibrationSamplesRequired is the sample count a channel must see while
// calibrating before it's marked calibrated.
const CalibrationSamplesRequired = 256

// SourceType names where a channel's raw samples originate.
type SourceType int

const (
	SourceHallEffect SourceType = iota
	SourceMIDI
	SourceAnalog
	SourceSoftware
	SourceComposite
	SourceDisabled
)

// CurveType selects the shaping curve applied to a calibrated, sensitivity-
// scaled raw reading.
type CurveType int

const (
	CurveLinear CurveType = iota
	CurveExponential
	CurveLogarithmic
	CurveCustom
)

// CustomCurve is a user-supplied velocity curve used when CurveType is
// CurveCustom; nil falls back to linear.
type CustomCurve func(x float64) float64

// ChannelConfig is the per-channel configuration of the capture pipeline.
type ChannelConfig struct {
	Source            SourceType
	Sensitivity       float64
	NoiseFloor        float64
	MaxVelocity       float64
	DebounceMicros    int64
	Curve             CurveType
	Custom            CustomCurve
	GhostSuppression  bool
}

// DefaultChannelConfig returns a sane starting configuration: hall-effect
// source, unity sensitivity, a small noise floor, 5ms debounce, linear
// curve.
func DefaultChannelConfig() ChannelConfig {
	return ChannelConfig{
		Source:         SourceHallEffect,
		Sensitivity:    1.0,
		NoiseFloor:     0.02,
		MaxVelocity:    1.0,
		DebounceMicros: 5000,
		Curve:          CurveLinear,
	}
}

// VelocityEvent is the capture pipeline's output: a single hit on one
// channel.
type VelocityEvent struct {
	Channel     int
	TimestampUs int64
	Value       float64 // processed, curve-shaped
	Raw         float64
	Source      SourceType
	Ghost       bool
	Confidence  float64
}

// channelState is the capture pipeline's per-channel running state:
// calibration accumulators and debounce bookkeeping.
type channelState struct {
	cfg ChannelConfig

	calibrating        bool
	calibrated         bool
	calibSamplesSeen   int
	runningMin         float64
	runningMax         float64
	noiseEstimate      float64
	optimalSensitivity float64

	lastEventUs int64
	lastValue   float64
}

// Capture is the velocity-capture pipeline: up to MaxChannels independent
// channels, each with its own configuration and calibration state.
type Capture struct {
	channels       [MaxChannels]channelState
	globalSens     float64
	lastEventUsAll [MaxChannels]int64
	rng            dsp.LCG
}

// NewCapture builds a capture pipeline with every channel at its default
// configuration and global sensitivity at unity.
func NewCapture() *Capture {
	c := &Capture{globalSens: 1.0, rng: dsp.NewLCG(0x5EED)}
	for i := range c.channels {
		c.channels[i].cfg = DefaultChannelConfig()
		c.channels[i].runningMin = 1
		c.channels[i].runningMax = 0
	}
	return c
}

// Configure replaces a channel's configuration.
func (c *Capture) Configure(channel int, cfg ChannelConfig) {
	if channel < 0 || channel >= MaxChannels {
		return
	}
	c.channels[channel].cfg = cfg
}

// SetGlobalSensitivity scales every channel's effective sensitivity.
func (c *Capture) SetGlobalSensitivity(s float64) { c.globalSens = s }

// StartCalibration arms a channel's calibration accumulator.
func (c *Capture) StartCalibration(channel int) {
	if channel < 0 || channel >= MaxChannels {
		return
	}
	ch := &c.channels[channel]
	ch.calibrating = true
	ch.calibrated = false
	ch.calibSamplesSeen = 0
	ch.runningMin = 1
	ch.runningMax = 0
}

// Process feeds one raw sample from a channel at a given timestamp and
// returns the resulting VelocityEvent, or ok=false if the sample was
// discarded (below noise floor, inside the debounce window, or the
// channel is disabled).
func (c *Capture) Process(channel int, raw float64, timestampUs int64) (VelocityEvent, bool) {
	if channel < 0 || channel >= MaxChannels {
		return VelocityEvent{}, false
	}
	ch := &c.channels[channel]
	if ch.cfg.Source == SourceDisabled {
		return VelocityEvent{}, false
	}
	if raw < ch.cfg.NoiseFloor {
		return VelocityEvent{}, false
	}
	if ch.lastEventUs != 0 && timestampUs-ch.lastEventUs < ch.cfg.DebounceMicros {
		return VelocityEvent{}, false
	}

	scaled := raw * ch.cfg.Sensitivity * c.globalSens

	if ch.calibrating {
		if scaled < ch.runningMin {
			ch.runningMin = scaled
		}
		if scaled > ch.runningMax {
			ch.runningMax = scaled
		}
		ch.calibSamplesSeen++
		if ch.calibSamplesSeen >= CalibrationSamplesRequired {
			ch.calibrating = false
			ch.calibrated = true
			span := ch.runningMax - ch.runningMin
			if span <= 1e-6 {
				span = 1e-6
			}
			ch.optimalSensitivity = 1 / span
			ch.noiseEstimate = ch.runningMin
		}
	}

	value := applyCurve(ch.cfg.Curve, ch.cfg.Custom, clamp01(scaled/maxF(ch.cfg.MaxVelocity, 1e-6)))

	ghost := false
	if ch.cfg.GhostSuppression {
		ghost = c.ghostCheck(channel, value, timestampUs)
	}

	confidence := computeConfidence(scaled, ch.cfg.NoiseFloor, ch.calibrated, value)

	ch.lastEventUs = timestampUs
	ch.lastValue = value
	c.lastEventUsAll[channel] = timestampUs

	return VelocityEvent{
		Channel:     channel,
		TimestampUs: timestampUs,
		Value:       value,
		Raw:         raw,
		Source:      ch.cfg.Source,
		Ghost:       ghost,
		Confidence:  confidence,
	}, true
}

// ghostWindowUs is the cross-channel simultaneity window (within 2 ms
// counts as a ghost trigger on neighboring channels).
const ghostWindowUs = 2000

// ghostCheck flags an event as a ghost if another channel fired a
// high-velocity event within the ghost window.
func (c *Capture) ghostCheck(channel int, value float64, timestampUs int64) bool {
	if value < 0.3 {
		return false
	}
	for i := range c.lastEventUsAll {
		if i == channel {
			continue
		}
		dt := timestampUs - c.lastEventUsAll[i]
		if dt < 0 {
			dt = -dt
		}
		if dt <= ghostWindowUs && c.channels[i].lastValue >= 0.5 {
			return true
		}
	}
	return false
}

func applyCurve(kind CurveType, custom CustomCurve, x float64) float64 {
	switch kind {
	case CurveLinear:
		return x
	case CurveExponential:
		return x * x
	case CurveLogarithmic:
		if x <= 0 {
			return 0
		}
		return clamp01(1 - (1-x)*(1-x))
	case CurveCustom:
		if custom != nil {
			return clamp01(custom(x))
		}
		return x
	default:
		return x
	}
}

// computeConfidence estimates how trustworthy a reading is: it drops near
// the noise floor, for uncalibrated channels, and at the extreme ends of
// the velocity range.
func computeConfidence(scaled, noiseFloor float64, calibrated bool, value float64) float64 {
	conf := 1.0
	if scaled < noiseFloor*3 {
		conf *= scaled / (noiseFloor * 3)
	}
	if !calibrated {
		conf *= 0.7
	}
	extremes := 1 - 2*absF(value-0.5)
	conf *= 0.5 + 0.5*extremes
	return clamp01(conf)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func absF(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
