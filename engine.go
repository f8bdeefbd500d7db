// Package groove ties every subsystem package into one real-time audio
// graph: the sequencer clock drives voice allocation, the modulation fabric
// steers live parameters, and each track's render passes through its own
// effects chain before summing into the master bus.
package groove

import (
	"sort"

	"github.com/charmbracelet/log"

	"github.com/grainlab/groove-core/internal/analyzer"
	"github.com/grainlab/groove-core/internal/control"
	"github.com/grainlab/groove-core/internal/effects"
	"github.com/grainlab/groove-core/internal/engines"
	"github.com/grainlab/groove-core/internal/modulation"
	"github.com/grainlab/groove-core/internal/sequencer"
	"github.com/grainlab/groove-core/internal/velocity"
	"github.com/grainlab/groove-core/internal/voice"
	"github.com/grainlab/groove-core/internal/voicemgr"
)

// DefaultVoicesPerTrack bounds each track's own voice pool. Polyphony is
// budgeted per track rather than globally: the control-flow description of
// routing "the sum through the per-track FX chain then the master chain"
// only makes sense if a track's audio is separable from every other
// track's right up until the two chains meet, so each track owns its own
// fixed-size voicemgr.Manager instead of sharing one global pool.
const DefaultVoicesPerTrack = 8

// TrackConfig is the engine-level setup for one sequencer track: which
// synthesis engine its voices use and which optional effects stages its
// chain includes.
type TrackConfig struct {
	Engine     voice.EngineType
	VoiceCount int
	FX         effects.TrackChainConfig
}

// track bundles one sequencer lane's voice pool and effects chain.
type track struct {
	voices *voicemgr.Manager
	fx     *effects.TrackChain
	params [voice.ParamCount]float64
}

// Engine is the top-level audio graph: sequencer clock, per-track voice
// pools and effects, modulation fabric, velocity pipeline, master bus, and
// spectrum analyzer, exposed as a single SampleSource the stream player
// pulls from.
type Engine struct {
	SampleRate float64

	Pattern  *sequencer.Pattern
	Playhead *sequencer.Playhead
	Chain    *sequencer.ChainManager

	tracks [sequencer.MaxTracks]*track

	Mod      *modulation.Matrix
	Velocity *velocity.Capture
	Latch    *velocity.Latch
	Master   *effects.MasterBus
	Analyzer *analyzer.Analyzer

	Events    *control.EventQueue
	Telemetry *control.TelemetryQueue
	logger    *log.Logger

	dryBuf      []float32
	trackBuf    []float32
	events      []sequencer.StepEvent
	drained     []control.ControlEvent
	sampleClock int64
}

// NewEngine builds a fully wired engine at sampleRate for the given
// pattern, with one track slot configured per entry in cfgs
// (indices beyond len(cfgs) fall back to a subtractive engine with no
// optional FX stages).
func NewEngine(sampleRate float64, pattern *sequencer.Pattern, cfgs []TrackConfig, logger *log.Logger) *Engine {
	e := &Engine{
		SampleRate: sampleRate,
		Pattern:    pattern,
		Playhead:   sequencer.NewPlayhead(sampleRate, 120),
		Chain:      sequencer.NewChainManager(nil),
		Mod:        modulation.NewMatrix(sampleRate, 4),
		Velocity:   velocity.NewCapture(),
		Latch:      velocity.NewLatch(),
		Master:     effects.NewMasterBus(int(sampleRate)),
		Analyzer:   analyzer.New(sampleRate),
		Events:     control.NewEventQueue(256),
		Telemetry:  control.NewTelemetryQueue(256),
		logger:     logger,
	}
	for t := range e.tracks {
		cfg := TrackConfig{Engine: voice.EngineSubtractive, VoiceCount: DefaultVoicesPerTrack}
		if t < len(cfgs) {
			cfg = cfgs[t]
		}
		if cfg.VoiceCount <= 0 {
			cfg.VoiceCount = DefaultVoicesPerTrack
		}
		engineType := cfg.Engine
		e.tracks[t] = &track{
			voices: voicemgr.NewManager(cfg.VoiceCount, sampleRate, func(slot int) voice.SynthEngine {
				return engines.New(engineType, sampleRate)
			}),
			fx: effects.NewTrackChain(int(sampleRate), cfg.FX),
		}
		for p := range e.tracks[t].params {
			e.tracks[t].params[p] = 0.5
		}
	}
	return e
}

// SetTrackParameter stores a track's base value for a parameter; the
// modulation fabric's contribution is folded on top of it each block.
func (e *Engine) SetTrackParameter(trackIdx int, id voice.ParameterID, v float64) {
	if trackIdx < 0 || trackIdx >= sequencer.MaxTracks {
		return
	}
	e.tracks[trackIdx].params[id] = v
}

// NotifyVelocitySample feeds one raw sensor reading into the velocity
// capture pipeline from the control context, latching the result if the
// channel has a latch mode configured.
func (e *Engine) NotifyVelocitySample(channel int, raw float64, timestampUs int64) {
	ev, ok := e.Velocity.Process(channel, raw, timestampUs)
	if !ok {
		return
	}
	e.Latch.Trigger(ev)
}

// EmergencyStop synchronously silences every voice and clears every latch.
func (e *Engine) EmergencyStop() {
	for _, tr := range e.tracks {
		tr.voices.AllNotesOff()
	}
	e.Latch.EmergencyStop()
}

func (e *Engine) ensureScratch(n int) {
	if cap(e.dryBuf) < n*2 {
		e.dryBuf = make([]float32, n*2)
	}
	e.dryBuf = e.dryBuf[:n*2]
	if cap(e.trackBuf) < n*2 {
		e.trackBuf = make([]float32, n*2)
	}
	e.trackBuf = e.trackBuf[:n*2]
}

// Process renders len(dst)/2 interleaved stereo frames. It implements the
// engine's fixed per-block order: drain pending control events, advance the
// sequencer clock, update the modulation fabric and velocity latches, render
// every track's voices chunked around its note events (so a note lands on
// its exact sample) with the just-updated parameters, pass each track's
// render through its own effects chain and sum into the dry bus, run the
// master chain once over the full block, then feed the result to the
// spectrum analyzer.
func (e *Engine) Process(dst []float32) {
	n := len(dst) / 2
	if n == 0 {
		return
	}
	e.ensureScratch(n)
	for i := range e.dryBuf {
		e.dryBuf[i] = 0
	}

	e.drainControlEvents()

	e.events = e.Playhead.Advance(e.Pattern, n, e.events[:0])
	sort.SliceStable(e.events, func(i, j int) bool {
		return e.events[i].SampleOffset < e.events[j].SampleOffset
	})

	// The modulation update must land ahead of the voice render within a
	// block: drain events -> sequencer tick -> modulation update -> voice
	// render -> effects -> analyzer feed, so a parameter set this block is
	// audible on this block's render, not the next one.
	e.tickControlRate(n)

	cursor := 0
	for _, ev := range e.events {
		if ev.SampleOffset > cursor {
			e.renderChunk(cursor, ev.SampleOffset)
			cursor = ev.SampleOffset
		}
		e.applyStepEvent(ev)
	}
	if cursor < n {
		e.renderChunk(cursor, n)
	}

	for i := 0; i < n; i++ {
		l, r := e.Master.Process(e.dryBuf[i*2], e.dryBuf[i*2+1])
		dst[i*2] = l
		dst[i*2+1] = r
	}

	frame, _ := e.Analyzer.ProcessAudioBuffer(dst, e.sampleClock)
	if frame.HasActivity {
		e.Telemetry.Send(control.TelemetryEvent{Kind: control.TelemetrySpectrumReady})
	}

	e.sampleClock += int64(n)
}

// renderChunk mixes every audible track's voices for [lo,hi) of the block,
// applies that track's effects chain, and accumulates into the dry bus.
func (e *Engine) renderChunk(lo, hi int) {
	frames := hi - lo
	if frames <= 0 {
		return
	}
	chunk := e.trackBuf[:frames*2]
	for t := 0; t < e.Pattern.Tracks && t < sequencer.MaxTracks; t++ {
		if !e.Pattern.TrackAudible(t) {
			continue
		}
		tr := e.tracks[t]
		tr.voices.Process(chunk, frames)
		for i := 0; i < frames; i++ {
			l, r := tr.fx.Process(chunk[i*2], chunk[i*2+1])
			e.dryBuf[(lo+i)*2] += l * float32(e.Pattern.TrackCfg[t].Level)
			e.dryBuf[(lo+i)*2+1] += r * float32(e.Pattern.TrackCfg[t].Level)
		}
	}
}

// applyStepEvent dispatches one scheduled note-on/off to its track's voice
// pool, applying accent and slide directives along the way.
func (e *Engine) applyStepEvent(ev sequencer.StepEvent) {
	if ev.Track < 0 || ev.Track >= sequencer.MaxTracks {
		return
	}
	tr := e.tracks[ev.Track]
	switch ev.Kind {
	case sequencer.EventNoteOff:
		tr.voices.NoteOff(ev.Note)
	case sequencer.EventNoteOn:
		velocity01 := float64(ev.Velocity) / 127
		var v *voice.Voice
		if ev.Slide {
			v = tr.voices.NoteOnWithSlide(ev.Note, velocity01, 0, ev.SlideSeconds)
		} else {
			v = tr.voices.NoteOn(ev.Note, velocity01, 0)
		}
		if ev.Accent {
			cutoff := tr.params[voice.ParamFilterCutoff] + ev.AccentCutoff
			v.Engine.SetParameter(voice.ParamFilterCutoff, voice.Clamp01(cutoff))
			volDB := tr.params[voice.ParamVolume]
			v.Engine.SetParameter(voice.ParamVolume, voice.Clamp01(volDB+ev.AccentGainDB/24))
		}
	}
}

// tickControlRate advances the modulation fabric, velocity latches, and
// per-track parameter automation once per block — the fabric's own update
// rate decouples its internal resolution from this call's cadence.
func (e *Engine) tickControlRate(n int) {
	dtSeconds := float64(n) / e.SampleRate
	e.Mod.Tick(dtSeconds, e.Playhead.TempoBPM, nil, nil)

	latchOut := e.Latch.Update(dtSeconds * 1000)
	e.Mod.SetSourceValue(modulation.SourceVelocity, latchOut[0])

	filterEnvOffsets := e.Playhead.AdvanceFilterEnvelopes(n)

	for t := 0; t < e.Pattern.Tracks && t < sequencer.MaxTracks; t++ {
		tr := e.tracks[t]
		for p := 0; p < voice.ParamCount; p++ {
			id := voice.ParameterID(p)
			modulated := e.Mod.GetModulatedValue(id, tr.params[id])
			if id == voice.ParamFilterCutoff {
				modulated += filterEnvOffsets[t]
			}
			tr.voices.SetParameter(id, voice.Clamp01(modulated))
		}
	}
}

// drainControlEvents applies every pending command queued from the control
// context since the previous block.
func (e *Engine) drainControlEvents() {
	e.drained = e.Events.DrainInto(e.drained)
	for _, cev := range e.drained {
		if cev.Track < 0 || cev.Track >= sequencer.MaxTracks {
			continue
		}
		tr := e.tracks[cev.Track]
		switch cev.Kind {
		case control.EventNoteOn:
			tr.voices.NoteOn(cev.Note, cev.Velocity, cev.Aftertouch)
		case control.EventNoteOff:
			tr.voices.NoteOff(cev.Note)
		case control.EventAftertouch:
			for _, v := range tr.voices.Voices() {
				if v.Active && v.Note == cev.Note {
					v.Engine.SetAftertouch(cev.Note, cev.Aftertouch)
				}
			}
		case control.EventParamChange:
			tr.params[cev.Param] = cev.Value
		case control.EventModAmount:
			tr.voices.SetModulation(cev.Param, cev.Value)
		case control.EventEmergencyStop:
			e.EmergencyStop()
		}
	}
}

// Finished satisfies the streaming player's optional completion check; the
// engine runs indefinitely until the player is closed.
func (e *Engine) Finished() bool { return false }
