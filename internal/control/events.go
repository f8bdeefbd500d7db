// Package control implements the bounded event queues and telemetry logger
// that sit between the control context (where blocking is fine: CLI
// commands, scene loads, UI input) and the audio context (where it is not).
// Events cross that boundary as values pushed through a fixed-capacity
// channel, never through a shared mutable struct the audio side would have
// to lock.
package control

import (
	"github.com/grainlab/groove-core/internal/voice"
)

// EventKind tags a ControlEvent's payload.
type EventKind int

const (
	EventNoteOn EventKind = iota
	EventNoteOff
	EventAftertouch
	EventParamChange
	EventModAmount
	EventPatternSwitch
	EventChainLaunch
	EventSceneLoad
	EventEmergencyStop
)

// ControlEvent is one command flowing from the control context into the
// audio context's next Process call.
type ControlEvent struct {
	Kind       EventKind
	Track      int
	Note       int
	Velocity   float64
	Aftertouch float64
	Param      voice.ParameterID
	Value      float64
	Pattern    int
}

// TelemetryKind tags a TelemetryEvent's payload.
type TelemetryKind int

const (
	TelemetryVoiceStolen TelemetryKind = iota
	TelemetrySpectrumReady
	TelemetryWarning
	TelemetryOverrun
)

// TelemetryEvent is one notification flowing from the audio context back
// out to the control context (logging, UI, metering).
type TelemetryEvent struct {
	Kind    TelemetryKind
	Message string
	Voice   int
	Track   int
}
