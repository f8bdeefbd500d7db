package control

import "github.com/charmbracelet/log"

// EventQueue is a single-producer/single-consumer bounded queue: the
// control context sends, the audio context drains. A full queue drops the
// newest event rather than blocking the audio thread.
type EventQueue struct {
	ch chan ControlEvent
}

// NewEventQueue builds a queue holding at most capacity pending events.
func NewEventQueue(capacity int) *EventQueue {
	return &EventQueue{ch: make(chan ControlEvent, capacity)}
}

// Send enqueues ev, reporting false if the queue was full and the event was
// dropped. Never blocks.
func (q *EventQueue) Send(ev ControlEvent) bool {
	select {
	case q.ch <- ev:
		return true
	default:
		return false
	}
}

// DrainInto pops every currently queued event into dst (reusing its
// backing array) and returns the result. Never blocks.
func (q *EventQueue) DrainInto(dst []ControlEvent) []ControlEvent {
	dst = dst[:0]
	for {
		select {
		case ev := <-q.ch:
			dst = append(dst, ev)
		default:
			return dst
		}
	}
}

// TelemetryQueue carries events from the audio context back out to the
// control context. Same drop-on-full discipline as EventQueue, in reverse.
type TelemetryQueue struct {
	ch chan TelemetryEvent
}

func NewTelemetryQueue(capacity int) *TelemetryQueue {
	return &TelemetryQueue{ch: make(chan TelemetryEvent, capacity)}
}

func (q *TelemetryQueue) Send(ev TelemetryEvent) bool {
	select {
	case q.ch <- ev:
		return true
	default:
		return false
	}
}

// Drain pops every currently queued telemetry event, logging each through
// logger, and returns how many were drained. Meant to be called from the
// control context on a timer, never from the audio context.
func (q *TelemetryQueue) Drain(logger *log.Logger) int {
	n := 0
	for {
		select {
		case ev := <-q.ch:
			n++
			switch ev.Kind {
			case TelemetryVoiceStolen:
				logger.Debug("voice stolen", "voice", ev.Voice, "track", ev.Track)
			case TelemetrySpectrumReady:
				logger.Debug("spectrum frame ready")
			case TelemetryWarning:
				logger.Warn(ev.Message)
			case TelemetryOverrun:
				logger.Error("audio buffer overrun", "msg", ev.Message)
			}
		default:
			return n
		}
	}
}
