// Package audio is the platform audio driver facade: it adapts the
// engine's pull-based SampleSource.Process contract to ebiten's
// io.Reader-shaped audio player.
package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/grainlab/groove-core/internal/control"
)

// SampleSource is anything that can fill a stereo interleaved float32
// buffer on demand — the contract Engine.Process satisfies.
type SampleSource interface {
	Process(dst []float32)
}

// FinishingSource is a SampleSource that can signal when playback has ended.
// When Finished returns true, the stream will return io.EOF on the next Read.
type FinishingSource interface {
	SampleSource
	Finished() bool
}

// StreamReader adapts a SampleSource to io.Reader, converting each pulled
// block to little-endian float32 bytes. It optionally reports a hard
// per-buffer deadline to a TelemetryQueue: if a Process call takes longer
// than the buffer's own playback duration (num_frames / sample_rate),
// that's an overrun the control context should know about, even though the
// audio thread itself never blocks on reporting it.
type StreamReader struct {
	mu         sync.Mutex
	source     SampleSource
	buf        []float32
	sampleRate int
	telemetry  *control.TelemetryQueue
}

// NewStreamReader wraps source for ebiten playback at sampleRate. telemetry
// may be nil to skip overrun reporting entirely.
func NewStreamReader(source SampleSource, sampleRate int, telemetry *control.TelemetryQueue) *StreamReader {
	return &StreamReader{source: source, sampleRate: sampleRate, telemetry: telemetry}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	need := frames * 2
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	r.buf = r.buf[:need]

	start := time.Now()
	r.source.Process(r.buf)
	r.reportIfOverrun(frames, time.Since(start))

	for i := 0; i < need; i++ {
		u := math.Float32bits(r.buf[i])
		binary.LittleEndian.PutUint32(p[i*4:], u)
	}
	n := frames * 8
	if fs, ok := r.source.(FinishingSource); ok && fs.Finished() {
		return n, io.EOF
	}
	return n, nil
}

// reportIfOverrun posts a non-blocking telemetry event when a pull took
// longer than the buffer it produced plays for — i.e. it must return in
// less than num_frames/sample_rate seconds to keep the stream fed.
func (r *StreamReader) reportIfOverrun(frames int, elapsed time.Duration) {
	if r.telemetry == nil || r.sampleRate <= 0 {
		return
	}
	deadline := time.Duration(float64(frames) / float64(r.sampleRate) * float64(time.Second))
	if elapsed > deadline {
		r.telemetry.Send(control.TelemetryEvent{
			Kind:    control.TelemetryOverrun,
			Message: fmt.Sprintf("buffer pull took %s, deadline %s for %d frames", elapsed, deadline, frames),
		})
	}
}

func (r *StreamReader) Close() error { return nil }

type Player struct {
	player *ebitaudio.Player
	reader io.ReadCloser
}

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioContextErr  error
	audioSampleRate  int
)

func sharedAudioContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioContextErr != nil {
		return nil, audioContextErr
	}
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

// NewPlayer opens a stream at sampleRate for source. telemetry may be nil;
// when set, the reader reports buffer-deadline overruns to it.
func NewPlayer(sampleRate int, source SampleSource, telemetry *control.TelemetryQueue) (*Player, error) {
	ctx, err := sharedAudioContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(source, sampleRate, telemetry)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, err
	}
	return &Player{
		player: pl,
		reader: reader,
	}, nil
}

func (p *Player) Play()  { p.player.Play() }
func (p *Player) Pause() { p.player.Pause() }
func (p *Player) IsPlaying() bool {
	return p.player.IsPlaying()
}

// Position returns the current playback position (what the listener actually hears).
func (p *Player) Position() time.Duration {
	return p.player.Position()
}

func (p *Player) Stop() error {
	p.player.Pause()
	p.player.Close()
	return p.reader.Close()
}
