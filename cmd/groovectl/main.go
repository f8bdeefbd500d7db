package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	grooveaudio "github.com/grainlab/groove-core/internal/audio"
	"github.com/grainlab/groove-core/internal/effects"
	"github.com/grainlab/groove-core/internal/preset"
	"github.com/grainlab/groove-core/internal/scene"
	"github.com/grainlab/groove-core/internal/sequencer"
	"github.com/grainlab/groove-core/internal/voice"

	groove "github.com/grainlab/groove-core"
)

const (
	exitOK = iota
	exitUsage
	exitRuntime
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

	if len(args) == 0 {
		logger.Error("missing command", "usage", "groovectl <command> [flags]")
		printUsage(logger)
		return exitUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "start_audio":
		return cmdStartAudio(logger, rest)
	case "set_engine":
		return cmdSetEngine(logger, rest)
	case "set_parameter":
		return cmdSetParameter(logger, rest)
	case "note_on":
		return cmdNoteOn(logger, rest)
	case "note_off":
		return cmdNoteOff(logger, rest)
	case "save_preset":
		return cmdSavePreset(logger, rest)
	case "load_preset":
		return cmdLoadPreset(logger, rest)
	case "scene_save":
		return cmdSceneSave(logger, rest)
	case "scene_load":
		return cmdSceneLoad(logger, rest)
	default:
		logger.Error("unknown command", "command", cmd)
		printUsage(logger)
		return exitUsage
	}
}

func printUsage(logger *log.Logger) {
	fmt.Fprintln(os.Stderr, `commands:
  start_audio      run the engine against the default output device
  set_engine       print the engine-type id for a given name
  set_parameter    decode a parameter name to its id (for scripting)
  note_on          dry-run a note-on event's accent/velocity mapping
  note_off         (reserved for a running session's control socket)
  save_preset      write an empty preset of the given engine type to a file
  load_preset      read back and summarize a preset file
  scene_save       write a minimal one-pattern scene to a file
  scene_load       read back and summarize a scene file`)
}

func cmdStartAudio(logger *log.Logger, args []string) int {
	fs := pflag.NewFlagSet("start_audio", pflag.ContinueOnError)
	sampleRate := fs.Int("sample-rate", 48000, "output sample rate")
	tempo := fs.Float64("tempo", 120, "starting tempo in BPM")
	duration := fs.Duration("duration", 0, "stop after this long (0 = run until interrupted)")
	if err := fs.Parse(args); err != nil {
		logger.Error("parsing flags", "err", err)
		return exitUsage
	}

	pattern := sequencer.NewPattern(sequencer.MaxTracks, 16)
	cfgs := []groove.TrackConfig{
		{Engine: voice.EngineSubtractive, FX: effects.TrackChainConfig{UseFilter: true}},
		{Engine: voice.EngineDrumKit, FX: effects.TrackChainConfig{UseDrive: true}},
		{Engine: voice.EngineFM2, FX: effects.TrackChainConfig{UseGentleChorus: true}},
	}
	e := groove.NewEngine(float64(*sampleRate), pattern, cfgs, logger)
	e.Playhead.TempoBPM = *tempo

	player, err := grooveaudio.NewPlayer(*sampleRate, e, e.Telemetry)
	if err != nil {
		logger.Error("opening audio player", "err", err)
		return exitRuntime
	}
	player.Play()
	logger.Info("audio started", "sample_rate", *sampleRate, "tempo", *tempo)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	var timeout <-chan time.Time
	if *duration > 0 {
		timeout = time.After(*duration)
	}

	telemetryTick := time.NewTicker(200 * time.Millisecond)
	defer telemetryTick.Stop()

loop:
	for {
		select {
		case <-sig:
			logger.Info("interrupted, stopping")
			break loop
		case <-timeout:
			logger.Info("duration elapsed, stopping")
			break loop
		case <-telemetryTick.C:
			e.Telemetry.Drain(logger)
		}
	}
	if err := player.Stop(); err != nil {
		logger.Error("stopping player", "err", err)
		return exitRuntime
	}
	return exitOK
}

func cmdSetEngine(logger *log.Logger, args []string) int {
	fs := pflag.NewFlagSet("set_engine", pflag.ContinueOnError)
	name := fs.String("name", "", "engine name, e.g. subtractive|fm2|wavetable|drumkit")
	if err := fs.Parse(args); err != nil {
		logger.Error("parsing flags", "err", err)
		return exitUsage
	}
	t, ok := engineTypeByName(*name)
	if !ok {
		logger.Error("unknown engine name", "name", *name)
		return exitUsage
	}
	fmt.Println(int(t))
	return exitOK
}

func cmdSetParameter(logger *log.Logger, args []string) int {
	fs := pflag.NewFlagSet("set_parameter", pflag.ContinueOnError)
	name := fs.String("name", "", "parameter name, e.g. FILTER_CUTOFF")
	if err := fs.Parse(args); err != nil {
		logger.Error("parsing flags", "err", err)
		return exitUsage
	}
	for p := 0; p < voice.ParamCount; p++ {
		id := voice.ParameterID(p)
		if id.String() == *name {
			fmt.Println(p)
			return exitOK
		}
	}
	logger.Error("unknown parameter name", "name", *name)
	return exitUsage
}

func cmdNoteOn(logger *log.Logger, args []string) int {
	fs := pflag.NewFlagSet("note_on", pflag.ContinueOnError)
	accentAmount := fs.Int("accent-amount", 0, "accent amount, 0-127")
	if err := fs.Parse(args); err != nil {
		logger.Error("parsing flags", "err", err)
		return exitUsage
	}
	frac := float64(*accentAmount) / 127
	fmt.Printf("gain_db=%.3f cutoff_boost=%.4f\n", frac*8, frac*0.25)
	return exitOK
}

func cmdNoteOff(logger *log.Logger, args []string) int {
	logger.Warn("note_off is only meaningful against a running session's control socket, which groovectl doesn't yet expose")
	return exitUsage
}

func cmdSavePreset(logger *log.Logger, args []string) int {
	fs := pflag.NewFlagSet("save_preset", pflag.ContinueOnError)
	name := fs.String("engine", "subtractive", "engine name")
	out := fs.String("out", "", "output file path")
	if err := fs.Parse(args); err != nil {
		logger.Error("parsing flags", "err", err)
		return exitUsage
	}
	if *out == "" {
		logger.Error("missing -out")
		return exitUsage
	}
	t, ok := engineTypeByName(*name)
	if !ok {
		logger.Error("unknown engine name", "name", *name)
		return exitUsage
	}
	p := &preset.Preset{EngineType: t}
	for i := range p.Params {
		p.Params[i] = 0.5
	}
	if err := os.WriteFile(*out, p.Serialize(), 0o644); err != nil {
		logger.Error("writing preset", "err", err)
		return exitRuntime
	}
	logger.Info("preset saved", "path", *out, "engine", *name)
	return exitOK
}

func cmdLoadPreset(logger *log.Logger, args []string) int {
	fs := pflag.NewFlagSet("load_preset", pflag.ContinueOnError)
	in := fs.String("in", "", "input file path")
	if err := fs.Parse(args); err != nil {
		logger.Error("parsing flags", "err", err)
		return exitUsage
	}
	if *in == "" {
		logger.Error("missing -in")
		return exitUsage
	}
	data, err := os.ReadFile(*in)
	if err != nil {
		logger.Error("reading preset", "err", err)
		return exitRuntime
	}
	p := preset.Deserialize(data)
	if p == nil {
		logger.Error("preset file is malformed", "path", *in)
		return exitRuntime
	}
	fmt.Printf("engine_type=%d lfos=%d slots=%d\n", p.EngineType, len(p.LFOs), len(p.Slots))
	return exitOK
}

func cmdSceneSave(logger *log.Logger, args []string) int {
	fs := pflag.NewFlagSet("scene_save", pflag.ContinueOnError)
	out := fs.String("out", "", "output file path")
	tempo := fs.Float64("tempo", 120, "scene tempo in BPM")
	if err := fs.Parse(args); err != nil {
		logger.Error("parsing flags", "err", err)
		return exitUsage
	}
	if *out == "" {
		logger.Error("missing -out")
		return exitUsage
	}
	s := &scene.Scene{Name: "untitled", TempoBPM: *tempo, ReverbWet: 0.3}
	s.AddPattern("a", sequencer.NewPattern(sequencer.MaxTracks, 16))
	data, err := s.Marshal()
	if err != nil {
		logger.Error("marshaling scene", "err", err)
		return exitRuntime
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		logger.Error("writing scene", "err", err)
		return exitRuntime
	}
	logger.Info("scene saved", "path", *out)
	return exitOK
}

func cmdSceneLoad(logger *log.Logger, args []string) int {
	fs := pflag.NewFlagSet("scene_load", pflag.ContinueOnError)
	in := fs.String("in", "", "input file path")
	if err := fs.Parse(args); err != nil {
		logger.Error("parsing flags", "err", err)
		return exitUsage
	}
	if *in == "" {
		logger.Error("missing -in")
		return exitUsage
	}
	data, err := os.ReadFile(*in)
	if err != nil {
		logger.Error("reading scene", "err", err)
		return exitRuntime
	}
	s, err := scene.Unmarshal(data)
	if err != nil {
		logger.Error("parsing scene", "err", err)
		return exitRuntime
	}
	fmt.Printf("name=%s tempo_bpm=%.1f tracks=%d patterns=%d\n", s.Name, s.TempoBPM, len(s.Tracks), len(s.Patterns))
	return exitOK
}

func engineTypeByName(name string) (voice.EngineType, bool) {
	switch name {
	case "subtractive":
		return voice.EngineSubtractive, true
	case "fm2":
		return voice.EngineFM2, true
	case "wavetable":
		return voice.EngineWavetable, true
	case "waveshaper":
		return voice.EngineWaveshaper, true
	case "chord":
		return voice.EngineChord, true
	case "additive":
		return voice.EngineAdditive, true
	case "formant":
		return voice.EngineFormant, true
	case "noise":
		return voice.EngineNoise, true
	case "tidal":
		return voice.EngineTidal, true
	case "physical_model":
		return voice.EnginePhysicalModel, true
	case "modal":
		return voice.EngineModal, true
	case "drumkit":
		return voice.EngineDrumKit, true
	case "samplekit":
		return voice.EngineSampleKit, true
	case "sampleslicer":
		return voice.EngineSampleSlicer, true
	default:
		return 0, false
	}
}
