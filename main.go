package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alexflint/go-arg"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-loopstation/audio"
	"go-loopstation/clock"
	"go-loopstation/config"
	"go-loopstation/debug"
	"go-loopstation/midi"
	"go-loopstation/project"
	"go-loopstation/recorder"
	"go-loopstation/sequencer"
	"go-loopstation/theme"
	"go-loopstation/tui"
)

type args struct {
	Config    string `arg:"-c,--config" help:"config file (default ~/.config/go-loopstation/config.json)"`
	Tempo     int    `arg:"-t,--tempo" help:"tempo in BPM (60-200)"`
	Pattern   string `arg:"-p,--pattern" help:"drum pattern: bossa, disco, funk, hiphop, rock, shuffle, waltz"`
	Bars      *int   `arg:"-b,--bars" help:"loop length in bars, 0 for free length"`
	MidiOut   string `arg:"--midi-out" help:"MIDI output port for drums and played notes"`
	MidiIn    string `arg:"--midi-in" help:"MIDI keyboard input port"`
	Kit       string `arg:"-k,--kit" help:"drum kit mapping: gm, rd8, tr8s, er1"`
	ExportDir string `arg:"-o,--export-dir" help:"directory for exports and sessions"`
	Palette   string `arg:"--palette" help:"GIMP .gpl palette for the UI"`
	NoInput   bool   `arg:"--no-input" help:"record events only, without the audio input device"`
	Debug     bool   `arg:"-d,--debug" help:"write a debug log to ~/.config/go-loopstation/debug.log"`
	ListPorts bool   `arg:"-l,--list-ports" help:"list MIDI ports and exit"`
}

func (args) Description() string {
	return "go-loopstation: a terminal loop station with a drum machine, count-in recording and WAV/MIDI export"
}

func main() {
	var a args
	arg.MustParse(&a)

	if a.ListPorts {
		listPorts()
		return
	}

	cfg, err := loadConfig(a.Config)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	applyArgs(cfg, a)

	if cfg.Debug {
		if err := debug.Enable(""); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer debug.Disable()
	}

	if err := run(cfg, a.Palette); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

// applyArgs lets flags override the config file
func applyArgs(cfg *config.Config, a args) {
	if a.Tempo != 0 {
		cfg.Tempo = a.Tempo
	}
	if a.Pattern != "" {
		cfg.Pattern = a.Pattern
	}
	if a.Bars != nil {
		cfg.LoopBars = *a.Bars
	}
	if a.MidiOut != "" {
		cfg.MIDI.OutPort = a.MidiOut
	}
	if a.MidiIn != "" {
		cfg.MIDI.InPort = a.MidiIn
	}
	if a.Kit != "" {
		cfg.MIDI.Kit = a.Kit
	}
	if a.ExportDir != "" {
		cfg.ExportDir = a.ExportDir
	}
	if a.NoInput {
		cfg.Audio.NoInput = true
	}
	if a.Debug {
		cfg.Debug = true
	}
}

func run(cfg *config.Config, palettePath string) error {
	th := theme.New(nil)
	if palettePath != "" {
		palette, err := theme.LoadGPL(palettePath)
		if err != nil {
			return err
		}
		th = theme.New(palette)
	}

	store, err := project.NewStore(cfg.ExportDir)
	if err != nil {
		return fmt.Errorf("%s", project.Message(err))
	}

	clk := clock.NewWall()
	sched := sequencer.New(clk)
	sched.SetTempo(cfg.Tempo)
	sched.SetPattern(cfg.Pattern)
	sched.SetVolume(cfg.Volume)
	if cfg.Metronome {
		sched.ToggleMetronome()
	}

	// drums and played notes go out over MIDI; without a port they are silent
	var out *midi.Output
	if cfg.MIDI.OutPort != "" {
		out, err = midi.OpenOutput(cfg.MIDI.OutPort)
		if err != nil {
			return err
		}
		defer out.Close()
	}
	defer midi.CloseDriver()
	voices := midi.NewDrumVoices(out, clk, sequencer.GetKit(cfg.MIDI.Kit).Keys)
	sched.SetVoices(voices)

	// takes come from the input device; layers loop on the speaker
	rate := beep.SampleRate(cfg.Audio.SampleRate)
	player := audio.NewLoopPlayer(cfg.Audio.SampleRate)
	if err := speaker.Init(rate, rate.N(time.Second/10)); err != nil {
		debug.Log("main", "speaker unavailable: %v", err)
	} else {
		speaker.Play(player)
		defer speaker.Close()
	}

	var notice string
	opts := []recorder.Option{
		recorder.WithPlayback(player),
		recorder.WithDecoder(audio.WAVDecoder{}),
	}
	if !cfg.Audio.NoInput {
		input, err := audio.OpenInput(cfg.Audio.SampleRate, cfg.Audio.Channels)
		if err != nil {
			// layers still get their events; audio stays empty
			debug.Log("main", "audio input unavailable: %v", err)
			notice = "no audio input: recording events only"
		} else {
			defer input.Close()
			opts = append(opts, recorder.WithCapture(input))
		}
	}
	rec := recorder.New(sched, clk, opts...)
	rec.SetLoopLength(cfg.LoopBars)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sched.Run(ctx)

	m := tui.NewModel(sched, rec, store, th).WithMIDI(out, voices, cfg.MIDI.Kit).WithStatus(notice)
	if cfg.MIDI.InPort != "" {
		kb, err := midi.OpenKeyboard(cfg.MIDI.InPort)
		if err != nil {
			return err
		}
		defer kb.Close()
		m = m.WithKeyboard(kb)
	}

	debug.Log("main", "start tempo=%d pattern=%s kit=%s dir=%s", cfg.Tempo, cfg.Pattern, cfg.MIDI.Kit, store.Dir())

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	for i, name := range midi.ListInPorts() {
		fmt.Printf("  %d: %s\n", i, name)
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, name := range midi.ListOutPorts() {
		fmt.Printf("  %d: %s\n", i, name)
	}
	midi.CloseDriver()
}
