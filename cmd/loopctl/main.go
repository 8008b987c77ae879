package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/go-audio/wav"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
	"gitlab.com/gomidi/midi/v2/smf"

	"go-loopstation/project"
)

type listCmd struct{}

type pollCmd struct {
	Interval time.Duration `arg:"-i,--interval" default:"2s" help:"poll interval"`
}

type midiCmd struct {
	File string `arg:"positional,required" help:"standard MIDI file"`
}

type wavCmd struct {
	File string `arg:"positional,required" help:"WAV file"`
}

type filesCmd struct {
	Dir string `arg:"positional" help:"export directory (default ~/.config/go-loopstation/exports)"`
}

type args struct {
	List  *listCmd  `arg:"subcommand:list" help:"list MIDI ports"`
	Poll  *pollCmd  `arg:"subcommand:poll" help:"print MIDI port changes"`
	Midi  *midiCmd  `arg:"subcommand:midi" help:"dump the events of an exported .mid"`
	Wav   *wavCmd   `arg:"subcommand:wav" help:"print the format of an exported .wav"`
	Files *filesCmd `arg:"subcommand:files" help:"list exports and sessions"`
}

func main() {
	var a args
	p := arg.MustParse(&a)

	var err error
	switch {
	case a.List != nil:
		listPorts()
	case a.Poll != nil:
		pollDevices(a.Poll.Interval)
	case a.Midi != nil:
		err = dumpMIDI(a.Midi.File)
	case a.Wav != nil:
		err = dumpWAV(a.Wav.File)
	case a.Files != nil:
		err = listFiles(a.Files.Dir)
	default:
		p.WriteHelp(os.Stdout)
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ch <- result{ins: midi.GetInPorts(), outs: midi.GetOutPorts()}
	}()

	select {
	case r := <-ch:
		for i, p := range r.ins {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
		fmt.Println("\n=== MIDI Output Ports ===")
		for i, p := range r.outs {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! The MIDI service is not answering.")
	}
}

func pollDevices(interval time.Duration) {
	fmt.Printf("Polling for port changes every %v. Ctrl+C to exit.\n", interval)

	lastIn, lastOut := "", ""
	for {
		var inNames, outNames []string
		for _, p := range midi.GetInPorts() {
			inNames = append(inNames, p.String())
		}
		for _, p := range midi.GetOutPorts() {
			outNames = append(outNames, p.String())
		}

		currentIn := strings.Join(inNames, ",")
		currentOut := strings.Join(outNames, ",")
		if currentIn != lastIn || currentOut != lastOut {
			fmt.Printf("\n[%s] Port change detected!\n", time.Now().Format("15:04:05"))
			fmt.Printf("  Inputs: %v\n", inNames)
			fmt.Printf("  Outputs: %v\n", outNames)
			lastIn, lastOut = currentIn, currentOut
		}

		time.Sleep(interval)
	}
}

func dumpMIDI(path string) error {
	s, err := smf.ReadFile(path)
	if err != nil {
		return err
	}
	fmt.Printf("format %d, %d track(s), %v\n", s.Format(), len(s.Tracks), s.TimeFormat)
	for i, tr := range s.Tracks {
		fmt.Printf("=== Track %d ===\n", i)
		var abs int64
		for _, ev := range tr {
			abs += int64(ev.Delta)
			fmt.Printf("  %6d (+%d)  %s\n", abs, ev.Delta, ev.Message.String())
		}
	}
	return nil
}

func dumpWAV(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return fmt.Errorf("%s is not a WAV file", path)
	}
	dur, err := d.Duration()
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", path)
	fmt.Printf("  format:      %d (PCM=1)\n", d.WavAudioFormat)
	fmt.Printf("  channels:    %d\n", d.NumChans)
	fmt.Printf("  sample rate: %d Hz\n", d.SampleRate)
	fmt.Printf("  bit depth:   %d\n", d.BitDepth)
	fmt.Printf("  duration:    %v\n", dur)
	return nil
}

func listFiles(dir string) error {
	if dir == "" {
		var err error
		if dir, err = project.DefaultDir(); err != nil {
			return err
		}
	}
	store, err := project.NewStore(dir)
	if err != nil {
		return fmt.Errorf("%s", project.Message(err))
	}
	files, err := store.List()
	if err != nil {
		return fmt.Errorf("%s", project.Message(err))
	}
	if len(files) == 0 {
		fmt.Printf("no exports in %s\n", store.Dir())
		return nil
	}
	for _, f := range files {
		fmt.Printf("  %s  %-5s %s\n", f.Timestamp.Format("2006-01-02 15:04:05"), f.Ext, f.Name)
	}
	return nil
}
