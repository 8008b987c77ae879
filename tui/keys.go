package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"go-loopstation/midi"
	"go-loopstation/pattern"
	"go-loopstation/widgets"
)

// Key builds a binding whose help label is its first key
func Key(help string, keyboardKey ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keyboardKey...), key.WithHelp(keyboardKey[0], help))
}

type keyMap struct {
	Play      key.Binding
	Metronome key.Binding
	TempoUp   key.Binding
	TempoDown key.Binding
	PrevPat   key.Binding
	NextPat   key.Binding
	Kit       key.Binding
	LoopBars  key.Binding

	Record  key.Binding
	Overdub key.Binding
	Stop    key.Binding
	Loop    key.Binding
	Clear   key.Binding

	ExportWAV   key.Binding
	ExportMIDI  key.Binding
	SaveSession key.Binding
	LoadSession key.Binding

	Help key.Binding
	Quit key.Binding
}

var keys = keyMap{
	Play:      Key("play/stop pattern", "space", " "),
	Metronome: Key("metronome", "m"),
	TempoUp:   Key("tempo +5", "+", "="),
	TempoDown: Key("tempo -5", "-", "_"),
	PrevPat:   Key("previous pattern", "["),
	NextPat:   Key("next pattern", "]"),
	Kit:       Key("next drum kit", "K"),
	LoopBars: key.NewBinding(
		key.WithKeys("0", "1", "2", "3", "4", "5", "6", "7", "8"),
		key.WithHelp("0-8", "loop bars (0 = free)"),
	),

	Record:  Key("record / stop", "r"),
	Overdub: Key("overdub / stop", "o"),
	Stop:    Key("stop recording", "."),
	Loop:    Key("play/stop loop", "p"),
	Clear:   Key("clear session", "C"),

	ExportWAV:   Key("export wav", "W"),
	ExportMIDI:  Key("export midi", "M"),
	SaveSession: Key("save session", "S"),
	LoadSession: Key("load last session", "L"),

	Help: Key("toggle help", "?"),
	Quit: Key("quit", "q", "ctrl+c"),
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Record, k.Overdub, k.Loop, k.ExportMIDI, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Play, k.Metronome, k.TempoUp, k.TempoDown, k.PrevPat, k.NextPat, k.Kit, k.LoopBars},
		{k.Record, k.Overdub, k.Stop, k.Loop, k.Clear},
		{k.ExportWAV, k.ExportMIDI, k.SaveSession, k.LoadSession, k.Help, k.Quit},
	}
}

// noteKeys is one octave of the home row, C4 to C5
var noteKeys = map[string]int{
	"a": 60, "s": 62, "d": 64, "f": 65, "g": 67, "h": 69, "j": 71, "k": 72,
}

// chord is a labelled triad; the root is what gets logged as the note
type chord struct {
	name  string
	notes [3]int
}

var chordKeys = map[string]chord{
	"y": {"C", [3]int{60, 64, 67}},
	"u": {"F", [3]int{65, 69, 72}},
	"i": {"G", [3]int{67, 71, 74}},
	"t": {"Am", [3]int{57, 60, 64}},
}

var drumKeys = map[string]pattern.Voice{
	"z": pattern.Kick, "x": pattern.Snare, "c": pattern.HiHat, "v": pattern.Clap, "b": pattern.Rim,
}

// performSections documents the playing keys, which are not bindings
func performSections() []widgets.KeySection {
	return []widgets.KeySection{
		{Title: "Play", Keys: []widgets.KeyBinding{
			{Key: "a s d f g h j k", Desc: "notes C4 to C5 (" + midi.NoteName(60) + "…" + midi.NoteName(72) + ")"},
			{Key: "t y u i", Desc: "chords Am C F G"},
			{Key: "z x c v b", Desc: "kick snare hihat clap rim"},
		}},
	}
}
