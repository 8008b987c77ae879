package midi

import (
	"fmt"
	"time"
)

// MIDI message types
const (
	NoteOn  uint8 = 0x90
	NoteOff uint8 = 0x80
	CC      uint8 = 0xB0
)

// NoNote marks an event that carries no MIDI key (e.g. a chord label)
const NoNote = -1

// DrumChannel is GM channel 10, zero-based
const DrumChannel uint8 = 9

// Kind is what produced a logged event
type Kind string

const (
	KindNote  Kind = "note"
	KindChord Kind = "chord"
	KindDrum  Kind = "drum"
)

// EventData is the payload a performer action logs
type EventData struct {
	Channel  uint8  `json:"channel"`
	ID       string `json:"id"`   // note name, chord symbol or drum voice
	Note     int    `json:"note"` // MIDI key, NoNote if none
	Velocity uint8  `json:"velocity"`
}

// Event is one entry of a recording's event log. Offset is measured from
// the instant recording truly started.
type Event struct {
	Offset time.Duration `json:"offset"`
	Kind   Kind          `json:"kind"`
	EventData
}

// HasNote reports whether the event maps to a MIDI key
func (e Event) HasNote() bool {
	return e.Note >= 0 && e.Note <= 127
}

// OffsetMs returns the offset in (fractional) milliseconds
func (e Event) OffsetMs() float64 {
	return float64(e.Offset) / float64(time.Millisecond)
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName returns scientific pitch notation, MIDI 60 = C4
func NoteName(note int) string {
	if note < 0 || note > 127 {
		return "-"
	}
	return fmt.Sprintf("%s%d", noteNames[note%12], note/12-1)
}
