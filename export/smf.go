package export

import (
	"encoding/binary"
	"sort"

	"go-loopstation/midi"
)

const (
	// Division is the SMF time base in ticks per quarter note
	Division = 480
	// NoteLength is how long after its note-on every exported note is released
	NoteLength = 200 // ms

	defaultTempo    = 120
	defaultVelocity = 100
)

// message is one channel message at an absolute tick
type message struct {
	tick   uint32
	status byte
	key    byte
	vel    byte
	seq    int
}

// EncodeMIDI renders events as a format 0 Standard MIDI File with a single
// track. Events without a MIDI note are skipped; the rest are sorted by
// offset before encoding, so arrival order does not matter. Each note is
// released NoteLength ms after it starts. End-of-track follows the last
// message at delta 0, so the loop duration is not needed.
func EncodeMIDI(events []midi.Event, tempo int) []byte {
	if tempo <= 0 {
		tempo = defaultTempo
	}

	notes := make([]midi.Event, 0, len(events))
	for _, e := range events {
		if e.HasNote() {
			notes = append(notes, e)
		}
	}
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].Offset < notes[j].Offset
	})

	msgs := make([]message, 0, 2*len(notes))
	for i, e := range notes {
		ch := e.Channel & 0x0F
		ms := e.OffsetMs()
		msgs = append(msgs,
			message{tick: Tick(ms, tempo), status: midi.NoteOn | ch, key: byte(e.Note), vel: velocity(e.Velocity), seq: 2 * i},
			message{tick: Tick(ms+NoteLength, tempo), status: midi.NoteOff | ch, key: byte(e.Note), seq: 2*i + 1},
		)
	}
	// absolute-tick order; a release goes before a new strike on the same tick
	sort.SliceStable(msgs, func(i, j int) bool {
		a, b := msgs[i], msgs[j]
		if a.tick != b.tick {
			return a.tick < b.tick
		}
		aOff, bOff := a.status&0xF0 == midi.NoteOff, b.status&0xF0 == midi.NoteOff
		if aOff != bOff {
			return aOff
		}
		return a.seq < b.seq
	})

	track := make([]byte, 0, 16+8*len(msgs))
	track = append(track, 0x00, 0xFF, 0x51, 0x03)
	us := MicrosPerQuarter(tempo)
	track = append(track, byte(us>>16), byte(us>>8), byte(us))

	var last uint32
	for _, m := range msgs {
		track = AppendVLQ(track, m.tick-last)
		track = append(track, m.status, m.key&0x7F, m.vel)
		last = m.tick
	}
	track = append(track, 0x00, 0xFF, 0x2F, 0x00)

	header := make([]byte, 0, 6)
	header = binary.BigEndian.AppendUint16(header, 0) // format 0
	header = binary.BigEndian.AppendUint16(header, 1) // one track
	header = binary.BigEndian.AppendUint16(header, Division)

	out := make([]byte, 0, 14+8+len(track))
	out = appendChunk(out, "MThd", header)
	return appendChunk(out, "MTrk", track)
}

func velocity(v uint8) byte {
	if v == 0 {
		return defaultVelocity
	}
	if v > 127 {
		return 127
	}
	return v
}
