package recorder

import (
	"errors"
	"fmt"

	"go-loopstation/debug"
	"go-loopstation/export"
	"go-loopstation/midi"
	"go-loopstation/sequencer"
)

var (
	ErrNoDecoder = errors.New("recorder: no audio decoder")
	ErrNoAudio   = errors.New("recorder: layer has no audio")
)

// ExportWAV renders the first layer's audio as 16-bit PCM WAV. Overdubs
// are not mixed in. Returns nil, nil when there is nothing recorded; on a
// decode failure nothing is produced.
func (r *Recorder) ExportWAV() ([]byte, error) {
	r.mu.Lock()
	if len(r.layers) == 0 {
		r.mu.Unlock()
		return nil, nil
	}
	first := r.layers[0]
	dec := r.decoder
	r.mu.Unlock()

	if dec == nil {
		return nil, ErrNoDecoder
	}
	if len(first.Audio) == 0 {
		return nil, ErrNoAudio
	}
	buf, err := dec.Decode(first.Audio)
	if err != nil {
		debug.Log("rec", "wav export: decode failed: %v", err)
		return nil, fmt.Errorf("recorder: decode layer: %w", err)
	}
	return export.EncodeWAV(buf)
}

// ExportMIDI renders the events of every layer as a format 0 MIDI file at
// the transport's current tempo. Returns nil when there is nothing recorded.
func (r *Recorder) ExportMIDI() []byte {
	r.mu.Lock()
	if len(r.layers) == 0 {
		r.mu.Unlock()
		return nil
	}
	var events []midi.Event
	for _, l := range r.layers {
		events = append(events, l.Events...)
	}
	r.mu.Unlock()

	tempo := sequencer.DefaultTempo
	if r.transport != nil {
		tempo = r.transport.Tempo()
	}
	return export.EncodeMIDI(events, tempo)
}
