package audio

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/go-audio/wav"

	"go-loopstation/export"
)

// ErrNotWAV is returned for blobs go-audio cannot parse as WAV
var ErrNotWAV = errors.New("audio: not a wav file")

// WAVDecoder turns a recorded blob back into per-channel float samples
type WAVDecoder struct{}

// Decode reads any integer PCM WAV go-audio understands
func (WAVDecoder) Decode(blob []byte) (export.Buffer, error) {
	d := wav.NewDecoder(bytes.NewReader(blob))
	if !d.IsValidFile() {
		return export.Buffer{}, ErrNotWAV
	}
	pcm, err := d.FullPCMBuffer()
	if err != nil {
		return export.Buffer{}, fmt.Errorf("audio: decode: %w", err)
	}

	chans := int(d.NumChans)
	if chans < 1 || d.BitDepth == 0 {
		return export.Buffer{}, ErrNotWAV
	}
	scale := float32(int64(1) << (d.BitDepth - 1))
	frames := len(pcm.Data) / chans

	buf := export.Buffer{SampleRate: int(d.SampleRate), Channels: make([][]float32, chans)}
	for ch := range buf.Channels {
		buf.Channels[ch] = make([]float32, frames)
	}
	for i := 0; i < frames*chans; i++ {
		buf.Channels[i%chans][i/chans] = float32(pcm.Data[i]) / scale
	}
	return buf, nil
}
