// Package export turns recorded layers into WAV and Standard MIDI File bytes.
// Both encoders are pure: the same input always gives the same output.
package export

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// WAVHeaderSize is the size of the canonical RIFF/WAVE header
const WAVHeaderSize = 44

// Buffer is decoded audio: one float slice per channel, samples in [-1,1]
type Buffer struct {
	SampleRate int
	Channels   [][]float32
}

// Frames returns the per-channel sample count
func (b Buffer) Frames() int {
	if len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

var (
	ErrChannels   = errors.New("export: wav needs 1 or 2 channels")
	ErrSampleRate = errors.New("export: sample rate must be positive")
)

// EncodeWAV renders buf as 16-bit PCM with a 44-byte header, interleaving
// stereo. Positive samples scale by 32767 and negative ones by 32768.
func EncodeWAV(buf Buffer) ([]byte, error) {
	channels := len(buf.Channels)
	if channels < 1 || channels > 2 {
		return nil, ErrChannels
	}
	if buf.SampleRate <= 0 {
		return nil, ErrSampleRate
	}
	frames := buf.Frames()
	for i, ch := range buf.Channels {
		if len(ch) != frames {
			return nil, fmt.Errorf("export: channel %d has %d samples, want %d", i, len(ch), frames)
		}
	}

	dataLen := frames * channels * 2
	out := make([]byte, 0, WAVHeaderSize+dataLen)
	le := binary.LittleEndian

	out = append(out, "RIFF"...)
	out = le.AppendUint32(out, uint32(36+dataLen))
	out = append(out, "WAVE"...)

	out = append(out, "fmt "...)
	out = le.AppendUint32(out, 16)
	out = le.AppendUint16(out, 1) // PCM
	out = le.AppendUint16(out, uint16(channels))
	out = le.AppendUint32(out, uint32(buf.SampleRate))
	out = le.AppendUint32(out, uint32(buf.SampleRate*channels*2))
	out = le.AppendUint16(out, uint16(channels*2))
	out = le.AppendUint16(out, 16)

	out = append(out, "data"...)
	out = le.AppendUint32(out, uint32(dataLen))

	for i := 0; i < frames; i++ {
		for _, ch := range buf.Channels {
			out = le.AppendUint16(out, uint16(PCM16(ch[i])))
		}
	}
	return out, nil
}

// PCM16 converts one float sample, clamped to [-1,1]
func PCM16(s float32) int16 {
	if s > 1 {
		s = 1
	}
	if s < -1 {
		s = -1
	}
	if s < 0 {
		return int16(s * 32768)
	}
	return int16(s * 32767)
}
