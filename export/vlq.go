package export

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrShortVLQ is returned when a variable-length quantity runs off the input
var ErrShortVLQ = errors.New("export: truncated variable-length quantity")

// AppendVLQ appends v as a MIDI variable-length quantity: 7 bits per byte,
// most significant group first, continuation bit on all but the last byte.
func AppendVLQ(dst []byte, v uint32) []byte {
	var buf [5]byte
	i := len(buf) - 1
	buf[i] = byte(v & 0x7F)
	for v >>= 7; v > 0; v >>= 7 {
		i--
		buf[i] = byte(v&0x7F) | 0x80
	}
	return append(dst, buf[i:]...)
}

// ReadVLQ decodes a variable-length quantity from the start of b and
// returns it with the number of bytes consumed.
func ReadVLQ(b []byte) (uint32, int, error) {
	var v uint32
	for i := 0; i < len(b) && i < 5; i++ {
		v = v<<7 | uint32(b[i]&0x7F)
		if b[i]&0x80 == 0 {
			return v, i + 1, nil
		}
	}
	return 0, 0, ErrShortVLQ
}

// appendChunk writes a 4-byte id, a big-endian length and the body
func appendChunk(dst []byte, id string, body []byte) []byte {
	dst = append(dst, id...)
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(body)))
	return append(dst, body...)
}

// MsPerTick is the length of one tick in milliseconds at Division ticks per quarter
func MsPerTick(tempo int) float64 {
	return (60000 / float64(tempo)) / Division
}

// Tick converts a millisecond offset to an absolute tick
func Tick(ms float64, tempo int) uint32 {
	if ms <= 0 {
		return 0
	}
	return uint32(math.Round(ms / MsPerTick(tempo)))
}

// MicrosPerQuarter is the tempo meta value
func MicrosPerQuarter(tempo int) uint32 {
	return uint32(math.Round(60000000 / float64(tempo)))
}
