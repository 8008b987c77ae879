package midi

import (
	"sync"
	"time"

	"go-loopstation/clock"
	"go-loopstation/pattern"
)

// Click keys for the metronome (GM side stick / high wood block)
const (
	ClickNote       uint8 = 37
	ClickAccentNote uint8 = 76
)

// gateTime is how long a triggered drum note is held
const gateTime = 50 * time.Millisecond

// Sender is the subset of Output the drum voices need
type Sender interface {
	NoteOn(channel, note, velocity uint8)
	NoteOff(channel, note uint8)
}

// DrumVoices plays pattern voices as GM drum notes on an external synth.
// Times are audio-clock seconds; notes are sent when the clock reaches them.
type DrumVoices struct {
	mu      sync.Mutex
	out     Sender
	clock   clock.Clock
	channel uint8
	keys    [pattern.NumVoices]uint8
}

// NewDrumVoices sends to out on the GM drum channel using keys for each voice
func NewDrumVoices(out Sender, clk clock.Clock, keys [pattern.NumVoices]uint8) *DrumVoices {
	return &DrumVoices{out: out, clock: clk, channel: DrumChannel, keys: keys}
}

// SetKeys swaps the voice→key mapping (kit change)
func (d *DrumVoices) SetKeys(keys [pattern.NumVoices]uint8) {
	d.mu.Lock()
	d.keys = keys
	d.mu.Unlock()
}

// Play triggers voice v at audio time at with volume in [0,1]
func (d *DrumVoices) Play(v pattern.Voice, at float64, volume float64) {
	if v < 0 || v >= pattern.NumVoices {
		return
	}
	d.mu.Lock()
	key := d.keys[v]
	d.mu.Unlock()
	d.trigger(key, velocityFor(volume), at)
}

// Click triggers a metronome click; accented clicks use a higher key and full velocity
func (d *DrumVoices) Click(at float64, accent bool) {
	if accent {
		d.trigger(ClickAccentNote, 127, at)
		return
	}
	d.trigger(ClickNote, 90, at)
}

func (d *DrumVoices) trigger(key, velocity uint8, at float64) {
	if d.out == nil || d.clock == nil || velocity == 0 {
		return
	}
	delay := clock.FromSeconds(at - clock.Seconds(d.clock))
	ch := d.channel
	d.clock.AfterFunc(delay, func() {
		d.out.NoteOn(ch, key, velocity)
		d.clock.AfterFunc(gateTime, func() {
			d.out.NoteOff(ch, key)
		})
	})
}

func velocityFor(volume float64) uint8 {
	if volume <= 0 {
		return 0
	}
	if volume >= 1 {
		return 127
	}
	return uint8(volume*126) + 1
}
