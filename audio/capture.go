// Package audio holds the capture, decode and loop playback collaborators
// the recorder drives. Input comes from a malgo capture device, playback
// goes through gopxl/beep streamers; blobs are 16-bit PCM WAV.
package audio

import (
	"errors"
	"sync"

	"go-loopstation/debug"
	"go-loopstation/export"
)

var (
	ErrCaptureBusy     = errors.New("audio: capture already running")
	ErrCaptureDisabled = errors.New("audio: capture disabled")
)

// MemoryCapture accumulates frames in memory while started and encodes them
// to a WAV blob on stop.
type MemoryCapture struct {
	mu       sync.Mutex
	rate     int
	channels int
	active   bool
	samples  [][]float32
}

// NewMemoryCapture records at rate Hz with 1 or 2 channels. A channel count
// outside that range yields a capture whose Start always fails.
func NewMemoryCapture(rate, channels int) *MemoryCapture {
	return &MemoryCapture{rate: rate, channels: channels}
}

// Start begins a new take, discarding anything left from the previous one
func (c *MemoryCapture) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channels < 1 || c.channels > 2 || c.rate <= 0 {
		return ErrCaptureDisabled
	}
	if c.active {
		return ErrCaptureBusy
	}
	c.active = true
	c.samples = make([][]float32, c.channels)
	debug.Log("capture", "start %d Hz x%d", c.rate, c.channels)
	return nil
}

// Active reports whether frames are being kept
func (c *MemoryCapture) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Frames returns the number of frames in the current take
func (c *MemoryCapture) Frames() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.samples) == 0 {
		return 0
	}
	return len(c.samples[0])
}

// Write appends stereo frames; mono captures keep the left channel.
// Ignored while stopped.
func (c *MemoryCapture) Write(frames [][2]float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return
	}
	for _, f := range frames {
		for ch := range c.samples {
			c.samples[ch] = append(c.samples[ch], float32(f[ch]))
		}
	}
}

// Stop ends the take. The WAV blob is encoded off the caller's goroutine
// and handed to done; done gets nil if nothing usable was captured.
func (c *MemoryCapture) Stop(done func(blob []byte)) {
	c.mu.Lock()
	take := c.samples
	wasActive := c.active
	c.active = false
	c.samples = nil
	rate := c.rate
	c.mu.Unlock()

	go func() {
		if !wasActive {
			done(nil)
			return
		}
		blob, err := export.EncodeWAV(export.Buffer{SampleRate: rate, Channels: take})
		if err != nil {
			debug.Log("capture", "encode failed: %v", err)
			blob = nil
		}
		debug.Log("capture", "stop, %d bytes", len(blob))
		done(blob)
	}()
}
