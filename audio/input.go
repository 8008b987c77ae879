package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/gen2brain/malgo"

	"go-loopstation/debug"
)

// InputCapture records the default input device (microphone or line in).
// The device runs from OpenInput until Close; frames only reach a take
// between Start and Stop.
type InputCapture struct {
	*MemoryCapture
	ctx *malgo.AllocatedContext
	dev *malgo.Device
}

// OpenInput opens the default capture device as 32-bit float at rate Hz
// with 1 or 2 channels
func OpenInput(rate, channels int) (*InputCapture, error) {
	if channels < 1 || channels > 2 || rate <= 0 {
		return nil, ErrCaptureDisabled
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(msg string) {
		debug.Log("input", "%s", strings.TrimSpace(msg))
	})
	if err != nil {
		return nil, fmt.Errorf("audio: input context: %w", err)
	}

	in := &InputCapture{MemoryCapture: NewMemoryCapture(rate, channels), ctx: ctx}

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatF32
	cfg.Capture.Channels = uint32(channels)
	cfg.SampleRate = uint32(rate)
	cfg.Alsa.NoMMap = 1

	dev, err := malgo.InitDevice(ctx.Context, cfg, malgo.DeviceCallbacks{
		Data: func(_, input []byte, frames uint32) {
			in.Write(framesFromF32(input, channels, int(frames)))
		},
	})
	if err != nil {
		in.closeContext()
		return nil, fmt.Errorf("audio: open input: %w", err)
	}
	if err := dev.Start(); err != nil {
		dev.Uninit()
		in.closeContext()
		return nil, fmt.Errorf("audio: start input: %w", err)
	}
	in.dev = dev

	debug.Log("input", "capturing %d Hz x%d", rate, channels)
	return in, nil
}

// Close stops the device and releases the backend
func (in *InputCapture) Close() {
	if in.dev != nil {
		in.dev.Uninit()
		in.dev = nil
	}
	in.closeContext()
}

func (in *InputCapture) closeContext() {
	if in.ctx == nil {
		return
	}
	if err := in.ctx.Uninit(); err != nil {
		debug.Log("input", "context uninit: %v", err)
	}
	in.ctx.Free()
	in.ctx = nil
}

// framesFromF32 converts interleaved little-endian float32 samples to
// stereo frames. Mono is copied to both sides; a short buffer yields only
// its complete frames.
func framesFromF32(b []byte, channels, frames int) [][2]float64 {
	if channels < 1 {
		return nil
	}
	stride := 4 * channels
	if n := len(b) / stride; n < frames {
		frames = n
	}
	out := make([][2]float64, frames)
	for i := range out {
		off := i * stride
		left := float64(math.Float32frombits(binary.LittleEndian.Uint32(b[off:])))
		right := left
		if channels > 1 {
			right = float64(math.Float32frombits(binary.LittleEndian.Uint32(b[off+4:])))
		}
		out[i] = [2]float64{left, right}
	}
	return out
}
