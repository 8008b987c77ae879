package audio

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gopxl/beep"

	"go-loopstation/debug"
	"go-loopstation/export"
)

// ErrEmptyLoop is returned for a blob with no frames
var ErrEmptyLoop = errors.New("audio: loop has no frames")

const resampleQuality = 4

// LoopPlayer mixes any number of endlessly looping layers into one beep
// streamer. Hand it to speaker.Play once; Loop adds layers while it runs.
type LoopPlayer struct {
	mu    sync.Mutex
	rate  beep.SampleRate
	mixer beep.Mixer
}

// NewLoopPlayer mixes at rate Hz
func NewLoopPlayer(rate int) *LoopPlayer {
	return &LoopPlayer{rate: beep.SampleRate(rate)}
}

// SampleRate returns the output rate
func (p *LoopPlayer) SampleRate() beep.SampleRate {
	return p.rate
}

// Loop starts blob looping until the returned stop func is called
func (p *LoopPlayer) Loop(blob []byte) (func(), error) {
	decoded, err := WAVDecoder{}.Decode(blob)
	if err != nil {
		return nil, fmt.Errorf("audio: loop decode: %w", err)
	}
	if decoded.Frames() == 0 {
		return nil, ErrEmptyLoop
	}
	format := beep.Format{
		SampleRate:  beep.SampleRate(decoded.SampleRate),
		NumChannels: len(decoded.Channels),
		Precision:   2,
	}
	buf := beep.NewBuffer(format)
	buf.Append(streamBuffer(decoded))

	var looped beep.Streamer = beep.Loop(-1, buf.Streamer(0, buf.Len()))
	if format.SampleRate != p.rate {
		looped = beep.Resample(resampleQuality, format.SampleRate, p.rate, looped)
	}
	ctrl := &beep.Ctrl{Streamer: looped}

	p.mu.Lock()
	p.mixer.Add(ctrl)
	n := p.mixer.Len()
	p.mu.Unlock()
	debug.Log("player", "loop added (%d frames, %d playing)", buf.Len(), n)

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			ctrl.Streamer = nil
			p.mu.Unlock()
		})
	}, nil
}

// streamBuffer plays b once as stereo frames; mono is copied to both sides
func streamBuffer(b export.Buffer) beep.Streamer {
	pos, frames := 0, b.Frames()
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= frames {
			return 0, false
		}
		n := 0
		for ; n < len(samples) && pos < frames; n, pos = n+1, pos+1 {
			left := float64(b.Channels[0][pos])
			right := left
			if len(b.Channels) > 1 {
				right = float64(b.Channels[1][pos])
			}
			samples[n] = [2]float64{left, right}
		}
		return n, true
	})
}

// Playing returns the number of layers still in the mix
func (p *LoopPlayer) Playing() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mixer.Len()
}

// Stream implements beep.Streamer; it never runs dry
func (p *LoopPlayer) Stream(samples [][2]float64) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mixer.Stream(samples)
}

// Err implements beep.Streamer
func (p *LoopPlayer) Err() error {
	return nil
}
