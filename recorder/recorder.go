// Package recorder is the loop recorder: a state machine that arms on the
// scheduler's bar boundary, captures audio and performer events, and keeps
// the layer history of a session.
package recorder

import (
	"sync"
	"time"

	"go-loopstation/clock"
	"go-loopstation/export"
	"go-loopstation/midi"
)

// State is the recorder's single active mode
type State int

const (
	Idle State = iota
	CountingIn
	Recording
	Overdub
	Playing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case CountingIn:
		return "count-in"
	case Recording:
		return "recording"
	case Overdub:
		return "overdub"
	case Playing:
		return "playing"
	}
	return "unknown"
}

// MaxLoopBars caps a fixed loop length
const MaxLoopBars = 64

// Transport is the clock scheduler as seen by the recorder. A count-in
// ends in exactly one of onArmed, given the clock time of the bar it armed
// on, or onDropped.
type Transport interface {
	StartCountIn(onArmed func(at time.Duration), onDropped func())
	BarDuration() time.Duration
	Tempo() int
}

// Capture records one take at a time. Stop must eventually call done
// exactly once, from any goroutine, with whatever was captured.
type Capture interface {
	Start() error
	Stop(done func(blob []byte))
}

// Playback loops a captured blob until stop is called
type Playback interface {
	Loop(blob []byte) (stop func(), err error)
}

// Decoder turns a captured blob into raw samples for WAV export
type Decoder interface {
	Decode(blob []byte) (export.Buffer, error)
}

// Layer is one finalized take. Immutable once committed.
type Layer struct {
	Audio     []byte       `json:"audio,omitempty"`
	Events    []midi.Event `json:"events"`
	CreatedAt time.Time    `json:"created_at"`
}

// Option configures optional collaborators
type Option func(*Recorder)

func WithCapture(c Capture) Option {
	return func(r *Recorder) { r.capture = c }
}

func WithPlayback(p Playback) Option {
	return func(r *Recorder) { r.playback = p }
}

func WithDecoder(d Decoder) Option {
	return func(r *Recorder) { r.decoder = d }
}

// Recorder owns the state machine, the working event log and the layers
type Recorder struct {
	mu        sync.Mutex
	transport Transport
	clock     clock.Clock
	capture   Capture
	playback  Playback
	decoder   Decoder

	state      State
	gen        uint64 // bumped by every transition that makes pending callbacks stale
	finalizing bool   // a stopped take is waiting for its capture
	capturing  bool   // capture.Start succeeded for the current take

	loopBars     int           // 0 = free
	loopDuration time.Duration // 0 until known
	startedAt    time.Duration // clock time the take or playback began

	working  []midi.Event
	layers   []Layer
	deadline clock.Timer
	stops    []func()

	// UpdateChan is signalled (non-blocking) on every state or layer change
	UpdateChan chan struct{}
}

// New creates an idle recorder. A nil transport arms immediately instead
// of counting in; a nil clock falls back to the wall clock.
func New(transport Transport, clk clock.Clock, opts ...Option) *Recorder {
	if clk == nil {
		clk = clock.NewWall()
	}
	r := &Recorder{
		transport:  transport,
		clock:      clk,
		UpdateChan: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Recorder) notify() {
	select {
	case r.UpdateChan <- struct{}{}:
	default:
	}
}

// State returns the active mode
func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Finalizing reports whether a stopped take is still waiting on its capture
func (r *Recorder) Finalizing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finalizing
}

// Layers returns a copy of the layer history, oldest first
func (r *Recorder) Layers() []Layer {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Layer, len(r.layers))
	copy(out, r.layers)
	return out
}

// SetLoopLength sets a fixed length in bars; 0 means free. Takes effect
// when the next base recording arms.
func (r *Recorder) SetLoopLength(bars int) {
	if bars < 0 {
		bars = 0
	}
	if bars > MaxLoopBars {
		bars = MaxLoopBars
	}
	r.mu.Lock()
	r.loopBars = bars
	r.mu.Unlock()
	r.notify()
}

// LoopLength returns the configured bars (0 = free)
func (r *Recorder) LoopLength() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loopBars
}

// LoopDuration returns the session loop duration, 0 if not yet fixed
func (r *Recorder) LoopDuration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loopDuration
}

// Elapsed is the time since the current take or playback began
func (r *Recorder) Elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.state {
	case Recording, Overdub, Playing:
		return r.sinceStart()
	}
	return 0
}

// sinceStart is the time since startedAt, 0 before it. The count-in arms
// slightly ahead of the bar it starts on. Caller holds r.mu.
func (r *Recorder) sinceStart() time.Duration {
	if d := r.clock.Now() - r.startedAt; d > 0 {
		return d
	}
	return 0
}

// Progress is the playhead position in [0,1) within the loop
func (r *Recorder) Progress() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.state {
	case Recording, Overdub, Playing:
	default:
		return 0
	}
	if r.loopDuration <= 0 {
		return 0
	}
	return float64(r.sinceStart()%r.loopDuration) / float64(r.loopDuration)
}

// LogEvent appends a performer event to the working log. Ignored unless a
// take is running.
func (r *Recorder) LogEvent(kind midi.Kind, data midi.EventData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != Recording && r.state != Overdub {
		return
	}
	r.working = append(r.working, midi.Event{
		Offset:    r.sinceStart(),
		Kind:      kind,
		EventData: data,
	})
}

// WorkingEvents returns the number of events logged in the running take
func (r *Recorder) WorkingEvents() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.working)
}
