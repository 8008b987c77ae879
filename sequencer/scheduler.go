package sequencer

import (
	"context"
	"sync"
	"time"

	"go-loopstation/clock"
	"go-loopstation/debug"
	"go-loopstation/pattern"
)

const (
	// TickInterval is how often the look-ahead pass runs
	TickInterval = 25 * time.Millisecond
	// LookAhead is how far ahead of the clock steps are scheduled
	LookAhead = 100 * time.Millisecond

	MinTempo     = 60
	MaxTempo     = 200
	DefaultTempo = 120
)

// VoicePlayer sounds drum voices and metronome clicks at exact audio-clock
// times (seconds). Implementations must not call back into the Scheduler.
type VoicePlayer interface {
	Play(v pattern.Voice, at float64, volume float64)
	Click(at float64, accent bool)
}

// Scheduler turns tempo + pattern into precisely timed step events
type Scheduler struct {
	mu     sync.Mutex
	clock  clock.Clock
	voices VoicePlayer

	tempo     int
	volume    float64
	pattern   *pattern.Pattern
	step      int
	nextDue   float64 // audio-clock seconds of the next unscheduled step
	running   bool
	metronome bool
	countIn   *countIn

	run     uint64 // bumped on start/stop so stale indicator timers are ignored
	current int    // visual step indicator, -1 when stopped

	// UpdateChan is signalled (non-blocking) when the visual step changes
	UpdateChan chan struct{}
}

// New creates a stopped scheduler on clk. A nil clock makes every
// scheduling call a no-op.
func New(clk clock.Clock) *Scheduler {
	return &Scheduler{
		clock:      clk,
		tempo:      DefaultTempo,
		volume:     0.8,
		pattern:    pattern.MustGet(pattern.Default),
		current:    -1,
		UpdateChan: make(chan struct{}, 1),
	}
}

// SetVoices sets the sound collaborator (nil silences playback)
func (s *Scheduler) SetVoices(v VoicePlayer) {
	s.mu.Lock()
	s.voices = v
	s.mu.Unlock()
}

// Run drives Tick every TickInterval until ctx is done (blocking - run in goroutine)
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// hit is one dispatch computed under the lock and sent after it is released
type hit struct {
	voice  pattern.Voice
	click  bool
	accent bool
	at     float64
}

// Tick schedules every step whose due time falls inside the look-ahead window
func (s *Scheduler) Tick() {
	if s.clock == nil {
		return
	}
	now := clock.Seconds(s.clock)

	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}

	var (
		hits  []hit
		armed []func()
	)
	horizon := now + LookAhead.Seconds()
	for s.nextDue < horizon {
		step, at := s.step, s.nextDue

		if step == 0 {
			if cb := s.arriveAtBar(at); cb != nil {
				armed = append(armed, cb)
			}
		}

		for _, v := range s.pattern.Voices(step) {
			hits = append(hits, hit{voice: v, at: at})
		}
		if s.metronome && step%4 == 0 {
			hits = append(hits, hit{click: true, accent: step == 0, at: at})
		}
		s.showStepAt(step, at, now)

		s.step = (s.step + 1) % s.pattern.Steps()
		// additive: re-deriving from the clock would accumulate jitter
		s.nextDue += pattern.StepDuration(float64(s.tempo))
	}
	voices, volume, next := s.voices, s.volume, s.nextDue
	s.mu.Unlock()

	debug.LogEvery(400, "sched", "tick now=%.3f next=%.3f", now, next)

	if voices != nil {
		for _, h := range hits {
			if h.click {
				voices.Click(h.at, h.accent)
			} else {
				voices.Play(h.voice, h.at, volume)
			}
		}
	}
	for _, cb := range armed {
		cb()
	}
}

// showStepAt moves the visual indicator when the clock reaches at
func (s *Scheduler) showStepAt(step int, at, now float64) {
	run := s.run
	s.clock.AfterFunc(clock.FromSeconds(at-now), func() {
		s.mu.Lock()
		if s.run != run || !s.running {
			s.mu.Unlock()
			return
		}
		s.current = step
		s.mu.Unlock()
		s.notify()
	})
}

func (s *Scheduler) notify() {
	select {
	case s.UpdateChan <- struct{}{}:
	default:
	}
}

// Start begins playback; step 0 is scheduled in this call
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running || s.clock == nil {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.run++
	s.step = 0
	s.nextDue = clock.Seconds(s.clock)
	s.mu.Unlock()

	debug.Log("sched", "start tempo=%d pattern=%s", s.Tempo(), s.PatternName())
	s.Tick()
}

// Stop halts playback. Safe to call when already stopped.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	wasRunning := s.running
	s.running = false
	s.run++
	s.step = 0
	s.current = -1
	dropped := s.dropCountIn()
	s.mu.Unlock()

	if wasRunning {
		debug.Log("sched", "stop")
	}
	if dropped != nil {
		dropped()
	}
	s.notify()
}

// Toggle starts or stops playback and returns the new running state
func (s *Scheduler) Toggle() bool {
	if s.Running() {
		s.Stop()
	} else {
		s.Start()
	}
	return s.Running()
}

// Running reports whether the look-ahead loop is scheduling steps
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// SetTempo sets the BPM, clamped to [MinTempo, MaxTempo]. Applies from the next computed step.
func (s *Scheduler) SetTempo(bpm int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if bpm < MinTempo {
		bpm = MinTempo
	}
	if bpm > MaxTempo {
		bpm = MaxTempo
	}
	s.tempo = bpm
}

// Tempo returns the BPM
func (s *Scheduler) Tempo() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tempo
}

// SetVolume sets the voice volume, clamped to [0,1]
func (s *Scheduler) SetVolume(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	s.volume = v
}

// Volume returns the voice volume
func (s *Scheduler) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// SetPattern switches pattern by ID. While running the step index is
// re-based onto the new length. Unknown IDs are ignored.
func (s *Scheduler) SetPattern(id string) bool {
	p, ok := pattern.Get(id)
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pattern = p
	if s.running {
		s.step %= p.Steps()
	} else {
		s.step = 0
	}
	return true
}

// Pattern returns the active pattern
func (s *Scheduler) Pattern() *pattern.Pattern {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pattern
}

// PatternName returns the active pattern ID
func (s *Scheduler) PatternName() string {
	return s.Pattern().ID
}

// PatternSteps returns the step count of the active pattern
func (s *Scheduler) PatternSteps() int {
	return s.Pattern().Steps()
}

// BeatsPerBar returns 3 or 4 for the active pattern
func (s *Scheduler) BeatsPerBar() int {
	return s.Pattern().BeatsPerBar()
}

// StepDuration is one sixteenth note at the current tempo
func (s *Scheduler) StepDuration() time.Duration {
	return clock.FromSeconds(pattern.StepDuration(float64(s.Tempo())))
}

// BarDuration is beats-per-bar × 60/tempo at the current tempo
func (s *Scheduler) BarDuration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clock.FromSeconds(pattern.BarDuration(s.pattern.BeatsPerBar(), float64(s.tempo)))
}

// ToggleMetronome flips the click and returns the new state
func (s *Scheduler) ToggleMetronome() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metronome = !s.metronome
	return s.metronome
}

// Metronome reports whether clicks are scheduled
func (s *Scheduler) Metronome() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metronome
}

// CurrentStep is the step the visual indicator shows (-1 when stopped)
func (s *Scheduler) CurrentStep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}
