// Package clock provides the monotonic time source shared by the scheduler
// and the recorder, plus a manually advanced clock for tests.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Clock is a monotonic clock with one-shot timers
type Clock interface {
	// Now returns time elapsed since the clock's origin
	Now() time.Duration
	// AfterFunc calls f once, d after now
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending AfterFunc call
type Timer interface {
	Stop() bool
}

// Seconds returns c.Now() as float seconds, the unit the scheduler works in
func Seconds(c Clock) float64 {
	return c.Now().Seconds()
}

// FromSeconds converts scheduler seconds back to a Duration
func FromSeconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Wall is the real-time clock
type Wall struct {
	origin time.Time
}

// NewWall creates a wall clock whose origin is now
func NewWall() *Wall {
	return &Wall{origin: time.Now()}
}

func (w *Wall) Now() time.Duration {
	return time.Since(w.origin)
}

func (w *Wall) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Manual only moves when Advance is called. Timers fire synchronously, in
// due order, from inside Advance.
type Manual struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	m   *Manual
	at  time.Duration
	seq int
	f   func()
}

// NewManual creates a manual clock at zero
func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{m: m, at: m.now + d, seq: m.seq, f: f}
	m.timers = append(m.timers, t)
	return t
}

// Pending returns the number of timers not yet fired or stopped
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// Advance moves the clock forward by d, firing every timer that falls due
// on the way. Callbacks run without the clock lock held and may schedule
// further timers.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		sort.SliceStable(m.timers, func(i, j int) bool {
			if m.timers[i].at != m.timers[j].at {
				return m.timers[i].at < m.timers[j].at
			}
			return m.timers[i].seq < m.timers[j].seq
		})
		if len(m.timers) == 0 || m.timers[0].at > target {
			m.now = target
			m.mu.Unlock()
			return
		}
		t := m.timers[0]
		m.timers = m.timers[1:]
		if t.at > m.now {
			m.now = t.at
		}
		m.mu.Unlock()
		t.f()
	}
}

func (t *manualTimer) Stop() bool {
	m := t.m
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, other := range m.timers {
		if other == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return true
		}
	}
	return false
}
