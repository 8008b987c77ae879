package sequencer

import (
	"time"

	"go-loopstation/clock"
	"go-loopstation/debug"
)

// countIn is the single outstanding bar-boundary request
type countIn struct {
	skip         int                    // step-0 arrivals still to ignore
	onArmed      func(at time.Duration) // fired once, outside the lock
	onDropped    func()                 // fired instead if the request never arms
	metronomeWas bool                   // restored when the request is consumed
}

// StartCountIn calls onArmed with the clock time of the next full bar, with
// the metronome forced on until then. On a stopped scheduler the bar that
// starts immediately is the audible count-in, so one step-0 arrival is
// skipped. A newer request replaces an older one. Every request ends in
// exactly one of onArmed or onDropped: a replaced request, one pending when
// Stop is called, and one made without a clock are dropped.
func (s *Scheduler) StartCountIn(onArmed func(at time.Duration), onDropped func()) {
	if onArmed == nil {
		return
	}
	s.mu.Lock()
	if s.clock == nil {
		s.mu.Unlock()
		debug.Log("sched", "count-in dropped: no clock")
		if onDropped != nil {
			onDropped()
		}
		return
	}
	req := &countIn{onArmed: onArmed, onDropped: onDropped, metronomeWas: s.metronome}
	var replaced func()
	if s.countIn != nil {
		req.metronomeWas = s.countIn.metronomeWas
		replaced = s.countIn.onDropped
	}
	s.metronome = true
	start := !s.running
	if start {
		req.skip = 1
	}
	s.countIn = req
	s.mu.Unlock()

	debug.Log("sched", "count-in requested (skip=%d)", req.skip)
	if replaced != nil {
		replaced()
	}
	if start {
		s.Start()
	}
}

// CountingIn reports whether a request is outstanding
func (s *Scheduler) CountingIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countIn != nil
}

// arriveAtBar handles a step-0 arrival scheduled at audio time at; returns
// the callback to fire, if any. Caller holds s.mu.
func (s *Scheduler) arriveAtBar(at float64) func() {
	req := s.countIn
	if req == nil {
		return nil
	}
	if req.skip > 0 {
		req.skip--
		return nil
	}
	s.countIn = nil
	s.metronome = req.metronomeWas
	bar := clock.FromSeconds(at)
	return func() { req.onArmed(bar) }
}

// dropCountIn discards a pending request and returns its onDropped, if any.
// Caller holds s.mu.
func (s *Scheduler) dropCountIn() func() {
	req := s.countIn
	if req == nil {
		return nil
	}
	s.metronome = req.metronomeWas
	s.countIn = nil
	return req.onDropped
}
