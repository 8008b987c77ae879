package recorder

import (
	"time"

	"go-loopstation/debug"
	"go-loopstation/midi"
)

// StartRecording requests a count-in and arms a fresh base take on the next
// bar. Playback is stopped first. Ignored while a take is counting in,
// running or finalizing.
func (r *Recorder) StartRecording() {
	r.mu.Lock()
	if (r.state != Idle && r.state != Playing) || r.finalizing {
		r.mu.Unlock()
		return
	}
	stops := r.takeStops()
	r.state = CountingIn
	r.gen++
	gen := r.gen
	transport := r.transport
	r.mu.Unlock()

	stopAll(stops)
	r.notify()
	debug.Log("rec", "count-in (gen %d)", gen)

	if transport == nil {
		r.arm(gen, r.clock.Now())
		return
	}
	transport.StartCountIn(
		func(at time.Duration) { r.arm(gen, at) },
		func() { r.countInDropped(gen) },
	)
}

// countInDropped returns to Idle when the transport gives up on the request
func (r *Recorder) countInDropped(gen uint64) {
	r.mu.Lock()
	if r.gen != gen || r.state != CountingIn {
		r.mu.Unlock()
		return
	}
	r.gen++
	r.state = Idle
	r.mu.Unlock()

	debug.Log("rec", "count-in dropped by transport")
	r.notify()
}

// arm is the count-in callback: the take starts at the bar time at
func (r *Recorder) arm(gen uint64, at time.Duration) {
	var bar time.Duration
	if r.transport != nil {
		bar = r.transport.BarDuration()
	}

	r.mu.Lock()
	if r.gen != gen || r.state != CountingIn {
		cur := r.gen
		r.mu.Unlock()
		debug.Log("rec", "stale count-in dropped (gen %d, now %d)", gen, cur)
		return
	}
	r.startCapture()
	r.working = nil
	r.state = Recording
	r.startedAt = at
	r.loopDuration = 0
	if r.loopBars > 0 && bar > 0 {
		// tempo may have moved since the length was configured
		r.loopDuration = time.Duration(r.loopBars) * bar
		r.armDeadline(gen, at+r.loopDuration-r.clock.Now())
	}
	bars, d := r.loopBars, r.loopDuration
	r.mu.Unlock()

	debug.Log("rec", "recording (bars=%d, duration=%v)", bars, d)
	r.notify()
}

// StartOverdub records a new layer over the looping existing ones. With no
// layers yet it starts a base recording instead.
func (r *Recorder) StartOverdub() {
	r.mu.Lock()
	if r.state != Idle || r.finalizing {
		r.mu.Unlock()
		return
	}
	if len(r.layers) == 0 {
		r.mu.Unlock()
		r.StartRecording()
		return
	}
	r.gen++
	gen := r.gen
	r.startCapture()
	r.working = nil
	r.state = Overdub
	r.startedAt = r.clock.Now()
	r.stops = r.loopLayers()
	if r.loopDuration > 0 {
		r.armDeadline(gen, r.loopDuration)
	}
	n := len(r.layers)
	r.mu.Unlock()

	debug.Log("rec", "overdub over %d layers (gen %d)", n, gen)
	r.notify()
}

// StopRecording cancels a count-in or ends the running take. The layer is
// committed once the capture hands back its blob.
func (r *Recorder) StopRecording() {
	r.mu.Lock()
	switch r.state {
	case CountingIn:
		r.gen++
		r.state = Idle
		r.mu.Unlock()
		debug.Log("rec", "count-in cancelled")
		r.notify()
	case Recording, Overdub:
		r.finish()
	default:
		r.mu.Unlock()
	}
}

// expire is the auto-stop deadline
func (r *Recorder) expire(gen uint64) {
	r.mu.Lock()
	if r.gen != gen || (r.state != Recording && r.state != Overdub) {
		r.mu.Unlock()
		return
	}
	debug.Log("rec", "deadline reached")
	r.finish()
}

// finish ends the take. Caller holds r.mu; it is released here.
func (r *Recorder) finish() {
	mode, gen := r.state, r.gen
	if mode == Recording && r.loopBars == 0 {
		r.loopDuration = r.sinceStart()
	}
	events := r.working
	r.working = nil
	stops := r.takeStops()
	r.stopDeadline()
	r.state = Idle
	r.finalizing = true
	capture, capturing := r.capture, r.capturing
	r.capturing = false
	d := r.loopDuration
	r.mu.Unlock()

	stopAll(stops)
	debug.Log("rec", "%s stopped, %d events, loop %v", mode, len(events), d)
	r.notify()

	done := func(blob []byte) { r.commit(gen, mode, blob, events) }
	if capture != nil && capturing {
		capture.Stop(done)
		return
	}
	done(nil)
}

// commit stores a finalized take unless Clear has happened since
func (r *Recorder) commit(gen uint64, mode State, blob []byte, events []midi.Event) {
	r.mu.Lock()
	if r.gen != gen {
		cur := r.gen
		r.mu.Unlock()
		debug.Log("rec", "finalize discarded (gen %d, now %d)", gen, cur)
		return
	}
	r.finalizing = false
	layer := Layer{Audio: blob, Events: events, CreatedAt: time.Now()}
	if mode == Recording {
		r.layers = []Layer{layer}
	} else {
		r.layers = append(r.layers, layer)
	}
	n := len(r.layers)
	r.mu.Unlock()

	debug.Log("rec", "layer committed (%d bytes, %d layers)", len(blob), n)
	r.notify()
}

// PlayLoop starts every layer looping together. Needs at least one layer.
func (r *Recorder) PlayLoop() {
	r.mu.Lock()
	if r.state != Idle || len(r.layers) == 0 {
		r.mu.Unlock()
		return
	}
	r.stops = r.loopLayers()
	r.state = Playing
	r.startedAt = r.clock.Now()
	r.mu.Unlock()
	r.notify()
}

// StopPlayback halts the looping layers
func (r *Recorder) StopPlayback() {
	r.mu.Lock()
	if r.state != Playing {
		r.mu.Unlock()
		return
	}
	stops := r.takeStops()
	r.state = Idle
	r.mu.Unlock()

	stopAll(stops)
	r.notify()
}

// Clear returns to an empty free-length session from any state. Pending
// count-ins, deadlines and finalizes are invalidated.
func (r *Recorder) Clear() {
	r.mu.Lock()
	r.gen++
	stops := r.takeStops()
	r.stopDeadline()
	capture, capturing := r.capture, r.capturing
	r.capturing = false
	r.state = Idle
	r.finalizing = false
	r.working = nil
	r.layers = nil
	r.loopBars = 0
	r.loopDuration = 0
	r.mu.Unlock()

	stopAll(stops)
	if capture != nil && capturing {
		capture.Stop(func([]byte) {})
	}
	debug.Log("rec", "cleared")
	r.notify()
}

// startCapture begins a take on the capture collaborator. Caller holds r.mu.
func (r *Recorder) startCapture() {
	r.capturing = false
	if r.capture == nil {
		return
	}
	if err := r.capture.Start(); err != nil {
		debug.Log("rec", "capture unavailable: %v", err)
		return
	}
	r.capturing = true
}

// loopLayers starts playback of every layer with audio. Caller holds r.mu.
func (r *Recorder) loopLayers() []func() {
	if r.playback == nil {
		return nil
	}
	var stops []func()
	for i, l := range r.layers {
		if len(l.Audio) == 0 {
			continue
		}
		stop, err := r.playback.Loop(l.Audio)
		if err != nil {
			debug.Log("rec", "layer %d playback: %v", i, err)
			continue
		}
		stops = append(stops, stop)
	}
	return stops
}

// takeStops detaches the active playback stops. Caller holds r.mu.
func (r *Recorder) takeStops() []func() {
	stops := r.stops
	r.stops = nil
	return stops
}

func stopAll(stops []func()) {
	for _, stop := range stops {
		stop()
	}
}

// armDeadline schedules the auto-stop. Caller holds r.mu.
func (r *Recorder) armDeadline(gen uint64, d time.Duration) {
	r.stopDeadline()
	r.deadline = r.clock.AfterFunc(d, func() { r.expire(gen) })
}

func (r *Recorder) stopDeadline() {
	if r.deadline != nil {
		r.deadline.Stop()
		r.deadline = nil
	}
}
