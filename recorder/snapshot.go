package recorder

import "time"

// Snapshot is the persistent part of a session
type Snapshot struct {
	LoopBars     int           `json:"loop_bars"`
	LoopDuration time.Duration `json:"loop_duration"`
	Layers       []Layer       `json:"layers"`
}

// Snapshot copies the session for saving
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	layers := make([]Layer, len(r.layers))
	copy(layers, r.layers)
	return Snapshot{
		LoopBars:     r.loopBars,
		LoopDuration: r.loopDuration,
		Layers:       layers,
	}
}

// Restore replaces the session with s. Only allowed while idle with no
// take finalizing; returns whether it was applied.
func (r *Recorder) Restore(s Snapshot) bool {
	r.mu.Lock()
	if r.state != Idle || r.finalizing {
		r.mu.Unlock()
		return false
	}
	r.gen++
	r.layers = make([]Layer, len(s.Layers))
	copy(r.layers, s.Layers)
	r.loopBars = s.LoopBars
	if r.loopBars < 0 || r.loopBars > MaxLoopBars {
		r.loopBars = 0
	}
	r.loopDuration = s.LoopDuration
	if r.loopDuration < 0 {
		r.loopDuration = 0
	}
	r.mu.Unlock()

	r.notify()
	return true
}
