package recorder

import (
	"bytes"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"go-loopstation/clock"
	"go-loopstation/export"
	"go-loopstation/midi"
	"go-loopstation/sequencer"
)

type countInRequest struct {
	armed   func(time.Duration)
	dropped func()
}

type fakeTransport struct {
	mu      sync.Mutex
	clk     clock.Clock
	pending []countInRequest
	bar     time.Duration
	tempo   int
}

func (f *fakeTransport) StartCountIn(armed func(time.Duration), dropped func()) {
	f.mu.Lock()
	f.pending = append(f.pending, countInRequest{armed: armed, dropped: dropped})
	f.mu.Unlock()
}

func (f *fakeTransport) take() []countInRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	reqs := f.pending
	f.pending = nil
	return reqs
}

func (f *fakeTransport) BarDuration() time.Duration { return f.bar }
func (f *fakeTransport) Tempo() int                 { return f.tempo }

// fire arms every outstanding count-in on a bar starting now, oldest first
func (f *fakeTransport) fire() {
	f.fireAt(f.clk.Now())
}

// fireAt arms every outstanding count-in on a bar starting at bar
func (f *fakeTransport) fireAt(bar time.Duration) {
	for _, req := range f.take() {
		req.armed(bar)
	}
}

// drop gives up on every outstanding count-in
func (f *fakeTransport) drop() {
	for _, req := range f.take() {
		req.dropped()
	}
}

type fakeCapture struct {
	startErr error
	async    bool
	started  int
	stopped  int
	blob     []byte
	done     func([]byte)
}

func (c *fakeCapture) Start() error {
	c.started++
	return c.startErr
}

func (c *fakeCapture) Stop(done func([]byte)) {
	c.stopped++
	if c.async {
		c.done = done
		return
	}
	done(c.blob)
}

// complete hands back the blob of an async stop
func (c *fakeCapture) complete() {
	d := c.done
	c.done = nil
	d(c.blob)
}

type fakePlayback struct {
	err    error
	active int
	blobs  [][]byte
}

func (p *fakePlayback) Loop(blob []byte) (func(), error) {
	if p.err != nil {
		return nil, p.err
	}
	p.active++
	p.blobs = append(p.blobs, blob)
	return func() { p.active-- }, nil
}

type fakeDecoder struct {
	err  error
	got  []byte
	buf  export.Buffer
	hits int
}

func (d *fakeDecoder) Decode(blob []byte) (export.Buffer, error) {
	d.hits++
	d.got = blob
	return d.buf, d.err
}

type rig struct {
	r   *Recorder
	tr  *fakeTransport
	clk *clock.Manual
	cap *fakeCapture
	pb  *fakePlayback
	dec *fakeDecoder
}

func newRig() *rig {
	clk := clock.NewManual()
	g := &rig{
		tr:  &fakeTransport{clk: clk, bar: 2 * time.Second, tempo: 120},
		clk: clk,
		cap: &fakeCapture{blob: []byte("take")},
		pb:  &fakePlayback{},
		dec: &fakeDecoder{buf: export.Buffer{SampleRate: 8000, Channels: [][]float32{{0, 0.5}}}},
	}
	g.r = New(g.tr, g.clk, WithCapture(g.cap), WithPlayback(g.pb), WithDecoder(g.dec))
	return g
}

// recordFree makes one free-length base take of length d
func (g *rig) recordFree(t *testing.T, d time.Duration) {
	t.Helper()
	g.r.StartRecording()
	g.tr.fire()
	if g.r.State() != Recording {
		t.Fatalf("state = %v after count-in, want recording", g.r.State())
	}
	g.clk.Advance(d)
	g.r.StopRecording()
}

func note(key int) midi.EventData {
	return midi.EventData{Channel: 0, ID: midi.NoteName(key), Note: key, Velocity: 100}
}

func TestRecordFreeLength(t *testing.T) {
	g := newRig()
	g.r.StartRecording()
	if g.r.State() != CountingIn {
		t.Fatalf("state = %v, want count-in", g.r.State())
	}
	g.r.LogEvent(midi.KindNote, note(59)) // not armed yet

	g.clk.Advance(2 * time.Second)
	g.tr.fire()
	for _, ms := range []int{100, 800, 600} {
		g.clk.Advance(time.Duration(ms) * time.Millisecond)
		g.r.LogEvent(midi.KindNote, note(60+ms/100))
	}
	g.clk.Advance(500 * time.Millisecond)
	g.r.StopRecording()

	if g.r.State() != Idle {
		t.Fatalf("state = %v", g.r.State())
	}
	if got := g.r.LoopDuration(); got != 2*time.Second {
		t.Errorf("loop duration = %v, want 2s", got)
	}
	layers := g.r.Layers()
	if len(layers) != 1 || !bytes.Equal(layers[0].Audio, []byte("take")) {
		t.Fatalf("layers = %+v", layers)
	}
	var offsets []time.Duration
	for _, e := range layers[0].Events {
		offsets = append(offsets, e.Offset)
	}
	want := []time.Duration{100 * time.Millisecond, 900 * time.Millisecond, 1500 * time.Millisecond}
	if !reflect.DeepEqual(offsets, want) {
		t.Errorf("offsets = %v, want %v", offsets, want)
	}

	if got, want := g.r.ExportMIDI(), export.EncodeMIDI(layers[0].Events, 120); !bytes.Equal(got, want) {
		t.Errorf("ExportMIDI differs from encoding the layer events")
	}
}

func TestNewTakeReplacesHistory(t *testing.T) {
	g := newRig()
	g.recordFree(t, time.Second)
	g.r.StartOverdub()
	g.clk.Advance(time.Second)
	if len(g.r.Layers()) != 2 {
		t.Fatalf("layers = %d after overdub", len(g.r.Layers()))
	}
	g.recordFree(t, 3*time.Second)
	if len(g.r.Layers()) != 1 || g.r.LoopDuration() != 3*time.Second {
		t.Errorf("layers=%d duration=%v", len(g.r.Layers()), g.r.LoopDuration())
	}
}

func TestStaleCountInDropped(t *testing.T) {
	g := newRig()
	g.r.StartRecording()
	g.r.StopRecording()
	if g.r.State() != Idle {
		t.Fatalf("state = %v after cancel", g.r.State())
	}
	g.tr.fire()
	if g.r.State() != Idle || g.cap.started != 0 {
		t.Fatalf("late count-in armed the recorder (state %v)", g.r.State())
	}

	// cancel then restart: only the newer request may arm
	g.r.StartRecording()
	g.r.StopRecording()
	g.r.StartRecording()
	g.tr.fire()
	if g.r.State() != Recording || g.cap.started != 1 {
		t.Errorf("state=%v starts=%d", g.r.State(), g.cap.started)
	}
}

func TestFixedBarsDeadline(t *testing.T) {
	g := newRig()
	g.r.SetLoopLength(2)
	g.r.StartRecording()
	g.tr.bar = 1500 * time.Millisecond // tempo changed during the count-in
	g.tr.fire()

	if got := g.r.LoopDuration(); got != 3*time.Second {
		t.Fatalf("duration = %v, want 3s", got)
	}
	g.clk.Advance(3*time.Second - time.Millisecond)
	if g.r.State() != Recording {
		t.Fatalf("stopped early: %v", g.r.State())
	}
	g.clk.Advance(time.Millisecond)
	if g.r.State() != Idle || len(g.r.Layers()) != 1 {
		t.Errorf("state=%v layers=%d after deadline", g.r.State(), len(g.r.Layers()))
	}
	if g.r.LoopDuration() != 3*time.Second {
		t.Errorf("fixed duration changed to %v", g.r.LoopDuration())
	}
}

func TestManualStopCancelsDeadline(t *testing.T) {
	g := newRig()
	g.r.SetLoopLength(1)
	g.r.StartRecording()
	g.tr.fire()
	g.clk.Advance(time.Second)
	g.r.StopRecording()
	g.r.StartOverdub()
	g.clk.Advance(1500 * time.Millisecond) // old deadline would have fired at 2s
	if g.r.State() != Overdub {
		t.Fatalf("state = %v", g.r.State())
	}
	g.clk.Advance(500 * time.Millisecond)
	if g.r.State() != Idle {
		t.Errorf("overdub not stopped at loop length: %v", g.r.State())
	}
}

func TestLoopFixation(t *testing.T) {
	g := newRig()
	d := 3100 * time.Millisecond
	g.recordFree(t, d)

	g.tr.tempo, g.tr.bar = 90, 2666*time.Millisecond
	g.r.StartOverdub()
	if g.r.State() != Overdub {
		t.Fatalf("state = %v", g.r.State())
	}
	if g.pb.active != 1 {
		t.Errorf("%d layers looping during overdub, want 1", g.pb.active)
	}
	g.clk.Advance(d - time.Millisecond)
	if g.r.State() != Overdub {
		t.Fatalf("overdub stopped before %v", d)
	}
	g.clk.Advance(time.Millisecond)
	if g.r.State() != Idle {
		t.Fatalf("overdub still running at %v", d)
	}
	if g.pb.active != 0 {
		t.Errorf("practice playback left running")
	}
	if len(g.r.Layers()) != 2 || g.r.LoopDuration() != d {
		t.Errorf("layers=%d duration=%v", len(g.r.Layers()), g.r.LoopDuration())
	}
}

func TestOverdubBootstrapsRecording(t *testing.T) {
	g := newRig()
	g.r.StartOverdub()
	if g.r.State() != CountingIn {
		t.Errorf("state = %v, want count-in", g.r.State())
	}
}

func TestAsyncFinalize(t *testing.T) {
	g := newRig()
	g.cap.async = true
	g.recordFree(t, time.Second)

	if g.r.State() != Idle || !g.r.Finalizing() || len(g.r.Layers()) != 0 {
		t.Fatalf("state=%v finalizing=%v layers=%d", g.r.State(), g.r.Finalizing(), len(g.r.Layers()))
	}
	g.r.StartRecording()
	g.r.StartOverdub()
	if g.r.State() != Idle {
		t.Errorf("new take started while finalizing: %v", g.r.State())
	}

	g.cap.complete()
	if g.r.Finalizing() || len(g.r.Layers()) != 1 {
		t.Errorf("finalizing=%v layers=%d after capture done", g.r.Finalizing(), len(g.r.Layers()))
	}
}

func TestClearDiscardsPendingFinalize(t *testing.T) {
	g := newRig()
	g.cap.async = true
	g.r.SetLoopLength(4)
	g.recordFree(t, time.Second)
	g.r.Clear()
	g.cap.complete()

	if len(g.r.Layers()) != 0 || g.r.State() != Idle || g.r.LoopLength() != 0 {
		t.Errorf("layers=%d state=%v bars=%d", len(g.r.Layers()), g.r.State(), g.r.LoopLength())
	}
}

// inState builds a recorder holding one layer and sitting in s
func inState(t *testing.T, s State) *rig {
	t.Helper()
	g := newRig()
	g.recordFree(t, 2*time.Second)
	switch s {
	case CountingIn:
		g.r.StartRecording()
	case Recording:
		g.r.StartRecording()
		g.tr.fire()
	case Overdub:
		g.r.StartOverdub()
	case Playing:
		g.r.PlayLoop()
	}
	if g.r.State() != s {
		t.Fatalf("setup reached %v, want %v", g.r.State(), s)
	}
	return g
}

func TestStateTotality(t *testing.T) {
	ops := []struct {
		name string
		do   func(r *Recorder)
	}{
		{"StartRecording", (*Recorder).StartRecording},
		{"StartOverdub", (*Recorder).StartOverdub},
		{"StopRecording", (*Recorder).StopRecording},
		{"PlayLoop", (*Recorder).PlayLoop},
		{"StopPlayback", (*Recorder).StopPlayback},
		{"LogEvent", func(r *Recorder) { r.LogEvent(midi.KindDrum, midi.EventData{ID: "kick", Note: 36}) }},
		{"SetLoopLength", func(r *Recorder) { r.SetLoopLength(2) }},
		{"Clear", (*Recorder).Clear},
	}
	want := map[State][]State{
		Idle:       {CountingIn, Overdub, Idle, Playing, Idle, Idle, Idle, Idle},
		CountingIn: {CountingIn, CountingIn, Idle, CountingIn, CountingIn, CountingIn, CountingIn, Idle},
		Recording:  {Recording, Recording, Idle, Recording, Recording, Recording, Recording, Idle},
		Overdub:    {Overdub, Overdub, Idle, Overdub, Overdub, Overdub, Overdub, Idle},
		Playing:    {CountingIn, Playing, Playing, Playing, Idle, Playing, Playing, Idle},
	}
	for from, next := range want {
		for i, op := range ops {
			t.Run(from.String()+"/"+op.name, func(t *testing.T) {
				g := inState(t, from)
				op.do(g.r)
				if got := g.r.State(); got != next[i] {
					t.Errorf("%v.%s -> %v, want %v", from, op.name, got, next[i])
				}
			})
		}
	}
}

func TestClearFromEveryState(t *testing.T) {
	for _, s := range []State{Idle, CountingIn, Recording, Overdub, Playing} {
		g := inState(t, s)
		g.r.Clear()
		g.tr.fire()
		g.clk.Advance(10 * time.Second)
		if g.r.State() != Idle || len(g.r.Layers()) != 0 {
			t.Errorf("from %v: state=%v layers=%d", s, g.r.State(), len(g.r.Layers()))
		}
		if out, err := g.r.ExportWAV(); out != nil || err != nil {
			t.Errorf("from %v: ExportWAV = %d bytes, %v", s, len(out), err)
		}
		if out := g.r.ExportMIDI(); out != nil {
			t.Errorf("from %v: ExportMIDI = %d bytes", s, len(out))
		}
		if g.pb.active != 0 {
			t.Errorf("from %v: %d loops still playing", s, g.pb.active)
		}
		if g.r.LoopLength() != 0 || g.r.LoopDuration() != 0 {
			t.Errorf("from %v: loop length not reset", s)
		}
	}
}

func TestPlayLoopNeedsLayers(t *testing.T) {
	g := newRig()
	g.r.PlayLoop()
	if g.r.State() != Idle {
		t.Errorf("played with no layers: %v", g.r.State())
	}
}

func TestOverdubLogsIntoNewLayer(t *testing.T) {
	g := newRig()
	g.recordFree(t, 2*time.Second)
	g.r.StartOverdub()
	g.clk.Advance(250 * time.Millisecond)
	g.r.LogEvent(midi.KindDrum, midi.EventData{Channel: 9, ID: "snare", Note: 38, Velocity: 110})
	if g.r.WorkingEvents() != 1 {
		t.Errorf("working = %d", g.r.WorkingEvents())
	}
	g.r.StopRecording()

	layers := g.r.Layers()
	if len(layers) != 2 || len(layers[1].Events) != 1 || layers[1].Events[0].Offset != 250*time.Millisecond {
		t.Fatalf("layers = %+v", layers)
	}
	if layers[1].Events[0].Kind != midi.KindDrum {
		t.Errorf("kind = %v", layers[1].Events[0].Kind)
	}
}

func TestProgress(t *testing.T) {
	g := newRig()
	if g.r.Progress() != 0 {
		t.Error("idle progress should be 0")
	}
	g.recordFree(t, 2*time.Second)
	g.r.PlayLoop()
	g.clk.Advance(500 * time.Millisecond)
	if p := g.r.Progress(); p != 0.25 {
		t.Errorf("progress = %v, want 0.25", p)
	}
	g.clk.Advance(2 * time.Second)
	if p := g.r.Progress(); p != 0.25 {
		t.Errorf("progress after wrap = %v, want 0.25", p)
	}
	if g.r.Elapsed() != 2500*time.Millisecond {
		t.Errorf("elapsed = %v", g.r.Elapsed())
	}
	g.r.StopPlayback()
	if g.r.Progress() != 0 || g.r.Elapsed() != 0 {
		t.Error("stopped playback should report no progress")
	}
}

func TestExportWAVUsesFirstLayer(t *testing.T) {
	g := newRig()
	g.recordFree(t, time.Second)
	g.cap.blob = []byte("second")
	g.r.StartOverdub()
	g.r.StopRecording()

	out, err := g.r.ExportWAV()
	if err != nil {
		t.Fatal(err)
	}
	if string(g.dec.got) != "take" {
		t.Errorf("decoded %q, want the first layer", g.dec.got)
	}
	want, _ := export.EncodeWAV(g.dec.buf)
	if !bytes.Equal(out, want) {
		t.Error("ExportWAV differs from EncodeWAV of the decoded buffer")
	}
}

func TestExportWAVFailures(t *testing.T) {
	g := newRig()
	g.recordFree(t, time.Second)
	g.dec.err = errors.New("corrupt")
	if out, err := g.r.ExportWAV(); out != nil || err == nil {
		t.Errorf("decode failure: %d bytes, err %v", len(out), err)
	}

	noDec := New(g.tr, g.clk, WithCapture(g.cap))
	noDec.StartRecording()
	g.tr.fire()
	noDec.StopRecording()
	if _, err := noDec.ExportWAV(); !errors.Is(err, ErrNoDecoder) {
		t.Errorf("err = %v, want ErrNoDecoder", err)
	}
}

func TestCaptureFailureStillCommits(t *testing.T) {
	g := newRig()
	g.cap.startErr = errors.New("no permission")
	g.recordFree(t, time.Second)
	if g.cap.stopped != 0 {
		t.Error("stopped a capture that never started")
	}
	layers := g.r.Layers()
	if len(layers) != 1 || layers[0].Audio != nil {
		t.Fatalf("layers = %+v", layers)
	}
	if _, err := g.r.ExportWAV(); !errors.Is(err, ErrNoAudio) {
		t.Errorf("err = %v, want ErrNoAudio", err)
	}
	if g.r.ExportMIDI() == nil {
		t.Error("MIDI export should still work without audio")
	}
}

func TestPlaybackFailureDegrades(t *testing.T) {
	g := newRig()
	g.recordFree(t, time.Second)
	g.pb.err = errors.New("device busy")
	g.r.PlayLoop()
	if g.r.State() != Playing {
		t.Errorf("state = %v", g.r.State())
	}
	g.r.StopPlayback()
}

func TestNoTransportArmsImmediately(t *testing.T) {
	clk := clock.NewManual()
	r := New(nil, clk)
	r.StartRecording()
	if r.State() != Recording {
		t.Fatalf("state = %v", r.State())
	}
	clk.Advance(time.Second)
	r.StopRecording()
	if len(r.Layers()) != 1 || r.LoopDuration() != time.Second {
		t.Errorf("layers=%d duration=%v", len(r.Layers()), r.LoopDuration())
	}
	if tempo := r.ExportMIDI(); !bytes.Equal(tempo, export.EncodeMIDI(nil, sequencer.DefaultTempo)) {
		t.Error("MIDI export without transport should use the default tempo")
	}
}

func TestSnapshotRestore(t *testing.T) {
	g := newRig()
	g.r.SetLoopLength(2)
	g.r.StartRecording()
	g.tr.fire()
	g.r.LogEvent(midi.KindChord, midi.EventData{ID: "Am", Note: midi.NoNote})
	g.r.StopRecording()
	snap := g.r.Snapshot()

	other := newRig()
	if !other.r.Restore(snap) {
		t.Fatal("restore refused while idle")
	}
	if !reflect.DeepEqual(other.r.Snapshot(), snap) {
		t.Errorf("restored %+v, want %+v", other.r.Snapshot(), snap)
	}

	other.r.PlayLoop()
	if other.r.Restore(Snapshot{}) {
		t.Error("restore applied while playing")
	}
}

func TestLoopLengthClamp(t *testing.T) {
	r := New(nil, clock.NewManual())
	r.SetLoopLength(-3)
	if r.LoopLength() != 0 {
		t.Errorf("bars = %d", r.LoopLength())
	}
	r.SetLoopLength(1000)
	if r.LoopLength() != MaxLoopBars {
		t.Errorf("bars = %d", r.LoopLength())
	}
}

func TestWithScheduler(t *testing.T) {
	clk := clock.NewManual()
	sched := sequencer.New(clk)
	r := New(sched, clk)
	r.SetLoopLength(1)

	r.StartRecording()
	if !sched.Running() || !sched.CountingIn() {
		t.Fatal("count-in did not start the scheduler")
	}

	var armedAt time.Duration
	for i := 0; i < 200 && r.State() == CountingIn; i++ {
		clk.Advance(sequencer.TickInterval)
		sched.Tick()
		armedAt = clk.Now()
	}
	if r.State() != Recording {
		t.Fatalf("never armed: %v", r.State())
	}
	if armedAt < 2*time.Second-sequencer.LookAhead || armedAt >= 2*time.Second {
		t.Errorf("armed at %v, want within look-ahead before the 2s bar", armedAt)
	}
	if r.LoopDuration() != 2*time.Second {
		t.Errorf("duration = %v", r.LoopDuration())
	}

	// a note played early, inside the look-ahead, counts as the downbeat
	r.LogEvent(midi.KindNote, note(59))
	clk.Advance(2*time.Second - clk.Now())
	r.LogEvent(midi.KindNote, note(60))
	clk.Advance(500 * time.Millisecond)
	r.LogEvent(midi.KindNote, note(62))

	clk.Advance(4*time.Second - clk.Now() - time.Millisecond)
	if r.State() != Recording {
		t.Fatalf("stopped at %v, before the bar ended", clk.Now())
	}
	clk.Advance(time.Millisecond)
	if r.State() != Idle || len(r.Layers()) != 1 {
		t.Fatalf("state=%v layers=%d after one bar", r.State(), len(r.Layers()))
	}

	var offsets []time.Duration
	for _, ev := range r.Layers()[0].Events {
		offsets = append(offsets, ev.Offset)
	}
	if want := []time.Duration{0, 0, 500 * time.Millisecond}; !reflect.DeepEqual(offsets, want) {
		t.Errorf("offsets = %v, want %v", offsets, want)
	}
}

func TestSchedulerStopDuringCountIn(t *testing.T) {
	clk := clock.NewManual()
	sched := sequencer.New(clk)
	r := New(sched, clk)

	r.StartRecording()
	sched.Stop()
	if r.State() != Idle {
		t.Fatalf("state = %v after the scheduler stopped, want idle", r.State())
	}
	sched.Start()
	for i := 0; i < 400; i++ {
		clk.Advance(sequencer.TickInterval)
		sched.Tick()
	}
	if r.State() != Idle {
		t.Errorf("state = %v after restart, want idle", r.State())
	}

	r.StartRecording()
	if r.State() != CountingIn || !sched.CountingIn() {
		t.Errorf("recording refused after a dropped count-in: state=%v", r.State())
	}
}

func TestSchedulerWithoutClockDropsCountIn(t *testing.T) {
	r := New(sequencer.New(nil), clock.NewManual())
	r.StartRecording()
	if r.State() != Idle {
		t.Errorf("state = %v, want idle", r.State())
	}
}

func TestDroppedCountIn(t *testing.T) {
	g := newRig()
	g.r.StartRecording()
	g.tr.drop()
	if g.r.State() != Idle {
		t.Fatalf("state = %v after drop, want idle", g.r.State())
	}
	g.r.StartRecording()
	if g.r.State() != CountingIn {
		t.Fatalf("state = %v, want count-in", g.r.State())
	}

	// a stale drop must not cancel the newer request
	stale := g.tr.take()
	g.r.StopRecording()
	g.r.StartRecording()
	stale[0].dropped()
	if g.r.State() != CountingIn {
		t.Errorf("stale drop changed state to %v", g.r.State())
	}
}

func TestTakeStartsAtBarTime(t *testing.T) {
	g := newRig()
	g.r.SetLoopLength(1)
	g.clk.Advance(1925 * time.Millisecond)
	g.r.StartRecording()
	g.tr.fireAt(2 * time.Second)

	g.r.LogEvent(midi.KindNote, note(59)) // early, inside the look-ahead
	if g.r.Elapsed() != 0 || g.r.Progress() != 0 {
		t.Errorf("elapsed=%v progress=%v before the bar", g.r.Elapsed(), g.r.Progress())
	}
	g.clk.Advance(75 * time.Millisecond)
	g.r.LogEvent(midi.KindNote, note(60)) // on the downbeat
	g.clk.Advance(time.Second)
	if p := g.r.Progress(); p != 0.5 {
		t.Errorf("progress = %v, want 0.5", p)
	}

	g.clk.Advance(time.Second - time.Millisecond)
	if g.r.State() != Recording {
		t.Fatal("deadline fired before the bar ended")
	}
	g.clk.Advance(time.Millisecond)
	if g.r.State() != Idle {
		t.Fatalf("state = %v, want idle at 4s", g.r.State())
	}

	events := g.r.Layers()[0].Events
	if len(events) != 2 || events[0].Offset != 0 || events[1].Offset != 0 {
		t.Fatalf("events = %+v, want both at offset 0", events)
	}
	smf := export.EncodeMIDI(events, 120)
	if !bytes.Equal(smf, g.r.ExportMIDI()) {
		t.Error("ExportMIDI differs from EncodeMIDI of the layer")
	}
}
