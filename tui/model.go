package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-loopstation/debug"
	"go-loopstation/midi"
	"go-loopstation/pattern"
	"go-loopstation/project"
	"go-loopstation/recorder"
	"go-loopstation/sequencer"
	"go-loopstation/theme"
	"go-loopstation/widgets"
)

const (
	frameInterval = time.Second / 30
	noteLength    = 200 * time.Millisecond
	noteVelocity  = 100
	drumVelocity  = 110
	progressWidth = 32
	layerSlots    = 4
)

type Model struct {
	Sched    *sequencer.Scheduler
	Rec      *recorder.Recorder
	Store    *project.Store
	Theme    *theme.Theme
	Out      midi.Sender      // echo for played notes (may be nil)
	Voices   *midi.DrumVoices // kit changes (may be nil)
	Keyboard *midi.Keyboard   // external input (may be nil)

	kit       string
	help      help.Model
	showHelp  bool
	animating bool
	status    string
	quitting  bool
}

// UpdateMsg is sent when the scheduler or recorder signals a change
type UpdateMsg struct {
	ch chan struct{}
}

// NoteMsg is a note-on from the external keyboard
type NoteMsg midi.NoteEvent

type frameMsg time.Time

type noteOffMsg struct {
	channel uint8
	note    uint8
}

type statusMsg string

type sessionMsg project.Session

func NewModel(sched *sequencer.Scheduler, rec *recorder.Recorder, store *project.Store, th *theme.Theme) Model {
	if th == nil {
		th = theme.New(nil)
	}
	return Model{
		Sched: sched,
		Rec:   rec,
		Store: store,
		Theme: th,
		kit:   sequencer.DefaultKit,
		help:  help.New(),
	}
}

// WithMIDI sets the echo output and the drum voices that follow kit changes
func (m Model) WithMIDI(out midi.Sender, voices *midi.DrumVoices, kit string) Model {
	m.Out = out
	m.Voices = voices
	if _, ok := sequencer.Kits[kit]; ok {
		m.kit = kit
	}
	return m
}

// WithStatus sets the initial status line
func (m Model) WithStatus(status string) Model {
	m.status = status
	return m
}

// WithKeyboard logs and echoes notes from an external keyboard
func (m Model) WithKeyboard(kb *midi.Keyboard) Model {
	m.Keyboard = kb
	return m
}

func ListenForUpdates(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return UpdateMsg{ch: ch}
	}
}

func ListenForNotes(kb *midi.Keyboard) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-kb.NoteEvents()
		if !ok {
			return nil
		}
		return NoteMsg(ev)
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		ListenForUpdates(m.Sched.UpdateChan),
		ListenForUpdates(m.Rec.UpdateChan),
	}
	if m.Keyboard != nil {
		cmds = append(cmds, ListenForNotes(m.Keyboard))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			m.Rec.StopRecording()
			m.Rec.StopPlayback()
			m.Sched.Stop()
			return m, tea.Quit
		}
		cmd := m.handleKey(msg)
		frames := m.startFrames()
		return m, tea.Batch(cmd, frames)

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case UpdateMsg:
		frames := m.startFrames()
		return m, tea.Batch(ListenForUpdates(msg.ch), frames)

	case frameMsg:
		if m.recorderActive() {
			return m, frameTick()
		}
		m.animating = false

	case NoteMsg:
		cmd := m.play(midi.KindNote, midi.NoteName(int(msg.Note)), int(msg.Note), msg.Channel, msg.Velocity)
		listen := ListenForNotes(m.Keyboard)
		return m, tea.Batch(cmd, listen)

	case noteOffMsg:
		if m.Out != nil {
			m.Out.NoteOff(msg.channel, msg.note)
		}

	case statusMsg:
		m.status = string(msg)

	case sessionMsg:
		m.applySession(project.Session(msg))
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Play):
		m.Sched.Toggle()
	case key.Matches(msg, keys.Metronome):
		m.Sched.ToggleMetronome()
	case key.Matches(msg, keys.TempoUp):
		m.Sched.SetTempo(m.Sched.Tempo() + 5)
	case key.Matches(msg, keys.TempoDown):
		m.Sched.SetTempo(m.Sched.Tempo() - 5)
	case key.Matches(msg, keys.PrevPat):
		m.Sched.SetPattern(cycle(pattern.Names(), m.Sched.PatternName(), -1))
	case key.Matches(msg, keys.NextPat):
		m.Sched.SetPattern(cycle(pattern.Names(), m.Sched.PatternName(), 1))
	case key.Matches(msg, keys.Kit):
		m.setKit(cycle(sequencer.KitNames(), m.kit, 1))
	case key.Matches(msg, keys.LoopBars):
		m.Rec.SetLoopLength(int(msg.String()[0] - '0'))

	case key.Matches(msg, keys.Record):
		switch m.Rec.State() {
		case recorder.CountingIn, recorder.Recording, recorder.Overdub:
			m.Rec.StopRecording()
		default:
			m.Rec.StartRecording()
		}
	case key.Matches(msg, keys.Overdub):
		if m.Rec.State() == recorder.Overdub {
			m.Rec.StopRecording()
		} else {
			m.Rec.StartOverdub()
		}
	case key.Matches(msg, keys.Stop):
		m.Rec.StopRecording()
	case key.Matches(msg, keys.Loop):
		if m.Rec.State() == recorder.Playing {
			m.Rec.StopPlayback()
		} else {
			m.Rec.PlayLoop()
		}
	case key.Matches(msg, keys.Clear):
		m.Rec.Clear()
		m.status = ""

	case key.Matches(msg, keys.ExportWAV):
		return m.exportWAV()
	case key.Matches(msg, keys.ExportMIDI):
		return m.exportMIDI()
	case key.Matches(msg, keys.SaveSession):
		return m.saveSession()
	case key.Matches(msg, keys.LoadSession):
		return m.loadSession()

	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp

	default:
		return m.perform(msg.String())
	}
	return nil
}

// perform handles the note, chord and drum keys
func (m *Model) perform(k string) tea.Cmd {
	if note, ok := noteKeys[k]; ok {
		return m.play(midi.KindNote, midi.NoteName(note), note, 0, noteVelocity)
	}
	if c, ok := chordKeys[k]; ok {
		m.Rec.LogEvent(midi.KindChord, midi.EventData{ID: c.name, Note: c.notes[0], Velocity: noteVelocity})
		var cmds []tea.Cmd
		for _, n := range c.notes {
			cmds = append(cmds, m.sound(0, uint8(n), noteVelocity))
		}
		return tea.Batch(cmds...)
	}
	if v, ok := drumKeys[k]; ok {
		note := sequencer.GetKit(m.kit).Keys[v]
		return m.play(midi.KindDrum, v.String(), int(note), midi.DrumChannel, drumVelocity)
	}
	return nil
}

// play logs a performer event and sounds it
func (m *Model) play(kind midi.Kind, id string, note int, channel, velocity uint8) tea.Cmd {
	m.Rec.LogEvent(kind, midi.EventData{Channel: channel, ID: id, Note: note, Velocity: velocity})
	debug.Log("tui", "%s %s", kind, id)
	return m.sound(channel, uint8(note), velocity)
}

// sound echoes a note to the MIDI output, releasing it after noteLength
func (m *Model) sound(channel, note, velocity uint8) tea.Cmd {
	if m.Out == nil {
		return nil
	}
	m.Out.NoteOn(channel, note, velocity)
	return tea.Tick(noteLength, func(time.Time) tea.Msg {
		return noteOffMsg{channel: channel, note: note}
	})
}

func (m *Model) setKit(name string) {
	m.kit = name
	if m.Voices != nil {
		m.Voices.SetKeys(sequencer.GetKit(name).Keys)
	}
}

func (m *Model) recorderActive() bool {
	switch m.Rec.State() {
	case recorder.Recording, recorder.Overdub, recorder.Playing:
		return true
	}
	return false
}

// startFrames begins the playhead animation if it is needed and not running
func (m *Model) startFrames() tea.Cmd {
	if m.animating || !m.recorderActive() {
		return nil
	}
	m.animating = true
	return frameTick()
}

func frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m Model) exportWAV() tea.Cmd {
	rec, store := m.Rec, m.Store
	return func() tea.Msg {
		data, err := rec.ExportWAV()
		if err != nil {
			return statusMsg("wav export failed: " + project.Message(err))
		}
		if data == nil {
			return nil
		}
		return saved(store.Save("loop", project.ExtWAV, data))
	}
}

func (m Model) exportMIDI() tea.Cmd {
	rec, store := m.Rec, m.Store
	return func() tea.Msg {
		data := rec.ExportMIDI()
		if data == nil {
			return nil
		}
		return saved(store.Save("loop", project.ExtMIDI, data))
	}
}

func (m Model) saveSession() tea.Cmd {
	sess := project.Session{
		Tempo:     m.Sched.Tempo(),
		Pattern:   m.Sched.PatternName(),
		Kit:       m.kit,
		Metronome: m.Sched.Metronome(),
		Recorder:  m.Rec.Snapshot(),
	}
	store := m.Store
	return func() tea.Msg {
		return saved(store.SaveSession("session", sess))
	}
}

func (m Model) loadSession() tea.Cmd {
	store := m.Store
	return func() tea.Msg {
		sess, err := store.LoadSession("")
		if err != nil {
			return statusMsg(project.Message(err))
		}
		return sessionMsg(sess)
	}
}

func (m *Model) applySession(sess project.Session) {
	if !m.Rec.Restore(sess.Recorder) {
		m.status = "stop the recorder before loading a session"
		return
	}
	m.Sched.SetTempo(sess.Tempo)
	m.Sched.SetPattern(sess.Pattern)
	if m.Sched.Metronome() != sess.Metronome {
		m.Sched.ToggleMetronome()
	}
	if sess.Kit != "" {
		m.setKit(sess.Kit)
	}
	m.status = fmt.Sprintf("session loaded (%d layers)", len(sess.Recorder.Layers))
}

func saved(path string, err error) tea.Msg {
	if err != nil {
		return statusMsg(project.Message(err))
	}
	return statusMsg("saved " + filepath.Base(path))
}

// cycle returns the entry dir places away from cur, wrapping
func cycle(names []string, cur string, dir int) string {
	if len(names) == 0 {
		return cur
	}
	idx := 0
	for i, n := range names {
		if n == cur {
			idx = i
			break
		}
	}
	return names[((idx+dir)%len(names)+len(names))%len(names)]
}

func (m Model) stateColor(s recorder.State) lipgloss.Color {
	switch s {
	case recorder.CountingIn:
		return m.Theme.Warning()
	case recorder.Recording:
		return m.Theme.Active()
	case recorder.Overdub:
		return m.Theme.Cursor()
	case recorder.Playing:
		// sweep the palette as the loop goes round
		return m.Theme.Color(m.Rec.Progress())
	}
	return m.Theme.Muted()
}

// legend shows the grid color and key of each drum voice
func (m Model) legend() string {
	drumKey := make(map[pattern.Voice]string, len(drumKeys))
	for k, v := range drumKeys {
		drumKey[v] = k
	}
	lines := make([]string, 0, pattern.NumVoices)
	for v := pattern.Voice(0); v < pattern.NumVoices; v++ {
		lines = append(lines, widgets.RenderLegendItem(widgets.VoiceColor(m.Theme, v), m.Theme.Symbols.StepActive, v.String(), "key "+drumKey[v]))
	}
	return strings.Join(lines, "\n")
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())

	playState := "STOP"
	if m.Sched.Running() {
		playState = "PLAY"
	}
	click := "off"
	if m.Sched.Metronome() {
		click = "on"
	}
	p := m.Sched.Pattern()
	header := headerStyle.Render(fmt.Sprintf("go-loopstation  %s  %3dbpm  %s %s  kit:%s  click:%s",
		playState, m.Sched.Tempo(), p.ID, p.Meter, m.kit, click))

	grid := widgets.RenderStepGrid(m.Theme, p, m.Sched.CurrentStep())

	state := m.Rec.State()
	stateLabel := lipgloss.NewStyle().Foreground(m.stateColor(state)).Bold(true).Render(strings.ToUpper(state.String()))
	loop := "free"
	if bars := m.Rec.LoopLength(); bars > 0 {
		loop = fmt.Sprintf("%d bars", bars)
	}
	if d := m.Rec.LoopDuration(); d > 0 {
		loop += fmt.Sprintf(" (%.1fs)", d.Seconds())
	}
	layers := m.Rec.Layers()
	fgStyle := lipgloss.NewStyle().Foreground(m.Theme.FG())
	recLine := stateLabel + fgStyle.Render(fmt.Sprintf("  loop: %s  layers: ", loop)) +
		widgets.RenderLayers(m.Theme, len(layers), layerSlots)
	switch {
	case m.Rec.Finalizing():
		recLine += dimStyle.Render("  finalizing…")
	case state == recorder.Recording || state == recorder.Overdub:
		recLine += fmt.Sprintf("  events: %d", m.Rec.WorkingEvents())
	}

	progress := widgets.RenderProgress(m.Theme, m.Rec.Progress(), progressWidth, m.stateColor(state)) +
		dimStyle.Render(fmt.Sprintf(" %5.1fs", m.Rec.Elapsed().Seconds()))

	var helpView string
	if m.showHelp {
		helpView = widgets.RenderKeyHelp(append([]widgets.KeySection{
			widgets.Section("Transport", keys.FullHelp()[0]...),
			widgets.Section("Recorder", keys.FullHelp()[1]...),
			widgets.Section("Files", keys.FullHelp()[2]...),
		}, performSections()...)) + "\n\n" + m.legend()
	} else {
		helpView = m.help.ShortHelpView(keys.ShortHelp())
	}

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(grid)
	out.WriteString("\n\n")
	out.WriteString(recLine)
	out.WriteString("\n")
	out.WriteString(progress)
	out.WriteString("\n")
	if m.status != "" {
		out.WriteString(dimStyle.Render(m.status))
	}
	out.WriteString("\n\n")
	out.WriteString(helpView)

	return out.String()
}
