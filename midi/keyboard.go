package midi

import (
	"fmt"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// NoteEvent is sent when a note is played on a keyboard
type NoteEvent struct {
	Note     uint8
	Velocity uint8
	Channel  uint8
}

// Keyboard handles a standard MIDI keyboard (input only)
type Keyboard struct {
	id       string
	stopFunc func()
	noteChan chan NoteEvent
	once     sync.Once
}

// OpenKeyboard listens on the input port with the given name
func OpenKeyboard(portName string) (*Keyboard, error) {
	for _, in := range gomidi.GetInPorts() {
		if in.String() == portName {
			return NewKeyboard(portName, in)
		}
	}
	return nil, fmt.Errorf("no input port named %q", portName)
}

// NewKeyboard creates a keyboard reading from inPort
func NewKeyboard(id string, inPort drivers.In) (*Keyboard, error) {
	kb := &Keyboard{
		id:       id,
		noteChan: make(chan NoteEvent, 32),
	}

	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			kb.handle(msg)
		})
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		kb.stopFunc = stop
	}

	return kb, nil
}

// handle forwards note-ons; a full channel drops the note rather than
// blocking the driver callback
func (kb *Keyboard) handle(msg gomidi.Message) {
	var channel, note, velocity uint8
	if msg.GetNoteOn(&channel, &note, &velocity) && velocity > 0 {
		select {
		case kb.noteChan <- NoteEvent{Note: note, Velocity: velocity, Channel: channel}:
		default:
		}
	}
}

func (kb *Keyboard) ID() string {
	return kb.id
}

func (kb *Keyboard) NoteEvents() <-chan NoteEvent {
	return kb.noteChan
}

func (kb *Keyboard) Close() error {
	kb.once.Do(func() {
		if kb.stopFunc != nil {
			kb.stopFunc()
		}
		close(kb.noteChan)
	})
	return nil
}
