package midi

import (
	"fmt"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-loopstation/debug"
)

// Output sends channel messages to one MIDI port. Sends are fire-and-forget:
// failures are logged and dropped.
type Output struct {
	name string
	mu   sync.Mutex
	send func(gomidi.Message) error
}

// NewOutput wraps an already opened sender
func NewOutput(name string, send func(gomidi.Message) error) *Output {
	return &Output{name: name, send: send}
}

// OpenOutput opens the output port with the given name
func OpenOutput(portName string) (*Output, error) {
	for _, port := range gomidi.GetOutPorts() {
		if port.String() == portName {
			send, err := gomidi.SendTo(port)
			if err != nil {
				return nil, fmt.Errorf("open port %q: %w", portName, err)
			}
			return NewOutput(portName, send), nil
		}
	}
	return nil, fmt.Errorf("no output port named %q", portName)
}

// ListOutPorts returns available output port names
func ListOutPorts() []string {
	outs := gomidi.GetOutPorts()
	names := make([]string, len(outs))
	for i, out := range outs {
		names[i] = out.String()
	}
	return names
}

// ListInPorts returns available input port names
func ListInPorts() []string {
	ins := gomidi.GetInPorts()
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.String()
	}
	return names
}

// Name returns the port name
func (o *Output) Name() string {
	return o.name
}

func (o *Output) NoteOn(channel, note, velocity uint8) {
	o.write(gomidi.NoteOn(channel&0x0F, note&0x7F, velocity&0x7F))
}

func (o *Output) NoteOff(channel, note uint8) {
	o.write(gomidi.NoteOff(channel&0x0F, note&0x7F))
}

func (o *Output) write(msg gomidi.Message) {
	if o == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.send == nil {
		return
	}
	if err := o.send(msg); err != nil {
		debug.Log("midi", "send to %s failed: %v", o.name, err)
	}
}

// Close detaches the sender. The port itself belongs to the driver (see CloseDriver).
func (o *Output) Close() {
	o.mu.Lock()
	o.send = nil
	o.mu.Unlock()
}

// CloseDriver closes the registered MIDI driver
func CloseDriver() {
	gomidi.CloseDriver()
}
