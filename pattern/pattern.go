// Package pattern holds the static catalog of drum step patterns.
package pattern

import (
	"fmt"
	"strings"
)

// Voice identifies one drum sound in a pattern
type Voice int

const (
	Kick Voice = iota
	Snare
	HiHat
	Clap
	Rim
	NumVoices
)

var voiceNames = [NumVoices]string{"kick", "snare", "hihat", "clap", "rim"}

func (v Voice) String() string {
	if v < 0 || v >= NumVoices {
		return fmt.Sprintf("voice(%d)", int(v))
	}
	return voiceNames[v]
}

// Meter is a time signature, e.g. 3/4
type Meter struct {
	Beats int
	Unit  int
}

func (m Meter) String() string {
	return fmt.Sprintf("%d/%d", m.Beats, m.Unit)
}

// Pattern is an immutable step matrix. Every voice row has exactly Steps() entries.
type Pattern struct {
	ID    string
	Name  string
	Meter Meter

	steps  int
	matrix [NumVoices][]bool
}

// Steps returns the pattern length in sixteenth-note steps
func (p *Pattern) Steps() int {
	return p.steps
}

// BeatsPerBar is 3 for triple meters and 4 otherwise
func (p *Pattern) BeatsPerBar() int {
	if p.Meter.Beats == 3 {
		return 3
	}
	return 4
}

// Hit reports whether voice v sounds on step
func (p *Pattern) Hit(v Voice, step int) bool {
	if v < 0 || v >= NumVoices || step < 0 || step >= p.steps {
		return false
	}
	row := p.matrix[v]
	return row != nil && row[step]
}

// Voices returns the voices active on step, in voice order
func (p *Pattern) Voices(step int) []Voice {
	var out []Voice
	for v := Voice(0); v < NumVoices; v++ {
		if p.Hit(v, step) {
			out = append(out, v)
		}
	}
	return out
}

// String renders the pattern as one |x---| row per voice
func (p *Pattern) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s, %d steps)\n", p.Name, p.Meter, p.steps)
	for v := Voice(0); v < NumVoices; v++ {
		if p.matrix[v] == nil {
			continue
		}
		fmt.Fprintf(&b, "%-6s ", v)
		for i, on := range p.matrix[v] {
			if i%4 == 0 {
				b.WriteByte('|')
			}
			if on {
				b.WriteByte('x')
			} else {
				b.WriteByte('-')
			}
		}
		b.WriteString("|\n")
	}
	return b.String()
}

// BarDuration returns one bar in seconds: beats × 60/tempo
func BarDuration(beatsPerBar int, tempo float64) float64 {
	if tempo <= 0 {
		return 0
	}
	return float64(beatsPerBar) * 60.0 / tempo
}

// StepDuration returns one sixteenth note in seconds
func StepDuration(tempo float64) float64 {
	if tempo <= 0 {
		return 0
	}
	return 60.0 / tempo / 4.0
}

// parseRow reads "x..x" notation, ignoring bar separators and spaces
func parseRow(s string) []bool {
	var row []bool
	for _, c := range s {
		switch c {
		case 'x', 'X':
			row = append(row, true)
		case '-', '.':
			row = append(row, false)
		}
	}
	return row
}

// build validates a catalog literal; a malformed one is a programming error
func build(id, name string, meter Meter, steps int, rows map[Voice]string) *Pattern {
	p := &Pattern{ID: id, Name: name, Meter: meter, steps: steps}
	for v, s := range rows {
		row := parseRow(s)
		if len(row) != steps {
			panic(fmt.Sprintf("pattern %s: %s has %d steps, want %d", id, v, len(row), steps))
		}
		p.matrix[v] = row
	}
	return p
}
