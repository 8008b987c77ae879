package sequencer

import "go-loopstation/pattern"

// DrumKit maps pattern voices to MIDI notes
type DrumKit struct {
	Name string
	Keys [pattern.NumVoices]uint8
}

// Kits contains all available drum kit mappings (kick, snare, hihat, clap, rim)
var Kits = map[string]DrumKit{
	"gm": {
		Name: "General MIDI",
		Keys: [pattern.NumVoices]uint8{36, 38, 42, 39, 37},
	},
	"rd8": {
		Name: "Behringer RD-8",
		Keys: [pattern.NumVoices]uint8{36, 40, 42, 39, 37}, // RD-8 snare is 40, not 38
	},
	"tr8s": {
		Name: "Roland TR-8S",
		Keys: [pattern.NumVoices]uint8{36, 38, 42, 39, 37},
	},
	"er1": {
		Name: "Korg ER-1",
		Keys: [pattern.NumVoices]uint8{36, 38, 42, 39, 41}, // perc synth 4 stands in for rim
	},
}

// KitNames returns the list of available kit names
func KitNames() []string {
	return []string{"gm", "rd8", "tr8s", "er1"}
}

// GetKit returns a kit by name, defaulting to GM if not found
func GetKit(name string) DrumKit {
	if kit, ok := Kits[name]; ok {
		return kit
	}
	return Kits[DefaultKit]
}

// DefaultKit is the default kit name
const DefaultKit = "gm"
