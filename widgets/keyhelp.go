package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}

// Section builds a KeySection from bubbles bindings, skipping disabled ones
func Section(title string, bindings ...key.Binding) KeySection {
	sec := KeySection{Title: title}
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		sec.Keys = append(sec.Keys, KeyBinding{Key: h.Key, Desc: h.Desc})
	}
	return sec
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}
