package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-loopstation/pattern"
	"go-loopstation/theme"
)

// RenderPad renders a single colored pad
func RenderPad(color theme.RGB, symbol rune) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Hex(color)))
	return style.Render(string(symbol))
}

// RenderLayers renders one solid pad per layer and empty pads up to slots
func RenderLayers(th *theme.Theme, layers, slots int) string {
	if slots < layers {
		slots = layers
	}
	var out strings.Builder
	for i := 0; i < slots; i++ {
		if i > 0 {
			out.WriteString(" ")
		}
		if i < layers {
			out.WriteString(RenderPad(th.RGB(float64(i+1)/float64(slots+1)), th.Symbols.Solid))
		} else {
			out.WriteString(RenderPad(th.RGB(theme.RoleMuted), th.Symbols.Empty))
		}
	}
	return out.String()
}

// VoiceColor gives each drum voice its own palette position
func VoiceColor(th *theme.Theme, v pattern.Voice) theme.RGB {
	return th.RGB(0.35 + 0.65*float64(v)/float64(pattern.NumVoices-1))
}

// RenderStepGrid renders one row per voice with the playhead column
// highlighted; current < 0 hides the playhead. Beats are separated by a space.
func RenderStepGrid(th *theme.Theme, p *pattern.Pattern, current int) string {
	muted := lipgloss.NewStyle().Foreground(th.Muted())
	head := lipgloss.NewStyle().Foreground(th.Cursor()).Bold(true)

	var lines []string
	for v := pattern.Voice(0); v < pattern.NumVoices; v++ {
		var line strings.Builder
		line.WriteString(fmt.Sprintf("%-6s ", v))
		for step := 0; step < p.Steps(); step++ {
			if step > 0 && step%4 == 0 {
				line.WriteString(" ")
			}
			hit := p.Hit(v, step)
			switch {
			case step == current && hit:
				line.WriteString(head.Render(string(th.Symbols.StepHitNow)))
			case step == current:
				line.WriteString(head.Render(string(th.Symbols.StepPlayhead)))
			case hit:
				line.WriteString(RenderPad(VoiceColor(th, v), th.Symbols.StepActive))
			default:
				line.WriteString(muted.Render(string(th.Symbols.StepEmpty)))
			}
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// RenderProgress renders a bar width cells wide filled to frac (0-1)
func RenderProgress(th *theme.Theme, frac float64, width int, color lipgloss.Color) string {
	if width <= 0 {
		return ""
	}
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	full := int(frac * float64(width))
	filled := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat(string(th.Symbols.BarFull), full))
	empty := lipgloss.NewStyle().Foreground(th.Muted()).Render(strings.Repeat(string(th.Symbols.BarEmpty), width-full))
	return filled + empty
}

// RenderLegendItem renders a single legend item: "■ Name - description"
func RenderLegendItem(color theme.RGB, symbol rune, name, desc string) string {
	return fmt.Sprintf("  %s %s - %s", RenderPad(color, symbol), name, desc)
}
