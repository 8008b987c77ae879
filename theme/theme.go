package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	Solid rune // ■ layer present
	Empty rune // □ free slot

	// Step grid
	StepEmpty    rune // · rest
	StepActive   rune // ● hit
	StepPlayhead rune // ▶ playhead on a rest
	StepHitNow   rune // ◉ playhead on a hit

	// Progress bar
	BarFull  rune
	BarEmpty rune
}

// New builds a theme on palette; nil uses Plasma
func New(palette *Palette) *Theme {
	if palette == nil {
		palette = Plasma
	}
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			Solid: '■',
			Empty: '□',

			StepEmpty:    '·',
			StepActive:   '●',
			StepPlayhead: '▶',
			StepHitNow:   '◉',

			BarFull:  '█',
			BarEmpty: '░',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleMuted   = 0.2
	RoleFG      = 0.45
	RoleAccent  = 0.5
	RoleCursor  = 0.6
	RoleActive  = 0.65
	RoleWarning = 0.8
	RoleSuccess = 1.0
)

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Active() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleActive))
}

func (t *Theme) Cursor() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleCursor))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Success() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSuccess))
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

// RGB returns raw RGB for any normalized value
func (t *Theme) RGB(norm float64) RGB {
	return t.Palette.Lookup(norm)
}

// Hex formats c as #rrggbb
func Hex(c RGB) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(Hex(c))
}
