package theme

import (
	"strings"
	"testing"
)

func TestParseGPL(t *testing.T) {
	src := `GIMP Palette
Name: Test
Columns: 2
# comment
  0   0   0	black
255 128  10	orange
300   0   0	out of range
1 2
`
	p, err := ParseGPL(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Test" || len(p.Colors) != 2 || p.Colors[1] != (RGB{255, 128, 10}) {
		t.Errorf("parsed %+v", p)
	}
	if _, err := ParseGPL(strings.NewReader("GIMP Palette\n")); err == nil {
		t.Error("empty palette accepted")
	}
}

func TestLookup(t *testing.T) {
	p := &Palette{Colors: []RGB{{0, 0, 0}, {200, 100, 50}}}
	tests := []struct {
		norm float64
		want RGB
	}{
		{-1, RGB{0, 0, 0}},
		{0, RGB{0, 0, 0}},
		{0.5, RGB{100, 50, 25}},
		{1, RGB{200, 100, 50}},
		{2, RGB{200, 100, 50}},
	}
	for _, tt := range tests {
		if got := p.Lookup(tt.norm); got != tt.want {
			t.Errorf("Lookup(%v) = %v, want %v", tt.norm, got, tt.want)
		}
	}
	single := &Palette{Colors: []RGB{{1, 2, 3}}}
	if single.Lookup(0.5) != (RGB{1, 2, 3}) {
		t.Error("single-color palette")
	}
}

func TestNewDefaultsToPlasma(t *testing.T) {
	th := New(nil)
	if th.Palette != Plasma {
		t.Error("nil palette should use Plasma")
	}
	if Hex(RGB{255, 0, 16}) != "#ff0010" {
		t.Errorf("Hex = %s", Hex(RGB{255, 0, 16}))
	}
	if string(th.Accent()) == "" {
		t.Error("no accent color")
	}
}
