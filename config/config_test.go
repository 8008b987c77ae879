package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("got %+v", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	cfg := DefaultConfig()
	cfg.Tempo = 97
	cfg.Pattern = "bossa"
	cfg.LoopBars = 4
	cfg.Metronome = true
	cfg.MIDI.OutPort = "IAC Driver Bus 1"
	cfg.MIDI.Kit = "tr8s"
	cfg.Audio.Channels = 1

	if err := cfg.SaveTo(path); err != nil {
		t.Fatal(err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Errorf("loaded %+v, want %+v", got, cfg)
	}
}

func TestLoadPartialAndInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	os.WriteFile(path, []byte(`{"tempo": 90, "volume": 7, "audio": {"channels": 5}}`), 0644)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Tempo != 90 || cfg.Pattern != "rock" || cfg.Volume != 0.8 || cfg.Audio.Channels != 2 || cfg.Audio.SampleRate != 44100 {
		t.Errorf("got %+v", cfg)
	}

	os.WriteFile(path, []byte(`{"tempo": `), 0644)
	if _, err := LoadFrom(path); err == nil {
		t.Error("truncated JSON accepted")
	}
}
