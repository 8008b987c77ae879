package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// MIDIConfig names the ports to open at startup
type MIDIConfig struct {
	OutPort string `json:"outPort,omitempty"`
	InPort  string `json:"inPort,omitempty"`
	Kit     string `json:"kit,omitempty"`
}

// AudioConfig sets the capture and playback format
type AudioConfig struct {
	SampleRate int  `json:"sampleRate,omitempty"`
	Channels   int  `json:"channels,omitempty"`
	NoInput    bool `json:"noInput,omitempty"` // events only, no input device
}

// Config is the main configuration structure
type Config struct {
	Tempo     int         `json:"tempo,omitempty"`
	Pattern   string      `json:"pattern,omitempty"`
	LoopBars  int         `json:"loopBars"`
	Metronome bool        `json:"metronome"`
	Volume    float64     `json:"volume,omitempty"`
	ExportDir string      `json:"exportDir,omitempty"`
	Debug     bool        `json:"debug,omitempty"`
	MIDI      MIDIConfig  `json:"midi,omitempty"`
	Audio     AudioConfig `json:"audio,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Tempo:     120,
		Pattern:   "rock",
		LoopBars:  0,
		Volume:    0.8,
		ExportDir: "~/.config/go-loopstation/exports",
		MIDI: MIDIConfig{
			Kit: "gm",
		},
		Audio: AudioConfig{
			SampleRate: 44100,
			Channels:   2,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-loopstation"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. Missing fields keep their defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.normalize()
	return cfg, nil
}

// normalize pulls out-of-range values back to defaults
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.Tempo <= 0 {
		c.Tempo = def.Tempo
	}
	if c.Pattern == "" {
		c.Pattern = def.Pattern
	}
	if c.LoopBars < 0 {
		c.LoopBars = 0
	}
	if c.Volume < 0 || c.Volume > 1 {
		c.Volume = def.Volume
	}
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = def.Audio.SampleRate
	}
	if c.Audio.Channels < 1 || c.Audio.Channels > 2 {
		c.Audio.Channels = def.Audio.Channels
	}
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
