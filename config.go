package rhachis

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/gekko3d/rhachis/graphics"
	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Window   WindowConfig   `toml:"window"`
	Graphics GraphicsConfig `toml:"graphics"`
	Audio    AudioConfig    `toml:"audio"`
	Log      LogConfig      `toml:"log"`
}

type WindowConfig struct {
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	Title     string `toml:"title"`
	Resizable bool   `toml:"resizable"`
}

type GraphicsConfig struct {
	// fifo, mailbox or immediate. Ignored when VSync is set.
	PresentMode     string     `toml:"present_mode"`
	PowerPreference string     `toml:"power_preference"`
	ClearColor      [4]float64 `toml:"clear_color"`
	MaxLostFrames   int        `toml:"max_lost_frames"`
	// ShaderDir enables hot reload of SimpleRenderer shaders.
	ShaderDir string `toml:"shader_dir"`
	VSync     bool   `toml:"vsync"`
}

type AudioConfig struct {
	Enabled    bool `toml:"enabled"`
	SampleRate int  `toml:"sample_rate"`
	BufferMs   int  `toml:"buffer_ms"`
	// Volume is a linear gain; 1 leaves samples unchanged.
	Volume float64 `toml:"volume"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Prefix string `toml:"prefix"`
}

func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Width:     1280,
			Height:    720,
			Title:     "Rhachis",
			Resizable: true,
		},
		Graphics: GraphicsConfig{
			PresentMode:     "fifo",
			PowerPreference: "high_performance",
			ClearColor:      [4]float64{0, 0, 0, 1},
			MaxLostFrames:   graphics.DefaultMaxLostFrames,
			VSync:           true,
		},
		Audio: AudioConfig{
			Enabled:    true,
			SampleRate: 44100,
			BufferMs:   100,
			Volume:     1,
		},
		Log: LogConfig{
			Level:  "info",
			Prefix: "rhachis",
		},
	}
}

// ParseConfig reads TOML on top of DefaultConfig. Unknown keys are errors.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return ParseConfig(data)
}

// LoadConfigOrDefault falls back to DefaultConfig when path does not exist.
func LoadConfigOrDefault(path string) (Config, error) {
	cfg, err := LoadConfig(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	if _, err := graphics.ParsePresentMode(c.Graphics.PresentMode); err != nil {
		errs = append(errs, err)
	}
	if _, err := graphics.ParsePowerPreference(c.Graphics.PowerPreference); err != nil {
		errs = append(errs, err)
	}
	for i, v := range c.Graphics.ClearColor {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("clear_color[%d] = %v is outside [0, 1]", i, v))
		}
	}
	if c.Graphics.MaxLostFrames < 1 {
		errs = append(errs, fmt.Errorf("max_lost_frames must be at least 1, got %d", c.Graphics.MaxLostFrames))
	}
	if c.Audio.Enabled {
		if c.Audio.SampleRate <= 0 {
			errs = append(errs, fmt.Errorf("audio sample_rate must be positive, got %d", c.Audio.SampleRate))
		}
		if c.Audio.BufferMs <= 0 {
			errs = append(errs, fmt.Errorf("audio buffer_ms must be positive, got %d", c.Audio.BufferMs))
		}
		if c.Audio.Volume < 0 {
			errs = append(errs, fmt.Errorf("audio volume must not be negative, got %v", c.Audio.Volume))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// presentMode resolves the configured mode, with VSync forcing fifo.
func (c GraphicsConfig) presentMode() graphics.PresentMode {
	if c.VSync {
		return graphics.PresentModeFifo
	}
	mode, err := graphics.ParsePresentMode(c.PresentMode)
	if err != nil {
		return graphics.PresentModeFifo
	}
	return mode
}

func (c GraphicsConfig) powerPreference() graphics.PowerPreference {
	pref, err := graphics.ParsePowerPreference(c.PowerPreference)
	if err != nil {
		return graphics.PowerHighPerformance
	}
	return pref
}

func (c GraphicsConfig) clearColor() graphics.Color {
	return graphics.Color{R: c.ClearColor[0], G: c.ClearColor[1], B: c.ClearColor[2], A: c.ClearColor[3]}
}
