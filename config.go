package oriel

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the settings of a runnable oriel program. It is loaded from
// TOML; unknown keys are rejected.
//
//	title = "cubes"
//	debug = true
//
//	[window]
//	width = 1280
//	height = 720
//
//	[camera]
//	fov = 75
//
//	[vr]
//	enabled = true
//	script = "poses.json"
type Config struct {
	Title    string       `toml:"title"`
	Debug    bool         `toml:"debug"`
	LogLevel string       `toml:"log_level"`
	Window   WindowConfig `toml:"window"`
	Camera   CameraConfig `toml:"camera"`
	Render   RenderConfig `toml:"render"`
	VR       VRConfig     `toml:"vr"`
}

// WindowConfig sizes the output window.
type WindowConfig struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// CameraConfig sets up the default perspective camera.
type CameraConfig struct {
	Fov  float32 `toml:"fov"`
	Near float32 `toml:"near"`
	Far  float32 `toml:"far"`
}

// RenderConfig configures the backend.
type RenderConfig struct {
	ClearColor      [4]float32 `toml:"clear_color"`
	MaxTextureUnits int        `toml:"max_texture_units"`
	ShaderDir       string     `toml:"shader_dir"`
}

// VRConfig enables stereo rendering.
type VRConfig struct {
	Enabled bool `toml:"enabled"`
	// RunningStartBudgetMS bounds the compositor wait before a warning.
	RunningStartBudgetMS int `toml:"running_start_budget_ms"`
	// Script is a pose script replayed by ScriptedTracker when no runtime
	// is available.
	Script string `toml:"script"`
}

// DefaultConfig returns the settings used for keys missing from a file.
func DefaultConfig() Config {
	return Config{
		Title:    "oriel",
		LogLevel: "info",
		Window:   WindowConfig{Width: 960, Height: 540},
		Camera:   CameraConfig{Fov: DefaultFovY, Near: DefaultNear, Far: DefaultFar},
		Render: RenderConfig{
			ClearColor:      [4]float32{0.05, 0.05, 0.08, 1},
			MaxTextureUnits: DefaultMaxTextureUnits,
		},
		VR: VRConfig{RunningStartBudgetMS: int(DefaultMaxRunningStartWait / time.Millisecond)},
	}
}

// LoadConfig reads a TOML file over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load config %s: %w", path, ErrFileNotFound)
		}
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes TOML over DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var sme *toml.StrictMissingError
		if errors.As(err, &sme) {
			return Config{}, fmt.Errorf("parse config: %w\n%s", err, sme.String())
		}
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges that would otherwise fail later at runtime.
func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("config: window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	case c.Camera.Fov <= 0 || c.Camera.Fov >= 180:
		return fmt.Errorf("config: camera fov %v must be in (0, 180)", c.Camera.Fov)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("config: camera clip range [%v, %v] is invalid", c.Camera.Near, c.Camera.Far)
	case c.Render.MaxTextureUnits <= 0:
		return fmt.Errorf("config: max_texture_units %d must be positive", c.Render.MaxTextureUnits)
	case c.VR.RunningStartBudgetMS < 0:
		return fmt.Errorf("config: running_start_budget_ms %d must not be negative", c.VR.RunningStartBudgetMS)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel ("debug", "info", "warn", "error").
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: log_level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

// RunningStartBudget returns VR.RunningStartBudgetMS as a duration.
func (c Config) RunningStartBudget() time.Duration {
	return time.Duration(c.VR.RunningStartBudgetMS) * time.Millisecond
}

// ClearColor returns Render.ClearColor as a Color.
func (c Config) ClearColor() Color {
	cc := c.Render.ClearColor
	return Color{cc[0], cc[1], cc[2], cc[3]}
}

// NewMaterial creates an empty material for shader whose textures may use
// Render.MaxTextureUnits units.
func (c Config) NewMaterial(shader ShaderKey) *Material {
	return NewMaterial(shader, c.Render.MaxTextureUnits)
}

// NewCamera creates a camera covering the configured window.
func (c Config) NewCamera() *Camera {
	cam := NewCamera(Rect{Width: float64(c.Window.Width), Height: float64(c.Window.Height)})
	cam.FovY = c.Camera.Fov
	cam.Near = c.Camera.Near
	cam.Far = c.Camera.Far
	return cam
}
