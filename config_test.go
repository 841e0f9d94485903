package oriel

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultMaxRunningStartWait, cfg.RunningStartBudget())
	assert.Equal(t, float32(DefaultFovY), cfg.Camera.Fov)
}

func TestParseConfigOverridesDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
title = "cubes"
debug = true
log_level = "debug"

[window]
width = 1280

[camera]
fov = 75

[render]
clear_color = [1, 0, 0, 1]

[vr]
enabled = true
running_start_budget_ms = 11
script = "poses.json"
`))
	require.NoError(t, err)

	assert.Equal(t, "cubes", cfg.Title)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, 540, cfg.Window.Height, "unset keys keep their defaults")
	assert.Equal(t, float32(75), cfg.Camera.Fov)
	assert.Equal(t, float32(DefaultNear), cfg.Camera.Near)
	assert.Equal(t, Color{1, 0, 0, 1}, cfg.ClearColor())
	assert.True(t, cfg.VR.Enabled)
	assert.Equal(t, 11*time.Millisecond, cfg.RunningStartBudget())
	assert.Equal(t, "poses.json", cfg.VR.Script)

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestParseConfigRejectsUnknownKeys(t *testing.T) {
	_, err := ParseConfig([]byte(`
[window]
widht = 100
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "widht")
	var sme *toml.StrictMissingError
	require.ErrorAs(t, err, &sme)
	assert.Len(t, sme.Errors, 1)
}

func TestParseConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		toml string
		want string
	}{
		{"zero width", "[window]\nwidth = 0", "window size"},
		{"fov too wide", "[camera]\nfov = 180", "fov"},
		{"far before near", "[camera]\nnear = 10\nfar = 5", "clip range"},
		{"no texture units", "[render]\nmax_texture_units = 0", "max_texture_units"},
		{"negative budget", "[vr]\nrunning_start_budget_ms = -1", "running_start_budget_ms"},
		{"bad level", `log_level = "loud"`, "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.toml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "oriel.toml")
	require.NoError(t, os.WriteFile(path, []byte("title = \"demo\"\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Title)

	_, err = LoadConfig(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestConfigNewCamera(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Window.Width, cfg.Window.Height = 800, 400
	cfg.Camera.Fov = 45
	cam := cfg.NewCamera()

	assert.Equal(t, float32(45), cam.FovY)
	assert.Equal(t, float32(2), cam.AspectRatio())
	assert.Equal(t, Rect{Width: 800, Height: 400}, cam.Viewport)
}

func TestConfigNewMaterial(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Render.MaxTextureUnits = 2
	m := cfg.NewMaterial(ShaderUV)

	assert.Equal(t, ShaderUV, m.Shader)
	assert.Equal(t, 2, m.Properties.MaxTextureUnits())
	require.NoError(t, m.Properties.SetTexture("a", fakeTexture{1}))
	require.NoError(t, m.Properties.SetTexture("b", fakeTexture{2}))
	assert.ErrorIs(t, m.Properties.SetTexture("c", fakeTexture{3}), ErrTextureUnitsExhausted)
}
