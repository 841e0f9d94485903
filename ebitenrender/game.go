package ebitenrender

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/oriel"
)

// Game runs an oriel FrameLoop inside ebiten. With a tracker each eye is
// rendered into its own half-width image and the two are shown side by
// side; without one every camera renders straight to the screen.
type Game struct {
	Loop   *oriel.FrameLoop
	Device *Device
	// OnUpdate, if set, runs once per tick before the frame is drawn.
	// Returning an error stops the game.
	OnUpdate func() error
	// BeforeFrame, if set, runs inside Draw before the frame loop steps.
	// Use it for offscreen passes such as RenderToTexture.
	BeforeFrame func(rc oriel.RenderContext) error
	// OnPick, if set, receives the node under a left click.
	OnPick func(oriel.PickResult)
	// ShowStats draws the frame statistics overlay. F3 toggles it.
	ShowStats bool
	// ScreenshotDir receives PNGs queued with Screenshot or F12.
	ScreenshotDir string

	title         string
	width, height int
	now           func() time.Time
	lastFrame     time.Time
	stats         *statsOverlay
	shots         []string
	injected      [][2]float64
	err           error
}

var _ ebiten.Game = (*Game)(nil)

// NewGame wires scene to a new Device using cfg. tracker may be nil; it is
// ignored unless cfg.VR.Enabled is set.
func NewGame(scene *oriel.Scene, cfg oriel.Config, tracker oriel.Tracker) *Game {
	if tracker != nil && !cfg.VR.Enabled {
		oriel.Logger().Info("vr disabled in config, rendering mono")
		tracker = nil
	}
	if cfg.Render.MaxTextureUnits > MaxTextureUnits {
		oriel.Logger().Warn("max_texture_units exceeds what Kage shaders can sample",
			"configured", cfg.Render.MaxTextureUnits, "supported", MaxTextureUnits)
	}
	dev := NewDevice()
	dev.SetClearColor(cfg.ClearColor())
	shaders := NewShaderRegistry(dev, cfg.Render.ShaderDir)
	loop := oriel.NewFrameLoop(scene, oriel.RenderContext{Device: dev, Shaders: shaders}, tracker)
	loop.MaxRunningStartWait = cfg.RunningStartBudget()
	if tracker != nil {
		loop.Targets = dev
	}
	scene.SetDebugMode(cfg.Debug)
	return &Game{
		Loop:      loop,
		Device:    dev,
		ShowStats: cfg.Debug,
		title:     cfg.Title,
		width:     cfg.Window.Width,
		height:    cfg.Window.Height,
		now:       time.Now,
	}
}

// Update implements ebiten.Game. Escape quits.
func (g *Game) Update() error {
	if g.err != nil {
		return g.err
	}
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	g.processInput()
	if g.OnUpdate != nil {
		return g.OnUpdate()
	}
	return nil
}

// Draw implements ebiten.Game. It steps the frame loop; a failure is
// reported by the next Update.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.err != nil {
		return
	}
	d := g.Device
	d.SetTarget(screen)
	screen.Fill(toRGBA(d.clear))
	d.ResetStats()

	if g.BeforeFrame != nil {
		if err := g.BeforeFrame(g.Loop.Render); err != nil {
			g.err = fmt.Errorf("before frame %d: %w", g.Loop.Frames(), err)
			oriel.Logger().Error("offscreen pass failed", slog.Any("err", err))
			return
		}
	}
	dt := g.frameDelta()
	if err := g.Loop.Step(dt); err != nil {
		g.err = fmt.Errorf("frame %d: %w", g.Loop.Frames(), err)
		oriel.Logger().Error("frame failed", slog.Any("err", err))
		return
	}
	if g.Loop.Tracker != nil {
		half := screen.Bounds().Dx() / 2
		for i, eye := range oriel.Eyes {
			img := d.Eye(eye)
			if img == nil {
				continue
			}
			op := &ebiten.DrawImageOptions{}
			op.GeoM.Translate(float64(i*half), 0)
			screen.DrawImage(img, op)
		}
	}
	g.flushScreenshots(screen)
	if g.ShowStats {
		if g.stats == nil {
			g.stats = newStatsOverlay()
		}
		g.stats.update(dt, g)
		g.stats.draw(screen)
	}
}

// maxFrameDelta caps dt after a stall such as a window drag.
const maxFrameDelta = 0.25

// frameDelta returns the wall time in seconds since the previous Draw, which
// runs at the display rate rather than the tick rate. The first frame
// assumes one tick.
func (g *Game) frameDelta() float64 {
	t := g.now()
	last := g.lastFrame
	g.lastFrame = t
	if last.IsZero() {
		return 1 / float64(ebiten.TPS())
	}
	return min(max(t.Sub(last).Seconds(), 0), maxFrameDelta)
}

// Layout implements ebiten.Game with a fixed logical size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}

// Close releases the compiled shaders.
func (g *Game) Close() {
	if g.Loop.Render.Shaders != nil {
		g.Loop.Render.Shaders.Close()
	}
}

// Run opens a window sized by cfg and runs scene until the window closes
// or a frame fails.
func Run(scene *oriel.Scene, cfg oriel.Config, tracker oriel.Tracker) error {
	g := NewGame(scene, cfg, tracker)
	defer g.Close()
	return RunGame(g)
}

// RunGame opens a window with the title and size g was created with and
// runs it.
func RunGame(g *Game) error {
	ebiten.SetWindowTitle(g.title)
	ebiten.SetWindowSize(g.width, g.height)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
