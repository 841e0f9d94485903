package ebitenrender

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/phanxgames/oriel"
)

// processInput handles the built-in bindings: a left click picks through
// the main camera, F12 queues a screenshot and F3 toggles the stats overlay.
func (g *Game) processInput() {
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		g.Screenshot("f12")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		g.ShowStats = !g.ShowStats
	}
	clicks := g.injected
	g.injected = nil
	if g.OnPick == nil {
		return
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		clicks = append(clicks, [2]float64{float64(x), float64(y)})
	}
	for _, c := range clicks {
		if hit, ok := g.pickAt(c[0], c[1]); ok {
			g.OnPick(hit)
		}
	}
}

// InjectClick queues a synthetic left click at screen coordinates. It is
// handled on the next Update exactly like a real click.
func (g *Game) InjectClick(x, y float64) {
	g.injected = append(g.injected, [2]float64{x, y})
}

// pickAt picks with the main camera in monoscopic mode. In stereo the
// window shows two half-width eyes and the ray is cast through the eye
// under the cursor.
func (g *Game) pickAt(x, y float64) (oriel.PickResult, bool) {
	s := g.Loop.Scene
	cam := g.Loop.Camera
	if cam == nil {
		cam = s.MainCamera()
	}
	if cam == nil {
		return oriel.PickResult{}, false
	}
	if g.Loop.Tracker == nil {
		return s.Pick(cam, x, y)
	}
	half := float64(g.width) / 2
	eye := oriel.EyeLeft
	if x >= half {
		x -= half
		eye = oriel.EyeRight
	}
	view := oriel.EyeView(cam, eye, g.Loop.Tracker)
	origin, dir := view.Ray(x/half, y/float64(g.height))
	return s.PickRay(origin, dir)
}
