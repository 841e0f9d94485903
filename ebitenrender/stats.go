package ebitenrender

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// statsOverlay prints frame statistics in the top-left corner. The text is
// refreshed every half second.
type statsOverlay struct {
	img     *ebiten.Image
	elapsed float64
	text    string
}

func newStatsOverlay() *statsOverlay {
	// 180x64 fits five lines of debug font.
	return &statsOverlay{img: ebiten.NewImage(180, 64)}
}

func (o *statsOverlay) update(dt float64, g *Game) {
	o.elapsed += dt
	if o.elapsed < 0.5 && o.text != "" {
		return
	}
	o.elapsed = 0
	l := g.Loop
	o.text = fmt.Sprintf("FPS: %.1f\nTPS: %.1f\ndraws: %d\nwait: %s\noverruns: %d",
		ebiten.ActualFPS(), ebiten.ActualTPS(), g.Device.DrawCalls(), l.LastWait(), l.Overruns())
	o.img.Clear()
	o.img.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(o.img, o.text)
}

func (o *statsOverlay) draw(screen *ebiten.Image) {
	screen.DrawImage(o.img, nil)
}
