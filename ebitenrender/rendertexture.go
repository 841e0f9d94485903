package ebitenrender

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/oriel"
)

// NewRenderTexture creates an offscreen texture that can be drawn into with
// RenderToTexture and sampled by materials.
func NewRenderTexture(w, h int) *Texture {
	return NewTexture(ebiten.NewImage(w, h))
}

// Fill clears the texture to c.
func (t *Texture) Fill(c oriel.Color) {
	t.img.Fill(toRGBA(c))
}

// Dispose releases the underlying image. The texture must not be used
// afterwards.
func (t *Texture) Dispose() {
	if t.img != nil {
		t.img.Deallocate()
		t.img = nil
	}
}

// RenderToTexture renders scene through view into tex, cleared to clear.
// The previous target and viewport are restored afterwards. tex must not
// be bound by any material drawn in the same pass.
func (d *Device) RenderToTexture(rc oriel.RenderContext, scene *oriel.Scene, view oriel.View, tex *Texture, clear oriel.Color) error {
	if tex == nil || tex.img == nil {
		return fmt.Errorf("render to texture: %w", errNoTarget)
	}
	prevTarget, prevViewport := d.target, d.viewport
	defer func() {
		d.target, d.viewport = prevTarget, prevViewport
	}()

	tex.Fill(clear)
	d.target = tex.img
	d.viewport = tex.img.Bounds()
	view.Viewport = oriel.Rect{}
	if err := scene.Render(rc, view); err != nil {
		return fmt.Errorf("render to texture: %w", err)
	}
	return nil
}
