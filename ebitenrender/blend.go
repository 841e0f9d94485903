package ebitenrender

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/oriel"
)

// rasterBlends holds the equation for each oriel.BlendMode. Mesh.Draw
// premultiplies vertex colors, so every equation expects premultiplied
// source alpha.
var rasterBlends = [...]ebiten.Blend{
	oriel.BlendNormal: ebiten.BlendSourceOver,
	oriel.BlendAdd:    ebiten.BlendLighter,
	// dst*src + dst*(1-srcA)
	oriel.BlendMultiply: addBlend(
		ebiten.BlendFactorDestinationColor, ebiten.BlendFactorOneMinusSourceAlpha,
		ebiten.BlendFactorDestinationAlpha, ebiten.BlendFactorOneMinusSourceAlpha,
	),
	// src + dst*(1-src)
	oriel.BlendScreen: addBlend(
		ebiten.BlendFactorOne, ebiten.BlendFactorOneMinusSourceColor,
		ebiten.BlendFactorOne, ebiten.BlendFactorOneMinusSourceAlpha,
	),
	oriel.BlendNone: ebiten.BlendCopy,
}

func addBlend(srcRGB, dstRGB, srcA, dstA ebiten.BlendFactor) ebiten.Blend {
	return ebiten.Blend{
		BlendFactorSourceRGB:        srcRGB,
		BlendFactorDestinationRGB:   dstRGB,
		BlendFactorSourceAlpha:      srcA,
		BlendFactorDestinationAlpha: dstA,
		BlendOperationRGB:           ebiten.BlendOperationAdd,
		BlendOperationAlpha:         ebiten.BlendOperationAdd,
	}
}

// stateBlend returns the blend equation selected by the Blend attribute of a
// flattened rasterizer state. Unknown modes draw source-over.
func stateBlend(st oriel.RasterizerState) ebiten.Blend {
	if b := st.Blend(); int(b) < len(rasterBlends) {
		return rasterBlends[b]
	}
	return ebiten.BlendSourceOver
}
