package ebitenrender

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/oriel"
)

func TestStateBlend(t *testing.T) {
	tests := []struct {
		mode oriel.BlendMode
		want ebiten.Blend
	}{
		{oriel.BlendNormal, ebiten.BlendSourceOver},
		{oriel.BlendAdd, ebiten.BlendLighter},
		{oriel.BlendNone, ebiten.BlendCopy},
		{oriel.BlendMode(99), ebiten.BlendSourceOver},
	}
	for _, tt := range tests {
		var st oriel.RasterizerState
		st.SetBlend(tt.mode)
		if got := stateBlend(st); got != tt.want {
			t.Errorf("stateBlend(%d) = %+v, want %+v", tt.mode, got, tt.want)
		}
	}
}

func TestStateBlendFollowsFlattenedState(t *testing.T) {
	var parent, child oriel.RasterizerState
	parent.SetBlend(oriel.BlendMultiply).SetImportant(oriel.AttrBlend, true)
	child.SetBlend(oriel.BlendAdd)

	b := stateBlend(oriel.Flatten(parent, child))
	if b.BlendFactorSourceRGB != ebiten.BlendFactorDestinationColor {
		t.Errorf("source factor = %v, want destination color", b.BlendFactorSourceRGB)
	}
	if b.BlendOperationRGB != ebiten.BlendOperationAdd {
		t.Errorf("operation = %v, want add", b.BlendOperationRGB)
	}
}

func TestStateBlendScreen(t *testing.T) {
	var st oriel.RasterizerState
	st.SetBlend(oriel.BlendScreen)
	b := stateBlend(st)
	if b.BlendFactorSourceRGB != ebiten.BlendFactorOne || b.BlendFactorDestinationRGB != ebiten.BlendFactorOneMinusSourceColor {
		t.Errorf("screen = %+v", b)
	}
}
