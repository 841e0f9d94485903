package oriel

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Well-known property names filled by the material builders.
const (
	PropColor       = "u_color"
	PropAmbient     = "u_ambient"
	PropSpecular    = "u_specular"
	PropShininess   = "u_shininess"
	PropAlbedoMap   = "u_albedo"
	PropUVScale     = "u_uvScale"
	PropCheckerA    = "u_checkerA"
	PropCheckerB    = "u_checkerB"
	PropCheckerSize = "u_checkerSize"
)

// Hit describes a surface point handed to a ShadeFunc.
type Hit struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

// ShadeFunc computes a surface color for ray-style shading.
type ShadeFunc func(h Hit) Color

// Material pairs a shader with the properties pushed to it. Shade is an
// optional software shading capability carried next to the raster state.
type Material struct {
	Shader     ShaderKey
	Properties Properties
	Shade      ShadeFunc
}

// NewMaterial creates an empty material for shader. maxUnits bounds its
// texture units (<= 0 selects DefaultMaxTextureUnits).
func NewMaterial(shader ShaderKey, maxUnits int) *Material {
	return &Material{Shader: shader, Properties: *NewProperties(maxUnits)}
}

// Use binds the material's program and pushes every property.
func (m *Material) Use(binder ShaderBinder, shaders *ShaderRegistry) error {
	prog, err := shaders.Program(m.Shader)
	if err != nil {
		return err
	}
	if err := binder.Bind(prog); err != nil {
		return fmt.Errorf("bind %q: %w", m.Shader, err)
	}
	return m.Properties.Push(binder)
}

// StandardMaterial builds a lit material with a base color.
func StandardMaterial(color Color) *Material {
	m := NewMaterial(ShaderStandard, 0)
	m.Properties.SetColor(PropColor, color)
	m.Properties.SetVec3(PropAmbient, mgl32.Vec3{0.1, 0.1, 0.1})
	m.Properties.SetVec3(PropSpecular, mgl32.Vec3{1, 1, 1})
	m.Properties.SetFloat(PropShininess, 32)
	c := color
	m.Shade = func(h Hit) Color { return c }
	return m
}

// UVMaterial builds an unlit textured material. tex may be nil, in which
// case the shader shows the UV coordinates as colors.
func UVMaterial(tex Texture) (*Material, error) {
	m := NewMaterial(ShaderUV, 0)
	m.Properties.SetVec2(PropUVScale, mgl32.Vec2{1, 1})
	if tex != nil {
		if err := m.Properties.SetTexture(PropAlbedoMap, tex); err != nil {
			return nil, err
		}
	}
	m.Shade = func(h Hit) Color { return Color{h.UV[0], h.UV[1], 0, 1} }
	return m, nil
}

// CheckerboardMaterial builds an unlit two-color checkerboard with squares
// of the given size in UV units.
func CheckerboardMaterial(a, b Color, size float32) *Material {
	if size <= 0 {
		size = 0.125
	}
	m := NewMaterial(ShaderCheckerboard, 0)
	m.Properties.SetColor(PropCheckerA, a)
	m.Properties.SetColor(PropCheckerB, b)
	m.Properties.SetFloat(PropCheckerSize, size)
	m.Shade = func(h Hit) Color { return checker(h.UV, a, b, size) }
	return m
}

func checker(uv mgl32.Vec2, a, b Color, size float32) Color {
	u := int(math32.Floor(uv[0] / size))
	v := int(math32.Floor(uv[1] / size))
	if (u+v)&1 == 0 {
		return a
	}
	return b
}
