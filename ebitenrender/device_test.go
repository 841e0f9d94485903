package ebitenrender

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/oriel"
)

type foreignProgram struct{}

func (foreignProgram) Dispose() {}

type foreignTexture struct{}

func (foreignTexture) ID() uint32  { return 1 }
func (foreignTexture) Width() int  { return 1 }
func (foreignTexture) Height() int { return 1 }

func TestKageName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"u_color", "Color"},
		{"u_checkerA", "CheckerA"},
		{"u_uvScale", "UvScale"},
		{"Already", "Already"},
		{"u_", ""},
	}
	for _, tt := range tests {
		if got := kageName(tt.in); got != tt.want {
			t.Errorf("kageName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestKageValue(t *testing.T) {
	v, err := kageValue(mgl32.Vec3{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	s, ok := v.([]float32)
	if !ok || len(s) != 3 || s[2] != 3 {
		t.Errorf("Vec3 converted to %#v", v)
	}
	if v, _ := kageValue(float32(0.5)); v != float32(0.5) {
		t.Errorf("float32 converted to %#v", v)
	}
	if _, err := kageValue("nope"); err == nil {
		t.Error("string uniform should be rejected")
	}
}

func TestDeviceBindForeignProgram(t *testing.T) {
	d := NewDevice()
	if err := d.Bind(foreignProgram{}); !errors.Is(err, errForeignValue) {
		t.Errorf("err = %v, want errForeignValue", err)
	}
	if err := d.Bind(&Program{key: oriel.ShaderStandard}); !errors.Is(err, errForeignValue) {
		t.Errorf("disposed program: err = %v, want errForeignValue", err)
	}
}

func TestDeviceSetTextureUnit(t *testing.T) {
	d := NewDevice()
	img := ebiten.NewImage(4, 4)
	defer img.Deallocate()
	tex := NewTexture(img)

	if err := d.SetTextureUnit(1, tex); err != nil {
		t.Fatal(err)
	}
	if d.images[1] != img {
		t.Error("unit 1 should hold the image")
	}
	if err := d.SetTextureUnit(MaxTextureUnits, tex); !errors.Is(err, oriel.ErrTextureUnitRange) {
		t.Errorf("err = %v, want ErrTextureUnitRange", err)
	}
	if err := d.SetTextureUnit(-1, tex); !errors.Is(err, oriel.ErrTextureUnitRange) {
		t.Errorf("err = %v, want ErrTextureUnitRange", err)
	}
	if err := d.SetTextureUnit(0, foreignTexture{}); !errors.Is(err, errForeignValue) {
		t.Errorf("err = %v, want errForeignValue", err)
	}
	if err := d.SetTextureUnit(1, nil); err != nil || d.images[1] != nil {
		t.Errorf("nil texture should clear the unit, err = %v", err)
	}
}

func TestDeviceSetUniformRouting(t *testing.T) {
	d := NewDevice()
	model := mgl32.Translate3D(1, 2, 3)
	if err := d.SetUniform(oriel.UniformModel, model); err != nil {
		t.Fatal(err)
	}
	if d.model != model {
		t.Error("model matrix not recorded")
	}
	if _, ok := d.uniforms["Model"]; ok {
		t.Error("matrices should not reach the Kage uniforms")
	}
	if err := d.SetUniform(oriel.UniformView, mgl32.Vec3{}); err == nil {
		t.Error("view with wrong type should fail")
	}

	if err := d.SetUniform(oriel.PropColor, mgl32.Vec4{1, 0, 0, 1}); err != nil {
		t.Fatal(err)
	}
	if c, ok := d.uniforms["Color"].([]float32); !ok || len(c) != 4 || c[0] != 1 {
		t.Errorf("Color uniform = %#v", d.uniforms["Color"])
	}

	if err := d.SetUniform(oriel.UniformLightCount, int32(99)); err != nil {
		t.Fatal(err)
	}
	if d.lightCount != oriel.MaxLights {
		t.Errorf("lightCount = %d, want clamp to %d", d.lightCount, oriel.MaxLights)
	}
}

func TestDeviceSetLight(t *testing.T) {
	d := NewDevice()
	set := func(name string, v any) {
		t.Helper()
		if err := d.SetUniform(name, v); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
	set("u_lights[2].kind", int32(oriel.LightSpot))
	set("u_lights[2].color", mgl32.Vec3{1, 0.5, 0})
	set("u_lights[2].position", mgl32.Vec3{0, 4, 0})
	set("u_lights[2].direction", mgl32.Vec3{0, -1, 0})
	set("u_lights[2].range", float32(10))
	set("u_lights[2].cone", mgl32.Vec2{0.9, 0.8})

	l := d.lights[2]
	if l.kind != oriel.LightSpot || l.rng != 10 || l.cone[1] != 0.8 {
		t.Errorf("light = %+v", l)
	}
	if l.position != (mgl32.Vec3{0, 4, 0}) || l.direction != (mgl32.Vec3{0, -1, 0}) {
		t.Errorf("light vectors = %v %v", l.position, l.direction)
	}

	if err := d.SetUniform("u_lights[8].kind", int32(0)); err == nil {
		t.Error("index out of range should fail")
	}
	if err := d.SetUniform("u_lights[x", int32(0)); err == nil {
		t.Error("malformed name should fail")
	}
}

func TestDeviceBindResetsState(t *testing.T) {
	d := NewDevice()
	d.uniforms["Color"] = []float32{1, 1, 1, 1}
	d.lightCount = 3
	d.ambient = mgl32.Vec3{0.2, 0.2, 0.2}
	if err := d.Bind(&Program{key: oriel.ShaderUV, shader: &ebiten.Shader{}}); err != nil {
		t.Fatal(err)
	}
	if len(d.uniforms) != 0 || d.lightCount != 0 || d.ambient != (mgl32.Vec3{}) {
		t.Errorf("state survived Bind: uniforms=%v lights=%d ambient=%v", d.uniforms, d.lightCount, d.ambient)
	}
}

func TestDeviceBeginEye(t *testing.T) {
	d := NewDevice()
	if _, err := d.BeginEye(oriel.EyeLeft); !errors.Is(err, errNoTarget) {
		t.Errorf("err = %v, want errNoTarget", err)
	}

	screen := ebiten.NewImage(200, 100)
	defer screen.Deallocate()
	d.SetTarget(screen)

	tex, err := d.BeginEye(oriel.EyeRight)
	if err != nil {
		t.Fatal(err)
	}
	if tex.Width() != 100 || tex.Height() != 100 {
		t.Errorf("eye size = %dx%d, want 100x100", tex.Width(), tex.Height())
	}
	if d.Target() != d.Eye(oriel.EyeRight) {
		t.Error("BeginEye should redirect the target")
	}
	if d.Eye(oriel.EyeLeft) != nil {
		t.Error("left eye should not exist yet")
	}

	again, err := d.BeginEye(oriel.EyeRight)
	if err != nil {
		t.Fatal(err)
	}
	if again.ID() != tex.ID() {
		t.Error("eye image should be reused while the size is unchanged")
	}
}

func TestDeviceSetViewport(t *testing.T) {
	d := NewDevice()
	screen := ebiten.NewImage(100, 100)
	defer screen.Deallocate()
	d.SetTarget(screen)

	if err := d.SetViewport(oriel.Rect{X: 50, Y: 0, Width: 100, Height: 40}); err != nil {
		t.Fatal(err)
	}
	if d.viewport.Dx() != 50 || d.viewport.Dy() != 40 {
		t.Errorf("viewport = %v, want clipped to 50x40", d.viewport)
	}
	if err := d.SetViewport(oriel.Rect{}); err != nil {
		t.Fatal(err)
	}
	if d.viewport != screen.Bounds() {
		t.Errorf("empty rect should select the target, got %v", d.viewport)
	}
}
