package ebitenrender

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/oriel"
)

// MaxTextureUnits is the number of images a Kage shader can sample.
const MaxTextureUnits = 4

var (
	errNoProgram    = errors.New("ebitenrender: no program bound")
	errNoTarget     = errors.New("ebitenrender: no render target")
	errForeignValue = errors.New("ebitenrender: value was not created by this package")
)

// Program is a compiled Kage shader.
type Program struct {
	key    oriel.ShaderKey
	shader *ebiten.Shader
}

// Key returns the shader key the program was compiled for.
func (p *Program) Key() oriel.ShaderKey { return p.key }

func (p *Program) Dispose() {
	if p.shader != nil {
		p.shader.Deallocate()
		p.shader = nil
	}
}

// Texture wraps an ebiten.Image.
type Texture struct {
	id  uint32
	img *ebiten.Image
}

var textureIDCounter uint32

// active is the Device that last bound a program. Meshes created with the
// package-level NewMesh draw through it.
var active *Device

// NewTexture wraps img.
func NewTexture(img *ebiten.Image) *Texture {
	textureIDCounter++
	return &Texture{id: textureIDCounter, img: img}
}

func (t *Texture) ID() uint32 { return t.id }
func (t *Texture) Width() int { return t.img.Bounds().Dx() }
func (t *Texture) Height() int { return t.img.Bounds().Dy() }

// Image returns the wrapped image.
func (t *Texture) Image() *ebiten.Image { return t.img }

// lightData is one parsed entry of the u_lights array.
type lightData struct {
	kind      oriel.LightKind
	color     mgl32.Vec3
	position  mgl32.Vec3
	direction mgl32.Vec3
	rng       float32
	cone      mgl32.Vec2
}

// Device implements oriel.Device on ebiten images. It also compiles Kage
// shaders (oriel.ShaderCompiler) and renders stereo eyes into offscreen
// images (oriel.EyeTargets).
type Device struct {
	screen   *ebiten.Image
	target   *ebiten.Image
	viewport image.Rectangle
	eyes     [2]*Texture
	clear    oriel.Color

	program  *Program
	uniforms map[string]any
	images   [MaxTextureUnits]*ebiten.Image
	state    oriel.RasterizerState

	model, view, projection mgl32.Mat4
	normal                  mgl32.Mat3
	ambient                 mgl32.Vec3
	lights                  [oriel.MaxLights]lightData
	lightCount              int

	drawCalls int
}

var (
	_ oriel.Device         = (*Device)(nil)
	_ oriel.ShaderCompiler = (*Device)(nil)
	_ oriel.EyeTargets     = (*Device)(nil)
	_ oriel.ViewportSetter = (*Device)(nil)
)

// NewDevice creates a device. Call SetTarget before rendering.
func NewDevice() *Device {
	return &Device{
		uniforms:   make(map[string]any),
		state:      oriel.DefaultRasterizerState,
		model:      mgl32.Ident4(),
		view:       mgl32.Ident4(),
		projection: mgl32.Ident4(),
		normal:     mgl32.Ident3(),
	}
}

// SetTarget directs draws to img (typically the screen).
func (d *Device) SetTarget(img *ebiten.Image) {
	d.screen = img
	d.target = img
	d.viewport = img.Bounds()
}

// SetClearColor sets the color eye images are cleared to.
func (d *Device) SetClearColor(c oriel.Color) {
	d.clear = c
}

// Target returns the image draws currently go to.
func (d *Device) Target() *ebiten.Image { return d.target }

// DrawCalls returns the number of draw calls issued since the last reset.
func (d *Device) DrawCalls() int { return d.drawCalls }

// ResetStats zeroes the draw call counter.
func (d *Device) ResetStats() { d.drawCalls = 0 }

// Compile builds a Kage program. Compile errors are returned as
// *oriel.ShaderError carrying the compiler output.
func (d *Device) Compile(key oriel.ShaderKey, source string) (oriel.Program, error) {
	s, err := ebiten.NewShader([]byte(source))
	if err != nil {
		return nil, &oriel.ShaderError{Key: key, Log: err.Error(), Err: err}
	}
	return &Program{key: key, shader: s}, nil
}

// Bind makes p current and forgets every uniform and texture of the
// previous program.
func (d *Device) Bind(p oriel.Program) error {
	prog, ok := p.(*Program)
	if !ok || prog.shader == nil {
		return fmt.Errorf("bind %T: %w", p, errForeignValue)
	}
	d.program = prog
	active = d
	clear(d.uniforms)
	d.images = [MaxTextureUnits]*ebiten.Image{}
	d.lightCount = 0
	d.ambient = mgl32.Vec3{}
	return nil
}

// SetTextureUnit binds tex to one of the shader's source images.
func (d *Device) SetTextureUnit(unit int, tex oriel.Texture) error {
	if unit < 0 || unit >= MaxTextureUnits {
		return fmt.Errorf("unit %d (max %d): %w", unit, MaxTextureUnits, oriel.ErrTextureUnitRange)
	}
	if tex == nil {
		d.images[unit] = nil
		return nil
	}
	t, ok := tex.(*Texture)
	if !ok {
		return fmt.Errorf("texture %T: %w", tex, errForeignValue)
	}
	d.images[unit] = t.img
	return nil
}

// SetUniform records a uniform. Matrices and lights named by oriel.Render
// feed the CPU vertex pipeline; everything else is handed to the Kage
// shader under its exported name ("u_checkerA" becomes "CheckerA").
func (d *Device) SetUniform(name string, value any) error {
	switch name {
	case oriel.UniformModel:
		return setMat4(&d.model, name, value)
	case oriel.UniformView:
		return setMat4(&d.view, name, value)
	case oriel.UniformProjection:
		return setMat4(&d.projection, name, value)
	case oriel.UniformNormal:
		m, ok := value.(mgl32.Mat3)
		if !ok {
			return fmt.Errorf("uniform %q: want mgl32.Mat3, got %T", name, value)
		}
		d.normal = m
		return nil
	case oriel.UniformLightCount:
		n, ok := value.(int32)
		if !ok {
			return fmt.Errorf("uniform %q: want int32, got %T", name, value)
		}
		d.lightCount = min(int(n), oriel.MaxLights)
		return nil
	case oriel.PropAmbient:
		if v, ok := value.(mgl32.Vec3); ok {
			d.ambient = v
		}
	}
	if strings.HasPrefix(name, "u_lights[") {
		return d.setLight(name, value)
	}
	v, err := kageValue(value)
	if err != nil {
		return fmt.Errorf("uniform %q: %w", name, err)
	}
	d.uniforms[kageName(name)] = v
	return nil
}

func setMat4(dst *mgl32.Mat4, name string, value any) error {
	m, ok := value.(mgl32.Mat4)
	if !ok {
		return fmt.Errorf("uniform %q: want mgl32.Mat4, got %T", name, value)
	}
	*dst = m
	return nil
}

// setLight parses "u_lights[i].field".
func (d *Device) setLight(name string, value any) error {
	rest := strings.TrimPrefix(name, "u_lights[")
	idxStr, field, ok := strings.Cut(rest, "].")
	if !ok {
		return fmt.Errorf("uniform %q: malformed light name", name)
	}
	i, err := strconv.Atoi(idxStr)
	if err != nil || i < 0 || i >= oriel.MaxLights {
		return fmt.Errorf("uniform %q: light index out of range", name)
	}
	l := &d.lights[i]
	switch v := value.(type) {
	case int32:
		if field == "kind" {
			l.kind = oriel.LightKind(v)
		}
	case float32:
		if field == "range" {
			l.rng = v
		}
	case mgl32.Vec2:
		if field == "cone" {
			l.cone = v
		}
	case mgl32.Vec3:
		switch field {
		case "color":
			l.color = v
		case "position":
			l.position = v
		case "direction":
			l.direction = v
		}
	}
	return nil
}

// kageName maps "u_fooBar" to the exported Kage identifier "FooBar".
func kageName(name string) string {
	name = strings.TrimPrefix(name, "u_")
	if name == "" {
		return name
	}
	r := []rune(name)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// kageValue converts an oriel uniform value to what ebiten accepts.
func kageValue(value any) (any, error) {
	switch v := value.(type) {
	case float32, int32:
		return v, nil
	case mgl32.Vec2:
		return v[:], nil
	case mgl32.Vec3:
		return v[:], nil
	case mgl32.Vec4:
		return v[:], nil
	case mgl32.Mat3:
		return v[:], nil
	case mgl32.Mat4:
		return v[:], nil
	default:
		return nil, fmt.Errorf("unsupported uniform type %T", value)
	}
}

// ApplyRasterizer records the state used by the next Mesh.Draw.
func (d *Device) ApplyRasterizer(state oriel.RasterizerState) error {
	d.state = state
	return nil
}

// SetViewport restricts drawing to r. An empty rectangle selects the whole
// target.
func (d *Device) SetViewport(r oriel.Rect) error {
	if d.target == nil {
		return errNoTarget
	}
	b := d.target.Bounds()
	if r.Width <= 0 || r.Height <= 0 {
		d.viewport = b
		return nil
	}
	d.viewport = image.Rect(int(r.X), int(r.Y), int(r.X+r.Width), int(r.Y+r.Height)).Intersect(b)
	return nil
}

// BeginEye directs draws to eye's offscreen image, sized to half the
// screen set with SetTarget, and clears it.
func (d *Device) BeginEye(eye oriel.Eye) (oriel.Texture, error) {
	if d.screen == nil {
		return nil, errNoTarget
	}
	b := d.screen.Bounds()
	w, h := max(b.Dx()/2, 1), max(b.Dy(), 1)
	t := d.eyes[eye]
	if t == nil || t.Width() != w || t.Height() != h {
		if t != nil {
			t.img.Deallocate()
		}
		t = NewTexture(ebiten.NewImage(w, h))
		d.eyes[eye] = t
	}
	t.img.Fill(toRGBA(d.clear))
	d.target = t.img
	d.viewport = t.img.Bounds()
	return t, nil
}

// Eye returns eye's offscreen image, or nil before the first BeginEye.
func (d *Device) Eye(eye oriel.Eye) *ebiten.Image {
	if t := d.eyes[eye]; t != nil {
		return t.img
	}
	return nil
}
