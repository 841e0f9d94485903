package oriel

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// PropertyType tags the value held by a Property.
type PropertyType uint8

const (
	PropFloat PropertyType = iota + 1
	PropInt
	PropVec2
	PropVec3
	PropVec4
	PropMat3
	PropMat4
	PropTexture
)

func (t PropertyType) String() string {
	switch t {
	case PropFloat:
		return "float"
	case PropInt:
		return "int"
	case PropVec2:
		return "vec2"
	case PropVec3:
		return "vec3"
	case PropVec4:
		return "vec4"
	case PropMat3:
		return "mat3"
	case PropMat4:
		return "mat4"
	case PropTexture:
		return "texture"
	default:
		return "invalid"
	}
}

// DefaultMaxTextureUnits bounds texture unit assignment when a property bag
// is created without an explicit limit.
const DefaultMaxTextureUnits = 16

// Property is a typed value in a property bag.
type Property struct {
	Type    PropertyType
	data    [16]float32
	integer int32
	texture Texture
	unit    int
	pinned  bool
}

// Float returns the value of a PropFloat property.
func (p Property) Float() float32 { return p.data[0] }

// Int returns the value of a PropInt property.
func (p Property) Int() int32 { return p.integer }

// Vec2 returns the value of a PropVec2 property.
func (p Property) Vec2() mgl32.Vec2 { return mgl32.Vec2{p.data[0], p.data[1]} }

// Vec3 returns the value of a PropVec3 property.
func (p Property) Vec3() mgl32.Vec3 { return mgl32.Vec3{p.data[0], p.data[1], p.data[2]} }

// Vec4 returns the value of a PropVec4 property.
func (p Property) Vec4() mgl32.Vec4 { return mgl32.Vec4{p.data[0], p.data[1], p.data[2], p.data[3]} }

// Mat3 returns the value of a PropMat3 property.
func (p Property) Mat3() mgl32.Mat3 {
	var m mgl32.Mat3
	copy(m[:], p.data[:9])
	return m
}

// Mat4 returns the value of a PropMat4 property.
func (p Property) Mat4() mgl32.Mat4 { return mgl32.Mat4(p.data) }

// Texture returns the texture and unit of a PropTexture property.
func (p Property) Texture() (Texture, int) { return p.texture, p.unit }

// Value returns the property as the Go value handed to ShaderBinder.SetUniform:
// float32, int32, mgl32.Vec2/Vec3/Vec4 or mgl32.Mat3/Mat4. Textures return
// their unit as int32.
func (p Property) Value() any {
	switch p.Type {
	case PropFloat:
		return p.Float()
	case PropInt:
		return p.integer
	case PropVec2:
		return p.Vec2()
	case PropVec3:
		return p.Vec3()
	case PropVec4:
		return p.Vec4()
	case PropMat3:
		return p.Mat3()
	case PropMat4:
		return p.Mat4()
	case PropTexture:
		return int32(p.unit)
	default:
		return nil
	}
}

// Properties is a bag of uniquely named, typed shader properties. Names keep
// their insertion order so pushes are deterministic. Texture properties each
// hold a texture unit out of a finite pool.
type Properties struct {
	index    map[string]int
	names    []string
	props    []Property
	units    []string // unit -> owning property name ("" = free)
	maxUnits int
}

// NewProperties creates a bag whose textures may use units [0, maxUnits).
// maxUnits <= 0 selects DefaultMaxTextureUnits.
func NewProperties(maxUnits int) *Properties {
	if maxUnits <= 0 {
		maxUnits = DefaultMaxTextureUnits
	}
	return &Properties{
		index:    make(map[string]int),
		units:    make([]string, maxUnits),
		maxUnits: maxUnits,
	}
}

func (p *Properties) lazyInit() {
	if p.index == nil {
		*p = *NewProperties(0)
	}
}

// Len returns the number of properties.
func (p *Properties) Len() int { return len(p.props) }

// MaxTextureUnits returns the size of the texture unit pool.
func (p *Properties) MaxTextureUnits() int {
	p.lazyInit()
	return p.maxUnits
}

// Get returns the property named name.
func (p *Properties) Get(name string) (Property, bool) {
	i, ok := p.index[name]
	if !ok {
		return Property{}, false
	}
	return p.props[i], true
}

// Names returns the property names in insertion order. The returned slice
// MUST NOT be mutated.
func (p *Properties) Names() []string { return p.names }

// Each calls fn for every property in insertion order.
func (p *Properties) Each(fn func(name string, prop Property)) {
	for i, name := range p.names {
		fn(name, p.props[i])
	}
}

// put overwrites or inserts a non-texture property, releasing the unit held
// by a texture previously stored under the same name.
func (p *Properties) put(name string, prop Property) {
	p.lazyInit()
	if i, ok := p.index[name]; ok {
		p.release(p.props[i])
		p.props[i] = prop
		return
	}
	p.index[name] = len(p.props)
	p.names = append(p.names, name)
	p.props = append(p.props, prop)
}

func (p *Properties) release(prop Property) {
	if prop.Type == PropTexture && prop.unit >= 0 && prop.unit < len(p.units) {
		p.units[prop.unit] = ""
	}
}

// SetFloat sets a float property.
func (p *Properties) SetFloat(name string, v float32) {
	prop := Property{Type: PropFloat}
	prop.data[0] = v
	p.put(name, prop)
}

// SetInt sets an int property.
func (p *Properties) SetInt(name string, v int32) {
	p.put(name, Property{Type: PropInt, integer: v})
}

// SetVec2 sets a vec2 property.
func (p *Properties) SetVec2(name string, v mgl32.Vec2) {
	prop := Property{Type: PropVec2}
	copy(prop.data[:], v[:])
	p.put(name, prop)
}

// SetVec3 sets a vec3 property.
func (p *Properties) SetVec3(name string, v mgl32.Vec3) {
	prop := Property{Type: PropVec3}
	copy(prop.data[:], v[:])
	p.put(name, prop)
}

// SetVec4 sets a vec4 property.
func (p *Properties) SetVec4(name string, v mgl32.Vec4) {
	prop := Property{Type: PropVec4}
	copy(prop.data[:], v[:])
	p.put(name, prop)
}

// SetColor sets a vec4 property from a Color.
func (p *Properties) SetColor(name string, c Color) {
	p.SetVec4(name, c.Vec4())
}

// SetMat3 sets a mat3 property.
func (p *Properties) SetMat3(name string, m mgl32.Mat3) {
	prop := Property{Type: PropMat3}
	copy(prop.data[:], m[:])
	p.put(name, prop)
}

// SetMat4 sets a mat4 property.
func (p *Properties) SetMat4(name string, m mgl32.Mat4) {
	p.put(name, Property{Type: PropMat4, data: [16]float32(m)})
}

// SetTexture binds tex to name on the lowest free texture unit. Rebinding a
// name that already holds an unpinned unit keeps that unit. It returns
// ErrTextureUnitsExhausted when every unit is taken.
func (p *Properties) SetTexture(name string, tex Texture) error {
	p.lazyInit()
	if i, ok := p.index[name]; ok && p.props[i].Type == PropTexture {
		p.props[i].texture = tex
		return nil
	}
	unit := -1
	for u, owner := range p.units {
		if owner == "" {
			unit = u
			break
		}
	}
	if unit < 0 {
		return fmt.Errorf("texture %q (%d units): %w", name, p.maxUnits, ErrTextureUnitsExhausted)
	}
	p.putTexture(name, tex, unit, false)
	return nil
}

// SetTextureAt binds tex to name on the given texture unit (pinned). It
// returns ErrTextureUnitRange for a unit outside the pool and
// ErrTextureUnitInUse when another property holds the unit.
func (p *Properties) SetTextureAt(name string, tex Texture, unit int) error {
	p.lazyInit()
	if unit < 0 || unit >= p.maxUnits {
		return fmt.Errorf("texture %q unit %d (max %d): %w", name, unit, p.maxUnits, ErrTextureUnitRange)
	}
	if owner := p.units[unit]; owner != "" && owner != name {
		return fmt.Errorf("texture %q unit %d held by %q: %w", name, unit, owner, ErrTextureUnitInUse)
	}
	p.putTexture(name, tex, unit, true)
	return nil
}

func (p *Properties) putTexture(name string, tex Texture, unit int, pinned bool) {
	p.put(name, Property{Type: PropTexture, texture: tex, unit: unit, pinned: pinned})
	p.units[unit] = name
}

// Clear removes the property named name, releasing its texture unit.
// It reports whether the property existed.
func (p *Properties) Clear(name string) bool {
	i, ok := p.index[name]
	if !ok {
		return false
	}
	p.release(p.props[i])
	copy(p.props[i:], p.props[i+1:])
	p.props = p.props[:len(p.props)-1]
	copy(p.names[i:], p.names[i+1:])
	p.names = p.names[:len(p.names)-1]
	delete(p.index, name)
	for j := i; j < len(p.names); j++ {
		p.index[p.names[j]] = j
	}
	return true
}

// Push sends every property to binder. Nothing is skipped as unchanged:
// programs are swapped between draws, so a delta would go stale.
func (p *Properties) Push(binder ShaderBinder) error {
	for i, name := range p.names {
		prop := &p.props[i]
		if prop.Type == PropTexture {
			if err := binder.SetTextureUnit(prop.unit, prop.texture); err != nil {
				return fmt.Errorf("texture %q: %w", name, err)
			}
		}
		if err := binder.SetUniform(name, prop.Value()); err != nil {
			return fmt.Errorf("uniform %q: %w", name, err)
		}
	}
	return nil
}
