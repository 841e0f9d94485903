package oriel

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// LightKind selects the light model.
type LightKind int32

const (
	LightDirectional LightKind = iota // parallel rays along the node's -Z
	LightPoint                        // omnidirectional from the node's position
	LightSpot                         // cone along the node's -Z
)

// MaxLights is the number of lights pushed to shaders per draw. Additional
// lights are ignored in registration order.
const MaxLights = 8

// Light is a node capability. Position and direction come from the node's
// scene-space transform.
type Light struct {
	Kind      LightKind
	Color     Color
	Intensity float32
	// Range is the distance at which point and spot lights fade out.
	Range float32
	// InnerCone and OuterCone are spot half-angles in degrees.
	InnerCone, OuterCone float32
	Enabled              bool
}

// NewDirectionalLight creates an enabled directional light.
func NewDirectionalLight(color Color, intensity float32) *Light {
	return &Light{Kind: LightDirectional, Color: color, Intensity: intensity, Enabled: true}
}

// NewPointLight creates an enabled point light.
func NewPointLight(color Color, intensity, lightRange float32) *Light {
	return &Light{Kind: LightPoint, Color: color, Intensity: intensity, Range: lightRange, Enabled: true}
}

// NewSpotLight creates an enabled spot light with cone half-angles in degrees.
func NewSpotLight(color Color, intensity, lightRange, inner, outer float32) *Light {
	return &Light{
		Kind: LightSpot, Color: color, Intensity: intensity, Range: lightRange,
		InnerCone: inner, OuterCone: outer, Enabled: true,
	}
}

// lightUniformNames caches "u_lights[i].field" strings.
var lightUniformNames [MaxLights]struct {
	kind, color, position, direction, rng, cone string
}

func init() {
	for i := range lightUniformNames {
		p := fmt.Sprintf("u_lights[%d].", i)
		n := &lightUniformNames[i]
		n.kind = p + "kind"
		n.color = p + "color"
		n.position = p + "position"
		n.direction = p + "direction"
		n.rng = p + "range"
		n.cone = p + "cone"
	}
}

// pushLights sends up to MaxLights enabled lights as uniforms, followed by
// u_lightCount. Cone angles are sent as cosines.
func pushLights(binder ShaderBinder, nodes []*Node) error {
	count := 0
	for _, n := range nodes {
		if count == MaxLights {
			break
		}
		l := n.light
		if l == nil || !l.Enabled || !n.Visible {
			continue
		}
		world := n.SceneSpace()
		dir := world.Rotation.Rotate(mgl32.Vec3{0, 0, -1})
		c := l.Color
		names := &lightUniformNames[count]
		cone := mgl32.Vec2{
			math32.Cos(mgl32.DegToRad(l.InnerCone)),
			math32.Cos(mgl32.DegToRad(l.OuterCone)),
		}
		for _, u := range [...]struct {
			name  string
			value any
		}{
			{names.kind, int32(l.Kind)},
			{names.color, mgl32.Vec3{c.R * l.Intensity, c.G * l.Intensity, c.B * l.Intensity}},
			{names.position, world.Translation},
			{names.direction, dir},
			{names.rng, l.Range},
			{names.cone, cone},
		} {
			if err := binder.SetUniform(u.name, u.value); err != nil {
				return fmt.Errorf("uniform %q: %w", u.name, err)
			}
		}
		count++
	}
	return binder.SetUniform(UniformLightCount, int32(count))
}
