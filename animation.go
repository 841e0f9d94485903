package oriel

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 4 float32 values simultaneously and writes them
// to a node or material on every step. It is a Behavior: attach it with
// AddBehavior and the scene advances it, or call Step yourself.
// If the target node is disposed, the group stops immediately.
type TweenGroup struct {
	BehaviorBase

	tweens [4]*gween.Tween
	count  int
	apply  func(vals [4]float32)
	target *Node

	// Done is set once every tween has finished.
	Done bool
	// AutoRemove detaches the group from its node when it finishes.
	AutoRemove bool
}

// Update implements Behavior.
func (g *TweenGroup) Update(dt float64) {
	g.Step(float32(dt))
	if g.Done && g.AutoRemove && g.node != nil {
		g.node.RemoveBehavior(g)
	}
}

// Step advances all tweens by dt seconds and applies the values. If the
// target node has been disposed, Done is set to true and no writes occur.
func (g *TweenGroup) Step(dt float32) {
	if g.Done {
		return
	}
	if g.target != nil && g.target.IsDisposed() {
		g.Done = true
		return
	}

	var vals [4]float32
	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		vals[i] = val
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
	g.apply(vals)
}

func easeOrLinear(fn ease.TweenFunc) ease.TweenFunc {
	if fn == nil {
		return ease.Linear
	}
	return fn
}

// TweenTranslation creates a TweenGroup that moves the node's local
// translation to the given value over duration seconds.
func TweenTranslation(node *Node, to mgl32.Vec3, duration float32, fn ease.TweenFunc) *TweenGroup {
	fn = easeOrLinear(fn)
	from := node.local.Translation
	g := &TweenGroup{count: 3, target: node}
	for i := 0; i < 3; i++ {
		g.tweens[i] = gween.New(from[i], to[i], duration, fn)
	}
	g.apply = func(v [4]float32) {
		node.SetTranslation(mgl32.Vec3{v[0], v[1], v[2]})
	}
	return g
}

// TweenScale creates a TweenGroup that animates the node's local scale.
// Frames whose interpolated scale has a zero component are skipped.
func TweenScale(node *Node, to mgl32.Vec3, duration float32, fn ease.TweenFunc) *TweenGroup {
	fn = easeOrLinear(fn)
	from := node.local.Scale
	g := &TweenGroup{count: 3, target: node}
	for i := 0; i < 3; i++ {
		g.tweens[i] = gween.New(from[i], to[i], duration, fn)
	}
	g.apply = func(v [4]float32) {
		_ = node.SetScale(mgl32.Vec3{v[0], v[1], v[2]})
	}
	return g
}

// TweenRotation creates a TweenGroup that spherically interpolates the
// node's local rotation to the given orientation.
func TweenRotation(node *Node, to mgl32.Quat, duration float32, fn ease.TweenFunc) *TweenGroup {
	from := node.local.Rotation
	to = to.Normalize()
	if from.Dot(to) < 0 {
		to = to.Scale(-1)
	}
	g := &TweenGroup{count: 1, target: node}
	g.tweens[0] = gween.New(0, 1, duration, easeOrLinear(fn))
	g.apply = func(v [4]float32) {
		node.SetRotation(mgl32.QuatSlerp(from, to, v[0]))
	}
	return g
}

// TweenColor creates a TweenGroup that animates a vec4 color property of a
// material. A missing property starts from white.
func TweenColor(m *Material, name string, to Color, duration float32, fn ease.TweenFunc) *TweenGroup {
	fn = easeOrLinear(fn)
	from := ColorWhite.Vec4()
	if p, ok := m.Properties.Get(name); ok && p.Type == PropVec4 {
		from = p.Vec4()
	}
	dst := to.Vec4()
	g := &TweenGroup{count: 4}
	for i := 0; i < 4; i++ {
		g.tweens[i] = gween.New(from[i], dst[i], duration, fn)
	}
	g.apply = func(v [4]float32) {
		m.Properties.SetVec4(name, mgl32.Vec4(v))
	}
	return g
}

// Spin returns a behavior that rotates its node continuously around axis at
// speed radians per second.
func Spin(axis mgl32.Vec3, speed float32) Behavior {
	axis = axis.Normalize()
	return NewBehaviorFunc(func(n *Node, dt float64) {
		n.Rotate(speed*float32(dt), axis)
	})
}
