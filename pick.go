package oriel

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Bounder is implemented by meshes that can report their local bounds.
// Only drawables whose mesh is a Bounder take part in picking.
type Bounder interface {
	Bounds() AABB
}

// PickResult describes a picked node.
type PickResult struct {
	Node *Node
	// Distance is measured along the ray from its origin.
	Distance float32
	Point    mgl32.Vec3
}

// PickRay returns the nearest visible drawable whose bounding box the ray
// intersects. dir need not be normalized; Distance is then in units of dir.
func (s *Scene) PickRay(origin, dir mgl32.Vec3) (PickResult, bool) {
	best := PickResult{Distance: math32.Inf(1)}
	found := false
	for _, n := range s.drawables {
		b, ok := n.mesh.(Bounder)
		if !ok {
			continue
		}
		s.chainBuf = n.Ancestors(s.chainBuf[:0])
		if !chainVisible(s.chainBuf) {
			continue
		}
		box := b.Bounds()
		if box.Empty() {
			continue
		}
		inv := n.SceneSpace().ToMatrix().Inv()
		lo := inv.Mul4x1(origin.Vec4(1)).Vec3()
		ld := inv.Mul4x1(dir.Vec4(0)).Vec3()
		t, ok := rayBox(lo, ld, box)
		if !ok || t >= best.Distance {
			continue
		}
		best = PickResult{Node: n, Distance: t, Point: origin.Add(dir.Mul(t))}
		found = true
	}
	clear(s.chainBuf)
	return best, found
}

// Pick casts a ray through screen point (sx, sy) of cam's viewport.
func (s *Scene) Pick(cam *Camera, sx, sy float64) (PickResult, bool) {
	if cam == nil || !cam.Viewport.Contains(sx, sy) {
		return PickResult{}, false
	}
	origin, dir := cam.ScreenToRay(sx, sy)
	return s.PickRay(origin, dir)
}

// rayBox is the slab test. It returns the entry distance, or the exit
// distance when the origin is inside the box.
func rayBox(o, d mgl32.Vec3, b AABB) (float32, bool) {
	tmin, tmax := math32.Inf(-1), math32.Inf(1)
	for i := 0; i < 3; i++ {
		if math32.Abs(d[i]) < 1e-12 {
			if o[i] < b.Min[i] || o[i] > b.Max[i] {
				return 0, false
			}
			continue
		}
		inv := 1 / d[i]
		t1 := (b.Min[i] - o[i]) * inv
		t2 := (b.Max[i] - o[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math32.Max(tmin, t1)
		tmax = math32.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}
