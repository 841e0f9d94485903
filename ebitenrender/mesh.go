package ebitenrender

import (
	"image/color"
	"slices"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/oriel"
)

// minClipW rejects triangles touching the camera plane; they are not clipped.
const minClipW = 1e-5

// Mesh is MeshData drawn through a Device. Vertices are transformed on the
// CPU every Draw; the buffers grow to a high-water mark and are reused.
type Mesh struct {
	dev  *Device
	data *oriel.MeshData

	clip   []mgl32.Vec4
	colors []oriel.Color
	tris   []triangle
	verts  []ebiten.Vertex
	inds   []uint32
}

type triangle struct {
	i     [3]uint16
	depth float32
}

// NewMesh wraps data for drawing through d.
func (d *Device) NewMesh(data *oriel.MeshData) *Mesh {
	return &Mesh{dev: d, data: data}
}

// NewMesh wraps data for drawing through the Device that most recently
// bound a program.
func NewMesh(data *oriel.MeshData) *Mesh {
	return &Mesh{data: data}
}

// Data returns the mesh's vertex data.
func (m *Mesh) Data() *oriel.MeshData { return m.data }

// Draw projects, culls and sorts the triangles and draws them with the
// device's bound program, uniforms, images and rasterizer state.
func (m *Mesh) Draw() error {
	d := m.dev
	if d == nil {
		d = active
	}
	if d == nil || d.program == nil {
		return errNoProgram
	}
	if d.target == nil {
		return errNoTarget
	}
	st := d.state
	if !st.WriteColor() || st.DepthFunc() == oriel.DepthNever {
		return nil
	}

	verts := m.data.Vertices
	mvp := d.projection.Mul4(d.view).Mul4(d.model)
	m.clip = slices.Grow(m.clip[:0], len(verts))[:len(verts)]
	m.colors = slices.Grow(m.colors[:0], len(verts))[:len(verts)]
	lit := d.program.key == oriel.ShaderStandard
	for i := range verts {
		v := &verts[i]
		m.clip[i] = mvp.Mul4x1(v.Position.Vec4(1))
		if lit {
			m.colors[i] = d.shadeVertex(v)
		} else {
			m.colors[i] = v.Color
		}
	}

	m.tris = m.tris[:0]
	inds := m.data.Indices
	for t := 0; t+2 < len(inds); t += 3 {
		tri := triangle{i: [3]uint16{inds[t], inds[t+1], inds[t+2]}}
		if !m.visible(&tri, st.CullMode()) {
			continue
		}
		m.tris = append(m.tris, tri)
	}
	if len(m.tris) == 0 {
		return nil
	}
	sortTriangles(m.tris, st.DepthFunc())

	vp := d.viewport
	vw, vh := float32(vp.Dx()), float32(vp.Dy())
	ox, oy := float32(vp.Min.X), float32(vp.Min.Y)
	var srcW, srcH float32 = 1, 1
	if img := d.images[0]; img != nil {
		b := img.Bounds()
		srcW, srcH = float32(b.Dx()), float32(b.Dy())
		d.uniforms["HasTexture"] = float32(1)
	} else {
		d.uniforms["HasTexture"] = float32(0)
	}

	m.verts = m.verts[:0]
	m.inds = m.inds[:0]
	for _, tri := range m.tris {
		for _, idx := range tri.i {
			c := m.clip[idx]
			v := &verts[idx]
			col := m.colors[idx]
			m.inds = append(m.inds, uint32(len(m.verts)))
			m.verts = append(m.verts, ebiten.Vertex{
				DstX:    ox + (c[0]/c[3]+1)/2*vw,
				DstY:    oy + (1-c[1]/c[3])/2*vh,
				SrcX:    v.UV[0] * srcW,
				SrcY:    v.UV[1] * srcH,
				ColorR:  col.R * col.A,
				ColorG:  col.G * col.A,
				ColorB:  col.B * col.A,
				ColorA:  col.A,
				Custom0: v.UV[0],
				Custom1: v.UV[1],
			})
		}
	}

	target := d.target
	if vp != target.Bounds() {
		target = target.SubImage(vp).(*ebiten.Image)
	}
	op := &ebiten.DrawTrianglesShaderOptions{
		Uniforms: d.uniforms,
		Images:   d.images,
		Blend:    stateBlend(st),
	}
	target.DrawTrianglesShader32(m.verts, m.inds, d.program.shader, op)
	d.drawCalls++
	return nil
}

// visible reports whether tri survives near-plane rejection, frustum
// rejection and face culling, and records its mean NDC depth.
func (m *Mesh) visible(tri *triangle, cull oriel.CullMode) bool {
	a, b, c := m.clip[tri.i[0]], m.clip[tri.i[1]], m.clip[tri.i[2]]
	if a[3] < minClipW || b[3] < minClipW || c[3] < minClipW {
		return false
	}
	for k := 0; k < 3; k++ {
		if a[k] > a[3] && b[k] > b[3] && c[k] > c[3] {
			return false
		}
		if a[k] < -a[3] && b[k] < -b[3] && c[k] < -c[3] {
			return false
		}
	}
	ax, ay := a[0]/a[3], a[1]/a[3]
	bx, by := b[0]/b[3], b[1]/b[3]
	cx, cy := c[0]/c[3], c[1]/c[3]
	front := frontFacing(ax, ay, bx, by, cx, cy)
	switch cull {
	case oriel.CullBack:
		if !front {
			return false
		}
	case oriel.CullFront:
		if front {
			return false
		}
	}
	tri.depth = (a[2]/a[3] + b[2]/b[3] + c[2]/c[3]) / 3
	return true
}

// frontFacing reports counter-clockwise winding in NDC (y up).
func frontFacing(ax, ay, bx, by, cx, cy float32) bool {
	return (bx-ax)*(cy-ay)-(by-ay)*(cx-ax) > 0
}

// sortTriangles orders triangles so the ones that pass the depth test last
// are drawn last. Far to near for Less; near to far for Greater.
func sortTriangles(tris []triangle, fn oriel.DepthFunc) {
	switch fn {
	case oriel.DepthLess, oriel.DepthLessEqual:
		slices.SortStableFunc(tris, func(a, b triangle) int { return cmpDesc(a.depth, b.depth) })
	case oriel.DepthGreater, oriel.DepthGreaterEqual:
		slices.SortStableFunc(tris, func(a, b triangle) int { return -cmpDesc(a.depth, b.depth) })
	}
}

func cmpDesc(a, b float32) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	}
	return 0
}

// shadeVertex computes Lambert lighting for one vertex from the
// lights pushed since the last Bind.
func (d *Device) shadeVertex(v *oriel.Vertex) oriel.Color {
	if d.lightCount == 0 {
		return v.Color
	}
	world := d.model.Mul4x1(v.Position.Vec4(1)).Vec3()
	n := d.normal.Mul3x1(v.Normal)
	if n.LenSqr() > 0 {
		n = n.Normalize()
	}
	sum := d.ambient
	for i := 0; i < d.lightCount; i++ {
		l := &d.lights[i]
		var dir mgl32.Vec3
		atten := float32(1)
		switch l.kind {
		case oriel.LightDirectional:
			dir = l.direction.Mul(-1)
		default:
			to := l.position.Sub(world)
			dist := to.Len()
			if dist == 0 {
				continue
			}
			dir = to.Mul(1 / dist)
			if l.rng > 0 {
				atten = math32.Max(0, 1-dist/l.rng)
			}
			if l.kind == oriel.LightSpot {
				cos := dir.Mul(-1).Dot(l.direction.Normalize())
				inner, outer := l.cone[0], l.cone[1]
				if inner <= outer {
					inner = outer + 1e-4
				}
				atten *= clamp01((cos - outer) / (inner - outer))
			}
		}
		diff := math32.Max(0, n.Dot(dir)) * atten
		sum = sum.Add(l.color.Mul(diff))
	}
	return oriel.Color{
		R: v.Color.R * clamp01(sum[0]),
		G: v.Color.G * clamp01(sum[1]),
		B: v.Color.B * clamp01(sum[2]),
		A: v.Color.A,
	}
}

func clamp01(x float32) float32 {
	return math32.Min(1, math32.Max(0, x))
}

func toRGBA(c oriel.Color) color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R*c.A) * 255),
		G: uint8(clamp01(c.G*c.A) * 255),
		B: uint8(clamp01(c.B*c.A) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

// Bounds returns the local bounding box, making the mesh pickable.
func (m *Mesh) Bounds() oriel.AABB { return m.data.Bounds() }
