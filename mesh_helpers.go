package oriel

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// --- Cube ---

// NewCubeMesh builds an axis-aligned cube of the given edge length centered
// on the origin, with per-face normals and 0..1 UVs on every face.
func NewCubeMesh(size float32) *MeshData {
	h := size / 2
	faces := [6]struct {
		n, u, v mgl32.Vec3
	}{
		{n: mgl32.Vec3{0, 0, 1}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 1, 0}},
		{n: mgl32.Vec3{0, 0, -1}, u: mgl32.Vec3{-1, 0, 0}, v: mgl32.Vec3{0, 1, 0}},
		{n: mgl32.Vec3{1, 0, 0}, u: mgl32.Vec3{0, 0, -1}, v: mgl32.Vec3{0, 1, 0}},
		{n: mgl32.Vec3{-1, 0, 0}, u: mgl32.Vec3{0, 0, 1}, v: mgl32.Vec3{0, 1, 0}},
		{n: mgl32.Vec3{0, 1, 0}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 0, -1}},
		{n: mgl32.Vec3{0, -1, 0}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 0, 1}},
	}
	verts := make([]Vertex, 0, 24)
	inds := make([]uint16, 0, 36)
	for _, f := range faces {
		base := uint16(len(verts))
		for _, c := range [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			p := f.n.Mul(h).Add(f.u.Mul(c[0] * h)).Add(f.v.Mul(c[1] * h))
			verts = append(verts, Vertex{
				Position: p,
				Normal:   f.n,
				UV:       mgl32.Vec2{(c[0] + 1) / 2, (1 - c[1]) / 2},
				Color:    ColorWhite,
			})
		}
		inds = append(inds, base, base+1, base+2, base, base+2, base+3)
	}
	return NewMeshData(verts, inds)
}

// --- Plane ---

// NewPlaneMesh builds a width x depth plane in XZ facing +Y, split into
// cols x rows quads.
func NewPlaneMesh(width, depth float32, cols, rows int) *MeshData {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	verts := make([]Vertex, 0, (cols+1)*(rows+1))
	for r := 0; r <= rows; r++ {
		for c := 0; c <= cols; c++ {
			u := float32(c) / float32(cols)
			v := float32(r) / float32(rows)
			verts = append(verts, Vertex{
				Position: mgl32.Vec3{(u - 0.5) * width, 0, (v - 0.5) * depth},
				Normal:   mgl32.Vec3{0, 1, 0},
				UV:       mgl32.Vec2{u, v},
				Color:    ColorWhite,
			})
		}
	}
	return NewMeshData(verts, gridIndices(cols, rows))
}

// gridIndices triangulates a (cols+1) x (rows+1) vertex grid laid out row by
// row. Winding is counter-clockwise seen from +Y.
func gridIndices(cols, rows int) []uint16 {
	inds := make([]uint16, 0, cols*rows*6)
	stride := uint16(cols + 1)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := uint16(r)*stride + uint16(c)
			inds = append(inds, i, i+stride, i+1, i+1, i+stride, i+stride+1)
		}
	}
	return inds
}

// --- Sphere ---

// NewUVSphereMesh builds a sphere of the given radius with segments around
// the Y axis and rings from pole to pole.
func NewUVSphereMesh(radius float32, segments, rings int) *MeshData {
	if segments < 3 {
		segments = 3
	}
	if rings < 2 {
		rings = 2
	}
	verts := make([]Vertex, 0, (segments+1)*(rings+1))
	for r := 0; r <= rings; r++ {
		v := float32(r) / float32(rings)
		phi := v * math32.Pi
		for s := 0; s <= segments; s++ {
			u := float32(s) / float32(segments)
			theta := u * 2 * math32.Pi
			n := mgl32.Vec3{
				math32.Sin(phi) * math32.Sin(theta),
				math32.Cos(phi),
				math32.Sin(phi) * math32.Cos(theta),
			}
			verts = append(verts, Vertex{
				Position: n.Mul(radius),
				Normal:   n,
				UV:       mgl32.Vec2{u, v},
				Color:    ColorWhite,
			})
		}
	}
	return NewMeshData(verts, gridIndices(segments, rings))
}

// --- Polygon ---

// NewPolygonMesh builds a flat convex polygon in the XY plane facing +Z.
// Uses fan triangulation; UVs are mapped to the bounding box of the points.
func NewPolygonMesh(points []mgl32.Vec2) *MeshData {
	verts, inds := buildPolygonFan(points)
	return NewMeshData(verts, inds)
}

// buildPolygonFan generates vertices and indices for a fan-triangulated polygon.
// N vertices, 3*(N-2) indices.
func buildPolygonFan(points []mgl32.Vec2) ([]Vertex, []uint16) {
	n := len(points)
	if n < 3 {
		return nil, nil
	}
	minX, minY := points[0][0], points[0][1]
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = math32.Min(minX, p[0])
		maxX = math32.Max(maxX, p[0])
		minY = math32.Min(minY, p[1])
		maxY = math32.Max(maxY, p[1])
	}
	bbW, bbH := maxX-minX, maxY-minY

	verts := make([]Vertex, n)
	for i, p := range points {
		var u, v float32
		if bbW > 0 {
			u = (p[0] - minX) / bbW
		}
		if bbH > 0 {
			v = 1 - (p[1]-minY)/bbH
		}
		verts[i] = Vertex{
			Position: mgl32.Vec3{p[0], p[1], 0},
			Normal:   mgl32.Vec3{0, 0, 1},
			UV:       mgl32.Vec2{u, v},
			Color:    ColorWhite,
		}
	}
	inds := make([]uint16, 0, (n-2)*3)
	for i := 1; i < n-1; i++ {
		inds = append(inds, 0, uint16(i), uint16(i+1))
	}
	return verts, inds
}
