package oriel

import "github.com/go-gl/mathgl/mgl32"

// Texture is a GPU texture handle owned by the backend.
type Texture interface {
	ID() uint32
	Width() int
	Height() int
}

// Mesh is drawable vertex data owned by the backend. Draw issues the draw
// call using the program, uniforms and rasterizer state bound on the device
// immediately before.
type Mesh interface {
	Draw() error
}

// Vertex is one vertex of a MeshData.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
	Color    Color
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max mgl32.Vec3
}

// Empty reports whether the box encloses nothing.
func (b AABB) Empty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Center returns the midpoint of the box.
func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// MeshData is CPU-side triangle data. Triangles are counter-clockwise when
// seen from the front. Backends upload it to produce a Mesh.
type MeshData struct {
	Vertices []Vertex
	Indices  []uint16

	aabb      AABB
	aabbDirty bool
}

// NewMeshData wraps vertices and indices.
func NewMeshData(verts []Vertex, inds []uint16) *MeshData {
	return &MeshData{Vertices: verts, Indices: inds, aabbDirty: true}
}

// Invalidate marks the cached bounds as needing recomputation. Call this
// after modifying Vertices.
func (m *MeshData) Invalidate() {
	m.aabbDirty = true
}

// Bounds returns the local-space bounding box of the vertices.
func (m *MeshData) Bounds() AABB {
	if m.aabbDirty {
		m.aabb = computeMeshAABB(m.Vertices)
		m.aabbDirty = false
	}
	return m.aabb
}

// NumTriangles returns len(Indices)/3.
func (m *MeshData) NumTriangles() int {
	return len(m.Indices) / 3
}

// computeMeshAABB scans vertex positions. An empty slice yields an empty box.
func computeMeshAABB(verts []Vertex) AABB {
	if len(verts) == 0 {
		return AABB{Min: mgl32.Vec3{1, 1, 1}, Max: mgl32.Vec3{-1, -1, -1}}
	}
	b := AABB{Min: verts[0].Position, Max: verts[0].Position}
	for i := 1; i < len(verts); i++ {
		p := verts[i].Position
		for k := 0; k < 3; k++ {
			if p[k] < b.Min[k] {
				b.Min[k] = p[k]
			}
			if p[k] > b.Max[k] {
				b.Max[k] = p[k]
			}
		}
	}
	return b
}
