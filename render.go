package oriel

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Per-draw uniform names set by Scene.Render.
const (
	UniformModel      = "u_model"
	UniformView       = "u_view"
	UniformProjection = "u_projection"
	UniformNormal     = "u_normalMatrix"
	UniformCameraPos  = "u_cameraPos"
	UniformLightCount = "u_lightCount"
)

// RenderContext groups the backend collaborators a scene renders through.
type RenderContext struct {
	Device  Device
	Shaders *ShaderRegistry
}

// ViewportSetter is implemented by devices that can restrict drawing to a
// screen rectangle.
type ViewportSetter interface {
	SetViewport(r Rect) error
}

// RenderCommand is a single draw instruction emitted while building the
// frame.
type RenderCommand struct {
	Node        *Node
	Mesh        Mesh
	Material    *Material
	Model       mgl32.Mat4
	State       RasterizerState
	RenderLayer uint8
	GlobalOrder int
	treeOrder   int // assigned during traversal for stable sort
}

// buildCommands emits one command per visible drawable. Rasterizer state is
// flattened over the drawable's entire ancestor chain.
func (s *Scene) buildCommands() {
	s.refreshTreeOrder()
	s.commands = s.commands[:0]
	for _, n := range s.drawables {
		s.chainBuf = n.Ancestors(s.chainBuf[:0])
		if !chainVisible(s.chainBuf) {
			continue
		}
		mat := n.material
		if mat == nil {
			mat = s.DefaultMaterial
		}
		s.commands = append(s.commands, RenderCommand{
			Node:        n,
			Mesh:        n.mesh,
			Material:    mat,
			Model:       n.SceneSpace().ToMatrix(),
			State:       flattenNodeChain(s.chainBuf),
			RenderLayer: n.RenderLayer,
			GlobalOrder: n.GlobalOrder,
			treeOrder:   n.treeOrder,
		})
	}
	clear(s.chainBuf)
}

func chainVisible(chain []*Node) bool {
	for _, n := range chain {
		if !n.Visible {
			return false
		}
	}
	return true
}

// submit applies state, pushes material and per-draw uniforms, and draws
// every command in order. The first error aborts the frame.
func (s *Scene) submit(rc RenderContext, view View, stats *debugStats) error {
	dev := rc.Device
	if vs, ok := dev.(ViewportSetter); ok {
		if err := vs.SetViewport(view.Viewport); err != nil {
			return fmt.Errorf("set viewport: %w", err)
		}
	}
	camPos := view.View.Inv().Col(3).Vec3()
	var lastShader ShaderKey
	for i := range s.commands {
		cmd := &s.commands[i]
		if err := dev.ApplyRasterizer(cmd.State); err != nil {
			return fmt.Errorf("draw %q: apply rasterizer: %w", cmd.Node.Name, err)
		}
		if err := cmd.Material.Use(dev, rc.Shaders); err != nil {
			return fmt.Errorf("draw %q: %w", cmd.Node.Name, err)
		}
		if cmd.Material.Shader != lastShader {
			stats.programSwitches++
			lastShader = cmd.Material.Shader
		}
		normal := cmd.Model.Mat3().Inv().Transpose()
		for _, u := range [...]struct {
			name  string
			value any
		}{
			{UniformModel, cmd.Model},
			{UniformView, view.View},
			{UniformProjection, view.Projection},
			{UniformNormal, normal},
			{UniformCameraPos, camPos},
		} {
			if err := dev.SetUniform(u.name, u.value); err != nil {
				return fmt.Errorf("draw %q: uniform %q: %w", cmd.Node.Name, u.name, err)
			}
		}
		if err := pushLights(dev, s.lights); err != nil {
			return fmt.Errorf("draw %q: lights: %w", cmd.Node.Name, err)
		}
		if err := cmd.Mesh.Draw(); err != nil {
			return fmt.Errorf("draw %q: %w", cmd.Node.Name, err)
		}
		stats.drawCallCount++
	}
	return nil
}

// --- Merge sort ---

// commandLessOrEqual returns true if a should sort before or at the same position as b.
// Using <= for treeOrder ensures stability.
func commandLessOrEqual(a, b *RenderCommand) bool {
	if a.RenderLayer != b.RenderLayer {
		return a.RenderLayer < b.RenderLayer
	}
	if a.GlobalOrder != b.GlobalOrder {
		return a.GlobalOrder < b.GlobalOrder
	}
	return a.treeOrder <= b.treeOrder
}

// mergeSort sorts s.commands in-place using s.sortBuf as scratch space.
// Bottom-up merge sort: zero allocations after the sort buffer reaches high-water mark.
func (s *Scene) mergeSort() {
	n := len(s.commands)
	if n <= 1 {
		return
	}
	if cap(s.sortBuf) < n {
		s.sortBuf = make([]RenderCommand, n)
	}
	s.sortBuf = s.sortBuf[:n]

	a := s.commands
	b := s.sortBuf
	swapped := false

	for width := 1; width < n; width *= 2 {
		for i := 0; i < n; i += 2 * width {
			lo := i
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			mergeRun(a, b, lo, mid, hi)
		}
		a, b = b, a
		swapped = !swapped
	}

	if swapped {
		copy(s.commands, s.sortBuf)
	}
}

// mergeRun merges two sorted runs [lo, mid) and [mid, hi) from src into dst.
func mergeRun(src, dst []RenderCommand, lo, mid, hi int) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if commandLessOrEqual(&src[i], &src[j]) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	k += copy(dst[k:hi], src[i:mid])
	copy(dst[k:hi], src[j:hi])
}
