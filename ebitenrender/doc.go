// Package ebitenrender renders oriel scenes with [Ebitengine].
//
// [Device] implements [oriel.Device] on top of Kage shaders. Meshes are
// projected on the CPU with the bound model, view and projection uniforms
// and drawn with DrawTrianglesShader32. Ebitengine has no depth buffer, so
// triangles of a mesh are sorted by depth and meshes are drawn in command
// order; depth writes are ignored.
//
// Meshes made with [NewMesh] draw through whichever Device last bound a
// program, so a scene can be built before any Device exists. The quickest
// way to show it is [Run]:
//
//	scene := oriel.NewScene()
//	cube := ebitenrender.NewMesh(oriel.NewCubeMesh(1))
//	// ... add nodes ...
//	err := ebitenrender.Run(scene, oriel.DefaultConfig(), nil)
//
// [Ebitengine]: https://ebitengine.org
package ebitenrender
