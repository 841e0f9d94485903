// Package oriel is the core of a retained-mode 3D renderer with stereo (VR)
// output.
//
// oriel owns the scene graph, the transform algebra, rasterizer state
// inheritance, the material property pipeline, camera and per-eye
// projection, and the tracked pose pipeline. Drawing goes through small
// backend interfaces ([Device], [ShaderCompiler], [Mesh], [Texture]); the
// ebitenrender subpackage implements them with [Ebitengine].
//
// # Quick start
//
//	scene := oriel.NewScene()
//	cfg := oriel.DefaultConfig()
//
//	camNode := oriel.NewNode("camera")
//	camNode.SetTranslation(mgl32.Vec3{0, 1, 4})
//	camNode.SetCamera(cfg.NewCamera())
//	scene.Root().AddChild(camNode, false)
//
//	cube := oriel.NewMeshNode("cube", ebitenrender.NewMesh(oriel.NewCubeMesh(1)),
//		oriel.StandardMaterial(oriel.Color{R: 1, G: 0.4, B: 0.2, A: 1}))
//	scene.Root().AddChild(cube, false)
//
//	ebitenrender.Run(scene, cfg, nil)
//
// # Scene graph
//
// Every spatial element is a [Node]. A node owns its children and holds a
// non-owning reference to its parent; [Node.AddChild] rejects cycles with
// [ErrCycle] and leaves the tree unchanged. Local transforms compose
// parent-first into a cached scene-space transform that is recomputed
// lazily after any local or structural change:
//
//	world := node.SceneSpace()
//
// Reparenting with preserveSceneSpace keeps the node where it is in the
// scene by solving for a new local transform.
//
// Nodes carry optional capabilities: a mesh and material, a [Camera], a
// [Light] and any number of [Behavior] values. Capability-carrying nodes
// register with the [Scene] when attached under its root, so rendering
// never type-switches over the tree.
//
// # Rasterizer state
//
// Each node's [RasterizerState] declares only the attributes it has an
// opinion on. Before every draw the states of the whole ancestor chain are
// folded with [Flatten]: an important ancestor attribute wins, otherwise the
// deepest declaration wins, and undeclared attributes fall back to
// [DefaultRasterizerState].
//
// # Materials
//
// A [Material] names a shader by [ShaderKey] and holds typed [Properties].
// Programs are compiled once per key by a [ShaderRegistry]. Texture
// properties are assigned texture units from a finite pool.
//
// # Stereo and tracking
//
// A [Tracker] supplies head-to-eye transforms, raw per-eye projections and
// one batch of device poses per frame. [PoseTracker] binds devices (by
// index or by [DeviceRole]) to nodes and overwrites their local transforms;
// a device that stops reporting keeps its last pose and is marked stale.
// [FrameLoop] sequences behaviors, the compositor wait, pose application,
// transform refresh and per-eye rendering. [ScriptedTracker] replays JSON
// pose scripts when no runtime is available.
//
// # Logging
//
// oriel logs through [log/slog] and is silent by default; install a logger
// with [SetLogger]. [Scene.SetDebugMode] adds per-frame timings and tree
// sanity warnings.
//
// [Ebitengine]: https://ebitengine.org
package oriel
