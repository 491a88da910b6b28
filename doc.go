// Package birch is a batching 2D renderer for [Ebitengine].
//
// A frame is drawn by walking a node tree once per camera and emitting every
// visible node into a vertex batch. Batches grow until they run out of room,
// run out of texture units, or the active pipeline changes; only then is a
// draw call issued. A typical scene of sprites sharing a handful of atlas
// pages renders in one or two draw calls.
//
// # Quick start
//
//	scene := birch.NewScene()
//	scene.NewCamera(birch.Rect{Width: 800, Height: 600})
//
//	g, err := birch.NewGame(scene, birch.RunConfig{Title: "Demo", Width: 800, Height: 600})
//	if err != nil {
//		log.Fatal(err)
//	}
//	tex, _ := g.Backend.AddImage(g.Renderer.Textures, "hero", heroImage)
//	hero := birch.NewSprite("hero", tex.Base())
//	hero.SetPosition(400, 300)
//	scene.Root().AddChild(hero)
//	log.Fatal(g.Run())
//
// # Nodes
//
// Every visual element is a [Node]. Nodes form a tree rooted at
// [Scene.Root]; children inherit their parent's transform and alpha. The
// constructors [NewContainer], [NewSprite], [NewRopeNode], [NewShapeNode] and
// [NewTileLayerNode] set the node type, which selects how the renderer
// emits it. Draw order follows tree order, with [Node.SetZIndex] reordering
// siblings.
//
// # Cameras
//
// A [Camera] owns a viewport and three matrices: the view matrix (scroll,
// zoom and rotation around the origin), the external matrix (the viewport
// offset) and their product. Nodes with a scroll factor below 1 move slower
// than the camera, down to 0 for screen-pinned UI. [CalcMatrix] resolves a
// node's final matrix against a camera into caller-owned scratch storage.
//
// # Pipelines
//
// A [Pipeline] pairs a shader program with a [VertexLayout] and a
// [VertexBatchBuffer]. The [PipelineManager] tracks which pipeline is
// current and flushes the outgoing one on every switch. The renderer
// registers four pipelines:
//
//   - Multi: textured quads, one texture per unit, tint modes per vertex
//   - Rope: triangle strips, flushed before every strip
//   - Graphics: flat-colored shapes using the reserved white texture
//   - Light2D: quads with a normal map, lit by the scene's [LightManager]
//
// [Renderer.Stats] reports draw calls and the [FlushReason] behind each one.
//
// # Backends
//
// Rendering goes through the [Backend] interface. [EbitenBackend] implements
// it on top of Ebitengine's DrawTriangles; tests use an in-memory fake.
//
// # Configuration
//
// [Config] holds batch size, texture unit and light caps, pixel rounding and
// debug checks. It can be loaded from YAML with [LoadConfig] or
// [LoadConfigFile].
//
// # Logging
//
// birch is silent by default. Pass a [log/slog.Logger] to [SetLogger] to see
// per-frame stats and warnings.
//
// [Ebitengine]: https://ebitengine.org
package birch
