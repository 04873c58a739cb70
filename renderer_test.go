// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rend3

import (
	"fmt"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/BVE-Reborn/rend3-sub001/cull"
	"github.com/BVE-Reborn/rend3-sub001/gpudev"
)

func newTestRenderer(t *testing.T, cfg Config) (*gpudev.MockDevice, *Renderer) {
	t.Helper()
	dev := gpudev.NewMockDevice()
	r, err := NewRenderer(dev, cfg)
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	t.Cleanup(func() {
		r.Destroy()
		dev.Destroy()
	})
	return dev, r
}

func cubeMesh() MeshDescriptor {
	verts := []mgl32.Vec3{
		{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
		{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
	}
	idx := []uint32{
		0, 1, 2, 0, 2, 3, // back
		4, 6, 5, 4, 7, 6, // front
		0, 4, 5, 0, 5, 1, // bottom
		3, 2, 6, 3, 6, 7, // top
		0, 3, 7, 0, 7, 4, // left
		1, 5, 6, 1, 6, 2, // right
	}
	return MeshDescriptor{Label: "cube", Vertices: verts, Indices: idx}
}

func mustAddMesh(t *testing.T, r *Renderer, desc MeshDescriptor) MeshHandle {
	t.Helper()
	h, err := r.AddMesh(desc)
	if err != nil {
		t.Fatalf("AddMesh() error = %v", err)
	}
	return h
}

func mustAddMaterial(t *testing.T, r *Renderer, desc MaterialDescriptor) MaterialHandle {
	t.Helper()
	h, err := r.AddMaterial(desc)
	if err != nil {
		t.Fatalf("AddMaterial() error = %v", err)
	}
	return h
}

func lastEncoder(t *testing.T, dev *gpudev.MockDevice) *gpudev.MockCommandEncoder {
	t.Helper()
	if len(dev.Submitted) == 0 {
		t.Fatal("no command encoder was submitted")
	}
	return dev.Submitted[len(dev.Submitted)-1]
}

// Three hundred objects in three material classes, half of them
// behind the camera. Exercises the full frame path: registries,
// bind sets, culling, graph execution and the depth prepass.
func TestRendererFrame300Objects(t *testing.T) {
	dev, r := newTestRenderer(t, DefaultConfig())

	mesh := mustAddMesh(t, r, cubeMesh())
	mats := []MaterialHandle{
		mustAddMaterial(t, r, MaterialDescriptor{Label: "opaque"}),
		mustAddMaterial(t, r, MaterialDescriptor{Label: "cutout", Transparency: cull.TransparencyCutout}),
		mustAddMaterial(t, r, MaterialDescriptor{Label: "blend", Transparency: cull.TransparencyBlend}),
	}

	for i := 0; i < 300; i++ {
		z := float32(-4 - i%50)
		if i%2 == 1 {
			// Odd objects sit behind the camera.
			z = -z
		}
		r.AddObject(ObjectDescriptor{
			Mesh:      mesh,
			Material:  mats[i%3],
			Transform: mgl32.Translate3D(float32(i%10)*0.2, 0, z),
		})
	}

	report, err := r.Render(FrameOptions{Camera: DefaultCamera(), Width: 1280, Height: 720})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if report.Objects != 300 {
		t.Errorf("report.Objects = %d, want 300", report.Objects)
	}
	if report.Drawn != 150 {
		t.Errorf("report.Drawn = %d, want 150 (objects behind the camera culled)", report.Drawn)
	}
	if report.LiveNodes != 2 {
		t.Errorf("report.LiveNodes = %d, want 2", report.LiveNodes)
	}

	enc := lastEncoder(t, dev)
	if len(enc.RenderPasses) != 1 {
		t.Fatalf("recorded %d render passes, want 1", len(enc.RenderPasses))
	}
	pass := enc.RenderPasses[0]
	if len(pass.Draws) != 150 {
		t.Fatalf("recorded %d draws, want 150", len(pass.Draws))
	}
	for i, d := range pass.Draws {
		if d.Kind != gpudev.MockDrawIndexed {
			t.Fatalf("draw %d kind = %v, want indexed", i, d.Kind)
		}
		if d.IndexCount != 36 {
			t.Fatalf("draw %d IndexCount = %d, want 36", i, d.IndexCount)
		}
	}
	if pass.Desc.DepthStencil == nil {
		t.Fatal("prepass has no depth attachment")
	}
	if pass.Desc.DepthStencil.DepthLoadOp != gputypes.LoadOpClear {
		t.Error("first depth touch did not clear")
	}
}

// An all-visible scene split evenly between one opaque and one
// blended material. Every object carries its own mesh so the recorded
// FirstIndex identifies it, letting the test check the draw order the
// sorter produced: the opaque half front-to-back, then the blended
// half back-to-front.
func TestRendererFrameDrawOrdering(t *testing.T) {
	dev, r := newTestRenderer(t, DefaultConfig())

	opaque := mustAddMaterial(t, r, MaterialDescriptor{Label: "opaque"})
	blend := mustAddMaterial(t, r, MaterialDescriptor{Label: "blend", Transparency: cull.TransparencyBlend})

	type placed struct {
		blended  bool
		distance float32
	}
	byFirstIndex := make(map[uint32]placed, 300)
	for i := 0; i < 300; i++ {
		mesh := mustAddMesh(t, r, MeshDescriptor{
			Label:    fmt.Sprintf("tri %d", i),
			Vertices: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
			Indices:  []uint32{0, 1, 2},
		})
		// 7 is coprime with 150, so each half sees every distance
		// once, scrambled away from submission order.
		dist := float32(4 + (i*7)%150)
		mat, blended := opaque, false
		if i >= 150 {
			mat, blended = blend, true
		}
		byFirstIndex[r.meshes.Get(mesh).FirstIndex] = placed{blended, dist}
		r.AddObject(ObjectDescriptor{
			Mesh:      mesh,
			Material:  mat,
			Transform: mgl32.Translate3D(0, 0, -dist),
		})
	}

	report, err := r.Render(FrameOptions{Camera: DefaultCamera(), Width: 1280, Height: 720})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if report.Drawn != 300 {
		t.Fatalf("report.Drawn = %d, want 300 (nothing should be culled)", report.Drawn)
	}

	pass := lastEncoder(t, dev).RenderPasses[0]
	if len(pass.Draws) != 300 {
		t.Fatalf("recorded %d draws, want 300", len(pass.Draws))
	}
	for k, d := range pass.Draws {
		p, ok := byFirstIndex[d.FirstIndex]
		if !ok {
			t.Fatalf("draw %d has unknown FirstIndex %d", k, d.FirstIndex)
		}
		if wantBlend := k >= 150; p.blended != wantBlend {
			t.Fatalf("draw %d blended = %v, want %v (classes must not interleave)", k, p.blended, wantBlend)
		}
		if k == 0 || k == 150 {
			continue
		}
		prev := byFirstIndex[pass.Draws[k-1].FirstIndex]
		if !p.blended && p.distance < prev.distance {
			t.Fatalf("opaque draw %d at distance %v after %v, want front-to-back", k, p.distance, prev.distance)
		}
		if p.blended && p.distance > prev.distance {
			t.Fatalf("blended draw %d at distance %v after %v, want back-to-front", k, p.distance, prev.distance)
		}
	}
}

// The same split scene through the compute path: each material key
// fits BatchCapacity, so the frame dispatches exactly one batch and
// records exactly one indirect draw per key.
func TestRendererGPUCullingBatchPerKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GPUCulling = true
	dev, r := newTestRenderer(t, cfg)

	mesh := mustAddMesh(t, r, cubeMesh())
	opaque := mustAddMaterial(t, r, MaterialDescriptor{Label: "opaque"})
	blend := mustAddMaterial(t, r, MaterialDescriptor{Label: "blend", Transparency: cull.TransparencyBlend})

	for i := 0; i < 300; i++ {
		mat := opaque
		if i >= 150 {
			mat = blend
		}
		r.AddObject(ObjectDescriptor{
			Mesh:      mesh,
			Material:  mat,
			Transform: mgl32.Translate3D(0, 0, float32(-4-i%150)),
		})
	}

	report, err := r.Render(FrameOptions{Camera: DefaultCamera(), Width: 1280, Height: 720})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if report.Drawn != 2 {
		t.Fatalf("report.Drawn = %d, want 2 (one batch per material key)", report.Drawn)
	}

	draws := lastEncoder(t, dev).RenderPasses[0].Draws
	if len(draws) != 2 {
		t.Fatalf("recorded %d draws, want 2", len(draws))
	}
	for i, d := range draws {
		if d.Kind != gpudev.MockDrawIndexedIndirect {
			t.Fatalf("draw %d kind = %v, want indexed indirect", i, d.Kind)
		}
		if want := uint64(i) * cull.IndirectArgsSize; d.IndirectOffset != want {
			t.Errorf("draw %d IndirectOffset = %d, want %d", i, d.IndirectOffset, want)
		}
	}
}

func TestRendererGPUCullingFrame(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GPUCulling = true
	dev, r := newTestRenderer(t, cfg)

	mesh := mustAddMesh(t, r, cubeMesh())
	mat := mustAddMaterial(t, r, MaterialDescriptor{Label: "opaque"})
	for i := 0; i < 3; i++ {
		r.AddObject(ObjectDescriptor{
			Mesh:      mesh,
			Material:  mat,
			Transform: mgl32.Translate3D(float32(i), 0, -6),
		})
	}

	report, err := r.Render(FrameOptions{Camera: DefaultCamera(), Width: 640, Height: 480})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if report.Drawn != 1 {
		t.Errorf("report.Drawn = %d, want 1 batch", report.Drawn)
	}

	enc := lastEncoder(t, dev)
	if len(enc.ComputePasses) != 1 {
		t.Fatalf("recorded %d compute passes, want 1", len(enc.ComputePasses))
	}
	if len(enc.RenderPasses) != 1 {
		t.Fatalf("recorded %d render passes, want 1", len(enc.RenderPasses))
	}
	draws := enc.RenderPasses[0].Draws
	if len(draws) != 1 {
		t.Fatalf("recorded %d draws, want 1", len(draws))
	}
	if draws[0].Kind != gpudev.MockDrawIndexedIndirect {
		t.Errorf("draw kind = %v, want indexed indirect", draws[0].Kind)
	}
	if draws[0].IndirectOffset != 0 {
		t.Errorf("IndirectOffset = %d, want 0", draws[0].IndirectOffset)
	}
}

func TestRendererEmptyScene(t *testing.T) {
	dev, r := newTestRenderer(t, DefaultConfig())

	report, err := r.Render(FrameOptions{Camera: DefaultCamera(), Width: 320, Height: 240})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if report.Objects != 0 || report.Drawn != 0 {
		t.Errorf("report = %+v, want zero objects and draws", report)
	}

	// The frame still submits and the prepass still clears depth.
	enc := lastEncoder(t, dev)
	if len(enc.RenderPasses) != 1 {
		t.Fatalf("recorded %d render passes, want 1", len(enc.RenderPasses))
	}
	if len(enc.RenderPasses[0].Draws) != 0 {
		t.Errorf("empty scene recorded %d draws", len(enc.RenderPasses[0].Draws))
	}

	// A second frame reuses the pooled depth target.
	created := dev.TextureCount()
	if _, err := r.Render(FrameOptions{Camera: DefaultCamera(), Width: 320, Height: 240}); err != nil {
		t.Fatalf("second Render() error = %v", err)
	}
	if got := dev.TextureCount(); got != created {
		t.Errorf("TextureCount() after second frame = %d, want %d", got, created)
	}
}

func TestRendererHandleLifecycle(t *testing.T) {
	dev, r := newTestRenderer(t, DefaultConfig())

	tex, err := dev.CreateTexture(&gpudev.TextureDescriptor{
		Label: "albedo",
		Size:  gputypes.Extent3D{Width: 4, Height: 4, DepthOrArrayLayers: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	view, err := dev.CreateTextureView(tex, &gpudev.TextureViewDescriptor{})
	if err != nil {
		t.Fatal(err)
	}

	mesh := mustAddMesh(t, r, cubeMesh())
	mat := mustAddMaterial(t, r, MaterialDescriptor{
		Label:    "textured",
		Textures: []gpudev.TextureViewID{view},
	})
	obj := r.AddObject(ObjectDescriptor{Mesh: mesh, Material: mat, Transform: mgl32.Ident4()})

	// The object keeps mesh and material alive even after the caller
	// releases them.
	mesh.Release()
	mat.Release()
	if _, err := r.Render(FrameOptions{Camera: DefaultCamera(), Width: 64, Height: 64}); err != nil {
		t.Fatal(err)
	}
	meshes, materials, objects := r.Counts()
	if meshes != 1 || materials != 1 || objects != 1 {
		t.Fatalf("Counts() = %d,%d,%d, want 1,1,1", meshes, materials, objects)
	}
	if got := dev.BindGroupCount(); got != 1 {
		t.Fatalf("BindGroupCount() = %d, want 1 live material set", got)
	}

	// Releasing the object lets everything die in the next sweep.
	obj.Release()
	if _, err := r.Render(FrameOptions{Camera: DefaultCamera(), Width: 64, Height: 64}); err != nil {
		t.Fatal(err)
	}
	meshes, materials, objects = r.Counts()
	if meshes != 0 || materials != 0 || objects != 0 {
		t.Errorf("Counts() after release = %d,%d,%d, want 0,0,0", meshes, materials, objects)
	}
	if got := dev.BindGroupCount(); got != 0 {
		t.Errorf("BindGroupCount() after release = %d, want 0", got)
	}
}

func TestRendererPrepassPipelineLayouts(t *testing.T) {
	dev, r := newTestRenderer(t, DefaultConfig())

	cases := []struct {
		name   string
		layout gpudev.PipelineLayoutID
		want   gpudev.BindGroupLayoutID
	}{
		{"direct", r.directPipeLayout, r.directLayout},
		{"pulled", r.pulledPipeLayout, r.pulledLayout},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			desc := dev.PipelineLayout(tc.layout)
			if desc == nil {
				t.Fatal("pipeline layout was not created")
			}
			if len(desc.BindGroupLayouts) != 1 || desc.BindGroupLayouts[0] != tc.want {
				t.Errorf("BindGroupLayouts = %v, want [%v]", desc.BindGroupLayouts, tc.want)
			}
		})
	}
}

func TestRendererSharedGeometryLayout(t *testing.T) {
	_, r := newTestRenderer(t, DefaultConfig())

	first := mustAddMesh(t, r, cubeMesh())
	second := mustAddMesh(t, r, MeshDescriptor{
		Label:    "tri",
		Vertices: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Indices:  []uint32{0, 1, 2},
	})

	m1 := r.meshes.Get(first)
	m2 := r.meshes.Get(second)
	if m1.FirstIndex != 0 || m1.BaseVertex != 0 {
		t.Errorf("first mesh at FirstIndex %d BaseVertex %d, want 0,0", m1.FirstIndex, m1.BaseVertex)
	}
	if m2.FirstIndex != 36 {
		t.Errorf("second mesh FirstIndex = %d, want 36", m2.FirstIndex)
	}
	if m2.BaseVertex != 8 {
		t.Errorf("second mesh BaseVertex = %d, want 8", m2.BaseVertex)
	}
	if m2.IndexCount != 3 || m2.VertexCount != 3 {
		t.Errorf("second mesh counts = %d,%d, want 3,3", m2.IndexCount, m2.VertexCount)
	}
}

func TestRendererAddMeshValidation(t *testing.T) {
	_, r := newTestRenderer(t, DefaultConfig())

	if _, err := r.AddMesh(MeshDescriptor{Label: "empty"}); err == nil {
		t.Error("AddMesh with no vertices did not fail")
	}
	if _, err := r.AddMesh(MeshDescriptor{
		Label:    "oob",
		Vertices: []mgl32.Vec3{{0, 0, 0}},
		Indices:  []uint32{0, 1, 2},
	}); err == nil {
		t.Error("AddMesh with out of range index did not fail")
	}
}

func TestRendererZeroExtentPanics(t *testing.T) {
	_, r := newTestRenderer(t, DefaultConfig())

	defer func() {
		if recover() == nil {
			t.Error("Render with zero extent did not panic")
		}
	}()
	_, _ = r.Render(FrameOptions{Camera: DefaultCamera()})
}

func TestRendererDestroyReleasesEverything(t *testing.T) {
	dev := gpudev.NewMockDevice()
	defer dev.Destroy()

	r, err := NewRenderer(dev, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	mesh := mustAddMesh(t, r, cubeMesh())
	mat := mustAddMaterial(t, r, MaterialDescriptor{})
	r.AddObject(ObjectDescriptor{Mesh: mesh, Material: mat, Transform: mgl32.Ident4()})
	if _, err := r.Render(FrameOptions{Camera: DefaultCamera(), Width: 64, Height: 64}); err != nil {
		t.Fatal(err)
	}

	r.Destroy()
	r.Destroy() // idempotent

	if got := dev.BufferCount(); got != 0 {
		t.Errorf("BufferCount() after Destroy = %d, want 0", got)
	}
	if got := dev.TextureCount(); got != 0 {
		t.Errorf("TextureCount() after Destroy = %d, want 0", got)
	}
	if got := dev.BindGroupCount(); got != 0 {
		t.Errorf("BindGroupCount() after Destroy = %d, want 0", got)
	}
}
