// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rend3

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/BVE-Reborn/rend3-sub001/bindset"
	"github.com/BVE-Reborn/rend3-sub001/cull"
	"github.com/BVE-Reborn/rend3-sub001/gpudev"
	"github.com/BVE-Reborn/rend3-sub001/graph"
	"github.com/BVE-Reborn/rend3-sub001/registry"
)

//go:embed prepass.wgsl
var prepassShaderWGSL string

// Config controls renderer construction.
type Config struct {
	// GPUCulling selects the compute culling path. The CPU path is
	// the default and the fallback for devices without compute.
	GPUCulling bool
	// Batch tunes the GPU culling dispatch shape.
	Batch cull.BatchConfig
	// BindSets tunes the material bind group cache.
	BindSets bindset.Config
	// DepthFormat is the depth prepass target format. Zero means
	// Depth32Float.
	DepthFormat gputypes.TextureFormat
}

// DefaultConfig returns the production configuration: CPU culling,
// default batching and bind set limits.
func DefaultConfig() Config {
	return Config{
		Batch:    cull.DefaultBatchConfig(),
		BindSets: bindset.DefaultConfig(),
	}
}

func (c Config) validate() Config {
	if c.DepthFormat == gputypes.TextureFormatUndefined {
		c.DepthFormat = gputypes.TextureFormatDepth32Float
	}
	return c
}

// FrameOptions describes one frame to render.
type FrameOptions struct {
	Camera Camera
	Width  uint32
	Height uint32
	// Target optionally imports a color target, typically the
	// surface, so later shading nodes can attach it. The prepass
	// itself only writes depth.
	Target gpudev.TextureViewID
}

// FrameReport summarizes what one frame did.
type FrameReport struct {
	// Objects is the scene size going into culling.
	Objects int
	// Drawn is the number of draw calls on the CPU path, or the
	// number of indirect batches on the GPU path.
	Drawn int
	// LiveNodes is how many graph nodes survived compilation.
	LiveNodes int
}

type objectRefs struct {
	self     ObjectHandle
	mesh     MeshHandle
	material MaterialHandle
}

type materialRef struct {
	self MaterialHandle
	set  *bindset.Set
}

// Renderer owns the scene and turns it into frames. Renderers are not
// safe for concurrent use.
type Renderer struct {
	dev gpudev.Device
	cfg Config
	log *slog.Logger

	meshes    *registry.Registry[Mesh]
	materials *registry.Registry[Material]
	objects   *registry.ArchetypeRegistry[cull.Object]

	objectRefs   map[registry.RawHandle]objectRefs
	materialRefs map[registry.RawHandle]materialRef
	nextMatKey   uint64

	bindSets *bindset.Cache
	culler   cull.Culler
	store    *graph.TextureStore

	// Shared geometry pools. Meshes append; buffers rebuild lazily.
	vertexData  []byte
	indexData   []byte
	vertexCount uint32
	indexCount  uint32
	vertexBuf   gpudev.BufferID
	indexBuf    gpudev.BufferID
	geomDirty   bool

	// Sequential index buffer for the GPU path's pulled draws.
	seqIndexBuf gpudev.BufferID
	seqIndexCap uint32

	prepassModule    gpudev.ShaderModuleID
	directLayout     gpudev.BindGroupLayoutID
	pulledLayout     gpudev.BindGroupLayoutID
	directPipeLayout gpudev.PipelineLayoutID
	pulledPipeLayout gpudev.PipelineLayoutID
	directPipeline   gpudev.RenderPipelineID
	pulledPipeline   gpudev.RenderPipelineID
	frameBindGroups  []gpudev.BindGroupID
	destroyed        bool
}

// NewRenderer builds a renderer on dev. The logger defaults to the
// package logger at the time of the call.
func NewRenderer(dev gpudev.Device, cfg Config) (*Renderer, error) {
	cfg = cfg.validate()
	r := &Renderer{
		dev:          dev,
		cfg:          cfg,
		log:          Logger(),
		meshes:       registry.NewRegistry[Mesh]("meshes"),
		materials:    registry.NewRegistry[Material]("materials"),
		objects:      registry.NewArchetypeRegistry[cull.Object]("objects"),
		objectRefs:   make(map[registry.RawHandle]objectRefs),
		materialRefs: make(map[registry.RawHandle]materialRef),
	}

	var err error
	r.bindSets, err = bindset.NewCache(dev, cfg.BindSets)
	if err != nil {
		return nil, fmt.Errorf("rend3: bind set cache: %w", err)
	}
	if cfg.GPUCulling {
		r.culler, err = cull.NewGPUCuller(dev, cfg.Batch)
	} else {
		r.culler = cull.NewCPUCuller(dev)
	}
	if err != nil {
		r.Destroy()
		return nil, fmt.Errorf("rend3: culler: %w", err)
	}
	r.store = graph.NewTextureStore(dev)

	if err := r.buildPrepass(); err != nil {
		r.Destroy()
		return nil, err
	}

	propagateLogger(r.bindSets, r.log)
	propagateLogger(r.culler, r.log)
	r.log.Info("renderer ready", "gpuCulling", cfg.GPUCulling)
	return r, nil
}

// SetLogger replaces the renderer's logger and propagates it to the
// owned subsystems. Pass nil to silence.
func (r *Renderer) SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	r.log = l
	propagateLogger(r.bindSets, l)
	propagateLogger(r.culler, l)
}

func storageEntry(binding uint32) gputypes.BindGroupLayoutEntry {
	return gputypes.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: gputypes.ShaderStageVertex,
		Buffer: &gputypes.BufferBindingLayout{
			Type: gputypes.BufferBindingTypeReadOnlyStorage,
		},
	}
}

func (r *Renderer) buildPrepass() error {
	var err error
	r.prepassModule, err = r.dev.CreateShaderModule("prepass", prepassShaderWGSL)
	if err != nil {
		return fmt.Errorf("rend3: prepass shader: %w", err)
	}

	r.directLayout, err = r.dev.CreateBindGroupLayout(&gpudev.BindGroupLayoutDescriptor{
		Label:   "prepass direct",
		Entries: []gputypes.BindGroupLayoutEntry{storageEntry(0)},
	})
	if err != nil {
		return fmt.Errorf("rend3: prepass direct layout: %w", err)
	}
	r.pulledLayout, err = r.dev.CreateBindGroupLayout(&gpudev.BindGroupLayoutDescriptor{
		Label: "prepass pulled",
		Entries: []gputypes.BindGroupLayoutEntry{
			storageEntry(0), storageEntry(1), storageEntry(2), storageEntry(3),
		},
	})
	if err != nil {
		return fmt.Errorf("rend3: prepass pulled layout: %w", err)
	}

	r.directPipeLayout, err = r.dev.CreatePipelineLayout(&gpudev.PipelineLayoutDescriptor{
		Label: "prepass direct", BindGroupLayouts: []gpudev.BindGroupLayoutID{r.directLayout},
	})
	if err != nil {
		return fmt.Errorf("rend3: prepass direct pipeline layout: %w", err)
	}
	r.pulledPipeLayout, err = r.dev.CreatePipelineLayout(&gpudev.PipelineLayoutDescriptor{
		Label: "prepass pulled", BindGroupLayouts: []gpudev.BindGroupLayoutID{r.pulledLayout},
	})
	if err != nil {
		return fmt.Errorf("rend3: prepass pulled pipeline layout: %w", err)
	}

	depth := &gpudev.DepthStencilState{
		Format:            r.cfg.DepthFormat,
		DepthWriteEnabled: true,
		DepthCompare:      gputypes.CompareFunctionLess,
	}
	r.directPipeline, err = r.dev.CreateRenderPipeline(&gpudev.RenderPipelineDescriptor{
		Label:        "prepass direct",
		Layout:       r.directPipeLayout,
		VertexModule: r.prepassModule,
		VertexEntry:  "vs_direct",
		VertexBuffers: []gputypes.VertexBufferLayout{
			{
				ArrayStride: 12,
				StepMode:    gputypes.VertexStepModeVertex,
				Attributes: []gputypes.VertexAttribute{
					{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
				},
			},
		},
		DepthStencil: depth,
		SampleCount:  1,
	})
	if err != nil {
		return fmt.Errorf("rend3: prepass direct pipeline: %w", err)
	}
	r.pulledPipeline, err = r.dev.CreateRenderPipeline(&gpudev.RenderPipelineDescriptor{
		Label:        "prepass pulled",
		Layout:       r.pulledPipeLayout,
		VertexModule: r.prepassModule,
		VertexEntry:  "vs_pulled",
		DepthStencil: depth,
		SampleCount:  1,
	})
	if err != nil {
		return fmt.Errorf("rend3: prepass pulled pipeline: %w", err)
	}
	return nil
}

// AddMesh registers a mesh into the shared geometry pools and returns
// its handle. The vertex list must not be empty and every index must
// address it.
func (r *Renderer) AddMesh(desc MeshDescriptor) (MeshHandle, error) {
	if len(desc.Vertices) == 0 {
		return MeshHandle{}, fmt.Errorf("rend3: mesh %q has no vertices", desc.Label)
	}
	for _, idx := range desc.Indices {
		if idx >= uint32(len(desc.Vertices)) {
			return MeshHandle{}, fmt.Errorf("rend3: mesh %q index %d out of range", desc.Label, idx)
		}
	}

	m := Mesh{
		FirstIndex:  r.indexCount,
		IndexCount:  uint32(len(desc.Indices)),
		BaseVertex:  int32(r.vertexCount),
		VertexCount: uint32(len(desc.Vertices)),
		Bounds:      cull.SphereFromPoints(desc.Vertices),
	}

	for _, v := range desc.Vertices {
		for i := 0; i < 3; i++ {
			r.vertexData = binary.LittleEndian.AppendUint32(r.vertexData, math.Float32bits(v[i]))
		}
	}
	for _, idx := range desc.Indices {
		r.indexData = binary.LittleEndian.AppendUint32(r.indexData, idx)
	}
	r.vertexCount += m.VertexCount
	r.indexCount += m.IndexCount
	r.geomDirty = true

	return r.meshes.Insert(m), nil
}

// AddMaterial registers a material, deduplicating its texture list,
// and returns its handle.
func (r *Renderer) AddMaterial(desc MaterialDescriptor) (MaterialHandle, error) {
	var set *bindset.Set
	if len(desc.Textures) > 0 {
		var err error
		set, err = r.bindSets.Acquire(desc.Textures)
		if err != nil {
			return MaterialHandle{}, fmt.Errorf("rend3: material %q: %w", desc.Label, err)
		}
	}
	r.nextMatKey++
	h := r.materials.Insert(Material{
		Key:          r.nextMatKey,
		Transparency: desc.Transparency,
		Set:          set,
	})
	r.materialRefs[h.Raw()] = materialRef{self: h, set: set}
	return h, nil
}

// bindSetIndex maps a material's set to the culling sort field. Zero
// means untextured; textured sets start at one.
func bindSetIndex(s *bindset.Set) uint32 {
	if s == nil {
		return 0
	}
	return s.Index + 1
}

// AddObject places a mesh in the scene. Panics if either handle is
// dead, matching registry access semantics.
func (r *Renderer) AddObject(desc ObjectDescriptor) ObjectHandle {
	mesh := r.meshes.Get(desc.Mesh)
	mat := r.materials.Get(desc.Material)

	arch := registry.Archetype(mat.Transparency)
	obj := cull.Object{
		Index:        uint32(len(r.objects.Bucket(arch))),
		Transform:    desc.Transform,
		Bounds:       mesh.Bounds,
		MaterialKey:  mat.Key,
		Transparency: mat.Transparency,
		BindSet:      bindSetIndex(mat.Set),
		FirstIndex:   mesh.FirstIndex,
		IndexCount:   mesh.IndexCount,
		BaseVertex:   mesh.BaseVertex,
	}
	h := r.objects.Insert(arch, obj)
	r.objectRefs[h.Raw()] = objectRefs{
		self:     h,
		mesh:     desc.Mesh.Clone(),
		material: desc.Material.Clone(),
	}
	return h
}

// SetObjectTransform moves an object. Panics on a dead handle.
func (r *Renderer) SetObjectTransform(h ObjectHandle, m mgl32.Mat4) {
	r.objects.Update(h, func(o *cull.Object) { o.Transform = m })
}

// maintain reclaims dead resources. Objects drop their mesh and
// material references first so those can die in the same sweep.
func (r *Renderer) maintain() {
	for raw, refs := range r.objectRefs {
		if !refs.self.Alive() {
			refs.mesh.Release()
			refs.material.Release()
			delete(r.objectRefs, raw)
		}
	}
	// Moves are applied after the sweep; the registry holds its lock
	// while reporting them.
	var moves []registry.ArchetypeMove
	r.objects.ReclaimDead(func(mv registry.ArchetypeMove) { moves = append(moves, mv) })
	for _, mv := range moves {
		r.objects.Bucket(mv.Archetype)[mv.NewIndex].Index = uint32(mv.NewIndex)
	}

	for raw, ref := range r.materialRefs {
		if !ref.self.Alive() {
			if ref.set != nil {
				r.bindSets.Release(ref.set)
			}
			delete(r.materialRefs, raw)
		}
	}
	r.materials.ReclaimDead(nil)
	r.meshes.ReclaimDead(nil)
}

// flushGeometry rebuilds the shared vertex and index buffers after
// mesh registration changed them.
func (r *Renderer) flushGeometry() error {
	if !r.geomDirty {
		return nil
	}
	if r.vertexBuf != gpudev.InvalidBufferID {
		r.dev.DestroyBuffer(r.vertexBuf)
		r.vertexBuf = gpudev.InvalidBufferID
	}
	if r.indexBuf != gpudev.InvalidBufferID {
		r.dev.DestroyBuffer(r.indexBuf)
		r.indexBuf = gpudev.InvalidBufferID
	}
	if len(r.vertexData) == 0 {
		r.geomDirty = false
		return nil
	}

	var err error
	r.vertexBuf, err = r.dev.CreateBuffer(&gpudev.BufferDescriptor{
		Label: "scene vertices",
		Size:  uint64(len(r.vertexData)),
		Usage: gpudev.BufferUsageVertex | gpudev.BufferUsageStorage | gpudev.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("rend3: vertex buffer: %w", err)
	}
	if err := r.dev.WriteBuffer(r.vertexBuf, 0, r.vertexData); err != nil {
		return fmt.Errorf("rend3: vertex upload: %w", err)
	}
	r.indexBuf, err = r.dev.CreateBuffer(&gpudev.BufferDescriptor{
		Label: "scene indices",
		Size:  uint64(len(r.indexData)),
		Usage: gpudev.BufferUsageIndex | gpudev.BufferUsageStorage | gpudev.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("rend3: index buffer: %w", err)
	}
	if err := r.dev.WriteBuffer(r.indexBuf, 0, r.indexData); err != nil {
		return fmt.Errorf("rend3: index upload: %w", err)
	}
	r.geomDirty = false
	r.log.Debug("geometry flushed", "vertices", r.vertexCount, "indices", r.indexCount)
	return nil
}

// ensureSeqIndices grows the sequential index buffer the pulled draws
// fetch through. Entry i holds i.
func (r *Renderer) ensureSeqIndices(count uint32) error {
	if count <= r.seqIndexCap {
		return nil
	}
	grown := r.seqIndexCap
	if grown == 0 {
		grown = 1 << 12
	}
	for grown < count {
		grown *= 2
	}
	if r.seqIndexBuf != gpudev.InvalidBufferID {
		r.dev.DestroyBuffer(r.seqIndexBuf)
		r.seqIndexBuf = gpudev.InvalidBufferID
	}
	data := make([]byte, grown*4)
	for i := uint32(0); i < grown; i++ {
		binary.LittleEndian.PutUint32(data[i*4:], i)
	}
	var err error
	r.seqIndexBuf, err = r.dev.CreateBuffer(&gpudev.BufferDescriptor{
		Label: "sequential indices",
		Size:  uint64(len(data)),
		Usage: gpudev.BufferUsageIndex | gpudev.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("rend3: sequential index buffer: %w", err)
	}
	if err := r.dev.WriteBuffer(r.seqIndexBuf, 0, data); err != nil {
		return fmt.Errorf("rend3: sequential index upload: %w", err)
	}
	r.seqIndexCap = grown
	return nil
}

// gatherObjects flattens the archetype buckets into one culling input
// in draw priority order, assigning each object its uniform slot.
func (r *Renderer) gatherObjects() []cull.Object {
	var out []cull.Object
	for _, arch := range r.objects.Archetypes() {
		out = append(out, r.objects.Bucket(arch)...)
	}
	for i := range out {
		out[i].Index = uint32(i)
	}
	return out
}

// Render culls the scene and executes the frame graph: a culling node
// feeding a depth prepass node. The frame is submitted before Render
// returns.
func (r *Renderer) Render(opts FrameOptions) (*FrameReport, error) {
	if opts.Width == 0 || opts.Height == 0 {
		panic("rend3: frame extent must be non-zero")
	}
	if opts.Camera.Aspect == 0 {
		opts.Camera.Aspect = float32(opts.Width) / float32(opts.Height)
	}
	r.maintain()
	if err := r.flushGeometry(); err != nil {
		return nil, err
	}

	objects := r.gatherObjects()
	in := &cull.Input{
		Objects:       objects,
		View:          opts.Camera.View,
		Proj:          opts.Camera.Proj(),
		SourceIndices: r.indexBuf,
	}

	g := graph.New(r.dev, r.store)
	g.SetLogger(r.log)

	depthTarget := g.AddRenderTarget(graph.TargetDescriptor{
		Label:  "prepass depth",
		Width:  opts.Width,
		Height: opts.Height,
		Format: r.cfg.DepthFormat,
		Usage:  gputypes.TextureUsageRenderAttachment,
	})
	if opts.Target != gpudev.InvalidTextureViewID {
		// Imported so later shading nodes can attach it.
		g.ImportRenderTarget("surface", opts.Target)
	}
	cullData := g.AddData()

	var out *cull.Output
	g.AddNode("cull").
		Output(cullData).
		Build(func(ctx *graph.NodeContext) error {
			res, err := r.culler.Cull(ctx.Encoder, in)
			if err != nil {
				return err
			}
			out = res
			ctx.SetData(cullData, res)
			return nil
		})
	g.AddNode("depth prepass").
		Input(cullData).
		Output(depthTarget).
		RenderTargets(nil, &graph.DepthTarget{Target: depthTarget, Clear: 1}).
		External().
		Build(func(ctx *graph.NodeContext) error {
			res := ctx.Data(cullData).(*cull.Output)
			return r.recordPrepass(ctx.Pass, res)
		})

	g.Compile()

	enc, err := r.dev.CreateCommandEncoder("frame")
	if err != nil {
		return nil, fmt.Errorf("rend3: frame encoder: %w", err)
	}
	if err := g.Execute(enc); err != nil {
		if out != nil {
			r.culler.Release(out)
		}
		return nil, err
	}
	if err := r.dev.Submit(enc); err != nil {
		if out != nil {
			r.culler.Release(out)
		}
		return nil, fmt.Errorf("rend3: submit: %w", err)
	}

	report := &FrameReport{Objects: len(objects), LiveNodes: g.LiveNodes()}
	if out != nil {
		if out.GPU {
			report.Drawn = len(out.Batches)
		} else {
			report.Drawn = len(out.Draws)
		}
		r.culler.Release(out)
	}
	for _, bg := range r.frameBindGroups {
		r.dev.DestroyBindGroup(bg)
	}
	r.frameBindGroups = r.frameBindGroups[:0]
	g.Retire()
	return report, nil
}

// recordPrepass records the depth only draws for one culling output.
func (r *Renderer) recordPrepass(pass gpudev.RenderPassEncoder, out *cull.Output) error {
	if out.GPU {
		return r.recordPulled(pass, out)
	}
	if len(out.Draws) == 0 {
		return nil
	}
	bg, err := r.dev.CreateBindGroup(&gpudev.BindGroupDescriptor{
		Label:  "prepass direct",
		Layout: r.directLayout,
		Entries: []gpudev.BindGroupEntry{
			{Binding: 0, Buffer: out.UniformBuffer},
		},
	})
	if err != nil {
		return fmt.Errorf("rend3: prepass bind group: %w", err)
	}
	r.frameBindGroups = append(r.frameBindGroups, bg)

	pass.SetPipeline(r.directPipeline)
	pass.SetBindGroup(0, bg)
	pass.SetVertexBuffer(0, r.vertexBuf, 0)
	pass.SetIndexBuffer(r.indexBuf, gputypes.IndexFormatUint32, 0)
	for _, d := range out.Draws {
		pass.DrawIndexed(d.IndexCount, 1, d.FirstIndex, d.BaseVertex, d.Object)
	}
	return nil
}

// recordPulled records the GPU path's indirect draws. The pass fetches
// slots through the sequential index buffer while the vertex stage
// pulls real geometry from the culled streams.
func (r *Renderer) recordPulled(pass gpudev.RenderPassEncoder, out *cull.Output) error {
	if len(out.Batches) == 0 {
		return nil
	}
	if err := r.ensureSeqIndices(out.IndexCapacity); err != nil {
		return err
	}
	bg, err := r.dev.CreateBindGroup(&gpudev.BindGroupDescriptor{
		Label:  "prepass pulled",
		Layout: r.pulledLayout,
		Entries: []gpudev.BindGroupEntry{
			{Binding: 0, Buffer: out.UniformBuffer},
			{Binding: 1, Buffer: r.vertexBuf},
			{Binding: 2, Buffer: out.IndexBuffer},
			{Binding: 3, Buffer: out.ObjectIDBuffer},
		},
	})
	if err != nil {
		return fmt.Errorf("rend3: prepass pulled bind group: %w", err)
	}
	r.frameBindGroups = append(r.frameBindGroups, bg)

	pass.SetPipeline(r.pulledPipeline)
	pass.SetBindGroup(0, bg)
	pass.SetIndexBuffer(r.seqIndexBuf, gputypes.IndexFormatUint32, 0)
	for _, b := range out.Batches {
		pass.DrawIndexedIndirect(out.IndirectBuffer, b.IndirectOffset)
	}
	return nil
}

// Counts returns the live mesh, material and object counts. Test and
// diagnostics helper.
func (r *Renderer) Counts() (meshes, materials, objects int) {
	return r.meshes.Len(), r.materials.Len(), r.objects.Count()
}

// Destroy releases everything the renderer owns. Idempotent.
func (r *Renderer) Destroy() {
	if r.destroyed {
		return
	}
	r.destroyed = true

	for _, bg := range r.frameBindGroups {
		r.dev.DestroyBindGroup(bg)
	}
	r.frameBindGroups = nil
	if r.directPipeline != gpudev.InvalidRenderPipelineID {
		r.dev.DestroyRenderPipeline(r.directPipeline)
	}
	if r.pulledPipeline != gpudev.InvalidRenderPipelineID {
		r.dev.DestroyRenderPipeline(r.pulledPipeline)
	}
	if r.directPipeLayout != gpudev.InvalidPipelineLayoutID {
		r.dev.DestroyPipelineLayout(r.directPipeLayout)
	}
	if r.pulledPipeLayout != gpudev.InvalidPipelineLayoutID {
		r.dev.DestroyPipelineLayout(r.pulledPipeLayout)
	}
	if r.directLayout != gpudev.InvalidBindGroupLayoutID {
		r.dev.DestroyBindGroupLayout(r.directLayout)
	}
	if r.pulledLayout != gpudev.InvalidBindGroupLayoutID {
		r.dev.DestroyBindGroupLayout(r.pulledLayout)
	}
	if r.prepassModule != gpudev.InvalidShaderModuleID {
		r.dev.DestroyShaderModule(r.prepassModule)
	}
	if r.seqIndexBuf != gpudev.InvalidBufferID {
		r.dev.DestroyBuffer(r.seqIndexBuf)
	}
	if r.vertexBuf != gpudev.InvalidBufferID {
		r.dev.DestroyBuffer(r.vertexBuf)
	}
	if r.indexBuf != gpudev.InvalidBufferID {
		r.dev.DestroyBuffer(r.indexBuf)
	}
	if r.store != nil {
		r.store.Destroy()
	}
	if r.culler != nil {
		r.culler.Destroy()
	}
	if r.bindSets != nil {
		r.bindSets.Destroy()
	}
}
