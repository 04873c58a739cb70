// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpudev

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
)

// MockDevice implements Device entirely in memory. Buffers are byte
// slices, passes record what was set on them, and Submit appends the
// encoder to Submitted. Compute dispatches are recorded, not run.
type MockDevice struct {
	mu     sync.Mutex
	nextID atomic.Uint64

	buffers          map[BufferID]*mockBuffer
	textures         map[TextureID]*TextureDescriptor
	views            map[TextureViewID]TextureID
	shaders          map[ShaderModuleID]string
	bindGroupLayouts map[BindGroupLayoutID]*BindGroupLayoutDescriptor
	pipelineLayouts  map[PipelineLayoutID]*PipelineLayoutDescriptor
	bindGroups       map[BindGroupID]*BindGroupDescriptor
	computePipelines map[ComputePipelineID]*ComputePipelineDescriptor
	renderPipelines  map[RenderPipelineID]*RenderPipelineDescriptor

	limits gputypes.Limits

	// Submitted holds every encoder passed to Submit, in order.
	Submitted []*MockCommandEncoder

	// FailBufferAlloc makes the next CreateBuffer return
	// ErrOutOfMemory, for exhaustion-path tests.
	FailBufferAlloc bool
}

type mockBuffer struct {
	data  []byte
	usage BufferUsage
	label string
}

// NewMockDevice returns an empty in-memory device with default limits.
func NewMockDevice() *MockDevice {
	return &MockDevice{
		buffers:          make(map[BufferID]*mockBuffer),
		textures:         make(map[TextureID]*TextureDescriptor),
		views:            make(map[TextureViewID]TextureID),
		shaders:          make(map[ShaderModuleID]string),
		bindGroupLayouts: make(map[BindGroupLayoutID]*BindGroupLayoutDescriptor),
		pipelineLayouts:  make(map[PipelineLayoutID]*PipelineLayoutDescriptor),
		bindGroups:       make(map[BindGroupID]*BindGroupDescriptor),
		computePipelines: make(map[ComputePipelineID]*ComputePipelineDescriptor),
		renderPipelines:  make(map[RenderPipelineID]*RenderPipelineDescriptor),
		limits:           gputypes.DefaultLimits(),
	}
}

func (d *MockDevice) alloc() uint64 { return d.nextID.Add(1) }

// CreateBuffer allocates a zeroed in-memory buffer.
func (d *MockDevice) CreateBuffer(desc *BufferDescriptor) (BufferID, error) {
	if desc == nil || desc.Size == 0 {
		return InvalidBufferID, fmt.Errorf("%w: buffer size must be > 0", ErrInvalidDescriptor)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailBufferAlloc {
		d.FailBufferAlloc = false
		return InvalidBufferID, ErrOutOfMemory
	}
	id := BufferID(d.alloc())
	d.buffers[id] = &mockBuffer{
		data:  make([]byte, desc.Size),
		usage: desc.Usage,
		label: desc.Label,
	}
	return id, nil
}

func (d *MockDevice) WriteBuffer(id BufferID, offset uint64, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	buf, ok := d.buffers[id]
	if !ok {
		return fmt.Errorf("%w: buffer %d", ErrResourceNotFound, id)
	}
	if offset+uint64(len(data)) > uint64(len(buf.data)) {
		return fmt.Errorf("%w: write of %d bytes at %d exceeds buffer size %d",
			ErrInvalidDescriptor, len(data), offset, len(buf.data))
	}
	copy(buf.data[offset:], data)
	return nil
}

func (d *MockDevice) ReadBuffer(id BufferID, offset uint64, dst []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	buf, ok := d.buffers[id]
	if !ok {
		return fmt.Errorf("%w: buffer %d", ErrResourceNotFound, id)
	}
	if offset+uint64(len(dst)) > uint64(len(buf.data)) {
		return fmt.Errorf("%w: read of %d bytes at %d exceeds buffer size %d",
			ErrInvalidDescriptor, len(dst), offset, len(buf.data))
	}
	copy(dst, buf.data[offset:])
	return nil
}

// BufferData returns a copy of the buffer contents, or nil if the ID
// is not live. Test helper.
func (d *MockDevice) BufferData(id BufferID) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	buf, ok := d.buffers[id]
	if !ok {
		return nil
	}
	out := make([]byte, len(buf.data))
	copy(out, buf.data)
	return out
}

// BufferCount returns the number of live buffers. Test helper.
func (d *MockDevice) BufferCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.buffers)
}

func (d *MockDevice) DestroyBuffer(id BufferID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.buffers, id)
}

func (d *MockDevice) CreateTexture(desc *TextureDescriptor) (TextureID, error) {
	if desc == nil || desc.Size.Width == 0 || desc.Size.Height == 0 {
		return InvalidTextureID, fmt.Errorf("%w: texture extent must be non-zero", ErrInvalidDescriptor)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	id := TextureID(d.alloc())
	cp := *desc
	d.textures[id] = &cp
	return id, nil
}

func (d *MockDevice) CreateTextureView(texture TextureID, desc *TextureViewDescriptor) (TextureViewID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.textures[texture]; !ok {
		return InvalidTextureViewID, fmt.Errorf("%w: texture %d", ErrResourceNotFound, texture)
	}
	id := TextureViewID(d.alloc())
	d.views[id] = texture
	return id, nil
}

// TextureCount returns the number of live textures. Test helper.
func (d *MockDevice) TextureCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.textures)
}

func (d *MockDevice) DestroyTextureView(id TextureViewID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.views, id)
}

func (d *MockDevice) DestroyTexture(id TextureID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.textures, id)
}

func (d *MockDevice) CreateShaderModule(label, wgsl string) (ShaderModuleID, error) {
	if wgsl == "" {
		return InvalidShaderModuleID, fmt.Errorf("%w: empty shader source", ErrInvalidDescriptor)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	id := ShaderModuleID(d.alloc())
	d.shaders[id] = wgsl
	return id, nil
}

func (d *MockDevice) DestroyShaderModule(id ShaderModuleID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.shaders, id)
}

func (d *MockDevice) CreateBindGroupLayout(desc *BindGroupLayoutDescriptor) (BindGroupLayoutID, error) {
	if desc == nil {
		return InvalidBindGroupLayoutID, ErrInvalidDescriptor
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	id := BindGroupLayoutID(d.alloc())
	cp := *desc
	d.bindGroupLayouts[id] = &cp
	return id, nil
}

func (d *MockDevice) DestroyBindGroupLayout(id BindGroupLayoutID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.bindGroupLayouts, id)
}

func (d *MockDevice) CreatePipelineLayout(desc *PipelineLayoutDescriptor) (PipelineLayoutID, error) {
	if desc == nil {
		return InvalidPipelineLayoutID, ErrInvalidDescriptor
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	id := PipelineLayoutID(d.alloc())
	cp := *desc
	d.pipelineLayouts[id] = &cp
	return id, nil
}

// PipelineLayout returns the descriptor a pipeline layout was created
// with, or nil. Test helper.
func (d *MockDevice) PipelineLayout(id PipelineLayoutID) *PipelineLayoutDescriptor {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pipelineLayouts[id]
}

func (d *MockDevice) DestroyPipelineLayout(id PipelineLayoutID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.pipelineLayouts, id)
}

func (d *MockDevice) CreateBindGroup(desc *BindGroupDescriptor) (BindGroupID, error) {
	if desc == nil {
		return InvalidBindGroupID, ErrInvalidDescriptor
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.bindGroupLayouts[desc.Layout]; !ok {
		return InvalidBindGroupID, fmt.Errorf("%w: bind group layout %d", ErrResourceNotFound, desc.Layout)
	}
	id := BindGroupID(d.alloc())
	cp := *desc
	cp.Entries = append([]BindGroupEntry(nil), desc.Entries...)
	d.bindGroups[id] = &cp
	return id, nil
}

// BindGroup returns the descriptor a bind group was created with, or
// nil. Test helper.
func (d *MockDevice) BindGroup(id BindGroupID) *BindGroupDescriptor {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.bindGroups[id]
}

// BindGroupCount returns the number of live bind groups. Test helper.
func (d *MockDevice) BindGroupCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.bindGroups)
}

func (d *MockDevice) DestroyBindGroup(id BindGroupID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.bindGroups, id)
}

func (d *MockDevice) CreateComputePipeline(desc *ComputePipelineDescriptor) (ComputePipelineID, error) {
	if desc == nil {
		return InvalidComputePipelineID, ErrInvalidDescriptor
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.shaders[desc.Module]; !ok {
		return InvalidComputePipelineID, fmt.Errorf("%w: shader module %d", ErrResourceNotFound, desc.Module)
	}
	id := ComputePipelineID(d.alloc())
	cp := *desc
	d.computePipelines[id] = &cp
	return id, nil
}

func (d *MockDevice) DestroyComputePipeline(id ComputePipelineID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.computePipelines, id)
}

func (d *MockDevice) CreateRenderPipeline(desc *RenderPipelineDescriptor) (RenderPipelineID, error) {
	if desc == nil {
		return InvalidRenderPipelineID, ErrInvalidDescriptor
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	id := RenderPipelineID(d.alloc())
	cp := *desc
	d.renderPipelines[id] = &cp
	return id, nil
}

func (d *MockDevice) DestroyRenderPipeline(id RenderPipelineID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.renderPipelines, id)
}

func (d *MockDevice) CreateCommandEncoder(label string) (CommandEncoder, error) {
	return &MockCommandEncoder{Label: label}, nil
}

func (d *MockDevice) Submit(enc CommandEncoder) error {
	me, ok := enc.(*MockCommandEncoder)
	if !ok {
		return fmt.Errorf("%w: foreign command encoder", ErrInvalidDescriptor)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if me.submitted {
		return fmt.Errorf("%w: encoder already submitted", ErrInvalidDescriptor)
	}
	me.submitted = true
	d.Submitted = append(d.Submitted, me)
	return nil
}

func (d *MockDevice) Limits() gputypes.Limits { return d.limits }

// Destroy drops every live resource.
func (d *MockDevice) Destroy() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buffers = make(map[BufferID]*mockBuffer)
	d.textures = make(map[TextureID]*TextureDescriptor)
	d.views = make(map[TextureViewID]TextureID)
	d.shaders = make(map[ShaderModuleID]string)
	d.bindGroupLayouts = make(map[BindGroupLayoutID]*BindGroupLayoutDescriptor)
	d.pipelineLayouts = make(map[PipelineLayoutID]*PipelineLayoutDescriptor)
	d.bindGroups = make(map[BindGroupID]*BindGroupDescriptor)
	d.computePipelines = make(map[ComputePipelineID]*ComputePipelineDescriptor)
	d.renderPipelines = make(map[RenderPipelineID]*RenderPipelineDescriptor)
}

// MockCommandEncoder records the passes and copies of one submission.
type MockCommandEncoder struct {
	Label         string
	ComputePasses []*MockComputePass
	RenderPasses  []*MockRenderPass
	Copies        []MockBufferCopy

	submitted bool
}

// MockBufferCopy records one CopyBufferToBuffer call.
type MockBufferCopy struct {
	Src, Dst             BufferID
	SrcOffset, DstOffset uint64
	Size                 uint64
}

func (e *MockCommandEncoder) BeginComputePass(label string) (ComputePassEncoder, error) {
	p := &MockComputePass{Label: label, bindGroups: map[uint32]BindGroupID{}}
	e.ComputePasses = append(e.ComputePasses, p)
	return p, nil
}

func (e *MockCommandEncoder) BeginRenderPass(desc *RenderPassDescriptor) (RenderPassEncoder, error) {
	if desc == nil {
		return nil, ErrInvalidDescriptor
	}
	cp := *desc
	p := &MockRenderPass{
		Desc:          &cp,
		bindGroups:    map[uint32]BindGroupID{},
		vertexBuffers: map[uint32]BufferID{},
	}
	e.RenderPasses = append(e.RenderPasses, p)
	return p, nil
}

func (e *MockCommandEncoder) CopyBufferToBuffer(src, dst BufferID, srcOffset, dstOffset, size uint64) error {
	e.Copies = append(e.Copies, MockBufferCopy{src, dst, srcOffset, dstOffset, size})
	return nil
}

// MockComputePass records pipeline/bind state and dispatches.
type MockComputePass struct {
	Label      string
	Dispatches []MockDispatch
	Ended      bool

	pipeline   ComputePipelineID
	bindGroups map[uint32]BindGroupID
}

// MockDispatch is one recorded Dispatch with the state current at the
// time of the call.
type MockDispatch struct {
	Pipeline   ComputePipelineID
	BindGroups map[uint32]BindGroupID
	X, Y, Z    uint32
}

func (p *MockComputePass) SetPipeline(id ComputePipelineID) { p.pipeline = id }

func (p *MockComputePass) SetBindGroup(index uint32, group BindGroupID) {
	p.bindGroups[index] = group
}

func (p *MockComputePass) Dispatch(x, y, z uint32) {
	groups := make(map[uint32]BindGroupID, len(p.bindGroups))
	for k, v := range p.bindGroups {
		groups[k] = v
	}
	p.Dispatches = append(p.Dispatches, MockDispatch{
		Pipeline:   p.pipeline,
		BindGroups: groups,
		X:          x, Y: y, Z: z,
	})
}

func (p *MockComputePass) End() { p.Ended = true }

// MockDrawKind discriminates recorded draw calls.
type MockDrawKind int

const (
	MockDrawVertices MockDrawKind = iota
	MockDrawIndexed
	MockDrawIndexedIndirect
)

// MockDraw is one recorded draw with the state current at the time of
// the call.
type MockDraw struct {
	Kind          MockDrawKind
	Pipeline      RenderPipelineID
	BindGroups    map[uint32]BindGroupID
	VertexBuffers map[uint32]BufferID
	IndexBuffer   BufferID

	VertexCount   uint32
	InstanceCount uint32
	FirstVertex   uint32
	IndexCount    uint32
	FirstIndex    uint32
	BaseVertex    int32
	FirstInstance uint32

	IndirectBuffer BufferID
	IndirectOffset uint64
}

// MockRenderPass records pipeline/bind state and draws.
type MockRenderPass struct {
	Desc  *RenderPassDescriptor
	Draws []MockDraw
	Ended bool

	pipeline      RenderPipelineID
	bindGroups    map[uint32]BindGroupID
	vertexBuffers map[uint32]BufferID
	indexBuffer   BufferID
}

func (p *MockRenderPass) SetPipeline(id RenderPipelineID) { p.pipeline = id }

func (p *MockRenderPass) SetBindGroup(index uint32, group BindGroupID) {
	p.bindGroups[index] = group
}

func (p *MockRenderPass) SetVertexBuffer(slot uint32, buf BufferID, offset uint64) {
	p.vertexBuffers[slot] = buf
}

func (p *MockRenderPass) SetIndexBuffer(buf BufferID, format gputypes.IndexFormat, offset uint64) {
	p.indexBuffer = buf
}

func (p *MockRenderPass) snapshot(kind MockDrawKind) MockDraw {
	groups := make(map[uint32]BindGroupID, len(p.bindGroups))
	for k, v := range p.bindGroups {
		groups[k] = v
	}
	verts := make(map[uint32]BufferID, len(p.vertexBuffers))
	for k, v := range p.vertexBuffers {
		verts[k] = v
	}
	return MockDraw{
		Kind:          kind,
		Pipeline:      p.pipeline,
		BindGroups:    groups,
		VertexBuffers: verts,
		IndexBuffer:   p.indexBuffer,
	}
}

func (p *MockRenderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	d := p.snapshot(MockDrawVertices)
	d.VertexCount = vertexCount
	d.InstanceCount = instanceCount
	d.FirstVertex = firstVertex
	d.FirstInstance = firstInstance
	p.Draws = append(p.Draws, d)
}

func (p *MockRenderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	d := p.snapshot(MockDrawIndexed)
	d.IndexCount = indexCount
	d.InstanceCount = instanceCount
	d.FirstIndex = firstIndex
	d.BaseVertex = baseVertex
	d.FirstInstance = firstInstance
	p.Draws = append(p.Draws, d)
}

func (p *MockRenderPass) DrawIndexedIndirect(buf BufferID, offset uint64) {
	d := p.snapshot(MockDrawIndexedIndirect)
	d.IndirectBuffer = buf
	d.IndirectOffset = offset
	p.Draws = append(p.Draws, d)
}

func (p *MockRenderPass) End() { p.Ended = true }
