// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cull

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/BVE-Reborn/rend3-sub001/gpudev"
	"github.com/BVE-Reborn/rend3-sub001/internal/parallel"
)

//go:embed cull.wgsl
var cullShaderWGSL string

const (
	gpuObjectRecordSize  = 176
	gpuBatchUniformsSize = 96
)

// GPUCuller runs the visibility pipeline as a compute pass. Objects
// are packed into shader batches; the embedded shader tests triangles
// against the frustum and compacts survivors into an indirect draw
// buffer, one record per batch.
type GPUCuller struct {
	dev gpudev.Device
	cfg BatchConfig
	log *slog.Logger

	pool *parallel.WorkerPool

	module     gpudev.ShaderModuleID
	layout     gpudev.BindGroupLayoutID
	pipeLayout gpudev.PipelineLayoutID
	pipeline   gpudev.ComputePipelineID

	// Placement hints persist across frames on the GPU.
	hintBuf gpudev.BufferID
	hintCap int
}

// NewGPUCuller compiles the culling shader and builds its pipeline on
// dev.
func NewGPUCuller(dev gpudev.Device, cfg BatchConfig) (*GPUCuller, error) {
	cfg.validate()
	c := &GPUCuller{dev: dev, cfg: cfg, log: slog.New(slog.DiscardHandler), pool: parallel.NewWorkerPool(0)}

	var err error
	c.module, err = dev.CreateShaderModule("cull", cullShaderWGSL)
	if err != nil {
		c.Destroy()
		return nil, fmt.Errorf("cull: shader module: %w", err)
	}

	storage := func(binding uint32, readOnly bool) gputypes.BindGroupLayoutEntry {
		t := gputypes.BufferBindingTypeStorage
		if readOnly {
			t = gputypes.BufferBindingTypeReadOnlyStorage
		}
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: t},
		}
	}
	c.layout, err = dev.CreateBindGroupLayout(&gpudev.BindGroupLayoutDescriptor{
		Label: "cull bind group layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageCompute,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			storage(1, true),  // object records
			storage(2, true),  // source indices
			storage(3, false), // indirect args
			storage(4, false), // output indices
			storage(5, false), // output object ids
			storage(6, false), // placement hints
		},
	})
	if err != nil {
		c.Destroy()
		return nil, fmt.Errorf("cull: bind group layout: %w", err)
	}

	c.pipeLayout, err = dev.CreatePipelineLayout(&gpudev.PipelineLayoutDescriptor{
		Label:            "cull pipeline layout",
		BindGroupLayouts: []gpudev.BindGroupLayoutID{c.layout},
	})
	if err != nil {
		c.Destroy()
		return nil, fmt.Errorf("cull: pipeline layout: %w", err)
	}

	c.pipeline, err = dev.CreateComputePipeline(&gpudev.ComputePipelineDescriptor{
		Label:      "cull pipeline",
		Layout:     c.pipeLayout,
		Module:     c.module,
		EntryPoint: "cs_main",
	})
	if err != nil {
		c.Destroy()
		return nil, fmt.Errorf("cull: compute pipeline: %w", err)
	}
	return c, nil
}

// SetLogger replaces the culler's logger. Pass nil to silence it.
func (c *GPUCuller) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	c.log = l
}

// Cull records the culling compute pass for in onto enc. The returned
// output's buffers are populated once the encoder is submitted. An
// empty object set still produces one zeroed indirect record so
// downstream passes always have a valid buffer to bind.
func (c *GPUCuller) Cull(enc gpudev.CommandEncoder, in *Input) (*Output, error) {
	prepared := prepare(in, c.pool)
	batches := buildBatches(prepared, in, c.cfg)

	if len(batches) == 0 {
		return c.emptyOutput()
	}
	if in.SourceIndices == gpudev.InvalidBufferID {
		panic("cull: GPU culling requires Input.SourceIndices")
	}

	out := &Output{GPU: true}
	fail := func(stage string, err error) (*Output, error) {
		c.Release(out)
		return nil, fmt.Errorf("%w: %s: %v", ErrBufferAlloc, stage, err)
	}

	// Index capacity per batch, as a prefix sum over rounded
	// invocation counts. Capacity bounds survivors from above.
	firstIndex := make([]uint32, len(batches))
	var totalIndices uint32
	for i := range batches {
		firstIndex[i] = totalIndices
		totalIndices += batches[i].TotalInvocations * 3
	}

	uniforms := make([]PerObjectUniform, len(in.Objects))
	for i := range prepared {
		uniforms[prepared[i].object] = prepared[i].uniform()
	}

	var err error
	out.UniformBuffer, err = c.dev.CreateBuffer(&gpudev.BufferDescriptor{
		Label: "cull uniforms",
		Size:  uint64(len(uniforms) * PerObjectUniformSize),
		Usage: gpudev.BufferUsageStorage | gpudev.BufferUsageCopyDst,
	})
	if err != nil {
		return fail("uniform buffer", err)
	}
	if err := c.dev.WriteBuffer(out.UniformBuffer, 0, encodeUniforms(uniforms)); err != nil {
		return fail("uniform upload", err)
	}

	out.IndirectBuffer, err = c.dev.CreateBuffer(&gpudev.BufferDescriptor{
		Label: "cull indirect args",
		Size:  uint64(len(batches) * IndirectArgsSize),
		Usage: gpudev.BufferUsageIndirect | gpudev.BufferUsageStorage | gpudev.BufferUsageCopyDst,
	})
	if err != nil {
		return fail("indirect buffer", err)
	}
	if err := c.dev.WriteBuffer(out.IndirectBuffer, 0, encodeIndirectArgs(firstIndex)); err != nil {
		return fail("indirect upload", err)
	}

	out.IndexBuffer, err = c.dev.CreateBuffer(&gpudev.BufferDescriptor{
		Label: "cull output indices",
		Size:  uint64(totalIndices) * 4,
		Usage: gpudev.BufferUsageIndex | gpudev.BufferUsageStorage,
	})
	if err != nil {
		return fail("index buffer", err)
	}
	out.IndexCapacity = totalIndices

	out.ObjectIDBuffer, err = c.dev.CreateBuffer(&gpudev.BufferDescriptor{
		Label: "cull output object ids",
		Size:  uint64(totalIndices/3) * 4,
		Usage: gpudev.BufferUsageStorage,
	})
	if err != nil {
		return fail("object id buffer", err)
	}

	if err := c.ensureHints(len(in.Objects)); err != nil {
		return fail("placement hints", err)
	}

	pass, err := enc.BeginComputePass("culling")
	if err != nil {
		c.Release(out)
		return nil, fmt.Errorf("cull: compute pass: %w", err)
	}
	pass.SetPipeline(c.pipeline)
	frustum := FrustumFromMatrix(in.Proj)

	for bi := range batches {
		b := &batches[bi]

		ubuf, err := c.dev.CreateBuffer(&gpudev.BufferDescriptor{
			Label: "cull batch uniforms",
			Size:  gpuBatchUniformsSize,
			Usage: gpudev.BufferUsageUniform | gpudev.BufferUsageCopyDst,
		})
		if err != nil {
			return fail("batch uniforms", err)
		}
		out.frameBuffers = append(out.frameBuffers, ubuf)
		if err := c.dev.WriteBuffer(ubuf, 0, encodeBatchUniforms(b, frustum, firstIndex[bi], uint32(bi))); err != nil {
			return fail("batch uniform upload", err)
		}

		rbuf, err := c.dev.CreateBuffer(&gpudev.BufferDescriptor{
			Label: "cull batch objects",
			Size:  uint64(len(b.Objects) * gpuObjectRecordSize),
			Usage: gpudev.BufferUsageStorage | gpudev.BufferUsageCopyDst,
		})
		if err != nil {
			return fail("batch objects", err)
		}
		out.frameBuffers = append(out.frameBuffers, rbuf)
		if err := c.dev.WriteBuffer(rbuf, 0, encodeBatchObjects(b, prepared, in)); err != nil {
			return fail("batch object upload", err)
		}

		group, err := c.dev.CreateBindGroup(&gpudev.BindGroupDescriptor{
			Label:  "cull batch bind group",
			Layout: c.layout,
			Entries: []gpudev.BindGroupEntry{
				{Binding: 0, Buffer: ubuf},
				{Binding: 1, Buffer: rbuf},
				{Binding: 2, Buffer: in.SourceIndices},
				{Binding: 3, Buffer: out.IndirectBuffer},
				{Binding: 4, Buffer: out.IndexBuffer},
				{Binding: 5, Buffer: out.ObjectIDBuffer},
				{Binding: 6, Buffer: c.hintBuf},
			},
		})
		if err != nil {
			return fail("batch bind group", err)
		}
		out.bindGroups = append(out.bindGroups, group)

		pass.SetBindGroup(0, group)
		pass.Dispatch(b.Workgroups(), 1, 1)

		out.Batches = append(out.Batches, BatchDraw{
			MaterialKey:    b.MaterialKey,
			BindSet:        b.BindSet,
			Transparency:   b.Transparency,
			IndirectOffset: uint64(bi) * IndirectArgsSize,
		})
	}
	pass.End()

	c.log.Debug("gpu cull recorded",
		"objects", len(in.Objects), "batches", len(batches), "indexCapacity", totalIndices)
	return out, nil
}

// emptyOutput allocates the degenerate frame: one zeroed indirect
// record plus minimal valid sibling buffers.
func (c *GPUCuller) emptyOutput() (*Output, error) {
	out := &Output{GPU: true}
	fail := func(stage string, err error) (*Output, error) {
		c.Release(out)
		return nil, fmt.Errorf("%w: %s: %v", ErrBufferAlloc, stage, err)
	}

	var err error
	out.IndirectBuffer, err = c.dev.CreateBuffer(&gpudev.BufferDescriptor{
		Label: "cull dummy indirect",
		Size:  IndirectArgsSize,
		Usage: gpudev.BufferUsageIndirect | gpudev.BufferUsageStorage | gpudev.BufferUsageCopyDst,
	})
	if err != nil {
		return fail("dummy indirect", err)
	}
	if err := c.dev.WriteBuffer(out.IndirectBuffer, 0, make([]byte, IndirectArgsSize)); err != nil {
		return fail("dummy indirect upload", err)
	}
	out.IndexBuffer, err = c.dev.CreateBuffer(&gpudev.BufferDescriptor{
		Label: "cull dummy indices",
		Size:  12,
		Usage: gpudev.BufferUsageIndex | gpudev.BufferUsageStorage,
	})
	if err != nil {
		return fail("dummy indices", err)
	}
	out.IndexCapacity = 3
	out.ObjectIDBuffer, err = c.dev.CreateBuffer(&gpudev.BufferDescriptor{
		Label: "cull dummy object ids",
		Size:  4,
		Usage: gpudev.BufferUsageStorage,
	})
	if err != nil {
		return fail("dummy object ids", err)
	}
	out.UniformBuffer, err = c.dev.CreateBuffer(&gpudev.BufferDescriptor{
		Label: "cull dummy uniforms",
		Size:  PerObjectUniformSize,
		Usage: gpudev.BufferUsageStorage | gpudev.BufferUsageCopyDst,
	})
	if err != nil {
		return fail("dummy uniforms", err)
	}
	c.log.Warn("gpu cull of empty object set, emitting dummy record")
	return out, nil
}

// ensureHints grows the persistent placement hint buffer to hold at
// least n objects, zeroing it on reallocation.
func (c *GPUCuller) ensureHints(n int) error {
	if n == 0 {
		n = 1
	}
	if c.hintBuf != gpudev.InvalidBufferID && n <= c.hintCap {
		return nil
	}
	if c.hintBuf != gpudev.InvalidBufferID {
		c.dev.DestroyBuffer(c.hintBuf)
		c.hintBuf = gpudev.InvalidBufferID
	}
	grown := c.hintCap * 2
	if grown < n {
		grown = n
	}
	buf, err := c.dev.CreateBuffer(&gpudev.BufferDescriptor{
		Label: "cull placement hints",
		Size:  uint64(grown) * 4,
		Usage: gpudev.BufferUsageStorage | gpudev.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	if err := c.dev.WriteBuffer(buf, 0, make([]byte, grown*4)); err != nil {
		c.dev.DestroyBuffer(buf)
		return err
	}
	c.hintBuf = buf
	c.hintCap = grown
	return nil
}

// Release returns the output's per-frame buffers and bind groups to
// the device. The placement hint buffer persists.
func (c *GPUCuller) Release(out *Output) {
	if out == nil {
		return
	}
	for _, g := range out.bindGroups {
		c.dev.DestroyBindGroup(g)
	}
	out.bindGroups = nil
	for _, b := range out.frameBuffers {
		c.dev.DestroyBuffer(b)
	}
	out.frameBuffers = nil
	for _, b := range []gpudev.BufferID{
		out.UniformBuffer, out.IndirectBuffer, out.IndexBuffer, out.ObjectIDBuffer,
	} {
		if b != gpudev.InvalidBufferID {
			c.dev.DestroyBuffer(b)
		}
	}
	out.UniformBuffer = gpudev.InvalidBufferID
	out.IndirectBuffer = gpudev.InvalidBufferID
	out.IndexBuffer = gpudev.InvalidBufferID
	out.ObjectIDBuffer = gpudev.InvalidBufferID
}

// Destroy drops the culler's pipeline, persistent buffers and the
// transform worker pool. Safe to call more than once.
func (c *GPUCuller) Destroy() {
	c.pool.Close()
	if c.hintBuf != gpudev.InvalidBufferID {
		c.dev.DestroyBuffer(c.hintBuf)
		c.hintBuf = gpudev.InvalidBufferID
	}
	if c.pipeline != gpudev.InvalidComputePipelineID {
		c.dev.DestroyComputePipeline(c.pipeline)
		c.pipeline = gpudev.InvalidComputePipelineID
	}
	if c.pipeLayout != gpudev.InvalidPipelineLayoutID {
		c.dev.DestroyPipelineLayout(c.pipeLayout)
		c.pipeLayout = gpudev.InvalidPipelineLayoutID
	}
	if c.layout != gpudev.InvalidBindGroupLayoutID {
		c.dev.DestroyBindGroupLayout(c.layout)
		c.layout = gpudev.InvalidBindGroupLayoutID
	}
	if c.module != gpudev.InvalidShaderModuleID {
		c.dev.DestroyShaderModule(c.module)
		c.module = gpudev.InvalidShaderModuleID
	}
}

func encodeIndirectArgs(firstIndex []uint32) []byte {
	out := make([]byte, len(firstIndex)*IndirectArgsSize)
	for i, fi := range firstIndex {
		base := i * IndirectArgsSize
		// index_count starts at zero; the shader owns it.
		binary.LittleEndian.PutUint32(out[base+4:], 1) // instance_count
		binary.LittleEndian.PutUint32(out[base+8:], fi)
	}
	return out
}

func encodeBatchUniforms(b *ShaderBatch, f Frustum, batchFirstIndex, batchIndex uint32) []byte {
	out := make([]byte, gpuBatchUniformsSize)
	for i, p := range f.Planes() {
		base := i * 16
		binary.LittleEndian.PutUint32(out[base:], math.Float32bits(p.Normal.X()))
		binary.LittleEndian.PutUint32(out[base+4:], math.Float32bits(p.Normal.Y()))
		binary.LittleEndian.PutUint32(out[base+8:], math.Float32bits(p.Normal.Z()))
		binary.LittleEndian.PutUint32(out[base+12:], math.Float32bits(p.D))
	}
	binary.LittleEndian.PutUint32(out[80:], uint32(len(b.Objects)))
	binary.LittleEndian.PutUint32(out[84:], b.TotalInvocations)
	binary.LittleEndian.PutUint32(out[88:], batchFirstIndex)
	binary.LittleEndian.PutUint32(out[92:], batchIndex)
	return out
}

func encodeBatchObjects(b *ShaderBatch, prepared []preparedObject, in *Input) []byte {
	out := make([]byte, len(b.Objects)*gpuObjectRecordSize)
	for i := range b.Objects {
		bo := &b.Objects[i]
		p := &prepared[bo.Object]
		obj := &in.Objects[p.object]
		base := i * gpuObjectRecordSize

		encodeMat4(out[base:], p.mv)
		encodeMat4(out[base+64:], p.mvp)
		binary.LittleEndian.PutUint32(out[base+128:], math.Float32bits(p.viewSphere.Center.X()))
		binary.LittleEndian.PutUint32(out[base+132:], math.Float32bits(p.viewSphere.Center.Y()))
		binary.LittleEndian.PutUint32(out[base+136:], math.Float32bits(p.viewSphere.Center.Z()))
		binary.LittleEndian.PutUint32(out[base+140:], math.Float32bits(p.viewSphere.Radius))
		for j := 0; j < 3; j++ {
			binary.LittleEndian.PutUint32(out[base+144+j*4:], math.Float32bits(p.invSqScale[j]))
		}
		binary.LittleEndian.PutUint32(out[base+156:], obj.FirstIndex+bo.TriangleOffset*3)
		binary.LittleEndian.PutUint32(out[base+160:], bo.TriangleCount*3)
		binary.LittleEndian.PutUint32(out[base+164:], uint32(obj.BaseVertex))
		binary.LittleEndian.PutUint32(out[base+168:], bo.FirstInvocation)
		binary.LittleEndian.PutUint32(out[base+172:], uint32(p.object))
	}
	return out
}
