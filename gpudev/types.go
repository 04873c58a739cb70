// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpudev

import (
	"github.com/gogpu/gputypes"
)

// BufferUsage is a bitmask of allowed buffer operations. The bit
// values match WebGPU so backends can translate with a plain mask
// walk.
type BufferUsage uint32

const (
	BufferUsageMapRead  BufferUsage = 1 << 0
	BufferUsageMapWrite BufferUsage = 1 << 1
	BufferUsageCopySrc  BufferUsage = 1 << 2
	BufferUsageCopyDst  BufferUsage = 1 << 3
	BufferUsageIndex    BufferUsage = 1 << 4
	BufferUsageVertex   BufferUsage = 1 << 5
	BufferUsageUniform  BufferUsage = 1 << 6
	BufferUsageStorage  BufferUsage = 1 << 7
	BufferUsageIndirect BufferUsage = 1 << 8
)

// BufferDescriptor describes a buffer allocation.
type BufferDescriptor struct {
	Label string
	Size  uint64
	Usage BufferUsage
}

// TextureDescriptor describes a texture allocation.
type TextureDescriptor struct {
	Label         string
	Size          gputypes.Extent3D
	MipLevelCount uint32
	SampleCount   uint32
	Dimension     gputypes.TextureDimension
	Format        gputypes.TextureFormat
	Usage         gputypes.TextureUsage
}

// TextureViewDescriptor describes a view onto a texture. Zero fields
// inherit from the texture.
type TextureViewDescriptor struct {
	Label         string
	Format        gputypes.TextureFormat
	BaseMipLevel  uint32
	MipLevelCount uint32
}

// BindGroupLayoutDescriptor describes the shape of a bind group.
type BindGroupLayoutDescriptor struct {
	Label   string
	Entries []gputypes.BindGroupLayoutEntry
}

// PipelineLayoutDescriptor lists the bind group layouts of a pipeline.
type PipelineLayoutDescriptor struct {
	Label            string
	BindGroupLayouts []BindGroupLayoutID
}

// BindGroupEntry binds one resource to one binding slot. Exactly one
// of Buffer or TextureView is set.
type BindGroupEntry struct {
	Binding     uint32
	Buffer      BufferID
	Offset      uint64
	Size        uint64 // 0 binds the whole buffer
	TextureView TextureViewID
}

// BindGroupDescriptor describes a bind group.
type BindGroupDescriptor struct {
	Label   string
	Layout  BindGroupLayoutID
	Entries []BindGroupEntry
}

// ComputePipelineDescriptor describes a compute pipeline.
type ComputePipelineDescriptor struct {
	Label      string
	Layout     PipelineLayoutID
	Module     ShaderModuleID
	EntryPoint string
}

// DepthStencilState describes depth testing for a render pipeline.
type DepthStencilState struct {
	Format            gputypes.TextureFormat
	DepthWriteEnabled bool
	DepthCompare      gputypes.CompareFunction
}

// RenderPipelineDescriptor describes a render pipeline.
type RenderPipelineDescriptor struct {
	Label          string
	Layout         PipelineLayoutID
	VertexModule   ShaderModuleID
	VertexEntry    string
	VertexBuffers  []gputypes.VertexBufferLayout
	FragmentModule ShaderModuleID
	FragmentEntry  string
	Targets        []gputypes.ColorTargetState
	DepthStencil   *DepthStencilState
	Primitive      gputypes.PrimitiveState
	SampleCount    uint32
}

// RenderPassColorAttachment attaches a color target to a pass.
type RenderPassColorAttachment struct {
	View       TextureViewID
	LoadOp     gputypes.LoadOp
	StoreOp    gputypes.StoreOp
	ClearValue gputypes.Color
}

// RenderPassDepthStencilAttachment attaches a depth target to a pass.
type RenderPassDepthStencilAttachment struct {
	View            TextureViewID
	DepthLoadOp     gputypes.LoadOp
	DepthStoreOp    gputypes.StoreOp
	DepthClearValue float32
}

// RenderPassDescriptor describes one render pass.
type RenderPassDescriptor struct {
	Label            string
	ColorAttachments []RenderPassColorAttachment
	DepthStencil     *RenderPassDepthStencilAttachment
}
