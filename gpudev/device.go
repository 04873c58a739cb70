// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpudev

import (
	"errors"

	"github.com/gogpu/gputypes"
)

// Errors returned by Device implementations.
var (
	// ErrInvalidDescriptor indicates a malformed resource descriptor.
	ErrInvalidDescriptor = errors.New("gpudev: invalid descriptor")
	// ErrResourceNotFound indicates an ID that is not a live resource.
	ErrResourceNotFound = errors.New("gpudev: resource not found")
	// ErrOutOfMemory indicates the backend could not allocate.
	ErrOutOfMemory = errors.New("gpudev: out of memory")
	// ErrShaderCompilation indicates WGSL compilation failed.
	ErrShaderCompilation = errors.New("gpudev: shader compilation failed")
)

// Device is the GPU interface the renderer core programs against.
// Destroy methods are idempotent: destroying an unknown or already
// destroyed ID is a no-op.
type Device interface {
	CreateBuffer(desc *BufferDescriptor) (BufferID, error)
	WriteBuffer(id BufferID, offset uint64, data []byte) error
	ReadBuffer(id BufferID, offset uint64, dst []byte) error
	DestroyBuffer(id BufferID)

	CreateTexture(desc *TextureDescriptor) (TextureID, error)
	CreateTextureView(texture TextureID, desc *TextureViewDescriptor) (TextureViewID, error)
	DestroyTextureView(id TextureViewID)
	DestroyTexture(id TextureID)

	CreateShaderModule(label, wgsl string) (ShaderModuleID, error)
	DestroyShaderModule(id ShaderModuleID)

	CreateBindGroupLayout(desc *BindGroupLayoutDescriptor) (BindGroupLayoutID, error)
	DestroyBindGroupLayout(id BindGroupLayoutID)
	CreatePipelineLayout(desc *PipelineLayoutDescriptor) (PipelineLayoutID, error)
	DestroyPipelineLayout(id PipelineLayoutID)
	CreateBindGroup(desc *BindGroupDescriptor) (BindGroupID, error)
	DestroyBindGroup(id BindGroupID)

	CreateComputePipeline(desc *ComputePipelineDescriptor) (ComputePipelineID, error)
	DestroyComputePipeline(id ComputePipelineID)
	CreateRenderPipeline(desc *RenderPipelineDescriptor) (RenderPipelineID, error)
	DestroyRenderPipeline(id RenderPipelineID)

	// CreateCommandEncoder opens a new command stream. The encoder is
	// single-use: it is consumed by Submit.
	CreateCommandEncoder(label string) (CommandEncoder, error)
	// Submit finishes the encoder, submits its work and blocks until
	// the GPU signals completion.
	Submit(enc CommandEncoder) error

	Limits() gputypes.Limits

	// Destroy releases every resource still alive on the device.
	Destroy()
}

// CommandEncoder records passes and transfer operations for one
// submission.
type CommandEncoder interface {
	BeginComputePass(label string) (ComputePassEncoder, error)
	BeginRenderPass(desc *RenderPassDescriptor) (RenderPassEncoder, error)
	CopyBufferToBuffer(src, dst BufferID, srcOffset, dstOffset, size uint64) error
}

// ComputePassEncoder records one compute pass.
type ComputePassEncoder interface {
	SetPipeline(p ComputePipelineID)
	SetBindGroup(index uint32, group BindGroupID)
	Dispatch(x, y, z uint32)
	End()
}

// RenderPassEncoder records one render pass.
type RenderPassEncoder interface {
	SetPipeline(p RenderPipelineID)
	SetBindGroup(index uint32, group BindGroupID)
	SetVertexBuffer(slot uint32, buf BufferID, offset uint64)
	SetIndexBuffer(buf BufferID, format gputypes.IndexFormat, offset uint64)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)
	DrawIndexedIndirect(buf BufferID, offset uint64)
	End()
}
