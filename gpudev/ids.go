// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpudev

// Resource IDs are opaque handles allocated by a Device. The zero
// value is never a live resource.
type (
	// BufferID identifies a GPU buffer.
	BufferID uint64
	// TextureID identifies a GPU texture.
	TextureID uint64
	// TextureViewID identifies a view onto a texture.
	TextureViewID uint64
	// ShaderModuleID identifies a compiled shader module.
	ShaderModuleID uint64
	// BindGroupLayoutID identifies a bind group layout.
	BindGroupLayoutID uint64
	// PipelineLayoutID identifies a pipeline layout.
	PipelineLayoutID uint64
	// BindGroupID identifies a bind group.
	BindGroupID uint64
	// ComputePipelineID identifies a compute pipeline.
	ComputePipelineID uint64
	// RenderPipelineID identifies a render pipeline.
	RenderPipelineID uint64
)

// Invalid IDs. A Device never allocates these.
const (
	InvalidBufferID          BufferID          = 0
	InvalidTextureID         TextureID         = 0
	InvalidTextureViewID     TextureViewID     = 0
	InvalidShaderModuleID    ShaderModuleID    = 0
	InvalidBindGroupLayoutID BindGroupLayoutID = 0
	InvalidPipelineLayoutID  PipelineLayoutID  = 0
	InvalidBindGroupID       BindGroupID       = 0
	InvalidComputePipelineID ComputePipelineID = 0
	InvalidRenderPipelineID  RenderPipelineID  = 0
)
