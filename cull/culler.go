// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cull

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/BVE-Reborn/rend3-sub001/gpudev"
)

// Errors returned by cullers.
var (
	// ErrBufferAlloc indicates a per-frame GPU buffer could not be
	// allocated.
	ErrBufferAlloc = errors.New("cull: frame buffer allocation failed")
)

// DrawCall is one CPU-path draw: a mesh range and the uniform slot of
// its object.
type DrawCall struct {
	MaterialKey  uint64
	BindSet      uint32
	Transparency Transparency
	FirstIndex   uint32
	IndexCount   uint32
	BaseVertex   int32
	Object       uint32 // slot into the frame's uniform array
}

// BatchDraw is one GPU-path draw: an indirect record filled by the
// culling shader.
type BatchDraw struct {
	MaterialKey    uint64
	BindSet        uint32
	Transparency   Transparency
	IndirectOffset uint64 // byte offset of the record in IndirectBuffer
}

// Output is the result of one culling request. The CPU path fills
// Draws and Uniforms; the GPU path fills the buffer IDs and Batches.
// Either way UniformBuffer holds the per-object uniforms the draw
// pass binds.
type Output struct {
	Draws         []DrawCall
	Uniforms      []PerObjectUniform
	UniformBuffer gpudev.BufferID

	GPU            bool
	IndirectBuffer gpudev.BufferID
	IndexBuffer    gpudev.BufferID
	ObjectIDBuffer gpudev.BufferID
	Batches        []BatchDraw
	// IndexCapacity is the slot capacity of IndexBuffer, including
	// workgroup rounding slack.
	IndexCapacity uint32

	// Per-frame internals owned by the culler that produced the
	// output, reclaimed by its Release.
	frameBuffers []gpudev.BufferID
	bindGroups   []gpudev.BindGroupID
}

// Culler runs visibility for one archetype per frame.
//
// Cull may record work on enc; the output's buffers are valid once
// the encoder is submitted. Release returns the output's per-frame
// buffers to the device; Destroy drops the culler's own pipelines.
type Culler interface {
	Cull(enc gpudev.CommandEncoder, in *Input) (*Output, error)
	Release(out *Output)
	Destroy()
}

// IndirectArgsSize is the byte size of one indexed indirect draw
// record: five uint32 fields.
const IndirectArgsSize = 20

var (
	_ Culler = (*CPUCuller)(nil)
	_ Culler = (*GPUCuller)(nil)
)

func encodeMat4(dst []byte, m mgl32.Mat4) {
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(m[i]))
	}
}

func encodeUniforms(us []PerObjectUniform) []byte {
	out := make([]byte, len(us)*PerObjectUniformSize)
	for i := range us {
		base := i * PerObjectUniformSize
		encodeMat4(out[base:], us[i].ModelView)
		encodeMat4(out[base+64:], us[i].ModelViewProj)
		for j := 0; j < 3; j++ {
			binary.LittleEndian.PutUint32(out[base+128+j*4:], math.Float32bits(us[i].InvSquaredScale[j]))
		}
	}
	return out
}
