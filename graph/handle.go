// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package graph

import (
	"github.com/gogpu/gputypes"

	"github.com/BVE-Reborn/rend3-sub001/gpudev"
)

// RenderTargetHandle names a declared render target. Valid only for
// the graph that issued it, for one frame.
type RenderTargetHandle struct{ idx int }

// DataHandle names a transient data slot passed between nodes. Valid
// only for the graph that issued it, for one frame.
type DataHandle struct{ idx int }

// Resource is either handle kind, accepted by the node builder's
// dependency declarations.
type Resource interface {
	resourceKey() resourceKey
}

type resourceKind uint8

const (
	resourceTarget resourceKind = iota
	resourceData
)

type resourceKey struct {
	kind resourceKind
	idx  int
}

func (h RenderTargetHandle) resourceKey() resourceKey {
	return resourceKey{kind: resourceTarget, idx: h.idx}
}

func (h DataHandle) resourceKey() resourceKey {
	return resourceKey{kind: resourceData, idx: h.idx}
}

// TargetDescriptor describes a render target. Descriptors are
// comparable; the transient texture cache is keyed by them.
type TargetDescriptor struct {
	Label       string
	Width       uint32
	Height      uint32
	Format      gputypes.TextureFormat
	SampleCount uint32
	Usage       gputypes.TextureUsage
}

// renderTarget is the per-frame state of one declared target.
type renderTarget struct {
	desc     TargetDescriptor
	imported bool
	view     gpudev.TextureViewID // realized lazily unless imported
	realized bool
	cleared  bool // first pass clears, later passes load
}

// dataSlot is the per-frame state of one data handle.
type dataSlot struct {
	producer int // node index, -1 until declared
	value    any
	written  bool
}

// ColorTarget attaches one declared target to a node's render pass.
type ColorTarget struct {
	Target RenderTargetHandle
	Clear  gputypes.Color
}

// DepthTarget attaches a depth target to a node's render pass.
type DepthTarget struct {
	Target RenderTargetHandle
	Clear  float32
}
