// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cull

const (
	// WorkgroupSize is the compute shader workgroup width. Per-object
	// invocation counts round up to it.
	WorkgroupSize = 64

	// BatchCapacity is the most objects one shader batch may hold.
	BatchCapacity = 256

	// defaultMaxWorkgroups mirrors the minimum guaranteed workgroups
	//-per-dimension limit.
	defaultMaxWorkgroups = 65535
)

// BatchConfig bounds batch construction.
type BatchConfig struct {
	// MaxInvocations caps the invocations of one batch, and so of one
	// dispatch. Must be a multiple of WorkgroupSize.
	MaxInvocations uint32
}

// DefaultBatchConfig fills the largest dispatch a baseline device
// guarantees.
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{MaxInvocations: defaultMaxWorkgroups * WorkgroupSize}
}

func (c *BatchConfig) validate() {
	if c.MaxInvocations == 0 {
		c.MaxInvocations = defaultMaxWorkgroups * WorkgroupSize
	}
	if c.MaxInvocations%WorkgroupSize != 0 {
		c.MaxInvocations -= c.MaxInvocations % WorkgroupSize
	}
	if c.MaxInvocations < WorkgroupSize {
		c.MaxInvocations = WorkgroupSize
	}
}

// BatchedObject is one object's slice of a shader batch. An object
// whose rounded invocation count exceeds the batch limit is split at
// workgroup granularity across consecutive batches, so TriangleOffset
// may be non-zero.
type BatchedObject struct {
	Object          int // index into the prepared order
	TriangleOffset  uint32
	TriangleCount   uint32
	Invocations     uint32 // TriangleCount rounded up to WorkgroupSize
	FirstInvocation uint32 // start within the batch
}

// ShaderBatch is one culling dispatch: a run of draw-order objects
// sharing a material key and bind set.
type ShaderBatch struct {
	MaterialKey      uint64
	BindSet          uint32
	Transparency     Transparency
	Objects          []BatchedObject
	TotalInvocations uint32
}

// Workgroups returns the dispatch width of the batch.
func (b *ShaderBatch) Workgroups() uint32 {
	return (b.TotalInvocations + WorkgroupSize - 1) / WorkgroupSize
}

func roundInvocations(triangles uint32) uint32 {
	if triangles == 0 {
		return 0
	}
	return (triangles + WorkgroupSize - 1) / WorkgroupSize * WorkgroupSize
}

// buildBatches packs draw-order objects into shader batches. A batch
// closes when the material key or bind set changes, when it holds
// BatchCapacity objects, or when the next slice would push it past
// cfg.MaxInvocations.
func buildBatches(prepared []preparedObject, in *Input, cfg BatchConfig) []ShaderBatch {
	cfg.validate()

	var batches []ShaderBatch
	var cur *ShaderBatch

	open := func(p *preparedObject) {
		obj := &in.Objects[p.object]
		batches = append(batches, ShaderBatch{
			MaterialKey:  obj.MaterialKey,
			BindSet:      obj.BindSet,
			Transparency: obj.Transparency,
		})
		cur = &batches[len(batches)-1]
	}

	for pi := range prepared {
		p := &prepared[pi]
		obj := &in.Objects[p.object]
		triangles := obj.IndexCount / 3
		if triangles == 0 {
			continue
		}

		offset := uint32(0)
		for offset < triangles {
			chunk := triangles - offset
			if roundInvocations(chunk) > cfg.MaxInvocations {
				// One invocation tests one triangle, so the largest
				// slice is exactly the invocation cap.
				chunk = cfg.MaxInvocations
			}
			inv := roundInvocations(chunk)

			if cur == nil ||
				cur.MaterialKey != obj.MaterialKey ||
				cur.BindSet != obj.BindSet ||
				len(cur.Objects) == BatchCapacity ||
				cur.TotalInvocations+inv > cfg.MaxInvocations {
				open(p)
			}
			cur.Objects = append(cur.Objects, BatchedObject{
				Object:          pi,
				TriangleOffset:  offset,
				TriangleCount:   chunk,
				Invocations:     inv,
				FirstInvocation: cur.TotalInvocations,
			})
			cur.TotalInvocations += inv
			offset += chunk
		}
	}
	return batches
}
