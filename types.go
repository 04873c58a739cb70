// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rend3

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/BVE-Reborn/rend3-sub001/bindset"
	"github.com/BVE-Reborn/rend3-sub001/cull"
	"github.com/BVE-Reborn/rend3-sub001/gpudev"
	"github.com/BVE-Reborn/rend3-sub001/registry"
)

// Mesh is a registered mesh: a range in the renderer's shared
// geometry buffers plus its model space bounds.
type Mesh struct {
	FirstIndex  uint32
	IndexCount  uint32
	BaseVertex  int32
	VertexCount uint32
	Bounds      cull.BoundingSphere
}

// MeshDescriptor describes a mesh to register. Indices are relative
// to the mesh's own vertices; the renderer assigns the base vertex.
type MeshDescriptor struct {
	Label    string
	Vertices []mgl32.Vec3
	Indices  []uint32
}

// Material is a registered material: a sort key, a blending class and
// the deduplicated texture set.
type Material struct {
	// Key orders draws; materials registered together sort together.
	Key          uint64
	Transparency cull.Transparency
	// Set is nil for untextured materials.
	Set *bindset.Set
}

// MaterialDescriptor describes a material to register. The texture
// list is deduplicated against every other material's list.
type MaterialDescriptor struct {
	Label        string
	Transparency cull.Transparency
	Textures     []gpudev.TextureViewID
}

// ObjectDescriptor places a mesh in the scene with a material. The
// object holds references on both, keeping them alive while it lives.
type ObjectDescriptor struct {
	Mesh      MeshHandle
	Material  MaterialHandle
	Transform mgl32.Mat4
}

// Handle aliases for the renderer's registries.
type (
	MeshHandle     = registry.Handle[Mesh]
	MaterialHandle = registry.Handle[Material]
	ObjectHandle   = registry.Handle[cull.Object]
)
