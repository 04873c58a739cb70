// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package rend3 schedules frames for a real time 3D renderer: it owns
// the scene registries, deduplicates material bind groups, runs
// frustum culling on the CPU or the GPU, and executes each frame as a
// declarative node graph.
//
// The package is the facade. The pieces live in subpackages and are
// usable on their own:
//
//   - registry: weak refcounted handles over dense, swap-removed
//     storage, optionally partitioned by archetype.
//   - bindset: refcounted deduplication of per-material texture bind
//     groups with prebuilt layouts.
//   - cull: frustum visibility, draw sorting and batching, with a CPU
//     path and a GPU compute path producing indirect draws.
//   - graph: a per-frame render graph with dead node elimination and
//     lazily realized render targets.
//   - gpudev: the device abstraction the rest of the module records
//     against, with a mock for tests.
//
// A minimal frame:
//
//	r, err := rend3.NewRenderer(dev, rend3.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer r.Destroy()
//
//	mesh, _ := r.AddMesh(rend3.MeshDescriptor{Vertices: verts, Indices: idx})
//	mat, _ := r.AddMaterial(rend3.MaterialDescriptor{})
//	r.AddObject(rend3.ObjectDescriptor{
//		Mesh:      mesh,
//		Material:  mat,
//		Transform: mgl32.Translate3D(0, 0, -4),
//	})
//
//	cam := rend3.DefaultCamera()
//	cam.LookAt(mgl32.Vec3{0, 2, 5}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
//	_, err = r.Render(rend3.FrameOptions{Camera: cam, Width: 1280, Height: 720})
//
// Handles returned by the Add methods are weak references: releasing
// the last one marks the resource dead, and the renderer reclaims it
// at the start of the next frame.
package rend3
