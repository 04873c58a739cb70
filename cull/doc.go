// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package cull decides, each frame, which objects are visible and in
// what order they draw.
//
// The pipeline is the same for both execution paths:
//
//  1. Transform every object's bounding sphere into view space and
//     derive its draw-order key.
//  2. Sort: opaque and cutout front-to-back, blended back-to-front.
//  3. Visibility: a five-plane frustum test per object (no far
//     plane). The CPU path emits a draw list plus per-object shading
//     uniforms for survivors. The GPU path packs objects into shader
//     batches, dispatches the culling compute shader, and lets it
//     compact surviving triangles into an indirect draw buffer.
//
// Both paths live behind the Culler interface so frame-graph nodes
// stay path-agnostic.
package cull
