// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpudev defines the backend-agnostic GPU device abstraction
// used by the renderer core.
//
// Resources are identified by opaque uint64 IDs so no backend type
// leaks into the scheduling and visibility code. Descriptor structs
// speak the gputypes vocabulary directly; a backend converts only
// where its native API diverges.
//
// Architecture:
//
//	┌────────────────────────────────────────────┐
//	│         renderer core (cull, graph,        │
//	│              bindset, registry)            │
//	└──────────────────┬─────────────────────────┘
//	                   │ gpudev.Device
//	        ┌──────────┴──────────┐
//	        │                     │
//	┌───────▼───────┐     ┌───────▼───────┐
//	│ backend/wgpu  │     │  MockDevice   │
//	│  (wgpu hal)   │     │  (in-memory)  │
//	└───────────────┘     └───────────────┘
//
// The MockDevice implements the full interface on the CPU, recording
// every pass and draw it sees, so higher layers test without GPU
// hardware.
package gpudev
