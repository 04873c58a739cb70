// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu implements gpudev.Device on top of gogpu/wgpu's
// hardware abstraction layer.
//
// An Adapter owns one hal.Device and hal.Queue and maps the opaque
// gpudev resource IDs onto hal objects through mutex-guarded tables.
// WGSL shaders are compiled to SPIR-V with gogpu/naga before they
// reach the driver. Open acquires a standalone device; NewAdapter
// wraps a device and queue owned by the caller, for example one
// shared with a windowing layer.
package wgpu
