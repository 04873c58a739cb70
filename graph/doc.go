// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package graph schedules one frame as a declarative node graph.
//
// Callers rebuild the graph every frame: declare render targets and
// data slots, add nodes with their dependencies, then Compile and
// Execute. Compilation walks backwards from external outputs and
// drops every node that contributes nothing to them. Render targets
// are realized lazily, only when a surviving node first uses one, and
// recycled through a descriptor-keyed cache across frames.
//
// The graph moves through four states: Building, Compiled, Executing
// and Retired. Calling an operation in the wrong state is a
// programmer error and panics.
package graph
