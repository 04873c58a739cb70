// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package registry provides refcounted resource handles and the dense
// storage behind them.
//
// Public handles are strong references: cloning bumps a shared count,
// releasing drops it. Storage holds only weak references, so dropping
// the last clone marks a slot dead without touching the registry.
// Dead slots are reclaimed in one explicit per-frame sweep
// (ReclaimDead) using swap-remove compaction; the sweep reports every
// relocation so callers can patch dependent dense indices.
package registry

import (
	"fmt"
	"sync/atomic"
)

// RawHandle is the untyped allocation index of a handle. Allocation
// indices increase monotonically per registry and are never reused.
type RawHandle uint64

// InvalidRawHandle is never allocated.
const InvalidRawHandle RawHandle = 0

// Handle is a strong, typed reference to a registry slot. The zero
// value is invalid. Handles are value types; all clones of one
// allocation share a single refcount.
type Handle[T any] struct {
	raw  RawHandle
	refs *atomic.Int64
}

func newHandle[T any](raw RawHandle) Handle[T] {
	refs := new(atomic.Int64)
	refs.Store(1)
	return Handle[T]{raw: raw, refs: refs}
}

// Raw returns the allocation index.
func (h Handle[T]) Raw() RawHandle { return h.raw }

// Alive reports whether at least one strong reference remains.
func (h Handle[T]) Alive() bool { return h.refs != nil && h.refs.Load() > 0 }

// Clone returns a new strong reference to the same slot. Cloning a
// dead or zero handle panics.
func (h Handle[T]) Clone() Handle[T] {
	if h.refs == nil {
		panic("registry: clone of zero handle")
	}
	// CAS so a failed clone never resurrects a dead slot.
	for {
		n := h.refs.Load()
		if n <= 0 {
			panic(fmt.Sprintf("registry: clone of dead handle %d", h.raw))
		}
		if h.refs.CompareAndSwap(n, n+1) {
			return h
		}
	}
}

// Release drops one strong reference. Releasing more times than the
// handle was acquired panics. When the last reference is released the
// slot becomes dead; its storage is reclaimed by the next
// ReclaimDead sweep.
func (h Handle[T]) Release() {
	if h.refs == nil {
		panic("registry: release of zero handle")
	}
	if h.refs.Add(-1) < 0 {
		panic(fmt.Sprintf("registry: double release of handle %d", h.raw))
	}
}
