// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package registry

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Registry is dense, refcounted storage for one resource kind. Values
// live in a contiguous slice; a side map resolves handles to dense
// indices. Safe for concurrent use.
type Registry[T any] struct {
	name string

	mu      sync.Mutex
	next    uint64
	index   map[RawHandle]int
	handles []RawHandle
	refs    []*atomic.Int64
	data    []T
}

// NewRegistry returns an empty registry. The name appears in panic
// and log messages.
func NewRegistry[T any](name string) *Registry[T] {
	return &Registry[T]{
		name:  name,
		index: make(map[RawHandle]int),
	}
}

// Insert stores a value and returns the first strong handle to it.
func (r *Registry[T]) Insert(value T) Handle[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	h := newHandle[T](RawHandle(r.next))
	r.index[h.raw] = len(r.data)
	r.handles = append(r.handles, h.raw)
	r.refs = append(r.refs, h.refs)
	r.data = append(r.data, value)
	return h
}

func (r *Registry[T]) lookup(h Handle[T]) int {
	if !h.Alive() {
		panic(fmt.Sprintf("registry %q: access through dead handle %d", r.name, h.raw))
	}
	idx, ok := r.index[h.raw]
	if !ok {
		panic(fmt.Sprintf("registry %q: unknown handle %d", r.name, h.raw))
	}
	return idx
}

// Get returns the value behind a handle. Panics if the handle is dead.
func (r *Registry[T]) Get(h Handle[T]) T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data[r.lookup(h)]
}

// Replace overwrites the value behind a handle. Panics if the handle
// is dead.
func (r *Registry[T]) Replace(h Handle[T], value T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[r.lookup(h)] = value
}

// IndexOf returns the current dense index of a handle. The index is
// only stable until the next ReclaimDead sweep.
func (r *Registry[T]) IndexOf(h Handle[T]) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookup(h)
}

// Len returns the number of slots, dead ones included until the next
// sweep.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.data)
}

// Values returns the dense value slice. The slice is owned by the
// registry and is invalidated by Insert and ReclaimDead.
func (r *Registry[T]) Values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data
}

// Move describes one swap-remove relocation performed by a sweep: the
// value previously stored at OldIndex now lives at NewIndex.
type Move struct {
	Handle   RawHandle
	OldIndex int
	NewIndex int
}

// ReclaimDead removes every slot whose strong count reached zero,
// compacting storage with swap-remove. onMove, if non-nil, is called
// for each surviving value that changed index. Returns the number of
// slots reclaimed. A sweep of an empty registry is a no-op.
func (r *Registry[T]) ReclaimDead(onMove func(Move)) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	reclaimed := 0
	var zero T
	for i := 0; i < len(r.data); {
		if r.refs[i].Load() > 0 {
			i++
			continue
		}
		last := len(r.data) - 1
		delete(r.index, r.handles[i])
		if i != last {
			r.handles[i] = r.handles[last]
			r.refs[i] = r.refs[last]
			r.data[i] = r.data[last]
			r.index[r.handles[i]] = i
			if onMove != nil {
				onMove(Move{Handle: r.handles[i], OldIndex: last, NewIndex: i})
			}
		}
		r.data[last] = zero
		r.handles = r.handles[:last]
		r.refs = r.refs[:last]
		r.data = r.data[:last]
		reclaimed++
	}
	return reclaimed
}
