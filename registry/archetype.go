// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package registry

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
)

// Archetype partitions object storage by vertex layout class. Objects
// sharing an archetype live in one dense bucket and can be culled and
// drawn together.
type Archetype uint32

type bucket[T any] struct {
	handles []RawHandle
	refs    []*atomic.Int64
	data    []T
}

type slotLoc struct {
	arch  Archetype
	index int
}

// ArchetypeRegistry is dense, refcounted object storage partitioned
// by archetype. Each archetype owns an independent bucket; sweeps run
// per bucket and report relocations with their archetype. Safe for
// concurrent use.
type ArchetypeRegistry[T any] struct {
	name string

	mu      sync.Mutex
	next    uint64
	slots   map[RawHandle]slotLoc
	buckets map[Archetype]*bucket[T]
}

// NewArchetypeRegistry returns an empty archetype registry.
func NewArchetypeRegistry[T any](name string) *ArchetypeRegistry[T] {
	return &ArchetypeRegistry[T]{
		name:    name,
		slots:   make(map[RawHandle]slotLoc),
		buckets: make(map[Archetype]*bucket[T]),
	}
}

// Insert stores a value in the archetype's bucket and returns the
// first strong handle to it.
func (r *ArchetypeRegistry[T]) Insert(arch Archetype, value T) Handle[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := r.buckets[arch]
	if b == nil {
		b = &bucket[T]{}
		r.buckets[arch] = b
	}
	r.next++
	h := newHandle[T](RawHandle(r.next))
	r.slots[h.raw] = slotLoc{arch: arch, index: len(b.data)}
	b.handles = append(b.handles, h.raw)
	b.refs = append(b.refs, h.refs)
	b.data = append(b.data, value)
	return h
}

func (r *ArchetypeRegistry[T]) lookup(h Handle[T]) slotLoc {
	if !h.Alive() {
		panic(fmt.Sprintf("registry %q: access through dead handle %d", r.name, h.raw))
	}
	loc, ok := r.slots[h.raw]
	if !ok {
		panic(fmt.Sprintf("registry %q: unknown handle %d", r.name, h.raw))
	}
	return loc
}

// Get returns the archetype and value behind a handle. Panics if the
// handle is dead.
func (r *ArchetypeRegistry[T]) Get(h Handle[T]) (Archetype, T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	loc := r.lookup(h)
	return loc.arch, r.buckets[loc.arch].data[loc.index]
}

// Update mutates the value behind a handle in place. Panics if the
// handle is dead.
func (r *ArchetypeRegistry[T]) Update(h Handle[T], fn func(*T)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	loc := r.lookup(h)
	fn(&r.buckets[loc.arch].data[loc.index])
}

// Bucket returns the dense value slice of one archetype. The slice is
// owned by the registry and invalidated by Insert and ReclaimDead.
func (r *ArchetypeRegistry[T]) Bucket(arch Archetype) []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := r.buckets[arch]
	if b == nil {
		return nil
	}
	return b.data
}

// Archetypes returns the archetypes with at least one slot, ascending.
func (r *ArchetypeRegistry[T]) Archetypes() []Archetype {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Archetype, 0, len(r.buckets))
	for arch, b := range r.buckets {
		if len(b.data) > 0 {
			out = append(out, arch)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Count returns the total number of slots across all archetypes, dead
// ones included until the next sweep.
func (r *ArchetypeRegistry[T]) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, b := range r.buckets {
		n += len(b.data)
	}
	return n
}

// ArchetypeMove describes one swap-remove relocation inside an
// archetype bucket.
type ArchetypeMove struct {
	Archetype Archetype
	Handle    RawHandle
	OldIndex  int
	NewIndex  int
}

// ReclaimDead sweeps every bucket, removing slots whose strong count
// reached zero. onMove, if non-nil, is called for each surviving
// value that changed index. Returns the number of slots reclaimed.
func (r *ArchetypeRegistry[T]) ReclaimDead(onMove func(ArchetypeMove)) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	reclaimed := 0
	var zero T
	for arch, b := range r.buckets {
		for i := 0; i < len(b.data); {
			if b.refs[i].Load() > 0 {
				i++
				continue
			}
			last := len(b.data) - 1
			delete(r.slots, b.handles[i])
			if i != last {
				b.handles[i] = b.handles[last]
				b.refs[i] = b.refs[last]
				b.data[i] = b.data[last]
				r.slots[b.handles[i]] = slotLoc{arch: arch, index: i}
				if onMove != nil {
					onMove(ArchetypeMove{Archetype: arch, Handle: b.handles[i], OldIndex: last, NewIndex: i})
				}
			}
			b.data[last] = zero
			b.handles = b.handles[:last]
			b.refs = b.refs[:last]
			b.data = b.data[:last]
			reclaimed++
		}
		if len(b.data) == 0 {
			delete(r.buckets, arch)
		}
	}
	return reclaimed
}
