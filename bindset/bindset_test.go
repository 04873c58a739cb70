// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package bindset

import (
	"testing"

	"github.com/BVE-Reborn/rend3-sub001/gpudev"
)

func newTestCache(t testing.TB, max int) (*gpudev.MockDevice, *Cache) {
	t.Helper()
	dev := gpudev.NewMockDevice()
	c, err := NewCache(dev, Config{MaxTextures: max})
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}
	t.Cleanup(func() {
		c.Destroy()
		dev.Destroy()
	})
	return dev, c
}

func views(ids ...uint64) []gpudev.TextureViewID {
	out := make([]gpudev.TextureViewID, len(ids))
	for i, id := range ids {
		out[i] = gpudev.TextureViewID(id)
	}
	return out
}

func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s did not panic", name)
		}
	}()
	fn()
}

func TestCacheDeduplicates(t *testing.T) {
	dev, c := newTestCache(t, 8)

	a, err := c.Acquire(views(1, 2, 3))
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.Acquire(views(1, 2, 3))
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("identical lists produced distinct sets")
	}
	if got := dev.BindGroupCount(); got != 1 {
		t.Errorf("BindGroupCount() = %d, want 1", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCacheOrderMatters(t *testing.T) {
	_, c := newTestCache(t, 8)

	a, _ := c.Acquire(views(1, 2))
	b, _ := c.Acquire(views(2, 1))
	if a == b {
		t.Error("reordered list deduplicated against the original")
	}
	if a.Index == b.Index {
		t.Error("distinct sets share an index")
	}
}

func TestCacheRefcountLifecycle(t *testing.T) {
	dev, c := newTestCache(t, 8)

	a, _ := c.Acquire(views(1, 2))
	b, _ := c.Acquire(views(1, 2))

	c.Release(a)
	if got := dev.BindGroupCount(); got != 1 {
		t.Fatalf("BindGroupCount() after first release = %d, want 1", got)
	}
	c.Release(b)
	if got := dev.BindGroupCount(); got != 0 {
		t.Fatalf("BindGroupCount() after last release = %d, want 0", got)
	}

	// The list is acquirable again after dying.
	again, err := c.Acquire(views(1, 2))
	if err != nil {
		t.Fatal(err)
	}
	if again.BindGroup == gpudev.InvalidBindGroupID {
		t.Error("reacquired set has no bind group")
	}
}

func TestCacheIndexRecycledLowestFirst(t *testing.T) {
	_, c := newTestCache(t, 8)

	s0, _ := c.Acquire(views(10))
	s1, _ := c.Acquire(views(11))
	s2, _ := c.Acquire(views(12))
	if s0.Index != 0 || s1.Index != 1 || s2.Index != 2 {
		t.Fatalf("initial indexes = %d,%d,%d, want 0,1,2", s0.Index, s1.Index, s2.Index)
	}

	c.Release(s2)
	c.Release(s0)

	// Lowest freed index wins, then the next one, then fresh.
	a, _ := c.Acquire(views(20))
	b, _ := c.Acquire(views(21))
	d, _ := c.Acquire(views(22))
	if a.Index != 0 || b.Index != 2 || d.Index != 3 {
		t.Errorf("recycled indexes = %d,%d,%d, want 0,2,3", a.Index, b.Index, d.Index)
	}
}

func TestCacheSizeLimits(t *testing.T) {
	_, c := newTestCache(t, 4)

	mustPanic(t, "empty list", func() { _, _ = c.Acquire(nil) })
	mustPanic(t, "oversized list", func() { _, _ = c.Acquire(views(1, 2, 3, 4, 5)) })
	mustPanic(t, "Layout(0)", func() { c.Layout(0) })
	mustPanic(t, "Layout above cap", func() { c.Layout(5) })
}

func TestCachePrebuildsLayouts(t *testing.T) {
	_, c := newTestCache(t, 4)

	seen := map[gpudev.BindGroupLayoutID]bool{}
	for n := 1; n <= 4; n++ {
		id := c.Layout(n)
		if id == gpudev.InvalidBindGroupLayoutID {
			t.Fatalf("Layout(%d) is invalid", n)
		}
		if seen[id] {
			t.Errorf("Layout(%d) reuses another size's layout", n)
		}
		seen[id] = true
	}
}

func TestCacheReleaseUntrackedPanics(t *testing.T) {
	_, c := newTestCache(t, 8)

	s, _ := c.Acquire(views(1))
	c.Release(s)
	mustPanic(t, "double release", func() { c.Release(s) })
}

func TestCacheDefaults(t *testing.T) {
	dev := gpudev.NewMockDevice()
	defer dev.Destroy()

	c, err := NewCache(dev, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Destroy()

	if got := c.MaxTextures(); got != DefaultMaxTextures {
		t.Errorf("MaxTextures() = %d, want %d", got, DefaultMaxTextures)
	}
}

func BenchmarkCacheAcquireHit(b *testing.B) {
	_, c := newTestCache(b, 8)
	v := views(1, 2, 3, 4)
	first, _ := c.Acquire(v)
	defer c.Release(first)

	for b.Loop() {
		s, _ := c.Acquire(v)
		c.Release(s)
	}
}
