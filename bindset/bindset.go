// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package bindset deduplicates per-material texture bind groups.
//
// Materials reference an ordered list of texture views. Many materials
// share the same list, so the cache builds one bind group per unique
// list and hands back refcounted sets. Each set carries a stable small
// index usable as a sort key and as an offset into shader-side tables.
// Bind group layouts for every list size are built once up front, so
// acquiring a set never creates a layout.
package bindset

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"sort"

	"github.com/gogpu/gputypes"

	"github.com/BVE-Reborn/rend3-sub001/gpudev"
)

// DefaultMaxTextures is the largest texture list a set may hold when
// the config leaves MaxTextures zero.
const DefaultMaxTextures = 64

// Config controls the cache.
type Config struct {
	// MaxTextures caps the texture list length. Layouts are prebuilt
	// for every size from 1 through MaxTextures.
	MaxTextures int
	// Visibility is the shader stage mask on every layout entry.
	// Zero means fragment and compute.
	Visibility gputypes.ShaderStage
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{MaxTextures: DefaultMaxTextures}
}

func (c Config) validate() Config {
	if c.MaxTextures == 0 {
		c.MaxTextures = DefaultMaxTextures
	}
	if c.Visibility == 0 {
		c.Visibility = gputypes.ShaderStageFragment | gputypes.ShaderStageCompute
	}
	return c
}

// Set is one deduplicated texture list. Sets are owned by the cache;
// holders release them through Cache.Release.
type Set struct {
	// Index is a dense stable identifier, unique among live sets and
	// recycled lowest-first after release.
	Index uint32
	// BindGroup binds the list's views at bindings 0..len-1.
	BindGroup gpudev.BindGroupID

	views []gpudev.TextureViewID
	key   string
	refs  int
}

// Views returns the set's texture list in bind order.
func (s *Set) Views() []gpudev.TextureViewID { return s.views }

// Cache deduplicates bind groups by exact ordered texture list. Two
// lists with the same views in a different order are distinct sets.
type Cache struct {
	dev gpudev.Device
	cfg Config
	log *slog.Logger

	// layouts[n-1] is the layout for lists of length n.
	layouts []gpudev.BindGroupLayoutID

	sets map[string]*Set
	// freeIndexes is kept ascending so released indexes are reused
	// lowest-first.
	freeIndexes []uint32
	nextIndex   uint32

	destroyed bool
}

// NewCache builds every layout up front and returns an empty cache.
func NewCache(dev gpudev.Device, cfg Config) (*Cache, error) {
	cfg = cfg.validate()
	c := &Cache{
		dev:  dev,
		cfg:  cfg,
		log:  slog.New(slog.DiscardHandler),
		sets: make(map[string]*Set),
	}
	for n := 1; n <= cfg.MaxTextures; n++ {
		entries := make([]gputypes.BindGroupLayoutEntry, n)
		for i := range entries {
			entries[i] = gputypes.BindGroupLayoutEntry{
				Binding:    uint32(i),
				Visibility: cfg.Visibility,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			}
		}
		id, err := c.dev.CreateBindGroupLayout(&gpudev.BindGroupLayoutDescriptor{
			Label:   fmt.Sprintf("bindset layout %d", n),
			Entries: entries,
		})
		if err != nil {
			c.Destroy()
			return nil, fmt.Errorf("bindset: layout for %d textures: %w", n, err)
		}
		c.layouts = append(c.layouts, id)
	}
	return c, nil
}

// SetLogger replaces the cache's logger. Pass nil to silence it.
func (c *Cache) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	c.log = l
}

// Layout returns the prebuilt layout for lists of the given length.
// Panics when size is 0 or exceeds MaxTextures.
func (c *Cache) Layout(size int) gpudev.BindGroupLayoutID {
	c.checkSize(size)
	return c.layouts[size-1]
}

// MaxTextures returns the configured list length cap.
func (c *Cache) MaxTextures() int { return c.cfg.MaxTextures }

func (c *Cache) checkSize(size int) {
	if size == 0 {
		panic("bindset: empty texture list")
	}
	if size > c.cfg.MaxTextures {
		panic(fmt.Sprintf("bindset: %d textures exceeds the cap of %d", size, c.cfg.MaxTextures))
	}
}

func setKey(views []gpudev.TextureViewID) string {
	buf := make([]byte, 8*len(views))
	for i, v := range views {
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(v))
	}
	return string(buf)
}

// Acquire returns the set for the given ordered view list, building
// its bind group on first sight and bumping the refcount otherwise.
// Panics when the list is empty or longer than MaxTextures.
func (c *Cache) Acquire(views []gpudev.TextureViewID) (*Set, error) {
	c.checkSize(len(views))
	key := setKey(views)
	if s, ok := c.sets[key]; ok {
		s.refs++
		return s, nil
	}

	entries := make([]gpudev.BindGroupEntry, len(views))
	for i, v := range views {
		entries[i] = gpudev.BindGroupEntry{Binding: uint32(i), TextureView: v}
	}
	bg, err := c.dev.CreateBindGroup(&gpudev.BindGroupDescriptor{
		Label:   "bindset",
		Layout:  c.layouts[len(views)-1],
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("bindset: bind group for %d textures: %w", len(views), err)
	}

	s := &Set{
		Index:     c.allocIndex(),
		BindGroup: bg,
		views:     append([]gpudev.TextureViewID(nil), views...),
		key:       key,
		refs:      1,
	}
	c.sets[key] = s
	c.log.Debug("bind set created", "index", s.Index, "textures", len(views))
	return s, nil
}

// Release drops one reference. The last release destroys the bind
// group and recycles the index. Panics on a set the cache no longer
// tracks.
func (c *Cache) Release(s *Set) {
	got, ok := c.sets[s.key]
	if !ok || got != s {
		panic(fmt.Sprintf("bindset: release of untracked set %d", s.Index))
	}
	s.refs--
	if s.refs > 0 {
		return
	}
	delete(c.sets, s.key)
	c.dev.DestroyBindGroup(s.BindGroup)
	c.freeIndex(s.Index)
	c.log.Debug("bind set destroyed", "index", s.Index)
}

func (c *Cache) allocIndex() uint32 {
	if len(c.freeIndexes) > 0 {
		idx := c.freeIndexes[0]
		c.freeIndexes = c.freeIndexes[1:]
		return idx
	}
	idx := c.nextIndex
	c.nextIndex++
	return idx
}

func (c *Cache) freeIndex(idx uint32) {
	at := sort.Search(len(c.freeIndexes), func(i int) bool { return c.freeIndexes[i] >= idx })
	c.freeIndexes = append(c.freeIndexes, 0)
	copy(c.freeIndexes[at+1:], c.freeIndexes[at:])
	c.freeIndexes[at] = idx
}

// Len returns the number of live sets.
func (c *Cache) Len() int { return len(c.sets) }

// Destroy releases every live set and every layout. Idempotent.
func (c *Cache) Destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true
	for key, s := range c.sets {
		c.dev.DestroyBindGroup(s.BindGroup)
		delete(c.sets, key)
	}
	for i := len(c.layouts) - 1; i >= 0; i-- {
		c.dev.DestroyBindGroupLayout(c.layouts[i])
	}
	c.layouts = nil
}
