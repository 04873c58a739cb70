// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package graph

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/BVE-Reborn/rend3-sub001/gpudev"
)

type storedTexture struct {
	texture gpudev.TextureID
	view    gpudev.TextureViewID
}

// TextureStore recycles transient render targets across frames,
// keyed by their full descriptor. Realizing a target first checks the
// free pool; retiring a graph returns its textures instead of
// destroying them.
type TextureStore struct {
	dev gpudev.Device

	mu   sync.Mutex
	free map[TargetDescriptor][]storedTexture
}

// NewTextureStore returns an empty store allocating on dev.
func NewTextureStore(dev gpudev.Device) *TextureStore {
	return &TextureStore{dev: dev, free: make(map[TargetDescriptor][]storedTexture)}
}

// Acquire returns a texture matching desc, reusing a pooled one when
// available.
func (s *TextureStore) Acquire(desc TargetDescriptor) (storedTexture, error) {
	s.mu.Lock()
	if pool := s.free[desc]; len(pool) > 0 {
		st := pool[len(pool)-1]
		s.free[desc] = pool[:len(pool)-1]
		s.mu.Unlock()
		return st, nil
	}
	s.mu.Unlock()

	tex, err := s.dev.CreateTexture(&gpudev.TextureDescriptor{
		Label: desc.Label,
		Size: gputypes.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   desc.SampleCount,
		Dimension:     gputypes.TextureDimension2D,
		Format:        desc.Format,
		Usage:         desc.Usage,
	})
	if err != nil {
		return storedTexture{}, fmt.Errorf("graph: render target %q: %w", desc.Label, err)
	}
	view, err := s.dev.CreateTextureView(tex, &gpudev.TextureViewDescriptor{Label: desc.Label})
	if err != nil {
		s.dev.DestroyTexture(tex)
		return storedTexture{}, fmt.Errorf("graph: render target view %q: %w", desc.Label, err)
	}
	return storedTexture{texture: tex, view: view}, nil
}

// Release returns a texture to the pool for reuse.
func (s *TextureStore) Release(desc TargetDescriptor, st storedTexture) {
	s.mu.Lock()
	s.free[desc] = append(s.free[desc], st)
	s.mu.Unlock()
}

// PooledCount returns the number of idle pooled textures.
func (s *TextureStore) PooledCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, pool := range s.free {
		n += len(pool)
	}
	return n
}

// Destroy drops every pooled texture.
func (s *TextureStore) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for desc, pool := range s.free {
		for _, st := range pool {
			s.dev.DestroyTextureView(st.view)
			s.dev.DestroyTexture(st.texture)
		}
		delete(s.free, desc)
	}
}
