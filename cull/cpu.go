// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cull

import (
	"fmt"
	"log/slog"

	"github.com/BVE-Reborn/rend3-sub001/gpudev"
	"github.com/BVE-Reborn/rend3-sub001/internal/parallel"
)

// CPUCuller runs the visibility pipeline on the host. It emits an
// ordered draw list and uploads the survivors' uniforms in one
// buffer.
type CPUCuller struct {
	dev  gpudev.Device
	log  *slog.Logger
	pool *parallel.WorkerPool
}

// NewCPUCuller returns a host-side culler allocating its per-frame
// buffers on dev.
func NewCPUCuller(dev gpudev.Device) *CPUCuller {
	return &CPUCuller{
		dev:  dev,
		log:  slog.New(slog.DiscardHandler),
		pool: parallel.NewWorkerPool(0),
	}
}

// SetLogger replaces the culler's logger. Pass nil to silence it.
func (c *CPUCuller) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	c.log = l
}

// Cull transforms, sorts and frustum-tests in.Objects, returning the
// surviving draws in draw order. The encoder is unused; the CPU path
// records no GPU work. An empty survivor set still produces one
// zeroed uniform record so downstream bindings stay valid.
func (c *CPUCuller) Cull(_ gpudev.CommandEncoder, in *Input) (*Output, error) {
	prepared := prepare(in, c.pool)
	frustum := FrustumFromMatrix(in.Proj)

	out := &Output{}
	for i := range prepared {
		p := &prepared[i]
		if !frustum.ContainsSphere(p.viewSphere) {
			continue
		}
		obj := &in.Objects[p.object]
		out.Draws = append(out.Draws, DrawCall{
			MaterialKey:  obj.MaterialKey,
			BindSet:      obj.BindSet,
			Transparency: obj.Transparency,
			FirstIndex:   obj.FirstIndex,
			IndexCount:   obj.IndexCount,
			BaseVertex:   obj.BaseVertex,
			Object:       uint32(len(out.Uniforms)),
		})
		out.Uniforms = append(out.Uniforms, p.uniform())
	}

	if len(out.Uniforms) == 0 {
		// Keep the uniform binding non-empty for downstream passes.
		out.Uniforms = append(out.Uniforms, PerObjectUniform{})
		c.log.Warn("culling produced no survivors", "objects", len(in.Objects))
	}

	buf, err := c.dev.CreateBuffer(&gpudev.BufferDescriptor{
		Label: "cull cpu uniforms",
		Size:  uint64(len(out.Uniforms) * PerObjectUniformSize),
		Usage: gpudev.BufferUsageStorage | gpudev.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: uniforms: %v", ErrBufferAlloc, err)
	}
	if err := c.dev.WriteBuffer(buf, 0, encodeUniforms(out.Uniforms)); err != nil {
		c.dev.DestroyBuffer(buf)
		return nil, fmt.Errorf("cull: uniform upload: %w", err)
	}
	out.UniformBuffer = buf

	c.log.Debug("cpu cull finished",
		"objects", len(in.Objects), "survivors", len(out.Draws))
	return out, nil
}

// Release returns the output's uniform buffer to the device.
func (c *CPUCuller) Release(out *Output) {
	if out == nil {
		return
	}
	if out.UniformBuffer != gpudev.InvalidBufferID {
		c.dev.DestroyBuffer(out.UniformBuffer)
		out.UniformBuffer = gpudev.InvalidBufferID
	}
}

// Destroy stops the transform worker pool. The CPU culler owns no
// persistent GPU state.
func (c *CPUCuller) Destroy() {
	c.pool.Close()
}
