// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/BVE-Reborn/rend3-sub001/gpudev"
)

// commandEncoder records one submission worth of passes and copies.
// It is not safe for concurrent use.
type commandEncoder struct {
	a         *Adapter
	enc       hal.CommandEncoder
	submitted bool
}

var _ gpudev.CommandEncoder = (*commandEncoder)(nil)

// CreateCommandEncoder opens a new command stream. The encoder is
// consumed by Submit.
func (a *Adapter) CreateCommandEncoder(label string) (gpudev.CommandEncoder, error) {
	enc, err := a.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: label,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create command encoder %q: %w", label, err)
	}
	if err := enc.BeginEncoding(label); err != nil {
		return nil, fmt.Errorf("wgpu: begin encoding %q: %w", label, err)
	}
	return &commandEncoder{a: a, enc: enc}, nil
}

// Submit finishes the encoder, submits its commands and blocks until
// the GPU signals completion.
func (a *Adapter) Submit(enc gpudev.CommandEncoder) error {
	ce, ok := enc.(*commandEncoder)
	if !ok || ce.a != a {
		return fmt.Errorf("wgpu: submit: encoder was not created by this adapter")
	}
	if ce.submitted {
		return fmt.Errorf("wgpu: submit: encoder already submitted")
	}
	ce.submitted = true

	cmdBuffer, err := ce.enc.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer cmdBuffer.Destroy()

	fence, err := a.device.CreateFence()
	if err != nil {
		return fmt.Errorf("wgpu: create fence: %w", err)
	}
	defer a.device.DestroyFence(fence)

	if err := a.queue.Submit([]hal.CommandBuffer{cmdBuffer}, fence, 1); err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	if _, err := a.device.Wait(fence, 1, submitTimeout); err != nil {
		return fmt.Errorf("wgpu: wait for submission: %w", err)
	}
	return nil
}

// BeginComputePass starts a compute pass.
func (ce *commandEncoder) BeginComputePass(label string) (gpudev.ComputePassEncoder, error) {
	if ce.submitted {
		return nil, fmt.Errorf("wgpu: compute pass %q: encoder already submitted", label)
	}
	pass := ce.enc.BeginComputePass(&hal.ComputePassDescriptor{Label: label})
	return &computePass{a: ce.a, pass: pass}, nil
}

// BeginRenderPass starts a render pass over the attachments of desc.
func (ce *commandEncoder) BeginRenderPass(desc *gpudev.RenderPassDescriptor) (gpudev.RenderPassEncoder, error) {
	if ce.submitted {
		return nil, fmt.Errorf("wgpu: render pass %q: encoder already submitted", desc.Label)
	}

	ce.a.mu.RLock()
	halDesc := &hal.RenderPassDescriptor{
		Label:            desc.Label,
		ColorAttachments: make([]hal.RenderPassColorAttachment, len(desc.ColorAttachments)),
	}
	for i, att := range desc.ColorAttachments {
		view, ok := ce.a.textureViews[att.View]
		if !ok {
			ce.a.mu.RUnlock()
			return nil, fmt.Errorf("wgpu: color attachment %d view %d: %w", i, att.View, gpudev.ErrResourceNotFound)
		}
		halDesc.ColorAttachments[i] = hal.RenderPassColorAttachment{
			View:       view,
			LoadOp:     att.LoadOp,
			StoreOp:    att.StoreOp,
			ClearValue: att.ClearValue,
		}
	}
	if ds := desc.DepthStencil; ds != nil {
		view, ok := ce.a.textureViews[ds.View]
		if !ok {
			ce.a.mu.RUnlock()
			return nil, fmt.Errorf("wgpu: depth attachment view %d: %w", ds.View, gpudev.ErrResourceNotFound)
		}
		halDesc.DepthStencilAttachment = &hal.RenderPassDepthStencilAttachment{
			View:            view,
			DepthLoadOp:     ds.DepthLoadOp,
			DepthStoreOp:    ds.DepthStoreOp,
			DepthClearValue: ds.DepthClearValue,
		}
	}
	ce.a.mu.RUnlock()

	pass := ce.enc.BeginRenderPass(halDesc)
	return &renderPass{a: ce.a, pass: pass}, nil
}

// CopyBufferToBuffer records a buffer copy.
func (ce *commandEncoder) CopyBufferToBuffer(src, dst gpudev.BufferID, srcOffset, dstOffset, size uint64) error {
	ce.a.mu.RLock()
	srcBuf, srcOK := ce.a.buffers[src]
	dstBuf, dstOK := ce.a.buffers[dst]
	ce.a.mu.RUnlock()

	if !srcOK {
		return fmt.Errorf("wgpu: copy source buffer %d: %w", src, gpudev.ErrResourceNotFound)
	}
	if !dstOK {
		return fmt.Errorf("wgpu: copy destination buffer %d: %w", dst, gpudev.ErrResourceNotFound)
	}

	ce.enc.CopyBufferToBuffer(srcBuf, dstBuf, []hal.BufferCopy{
		{SrcOffset: srcOffset, DstOffset: dstOffset, Size: size},
	})
	return nil
}

// computePass implements gpudev.ComputePassEncoder. IDs that do not
// resolve to live resources are skipped, matching the forgiving
// behavior of hal validation layers.
type computePass struct {
	a    *Adapter
	pass hal.ComputePassEncoder
}

var _ gpudev.ComputePassEncoder = (*computePass)(nil)

func (p *computePass) SetPipeline(pipeline gpudev.ComputePipelineID) {
	p.a.mu.RLock()
	halPipeline, ok := p.a.computePipelines[pipeline]
	p.a.mu.RUnlock()

	if ok {
		p.pass.SetPipeline(halPipeline)
	}
}

func (p *computePass) SetBindGroup(index uint32, group gpudev.BindGroupID) {
	p.a.mu.RLock()
	halGroup, ok := p.a.bindGroups[group]
	p.a.mu.RUnlock()

	if ok {
		p.pass.SetBindGroup(index, halGroup, nil)
	}
}

func (p *computePass) Dispatch(x, y, z uint32) {
	p.pass.Dispatch(x, y, z)
}

func (p *computePass) End() {
	p.pass.End()
}

// renderPass implements gpudev.RenderPassEncoder.
type renderPass struct {
	a    *Adapter
	pass hal.RenderPassEncoder
}

var _ gpudev.RenderPassEncoder = (*renderPass)(nil)

func (p *renderPass) SetPipeline(pipeline gpudev.RenderPipelineID) {
	p.a.mu.RLock()
	halPipeline, ok := p.a.renderPipelines[pipeline]
	p.a.mu.RUnlock()

	if ok {
		p.pass.SetPipeline(halPipeline)
	}
}

func (p *renderPass) SetBindGroup(index uint32, group gpudev.BindGroupID) {
	p.a.mu.RLock()
	halGroup, ok := p.a.bindGroups[group]
	p.a.mu.RUnlock()

	if ok {
		p.pass.SetBindGroup(index, halGroup, nil)
	}
}

func (p *renderPass) SetVertexBuffer(slot uint32, buf gpudev.BufferID, offset uint64) {
	p.a.mu.RLock()
	halBuf, ok := p.a.buffers[buf]
	p.a.mu.RUnlock()

	if ok {
		p.pass.SetVertexBuffer(slot, halBuf, offset)
	}
}

func (p *renderPass) SetIndexBuffer(buf gpudev.BufferID, format gputypes.IndexFormat, offset uint64) {
	p.a.mu.RLock()
	halBuf, ok := p.a.buffers[buf]
	p.a.mu.RUnlock()

	if ok {
		p.pass.SetIndexBuffer(halBuf, format, offset)
	}
}

func (p *renderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.pass.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

func (p *renderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.pass.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

func (p *renderPass) DrawIndexedIndirect(buf gpudev.BufferID, offset uint64) {
	p.a.mu.RLock()
	halBuf, ok := p.a.buffers[buf]
	p.a.mu.RUnlock()

	if ok {
		p.pass.DrawIndexedIndirect(halBuf, offset)
	}
}

func (p *renderPass) End() {
	p.pass.End()
}
