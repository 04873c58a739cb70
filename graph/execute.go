// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package graph

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/BVE-Reborn/rend3-sub001/gpudev"
)

// NodeContext is what a node sees while it executes: the device, the
// frame encoder, the node's render pass if it requested one, and its
// declared resources.
type NodeContext struct {
	Device  gpudev.Device
	Encoder gpudev.CommandEncoder
	// Pass is the node's physical render pass, nil when the node did
	// not request render targets. The executor ends it after the
	// node's callback returns.
	Pass gpudev.RenderPassEncoder

	g *Graph
	n *node
}

// TargetView resolves a declared render target to its realized view.
// Panics if the node never declared the target.
func (ctx *NodeContext) TargetView(h RenderTargetHandle) gpudev.TextureViewID {
	key := ctx.g.validateKey(h)
	if !ctx.n.reads(key) && !ctx.n.writes(key) {
		panic(fmt.Sprintf("graph: node %q touches undeclared render target %d", ctx.n.name, h.idx))
	}
	t := &ctx.g.targets[h.idx]
	if !t.realized {
		panic(fmt.Sprintf("graph: render target %q not realized", t.desc.Label))
	}
	return t.view
}

// Data returns the value of a data slot. Panics if the node never
// declared the slot as an input, or if nothing has written it yet.
func (ctx *NodeContext) Data(h DataHandle) any {
	key := ctx.g.validateKey(h)
	if !ctx.n.reads(key) {
		panic(fmt.Sprintf("graph: node %q reads undeclared data slot %d", ctx.n.name, h.idx))
	}
	slot := &ctx.g.data[h.idx]
	if !slot.written {
		panic(fmt.Sprintf("graph: node %q reads data slot %d before its producer wrote it", ctx.n.name, h.idx))
	}
	return slot.value
}

// SetData stores the value of a data slot. Panics if the node is not
// the slot's declared producer or if the slot was already written.
func (ctx *NodeContext) SetData(h DataHandle, v any) {
	key := ctx.g.validateKey(h)
	if !ctx.n.writes(key) {
		panic(fmt.Sprintf("graph: node %q writes undeclared data slot %d", ctx.n.name, h.idx))
	}
	slot := &ctx.g.data[h.idx]
	if slot.written {
		panic(fmt.Sprintf("graph: data slot %d written twice", h.idx))
	}
	slot.value = v
	slot.written = true
}

// realizeTarget creates (or reuses) the texture behind a declared
// target on first use.
func (g *Graph) realizeTarget(idx int) error {
	t := &g.targets[idx]
	if t.realized {
		return nil
	}
	st, err := g.store.Acquire(t.desc)
	if err != nil {
		return err
	}
	t.view = st.view
	t.realized = true
	g.realized = append(g.realized, realizedTarget{idx: idx, st: st})
	g.log.Debug("render target realized", "label", t.desc.Label,
		"width", t.desc.Width, "height", t.desc.Height)
	return nil
}

// beginNodePass realizes the node's attachments and opens its
// physical pass. The first pass touching a target clears it; later
// passes load, so a node reading a target nothing wrote still sees
// cleared contents.
func (g *Graph) beginNodePass(enc gpudev.CommandEncoder, n *node) (gpudev.RenderPassEncoder, error) {
	desc := &gpudev.RenderPassDescriptor{Label: n.name}
	for _, c := range n.colors {
		if err := g.realizeTarget(c.Target.idx); err != nil {
			return nil, err
		}
		t := &g.targets[c.Target.idx]
		load := gputypes.LoadOpClear
		if t.cleared {
			load = gputypes.LoadOpLoad
		}
		t.cleared = true
		desc.ColorAttachments = append(desc.ColorAttachments, gpudev.RenderPassColorAttachment{
			View:       t.view,
			LoadOp:     load,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: c.Clear,
		})
	}
	if n.depth != nil {
		if err := g.realizeTarget(n.depth.Target.idx); err != nil {
			return nil, err
		}
		t := &g.targets[n.depth.Target.idx]
		load := gputypes.LoadOpClear
		if t.cleared {
			load = gputypes.LoadOpLoad
		}
		t.cleared = true
		desc.DepthStencil = &gpudev.RenderPassDepthStencilAttachment{
			View:            t.view,
			DepthLoadOp:     load,
			DepthStoreOp:    gputypes.StoreOpStore,
			DepthClearValue: n.depth.Clear,
		}
	}
	return enc.BeginRenderPass(desc)
}

// Execute runs the surviving nodes in declaration order, recording
// onto enc. Each node requesting render targets gets exactly one
// physical pass. With zero external outputs every node was culled and
// Execute records nothing.
func (g *Graph) Execute(enc gpudev.CommandEncoder) error {
	g.requireState(stateCompiled, "Execute")
	g.state = stateExecuting

	for _, n := range g.nodes {
		if !n.live {
			continue
		}
		ctx := &NodeContext{Device: g.dev, Encoder: enc, g: g, n: n}
		if len(n.colors) > 0 || n.depth != nil {
			pass, err := g.beginNodePass(enc, n)
			if err != nil {
				return fmt.Errorf("graph: node %q: %w", n.name, err)
			}
			ctx.Pass = pass
		}
		err := n.exec(ctx)
		if ctx.Pass != nil {
			ctx.Pass.End()
		}
		if err != nil {
			return fmt.Errorf("graph: node %q: %w", n.name, err)
		}
	}
	return nil
}

type realizedTarget struct {
	idx int
	st  storedTexture
}

// Retire returns every transient target realized this frame to the
// texture store and freezes the graph. Imported targets are left
// untouched. Retire is valid after Execute, or directly after Compile
// when nothing survived.
func (g *Graph) Retire() {
	if g.state != stateExecuting && g.state != stateCompiled {
		panic(fmt.Sprintf("graph: Retire requires state Executing or Compiled, graph is %s", g.state))
	}
	for _, rt := range g.realized {
		g.store.Release(g.targets[rt.idx].desc, rt.st)
	}
	g.realized = nil
	g.state = stateRetired
}
