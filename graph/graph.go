// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package graph

import (
	"fmt"
	"log/slog"

	"github.com/BVE-Reborn/rend3-sub001/gpudev"
)

type state uint8

const (
	stateBuilding state = iota
	stateCompiled
	stateExecuting
	stateRetired
)

func (s state) String() string {
	switch s {
	case stateBuilding:
		return "Building"
	case stateCompiled:
		return "Compiled"
	case stateExecuting:
		return "Executing"
	case stateRetired:
		return "Retired"
	default:
		return "invalid"
	}
}

// Graph is one frame's node graph. Graphs are single-frame objects:
// build, compile, execute, retire, discard. The texture store passed
// to New persists across frames and carries the transient targets.
type Graph struct {
	dev   gpudev.Device
	store *TextureStore
	log   *slog.Logger

	state   state
	nodes   []*node
	targets []renderTarget
	data    []dataSlot

	liveCount int
	realized  []realizedTarget
}

// New returns an empty graph in the Building state. The store may be
// shared between successive graphs to recycle render targets.
func New(dev gpudev.Device, store *TextureStore) *Graph {
	if store == nil {
		store = NewTextureStore(dev)
	}
	return &Graph{
		dev:   dev,
		store: store,
		log:   slog.New(slog.DiscardHandler),
	}
}

// SetLogger replaces the graph's logger. Pass nil to silence it.
func (g *Graph) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	g.log = l
}

func (g *Graph) requireState(want state, op string) {
	if g.state != want {
		panic(fmt.Sprintf("graph: %s requires state %s, graph is %s", op, want, g.state))
	}
}

func (g *Graph) validateKey(r Resource) resourceKey {
	key := r.resourceKey()
	switch key.kind {
	case resourceTarget:
		if key.idx < 0 || key.idx >= len(g.targets) {
			panic(fmt.Sprintf("graph: render target handle %d from another graph", key.idx))
		}
	case resourceData:
		if key.idx < 0 || key.idx >= len(g.data) {
			panic(fmt.Sprintf("graph: data handle %d from another graph", key.idx))
		}
	}
	return key
}

// AddRenderTarget declares a lazily realized render target. No
// texture is created unless a surviving node uses the target.
func (g *Graph) AddRenderTarget(desc TargetDescriptor) RenderTargetHandle {
	g.requireState(stateBuilding, "AddRenderTarget")
	if desc.Width == 0 || desc.Height == 0 {
		panic(fmt.Sprintf("graph: render target %q has zero extent", desc.Label))
	}
	if desc.SampleCount == 0 {
		desc.SampleCount = 1
	}
	g.targets = append(g.targets, renderTarget{desc: desc})
	return RenderTargetHandle{idx: len(g.targets) - 1}
}

// ImportRenderTarget wraps an existing texture view, typically the
// surface, as a graph target. Imported targets are already realized
// and are not recycled on retire.
func (g *Graph) ImportRenderTarget(label string, view gpudev.TextureViewID) RenderTargetHandle {
	g.requireState(stateBuilding, "ImportRenderTarget")
	if view == gpudev.InvalidTextureViewID {
		panic(fmt.Sprintf("graph: imported target %q has no view", label))
	}
	g.targets = append(g.targets, renderTarget{
		desc:     TargetDescriptor{Label: label},
		imported: true,
		realized: true,
		view:     view,
	})
	return RenderTargetHandle{idx: len(g.targets) - 1}
}

// AddData declares a transient data slot. Exactly one node may
// declare it as an output; reads before that node has written panic
// at execution time.
func (g *Graph) AddData() DataHandle {
	g.requireState(stateBuilding, "AddData")
	g.data = append(g.data, dataSlot{producer: -1})
	return DataHandle{idx: len(g.data) - 1}
}

// AddNode opens a builder for a new node. The node joins the graph
// when the builder's Build runs.
func (g *Graph) AddNode(name string) *NodeBuilder {
	g.requireState(stateBuilding, "AddNode")
	return &NodeBuilder{g: g, n: &node{name: name}}
}

// Compile freezes the graph and eliminates dead nodes: a node
// survives if it is external or if something it writes is read by a
// surviving node. Returns the number of live nodes.
func (g *Graph) Compile() int {
	g.requireState(stateBuilding, "Compile")

	// Walk backwards: by declaration order, a consumer always comes
	// after its producer, so one reverse sweep settles liveness.
	needed := make(map[resourceKey]bool)
	live := 0
	for i := len(g.nodes) - 1; i >= 0; i-- {
		n := g.nodes[i]
		n.live = n.external
		if !n.live {
			for _, d := range n.deps {
				if (d.kind == depOutput || d.kind == depInputOutput) && needed[d.key] {
					n.live = true
					break
				}
			}
		}
		if !n.live {
			continue
		}
		live++
		for _, d := range n.deps {
			if d.kind == depInput || d.kind == depInputOutput || d.kind == depReference {
				needed[d.key] = true
			}
		}
	}

	g.liveCount = live
	g.state = stateCompiled
	g.log.Debug("graph compiled",
		"nodes", len(g.nodes), "live", live, "targets", len(g.targets), "data", len(g.data))
	return live
}

// LiveNodes returns how many nodes survived compilation.
func (g *Graph) LiveNodes() int {
	if g.state == stateBuilding {
		panic("graph: LiveNodes before Compile")
	}
	return g.liveCount
}
