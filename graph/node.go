// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package graph

import (
	"fmt"
)

type depKind uint8

const (
	depInput depKind = iota
	depOutput
	depInputOutput
	depReference
)

type dependency struct {
	key  resourceKey
	kind depKind
}

type node struct {
	name     string
	deps     []dependency
	external bool

	// Render pass request, nil when the node records no raster work.
	colors []ColorTarget
	depth  *DepthTarget

	exec func(*NodeContext) error

	live bool
}

func (n *node) reads(key resourceKey) bool {
	for _, d := range n.deps {
		if d.key == key && (d.kind == depInput || d.kind == depInputOutput || d.kind == depReference) {
			return true
		}
	}
	return false
}

func (n *node) writes(key resourceKey) bool {
	for _, d := range n.deps {
		if d.key == key && (d.kind == depOutput || d.kind == depInputOutput) {
			return true
		}
	}
	return false
}

// NodeBuilder declares one node while the graph is Building. Builders
// are single-use: AddNode returns one, Build finalizes it.
type NodeBuilder struct {
	g     *Graph
	n     *node
	built bool
}

func (b *NodeBuilder) check() {
	if b.built {
		panic(fmt.Sprintf("graph: node %q already built", b.n.name))
	}
	b.g.requireState(stateBuilding, "NodeBuilder")
}

func (b *NodeBuilder) add(r Resource, kind depKind) *NodeBuilder {
	b.check()
	key := b.g.validateKey(r)
	if kind == depOutput || kind == depInputOutput {
		if key.kind == resourceData {
			slot := &b.g.data[key.idx]
			if slot.producer >= 0 {
				panic(fmt.Sprintf("graph: data slot %d already has producer %q, node %q cannot produce it too",
					key.idx, b.g.nodes[slot.producer].name, b.n.name))
			}
			slot.producer = len(b.g.nodes)
		}
	}
	b.n.deps = append(b.n.deps, dependency{key: key, kind: kind})
	return b
}

// Input declares that the node reads r.
func (b *NodeBuilder) Input(r Resource) *NodeBuilder { return b.add(r, depInput) }

// Output declares that the node produces r. A data slot accepts only
// one producer; a second Output declaration on it panics.
func (b *NodeBuilder) Output(r Resource) *NodeBuilder { return b.add(r, depOutput) }

// InputOutput declares that the node reads and then overwrites r.
func (b *NodeBuilder) InputOutput(r Resource) *NodeBuilder { return b.add(r, depInputOutput) }

// Reference declares an ordering dependency on r without data use:
// the node runs after r's producer but never touches the resource.
func (b *NodeBuilder) Reference(r Resource) *NodeBuilder { return b.add(r, depReference) }

// External marks the node's outputs as leaving the graph (surface
// presentation, readback). External nodes are never culled.
func (b *NodeBuilder) External() *NodeBuilder {
	b.check()
	b.n.external = true
	return b
}

// RenderTargets requests one physical render pass over the given
// attachments. Attachment targets must also be declared as Output or
// InputOutput.
func (b *NodeBuilder) RenderTargets(colors []ColorTarget, depth *DepthTarget) *NodeBuilder {
	b.check()
	for _, c := range colors {
		b.g.validateKey(c.Target)
	}
	if depth != nil {
		b.g.validateKey(depth.Target)
	}
	b.n.colors = colors
	b.n.depth = depth
	return b
}

// Build finalizes the node with its execution callback and adds it to
// the graph. Nodes execute in declaration order.
func (b *NodeBuilder) Build(exec func(*NodeContext) error) {
	b.check()
	if exec == nil {
		panic(fmt.Sprintf("graph: node %q built without an exec callback", b.n.name))
	}
	b.n.exec = exec
	b.built = true
	b.g.nodes = append(b.g.nodes, b.n)
}
