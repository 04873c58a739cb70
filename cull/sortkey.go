// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cull

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/BVE-Reborn/rend3-sub001/internal/parallel"
)

// SortKey orders one object within a frame. DistanceKey is the signed
// squared view-space distance mapped to an order-preserving uint32,
// so ascending integer comparison is ascending distance.
type SortKey struct {
	Transparency Transparency
	MaterialKey  uint64
	BindSet      uint32
	DistanceKey  uint32
}

// signedSquaredDistance returns the squared distance from the camera
// to the view-space point, negated for points behind the camera so
// they order before everything in front.
func signedSquaredDistance(viewPos mgl32.Vec3) float32 {
	d := viewPos.LenSqr()
	if viewPos.Z() > 0 {
		return -d
	}
	return d
}

// distanceKey maps a float to a uint32 whose unsigned order matches
// the float order, including negatives.
func distanceKey(d float32) uint32 {
	b := math.Float32bits(d)
	if b&0x80000000 != 0 {
		return ^b
	}
	return b | 0x80000000
}

// Less orders two keys for drawing. Transparency classes draw opaque,
// cutout, blend. Within opaque and cutout the order is material, bind
// set, then distance ascending (front-to-back). Within blend the
// distance descends (back-to-front) and outranks the bind set, since
// blending correctness depends on depth order.
func (k SortKey) Less(o SortKey) bool {
	if k.Transparency != o.Transparency {
		return k.Transparency < o.Transparency
	}
	if k.MaterialKey != o.MaterialKey {
		return k.MaterialKey < o.MaterialKey
	}
	if k.Transparency == TransparencyBlend {
		if k.DistanceKey != o.DistanceKey {
			return k.DistanceKey > o.DistanceKey
		}
		return k.BindSet < o.BindSet
	}
	if k.BindSet != o.BindSet {
		return k.BindSet < o.BindSet
	}
	return k.DistanceKey < o.DistanceKey
}

// preparedObject carries the per-frame derived state of one object.
type preparedObject struct {
	object     int // index into Input.Objects
	key        SortKey
	viewSphere BoundingSphere
	mv         mgl32.Mat4
	mvp        mgl32.Mat4
	invSqScale mgl32.Vec3
}

// parallelThreshold is the object count below which chunking the
// transform work across the pool costs more than it saves.
const parallelThreshold = 256

// prepare transforms every object into view space and derives its
// sort key, returning the objects in draw order. The sort is stable
// so equal keys keep submission order. Scenes past parallelThreshold
// split the transform work across pool; a nil pool runs inline.
func prepare(in *Input, pool *parallel.WorkerPool) []preparedObject {
	out := make([]preparedObject, len(in.Objects))
	if pool != nil && len(in.Objects) >= parallelThreshold {
		chunk := (len(in.Objects) + pool.Workers() - 1) / pool.Workers()
		work := make([]func(), 0, pool.Workers())
		for start := 0; start < len(in.Objects); start += chunk {
			end := min(start+chunk, len(in.Objects))
			work = append(work, func() { prepareRange(in, out, start, end) })
		}
		pool.ExecuteAll(work)
	} else {
		prepareRange(in, out, 0, len(in.Objects))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].key.Less(out[j].key) })
	return out
}

// prepareRange fills out[start:end]. Ranges are disjoint so the pool
// workers never write the same element.
func prepareRange(in *Input, out []preparedObject, start, end int) {
	for i := start; i < end; i++ {
		obj := &in.Objects[i]
		mv := in.View.Mul4(obj.Transform)
		sphere := obj.Bounds.Transformed(mv)
		out[i] = preparedObject{
			object:     i,
			viewSphere: sphere,
			mv:         mv,
			mvp:        in.Proj.Mul4(mv),
			invSqScale: invSquaredScale(mv),
			key: SortKey{
				Transparency: obj.Transparency,
				MaterialKey:  obj.MaterialKey,
				BindSet:      obj.BindSet,
				DistanceKey:  distanceKey(signedSquaredDistance(sphere.Center)),
			},
		}
	}
}

func (p *preparedObject) uniform() PerObjectUniform {
	return PerObjectUniform{
		ModelView:       p.mv,
		ModelViewProj:   p.mvp,
		InvSquaredScale: p.invSqScale,
	}
}
