// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cull

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/BVE-Reborn/rend3-sub001/gpudev"
)

// Transparency selects the blending class of a material. It decides
// draw order, not pipeline state.
type Transparency uint8

const (
	// TransparencyOpaque writes depth and draws front-to-back.
	TransparencyOpaque Transparency = iota
	// TransparencyCutout is alpha-tested; it orders like opaque.
	TransparencyCutout
	// TransparencyBlend is alpha-blended and draws back-to-front.
	TransparencyBlend
)

func (t Transparency) String() string {
	switch t {
	case TransparencyOpaque:
		return "opaque"
	case TransparencyCutout:
		return "cutout"
	case TransparencyBlend:
		return "blend"
	default:
		return "unknown"
	}
}

// BoundingSphere bounds an object in model space.
type BoundingSphere struct {
	Center mgl32.Vec3
	Radius float32
}

// SphereFromPoints returns a sphere around the centroid of the points
// covering all of them. An empty slice yields the zero sphere.
func SphereFromPoints(pts []mgl32.Vec3) BoundingSphere {
	if len(pts) == 0 {
		return BoundingSphere{}
	}
	var sum mgl32.Vec3
	for _, p := range pts {
		sum = sum.Add(p)
	}
	center := sum.Mul(1 / float32(len(pts)))
	var maxSq float32
	for _, p := range pts {
		if d := p.Sub(center).LenSqr(); d > maxSq {
			maxSq = d
		}
	}
	return BoundingSphere{Center: center, Radius: float32(math.Sqrt(float64(maxSq)))}
}

// maxScale returns the largest per-axis scale factor of the linear
// part of m. Using the maximum keeps transformed spheres conservative
// under non-uniform scale.
func maxScale(m mgl32.Mat4) float32 {
	sx := m.Col(0).Vec3().LenSqr()
	sy := m.Col(1).Vec3().LenSqr()
	sz := m.Col(2).Vec3().LenSqr()
	s := sx
	if sy > s {
		s = sy
	}
	if sz > s {
		s = sz
	}
	return float32(math.Sqrt(float64(s)))
}

// Transformed returns the sphere moved through m. The center goes
// through the full transform; the radius scales by the conservative
// uniform maximum scale.
func (s BoundingSphere) Transformed(m mgl32.Mat4) BoundingSphere {
	c := m.Mul4x1(s.Center.Vec4(1)).Vec3()
	return BoundingSphere{Center: c, Radius: s.Radius * maxScale(m)}
}

// Object is one culling candidate: a mesh range, its material class
// and its world transform. Objects are dense per archetype; Index is
// the object's position in that dense storage and names its uniform
// slot.
type Object struct {
	Index        uint32
	Transform    mgl32.Mat4
	Bounds       BoundingSphere
	MaterialKey  uint64
	Transparency Transparency
	BindSet      uint32

	FirstIndex uint32
	IndexCount uint32
	BaseVertex int32
}

// Input is one culling request: the dense objects of an archetype and
// the camera matrices.
type Input struct {
	Objects []Object
	View    mgl32.Mat4
	Proj    mgl32.Mat4

	// SourceIndices is the shared index buffer of the archetype,
	// uint32 indices. Only the GPU path reads it.
	SourceIndices gpudev.BufferID
}

// PerObjectUniform is the shading data emitted per surviving object.
// Layout matches the GPU-side struct: two mat4 columns-first, then
// the inverse squared scale with one pad float.
type PerObjectUniform struct {
	ModelView       mgl32.Mat4
	ModelViewProj   mgl32.Mat4
	InvSquaredScale mgl32.Vec3
	Padding         float32
}

// PerObjectUniformSize is the byte size of one PerObjectUniform.
const PerObjectUniformSize = 144

// invSquaredScale returns 1/scale² per axis of the linear part of mv,
// used to renormalize normals under non-uniform scale. Zero-length
// axes map to zero.
func invSquaredScale(mv mgl32.Mat4) mgl32.Vec3 {
	var out mgl32.Vec3
	for i := 0; i < 3; i++ {
		l := mv.Col(i).Vec3().LenSqr()
		if l != 0 {
			out[i] = 1 / l
		}
	}
	return out
}
