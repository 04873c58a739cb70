// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cull

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Plane is a view-space half-space: points with Distance >= 0 are
// inside.
type Plane struct {
	Normal mgl32.Vec3
	D      float32
}

// Distance returns the signed distance from pt to the plane.
func (p Plane) Distance(pt mgl32.Vec3) float32 {
	return p.Normal.Dot(pt) + p.D
}

func planeFromVec4(v mgl32.Vec4) Plane {
	n := v.Vec3()
	l := n.Len()
	if l == 0 {
		return Plane{}
	}
	return Plane{Normal: n.Mul(1 / l), D: v.W() / l}
}

// Frustum is the five-plane camera volume used for visibility. There
// is deliberately no far plane: distant objects shrink to sub-pixel
// size and never dominate, while a far plane would pop them.
type Frustum struct {
	Left, Right, Top, Bottom, Near Plane
}

// FrustumFromMatrix extracts the planes of a projection matrix with
// zero-to-one depth. The planes apply to view-space points.
func FrustumFromMatrix(proj mgl32.Mat4) Frustum {
	r0 := proj.Row(0)
	r1 := proj.Row(1)
	r2 := proj.Row(2)
	r3 := proj.Row(3)
	return Frustum{
		Left:   planeFromVec4(r3.Add(r0)),
		Right:  planeFromVec4(r3.Sub(r0)),
		Bottom: planeFromVec4(r3.Add(r1)),
		Top:    planeFromVec4(r3.Sub(r1)),
		Near:   planeFromVec4(r2),
	}
}

// Planes returns the planes in the packing order used by the compute
// shader: left, right, top, bottom, near.
func (f Frustum) Planes() [5]Plane {
	return [5]Plane{f.Left, f.Right, f.Top, f.Bottom, f.Near}
}

// ContainsSphere reports whether any part of the sphere is inside the
// frustum. A sphere touching a plane from outside still passes; the
// test is conservative, never dropping a visible object.
func (f Frustum) ContainsSphere(s BoundingSphere) bool {
	for _, p := range f.Planes() {
		if p.Distance(s.Center) < -s.Radius {
			return false
		}
	}
	return true
}

// PerspectiveZeroOne builds a right-handed perspective projection
// with depth mapped to [0, 1], looking down negative Z.
func PerspectiveZeroOne(fovy, aspect, near, far float32) mgl32.Mat4 {
	f := 1 / tan32(fovy/2)
	k := far / (near - far)
	var m mgl32.Mat4
	m[0] = f / aspect // col 0 row 0
	m[5] = f          // col 1 row 1
	m[10] = k         // col 2 row 2
	m[11] = -1        // col 2 row 3
	m[14] = near * k  // col 3 row 2
	return m
}

func tan32(x float32) float32 { return float32(math.Tan(float64(x))) }
