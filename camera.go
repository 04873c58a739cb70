// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rend3

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/BVE-Reborn/rend3-sub001/cull"
)

// Camera is a perspective camera with a zero-to-one depth range.
type Camera struct {
	// Fovy is the vertical field of view in radians.
	Fovy float32
	// Aspect 0 derives the ratio from the frame extent at render
	// time.
	Aspect float32
	Near   float32
	Far    float32
	View   mgl32.Mat4
}

// DefaultCamera returns a camera at the origin looking down -Z with a
// 60 degree field of view.
func DefaultCamera() Camera {
	return Camera{
		Fovy:   float32(math.Pi / 3),
		Aspect: 16.0 / 9.0,
		Near:   0.1,
		Far:    1000,
		View:   mgl32.Ident4(),
	}
}

// LookAt points the camera at center from eye.
func (c *Camera) LookAt(eye, center, up mgl32.Vec3) {
	c.View = mgl32.LookAtV(eye, center, up)
}

// Proj returns the camera's projection matrix.
func (c Camera) Proj() mgl32.Mat4 {
	return cull.PerspectiveZeroOne(c.Fovy, c.Aspect, c.Near, c.Far)
}
