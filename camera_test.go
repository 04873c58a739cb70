// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rend3

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestCameraProjDepthRange(t *testing.T) {
	cam := DefaultCamera()
	cam.Aspect = 1

	proj := cam.Proj()
	project := func(z float32) float32 {
		v := proj.Mul4x1(mgl32.Vec4{0, 0, z, 1})
		return v.Z() / v.W()
	}

	if got := project(-cam.Near); got < -1e-4 || got > 1e-4 {
		t.Errorf("depth at near plane = %v, want 0", got)
	}
	if got := project(-cam.Far); got < 1-1e-3 || got > 1+1e-3 {
		t.Errorf("depth at far plane = %v, want 1", got)
	}
}

func TestCameraLookAt(t *testing.T) {
	cam := DefaultCamera()
	cam.LookAt(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})

	// The origin sits five units down -Z in view space.
	p := cam.View.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	if z := p.Z(); z < -5.001 || z > -4.999 {
		t.Errorf("view space z of origin = %v, want -5", z)
	}
}
