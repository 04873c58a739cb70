// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cull

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func testProjection() mgl32.Mat4 {
	// 90 degree vertical FOV, square aspect: the frustum's side
	// planes are 45 degrees, so |x| <= -z and |y| <= -z.
	return PerspectiveZeroOne(math.Pi/2, 1, 0.1, 100)
}

func TestFrustumPlaneNormalization(t *testing.T) {
	f := FrustumFromMatrix(testProjection())
	for i, p := range f.Planes() {
		if got := p.Normal.Len(); math.Abs(float64(got)-1) > 1e-5 {
			t.Errorf("plane %d normal length = %v, want 1", i, got)
		}
	}
}

func TestFrustumContainsSphere(t *testing.T) {
	f := FrustumFromMatrix(testProjection())

	tests := []struct {
		name   string
		sphere BoundingSphere
		want   bool
	}{
		{"center of view", BoundingSphere{Center: mgl32.Vec3{0, 0, -10}, Radius: 1}, true},
		{"behind camera", BoundingSphere{Center: mgl32.Vec3{0, 0, 5}, Radius: 1}, false},
		{"far beyond any far plane", BoundingSphere{Center: mgl32.Vec3{0, 0, -100000}, Radius: 1}, true},
		{"left of frustum", BoundingSphere{Center: mgl32.Vec3{-20, 0, -10}, Radius: 1}, false},
		{"right of frustum", BoundingSphere{Center: mgl32.Vec3{20, 0, -10}, Radius: 1}, false},
		{"above frustum", BoundingSphere{Center: mgl32.Vec3{0, 20, -10}, Radius: 1}, false},
		{"below frustum", BoundingSphere{Center: mgl32.Vec3{0, -20, -10}, Radius: 1}, false},
		{"touching left plane from outside", BoundingSphere{Center: mgl32.Vec3{-10.5, 0, -10}, Radius: 1}, true},
		{"straddling near plane", BoundingSphere{Center: mgl32.Vec3{0, 0, -0.05}, Radius: 1}, true},
		{"in front of near plane", BoundingSphere{Center: mgl32.Vec3{0, 0, 3}, Radius: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.ContainsSphere(tt.sphere); got != tt.want {
				t.Errorf("ContainsSphere(%+v) = %v, want %v", tt.sphere, got, tt.want)
			}
		})
	}
}

func TestPlaneDistance(t *testing.T) {
	p := Plane{Normal: mgl32.Vec3{0, 0, -1}, D: -2}
	if got := p.Distance(mgl32.Vec3{0, 0, -5}); got != 3 {
		t.Errorf("Distance() = %v, want 3", got)
	}
	if got := p.Distance(mgl32.Vec3{0, 0, 0}); got != -2 {
		t.Errorf("Distance() = %v, want -2", got)
	}
}

func TestBoundingSphereTransformed(t *testing.T) {
	s := BoundingSphere{Center: mgl32.Vec3{1, 0, 0}, Radius: 2}

	t.Run("translation", func(t *testing.T) {
		m := mgl32.Translate3D(0, 5, 0)
		got := s.Transformed(m)
		want := mgl32.Vec3{1, 5, 0}
		if got.Center.Sub(want).Len() > 1e-5 {
			t.Errorf("center = %v, want %v", got.Center, want)
		}
		if got.Radius != 2 {
			t.Errorf("radius = %v, want 2", got.Radius)
		}
	})

	t.Run("non-uniform scale is conservative", func(t *testing.T) {
		m := mgl32.Scale3D(1, 2, 3)
		got := s.Transformed(m)
		// The radius must scale by the maximum axis scale.
		if math.Abs(float64(got.Radius)-6) > 1e-4 {
			t.Errorf("radius = %v, want 6", got.Radius)
		}
	})

	t.Run("rotation preserves radius", func(t *testing.T) {
		m := mgl32.HomogRotate3DY(math.Pi / 3)
		got := s.Transformed(m)
		if math.Abs(float64(got.Radius)-2) > 1e-4 {
			t.Errorf("radius = %v, want 2", got.Radius)
		}
	})
}

func TestSphereFromPoints(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if got := SphereFromPoints(nil); got.Radius != 0 {
			t.Errorf("SphereFromPoints(nil).Radius = %v, want 0", got.Radius)
		}
	})

	t.Run("unit cube corners", func(t *testing.T) {
		var pts []mgl32.Vec3
		for _, x := range []float32{-1, 1} {
			for _, y := range []float32{-1, 1} {
				for _, z := range []float32{-1, 1} {
					pts = append(pts, mgl32.Vec3{x, y, z})
				}
			}
		}
		got := SphereFromPoints(pts)
		if got.Center.Len() > 1e-5 {
			t.Errorf("center = %v, want origin", got.Center)
		}
		want := float32(math.Sqrt(3))
		if math.Abs(float64(got.Radius-want)) > 1e-4 {
			t.Errorf("radius = %v, want %v", got.Radius, want)
		}
		for _, p := range pts {
			if p.Sub(got.Center).Len() > got.Radius+1e-5 {
				t.Errorf("point %v outside sphere", p)
			}
		}
	})
}

func BenchmarkFrustumContainsSphere(b *testing.B) {
	f := FrustumFromMatrix(testProjection())
	s := BoundingSphere{Center: mgl32.Vec3{1, 2, -30}, Radius: 2}
	for b.Loop() {
		f.ContainsSphere(s)
	}
}
