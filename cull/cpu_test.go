// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cull

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/BVE-Reborn/rend3-sub001/gpudev"
)

func TestCPUCullerVisibility(t *testing.T) {
	dev := gpudev.NewMockDevice()
	defer dev.Destroy()
	c := NewCPUCuller(dev)

	in := &Input{
		Objects: []Object{
			testObject(0, -10, 1, 0, TransparencyOpaque), // visible
			testObject(1, 50, 1, 0, TransparencyOpaque),  // behind camera
			testObject(2, -2, 1, 0, TransparencyOpaque),  // visible, nearer
		},
		View: mgl32.Ident4(),
		Proj: testProjection(),
	}
	out, err := c.Cull(nil, in)
	if err != nil {
		t.Fatalf("Cull() error = %v", err)
	}
	defer c.Release(out)

	if len(out.Draws) != 2 {
		t.Fatalf("len(Draws) = %d, want 2", len(out.Draws))
	}
	// Opaque sorts front-to-back: object 2 first.
	if out.Draws[0].Object != 0 || out.Draws[1].Object != 1 {
		t.Errorf("uniform slots = (%d, %d), want dense (0, 1)",
			out.Draws[0].Object, out.Draws[1].Object)
	}
	if len(out.Uniforms) != 2 {
		t.Fatalf("len(Uniforms) = %d, want 2", len(out.Uniforms))
	}
	// The first draw belongs to the nearer object at z = -2.
	if z := out.Uniforms[0].ModelView.Col(3).Vec3().Z(); z != -2 {
		t.Errorf("first survivor view z = %v, want -2", z)
	}

	wantBytes := uint64(2 * PerObjectUniformSize)
	if got := uint64(len(dev.BufferData(out.UniformBuffer))); got != wantBytes {
		t.Errorf("uniform buffer size = %d, want %d", got, wantBytes)
	}
}

func TestCPUCullerDrawOrder(t *testing.T) {
	dev := gpudev.NewMockDevice()
	defer dev.Destroy()
	c := NewCPUCuller(dev)

	in := &Input{
		Objects: []Object{
			testObject(0, -30, 2, 0, TransparencyBlend),
			testObject(1, -10, 1, 1, TransparencyOpaque),
			testObject(2, -5, 2, 0, TransparencyBlend),
			testObject(3, -20, 1, 0, TransparencyOpaque),
		},
		View: mgl32.Ident4(),
		Proj: testProjection(),
	}
	out, err := c.Cull(nil, in)
	if err != nil {
		t.Fatalf("Cull() error = %v", err)
	}
	defer c.Release(out)

	var got []Transparency
	for _, d := range out.Draws {
		got = append(got, d.Transparency)
	}
	want := []Transparency{
		TransparencyOpaque, TransparencyOpaque, TransparencyBlend, TransparencyBlend,
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("draw %d transparency = %v, want %v (order %v)", i, got[i], want[i], got)
		}
	}
	// Opaque by bind set: set 0 (object 3) before set 1 (object 1).
	if out.Draws[0].BindSet != 0 || out.Draws[1].BindSet != 1 {
		t.Errorf("opaque bind sets = (%d, %d), want (0, 1)", out.Draws[0].BindSet, out.Draws[1].BindSet)
	}
}

func TestCPUCullerEmptySceneDummyUniform(t *testing.T) {
	dev := gpudev.NewMockDevice()
	defer dev.Destroy()
	c := NewCPUCuller(dev)

	out, err := c.Cull(nil, &Input{View: mgl32.Ident4(), Proj: testProjection()})
	if err != nil {
		t.Fatalf("Cull() error = %v", err)
	}
	defer c.Release(out)

	if len(out.Draws) != 0 {
		t.Errorf("len(Draws) = %d, want 0", len(out.Draws))
	}
	if len(out.Uniforms) != 1 {
		t.Fatalf("len(Uniforms) = %d, want 1 dummy record", len(out.Uniforms))
	}
	if out.Uniforms[0] != (PerObjectUniform{}) {
		t.Error("dummy uniform record not zeroed")
	}
	data := dev.BufferData(out.UniformBuffer)
	if len(data) != PerObjectUniformSize {
		t.Fatalf("uniform buffer size = %d, want %d", len(data), PerObjectUniformSize)
	}
	for i, b := range data {
		if b != 0 {
			t.Fatalf("dummy uniform byte %d = %d, want 0", i, b)
		}
	}
}

func TestCPUCullerAllCulledStillDummy(t *testing.T) {
	dev := gpudev.NewMockDevice()
	defer dev.Destroy()
	c := NewCPUCuller(dev)

	in := &Input{
		Objects: []Object{testObject(0, 50, 1, 0, TransparencyOpaque)},
		View:    mgl32.Ident4(),
		Proj:    testProjection(),
	}
	out, err := c.Cull(nil, in)
	if err != nil {
		t.Fatalf("Cull() error = %v", err)
	}
	defer c.Release(out)

	if len(out.Draws) != 0 || len(out.Uniforms) != 1 {
		t.Errorf("draws = %d uniforms = %d, want 0 and 1", len(out.Draws), len(out.Uniforms))
	}
}

func TestCPUCullerAllocFailure(t *testing.T) {
	dev := gpudev.NewMockDevice()
	defer dev.Destroy()
	c := NewCPUCuller(dev)

	dev.FailBufferAlloc = true
	_, err := c.Cull(nil, &Input{View: mgl32.Ident4(), Proj: testProjection()})
	if !errors.Is(err, ErrBufferAlloc) {
		t.Errorf("Cull() error = %v, want ErrBufferAlloc", err)
	}
}

func TestCPUCullerReleaseFreesBuffer(t *testing.T) {
	dev := gpudev.NewMockDevice()
	defer dev.Destroy()
	c := NewCPUCuller(dev)

	out, err := c.Cull(nil, &Input{
		Objects: []Object{testObject(0, -10, 1, 0, TransparencyOpaque)},
		View:    mgl32.Ident4(),
		Proj:    testProjection(),
	})
	if err != nil {
		t.Fatalf("Cull() error = %v", err)
	}
	if dev.BufferCount() != 1 {
		t.Fatalf("BufferCount() = %d, want 1", dev.BufferCount())
	}
	c.Release(out)
	if dev.BufferCount() != 0 {
		t.Errorf("BufferCount() after Release = %d, want 0", dev.BufferCount())
	}
	// Release is idempotent.
	c.Release(out)
}

func BenchmarkCPUCull(b *testing.B) {
	dev := gpudev.NewMockDevice()
	defer dev.Destroy()
	c := NewCPUCuller(dev)

	in := &Input{View: mgl32.Ident4(), Proj: testProjection()}
	for i := 0; i < 1024; i++ {
		in.Objects = append(in.Objects,
			testObject(uint32(i), -float32(i%60)-1, uint64(i%4), uint32(i%8), Transparency(i%3)))
	}
	for b.Loop() {
		out, err := c.Cull(nil, in)
		if err != nil {
			b.Fatal(err)
		}
		c.Release(out)
	}
}
