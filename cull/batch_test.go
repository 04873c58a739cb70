// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cull

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func batchInput(objects []Object) (*Input, []preparedObject) {
	in := &Input{Objects: objects, View: mgl32.Ident4(), Proj: testProjection()}
	return in, prepare(in, nil)
}

func TestRoundInvocations(t *testing.T) {
	tests := []struct {
		triangles, want uint32
	}{
		{0, 0},
		{1, 64},
		{64, 64},
		{65, 128},
		{1000, 1024},
	}
	for _, tt := range tests {
		if got := roundInvocations(tt.triangles); got != tt.want {
			t.Errorf("roundInvocations(%d) = %d, want %d", tt.triangles, got, tt.want)
		}
	}
}

func TestBuildBatchesCapacity(t *testing.T) {
	var objects []Object
	for i := 0; i < 300; i++ {
		objects = append(objects, testObject(uint32(i), -10, 1, 0, TransparencyOpaque))
	}
	in, prepared := batchInput(objects)

	batches := buildBatches(prepared, in, DefaultBatchConfig())
	if len(batches) != 2 {
		t.Fatalf("len(batches) = %d, want 2", len(batches))
	}
	if got := len(batches[0].Objects); got != BatchCapacity {
		t.Errorf("batch 0 objects = %d, want %d", got, BatchCapacity)
	}
	if got := len(batches[1].Objects); got != 300-BatchCapacity {
		t.Errorf("batch 1 objects = %d, want %d", got, 300-BatchCapacity)
	}
	if got := batches[0].TotalInvocations; got != BatchCapacity*WorkgroupSize {
		t.Errorf("batch 0 invocations = %d, want %d", got, BatchCapacity*WorkgroupSize)
	}
}

func TestBuildBatchesKeyRuns(t *testing.T) {
	objects := []Object{
		testObject(0, -10, 1, 0, TransparencyOpaque),
		testObject(1, -10, 1, 0, TransparencyOpaque),
		testObject(2, -10, 1, 1, TransparencyOpaque), // bind set changes
		testObject(3, -10, 2, 1, TransparencyOpaque), // material changes
	}
	in, prepared := batchInput(objects)

	batches := buildBatches(prepared, in, DefaultBatchConfig())
	if len(batches) != 3 {
		t.Fatalf("len(batches) = %d, want 3", len(batches))
	}
	if batches[0].MaterialKey != 1 || batches[0].BindSet != 0 || len(batches[0].Objects) != 2 {
		t.Errorf("batch 0 = {mat %d set %d n %d}, want {mat 1 set 0 n 2}",
			batches[0].MaterialKey, batches[0].BindSet, len(batches[0].Objects))
	}
	if batches[1].BindSet != 1 || batches[2].MaterialKey != 2 {
		t.Errorf("batch keys = (%d/%d, %d/%d), want (1/1, 2/1)",
			batches[1].MaterialKey, batches[1].BindSet, batches[2].MaterialKey, batches[2].BindSet)
	}
}

func TestBuildBatchesInvocationLimit(t *testing.T) {
	mk := func(i uint32, triangles uint32) Object {
		o := testObject(i, -10, 1, 0, TransparencyOpaque)
		o.IndexCount = triangles * 3
		return o
	}
	// 100 triangles round to 128 invocations; a 128-invocation cap
	// fits exactly one object per batch.
	objects := []Object{mk(0, 100), mk(1, 100), mk(2, 100)}
	in, prepared := batchInput(objects)

	batches := buildBatches(prepared, in, BatchConfig{MaxInvocations: 128})
	if len(batches) != 3 {
		t.Fatalf("len(batches) = %d, want 3", len(batches))
	}
	for i := range batches {
		if got := batches[i].TotalInvocations; got != 128 {
			t.Errorf("batch %d invocations = %d, want 128", i, got)
		}
	}
}

func TestBuildBatchesOversizedObjectSplits(t *testing.T) {
	o := testObject(0, -10, 1, 0, TransparencyOpaque)
	o.IndexCount = 300 * 3 // 300 triangles against a 128-invocation cap
	in, prepared := batchInput([]Object{o})

	batches := buildBatches(prepared, in, BatchConfig{MaxInvocations: 128})
	if len(batches) != 3 {
		t.Fatalf("len(batches) = %d, want 3", len(batches))
	}
	wantChunks := []struct{ offset, count uint32 }{
		{0, 128}, {128, 128}, {256, 44},
	}
	for i, want := range wantChunks {
		if len(batches[i].Objects) != 1 {
			t.Fatalf("batch %d objects = %d, want 1", i, len(batches[i].Objects))
		}
		bo := batches[i].Objects[0]
		if bo.TriangleOffset != want.offset || bo.TriangleCount != want.count {
			t.Errorf("batch %d slice = {%d %d}, want {%d %d}",
				i, bo.TriangleOffset, bo.TriangleCount, want.offset, want.count)
		}
		if bo.FirstInvocation != 0 {
			t.Errorf("batch %d FirstInvocation = %d, want 0", i, bo.FirstInvocation)
		}
	}
}

func TestBuildBatchesFirstInvocationRounded(t *testing.T) {
	mk := func(i uint32, triangles uint32) Object {
		o := testObject(i, -10, 1, 0, TransparencyOpaque)
		o.IndexCount = triangles * 3
		return o
	}
	objects := []Object{mk(0, 1), mk(1, 70)}
	in, prepared := batchInput(objects)

	batches := buildBatches(prepared, in, DefaultBatchConfig())
	if len(batches) != 1 {
		t.Fatalf("len(batches) = %d, want 1", len(batches))
	}
	b := batches[0]
	if b.Objects[0].Invocations != 64 {
		t.Errorf("object 0 invocations = %d, want 64", b.Objects[0].Invocations)
	}
	if b.Objects[1].FirstInvocation != 64 || b.Objects[1].Invocations != 128 {
		t.Errorf("object 1 = {first %d inv %d}, want {first 64 inv 128}",
			b.Objects[1].FirstInvocation, b.Objects[1].Invocations)
	}
	if b.TotalInvocations != 192 {
		t.Errorf("TotalInvocations = %d, want 192", b.TotalInvocations)
	}
	if b.Workgroups() != 3 {
		t.Errorf("Workgroups() = %d, want 3", b.Workgroups())
	}
}

func TestBuildBatchesSkipsEmptyMeshes(t *testing.T) {
	o := testObject(0, -10, 1, 0, TransparencyOpaque)
	o.IndexCount = 0
	in, prepared := batchInput([]Object{o})

	if batches := buildBatches(prepared, in, DefaultBatchConfig()); len(batches) != 0 {
		t.Errorf("len(batches) = %d, want 0 for empty meshes", len(batches))
	}
}

func TestBatchConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		in   uint32
		want uint32
	}{
		{"zero gets default", 0, defaultMaxWorkgroups * WorkgroupSize},
		{"rounds down to workgroup multiple", 130, 128},
		{"floors at one workgroup", 10, WorkgroupSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := BatchConfig{MaxInvocations: tt.in}
			c.validate()
			if c.MaxInvocations != tt.want {
				t.Errorf("validate(%d) = %d, want %d", tt.in, c.MaxInvocations, tt.want)
			}
		})
	}
}
