// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command rend3demo spins a field of cubes through the frame
// pipeline and reports what each frame culled and drew.
//
// By default frames run against the in-memory mock device, which
// works on any machine. With -gpu the demo opens a real device
// through the Vulkan backend and, with -gpucull, moves visibility
// onto the GPU compute path.
package main

import (
	"flag"
	"log"
	"log/slog"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl32"

	rend3 "github.com/BVE-Reborn/rend3-sub001"
	"github.com/BVE-Reborn/rend3-sub001/backend/wgpu"
	"github.com/BVE-Reborn/rend3-sub001/gpudev"
)

func main() {
	var (
		objects = flag.Int("objects", 300, "number of cubes in the scene")
		frames  = flag.Int("frames", 60, "frames to render")
		width   = flag.Uint("width", 1280, "frame width")
		height  = flag.Uint("height", 720, "frame height")
		useGPU  = flag.Bool("gpu", false, "render on a real device instead of the mock")
		gpuCull = flag.Bool("gpucull", false, "cull on the GPU compute path")
		verbose = flag.Bool("v", false, "log at debug level")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var dev gpudev.Device
	if *useGPU {
		adapter, err := wgpu.Open()
		if err != nil {
			log.Fatalf("open device: %v", err)
		}
		dev = adapter
	} else {
		dev = gpudev.NewMockDevice()
	}

	cfg := rend3.DefaultConfig()
	cfg.GPUCulling = *gpuCull

	r, err := rend3.NewRenderer(dev, cfg)
	if err != nil {
		log.Fatalf("create renderer: %v", err)
	}
	defer func() {
		r.Destroy()
		dev.Destroy()
	}()
	r.SetLogger(logger)

	mesh, err := r.AddMesh(cubeMesh())
	if err != nil {
		log.Fatalf("add mesh: %v", err)
	}
	mat, err := r.AddMaterial(rend3.MaterialDescriptor{Label: "flat"})
	if err != nil {
		log.Fatalf("add material: %v", err)
	}

	handles := make([]rend3.ObjectHandle, *objects)
	for i := range handles {
		handles[i] = r.AddObject(rend3.ObjectDescriptor{
			Mesh:      mesh,
			Material:  mat,
			Transform: objectTransform(i, *objects, 0),
		})
	}

	cam := rend3.DefaultCamera()
	cam.LookAt(mgl32.Vec3{0, 6, 14}, mgl32.Vec3{0, 0, -10}, mgl32.Vec3{0, 1, 0})

	for frame := 0; frame < *frames; frame++ {
		angle := float32(frame) * 0.02
		for i, h := range handles {
			r.SetObjectTransform(h, objectTransform(i, *objects, angle))
		}

		report, err := r.Render(rend3.FrameOptions{
			Camera: cam,
			Width:  uint32(*width),
			Height: uint32(*height),
		})
		if err != nil {
			log.Fatalf("frame %d: %v", frame, err)
		}
		logger.Info("frame done",
			"frame", frame, "objects", report.Objects, "drawn", report.Drawn)
	}
}

// objectTransform lays the cubes out on a slowly rotating ring in
// front of the camera.
func objectTransform(i, total int, angle float32) mgl32.Mat4 {
	t := float32(i) / float32(total)
	a := angle + t*2*math.Pi
	radius := 6 + 4*float32(math.Sin(float64(t*7)))
	x := radius * float32(math.Cos(float64(a)))
	z := -14 + radius*float32(math.Sin(float64(a)))*0.5
	y := 2 * float32(math.Sin(float64(a*3)))
	return mgl32.Translate3D(x, y, z)
}

func cubeMesh() rend3.MeshDescriptor {
	return rend3.MeshDescriptor{
		Label: "cube",
		Vertices: []mgl32.Vec3{
			{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {-0.5, 0.5, -0.5},
			{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5},
		},
		Indices: []uint32{
			0, 1, 2, 2, 3, 0,
			1, 5, 6, 6, 2, 1,
			5, 4, 7, 7, 6, 5,
			4, 0, 3, 3, 7, 4,
			3, 2, 6, 6, 7, 3,
			4, 5, 1, 1, 0, 4,
		},
	}
}
