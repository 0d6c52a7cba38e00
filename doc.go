// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package vulkansift provides GPU-accelerated Scale-Invariant Feature
// Transform (SIFT) keypoint detection and brute-force descriptor
// matching.
//
// # Quick Start
//
// Import this package and load a GPU backend (only gpu/softgpu ships
// today; a real Vulkan-backed package would register the same way):
//
//	import (
//	    "github.com/vulkansift/vulkansift"
//	    _ "github.com/vulkansift/vulkansift/gpu/softgpu"
//	)
//
//	vulkansift.LoadVulkan()
//	defer vulkansift.UnloadVulkan()
//
//	inst, result := vulkansift.CreateInstance(vulkansift.DefaultConfig())
//	defer inst.Destroy()
//
//	inst.DetectFeatures(0, imageBytes, width, height)
//	features, _ := inst.DownloadFeatures(0)
//
// # Resource Lifecycle
//
// An Instance owns every GPU resource it creates; Destroy waits for all
// outstanding work before releasing them. There is no reference counting:
// an Instance is either alive or destroyed.
//
// # Backend Registration
//
// Backends register themselves via blank imports, mirroring how a real
// Vulkan/Metal/DX12 backend would:
//
//	_ "github.com/vulkansift/vulkansift/gpu/softgpu" // CPU-executed backend
//
// # Thread Safety
//
// An Instance is not safe for concurrent use by multiple goroutines;
// callers serialize externally.
package vulkansift
