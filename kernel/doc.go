// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package kernel holds the compute programs the scale-space, extractor and
// matcher packages dispatch: Gaussian blur (separable and
// hardware-interpolated variants), DoG subtraction, extrema detection,
// orientation histograms and descriptor extraction, and brute-force
// descriptor matching.
//
// Real VulkanSift compiles these as SPIR-V shaders loaded by logical name
// from a Registry (see original_source's asset-backed shader loading).
// softgpu has no shader compiler, so each kernel here is the CPU
// equivalent of one compute shader: a Go function operating on the
// []float32 planes backing a gpu.Image/gpu.Buffer, registered under the
// same stable logical name a real backend's Registry would use.
//
// The blur and DoG kernels split work across workgroups of image rows, and
// the match kernels across groups of A-descriptors, using
// golang.org/x/sync/errgroup, modeling GPU workgroup parallelism without
// needing real compute shaders. Extrema detection, orientation and
// descriptor extraction run serially.
package kernel
