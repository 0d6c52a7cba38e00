// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package softgpu is a CPU-executed implementation of the gpu.Backend
// contract. It replaces the teacher's hal/noop backend (which stubbed
// every call out to nothing) with one that actually runs kernels, backed
// by a single dispatch thread from internal/hostthread, so the same
// pyramid/extraction/matching code that would run against a real Vulkan
// compute backend produces real results here.
//
// Buffers are plain []byte; images are one []float32 plane per layer.
// Dispatch of a CommandBuffer's Ops happens in submission order on the
// dispatch thread, giving the single-host-thread semantics §5 requires
// without needing real synchronization primitives.
package softgpu
