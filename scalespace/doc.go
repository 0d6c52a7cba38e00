// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package scalespace builds the Gaussian and Difference-of-Gaussian
// pyramids a detect call scans for keypoints, following the build
// sequence and blur strategies of the original VulkanSift's scale-space
// shaders (see original_source's sift_detector, now expressed as calls
// into the kernel package rather than dispatched SPIR-V).
package scalespace
