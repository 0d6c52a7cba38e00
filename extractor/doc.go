// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package extractor turns a built scale-space pyramid into a list of SIFT
// keypoints: extrema detection, Brown-Lowe sub-pixel refinement,
// contrast/edge rejection, orientation assignment and descriptor
// extraction, finishing with the atomic-append/saturation discipline a
// real feature-slot buffer enforces on a GPU.
package extractor
