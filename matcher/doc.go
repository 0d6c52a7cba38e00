// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package matcher runs brute-force 2-nearest-neighbor descriptor matching
// between two feature slots (§4.4), wrapping kernel.MatchBruteForce2NN(Bytes)
// with the input validation the pipeline orchestrator requires before
// dispatch.
package matcher
