// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package pipeline is the per-instance orchestrator (C7): it owns the
// feature slots and match buffer, records command buffers against a
// gpu.Device, and tracks the non-blocking-dispatch / blocking-transfer
// state machine §4.5 and §5 describe. It is grounded on the teacher's
// command-recording style in hal/command.go, adapted from a render/
// compute command stream to the detect/match job shapes this module
// needs.
package pipeline
