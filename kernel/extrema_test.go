// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectExtremaFindsCentralPeak(t *testing.T) {
	const w, h = 9, 9
	prev := make([]float32, w*h)
	cur := make([]float32, w*h)
	next := make([]float32, w*h)

	cur[4*w+4] = 10
	for _, plane := range [][]float32{prev, cur, next} {
		for i := range plane {
			if plane[i] == 0 {
				plane[i] = 0.01
			}
		}
	}
	cur[4*w+4] = 10

	candidates := DetectExtrema(prev, cur, next, w, h, 1, 1.0, 3)
	require.NotEmpty(t, candidates)
	found := false
	for _, c := range candidates {
		if c.X == 4 && c.Y == 4 {
			found = true
		}
	}
	assert.True(t, found, "expected extremum at (4,4), got %v", candidates)
}

func TestIsExtremumRejectsLowContrast(t *testing.T) {
	const w, h = 5, 5
	prev := make([]float32, w*h)
	cur := make([]float32, w*h)
	next := make([]float32, w*h)
	cur[2*w+2] = 0.001

	assert.False(t, IsExtremum(prev, cur, next, w, h, 2, 2, 1.0, 3))
}

func TestIsExtremumRejectsBorder(t *testing.T) {
	const w, h = 5, 5
	prev := make([]float32, w*h)
	cur := make([]float32, w*h)
	next := make([]float32, w*h)

	assert.False(t, IsExtremum(prev, cur, next, w, h, 0, 0, 0.001, 3))
}
