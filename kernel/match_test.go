// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchBruteForce2NNFindsExactMatch(t *testing.T) {
	descA := [][]float32{{1, 0, 0}, {0, 1, 0}}
	descB := [][]float32{{0, 1, 0}, {1, 0, 0}, {0.5, 0.5, 0}}

	results := MatchBruteForce2NN(descA, descB)
	require.Len(t, results, 2)

	assert.Equal(t, 1, results[0].IdxB1)
	assert.Equal(t, float32(0), results[0].DistB1)
	assert.Equal(t, 0, results[1].IdxB1)
	assert.Equal(t, float32(0), results[1].DistB1)
}

func TestMatchBruteForce2NNBytes(t *testing.T) {
	descA := [][]byte{{10, 20, 30}}
	descB := [][]byte{{10, 20, 30}, {0, 0, 0}}

	results := MatchBruteForce2NNBytes(descA, descB)
	require.Len(t, results, 1)
	assert.Equal(t, 0, results[0].IdxB1)
	assert.Equal(t, float32(0), results[0].DistB1)
	assert.Equal(t, 1, results[0].IdxB2)
}
