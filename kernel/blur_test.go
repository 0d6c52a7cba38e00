// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGaussian1DSumsToOne(t *testing.T) {
	taps := Gaussian1D(2.0)
	var sum float32
	for _, v := range taps {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-4)
}

func TestGaussian1DDegenerateSigma(t *testing.T) {
	taps := Gaussian1D(0)
	require.Len(t, taps, 1)
	assert.Equal(t, float32(1), taps[0])
}

func TestBlurConservesFlatImage(t *testing.T) {
	const w, h = 16, 16
	src := make([]float32, w*h)
	for i := range src {
		src[i] = 5.0
	}
	scratch := make([]float32, w*h)
	dst := make([]float32, w*h)

	require.NoError(t, Blur(src, scratch, dst, w, h, 1.5))
	for _, v := range dst {
		assert.InDelta(t, 5.0, v, 1e-3)
	}
}

func TestHardwareInterpolatedBlurConservesFlatImage(t *testing.T) {
	const w, h = 16, 16
	src := make([]float32, w*h)
	for i := range src {
		src[i] = 3.0
	}
	scratch := make([]float32, w*h)
	dst := make([]float32, w*h)

	require.NoError(t, BlurHardwareInterpolated(src, scratch, dst, w, h, 1.5))
	for _, v := range dst {
		assert.InDelta(t, 3.0, v, 1e-2)
	}
}

func TestDifferenceOfGaussian(t *testing.T) {
	const w, h = 4, 4
	low := make([]float32, w*h)
	high := make([]float32, w*h)
	for i := range high {
		high[i] = 2
		low[i] = 1
	}
	dst := make([]float32, w*h)
	require.NoError(t, DifferenceOfGaussian(low, high, dst, w, h))
	for _, v := range dst {
		assert.Equal(t, float32(1), v)
	}
}
