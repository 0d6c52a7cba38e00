// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package kernel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func syntheticGradientPlane(w, h int) []float32 {
	plane := make([]float32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			plane[y*w+x] = float32(x) * 0.1
		}
	}
	return plane
}

func TestComputeDescriptorLength(t *testing.T) {
	const w, h = 128, 128
	plane := syntheticGradientPlane(w, h)

	desc := ComputeDescriptor(plane, w, h, 64, 64, 4, 0)
	require.NotNil(t, desc)
	assert.Len(t, desc, DescriptorLen)
}

func TestComputeDescriptorNilNearBorder(t *testing.T) {
	const w, h = 16, 16
	plane := syntheticGradientPlane(w, h)
	desc := ComputeDescriptor(plane, w, h, 1, 1, 4, 0)
	assert.Nil(t, desc)
}

func TestNormalizeDescriptorUBC2UnitNorm(t *testing.T) {
	desc := make([]float32, DescriptorLen)
	for i := range desc {
		desc[i] = float32(i + 1)
	}
	normalized := NormalizeDescriptorUBC2(desc)

	var sumSq float64
	for _, v := range normalized {
		sumSq += float64(v) * float64(v)
		assert.LessOrEqual(t, v, float32(0.2+1e-6))
	}
	assert.LessOrEqual(t, math.Sqrt(sumSq), 1.0+1e-3)
}

func TestQuantizeDescriptorUBC1Range(t *testing.T) {
	desc := make([]float32, DescriptorLen)
	for i := range desc {
		desc[i] = float32(i + 1)
	}
	quantized := QuantizeDescriptorUBC1(desc)
	require.Len(t, quantized, DescriptorLen)
	for _, b := range quantized {
		assert.LessOrEqual(t, int(b), 255)
		assert.GreaterOrEqual(t, int(b), 0)
	}
}
