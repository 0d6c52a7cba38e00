// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package kernel

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrientationHistogramNilNearBorder(t *testing.T) {
	plane := make([]float32, 10*10)
	hist := OrientationHistogram(plane, 10, 10, 1, 1, 2)
	assert.Nil(t, hist)
}

func TestFindOrientationPeaksSingleDominant(t *testing.T) {
	hist := make([]float32, orientationBins)
	hist[10] = 100
	hist[9] = 40
	hist[11] = 40

	peaks := FindOrientationPeaks(hist)
	require.NotEmpty(t, peaks)
	for _, p := range peaks {
		assert.GreaterOrEqual(t, p.Theta, float32(0))
		assert.Less(t, p.Theta, 2*math32.Pi)
	}
}

func TestFindOrientationPeaksEmptyHistogram(t *testing.T) {
	hist := make([]float32, orientationBins)
	peaks := FindOrientationPeaks(hist)
	assert.Empty(t, peaks)
}
