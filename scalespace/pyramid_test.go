// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package scalespace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatImage(w, h int, v float32) []float32 {
	img := make([]float32, w*h)
	for i := range img {
		img[i] = v
	}
	return img
}

func TestBuildRejectsMismatchedDimensions(t *testing.T) {
	_, err := Build(make([]float32, 10), 4, 4, DefaultConfig())
	assert.Error(t, err)
}

func TestBuildProducesExpectedPlaneCounts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NbOctaves = 2
	img := flatImage(64, 64, 0.5)

	pyr, err := Build(img, 64, 64, cfg)
	require.NoError(t, err)
	require.Len(t, pyr.Octaves, 2)

	for o, oct := range pyr.Octaves {
		assert.Lenf(t, oct.Gaussian, cfg.NbScalesPerOctave+3, "octave %d gaussian count", o)
		assert.Lenf(t, oct.DoG, cfg.NbScalesPerOctave+2, "octave %d dog count", o)
	}

	assert.Equal(t, 64, pyr.Octaves[0].Width)
	assert.Equal(t, 32, pyr.Octaves[1].Width)
}

func TestBuildFlatImageYieldsZeroDoG(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NbOctaves = 1
	img := flatImage(32, 32, 0.5)

	pyr, err := Build(img, 32, 32, cfg)
	require.NoError(t, err)

	for _, dog := range pyr.Octaves[0].DoG {
		for _, v := range dog {
			assert.InDelta(t, 0, v, 1e-3)
		}
	}
}

func TestNbOctavesAutoClampsToAtLeastOne(t *testing.T) {
	cfg := DefaultConfig()
	n := NbOctaves(cfg, 8, 8)
	assert.GreaterOrEqual(t, n, 1)
}

func TestBuildWithUpsamplingDoublesBaseDimensions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UseUpsampling = true
	cfg.NbOctaves = 1
	img := flatImage(16, 16, 0.3)

	pyr, err := Build(img, 16, 16, cfg)
	require.NoError(t, err)
	assert.Equal(t, 32, pyr.BaseWidth)
	assert.Equal(t, 32, pyr.BaseHeight)
}

func TestBuildWithHardwareInterpolatedBlur(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UseHardwareInterpolatedBlur = true
	cfg.NbOctaves = 1
	img := flatImage(32, 32, 0.7)

	pyr, err := Build(img, 32, 32, cfg)
	require.NoError(t, err)
	for _, v := range pyr.Octaves[0].Gaussian[0] {
		assert.InDelta(t, 0.7, v, 0.05)
	}
}

func TestBuildWithFloat16Precision(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Precision = PrecisionFloat16
	cfg.NbOctaves = 1
	img := flatImage(32, 32, 0.5)

	pyr, err := Build(img, 32, 32, cfg)
	require.NoError(t, err)
	assert.NotEmpty(t, pyr.Octaves[0].Gaussian[0])
}
