// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package extractor

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vulkansift/vulkansift/scalespace"
)

// syntheticBlob renders a Gaussian blob of the given sigma and amplitude
// centered at (cx, cy), matching scenario 1 from §8.
func syntheticBlob(w, h int, cx, cy, sigma, amplitude float32) []float32 {
	img := make([]float32, w*h)
	twoSigmaSq := 2 * sigma * sigma
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx := float32(x) - cx
			dy := float32(y) - cy
			img[y*w+x] = amplitude * math32.Exp(-(dx*dx+dy*dy)/twoSigmaSq) / 255
		}
	}
	return img
}

func TestExtractFindsSyntheticBlob(t *testing.T) {
	const w, h = 256, 256
	img := syntheticBlob(w, h, 128, 128, 4, 200)

	ssCfg := scalespace.DefaultConfig()
	ssCfg.NbOctaves = 3
	pyr, err := scalespace.Build(img, w, h, ssCfg)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.MaxFeaturesPerSlot = 1000
	features, err := Extract(pyr, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, features)

	var closest *Feature
	var bestDist float32 = 1e9
	for i := range features {
		f := &features[i]
		dist := math32.Hypot(f.OrigX-128, f.OrigY-128)
		if dist < bestDist {
			bestDist = dist
			closest = f
		}
	}
	require.NotNil(t, closest)
	assert.LessOrEqual(t, bestDist, float32(2))
}

func TestExtractRejectsEmptyPyramid(t *testing.T) {
	_, err := Extract(&scalespace.Pyramid{}, DefaultConfig())
	assert.Error(t, err)
}

func TestExtractSaturatesAtCapacity(t *testing.T) {
	const w, h = 128, 128
	img := make([]float32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img[y*w+x] = 1
			}
		}
	}

	ssCfg := scalespace.DefaultConfig()
	ssCfg.NbOctaves = 2
	pyr, err := scalespace.Build(img, w, h, ssCfg)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.IntensityThreshold = 0.0001
	cfg.MaxFeaturesPerSlot = 10
	features, err := Extract(pyr, cfg)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(features), 10)
}

func TestExtractEveryFeatureHasValidThetaAndSigma(t *testing.T) {
	const w, h = 256, 256
	img := syntheticBlob(w, h, 100, 150, 5, 180)

	ssCfg := scalespace.DefaultConfig()
	ssCfg.NbOctaves = 3
	pyr, err := scalespace.Build(img, w, h, ssCfg)
	require.NoError(t, err)

	features, err := Extract(pyr, DefaultConfig())
	require.NoError(t, err)

	for _, f := range features {
		assert.GreaterOrEqual(t, f.Theta, float32(0))
		assert.Less(t, f.Theta, float32(2*math32.Pi))
		assert.Greater(t, f.Sigma, float32(0))
	}
}
