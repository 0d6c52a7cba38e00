// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vulkansift/vulkansift/extractor"
	"github.com/vulkansift/vulkansift/gpu"
	_ "github.com/vulkansift/vulkansift/gpu/softgpu"
	"github.com/vulkansift/vulkansift/scalespace"
)

func newTestOrchestrator(t *testing.T, nbSlots int) *Orchestrator {
	t.Helper()
	backend, ok := gpu.GetBackend("softgpu")
	require.True(t, ok, "softgpu backend not registered")

	device, err := backend.Open()
	require.NoError(t, err)
	t.Cleanup(device.Destroy)

	cfg := Config{
		ScaleSpace:     scalespace.DefaultConfig(),
		Extractor:      extractor.DefaultConfig(),
		MaxImageWidth:  4096,
		MaxImageHeight: 4096,
	}
	cfg.ScaleSpace.NbOctaves = 2

	orch, err := New(device, nbSlots, cfg)
	require.NoError(t, err)
	return orch
}

func syntheticBlobBytes(w, h int, cx, cy, sigma float32, amplitude float64) []byte {
	img := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx := float64(x) - float64(cx)
			dy := float64(y) - float64(cy)
			v := amplitude * math.Exp(-(dx*dx+dy*dy)/(2*float64(sigma)*float64(sigma)))
			if v > 255 {
				v = 255
			}
			img[y*w+x] = byte(v)
		}
	}
	return img
}

func TestOrchestratorDetectFeaturesRejectsInvalidSlot(t *testing.T) {
	orch := newTestOrchestrator(t, 2)
	result := orch.DetectFeatures(5, make([]byte, 16), 4, 4)
	require.Equal(t, InvalidInputError, result)
}

func TestOrchestratorDetectThenDownload(t *testing.T) {
	orch := newTestOrchestrator(t, 2)

	const w, h = 128, 128
	img := syntheticBlobBytes(w, h, 64, 64, 4, 200)

	result := orch.DetectFeatures(0, img, w, h)
	require.Equal(t, Success, result)

	features, result := orch.DownloadFeatures(0)
	require.Equal(t, Success, result)
	require.True(t, orch.IsBufferAvailable(0))
	_ = features
}

func TestOrchestratorSlotIsolation(t *testing.T) {
	orch := newTestOrchestrator(t, 2)

	const w, h = 64, 64
	imgA := syntheticBlobBytes(w, h, 32, 32, 3, 200)
	imgB := syntheticBlobBytes(w, h, 16, 48, 3, 200)

	require.Equal(t, Success, orch.DetectFeatures(0, imgA, w, h))
	featuresA, _ := orch.DownloadFeatures(0)

	require.Equal(t, Success, orch.DetectFeatures(1, imgB, w, h))
	_, _ = orch.DownloadFeatures(1)

	featuresAAfter, _ := orch.DownloadFeatures(0)
	require.Equal(t, len(featuresA), len(featuresAAfter))
}

func TestOrchestratorMatchRejectsSameSlot(t *testing.T) {
	orch := newTestOrchestrator(t, 2)
	result := orch.MatchFeatures(0, 0)
	require.Equal(t, InvalidInputError, result)
}

func TestOrchestratorGetFeaturesNumberInvalidSlot(t *testing.T) {
	orch := newTestOrchestrator(t, 1)
	count, result := orch.GetFeaturesNumber(7)
	require.Equal(t, 0, count)
	require.Equal(t, InvalidInputError, result)
}

func TestOrchestratorDetectAndMatch(t *testing.T) {
	orch := newTestOrchestrator(t, 2)
	const w, h = 96, 96
	imgA := syntheticBlobBytes(w, h, 48, 48, 4, 200)
	imgB := syntheticBlobBytes(w, h, 50, 48, 4, 200)

	require.Equal(t, Success, orch.DetectFeatures(0, imgA, w, h))
	require.Equal(t, Success, orch.DetectFeatures(1, imgB, w, h))

	_, _ = orch.DownloadFeatures(0)
	_, _ = orch.DownloadFeatures(1)

	result := orch.MatchFeatures(0, 1)
	require.Equal(t, Success, result)

	_, result = orch.GetMatchesNumber()
	require.Equal(t, Success, result)
	require.Eventually(t, func() bool {
		return orch.IsBufferAvailable(0) && orch.IsBufferAvailable(1)
	}, time.Second, time.Millisecond)
}
