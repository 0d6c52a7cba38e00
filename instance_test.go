// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package vulkansift_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vulkansift/vulkansift"
	_ "github.com/vulkansift/vulkansift/gpu/softgpu"
)

func syntheticBlob(w, h int, cx, cy, sigma float64, amplitude float64) []byte {
	img := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx := float64(x) - cx
			dy := float64(y) - cy
			v := amplitude * math.Exp(-(dx*dx+dy*dy)/(2*sigma*sigma))
			if v > 255 {
				v = 255
			}
			img[y*w+x] = byte(v)
		}
	}
	return img
}

func newTestInstance(t *testing.T) *vulkansift.Instance {
	t.Helper()
	require.Equal(t, vulkansift.Success, vulkansift.LoadVulkan())
	t.Cleanup(vulkansift.UnloadVulkan)

	cfg := vulkansift.DefaultConfig()
	cfg.SiftBufferCount = 2
	cfg.NbOctaves = 2

	inst, result := vulkansift.CreateInstance(cfg)
	require.Equal(t, vulkansift.Success, result)
	t.Cleanup(inst.Destroy)
	return inst
}

func TestCreateInstanceRequiresLoadVulkan(t *testing.T) {
	_, result := vulkansift.CreateInstance(vulkansift.DefaultConfig())
	require.Equal(t, vulkansift.InvalidInputError, result)
}

func TestInstanceDetectAndDownload(t *testing.T) {
	inst := newTestInstance(t)

	const w, h = 128, 128
	img := syntheticBlob(w, h, 64, 64, 4, 200)

	require.Equal(t, vulkansift.Success, inst.DetectFeatures(0, img, w, h))

	features, result := inst.DownloadFeatures(0)
	require.Equal(t, vulkansift.Success, result)
	require.NotNil(t, features)

	n, result := inst.GetFeaturesNumber(0)
	require.Equal(t, vulkansift.Success, result)
	require.Equal(t, len(features), n)
}

func TestInstanceUploadRoundTrip(t *testing.T) {
	inst := newTestInstance(t)

	const w, h = 64, 64
	img := syntheticBlob(w, h, 32, 32, 3, 200)
	require.Equal(t, vulkansift.Success, inst.DetectFeatures(0, img, w, h))

	features, result := inst.DownloadFeatures(0)
	require.Equal(t, vulkansift.Success, result)

	require.Equal(t, vulkansift.Success, inst.UploadFeatures(1, features))
	roundTripped, result := inst.DownloadFeatures(1)
	require.Equal(t, vulkansift.Success, result)
	require.Equal(t, len(features), len(roundTripped))
}

func TestInstanceDetectAndMatch(t *testing.T) {
	inst := newTestInstance(t)

	const w, h = 96, 96
	imgA := syntheticBlob(w, h, 48, 48, 4, 200)
	imgB := syntheticBlob(w, h, 50, 48, 4, 200)

	require.Equal(t, vulkansift.Success, inst.DetectFeatures(0, imgA, w, h))
	require.Equal(t, vulkansift.Success, inst.DetectFeatures(1, imgB, w, h))
	_, _ = inst.DownloadFeatures(0)
	_, _ = inst.DownloadFeatures(1)

	require.Equal(t, vulkansift.Success, inst.MatchFeatures(0, 1))

	_, result := inst.GetMatchesNumber()
	require.Equal(t, vulkansift.Success, result)
	require.Eventually(t, func() bool {
		return inst.IsBufferAvailable(0) && inst.IsBufferAvailable(1)
	}, time.Second, time.Millisecond)
}

func TestInstanceScaleSpaceIntrospection(t *testing.T) {
	inst := newTestInstance(t)

	const w, h = 64, 64
	img := syntheticBlob(w, h, 32, 32, 3, 200)
	require.Equal(t, vulkansift.Success, inst.DetectFeatures(0, img, w, h))
	_, _ = inst.DownloadFeatures(0)

	nbOctaves, result := inst.GetScaleSpaceNbOctaves(0)
	require.Equal(t, vulkansift.Success, result)
	require.Greater(t, nbOctaves, 0)

	ow, oh, result := inst.GetScaleSpaceOctaveResolution(0, 0)
	require.Equal(t, vulkansift.Success, result)
	require.Equal(t, w, ow)
	require.Equal(t, h, oh)

	plane, result := inst.DownloadScaleSpaceImage(0, 0, 0)
	require.Equal(t, vulkansift.Success, result)
	require.Equal(t, w*h, len(plane))

	dog, result := inst.DownloadDoGImage(0, 0, 0)
	require.Equal(t, vulkansift.Success, result)
	require.Equal(t, w*h, len(dog))
}

func TestInstanceMatchRejectsSameSlot(t *testing.T) {
	inst := newTestInstance(t)
	require.Equal(t, vulkansift.InvalidInputError, inst.MatchFeatures(0, 0))
}

func TestPresentDebugFrameNoWindowIsNoop(t *testing.T) {
	inst := newTestInstance(t)
	require.False(t, inst.PresentDebugFrame())
}

func TestGetAvailableGPUs(t *testing.T) {
	require.Equal(t, vulkansift.Success, vulkansift.LoadVulkan())
	defer vulkansift.UnloadVulkan()

	count, result := vulkansift.GetAvailableGPUs(nil)
	require.Equal(t, vulkansift.Success, result)
	require.GreaterOrEqual(t, count, 1)

	names := make([]string, count)
	n, result := vulkansift.GetAvailableGPUs(names)
	require.Equal(t, vulkansift.Success, result)
	require.Equal(t, count, n)
	require.Contains(t, names, "softgpu")
}
