// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package vulkansift

import (
	"github.com/vulkansift/vulkansift/extractor"
	"github.com/vulkansift/vulkansift/pipeline"
)

// DetectFeatures dispatches feature detection for an image into slotID,
// non-blocking (§4.5, §6). imageBytes is row-major 8-bit grayscale,
// width*height long.
func (inst *Instance) DetectFeatures(slotID int, imageBytes []byte, width, height int) Result {
	return Result(inst.orch.DetectFeatures(slotID, imageBytes, width, height))
}

// MatchFeatures dispatches brute-force 2-NN matching between slotA and
// slotB into the instance's single match buffer, non-blocking (§4.5, §6).
func (inst *Instance) MatchFeatures(slotA, slotB int) Result {
	return Result(inst.orch.MatchFeatures(slotA, slotB))
}

// GetFeaturesNumber blocks until slotID's detect dispatch completes, then
// returns its feature count (§6).
func (inst *Instance) GetFeaturesNumber(slotID int) (int, Result) {
	n, r := inst.orch.GetFeaturesNumber(slotID)
	return n, Result(r)
}

// DownloadFeatures blocks until slotID's dispatch completes, then returns
// its features (§6).
func (inst *Instance) DownloadFeatures(slotID int) ([]Feature, Result) {
	internal, r := inst.orch.DownloadFeatures(slotID)
	if r != pipeline.Success {
		return nil, Result(r)
	}
	out := make([]Feature, len(internal))
	for i, f := range internal {
		out[i] = featureFromInternal(f)
	}
	return out, Success
}

// UploadFeatures blocks until slotID is idle, then installs features
// directly, bypassing detection (§6, §8's round-trip property).
func (inst *Instance) UploadFeatures(slotID int, features []Feature) Result {
	return Result(inst.orch.UploadFeatures(slotID, toInternalFeatures(features)))
}

// GetMatchesNumber blocks until the match buffer's dispatch completes,
// then returns its match count (§6).
func (inst *Instance) GetMatchesNumber() (int, Result) {
	n, r := inst.orch.GetMatchesNumber()
	return n, Result(r)
}

// DownloadMatches blocks until the match buffer's dispatch completes,
// then returns its matches (§6).
func (inst *Instance) DownloadMatches() ([]Match, Result) {
	internal, r := inst.orch.DownloadMatches()
	if r != pipeline.Success {
		return nil, Result(r)
	}
	out := make([]Match, len(internal))
	for i, m := range internal {
		out[i] = matchFromInternal(m)
	}
	return out, Success
}

// IsBufferAvailable reports whether slotID is idle, i.e. safe to read
// without blocking (§4.5, §6).
func (inst *Instance) IsBufferAvailable(slotID int) bool {
	return inst.orch.IsBufferAvailable(slotID)
}

// NbSlots returns the configured feature-slot count.
func (inst *Instance) NbSlots() int {
	return inst.orch.NbSlots()
}

// GetScaleSpaceNbOctaves blocks until slotID's detect dispatch completes,
// then returns how many octaves its scale-space pyramid has (§6 debug
// introspection).
func (inst *Instance) GetScaleSpaceNbOctaves(slotID int) (int, Result) {
	n, r := inst.orch.GetScaleSpaceNbOctaves(slotID)
	return n, Result(r)
}

// GetScaleSpaceOctaveResolution returns octave's plane dimensions.
func (inst *Instance) GetScaleSpaceOctaveResolution(slotID, octave int) (int, int, Result) {
	w, h, r := inst.orch.GetScaleSpaceOctaveResolution(slotID, octave)
	return w, h, Result(r)
}

// DownloadScaleSpaceImage returns octave/scale's Gaussian plane as a
// row-major float32 slice (§6 debug introspection).
func (inst *Instance) DownloadScaleSpaceImage(slotID, octave, scale int) ([]float32, Result) {
	plane, r := inst.orch.DownloadScaleSpaceImage(slotID, octave, scale)
	return plane, Result(r)
}

// DownloadDoGImage returns octave/scale's difference-of-Gaussian plane.
func (inst *Instance) DownloadDoGImage(slotID, octave, scale int) ([]float32, Result) {
	plane, r := inst.orch.DownloadDoGImage(slotID, octave, scale)
	return plane, Result(r)
}

// PresentDebugFrame reports whether a debug window is attached: it returns
// true when a DebugWindow was given at creation and false otherwise. It
// draws nothing (§6, §13).
func (inst *Instance) PresentDebugFrame() bool {
	return inst.window != nil
}

func toInternalFeatures(features []Feature) []extractor.Feature {
	out := make([]extractor.Feature, len(features))
	for i, f := range features {
		out[i] = featureToInternal(f)
	}
	return out
}
