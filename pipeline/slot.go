// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"fmt"
	"sync"
	"time"

	"github.com/vulkansift/vulkansift/extractor"
	"github.com/vulkansift/vulkansift/gpu"
	"github.com/vulkansift/vulkansift/scalespace"
)

// SlotState is a feature slot's position in the state machine of §4.5.
type SlotState int

const (
	SlotIdle SlotState = iota
	SlotRunningDetect
	SlotRunningMatchA
	SlotRunningMatchB
	SlotTransfer
)

// Slot is one feature-storage area (§3's "feature slot"), identified by
// its index (buffer_id). Its features live in a host-visible gpu.Buffer
// (featureBuf) so that uploadFeatures/downloadFeatures are real staging
// transfers (§4.1 C2) rather than a bare Go-slice handoff; features also
// mirrors the buffer's decoded contents in memory so a match dispatch can
// read them without a blocking round trip through the queue.
type Slot struct {
	mu    sync.Mutex
	state SlotState

	fence      gpu.Fence
	fenceValue uint64

	device gpu.Device
	queue  gpu.Queue

	descriptorFormat extractor.DescriptorFormat
	capacity         int
	featureBuf       *gpu.Buffer

	features []extractor.Feature

	// width/height record the dimensions of the input the most recent
	// detect ran against.
	width, height int

	// pyramid is the scale-space built by the most recent detect
	// dispatch, kept around for the scale-space/DoG debug downloaders
	// (§6 getScaleSpaceNbOctaves, getScaleSpaceOctaveResolution,
	// downloadScaleSpaceImage, downloadDoGImage).
	pyramid *scalespace.Pyramid

	// inputImage is the GENERAL-layout staged input for the most recent
	// detect dispatch (§4.2); gaussianImages/dogImages are one gpu.Image
	// per octave, holding the same planes as pyramid.Octaves[o].Gaussian
	// / .DoG but backed by real device storage so the debug downloaders
	// round-trip through queue.ReadImagePlane instead of reading the
	// pyramid struct directly.
	inputImage     *gpu.Image
	gaussianImages []*gpu.Image
	dogImages      []*gpu.Image
}

// newSlot allocates the slot's feature buffer (exercising
// gpu.Device.CreateBuffer / gpu.Allocator.Reserve once per slot, at
// instance-creation time) and returns the slot ready to accept dispatches.
func newSlot(device gpu.Device, fence gpu.Fence, capacity int, format extractor.DescriptorFormat) (*Slot, error) {
	buf, err := device.CreateBuffer(&gpu.BufferDescriptor{
		Label:      "feature-slot",
		Size:       featureBufferSize(capacity, format),
		Usage:      gpu.BufferUsageStorage | gpu.BufferUsageTransferSrc | gpu.BufferUsageTransferDst,
		Properties: gpu.MemoryPropertyHostVisible | gpu.MemoryPropertyHostCoherent,
	})
	if err != nil {
		return nil, err
	}
	return &Slot{
		state:            SlotIdle,
		fence:            fence,
		device:           device,
		queue:            device.Queue(),
		descriptorFormat: format,
		capacity:         capacity,
		featureBuf:       buf,
	}, nil
}

// State returns the slot's current state.
func (s *Slot) State() SlotState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// beginDispatch waits on the slot's fence for the previously submitted
// value (enforcing at-most-one-in-flight per slot, §5), then transitions
// to next and bumps the fence value the new dispatch will signal.
func (s *Slot) beginDispatch(next SlotState, timeout time.Duration) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SlotIdle {
		ok, err := s.fence.Wait(s.fenceValue, timeout)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, gpu.ErrTimeout
		}
		s.state = SlotIdle
	}

	s.fenceValue++
	s.state = next
	return s.fenceValue, nil
}

// completeDispatch marks the slot idle. It is called from within the
// recorded command buffer's op, before the slot's fence is signaled.
func (s *Slot) completeDispatch(features []extractor.Feature) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.features = features
	s.state = SlotIdle
}

// completeDetectDispatch is completeDispatch plus the pyramid and its
// GPU-resident Gaussian/DoG images built for this detect call, retained
// for scale-space debug downloads. Previously-held images are destroyed
// here, not by the caller, so a slot never leaks the images from its
// prior detect.
func (s *Slot) completeDetectDispatch(features []extractor.Feature, width, height int, pyr *scalespace.Pyramid, input *gpu.Image, gaussians, dogs []*gpu.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.destroyPyramidImagesLocked()

	s.features = features
	s.width, s.height = width, height
	s.pyramid = pyr
	s.inputImage = input
	s.gaussianImages = gaussians
	s.dogImages = dogs
	s.state = SlotIdle
}

func (s *Slot) destroyPyramidImagesLocked() {
	s.device.DestroyImage(s.inputImage)
	for _, img := range s.gaussianImages {
		s.device.DestroyImage(img)
	}
	for _, img := range s.dogImages {
		s.device.DestroyImage(img)
	}
	s.inputImage = nil
	s.gaussianImages = nil
	s.dogImages = nil
}

// Pyramid returns the scale-space built by the most recent detect
// dispatch, or nil if none has run yet.
func (s *Slot) Pyramid() *scalespace.Pyramid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pyramid
}

// GaussianImage returns octave o's Gaussian image stack, or an error if no
// detect dispatch has populated one yet.
func (s *Slot) GaussianImage(octave int) (*gpu.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if octave < 0 || octave >= len(s.gaussianImages) {
		return nil, fmt.Errorf("pipeline: no scale-space image for octave %d", octave)
	}
	return s.gaussianImages[octave], nil
}

// DoGImage returns octave o's difference-of-Gaussian image stack.
func (s *Slot) DoGImage(octave int) (*gpu.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if octave < 0 || octave >= len(s.dogImages) {
		return nil, fmt.Errorf("pipeline: no DoG image for octave %d", octave)
	}
	return s.dogImages[octave], nil
}

// waitIdleForTransfer blocks until the slot's in-flight dispatch (if any)
// completes, the first step of every blocking transfer call (§4.5).
func (s *Slot) waitIdleForTransfer(timeout time.Duration) error {
	s.mu.Lock()
	fenceValue := s.fenceValue
	busy := s.state != SlotIdle
	s.mu.Unlock()

	if !busy {
		return nil
	}
	ok, err := s.fence.Wait(fenceValue, timeout)
	if err != nil {
		return err
	}
	if !ok {
		return gpu.ErrTimeout
	}

	s.mu.Lock()
	s.state = SlotIdle
	s.mu.Unlock()
	return nil
}

// Features returns a copy of the slot's in-memory mirror of the feature
// buffer, clamped to capacity by construction (§4.3's append discipline
// already enforces this at Extract time). Used by the match dispatch,
// which needs featuresA/featuresB without a blocking staging round trip.
func (s *Slot) Features() []extractor.Feature {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]extractor.Feature, len(s.features))
	copy(out, s.features)
	return out
}

// SetFeatures installs features directly into the in-memory mirror,
// called after a staging write has already landed in featureBuf.
func (s *Slot) SetFeatures(features []extractor.Feature) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.features = features
}

// IsAvailable reports whether the slot is IDLE (§4.5 isBufferAvailable).
func (s *Slot) IsAvailable() bool {
	return s.State() == SlotIdle
}

func (s *Slot) destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyPyramidImagesLocked()
	s.device.DestroyBuffer(s.featureBuf)
}
