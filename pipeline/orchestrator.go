// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/vulkansift/vulkansift/extractor"
	"github.com/vulkansift/vulkansift/gpu"
	"github.com/vulkansift/vulkansift/internal/vlog"
	"github.com/vulkansift/vulkansift/matcher"
	"github.com/vulkansift/vulkansift/scalespace"
)

// defaultFenceTimeout bounds how long a slot waits on a prior dispatch's
// fence before reporting VULKAN_ERROR, standing in for a real device-lost
// detection heuristic.
const defaultFenceTimeout = 30 * time.Second

// Config bundles the instance configuration this orchestrator needs:
// the scale-space and extractor configs plus the slot/transfer limits.
type Config struct {
	ScaleSpace     scalespace.Config
	Extractor      extractor.Config
	MaxImageWidth  int
	MaxImageHeight int
	OnError        ErrorCallback
}

// Orchestrator is the per-instance C7 job queue and dispatcher. It owns
// the slots, the match buffer, and the gpu.Device everything dispatches
// against.
type Orchestrator struct {
	device gpu.Device
	queue  gpu.Queue

	cfg   Config
	slots []*Slot
	match *matchBuffer

	poisoned atomic.Bool
}

// New creates an Orchestrator with nbSlots feature slots, each backed by
// its own gpu.Fence and gpu.Buffer, plus one shared match-buffer fence
// and gpu.Buffer.
func New(device gpu.Device, nbSlots int, cfg Config) (*Orchestrator, error) {
	if nbSlots < 1 {
		return nil, fmt.Errorf("pipeline: sift_buffer_count must be >= 1")
	}

	o := &Orchestrator{device: device, queue: device.Queue(), cfg: cfg}
	o.slots = make([]*Slot, nbSlots)
	for i := range o.slots {
		fence, err := device.CreateFence()
		if err != nil {
			return nil, err
		}
		slot, err := newSlot(device, fence, cfg.Extractor.MaxFeaturesPerSlot, cfg.Extractor.DescriptorFormat)
		if err != nil {
			return nil, err
		}
		o.slots[i] = slot
	}

	matchFence, err := device.CreateFence()
	if err != nil {
		return nil, err
	}
	match, err := newMatchBuffer(device, matchFence, cfg.Extractor.MaxFeaturesPerSlot)
	if err != nil {
		return nil, err
	}
	o.match = match

	return o, nil
}

func (o *Orchestrator) reportError(result Result) Result {
	if o.cfg.OnError != nil {
		o.cfg.OnError(result)
	}
	return result
}

func (o *Orchestrator) validSlot(id int) bool {
	return id >= 0 && id < len(o.slots)
}

// poison marks the instance poisoned after a fatal error and reports
// VULKAN_ERROR. DetectFeatures and MatchFeatures return VULKAN_ERROR once
// it is set; the blocking transfer and introspection methods do not check
// it.
func (o *Orchestrator) poison(err error) Result {
	o.poisoned.Store(true)
	vlog.Logger().Error("instance poisoned", "error", err)
	return o.reportError(VulkanError)
}

// DetectFeatures validates and dispatches a detect job for slotID,
// non-blocking (§4.5, §6). The upload is staged through a host-visible
// gpu.Buffer and copied into a GENERAL-layout gpu.Image before the
// pyramid is built (§4.2), matching the barrier/staging contract C1/C2
// expose; everything from there on runs inside the recorded command
// buffer's Op on the device's dispatch thread.
func (o *Orchestrator) DetectFeatures(slotID int, imageBytes []byte, width, height int) Result {
	if o.poisoned.Load() {
		return VulkanError
	}
	if !o.validSlot(slotID) {
		return o.reportError(InvalidInputError)
	}
	if width <= 0 || height <= 0 || len(imageBytes) != width*height {
		return o.reportError(InvalidInputError)
	}
	if o.cfg.MaxImageWidth > 0 && width > o.cfg.MaxImageWidth {
		return o.reportError(InvalidInputError)
	}
	if o.cfg.MaxImageHeight > 0 && height > o.cfg.MaxImageHeight {
		return o.reportError(InvalidInputError)
	}

	slot := o.slots[slotID]
	fenceValue, err := slot.beginDispatch(SlotRunningDetect, defaultFenceTimeout)
	if err != nil {
		return o.poison(err)
	}

	inputImg, err := o.stageInput(imageBytes, width, height)
	if err != nil {
		return o.poison(err)
	}

	cb := gpu.NewCommandBuffer(fmt.Sprintf("detect-slot-%d", slotID))
	cb.Record(func() error {
		pyr, err := scalespace.Build(inputImg.Storage().Plane(0), width, height, o.cfg.ScaleSpace)
		if err != nil {
			return err
		}

		gaussianImages, dogImages, err := o.buildPyramidImages(pyr)
		if err != nil {
			return err
		}

		features, err := extractor.Extract(pyr, o.cfg.Extractor)
		if err != nil {
			return err
		}

		slot.featureBuf.BarrierAndUpdate(gpu.AccessShaderWrite)
		encodeFeatures(slot.featureBuf.Storage().Bytes(), features, o.cfg.Extractor.DescriptorFormat)
		slot.featureBuf.BarrierAndUpdate(gpu.AccessHostRead)

		slot.completeDetectDispatch(features, width, height, pyr, inputImg, gaussianImages, dogImages)
		return nil
	})

	if err := o.queue.Submit(cb, slot.fence, fenceValue); err != nil {
		return o.poison(err)
	}
	return Success
}

// stageInput performs the staged upload described by §4.2: the raw bytes
// are written into a host-visible staging buffer (exercising C2's
// WriteBuffer), then converted to [0,1] floats and copied into a 2-D
// float image (exercising WriteImagePlane), left in ImageLayoutGeneral
// for the dispatch thread's compute passes to read. Both calls happen
// before the Op is recorded, since Queue's transfer methods round-trip
// through the same dispatch thread Submit uses and would deadlock if
// called from inside an already-running Op.
func (o *Orchestrator) stageInput(imageBytes []byte, width, height int) (*gpu.Image, error) {
	staging, err := o.device.CreateBuffer(&gpu.BufferDescriptor{
		Label:      "input-staging",
		Size:       uint64(len(imageBytes)),
		Usage:      gpu.BufferUsageTransferSrc,
		Properties: gpu.MemoryPropertyHostVisible | gpu.MemoryPropertyHostCoherent,
	})
	if err != nil {
		return nil, err
	}
	defer o.device.DestroyBuffer(staging)

	staging.BarrierAndUpdate(gpu.AccessHostWrite)
	if err := o.queue.WriteBuffer(staging, 0, imageBytes); err != nil {
		return nil, err
	}
	staging.BarrierAndUpdate(gpu.AccessTransferRead)

	raw := staging.Storage().Bytes()
	floats := make([]float32, len(raw))
	for i, b := range raw {
		floats[i] = float32(b) / 255
	}

	img, err := o.device.CreateImage(&gpu.ImageDescriptor{
		Label:  "input",
		Width:  uint32(width),
		Height: uint32(height),
		Layers: 1,
		Format: gpu.FormatR32Float,
	})
	if err != nil {
		return nil, err
	}

	img.BarrierAndUpdate(gpu.AccessTransferWrite, gpu.ImageLayoutTransferDst)
	if err := o.queue.WriteImagePlane(img, 0, floats); err != nil {
		o.device.DestroyImage(img)
		return nil, err
	}
	img.BarrierAndUpdate(gpu.AccessShaderRead, gpu.ImageLayoutGeneral)

	return img, nil
}

// buildPyramidImages mirrors pyr's Gaussian/DoG plane stacks into real
// gpu.Image resources, one pair per octave, each carrying the
// ShaderWrite->ShaderRead barrier transition §5 requires between a pass
// that produces a resource and the pass that reads it. It runs on the
// dispatch thread (inside the detect Op), so it copies plane data
// directly into Storage() rather than through queue.WriteImagePlane,
// which would deadlock by re-entering the same thread Submit is already
// running on.
func (o *Orchestrator) buildPyramidImages(pyr *scalespace.Pyramid) ([]*gpu.Image, []*gpu.Image, error) {
	gaussianImages := make([]*gpu.Image, len(pyr.Octaves))
	dogImages := make([]*gpu.Image, len(pyr.Octaves))

	for i, oct := range pyr.Octaves {
		gImg, err := o.device.CreateImage(&gpu.ImageDescriptor{
			Label:  fmt.Sprintf("gaussian-octave-%d", i),
			Width:  uint32(oct.Width),
			Height: uint32(oct.Height),
			Layers: uint32(len(oct.Gaussian)),
			Format: gpu.FormatR32Float,
		})
		if err != nil {
			return nil, nil, err
		}
		gImg.BarrierAndUpdate(gpu.AccessShaderWrite, gpu.ImageLayoutGeneral)
		for s, plane := range oct.Gaussian {
			copy(gImg.Storage().Plane(uint32(s)), plane)
		}
		gImg.BarrierAndUpdate(gpu.AccessShaderRead, gpu.ImageLayoutGeneral)
		gaussianImages[i] = gImg

		dImg, err := o.device.CreateImage(&gpu.ImageDescriptor{
			Label:  fmt.Sprintf("dog-octave-%d", i),
			Width:  uint32(oct.Width),
			Height: uint32(oct.Height),
			Layers: uint32(len(oct.DoG)),
			Format: gpu.FormatR32Float,
		})
		if err != nil {
			return nil, nil, err
		}
		dImg.BarrierAndUpdate(gpu.AccessShaderWrite, gpu.ImageLayoutGeneral)
		for s, plane := range oct.DoG {
			copy(dImg.Storage().Plane(uint32(s)), plane)
		}
		dImg.BarrierAndUpdate(gpu.AccessShaderRead, gpu.ImageLayoutGeneral)
		dogImages[i] = dImg
	}

	return gaussianImages, dogImages, nil
}

// MatchFeatures validates and dispatches a match job between slotA and
// slotB, non-blocking. Both slots' states reflect which role they played
// for the duration of the dispatch (§4.5's RUNNING_MATCH_A/B); each
// slot's own fence is signaled to the value its beginDispatch bumped, in
// addition to the match buffer's fence, so a blocking transfer issued
// against either slot while the match is in flight waits on a value that
// will actually be reached instead of hanging for the full fence timeout.
// An empty slot is rejected with INVALID_INPUT_ERROR before anything is
// submitted.
func (o *Orchestrator) MatchFeatures(slotA, slotB int) Result {
	if o.poisoned.Load() {
		return VulkanError
	}
	if !o.validSlot(slotA) || !o.validSlot(slotB) || slotA == slotB {
		return o.reportError(InvalidInputError)
	}

	a, b := o.slots[slotA], o.slots[slotB]

	fenceValueA, err := a.beginDispatch(SlotRunningMatchA, defaultFenceTimeout)
	if err != nil {
		return o.poison(err)
	}
	fenceValueB, err := b.beginDispatch(SlotRunningMatchB, defaultFenceTimeout)
	if err != nil {
		return o.poison(err)
	}

	featuresA := a.Features()
	featuresB := b.Features()
	if len(featuresA) == 0 || len(featuresB) == 0 {
		a.completeDispatch(featuresA)
		b.completeDispatch(featuresB)
		a.fence.Signal(fenceValueA)
		b.fence.Signal(fenceValueB)
		return o.reportError(InvalidInputError)
	}

	fenceValue, err := o.match.beginDispatch(defaultFenceTimeout)
	if err != nil {
		return o.poison(err)
	}

	cb := gpu.NewCommandBuffer(fmt.Sprintf("match-%d-%d", slotA, slotB))
	cb.Record(func() error {
		matches, err := matcher.Match(slotA, slotB, featuresA, featuresB)
		a.completeDispatch(featuresA)
		b.completeDispatch(featuresB)
		a.fence.Signal(fenceValueA)
		b.fence.Signal(fenceValueB)
		if err != nil {
			o.match.completeDispatch(nil)
			return err
		}

		o.match.buf.BarrierAndUpdate(gpu.AccessShaderWrite)
		encodeMatches(o.match.buf.Storage().Bytes(), matches)
		o.match.buf.BarrierAndUpdate(gpu.AccessHostRead)

		o.match.completeDispatch(matches)
		return nil
	})

	if err := o.queue.Submit(cb, o.match.fence, fenceValue); err != nil {
		return o.poison(err)
	}
	return Success
}

// GetFeaturesNumber blocks on slot's fence then returns its feature
// count, read from the feature buffer's count header (§6), or 0 with
// INVALID_INPUT_ERROR for a bad slot id.
func (o *Orchestrator) GetFeaturesNumber(slotID int) (int, Result) {
	if !o.validSlot(slotID) {
		return 0, o.reportError(InvalidInputError)
	}
	slot := o.slots[slotID]
	if err := slot.waitIdleForTransfer(defaultFenceTimeout); err != nil {
		return 0, o.poison(err)
	}
	header := make([]byte, wireHeaderSize)
	if err := o.queue.ReadBuffer(slot.featureBuf, 0, header); err != nil {
		return 0, o.poison(err)
	}
	return int(binary.LittleEndian.Uint32(header)), Success
}

// DownloadFeatures blocks on slot's fence then reads its feature buffer
// back through the staging queue, decoding the wire layout encodeFeatures
// wrote (§4.1 C2, §4.5).
func (o *Orchestrator) DownloadFeatures(slotID int) ([]extractor.Feature, Result) {
	if !o.validSlot(slotID) {
		return nil, o.reportError(InvalidInputError)
	}
	slot := o.slots[slotID]
	if err := slot.waitIdleForTransfer(defaultFenceTimeout); err != nil {
		return nil, o.poison(err)
	}
	raw := make([]byte, slot.featureBuf.Size())
	if err := o.queue.ReadBuffer(slot.featureBuf, 0, raw); err != nil {
		return nil, o.poison(err)
	}
	return decodeFeatures(raw, slot.descriptorFormat), Success
}

// UploadFeatures blocks on slot's fence then writes features into the
// feature buffer through the staging queue, backing the round-trip
// property in §8.
func (o *Orchestrator) UploadFeatures(slotID int, features []extractor.Feature) Result {
	if !o.validSlot(slotID) {
		return o.reportError(InvalidInputError)
	}
	slot := o.slots[slotID]
	if err := slot.waitIdleForTransfer(defaultFenceTimeout); err != nil {
		return o.poison(err)
	}

	raw := make([]byte, slot.featureBuf.Size())
	encodeFeatures(raw, features, slot.descriptorFormat)

	slot.featureBuf.BarrierAndUpdate(gpu.AccessHostWrite)
	if err := o.queue.WriteBuffer(slot.featureBuf, 0, raw); err != nil {
		return o.poison(err)
	}
	slot.featureBuf.BarrierAndUpdate(gpu.AccessShaderRead)

	slot.SetFeatures(features)
	return Success
}

// GetMatchesNumber blocks on the match buffer's fence then returns its
// count, read from the match buffer's count header.
func (o *Orchestrator) GetMatchesNumber() (int, Result) {
	if err := o.match.waitIdleForTransfer(defaultFenceTimeout); err != nil {
		return 0, o.poison(err)
	}
	header := make([]byte, wireHeaderSize)
	if err := o.queue.ReadBuffer(o.match.buf, 0, header); err != nil {
		return 0, o.poison(err)
	}
	return int(binary.LittleEndian.Uint32(header)), Success
}

// DownloadMatches blocks on the match buffer's fence then reads its
// matches back through the staging queue.
func (o *Orchestrator) DownloadMatches() ([]matcher.Match, Result) {
	if err := o.match.waitIdleForTransfer(defaultFenceTimeout); err != nil {
		return nil, o.poison(err)
	}
	raw := make([]byte, o.match.buf.Size())
	if err := o.queue.ReadBuffer(o.match.buf, 0, raw); err != nil {
		return nil, o.poison(err)
	}
	return decodeMatches(raw), Success
}

// GetScaleSpaceNbOctaves blocks on slot's fence then returns the octave
// count of the pyramid built by its most recent detect call, or 0 with
// INVALID_INPUT_ERROR if no detect has run yet (§6 debug introspection).
func (o *Orchestrator) GetScaleSpaceNbOctaves(slotID int) (int, Result) {
	if !o.validSlot(slotID) {
		return 0, o.reportError(InvalidInputError)
	}
	slot := o.slots[slotID]
	if err := slot.waitIdleForTransfer(defaultFenceTimeout); err != nil {
		return 0, o.poison(err)
	}
	pyr := slot.Pyramid()
	if pyr == nil {
		return 0, o.reportError(InvalidInputError)
	}
	return len(pyr.Octaves), Success
}

// GetScaleSpaceOctaveResolution returns the (width, height) of octave o's
// planes.
func (o *Orchestrator) GetScaleSpaceOctaveResolution(slotID, octave int) (int, int, Result) {
	if !o.validSlot(slotID) {
		return 0, 0, o.reportError(InvalidInputError)
	}
	slot := o.slots[slotID]
	if err := slot.waitIdleForTransfer(defaultFenceTimeout); err != nil {
		return 0, 0, o.poison(err)
	}
	pyr := slot.Pyramid()
	if pyr == nil || octave < 0 || octave >= len(pyr.Octaves) {
		return 0, 0, o.reportError(InvalidInputError)
	}
	oct := pyr.Octaves[octave]
	return oct.Width, oct.Height, Success
}

// DownloadScaleSpaceImage returns a copy of octave o's Gaussian plane at
// scale s, read back through queue.ReadImagePlane from the gpu.Image
// buildPyramidImages populated (§9: scale-space debug download, resolved
// to return the plane verbatim rather than resampled to base
// resolution).
func (o *Orchestrator) DownloadScaleSpaceImage(slotID, octave, scale int) ([]float32, Result) {
	if !o.validSlot(slotID) {
		return nil, o.reportError(InvalidInputError)
	}
	slot := o.slots[slotID]
	if err := slot.waitIdleForTransfer(defaultFenceTimeout); err != nil {
		return nil, o.poison(err)
	}
	pyr := slot.Pyramid()
	if pyr == nil || octave < 0 || octave >= len(pyr.Octaves) {
		return nil, o.reportError(InvalidInputError)
	}
	oct := pyr.Octaves[octave]
	if scale < 0 || scale >= len(oct.Gaussian) {
		return nil, o.reportError(InvalidInputError)
	}
	img, err := slot.GaussianImage(octave)
	if err != nil {
		return nil, o.reportError(InvalidInputError)
	}
	out := make([]float32, oct.Width*oct.Height)
	if err := o.queue.ReadImagePlane(img, uint32(scale), out); err != nil {
		return nil, o.poison(err)
	}
	return out, Success
}

// DownloadDoGImage returns a copy of octave o's difference-of-Gaussian
// plane at scale s, read back through queue.ReadImagePlane.
func (o *Orchestrator) DownloadDoGImage(slotID, octave, scale int) ([]float32, Result) {
	if !o.validSlot(slotID) {
		return nil, o.reportError(InvalidInputError)
	}
	slot := o.slots[slotID]
	if err := slot.waitIdleForTransfer(defaultFenceTimeout); err != nil {
		return nil, o.poison(err)
	}
	pyr := slot.Pyramid()
	if pyr == nil || octave < 0 || octave >= len(pyr.Octaves) {
		return nil, o.reportError(InvalidInputError)
	}
	oct := pyr.Octaves[octave]
	if scale < 0 || scale >= len(oct.DoG) {
		return nil, o.reportError(InvalidInputError)
	}
	img, err := slot.DoGImage(octave)
	if err != nil {
		return nil, o.reportError(InvalidInputError)
	}
	out := make([]float32, oct.Width*oct.Height)
	if err := o.queue.ReadImagePlane(img, uint32(scale), out); err != nil {
		return nil, o.poison(err)
	}
	return out, Success
}

// IsBufferAvailable reports whether slotID is IDLE (§4.5).
func (o *Orchestrator) IsBufferAvailable(slotID int) bool {
	if !o.validSlot(slotID) {
		return false
	}
	return o.slots[slotID].IsAvailable()
}

// NbSlots returns the configured slot count.
func (o *Orchestrator) NbSlots() int { return len(o.slots) }

// Destroy waits for all slot and match-buffer fences, releases every
// feature/match/pyramid gpu.Buffer and gpu.Image the instance owns, then
// releases the device (§5 "destroyInstance waits for all slot fences
// before freeing resources").
func (o *Orchestrator) Destroy() {
	for _, s := range o.slots {
		_ = s.waitIdleForTransfer(defaultFenceTimeout)
		s.destroy()
	}
	_ = o.match.waitIdleForTransfer(defaultFenceTimeout)
	o.match.destroy()
	o.device.Destroy()
}
