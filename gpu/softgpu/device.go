// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package softgpu

import (
	"github.com/vulkansift/vulkansift/gpu"
	"github.com/vulkansift/vulkansift/internal/hostthread"
	"github.com/vulkansift/vulkansift/internal/vlog"
)

// backend registers the softgpu factory (gpu.Backend) with the gpu
// package's registry, the counterpart of the teacher's noop.API.
type backend struct{}

func (backend) Name() string { return "softgpu" }

func (backend) Open() (gpu.Device, error) {
	return newDevice(), nil
}

func init() {
	gpu.RegisterBackend(backend{})
}

// device implements gpu.Device by running every dispatched Op on a single
// host-locked dispatch thread. Unlike a real Vulkan device there is no
// physical-device handle to hold; CreateInstance's physical-device
// selection (§4.1 C0) is satisfied trivially since softgpu enumerates
// exactly one logical device.
type device struct {
	dispatch  *hostthread.Thread
	allocator *gpu.Allocator
	queue     *queue
}

func newDevice() *device {
	d := &device{
		dispatch:  hostthread.New(),
		allocator: gpu.NewAllocator(gpu.DefaultConfig()),
	}
	d.queue = newQueue(d.dispatch)
	return d
}

func (d *device) CreateBuffer(desc *gpu.BufferDescriptor) (*gpu.Buffer, error) {
	if err := d.allocator.Reserve(desc.Size, desc.Properties); err != nil {
		return nil, err
	}
	storage := newBufferStorage(desc.Size)
	return gpu.NewBuffer(*desc, storage), nil
}

func (d *device) DestroyBuffer(b *gpu.Buffer) {
	if b == nil {
		return
	}
	d.allocator.Release(b.Size(), gpu.MemoryPropertyDeviceLocal|gpu.MemoryPropertyHostVisible)
}

func (d *device) CreateImage(desc *gpu.ImageDescriptor) (*gpu.Image, error) {
	layers := desc.Layers
	if layers == 0 {
		layers = 1
	}
	size := uint64(desc.Width) * uint64(desc.Height) * uint64(layers) * uint64(desc.Format.BytesPerTexel())
	if err := d.allocator.Reserve(size, gpu.MemoryPropertyDeviceLocal); err != nil {
		return nil, err
	}
	storage := newImageStorage(desc.Width, desc.Height, layers)
	return gpu.NewImage(*desc, storage), nil
}

func (d *device) DestroyImage(img *gpu.Image) {
	if img == nil {
		return
	}
	size := uint64(img.Width()) * uint64(img.Height()) * uint64(img.Layers()) * uint64(img.Format().BytesPerTexel())
	d.allocator.Release(size, gpu.MemoryPropertyDeviceLocal)
}

func (d *device) CreateFence() (gpu.Fence, error) {
	return newFence(), nil
}

func (d *device) DestroyFence(gpu.Fence) {}

func (d *device) Queue() gpu.Queue { return d.queue }

// WaitIdle blocks until every previously submitted Op has run, by
// round-tripping a no-op through the dispatch thread: since the thread
// runs Ops strictly in submission order, this cannot return before
// anything queued ahead of it has completed.
func (d *device) WaitIdle() error {
	d.dispatch.CallVoid(func() {})
	return nil
}

func (d *device) Destroy() {
	d.dispatch.Stop()
	vlog.Logger().Debug("softgpu device destroyed")
}
