package gpu

import "time"

// Backend is a factory for Devices, registered globally by a backend
// package's init() (mirrors the teacher's hal.Backend + RegisterBackend).
// This module registers exactly one backend, gpu/softgpu; a real
// Vulkan-backed backend is the out-of-scope external collaborator this
// interface exists to admit.
type Backend interface {
	// Name identifies the backend (e.g. "softgpu").
	Name() string

	// Open opens a Device, enumerating physical devices internally.
	Open() (Device, error)
}

// Device owns resource creation and a single Queue. Per §5, an Instance
// (and therefore the Device it wraps) is not safe for concurrent use by
// multiple host threads; callers serialize externally.
type Device interface {
	CreateBuffer(desc *BufferDescriptor) (*Buffer, error)
	DestroyBuffer(b *Buffer)

	CreateImage(desc *ImageDescriptor) (*Image, error)
	DestroyImage(img *Image)

	CreateFence() (Fence, error)
	DestroyFence(f Fence)

	// Queue returns the device's single compute/transfer queue. The
	// transfer queue aliases the compute queue (§3 "Instance... owns...
	// one compute queue, one transfer queue (may alias compute)").
	Queue() Queue

	// WaitIdle blocks until all submitted work has completed. Instance
	// destruction does not call it; it waits on the slot and match-buffer
	// fences instead.
	WaitIdle() error

	Destroy()
}

// Op is one recorded operation in a CommandBuffer: a kernel dispatch, a
// barrier application, or any other device-side step. Returning an error
// aborts the remaining ops in the buffer.
type Op func() error

// CommandBuffer is a list of recorded Ops, the Go-native analogue of a
// VkCommandBuffer recorded once and submitted once (§4.5: "Record a
// command buffer that... signals the slot fence").
type CommandBuffer struct {
	Label string
	Ops   []Op
}

// NewCommandBuffer returns an empty, labeled command buffer ready for
// recording.
func NewCommandBuffer(label string) *CommandBuffer {
	return &CommandBuffer{Label: label}
}

// Record appends an operation to the command buffer.
func (cb *CommandBuffer) Record(op Op) {
	cb.Ops = append(cb.Ops, op)
}

// Queue submits command buffers (non-blocking dispatch) and performs
// staging transfers (blocking), matching §5's suspension-point contract:
// Submit returns as soon as the buffer is enqueued; the transfer methods
// block until the copy has actually happened.
type Queue interface {
	// Submit runs cb's Ops in order on the device's dispatch worker and
	// signals fence with fenceValue when they complete. Returns
	// immediately once the buffer is enqueued.
	Submit(cb *CommandBuffer, fence Fence, fenceValue uint64) error

	// ReadBuffer copies len(dst) bytes from buf, starting at offset, into
	// dst. Blocking.
	ReadBuffer(buf *Buffer, offset uint64, dst []byte) error

	// WriteBuffer copies src into buf at offset. Blocking.
	WriteBuffer(buf *Buffer, offset uint64, src []byte) error

	// ReadImagePlane copies one (octave, scale) plane of img as float32
	// into dst, used by the scale-space debug downloaders. Blocking.
	ReadImagePlane(img *Image, layer uint32, dst []float32) error

	// WriteImagePlane uploads src into one layer of img. Blocking.
	WriteImagePlane(img *Image, layer uint32, src []float32) error
}

// Fence is a GPU synchronization primitive signaled when the work
// submitted alongside it completes. One fence per feature slot, plus one
// for the match buffer (§3/§4.5).
type Fence interface {
	// Wait blocks until the fence reaches value or timeout elapses.
	Wait(value uint64, timeout time.Duration) (bool, error)

	// Signal is called by the backend when submitted work completes.
	Signal(value uint64)

	// Value returns the last signaled value (non-blocking poll, backs
	// isBufferAvailable).
	Value() uint64
}

// BufferStorage is the backend-specific payload behind a Buffer. softgpu's
// implementation is a plain byte slice; a real Vulkan backend's would wrap
// a VkBuffer + VkDeviceMemory.
type BufferStorage interface {
	Bytes() []byte
}

// ImageStorage is the backend-specific payload behind an Image: one
// []float32 plane per layer/scale.
type ImageStorage interface {
	Plane(layer uint32) []float32
	Width() uint32
	Height() uint32
	Layers() uint32
}
