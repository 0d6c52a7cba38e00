package gpu

import "errors"

// Sentinel errors representing unrecoverable GPU states. These map onto the
// three error kinds of the public facade (§7): ErrOutOfMemory is raised at
// creation time and leaves no partial instance; ErrDeviceLost/ErrTimeout
// poison the owning instance.
var (
	// ErrBackendNotFound indicates the requested backend is not registered.
	ErrBackendNotFound = errors.New("gpu: backend not found")

	// ErrOutOfMemory indicates an allocation would exceed the configured
	// budget of its memory type (see Allocator.Reserve). Unrecoverable for
	// the allocation in question.
	ErrOutOfMemory = errors.New("gpu: out of memory")

	// ErrDeviceLost indicates the device can no longer accept work.
	// The owning instance is poisoned; only destroy is valid afterward.
	ErrDeviceLost = errors.New("gpu: device lost")

	// ErrTimeout indicates a fence wait exceeded its deadline.
	ErrTimeout = errors.New("gpu: timeout")

	// ErrMissingBarrier indicates a caller issued a GPU access without
	// having first applied the barrier returned by BarrierAndUpdate for
	// the previous access. Programmer error per §4.1.
	ErrMissingBarrier = errors.New("gpu: access without a prior barrier")
)
