package gpu

import (
	"errors"
	"sync"
)

// ErrNoSuitableMemoryType indicates no memory type matches requirements
// (§4.1 "first memory type matching the requested property bits"; this
// module exposes a single memory type per property combination, so the
// only failure is an unsatisfiable combination of flags).
var ErrNoSuitableMemoryType = errors.New("gpu: no suitable memory type")

// AllocatorConfig configures Allocator. Adapted from the teacher's Vulkan
// suballocator config down to what a logical, non-suballocating budget
// tracker needs: no VkDeviceMemory blocks to size here, only a ceiling on
// total bytes handed out per memory type.
type AllocatorConfig struct {
	// DeviceLocalBudget bounds bytes allocated with
	// MemoryPropertyDeviceLocal (pyramid images, descriptor/match buffers).
	DeviceLocalBudget uint64

	// HostVisibleBudget bounds bytes allocated with
	// MemoryPropertyHostVisible (staging buffers for transfers).
	HostVisibleBudget uint64
}

// DefaultConfig returns generous default budgets suitable for the softgpu
// backend, where "device local" and "host visible" memory are really the
// same host heap.
func DefaultConfig() AllocatorConfig {
	return AllocatorConfig{
		DeviceLocalBudget: 1 << 30, // 1 GiB
		HostVisibleBudget: 256 << 20,
	}
}

// AllocatorStats reports the allocator's current usage, mirroring the
// teacher's AllocatorStats down to the fields this module can actually
// populate without a real suballocator.
type AllocatorStats struct {
	DeviceLocalUsed uint64
	HostVisibleUsed uint64
	AllocationCount uint64
}

// Allocator tracks logical memory usage against configured budgets. It
// does not itself own bytes: backend storage (softgpu's byte slices and
// float32 planes) is allocated by the Go runtime, and Allocator exists so
// CreateBuffer/CreateImage can enforce OOM behavior the way a real
// suballocator would (§7 OUT_OF_MEMORY_ERROR).
type Allocator struct {
	mu     sync.Mutex
	config AllocatorConfig
	stats  AllocatorStats
}

// NewAllocator returns an Allocator honoring config.
func NewAllocator(config AllocatorConfig) *Allocator {
	return &Allocator{config: config}
}

// Reserve charges size bytes against the budget implied by props. It
// returns ErrOutOfMemory if the reservation would exceed the configured
// budget, and ErrNoSuitableMemoryType if props names no known memory type.
func (a *Allocator) Reserve(size uint64, props MemoryPropertyFlags) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch {
	case props&MemoryPropertyHostVisible != 0:
		if a.stats.HostVisibleUsed+size > a.config.HostVisibleBudget {
			return ErrOutOfMemory
		}
		a.stats.HostVisibleUsed += size
	case props&MemoryPropertyDeviceLocal != 0:
		if a.stats.DeviceLocalUsed+size > a.config.DeviceLocalBudget {
			return ErrOutOfMemory
		}
		a.stats.DeviceLocalUsed += size
	default:
		return ErrNoSuitableMemoryType
	}
	a.stats.AllocationCount++
	return nil
}

// Release returns size bytes to the budget implied by props.
func (a *Allocator) Release(size uint64, props MemoryPropertyFlags) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch {
	case props&MemoryPropertyHostVisible != 0:
		a.stats.HostVisibleUsed -= size
	case props&MemoryPropertyDeviceLocal != 0:
		a.stats.DeviceLocalUsed -= size
	}
	if a.stats.AllocationCount > 0 {
		a.stats.AllocationCount--
	}
}

// Stats returns a snapshot of current usage.
func (a *Allocator) Stats() AllocatorStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}
