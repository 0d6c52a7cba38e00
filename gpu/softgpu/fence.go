// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package softgpu

import (
	"sync"
	"time"

	"github.com/vulkansift/vulkansift/gpu"
)

// fence implements gpu.Fence with an atomically-tracked value plus a
// condition variable so Wait can block instead of spinning, adapted from
// the teacher's noop.Fence (which tracked value with an atomic but never
// had a real waiter to wake).
type fence struct {
	mu    sync.Mutex
	cond  *sync.Cond
	value uint64
}

func newFence() *fence {
	f := &fence{}
	f.cond = sync.NewCond(&f.mu)
	return f
}

func (f *fence) Signal(value uint64) {
	f.mu.Lock()
	if value > f.value {
		f.value = value
	}
	f.mu.Unlock()
	f.cond.Broadcast()
}

func (f *fence) Value() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

// Wait blocks until value is reached or timeout elapses, returning
// (false, nil) on timeout per gpu.Fence's contract.
func (f *fence) Wait(value uint64, timeout time.Duration) (bool, error) {
	deadline := time.Now().Add(timeout)

	f.mu.Lock()
	defer f.mu.Unlock()

	for f.value < value {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false, nil
		}
		timer := time.AfterFunc(remaining, func() {
			f.cond.Broadcast()
		})
		f.cond.Wait()
		timer.Stop()
	}
	return true, nil
}

var _ gpu.Fence = (*fence)(nil)
