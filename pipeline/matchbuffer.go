// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"sync"
	"time"

	"github.com/vulkansift/vulkansift/gpu"
	"github.com/vulkansift/vulkansift/matcher"
)

// matchBuffer is the single, instance-wide match buffer (§3): "only one
// match-in-flight at a time" regardless of which slots are involved. Its
// matches live in a host-visible gpu.Buffer (buf), sized to the capacity
// of an "A" slot per §3, so getMatchesNumber/downloadMatches are real
// staging transfers rather than a bare Go-slice handoff.
type matchBuffer struct {
	mu    sync.Mutex
	busy  bool
	fence gpu.Fence

	device gpu.Device
	queue  gpu.Queue
	buf    *gpu.Buffer

	fenceValue uint64
	matches    []matcher.Match
}

func newMatchBuffer(device gpu.Device, fence gpu.Fence, capacity int) (*matchBuffer, error) {
	buf, err := device.CreateBuffer(&gpu.BufferDescriptor{
		Label:      "match-buffer",
		Size:       matchBufferSize(capacity),
		Usage:      gpu.BufferUsageStorage | gpu.BufferUsageTransferSrc | gpu.BufferUsageTransferDst,
		Properties: gpu.MemoryPropertyHostVisible | gpu.MemoryPropertyHostCoherent,
	})
	if err != nil {
		return nil, err
	}
	return &matchBuffer{fence: fence, device: device, queue: device.Queue(), buf: buf}, nil
}

// beginDispatch waits for any prior match to finish, then reserves the
// buffer for the caller's dispatch.
func (m *matchBuffer) beginDispatch(timeout time.Duration) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.busy {
		ok, err := m.fence.Wait(m.fenceValue, timeout)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, gpu.ErrTimeout
		}
		m.busy = false
	}

	m.fenceValue++
	m.busy = true
	return m.fenceValue, nil
}

func (m *matchBuffer) completeDispatch(matches []matcher.Match) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matches = matches
	m.busy = false
}

func (m *matchBuffer) waitIdleForTransfer(timeout time.Duration) error {
	m.mu.Lock()
	fenceValue := m.fenceValue
	busy := m.busy
	m.mu.Unlock()

	if !busy {
		return nil
	}
	ok, err := m.fence.Wait(fenceValue, timeout)
	if err != nil {
		return err
	}
	if !ok {
		return gpu.ErrTimeout
	}

	m.mu.Lock()
	m.busy = false
	m.mu.Unlock()
	return nil
}

func (m *matchBuffer) Matches() []matcher.Match {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]matcher.Match, len(m.matches))
	copy(out, m.matches)
	return out
}

func (m *matchBuffer) IsAvailable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.busy
}

func (m *matchBuffer) destroy() {
	m.device.DestroyBuffer(m.buf)
}
