// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package softgpu

import (
	"fmt"

	"github.com/vulkansift/vulkansift/gpu"
	"github.com/vulkansift/vulkansift/internal/hostthread"
)

// queue implements gpu.Queue. Submit is non-blocking: the CommandBuffer's
// Ops are handed to the dispatch thread via CallAsync and the fence is
// signaled once they've all run. Transfers are blocking: they round-trip
// through CallVoid so the caller observes the copy as already having
// happened when the call returns, matching §5's split between dispatch
// and transfer suspension points.
type queue struct {
	dispatch *hostthread.Thread
}

func newQueue(dispatch *hostthread.Thread) *queue {
	return &queue{dispatch: dispatch}
}

func (q *queue) Submit(cb *gpu.CommandBuffer, fence gpu.Fence, fenceValue uint64) error {
	q.dispatch.CallAsync(func() {
		for _, op := range cb.Ops {
			if err := op(); err != nil {
				break
			}
		}
		if fence != nil {
			fence.Signal(fenceValue)
		}
	})
	return nil
}

func (q *queue) ReadBuffer(buf *gpu.Buffer, offset uint64, dst []byte) error {
	var rerr error
	q.dispatch.CallVoid(func() {
		storage, ok := buf.Storage().(*bufferStorage)
		if !ok {
			rerr = fmt.Errorf("softgpu: buffer storage type mismatch")
			return
		}
		if offset+uint64(len(dst)) > uint64(len(storage.data)) {
			rerr = fmt.Errorf("softgpu: read out of bounds: offset=%d len=%d size=%d", offset, len(dst), len(storage.data))
			return
		}
		copy(dst, storage.data[offset:offset+uint64(len(dst))])
	})
	return rerr
}

func (q *queue) WriteBuffer(buf *gpu.Buffer, offset uint64, src []byte) error {
	var rerr error
	q.dispatch.CallVoid(func() {
		storage, ok := buf.Storage().(*bufferStorage)
		if !ok {
			rerr = fmt.Errorf("softgpu: buffer storage type mismatch")
			return
		}
		if offset+uint64(len(src)) > uint64(len(storage.data)) {
			rerr = fmt.Errorf("softgpu: write out of bounds: offset=%d len=%d size=%d", offset, len(src), len(storage.data))
			return
		}
		copy(storage.data[offset:offset+uint64(len(src))], src)
	})
	return rerr
}

func (q *queue) ReadImagePlane(img *gpu.Image, layer uint32, dst []float32) error {
	var rerr error
	q.dispatch.CallVoid(func() {
		storage, ok := img.Storage().(*imageStorage)
		if !ok {
			rerr = fmt.Errorf("softgpu: image storage type mismatch")
			return
		}
		if layer >= storage.Layers() {
			rerr = fmt.Errorf("softgpu: layer %d out of range (layers=%d)", layer, storage.Layers())
			return
		}
		copy(dst, storage.Plane(layer))
	})
	return rerr
}

func (q *queue) WriteImagePlane(img *gpu.Image, layer uint32, src []float32) error {
	var rerr error
	q.dispatch.CallVoid(func() {
		storage, ok := img.Storage().(*imageStorage)
		if !ok {
			rerr = fmt.Errorf("softgpu: image storage type mismatch")
			return
		}
		if layer >= storage.Layers() {
			rerr = fmt.Errorf("softgpu: layer %d out of range (layers=%d)", layer, storage.Layers())
			return
		}
		copy(storage.Plane(layer), src)
	})
	return rerr
}

var _ gpu.Queue = (*queue)(nil)
