// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package vulkansift

import (
	"errors"
	"fmt"
	"sync"

	"github.com/vulkansift/vulkansift/gpu"
	"github.com/vulkansift/vulkansift/internal/vlog"
	"github.com/vulkansift/vulkansift/pipeline"
)

var (
	loadMu sync.Mutex
	loaded bool
)

// LoadVulkan prepares the process for instance creation. It is idempotent:
// calling it while already loaded is a no-op. CreateInstance and
// CreateInstanceWithDescriptor require LoadVulkan to have been called
// first; the other package-level functions do not check it. This mirrors
// the original API's explicit load/unload pair (§6).
func LoadVulkan() Result {
	loadMu.Lock()
	defer loadMu.Unlock()
	loaded = true
	return Success
}

// UnloadVulkan releases whatever process-wide state LoadVulkan acquired.
// Idempotent; safe to call even if LoadVulkan was never called.
func UnloadVulkan() {
	loadMu.Lock()
	defer loadMu.Unlock()
	loaded = false
}

func requireLoaded() error {
	loadMu.Lock()
	defer loadMu.Unlock()
	if !loaded {
		return fmt.Errorf("vulkansift: LoadVulkan must be called first")
	}
	return nil
}

// GetAvailableGPUs reports the backends this build can open. Passing a nil
// names slice returns only the count; passing a non-nil slice copies up to
// len(names) names into it and returns how many were written (§6's
// two-call enumeration pattern, collapsed into a single Go-idiomatic
// call since a slice already carries its own capacity).
func GetAvailableGPUs(names []string) (int, Result) {
	available := gpu.AvailableBackends()
	if names == nil {
		return len(available), Success
	}
	n := copy(names, available)
	return n, Success
}

// SetLogLevel reconfigures the process-wide logger every package in this
// module shares (§6).
func SetLogLevel(level LogLevel) {
	switch level {
	case LogDebug:
		vlog.SetLevel(vlog.LevelDebug)
	case LogWarn:
		vlog.SetLevel(vlog.LevelWarn)
	case LogError:
		vlog.SetLevel(vlog.LevelError)
	case LogNone:
		vlog.SetLevel(vlog.LevelNone)
	default:
		vlog.SetLevel(vlog.LevelInfo)
	}
}

// DebugWindow optionally attaches a presentable debug surface to an
// Instance, consumed only by PresentDebugFrame. Left unset, PresentDebugFrame
// is a permanent no-op (§6, §13: a real windowing surface is out of scope).
type DebugWindow struct {
	Title  string
	Width  int
	Height int
}

// InstanceDescriptor bundles createInstance's arguments: the instance
// configuration plus an optional debug window (§6).
type InstanceDescriptor struct {
	Config      Config
	DebugWindow *DebugWindow
}

// Instance is one VulkanSift detector/matcher, opaque to callers beyond
// the methods in facade.go. It owns a GPU device and every feature
// slot/match buffer built from it.
type Instance struct {
	orch   *pipeline.Orchestrator
	window *DebugWindow
}

// CreateInstance opens a device on the first backend AvailableBackends
// lists (that order is not defined when several are registered) and
// builds an Orchestrator around it. LoadVulkan must have been called
// first.
func CreateInstance(cfg Config) (*Instance, Result) {
	return CreateInstanceWithDescriptor(InstanceDescriptor{Config: cfg})
}

// CreateInstanceWithDescriptor is CreateInstance plus the optional debug
// window parameter the original API exposes (§6, §13).
func CreateInstanceWithDescriptor(desc InstanceDescriptor) (*Instance, Result) {
	if err := requireLoaded(); err != nil {
		vlog.Logger().Error("create instance failed", "error", err)
		return nil, InvalidInputError
	}

	available := gpu.AvailableBackends()
	if len(available) == 0 {
		vlog.Logger().Error("create instance failed", "error", "no gpu backend registered")
		return nil, VulkanError
	}
	backend, _ := gpu.GetBackend(available[0])

	device, err := backend.Open()
	if err != nil {
		vlog.Logger().Error("create instance failed", "error", err)
		return nil, VulkanError
	}

	nbSlots := desc.Config.SiftBufferCount
	if nbSlots < 1 {
		nbSlots = 1
	}

	orch, err := pipeline.New(device, nbSlots, desc.Config.toPipelineConfig())
	if err != nil {
		device.Destroy()
		vlog.Logger().Error("create instance failed", "error", err)
		if errors.Is(err, gpu.ErrOutOfMemory) {
			return nil, OutOfMemory
		}
		return nil, VulkanError
	}

	return &Instance{orch: orch, window: desc.DebugWindow}, Success
}

// Destroy waits for all outstanding work then releases every GPU resource
// the instance owns (§5).
func (inst *Instance) Destroy() {
	inst.orch.Destroy()
}
