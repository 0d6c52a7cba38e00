// Package gpu is the thin boundary between vulkansift's detection/matching
// pipelines and an actual GPU driver.
//
// Real physical-device enumeration, Vulkan loader/ICD selection and
// instance/device creation are external collaborators: they live in a
// backend package that implements Device/Queue/Image/Buffer against a
// real driver. This module ships a single backend, gpu/softgpu, which
// satisfies the same contract by running every kernel on a CPU worker
// pool instead of silicon; it is what every test and example in this
// module dispatches against.
//
// # Architecture
//
//  1. Backend - registers a factory that opens a Device
//  2. Device - creates buffers, images and compute pipelines, owns a Queue
//  3. Queue - submits command buffers (non-blocking) and performs transfers
//     (blocking)
//  4. Image / Buffer - typed resource wrappers that remember their own
//     access mask (and, for images, layout) so BarrierAndUpdate can compute
//     the correct barrier without a global tracker
//
// # Design Principles
//
// Resource state (access mask, layout) lives on the resource object, not in
// an external tracker: this mirrors the original VulkanSift's
// VulkanUtils::Image/Buffer classes and keeps the contract single-threaded
// per instance (see the package-level docs on Device for the threading
// contract).
//
// # Error Handling
//
//   - ErrOutOfMemory - an allocation would exceed its memory type's budget
//   - ErrNoSuitableMemoryType - no memory type satisfies the requested
//     property bits
//   - ErrDeviceLost - the device is poisoned and only Destroy is valid
//   - ErrTimeout - a fence wait exceeded its deadline
package gpu
