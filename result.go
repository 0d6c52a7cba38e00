// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package vulkansift

import "github.com/vulkansift/vulkansift/pipeline"

// Result is the public result code every void-returning API maps its
// outcome onto (§6/§7).
type Result int

const (
	Success           = Result(pipeline.Success)
	VulkanError       = Result(pipeline.VulkanError)
	InvalidInputError = Result(pipeline.InvalidInputError)
	OutOfMemory       = Result(pipeline.OutOfMemory)
)

func (r Result) String() string {
	return pipeline.Result(r).String()
}

// LogLevel mirrors vksift_LogLevel (§6).
type LogLevel int

const (
	LogDebug LogLevel = iota
	LogInfo
	LogWarn
	LogError
	LogNone
)
