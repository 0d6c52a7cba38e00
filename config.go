// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package vulkansift

import (
	"github.com/vulkansift/vulkansift/extractor"
	"github.com/vulkansift/vulkansift/pipeline"
	"github.com/vulkansift/vulkansift/scalespace"
)

// DescriptorFormat selects how a feature's descriptor is stored (§3).
type DescriptorFormat int

const (
	// DescriptorUBC1 stores unnormalized bytes in [0,255].
	DescriptorUBC1 DescriptorFormat = iota
	// DescriptorUBC2 stores normalized floats in [0,1].
	DescriptorUBC2
)

// PyramidPrecisionMode selects scale-space plane storage precision.
type PyramidPrecisionMode int

const (
	PrecisionFloat32 PyramidPrecisionMode = iota
	PrecisionFloat16
)

// ImageSize bounds the largest input image an instance accepts.
type ImageSize struct {
	Width, Height int
}

// ErrorCallback is invoked for every fatal or invalid-input condition a
// void-returning call encounters (§6).
type ErrorCallback func(Result)

// Config is the immutable-after-creation instance configuration (§3).
type Config struct {
	InputImageMaxSize  ImageSize
	SiftBufferCount    int
	MaxNbSiftPerBuffer int

	UseUpsampling     bool
	NbScalesPerOctave int
	NbOctaves         int

	InputBlurLevel float32
	SeedScaleSigma float32

	IntensityThreshold float32
	EdgeThreshold      float32

	MaxNbRefinementSteps int

	DescriptorFormat            DescriptorFormat
	PyramidPrecisionMode        PyramidPrecisionMode
	UseHardwareInterpolatedBlur bool

	OnErrorCallbackFunction ErrorCallback
}

// DefaultConfig returns VulkanSift's documented default configuration
// (§6 getDefaultConfig).
func DefaultConfig() Config {
	ss := scalespace.DefaultConfig()
	ex := extractor.DefaultConfig()
	return Config{
		InputImageMaxSize:           ImageSize{Width: 4096, Height: 4096},
		SiftBufferCount:             2,
		MaxNbSiftPerBuffer:          ex.MaxFeaturesPerSlot,
		UseUpsampling:               ss.UseUpsampling,
		NbScalesPerOctave:           ss.NbScalesPerOctave,
		NbOctaves:                   ss.NbOctaves,
		InputBlurLevel:              ss.InputBlurLevel,
		SeedScaleSigma:              ss.SeedScaleSigma,
		IntensityThreshold:          ex.IntensityThreshold,
		EdgeThreshold:               ex.EdgeThreshold,
		MaxNbRefinementSteps:        ex.MaxRefinementSteps,
		DescriptorFormat:            DescriptorUBC1,
		PyramidPrecisionMode:        PrecisionFloat32,
		UseHardwareInterpolatedBlur: false,
	}
}

func (c Config) toScaleSpaceConfig() scalespace.Config {
	cfg := scalespace.DefaultConfig()
	cfg.UseUpsampling = c.UseUpsampling
	cfg.NbScalesPerOctave = c.NbScalesPerOctave
	cfg.NbOctaves = c.NbOctaves
	cfg.InputBlurLevel = c.InputBlurLevel
	cfg.SeedScaleSigma = c.SeedScaleSigma
	cfg.UseHardwareInterpolatedBlur = c.UseHardwareInterpolatedBlur
	if c.PyramidPrecisionMode == PrecisionFloat16 {
		cfg.Precision = scalespace.PrecisionFloat16
	} else {
		cfg.Precision = scalespace.PrecisionFloat32
	}
	return cfg
}

func (c Config) toExtractorConfig() extractor.Config {
	cfg := extractor.DefaultConfig()
	cfg.IntensityThreshold = c.IntensityThreshold
	cfg.EdgeThreshold = c.EdgeThreshold
	cfg.MaxRefinementSteps = c.MaxNbRefinementSteps
	cfg.MaxFeaturesPerSlot = c.MaxNbSiftPerBuffer
	if c.DescriptorFormat == DescriptorUBC2 {
		cfg.DescriptorFormat = extractor.DescriptorUBC2
	} else {
		cfg.DescriptorFormat = extractor.DescriptorUBC1
	}
	return cfg
}

func (c Config) toPipelineConfig() pipeline.Config {
	var cb pipeline.ErrorCallback
	if c.OnErrorCallbackFunction != nil {
		cb = func(r pipeline.Result) {
			c.OnErrorCallbackFunction(Result(r))
		}
	}
	return pipeline.Config{
		ScaleSpace:     c.toScaleSpaceConfig(),
		Extractor:      c.toExtractorConfig(),
		MaxImageWidth:  c.InputImageMaxSize.Width,
		MaxImageHeight: c.InputImageMaxSize.Height,
		OnError:        cb,
	}
}
