// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package scalespace

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/vulkansift/vulkansift/kernel"
)

// Config controls pyramid construction, the subset of the instance
// configuration (§3) that this package needs.
type Config struct {
	// NbScalesPerOctave is S ≥ 1 (default 3).
	NbScalesPerOctave int
	// NbOctaves is 0 for auto-derivation (§4.2).
	NbOctaves int
	// UseUpsampling doubles the base image before octave 0.
	UseUpsampling bool
	// InputBlurLevel is the blur already assumed present in the input.
	InputBlurLevel float32
	// SeedScaleSigma is σ₀, the octave-0/scale-0 target cumulative blur.
	SeedScaleSigma float32
	// UseHardwareInterpolatedBlur selects the linear-sampling variant of
	// the two-pass blur (adjacent taps paired into one interpolated
	// sample) instead of the default plain separable one.
	UseHardwareInterpolatedBlur bool
	// Precision is the storage precision of every plane.
	Precision Precision
}

// DefaultConfig returns VulkanSift's documented scale-space defaults.
func DefaultConfig() Config {
	return Config{
		NbScalesPerOctave: 3,
		NbOctaves:         0,
		UseUpsampling:     false,
		InputBlurLevel:    0.5,
		SeedScaleSigma:    1.6,
		Precision:         PrecisionFloat32,
	}
}

// Octave holds one octave's Gaussian and DoG plane stacks, each
// width×height float32 planes in row-major order.
type Octave struct {
	Width, Height int
	Gaussian      [][]float32 // S+3 planes, s ∈ [0, S+2]
	DoG           [][]float32 // S+2 planes, s ∈ [0, S+1]
}

// Pyramid is the full Gaussian/DoG scale-space for one detect call.
type Pyramid struct {
	Config     Config
	BaseWidth  int
	BaseHeight int
	Octaves    []Octave
}

// NbOctaves resolves the configured or auto-derived octave count for base
// dimensions (w,h) (§4.2: "floor(log2(min(W0,H0))) - 3, clamped to ≥ 1").
func NbOctaves(cfg Config, w, h int) int {
	if cfg.NbOctaves > 0 {
		return cfg.NbOctaves
	}
	minDim := w
	if h < minDim {
		minDim = h
	}
	n := int(math32.Floor(math32.Log2(float32(minDim)))) - 3
	if n < 1 {
		n = 1
	}
	return n
}

// Build constructs the full pyramid from an 8-bit grayscale image already
// converted to [0,1] floats (the staged-upload conversion happens in the
// extractor/pipeline layer before Build is called).
func Build(input []float32, width, height int, cfg Config) (*Pyramid, error) {
	if width <= 0 || height <= 0 || len(input) != width*height {
		return nil, fmt.Errorf("scalespace: invalid input dimensions %dx%d for %d samples", width, height, len(input))
	}
	if cfg.NbScalesPerOctave < 1 {
		return nil, fmt.Errorf("scalespace: nb_scales_per_octave must be >= 1")
	}

	base := input
	baseW, baseH := width, height
	if cfg.UseUpsampling {
		base = upsample2xBilinear(input, width, height)
		baseW, baseH = width*2, height*2
	}

	nbOctaves := NbOctaves(cfg, baseW, baseH)
	p := &Pyramid{Config: cfg, BaseWidth: baseW, BaseHeight: baseH, Octaves: make([]Octave, nbOctaves)}

	S := cfg.NbScalesPerOctave
	k := math32.Pow(2, 1.0/float32(S))

	seed := base
	seedW, seedH := baseW, baseH

	for o := 0; o < nbOctaves; o++ {
		oct := Octave{
			Width:    seedW,
			Height:   seedH,
			Gaussian: make([][]float32, S+3),
			DoG:      make([][]float32, S+2),
		}

		// Scale 0: reach the seed blur from whatever blur the seed image
		// already carries (input_blur_level for octave 0; octave o-1's
		// scale-S already carries double the seed blur per §4.2 step 3, so
		// its current blur is already σ₀ in the downsampled frame).
		var priorBlur float32
		if o == 0 {
			priorBlur = cfg.InputBlurLevel
		} else {
			priorBlur = cfg.SeedScaleSigma
		}
		oct.Gaussian[0] = blurTo(seed, seedW, seedH, priorBlur, cfg.SeedScaleSigma, cfg)

		for s := 1; s <= S+2; s++ {
			sigmaTotalPrev := cfg.SeedScaleSigma * math32.Pow(k, float32(s-1))
			sigmaTotalCur := cfg.SeedScaleSigma * math32.Pow(k, float32(s))
			incremental := incrementalSigma(sigmaTotalPrev, sigmaTotalCur)
			oct.Gaussian[s] = blurIncremental(oct.Gaussian[s-1], seedW, seedH, incremental, cfg)
		}

		for s := 0; s <= S+1; s++ {
			dst := make([]float32, seedW*seedH)
			if err := kernel.DifferenceOfGaussian(oct.Gaussian[s], oct.Gaussian[s+1], dst, seedW, seedH); err != nil {
				return nil, err
			}
			applyPrecision(dst, cfg.Precision)
			oct.DoG[s] = dst
		}

		p.Octaves[o] = oct

		if o+1 < nbOctaves {
			seed = downsampleNearest2x(oct.Gaussian[S], seedW, seedH)
			seedW, seedH = seedW/2, seedH/2
			if seedW < 1 || seedH < 1 {
				p.Octaves = p.Octaves[:o+1]
				break
			}
		}
	}

	return p, nil
}

// incrementalSigma returns the σ of the Gaussian that must be convolved
// with an image already blurred to sigmaPrev to reach sigmaCur, assuming
// Gaussian blur variances add.
func incrementalSigma(sigmaPrev, sigmaCur float32) float32 {
	diff := sigmaCur*sigmaCur - sigmaPrev*sigmaPrev
	if diff <= 0 {
		return 0
	}
	return math32.Sqrt(diff)
}

func blurTo(src []float32, w, h int, priorBlur, targetBlur float32, cfg Config) []float32 {
	sigma := incrementalSigma(priorBlur, targetBlur)
	return blurIncremental(src, w, h, sigma, cfg)
}

func blurIncremental(src []float32, w, h int, sigma float32, cfg Config) []float32 {
	dst := make([]float32, w*h)
	if sigma <= 0 {
		copy(dst, src)
		applyPrecision(dst, cfg.Precision)
		return dst
	}
	scratch := make([]float32, w*h)
	if cfg.UseHardwareInterpolatedBlur {
		_ = kernel.BlurHardwareInterpolated(src, scratch, dst, w, h, sigma)
	} else {
		_ = kernel.Blur(src, scratch, dst, w, h, sigma)
	}
	applyPrecision(dst, cfg.Precision)
	return dst
}

// upsample2xBilinear doubles image dimensions using bilinear
// interpolation (§4.2 step 1).
func upsample2xBilinear(src []float32, w, h int) []float32 {
	dstW, dstH := w*2, h*2
	dst := make([]float32, dstW*dstH)
	for y := 0; y < dstH; y++ {
		sy := float32(y) / 2
		y0 := int(sy)
		y1 := y0 + 1
		if y1 >= h {
			y1 = h - 1
		}
		fy := sy - float32(y0)
		for x := 0; x < dstW; x++ {
			sx := float32(x) / 2
			x0 := int(sx)
			x1 := x0 + 1
			if x1 >= w {
				x1 = w - 1
			}
			fx := sx - float32(x0)

			v00 := src[y0*w+x0]
			v01 := src[y0*w+x1]
			v10 := src[y1*w+x0]
			v11 := src[y1*w+x1]
			top := v00*(1-fx) + v01*fx
			bot := v10*(1-fx) + v11*fx
			dst[y*dstW+x] = top*(1-fy) + bot*fy
		}
	}
	return dst
}

// downsampleNearest2x halves image dimensions by nearest-neighbour
// sampling, the choice §4.2 mandates for octave seeding ("use nearest on
// the pixel at scale S of octave o-1").
func downsampleNearest2x(src []float32, w, h int) []float32 {
	dstW, dstH := w/2, h/2
	dst := make([]float32, dstW*dstH)
	for y := 0; y < dstH; y++ {
		for x := 0; x < dstW; x++ {
			dst[y*dstW+x] = src[(y*2)*w+(x*2)]
		}
	}
	return dst
}
