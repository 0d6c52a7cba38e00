// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package kernel

import (
	"runtime"

	"github.com/chewxy/math32"
	"golang.org/x/sync/errgroup"
)

// Gaussian1D returns a normalized 1-D Gaussian kernel for standard
// deviation sigma, truncated at ⌈3σ⌉ taps on each side (§4.2 "a kernel
// truncated at ⌈3σ⌉ taps").
func Gaussian1D(sigma float32) []float32 {
	if sigma <= 0 {
		return []float32{1}
	}
	radius := int(math32.Ceil(3 * sigma))
	if radius < 1 {
		radius = 1
	}
	taps := make([]float32, 2*radius+1)
	var sum float32
	twoSigmaSq := 2 * sigma * sigma
	for i := -radius; i <= radius; i++ {
		v := math32.Exp(-float32(i*i) / twoSigmaSq)
		taps[i+radius] = v
		sum += v
	}
	for i := range taps {
		taps[i] /= sum
	}
	return taps
}

// forEachRowGroup runs fn(rowStart, rowEnd) over disjoint row ranges
// covering [0,height) concurrently, modeling per-workgroup dispatch of a
// row-parallel compute shader.
func forEachRowGroup(height int, fn func(y0, y1 int) error) error {
	workers := runtime.GOMAXPROCS(0)
	if workers > height {
		workers = height
	}
	if workers < 1 {
		workers = 1
	}
	rowsPerWorker := (height + workers - 1) / workers

	var g errgroup.Group
	for y0 := 0; y0 < height; y0 += rowsPerWorker {
		y0 := y0
		y1 := y0 + rowsPerWorker
		if y1 > height {
			y1 = height
		}
		g.Go(func() error {
			return fn(y0, y1)
		})
	}
	return g.Wait()
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// SeparableBlurHorizontal convolves src (w×h) with taps along rows into
// dst, clamping at image borders.
func SeparableBlurHorizontal(src, dst []float32, w, h int, taps []float32) error {
	radius := len(taps) / 2
	return forEachRowGroup(h, func(y0, y1 int) error {
		for y := y0; y < y1; y++ {
			row := y * w
			for x := 0; x < w; x++ {
				var acc float32
				for k := -radius; k <= radius; k++ {
					sx := clampIndex(x+k, w)
					acc += src[row+sx] * taps[k+radius]
				}
				dst[row+x] = acc
			}
		}
		return nil
	})
}

// SeparableBlurVertical is SeparableBlurHorizontal's column counterpart.
func SeparableBlurVertical(src, dst []float32, w, h int, taps []float32) error {
	radius := len(taps) / 2
	return forEachRowGroup(h, func(y0, y1 int) error {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				var acc float32
				for k := -radius; k <= radius; k++ {
					sy := clampIndex(y+k, h)
					acc += src[sy*w+x] * taps[k+radius]
				}
				dst[y*w+x] = acc
			}
		}
		return nil
	})
}

// Blur runs a full separable Gaussian blur (horizontal pass into scratch,
// vertical pass into dst), the default strategy from §4.2.
func Blur(src, scratch, dst []float32, w, h int, sigma float32) error {
	taps := Gaussian1D(sigma)
	if err := SeparableBlurHorizontal(src, scratch, w, h, taps); err != nil {
		return err
	}
	return SeparableBlurVertical(scratch, dst, w, h, taps)
}

// interpTap is one hardware-interpolated sample: a combined weight for a
// pair of adjacent Gaussian taps, fetched via linear interpolation at a
// fractional offset (the "linear-sampling trick" from §4.2).
type interpTap struct {
	weight float32
	offset float32
}

// sampleLinear reads a bilinearly-interpolated sample from row at a
// fractional x coordinate, clamping at the border.
func sampleLinear(row []float32, x float32, n int) float32 {
	if x <= 0 {
		return row[0]
	}
	if x >= float32(n-1) {
		return row[n-1]
	}
	x0 := int(math32.Floor(x))
	frac := x - float32(x0)
	return row[x0]*(1-frac) + row[x0+1]*frac
}

// HardwareInterpolatedBlurHorizontal is the hardware-interpolated variant
// of SeparableBlurHorizontal: it halves the number of texture fetches by
// sampling paired taps at one fractional offset each, at the cost of
// slight precision loss (§4.2).
func HardwareInterpolatedBlurHorizontal(src, dst []float32, w, h int, sigma float32) error {
	taps := Gaussian1D(sigma)
	pairs := pairTapsForInterpolation(taps)
	return forEachRowGroup(h, func(y0, y1 int) error {
		for y := y0; y < y1; y++ {
			row := src[y*w : y*w+w]
			out := dst[y*w : y*w+w]
			for x := 0; x < w; x++ {
				var acc float32
				for _, p := range pairs {
					acc += p.weight * sampleLinear(row, float32(x)+p.offset, w)
					if p.offset != 0 {
						acc += p.weight * sampleLinear(row, float32(x)-p.offset, w)
					}
				}
				out[x] = acc
			}
		}
		return nil
	})
}

// HardwareInterpolatedBlurVertical is the column counterpart, sampling a
// synthetic column buffer since image storage here is row-major.
func HardwareInterpolatedBlurVertical(src, dst []float32, w, h int, sigma float32) error {
	taps := Gaussian1D(sigma)
	pairs := pairTapsForInterpolation(taps)
	return forEachRowGroup(h, func(y0, y1 int) error {
		col := make([]float32, h)
		for x := 0; x < w; x++ {
			for y := 0; y < h; y++ {
				col[y] = src[y*w+x]
			}
			for y := y0; y < y1; y++ {
				var acc float32
				for _, p := range pairs {
					acc += p.weight * sampleLinear(col, float32(y)+p.offset, h)
					if p.offset != 0 {
						acc += p.weight * sampleLinear(col, float32(y)-p.offset, h)
					}
				}
				dst[y*w+x] = acc
			}
		}
		return nil
	})
}

// pairTapsForInterpolation combines a symmetric kernel's positive-side
// taps two at a time (plus the unpaired center) into half as many
// (combined-weight, fractional-offset) samples.
func pairTapsForInterpolation(taps []float32) []interpTap {
	radius := len(taps) / 2
	pairs := []interpTap{{weight: taps[radius], offset: 0}}
	k := 1
	for k <= radius {
		w0 := taps[radius+k]
		if k+1 <= radius {
			w1 := taps[radius+k+1]
			combined := w0 + w1
			offset := float32(k) + w1/combined
			pairs = append(pairs, interpTap{weight: combined, offset: offset})
			k += 2
		} else {
			pairs = append(pairs, interpTap{weight: w0, offset: float32(k)})
			k++
		}
	}
	return pairs
}

// BlurHardwareInterpolated runs the two-pass hardware-interpolated blur.
func BlurHardwareInterpolated(src, scratch, dst []float32, w, h int, sigma float32) error {
	if err := HardwareInterpolatedBlurHorizontal(src, scratch, w, h, sigma); err != nil {
		return err
	}
	return HardwareInterpolatedBlurVertical(scratch, dst, w, h, sigma)
}
