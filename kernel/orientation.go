// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package kernel

import "github.com/chewxy/math32"

const orientationBins = 36

// OrientationHistogram builds and smooths the 36-bin gradient-magnitude
// histogram around (x,y) on plane, weighted by a Gaussian with
// σ = 1.5·sigma over a radius ⌈3·1.5·sigma⌉, then applies six box-filter
// passes (§4.3 "equivalent to a wide Gaussian"). Returns nil if the
// support radius leaves the image.
func OrientationHistogram(plane []float32, w, h, x, y int, sigma float32) []float32 {
	gaussSigma := 1.5 * sigma
	radius := int(math32.Ceil(3 * gaussSigma))
	if x-radius < 1 || x+radius >= w-1 || y-radius < 1 || y+radius >= h-1 {
		return nil
	}

	hist := make([]float32, orientationBins)
	twoSigmaSq := 2 * gaussSigma * gaussSigma

	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			px, py := x+dx, y+dy
			gx := plane[py*w+px+1] - plane[py*w+px-1]
			gy := plane[(py+1)*w+px] - plane[(py-1)*w+px]
			mag := math32.Hypot(gx, gy)
			angle := math32.Atan2(gy, gx)
			weight := math32.Exp(-float32(dx*dx+dy*dy) / twoSigmaSq)

			bin := int(angle*orientationBins/(2*math32.Pi) + orientationBins)
			bin %= orientationBins
			hist[bin] += mag * weight
		}
	}

	return smoothHistogramBoxFilter(hist, 6)
}

// smoothHistogramBoxFilter runs passes circular box-filter smoothings over
// hist, each replacing bin[i] with the mean of its 3-neighbourhood.
func smoothHistogramBoxFilter(hist []float32, passes int) []float32 {
	n := len(hist)
	cur := append([]float32(nil), hist...)
	tmp := make([]float32, n)
	for p := 0; p < passes; p++ {
		for i := 0; i < n; i++ {
			prev := cur[(i-1+n)%n]
			next := cur[(i+1)%n]
			tmp[i] = (prev + cur[i] + next) / 3
		}
		cur, tmp = tmp, cur
	}
	return cur
}

// OrientationPeak is one emitted orientation for a keypoint.
type OrientationPeak struct {
	Theta float32 // radians, in [0, 2π)
}

// FindOrientationPeaks returns every histogram peak at or above 0.8 times
// the global max, each refined by parabolic interpolation of its three
// surrounding bins (§4.3), ordered by bin index for determinism.
func FindOrientationPeaks(hist []float32) []OrientationPeak {
	n := len(hist)
	var maxVal float32
	for _, v := range hist {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal <= 0 {
		return nil
	}

	threshold := 0.8 * maxVal
	var peaks []OrientationPeak
	for i := 0; i < n; i++ {
		v := hist[i]
		if v < threshold {
			continue
		}
		left := hist[(i-1+n)%n]
		right := hist[(i+1)%n]
		if v < left || v < right {
			continue
		}
		// Parabolic interpolation over (left, v, right).
		denom := left - 2*v + right
		var offset float32
		if denom != 0 {
			offset = 0.5 * (left - right) / denom
		}
		binPos := float32(i) + offset
		theta := binPos * 2 * math32.Pi / orientationBins
		if theta < 0 {
			theta += 2 * math32.Pi
		}
		if theta >= 2*math32.Pi {
			theta -= 2 * math32.Pi
		}
		peaks = append(peaks, OrientationPeak{Theta: theta})
	}
	return peaks
}
