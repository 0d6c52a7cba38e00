// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package kernel

import "github.com/chewxy/math32"

// Candidate is a raw DoG extremum before refinement: a discrete voxel
// location within one octave's scale stack.
type Candidate struct {
	X, Y, S int
}

// IsExtremum reports whether cur[y*w+x] is strictly greater or strictly
// less than all 26 neighbours across prev, cur and next, and whether its
// magnitude clears the coarse contrast gate (§4.3 "strictly greater or
// strictly less than all 26 neighbours... and |DoG| > 0.8 ·
// intensity_threshold / S").
func IsExtremum(prev, cur, next []float32, w, h, x, y int, intensityThreshold float32, nbScales int) bool {
	if x < 1 || x >= w-1 || y < 1 || y >= h-1 {
		return false
	}
	v := cur[y*w+x]
	if math32.Abs(v) <= 0.8*intensityThreshold/float32(nbScales) {
		return false
	}

	isMax, isMin := true, true
	check := func(n float32) {
		if n >= v {
			isMax = false
		}
		if n <= v {
			isMin = false
		}
	}
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			check(prev[(y+dy)*w+(x+dx)])
			check(next[(y+dy)*w+(x+dx)])
			if dx != 0 || dy != 0 {
				check(cur[(y+dy)*w+(x+dx)])
			}
		}
	}
	return isMax || isMin
}

// DetectExtrema scans every interior pixel of cur (guarded by prev/next)
// for a DoG extremum and returns the discrete candidates found, in
// raster (y, then x) order — the stable ordering §8's determinism
// property relies on.
func DetectExtrema(prev, cur, next []float32, w, h, scale int, intensityThreshold float32, nbScales int) []Candidate {
	var candidates []Candidate
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			if IsExtremum(prev, cur, next, w, h, x, y, intensityThreshold, nbScales) {
				candidates = append(candidates, Candidate{X: x, Y: y, S: scale})
			}
		}
	}
	return candidates
}

// DoGGradient3D returns the central-difference gradient (dx, dy, ds) of
// the DoG value at (x,y) in the scale stack {prev,cur,next}, used by the
// Brown–Lowe sub-pixel solver.
func DoGGradient3D(prev, cur, next []float32, w, x, y int) (dx, dy, ds float32) {
	dx = (cur[y*w+x+1] - cur[y*w+x-1]) / 2
	dy = (cur[(y+1)*w+x] - cur[(y-1)*w+x]) / 2
	ds = (next[y*w+x] - prev[y*w+x]) / 2
	return
}

// DoGHessian3D returns the symmetric 3×3 Hessian of the DoG value at
// (x,y) in the scale stack, in row-major order
// [dxx dxy dxs; dxy dyy dys; dxs dys dss].
func DoGHessian3D(prev, cur, next []float32, w, x, y int) [3][3]float32 {
	v := cur[y*w+x]
	dxx := cur[y*w+x+1] - 2*v + cur[y*w+x-1]
	dyy := cur[(y+1)*w+x] - 2*v + cur[(y-1)*w+x]
	dss := next[y*w+x] - 2*v + prev[y*w+x]
	dxy := (cur[(y+1)*w+x+1] - cur[(y+1)*w+x-1] - cur[(y-1)*w+x+1] + cur[(y-1)*w+x-1]) / 4
	dxs := (next[y*w+x+1] - next[y*w+x-1] - prev[y*w+x+1] + prev[y*w+x-1]) / 4
	dys := (next[(y+1)*w+x] - next[(y-1)*w+x] - prev[(y+1)*w+x] + prev[(y-1)*w+x]) / 4
	return [3][3]float32{
		{dxx, dxy, dxs},
		{dxy, dyy, dys},
		{dxs, dys, dss},
	}
}

// DoGHessian2D returns the 2-D (x,y) Hessian used by the edge-rejection
// principal-curvature test (§4.3).
func DoGHessian2D(cur []float32, w, x, y int) (dxx, dyy, dxy float32) {
	v := cur[y*w+x]
	dxx = cur[y*w+x+1] - 2*v + cur[y*w+x-1]
	dyy = cur[(y+1)*w+x] - 2*v + cur[(y-1)*w+x]
	dxy = (cur[(y+1)*w+x+1] - cur[(y+1)*w+x-1] - cur[(y-1)*w+x+1] + cur[(y-1)*w+x-1]) / 4
	return
}
