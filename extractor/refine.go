// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package extractor

import (
	"github.com/chewxy/math32"

	"github.com/vulkansift/vulkansift/kernel"
	"github.com/vulkansift/vulkansift/scalespace"
)

// refined is a candidate after sub-pixel refinement succeeds.
type refined struct {
	x, y, s         int     // final discrete location
	dx, dy, ds      float32 // sub-pixel offsets within the voxel
	interpolatedDoG float32
}

// refineLocation implements the Brown-Lowe iterative 3-D quadratic fit
// (§4.3): fit a quadratic to the DoG via finite differences, solve for
// the offset, and re-center on the discrete voxel if any axis offset
// exceeds 0.5, up to maxSteps attempts.
func refineLocation(oct scalespace.Octave, s, x, y, maxSteps int) (refined, bool) {
	for step := 0; step < maxSteps; step++ {
		if s < 1 || s > len(oct.DoG)-2 {
			return refined{}, false
		}
		if x < 1 || x >= oct.Width-1 || y < 1 || y >= oct.Height-1 {
			return refined{}, false
		}

		prev := oct.DoG[s-1]
		cur := oct.DoG[s]
		next := oct.DoG[s+1]

		gx, gy, gs := kernel.DoGGradient3D(prev, cur, next, oct.Width, x, y)
		h := kernel.DoGHessian3D(prev, cur, next, oct.Width, x, y)

		offset, ok := solve3x3(h, [3]float32{-gx, -gy, -gs})
		if !ok {
			return refined{}, false
		}

		if math32.Abs(offset[0]) < 0.5 && math32.Abs(offset[1]) < 0.5 && math32.Abs(offset[2]) < 0.5 {
			interpolated := cur[y*oct.Width+x] + 0.5*(gx*offset[0]+gy*offset[1]+gs*offset[2])
			return refined{x: x, y: y, s: s, dx: offset[0], dy: offset[1], ds: offset[2], interpolatedDoG: interpolated}, true
		}

		x += roundOffset(offset[0])
		y += roundOffset(offset[1])
		s += roundOffset(offset[2])
		if s < 1 || s > len(oct.DoG)-2 || x < 1 || x >= oct.Width-1 || y < 1 || y >= oct.Height-1 {
			return refined{}, false
		}
	}
	return refined{}, false
}

func roundOffset(v float32) int {
	if v >= 0.5 {
		return 1
	}
	if v <= -0.5 {
		return -1
	}
	return 0
}

// solve3x3 solves h·v = b via Cramer's rule, returning ok=false if h is
// (near-)singular (§4.3 "reject when the solver is singular").
func solve3x3(h [3][3]float32, b [3]float32) ([3]float32, bool) {
	det := determinant3x3(h)
	if math32.Abs(det) < 1e-9 {
		return [3]float32{}, false
	}

	var v [3]float32
	for col := 0; col < 3; col++ {
		m := h
		for row := 0; row < 3; row++ {
			m[row][col] = b[row]
		}
		v[col] = determinant3x3(m) / det
	}
	return v, true
}

func determinant3x3(m [3][3]float32) float32 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

// passesEdgeRejection implements the principal-curvature test (§4.3):
// tr²/det > (r+1)²/r rejects the candidate.
func passesEdgeRejection(oct scalespace.Octave, s, x, y int, edgeThreshold float32) bool {
	dxx, dyy, dxy := kernel.DoGHessian2D(oct.DoG[s], oct.Width, x, y)
	tr := dxx + dyy
	det := dxx*dyy - dxy*dxy
	if det <= 0 {
		return false
	}
	r := edgeThreshold
	return tr*tr/det <= (r+1)*(r+1)/r
}
