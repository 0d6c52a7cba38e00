// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package kernel

import "github.com/chewxy/math32"

// descriptorGrid and descriptorBins are the grid width/height (in cells)
// and per-cell bin count of the SIFT descriptor, DescriptorLen its length (§4.3: "4×4 grid of 8-bin orientation histograms (128
// values)").
const (
	descriptorGrid = 4
	descriptorBins = 8
	DescriptorLen  = descriptorGrid * descriptorGrid * descriptorBins
)

// ComputeDescriptor samples a 16×16 patch around (x,y) on plane, aligned
// with theta and scaled by sigma, and aggregates it into a 128-element
// raw (un-normalized) descriptor (§4.3). Returns nil if the patch leaves
// the image.
func ComputeDescriptor(plane []float32, w, h int, x, y, sigma, theta float32) []float32 {
	cosT, sinT := math32.Cos(theta), math32.Sin(theta)
	binSize := 3 * sigma // pixels per descriptor-grid cell, Lowe's convention
	radius := int(binSize * math32.Sqrt2 * float32(descriptorGrid+1) / 2)
	if radius < 1 {
		radius = 1
	}
	if int(x)-radius < 1 || int(x)+radius >= w-1 || int(y)-radius < 1 || int(y)+radius >= h-1 {
		return nil
	}

	desc := make([]float32, DescriptorLen)
	gaussSigma := float32(descriptorGrid) / 2 // σ = 0.5 · grid width in bins; weights the 16×16 patch smoothly (§4.3's σ=8 scaled into bin units)

	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			// Rotate the sample offset into the keypoint's own frame.
			rx := (cosT*float32(dx) + sinT*float32(dy)) / binSize
			ry := (-sinT*float32(dx) + cosT*float32(dy)) / binSize

			// Bin coordinates shifted so the 4x4 grid is centered.
			gx := rx + float32(descriptorGrid)/2 - 0.5
			gy := ry + float32(descriptorGrid)/2 - 0.5
			if gx <= -1 || gx >= descriptorGrid || gy <= -1 || gy >= descriptorGrid {
				continue
			}

			px, py := int(x)+dx, int(y)+dy
			gxd := plane[py*w+px+1] - plane[py*w+px-1]
			gyd := plane[(py+1)*w+px] - plane[(py-1)*w+px]
			mag := math32.Hypot(gxd, gyd)
			angle := math32.Atan2(gyd, gxd) - theta
			for angle < 0 {
				angle += 2 * math32.Pi
			}
			for angle >= 2*math32.Pi {
				angle -= 2 * math32.Pi
			}

			weight := math32.Exp(-(rx*rx + ry*ry) / (2 * gaussSigma * gaussSigma))
			contribution := mag * weight

			// Trilinear distribution across the surrounding grid cells
			// and orientation bins.
			binF := angle * descriptorBins / (2 * math32.Pi)
			distributeTrilinear(desc, gx, gy, binF, contribution)
		}
	}
	return desc
}

// distributeTrilinear spreads contribution across the (up to) 8
// neighbouring (gridX, gridY, orientationBin) cells using linear weights
// in each of the three dimensions, Lowe's standard soft-binning scheme.
func distributeTrilinear(desc []float32, gx, gy, binF, contribution float32) {
	x0 := int(math32.Floor(gx))
	y0 := int(math32.Floor(gy))
	b0 := int(math32.Floor(binF))

	fx := gx - float32(x0)
	fy := gy - float32(y0)
	fb := binF - float32(b0)

	for di := 0; di <= 1; di++ {
		xi := x0 + di
		if xi < 0 || xi >= descriptorGrid {
			continue
		}
		wx := fx
		if di == 0 {
			wx = 1 - fx
		}
		for dj := 0; dj <= 1; dj++ {
			yj := y0 + dj
			if yj < 0 || yj >= descriptorGrid {
				continue
			}
			wy := fy
			if dj == 0 {
				wy = 1 - fy
			}
			for dk := 0; dk <= 1; dk++ {
				bk := (b0 + dk + descriptorBins) % descriptorBins
				wb := fb
				if dk == 0 {
					wb = 1 - fb
				}
				idx := (yj*descriptorGrid+xi)*descriptorBins + bk
				desc[idx] += contribution * wx * wy * wb
			}
		}
	}
}

// NormalizeDescriptorUBC2 normalizes desc to unit L2 norm, clips entries
// above 0.2, and renormalizes (§4.3). desc is modified and returned
// in-place as the UBC2 (float, 0..1) format.
func NormalizeDescriptorUBC2(desc []float32) []float32 {
	l2Normalize(desc)
	for i, v := range desc {
		if v > 0.2 {
			desc[i] = 0.2
		}
	}
	l2Normalize(desc)
	return desc
}

// QuantizeDescriptorUBC1 normalizes desc the same way as
// NormalizeDescriptorUBC2, then scales by 512 and clamps to [0,255],
// producing the UBC1 (byte) format.
func QuantizeDescriptorUBC1(desc []float32) []byte {
	normalized := NormalizeDescriptorUBC2(append([]float32(nil), desc...))
	out := make([]byte, len(normalized))
	for i, v := range normalized {
		q := v * 512
		if q < 0 {
			q = 0
		}
		if q > 255 {
			q = 255
		}
		out[i] = byte(q)
	}
	return out
}

func l2Normalize(v []float32) {
	var sumSq float32
	for _, x := range v {
		sumSq += x * x
	}
	if sumSq == 0 {
		return
	}
	norm := math32.Sqrt(sumSq)
	for i := range v {
		v[i] /= norm
	}
}
