// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package kernel

// DifferenceOfGaussian writes dst[i] = high[i] - low[i] for two Gaussian
// planes of the same octave at adjacent scales (§4.2
// "DoG[o,s] = G[o,s+1] - G[o,s]").
func DifferenceOfGaussian(low, high, dst []float32, w, h int) error {
	return forEachRowGroup(h, func(y0, y1 int) error {
		for y := y0; y < y1; y++ {
			row := y * w
			for x := 0; x < w; x++ {
				dst[row+x] = high[row+x] - low[row+x]
			}
		}
		return nil
	})
}
