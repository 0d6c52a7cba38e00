// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package vulkansift

import (
	"github.com/vulkansift/vulkansift/extractor"
	"github.com/vulkansift/vulkansift/matcher"
)

// Feature is one detected keypoint (§3's feature-slot record).
type Feature struct {
	X, Y             float32
	OrigX, OrigY     float32
	Sigma            float32
	Theta            float32
	DescriptorBytes  []byte
	DescriptorFloats []float32
	OrientationID    int
	Octave, Scale    int
}

func featureFromInternal(f extractor.Feature) Feature {
	return Feature{
		X: f.X, Y: f.Y,
		OrigX: f.OrigX, OrigY: f.OrigY,
		Sigma: f.Sigma, Theta: f.Theta,
		DescriptorBytes:  f.DescriptorBytes,
		DescriptorFloats: f.DescriptorFloats,
		OrientationID:    f.OrientationID,
		Octave:           f.Octave, Scale: f.Scale,
	}
}

func featureToInternal(f Feature) extractor.Feature {
	return extractor.Feature{
		X: f.X, Y: f.Y,
		OrigX: f.OrigX, OrigY: f.OrigY,
		Sigma: f.Sigma, Theta: f.Theta,
		DescriptorBytes:  f.DescriptorBytes,
		DescriptorFloats: f.DescriptorFloats,
		OrientationID:    f.OrientationID,
		Octave:           f.Octave, Scale: f.Scale,
	}
}

// Match is one output match-buffer record (§3).
type Match struct {
	IdxA, IdxB1, IdxB2 int
	DistAB1, DistAB2   float32
}

func matchFromInternal(m matcher.Match) Match {
	return Match{
		IdxA: m.IdxA, IdxB1: m.IdxB1, IdxB2: m.IdxB2,
		DistAB1: m.DistAB1, DistAB2: m.DistAB2,
	}
}
