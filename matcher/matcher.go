// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package matcher

import (
	"errors"

	"github.com/vulkansift/vulkansift/extractor"
	"github.com/vulkansift/vulkansift/kernel"
)

// ErrEmptySlot is returned when either input feature slot has no
// features (§4.4 "Fails with INVALID_INPUT if A=B or either slot is
// empty").
var ErrEmptySlot = errors.New("matcher: feature slot is empty")

// ErrSameSlot is returned when the A and B slots are identical.
var ErrSameSlot = errors.New("matcher: A and B slots must differ")

// ErrFormatMismatch is returned when A and B features were extracted
// with different descriptor formats.
var ErrFormatMismatch = errors.New("matcher: mismatched descriptor formats between slots")

// Match is one output record (§3's match-buffer entry).
type Match struct {
	IdxA, IdxB1, IdxB2 int
	DistAB1, DistAB2   float32
}

// Match runs brute-force 2-NN matching of featuresA against featuresB,
// returning one Match per A-feature in A order.
func Match(slotA, slotB int, featuresA, featuresB []extractor.Feature) ([]Match, error) {
	if slotA == slotB {
		return nil, ErrSameSlot
	}
	if len(featuresA) == 0 || len(featuresB) == 0 {
		return nil, ErrEmptySlot
	}

	useBytes := len(featuresA[0].DescriptorBytes) > 0
	for _, f := range featuresA {
		if (len(f.DescriptorBytes) > 0) != useBytes {
			return nil, ErrFormatMismatch
		}
	}
	for _, f := range featuresB {
		if (len(f.DescriptorBytes) > 0) != useBytes {
			return nil, ErrFormatMismatch
		}
	}

	var results []kernel.MatchResult
	if useBytes {
		descA := make([][]byte, len(featuresA))
		descB := make([][]byte, len(featuresB))
		for i, f := range featuresA {
			descA[i] = f.DescriptorBytes
		}
		for i, f := range featuresB {
			descB[i] = f.DescriptorBytes
		}
		results = kernel.MatchBruteForce2NNBytes(descA, descB)
	} else {
		descA := make([][]float32, len(featuresA))
		descB := make([][]float32, len(featuresB))
		for i, f := range featuresA {
			descA[i] = f.DescriptorFloats
		}
		for i, f := range featuresB {
			descB[i] = f.DescriptorFloats
		}
		results = kernel.MatchBruteForce2NN(descA, descB)
	}

	matches := make([]Match, len(results))
	for i, r := range results {
		matches[i] = Match{
			IdxA:    r.IdxA,
			IdxB1:   r.IdxB1,
			IdxB2:   r.IdxB2,
			DistAB1: r.DistB1,
			DistAB2: r.DistB2,
		}
	}
	return matches, nil
}
