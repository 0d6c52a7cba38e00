// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package kernel

// MatchResult is one output record of the brute-force 2-NN match kernel
// (§4.4): the best and second-best B-feature for one A-feature.
type MatchResult struct {
	IdxA, IdxB1, IdxB2 int
	DistB1, DistB2     float32
}

// MatchBruteForce2NN finds, for every A-feature, the nearest and
// second-nearest B-feature by squared L2 distance over 128-D float
// descriptors (UBC2). Complexity O(|A|·|B|·128), no early termination
// (§4.4).
func MatchBruteForce2NN(descA, descB [][]float32) []MatchResult {
	results := make([]MatchResult, len(descA))
	forEachRowGroup(len(descA), func(i0, i1 int) error {
		for i := i0; i < i1; i++ {
			best, second := bestTwo(descA[i], descB)
			results[i] = MatchResult{
				IdxA:   i,
				IdxB1:  best.idx,
				DistB1: best.dist,
				IdxB2:  second.idx,
				DistB2: second.dist,
			}
		}
		return nil
	})
	return results
}

// MatchBruteForce2NNBytes is MatchBruteForce2NN's UBC1 (byte descriptor)
// counterpart, computing integer squared distance per §4.4.
func MatchBruteForce2NNBytes(descA, descB [][]byte) []MatchResult {
	results := make([]MatchResult, len(descA))
	forEachRowGroup(len(descA), func(i0, i1 int) error {
		for i := i0; i < i1; i++ {
			best, second := bestTwoBytes(descA[i], descB)
			results[i] = MatchResult{
				IdxA:   i,
				IdxB1:  best.idx,
				DistB1: best.dist,
				IdxB2:  second.idx,
				DistB2: second.dist,
			}
		}
		return nil
	})
	return results
}

type candidateMatch struct {
	idx  int
	dist float32
}

func bestTwo(a []float32, pool [][]float32) (best, second candidateMatch) {
	best = candidateMatch{idx: -1, dist: maxFloat32}
	second = candidateMatch{idx: -1, dist: maxFloat32}
	for j, b := range pool {
		d := squaredL2(a, b)
		if d < best.dist {
			second = best
			best = candidateMatch{idx: j, dist: d}
		} else if d < second.dist {
			second = candidateMatch{idx: j, dist: d}
		}
	}
	return
}

func bestTwoBytes(a []byte, pool [][]byte) (best, second candidateMatch) {
	best = candidateMatch{idx: -1, dist: maxFloat32}
	second = candidateMatch{idx: -1, dist: maxFloat32}
	for j, b := range pool {
		d := squaredL2Bytes(a, b)
		if d < best.dist {
			second = best
			best = candidateMatch{idx: j, dist: d}
		} else if d < second.dist {
			second = candidateMatch{idx: j, dist: d}
		}
	}
	return
}

const maxFloat32 = 3.4028235e38

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func squaredL2Bytes(a, b []byte) float32 {
	var sum int32
	for i := range a {
		d := int32(a[i]) - int32(b[i])
		sum += d * d
	}
	return float32(sum)
}
