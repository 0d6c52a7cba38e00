// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vulkansift/vulkansift/extractor"
)

func TestMatchRejectsSameSlot(t *testing.T) {
	_, err := Match(0, 0, []extractor.Feature{{}}, []extractor.Feature{{}})
	assert.ErrorIs(t, err, ErrSameSlot)
}

func TestMatchRejectsEmptySlot(t *testing.T) {
	_, err := Match(0, 1, nil, []extractor.Feature{{}})
	assert.ErrorIs(t, err, ErrEmptySlot)
}

func TestMatchFindsBestAndSecondBest(t *testing.T) {
	a := []extractor.Feature{
		{DescriptorFloats: []float32{1, 0, 0}},
		{DescriptorFloats: []float32{0, 1, 0}},
	}
	b := []extractor.Feature{
		{DescriptorFloats: []float32{0, 1, 0}},
		{DescriptorFloats: []float32{1, 0, 0}},
		{DescriptorFloats: []float32{0.5, 0.5, 0}},
	}

	matches, err := Match(0, 1, a, b)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, 1, matches[0].IdxB1)
	assert.Equal(t, 0, matches[1].IdxB1)
}

func TestMatchRejectsFormatMismatch(t *testing.T) {
	a := []extractor.Feature{{DescriptorFloats: []float32{1, 0}}}
	b := []extractor.Feature{{DescriptorBytes: []byte{1, 0}}}
	_, err := Match(0, 1, a, b)
	assert.ErrorIs(t, err, ErrFormatMismatch)
}

func TestMatchBytesFormat(t *testing.T) {
	a := []extractor.Feature{{DescriptorBytes: []byte{10, 20, 30}}}
	b := []extractor.Feature{
		{DescriptorBytes: []byte{10, 20, 30}},
		{DescriptorBytes: []byte{0, 0, 0}},
	}
	matches, err := Match(0, 1, a, b)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 0, matches[0].IdxB1)
	assert.Equal(t, float32(0), matches[0].DistAB1)
}
