// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"encoding/binary"
	"math"

	"github.com/vulkansift/vulkansift/extractor"
	"github.com/vulkansift/vulkansift/kernel"
	"github.com/vulkansift/vulkansift/matcher"
)

// The feature slot and match buffer are, per §3, fixed-capacity memory
// regions with a count header followed by an array of fixed-size records
// — the same layout a storage-buffer-backed SSBO would have on a real
// Vulkan backend. encodeFeatures/decodeFeatures and encodeMatches/
// decodeMatches are the packing routines for that layout, so that
// uploadFeatures/downloadFeatures and downloadMatches actually round-trip
// through a gpu.Buffer instead of passing the slice through untouched.

const wireHeaderSize = 4 // uint32 count, at offset 0

// featureRecordHeaderSize is the encoded size of one Feature, excluding its
// descriptor (36 bytes: X, Y, OrigX, OrigY, Sigma, Theta as float32, then
// OrientationID, Octave, Scale as int32).
const featureRecordHeaderSize = 36

// descriptorByteSize returns the encoded size of a descriptor in format:
// 1 byte per grid bin for DescriptorUBC1, 4 bytes (float32) per bin for
// DescriptorUBC2.
func descriptorByteSize(format extractor.DescriptorFormat) int {
	if format == extractor.DescriptorUBC2 {
		return kernel.DescriptorLen * 4
	}
	return kernel.DescriptorLen
}

func featureRecordSize(format extractor.DescriptorFormat) int {
	return featureRecordHeaderSize + descriptorByteSize(format)
}

// featureBufferSize returns the byte size of the gpu.Buffer backing a
// feature slot of the given capacity and descriptor format.
func featureBufferSize(capacity int, format extractor.DescriptorFormat) uint64 {
	return wireHeaderSize + uint64(capacity)*uint64(featureRecordSize(format))
}

// encodeFeatures packs features into buf, which must be at least
// featureBufferSize(capacity, format) bytes. Records beyond capacity are
// dropped; the count header always reflects len(features) clamped to
// capacity, mirroring the extractor's own saturation discipline (§4.3).
func encodeFeatures(buf []byte, features []extractor.Feature, format extractor.DescriptorFormat) {
	recSize := featureRecordSize(format)
	capacity := (len(buf) - wireHeaderSize) / recSize

	n := len(features)
	if n > capacity {
		n = capacity
	}
	binary.LittleEndian.PutUint32(buf[0:4], uint32(n))

	for i := 0; i < n; i++ {
		f := features[i]
		rec := buf[wireHeaderSize+i*recSize : wireHeaderSize+(i+1)*recSize]
		putFloat32(rec[0:4], f.X)
		putFloat32(rec[4:8], f.Y)
		putFloat32(rec[8:12], f.OrigX)
		putFloat32(rec[12:16], f.OrigY)
		putFloat32(rec[16:20], f.Sigma)
		putFloat32(rec[20:24], f.Theta)
		binary.LittleEndian.PutUint32(rec[24:28], uint32(f.OrientationID))
		binary.LittleEndian.PutUint32(rec[28:32], uint32(f.Octave))
		binary.LittleEndian.PutUint32(rec[32:36], uint32(f.Scale))

		desc := rec[featureRecordHeaderSize:]
		switch format {
		case extractor.DescriptorUBC2:
			for j := 0; j < kernel.DescriptorLen; j++ {
				var v float32
				if j < len(f.DescriptorFloats) {
					v = f.DescriptorFloats[j]
				}
				putFloat32(desc[j*4:j*4+4], v)
			}
		default:
			for j := 0; j < kernel.DescriptorLen; j++ {
				if j < len(f.DescriptorBytes) {
					desc[j] = f.DescriptorBytes[j]
				}
			}
		}
	}
}

// decodeFeatures is the inverse of encodeFeatures.
func decodeFeatures(buf []byte, format extractor.DescriptorFormat) []extractor.Feature {
	recSize := featureRecordSize(format)
	capacity := (len(buf) - wireHeaderSize) / recSize

	count := int(binary.LittleEndian.Uint32(buf[0:4]))
	if count > capacity {
		count = capacity
	}

	out := make([]extractor.Feature, count)
	for i := 0; i < count; i++ {
		rec := buf[wireHeaderSize+i*recSize : wireHeaderSize+(i+1)*recSize]
		f := extractor.Feature{
			X:             getFloat32(rec[0:4]),
			Y:             getFloat32(rec[4:8]),
			OrigX:         getFloat32(rec[8:12]),
			OrigY:         getFloat32(rec[12:16]),
			Sigma:         getFloat32(rec[16:20]),
			Theta:         getFloat32(rec[20:24]),
			OrientationID: int(binary.LittleEndian.Uint32(rec[24:28])),
			Octave:        int(binary.LittleEndian.Uint32(rec[28:32])),
			Scale:         int(binary.LittleEndian.Uint32(rec[32:36])),
		}

		desc := rec[featureRecordHeaderSize:]
		switch format {
		case extractor.DescriptorUBC2:
			floats := make([]float32, kernel.DescriptorLen)
			for j := range floats {
				floats[j] = getFloat32(desc[j*4 : j*4+4])
			}
			f.DescriptorFloats = floats
		default:
			bytes := make([]byte, kernel.DescriptorLen)
			copy(bytes, desc)
			f.DescriptorBytes = bytes
		}
		out[i] = f
	}
	return out
}

// matchRecordSize is the encoded size of one matcher.Match (IdxA, IdxB1,
// IdxB2 as int32, DistAB1, DistAB2 as float32).
const matchRecordSize = 20

// matchBufferSize returns the byte size of the gpu.Buffer backing the
// match buffer at the given capacity (§3: "sized to the capacity of the
// A slot").
func matchBufferSize(capacity int) uint64 {
	return wireHeaderSize + uint64(capacity)*matchRecordSize
}

func encodeMatches(buf []byte, matches []matcher.Match) {
	capacity := (len(buf) - wireHeaderSize) / matchRecordSize

	n := len(matches)
	if n > capacity {
		n = capacity
	}
	binary.LittleEndian.PutUint32(buf[0:4], uint32(n))

	for i := 0; i < n; i++ {
		m := matches[i]
		rec := buf[wireHeaderSize+i*matchRecordSize : wireHeaderSize+(i+1)*matchRecordSize]
		binary.LittleEndian.PutUint32(rec[0:4], uint32(m.IdxA))
		binary.LittleEndian.PutUint32(rec[4:8], uint32(m.IdxB1))
		binary.LittleEndian.PutUint32(rec[8:12], uint32(m.IdxB2))
		putFloat32(rec[12:16], m.DistAB1)
		putFloat32(rec[16:20], m.DistAB2)
	}
}

func decodeMatches(buf []byte) []matcher.Match {
	capacity := (len(buf) - wireHeaderSize) / matchRecordSize

	count := int(binary.LittleEndian.Uint32(buf[0:4]))
	if count > capacity {
		count = capacity
	}

	out := make([]matcher.Match, count)
	for i := 0; i < count; i++ {
		rec := buf[wireHeaderSize+i*matchRecordSize : wireHeaderSize+(i+1)*matchRecordSize]
		out[i] = matcher.Match{
			IdxA:    int(binary.LittleEndian.Uint32(rec[0:4])),
			IdxB1:   int(binary.LittleEndian.Uint32(rec[4:8])),
			IdxB2:   int(binary.LittleEndian.Uint32(rec[8:12])),
			DistAB1: getFloat32(rec[12:16]),
			DistAB2: getFloat32(rec[16:20]),
		}
	}
	return out
}

func putFloat32(b []byte, v float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
}

func getFloat32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
