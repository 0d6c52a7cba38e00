// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package extractor

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/vulkansift/vulkansift/kernel"
	"github.com/vulkansift/vulkansift/scalespace"
)

// Config is the subset of instance configuration (§3) the extractor
// bakes into its pipeline at creation time, per §9 "the descriptor layout
// is chosen once at instance creation and baked into the extractor
// pipeline".
type Config struct {
	IntensityThreshold float32
	EdgeThreshold      float32
	MaxRefinementSteps int
	DescriptorFormat   DescriptorFormat
	MaxFeaturesPerSlot int
}

// DefaultConfig returns VulkanSift's documented extractor defaults.
func DefaultConfig() Config {
	return Config{
		IntensityThreshold: 0.04,
		EdgeThreshold:      10,
		MaxRefinementSteps: 5,
		DescriptorFormat:   DescriptorUBC1,
		MaxFeaturesPerSlot: 10000,
	}
}

// Extract scans every octave's DoG stack for extrema, refines, rejects
// and describes them, and returns up to cfg.MaxFeaturesPerSlot features
// in (octave, scale, y, x, orientation_id) order — the stable ordering
// §8's determinism property requires. A result length equal to
// MaxFeaturesPerSlot is the library's "saturated" signal (§4.3, §7): it
// is not an error.
func Extract(pyr *scalespace.Pyramid, cfg Config) ([]Feature, error) {
	if pyr == nil || len(pyr.Octaves) == 0 {
		return nil, fmt.Errorf("extractor: empty pyramid")
	}
	if cfg.MaxFeaturesPerSlot <= 0 {
		return nil, fmt.Errorf("extractor: max_nb_sift_per_buffer must be > 0")
	}

	scaleFactor := float32(1)
	if pyr.Config.UseUpsampling {
		scaleFactor = 0.5
	}

	var features []Feature
	S := pyr.Config.NbScalesPerOctave
	k := math32.Pow(2, 1.0/float32(S))

	for o := range pyr.Octaves {
		oct := pyr.Octaves[o]
		octaveScale := scaleFactor * math32.Pow(2, float32(o))

		for s := 1; s <= S; s++ {
			candidates := kernel.DetectExtrema(oct.DoG[s-1], oct.DoG[s], oct.DoG[s+1], oct.Width, oct.Height, s, cfg.IntensityThreshold, S)

			for _, c := range candidates {
				ref, ok := refineLocation(oct, s, c.X, c.Y, cfg.MaxRefinementSteps)
				if !ok {
					continue
				}
				if math32.Abs(ref.interpolatedDoG) < cfg.IntensityThreshold/float32(S) {
					continue
				}
				if !passesEdgeRejection(oct, ref.s, ref.x, ref.y, cfg.EdgeThreshold) {
					continue
				}

				finalX := float32(ref.x) + ref.dx
				finalY := float32(ref.y) + ref.dy
				finalS := float32(ref.s) + ref.ds
				sigmaOctave := pyr.Config.SeedScaleSigma * math32.Pow(k, finalS)

				peaks := kernel.OrientationHistogram(oct.Gaussian[ref.s], oct.Width, oct.Height, ref.x, ref.y, sigmaOctave)
				if peaks == nil {
					continue
				}
				orientationPeaks := kernel.FindOrientationPeaks(peaks)

				for orientationID, peak := range orientationPeaks {
					desc := kernel.ComputeDescriptor(oct.Gaussian[ref.s], oct.Width, oct.Height, finalX, finalY, sigmaOctave, peak.Theta)
					if desc == nil {
						continue
					}

					feature := Feature{
						X:             finalX,
						Y:             finalY,
						OrigX:         finalX * octaveScale,
						OrigY:         finalY * octaveScale,
						Sigma:         sigmaOctave * octaveScale,
						Theta:         peak.Theta,
						OrientationID: orientationID,
						Octave:        o,
						Scale:         s,
					}
					switch cfg.DescriptorFormat {
					case DescriptorUBC2:
						feature.DescriptorFloats = kernel.NormalizeDescriptorUBC2(desc)
					default:
						feature.DescriptorBytes = kernel.QuantizeDescriptorUBC1(desc)
					}

					// Append discipline (§4.3): the count header saturates at
					// capacity rather than erroring; writes past capacity are
					// suppressed while the scan continues.
					if len(features) < cfg.MaxFeaturesPerSlot {
						features = append(features, feature)
					}
				}
			}
		}
	}

	return features, nil
}
