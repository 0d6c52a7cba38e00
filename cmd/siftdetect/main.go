// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Command siftdetect runs SIFT feature detection (and, with two images,
// matching) against PNG, BMP or TIFF input and prints the results to
// stdout.
package main

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/vulkansift/vulkansift"
	_ "github.com/vulkansift/vulkansift/gpu/softgpu"
)

var (
	imagePathA   string
	imagePathB   string
	logLevel     string
	descFormat   string
	intensityThr float64
	edgeThr      float64
)

var rootCmd = &cobra.Command{
	Use:   "siftdetect",
	Short: "Detect (and optionally match) SIFT features in PNG, BMP or TIFF images",
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVar(&imagePathA, "image", "", "Input PNG, BMP or TIFF image path (required)")
	rootCmd.Flags().StringVar(&imagePathB, "match-against", "", "Second PNG, BMP or TIFF image path; if set, matches against --image")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error, none")
	rootCmd.Flags().StringVar(&descFormat, "descriptor-format", "ubc1", "Descriptor format: ubc1 or ubc2")
	rootCmd.Flags().Float64Var(&intensityThr, "intensity-threshold", 0.04, "DoG contrast rejection threshold")
	rootCmd.Flags().Float64Var(&edgeThr, "edge-threshold", 10, "Principal-curvature edge rejection threshold")
	rootCmd.MarkFlagRequired("image")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	vulkansift.SetLogLevel(parseLogLevel(logLevel))
	vulkansift.LoadVulkan()
	defer vulkansift.UnloadVulkan()

	cfg := vulkansift.DefaultConfig()
	cfg.IntensityThreshold = float32(intensityThr)
	cfg.EdgeThreshold = float32(edgeThr)
	if descFormat == "ubc2" {
		cfg.DescriptorFormat = vulkansift.DescriptorUBC2
	}
	if imagePathB != "" {
		cfg.SiftBufferCount = 2
	}

	inst, result := vulkansift.CreateInstance(cfg)
	if result != vulkansift.Success {
		return fmt.Errorf("create instance: %s", result)
	}
	defer inst.Destroy()

	grayA, wA, hA, err := loadGrayscaleImage(imagePathA)
	if err != nil {
		return fmt.Errorf("load %s: %w", imagePathA, err)
	}
	if result := inst.DetectFeatures(0, grayA, wA, hA); result != vulkansift.Success {
		return fmt.Errorf("detect features in %s: %s", imagePathA, result)
	}
	featuresA, result := inst.DownloadFeatures(0)
	if result != vulkansift.Success {
		return fmt.Errorf("download features: %s", result)
	}
	fmt.Printf("%s: %d features (%dx%d)\n", imagePathA, len(featuresA), wA, hA)

	if imagePathB == "" {
		return nil
	}

	grayB, wB, hB, err := loadGrayscaleImage(imagePathB)
	if err != nil {
		return fmt.Errorf("load %s: %w", imagePathB, err)
	}
	if result := inst.DetectFeatures(1, grayB, wB, hB); result != vulkansift.Success {
		return fmt.Errorf("detect features in %s: %s", imagePathB, result)
	}
	featuresB, result := inst.DownloadFeatures(1)
	if result != vulkansift.Success {
		return fmt.Errorf("download features: %s", result)
	}
	fmt.Printf("%s: %d features (%dx%d)\n", imagePathB, len(featuresB), wB, hB)

	if result := inst.MatchFeatures(0, 1); result != vulkansift.Success {
		return fmt.Errorf("match features: %s", result)
	}
	matches, result := inst.DownloadMatches()
	if result != vulkansift.Success {
		return fmt.Errorf("download matches: %s", result)
	}
	fmt.Printf("matches: %d\n", len(matches))
	return nil
}

func parseLogLevel(s string) vulkansift.LogLevel {
	switch s {
	case "debug":
		return vulkansift.LogDebug
	case "info":
		return vulkansift.LogInfo
	case "error":
		return vulkansift.LogError
	case "none":
		return vulkansift.LogNone
	default:
		return vulkansift.LogWarn
	}
}

// loadGrayscaleImage decodes path (PNG, BMP, or TIFF, chosen by
// extension) and flattens it into row-major 8-bit grayscale, the byte
// format detectFeatures expects.
func loadGrayscaleImage(path string) ([]byte, int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, err
	}
	defer f.Close()

	var img image.Image
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bmp":
		img, err = bmp.Decode(f)
	case ".tif", ".tiff":
		img, err = tiff.Decode(f)
	default:
		img, err = png.Decode(f)
	}
	if err != nil {
		return nil, 0, 0, err
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	gray := make([]byte, w*h)
	grayImg := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			grayImg.Set(x, y, img.At(x, y))
		}
	}
	copy(gray, grayImg.Pix)
	return gray, w, h, nil
}
