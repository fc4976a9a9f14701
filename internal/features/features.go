// Package features provides keypoint extraction for the Argus object recognition system.
package features

import (
	"fmt"

	"gocv.io/x/gocv"
	"gocv.io/x/gocv/contrib"
)

// Mode selects the feature extraction algorithm.
type Mode string

const (
	// ModeSIFT uses plain SIFT descriptors.
	ModeSIFT Mode = "SIFT"
	// ModeRootSIFT uses SIFT descriptors with Hellinger normalization.
	ModeRootSIFT Mode = "RootSIFT"
	// ModeSURF uses SURF descriptors (requires opencv_contrib).
	ModeSURF Mode = "SURF"
)

// FeatureSet holds the extraction result for a single image: the image
// itself, its keypoints and one descriptor row per keypoint.
// Descriptors may be empty when no features were found.
type FeatureSet struct {
	Image       gocv.Mat
	Keypoints   []gocv.KeyPoint
	Descriptors gocv.Mat
}

// Close releases the Mats held by the feature set.
func (fs *FeatureSet) Close() {
	fs.Image.Close()
	fs.Descriptors.Close()
}

// Empty reports whether the feature set has no descriptors.
func (fs *FeatureSet) Empty() bool {
	return fs.Descriptors.Empty()
}

// Extractor computes keypoints and descriptors from an image.
type Extractor interface {
	// Extract detects keypoints in img and computes their descriptors.
	// The image is not consumed; the caller keeps ownership of img and
	// receives ownership of the returned FeatureSet.
	Extract(img gocv.Mat) (*FeatureSet, error)

	// Close releases the native resources held by the extractor.
	Close() error
}

// NewExtractor creates an Extractor for the given mode.
// An unrecognized mode is a configuration error.
func NewExtractor(mode Mode) (Extractor, error) {
	switch mode {
	case ModeSIFT:
		return &siftExtractor{sift: gocv.NewSIFT()}, nil
	case ModeRootSIFT:
		return &siftExtractor{sift: gocv.NewSIFT(), rootSIFT: true}, nil
	case ModeSURF:
		return &surfExtractor{surf: contrib.NewSURF()}, nil
	default:
		return nil, fmt.Errorf("unknown feature mode %q", mode)
	}
}

// siftExtractor extracts SIFT keypoints, optionally applying the
// Hellinger normalization to the descriptors.
type siftExtractor struct {
	sift     gocv.SIFT
	rootSIFT bool
}

func (e *siftExtractor) Extract(img gocv.Mat) (*FeatureSet, error) {
	mask := gocv.NewMat()
	defer mask.Close()

	kps, descs := e.sift.DetectAndCompute(img, mask)

	if e.rootSIFT && len(kps) > 0 {
		normalized := Hellinger(descs)
		descs.Close()
		descs = normalized
	}

	stored := gocv.NewMat()
	img.CopyTo(&stored)

	return &FeatureSet{Image: stored, Keypoints: kps, Descriptors: descs}, nil
}

func (e *siftExtractor) Close() error {
	return e.sift.Close()
}

// surfExtractor extracts SURF keypoints.
type surfExtractor struct {
	surf contrib.SURF
}

func (e *surfExtractor) Extract(img gocv.Mat) (*FeatureSet, error) {
	mask := gocv.NewMat()
	defer mask.Close()

	kps, descs := e.surf.DetectAndCompute(img, mask)

	stored := gocv.NewMat()
	img.CopyTo(&stored)

	return &FeatureSet{Image: stored, Keypoints: kps, Descriptors: descs}, nil
}

func (e *surfExtractor) Close() error {
	return e.surf.Close()
}
