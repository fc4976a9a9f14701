// Package detector recognizes registered object instances in scene images.
package detector

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/ayusman/argus/internal/features"
	"github.com/ayusman/argus/internal/geom"
	"github.com/ayusman/argus/internal/match"
)

// Box is a detected bounding box in scene pixel coordinates.
type Box struct {
	YMin int `json:"ymin"`
	XMin int `json:"xmin"`
	YMax int `json:"ymax"`
	XMax int `json:"xmax"`
}

// Detections maps an object class name to the regions where it was found
// in one frame. A class with no accepted localization is absent; an empty
// map is the normal "nothing recognized" outcome.
type Detections map[string][]Box

// Detector defines the interface for object detection implementations.
type Detector interface {
	// Detect analyzes a scene frame and returns the recognized objects.
	// Implementations may annotate the frame in place.
	Detect(frame *gocv.Mat) (Detections, error)

	// Close releases any resources held by the detector.
	Close() error
}

// CounterSource reports the session state kept by a detector: which
// classes are registered, how often each was detected and how many
// frames were processed.
type CounterSource interface {
	Classes() []string
	Counters() map[string]int
	FrameCount() int
}

// Config holds configuration options for the keypoint detector.
type Config struct {
	// DatabasePath is the root of the reference object database.
	DatabasePath string

	// FeatureMode selects the feature extraction algorithm.
	FeatureMode features.Mode

	// MatcherMode selects the nearest-neighbor search strategy.
	MatcherMode match.Mode

	// MinPoints is the correspondence count a reference image must exceed
	// before localization is attempted.
	MinPoints int

	// Ratio is the nearest-neighbor distance ratio below which a match
	// is considered unambiguous.
	Ratio float64

	// TemplateSize overrides the projected template rectangle. When zero,
	// each reference image's own size is used.
	TemplateSize image.Point

	// Annotate draws accepted regions and labels onto processed frames.
	Annotate bool
}

// DefaultConfig returns a Config with the reference thresholds.
func DefaultConfig() Config {
	return Config{
		FeatureMode: features.ModeRootSIFT,
		MatcherMode: match.ModeBruteForce,
		MinPoints:   geom.DefaultMinPoints,
		Ratio:       match.DefaultRatio,
		Annotate:    true,
	}
}
