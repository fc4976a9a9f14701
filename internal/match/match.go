// Package match finds descriptor correspondences between a scene image and
// a reference image.
package match

import (
	"fmt"

	"gocv.io/x/gocv"
)

// DefaultRatio is the Lowe ratio used to reject ambiguous matches.
const DefaultRatio = 0.7

// Mode selects the nearest-neighbor search strategy.
type Mode string

const (
	// ModeBruteForce searches every reference descriptor exhaustively.
	ModeBruteForce Mode = "BF"
	// ModeFLANN uses an approximate KD-tree index. Faster for large
	// reference sets, at the cost of occasional missed neighbors.
	ModeFLANN Mode = "FLANN"
)

// Correspondence is a tentative pairing of a query keypoint with a
// reference keypoint, with the descriptor distance between them.
type Correspondence struct {
	QueryIdx int
	TrainIdx int
	Distance float64
}

// Matcher finds correspondences between two descriptor sets.
type Matcher interface {
	// Match returns the ratio-test-filtered correspondences between the
	// query and reference descriptors, in query order. If either side is
	// empty the result is empty; this is not an error.
	Match(query, reference gocv.Mat) []Correspondence

	// Close releases the native resources held by the matcher.
	Close() error
}

// knnMatcher is the subset of the gocv matcher types used here.
type knnMatcher interface {
	KnnMatch(query, train gocv.Mat, k int) [][]gocv.DMatch
	Close() error
}

type matcher struct {
	knn   knnMatcher
	ratio float64
}

// New creates a Matcher for the given mode, using the default ratio.
// An unrecognized mode is a configuration error.
func New(mode Mode) (Matcher, error) {
	return NewWithRatio(mode, DefaultRatio)
}

// NewWithRatio creates a Matcher with a caller-chosen ratio threshold.
func NewWithRatio(mode Mode, ratio float64) (Matcher, error) {
	switch mode {
	case ModeBruteForce:
		bf := gocv.NewBFMatcher()
		return &matcher{knn: &bf, ratio: ratio}, nil
	case ModeFLANN:
		fl := gocv.NewFlannBasedMatcher()
		return &matcher{knn: &fl, ratio: ratio}, nil
	default:
		return nil, fmt.Errorf("unknown matcher mode %q", mode)
	}
}

func (m *matcher) Match(query, reference gocv.Mat) []Correspondence {
	if query.Empty() || reference.Empty() {
		return nil
	}

	knn := m.knn.KnnMatch(query, reference, 2)
	return FilterRatio(knn, m.ratio)
}

func (m *matcher) Close() error {
	return m.knn.Close()
}

// FilterRatio applies the Lowe ratio test to k-nearest-neighbor results.
// A candidate is kept only when its best distance is strictly below
// ratio times its second-best distance; query descriptors with fewer than
// two neighbors are skipped. Reference-side indices are not deduplicated.
func FilterRatio(knn [][]gocv.DMatch, ratio float64) []Correspondence {
	var good []Correspondence
	for _, neighbors := range knn {
		if len(neighbors) < 2 {
			continue
		}
		best, second := neighbors[0], neighbors[1]
		if float64(best.Distance) < ratio*float64(second.Distance) {
			good = append(good, Correspondence{
				QueryIdx: best.QueryIdx,
				TrainIdx: best.TrainIdx,
				Distance: float64(best.Distance),
			})
		}
	}
	return good
}
