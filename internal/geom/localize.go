// Package geom estimates where a matched reference object sits in the
// scene, by fitting a homography to point correspondences and projecting
// the reference template through it.
package geom

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/ayusman/argus/internal/match"
)

// Localization thresholds from the reference configuration.
const (
	// DefaultMinPoints is the correspondence count that must be exceeded
	// before a homography is attempted.
	DefaultMinPoints = 200
	// RansacReprojThreshold is the RANSAC reprojection tolerance in pixels.
	RansacReprojThreshold = 5.0
	// MinObjectWidth and MinObjectHeight are the smallest projected
	// bounding box accepted as a real detection.
	MinObjectWidth  = 10
	MinObjectHeight = 10
	// MinObjectArea guards against long, near-zero-area slivers.
	MinObjectArea = MinObjectWidth * MinObjectHeight
)

// Region is an accepted localization: the four template corners projected
// into scene coordinates and their axis-aligned bounding box.
type Region struct {
	Polygon [4]image.Point
	Box     image.Rectangle
}

// Localizer fits homographies for correspondences above MinPoints.
type Localizer struct {
	MinPoints int
}

// NewLocalizer creates a Localizer with the default correspondence
// threshold.
func NewLocalizer() *Localizer {
	return &Localizer{MinPoints: DefaultMinPoints}
}

// Localize estimates the scene region covered by a reference object.
// refKPs/sceneKPs are the keypoint lists the correspondence indices refer
// to (reference on the train side, scene on the query side is reversed
// here: corrs index refKPs by QueryIdx and sceneKPs by TrainIdx, matching
// a reference-descriptors-as-query match call). templateW/templateH is the
// reference rectangle to project, normally the reference image size.
//
// The second return is false when no acceptable region was found: too few
// correspondences, homography estimation failure, or a degenerate
// projection below the minimum size.
func (l *Localizer) Localize(corrs []match.Correspondence, refKPs, sceneKPs []gocv.KeyPoint, templateW, templateH int) (Region, bool) {
	if len(corrs) <= l.MinPoints {
		return Region{}, false
	}

	h, ok := estimateHomography(corrs, refKPs, sceneKPs)
	if !ok {
		return Region{}, false
	}
	defer h.Close()

	polygon := projectTemplate(h, templateW, templateH)
	box := boundingBox(polygon)

	if box.Dx() < MinObjectWidth || box.Dy() < MinObjectHeight || box.Dx()*box.Dy() < MinObjectArea {
		return Region{}, false
	}

	return Region{Polygon: polygon, Box: box}, true
}

// estimateHomography fits a reference-to-scene projective transform with
// RANSAC. Returns ok=false when estimation fails outright.
func estimateHomography(corrs []match.Correspondence, refKPs, sceneKPs []gocv.KeyPoint) (gocv.Mat, bool) {
	src := gocv.NewMatWithSize(len(corrs), 1, gocv.MatTypeCV64FC2)
	defer src.Close()
	dst := gocv.NewMatWithSize(len(corrs), 1, gocv.MatTypeCV64FC2)
	defer dst.Close()

	for i, c := range corrs {
		ref := refKPs[c.QueryIdx]
		scene := sceneKPs[c.TrainIdx]
		src.SetDoubleAt(i, 0, ref.X)
		src.SetDoubleAt(i, 1, ref.Y)
		dst.SetDoubleAt(i, 0, scene.X)
		dst.SetDoubleAt(i, 1, scene.Y)
	}

	mask := gocv.NewMat()
	defer mask.Close()

	h := gocv.FindHomography(src, &dst, gocv.HomographyMethodRANSAC, RansacReprojThreshold, &mask, 2000, 0.995)
	if h.Empty() {
		h.Close()
		return gocv.Mat{}, false
	}
	return h, true
}

// projectTemplate pushes the template rectangle's corners
// (0,0) (0,h-1) (w-1,h-1) (w-1,0) through the homography.
func projectTemplate(h gocv.Mat, w, ht int) [4]image.Point {
	corners := [4][2]float64{
		{0, 0},
		{0, float64(ht - 1)},
		{float64(w - 1), float64(ht - 1)},
		{float64(w - 1), 0},
	}

	var out [4]image.Point
	for i, c := range corners {
		out[i] = Project(h, c[0], c[1])
	}
	return out
}

// Project applies the 3x3 projective transform h to the point (x, y).
func Project(h gocv.Mat, x, y float64) image.Point {
	w := h.GetDoubleAt(2, 0)*x + h.GetDoubleAt(2, 1)*y + h.GetDoubleAt(2, 2)
	if w == 0 {
		return image.Point{}
	}

	px := (h.GetDoubleAt(0, 0)*x + h.GetDoubleAt(0, 1)*y + h.GetDoubleAt(0, 2)) / w
	py := (h.GetDoubleAt(1, 0)*x + h.GetDoubleAt(1, 1)*y + h.GetDoubleAt(1, 2)) / w
	return image.Point{X: int(px), Y: int(py)}
}

// boundingBox is the axis-aligned rectangle over the projected corners.
func boundingBox(polygon [4]image.Point) image.Rectangle {
	minX, minY := polygon[0].X, polygon[0].Y
	maxX, maxY := polygon[0].X, polygon[0].Y

	for _, p := range polygon[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	return image.Rect(minX, minY, maxX, maxY)
}
