package detector

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/argus/internal/database"
	"github.com/ayusman/argus/internal/features"
	"github.com/ayusman/argus/internal/geom"
	"github.com/ayusman/argus/internal/match"
)

// polygonColor is the annotation overlay color (yellow).
var polygonColor = color.RGBA{R: 255, G: 255, B: 0, A: 255}

// labelColor is the annotation label color (black).
var labelColor = color.RGBA{A: 255}

// KeypointDetector matches scene keypoints against a reference database
// and localizes matched objects with a RANSAC-estimated homography.
//
// The reference database is read-only after construction. The detection
// counters and the frame counter are instance state guarded by a mutex,
// so one detector may be driven from several server handlers.
type KeypointDetector struct {
	extractor features.Extractor
	matcher   match.Matcher
	localizer *geom.Localizer
	db        *database.ReferenceDB
	template  image.Point
	annotate  bool

	mu       sync.Mutex
	frames   int
	counters map[string]int
}

// NewKeypointDetector builds a detector from cfg. The whole reference
// database is loaded eagerly; construction fails on an unrecognized mode
// or an unreadable reference image.
func NewKeypointDetector(cfg Config) (*KeypointDetector, error) {
	extractor, err := features.NewExtractor(cfg.FeatureMode)
	if err != nil {
		return nil, fmt.Errorf("configure feature extractor: %w", err)
	}

	matcher, err := match.NewWithRatio(cfg.MatcherMode, cfg.Ratio)
	if err != nil {
		extractor.Close()
		return nil, fmt.Errorf("configure matcher: %w", err)
	}

	db, err := database.Load(cfg.DatabasePath, extractor)
	if err != nil {
		matcher.Close()
		extractor.Close()
		return nil, fmt.Errorf("load reference database: %w", err)
	}

	counters := make(map[string]int)
	for _, class := range db.Classes() {
		counters[class] = 0
	}

	return &KeypointDetector{
		extractor: extractor,
		matcher:   matcher,
		localizer: &geom.Localizer{MinPoints: cfg.MinPoints},
		db:        db,
		template:  cfg.TemplateSize,
		annotate:  cfg.Annotate,
		counters:  counters,
	}, nil
}

// Detect extracts scene features from frame, tries every registered class
// and returns the accepted localizations. When annotation is enabled the
// frame is drawn on in place.
func (d *KeypointDetector) Detect(frame *gocv.Mat) (Detections, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.frames++

	scene, err := d.extractor.Extract(*frame)
	if err != nil {
		return nil, fmt.Errorf("extract scene features: %w", err)
	}
	defer scene.Close()

	detected := make(Detections)

	for _, class := range d.db.Classes() {
		region, ok := d.detectClass(class, scene)
		if !ok {
			continue
		}

		d.counters[class]++

		box := region.Box
		detected[class] = append(detected[class], Box{
			YMin: box.Min.Y,
			XMin: box.Min.X,
			YMax: box.Max.Y,
			XMax: box.Max.X,
		})

		if d.annotate {
			d.drawRegion(frame, region, class)
		}
	}

	return detected, nil
}

// detectClass matches the scene against every reference image of a class
// and keeps the accepted localization with the most correspondences.
func (d *KeypointDetector) detectClass(class string, scene *features.FeatureSet) (geom.Region, bool) {
	var best geom.Region
	bestScore := -1

	for _, ref := range d.db.Features(class) {
		corrs := d.matcher.Match(ref.Descriptors, scene.Descriptors)
		if len(corrs) <= bestScore {
			continue
		}

		w, h := ref.Image.Cols(), ref.Image.Rows()
		if d.template.X > 0 && d.template.Y > 0 {
			w, h = d.template.X, d.template.Y
		}

		region, ok := d.localizer.Localize(corrs, ref.Keypoints, scene.Keypoints, w, h)
		if ok {
			best = region
			bestScore = len(corrs)
		}
	}

	return best, bestScore >= 0
}

// drawRegion overlays the detection polygon and a "<class>: <count>"
// label onto the frame.
func (d *KeypointDetector) drawRegion(frame *gocv.Mat, region geom.Region, class string) {
	pts := gocv.NewPointsVectorFromPoints([][]image.Point{region.Polygon[:]})
	defer pts.Close()
	gocv.Polylines(frame, pts, true, polygonColor, 10)

	label := fmt.Sprintf("%s: %d", class, d.counters[class])
	origin := image.Point{X: region.Polygon[0].X, Y: region.Polygon[1].Y}
	gocv.PutText(frame, label, origin, gocv.FontHersheyComplexSmall, 1.2, labelColor, 2)
}

// Counters returns a copy of the per-class detection counters. Every
// registered class is present, zero when never detected.
func (d *KeypointDetector) Counters() map[string]int {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make(map[string]int, len(d.counters))
	for class, n := range d.counters {
		out[class] = n
	}
	return out
}

// FrameCount returns the number of frames processed so far.
func (d *KeypointDetector) FrameCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frames
}

// Classes returns the registered object class names.
func (d *KeypointDetector) Classes() []string {
	return d.db.Classes()
}

// Close releases the detector's native resources.
func (d *KeypointDetector) Close() error {
	d.db.Close()
	if err := d.matcher.Close(); err != nil {
		return err
	}
	return d.extractor.Close()
}
