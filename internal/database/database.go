// Package database loads the reference object database from disk.
//
// The database is a directory tree: each immediate subdirectory names an
// object class, and every regular file inside it is a reference image of
// that class. A subdirectory literally named "IGNORE" is skipped, so a
// database can carry scratch material without registering it.
package database

import (
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"sort"

	"gocv.io/x/gocv"

	"github.com/ayusman/argus/internal/features"
)

// IgnoreDir is the reserved subdirectory name that never becomes a class.
const IgnoreDir = "IGNORE"

// Reference images larger than MaxImageDim on their longest side are
// downscaled by ResizeFactor to bound extraction cost.
const (
	MaxImageDim  = 1000
	ResizeFactor = 0.3
)

// ReferenceDB holds the extracted features of every registered object
// class. It is built once and read-only afterwards, so it may be shared
// across goroutines.
type ReferenceDB struct {
	classes  []string
	features map[string][]*features.FeatureSet
}

// Load builds a ReferenceDB from the directory tree rooted at root, using
// the given extractor. Any unreadable reference image aborts the load;
// a partially built database is never returned.
func Load(root string, extractor features.Extractor) (*ReferenceDB, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read database root %s: %w", root, err)
	}

	db := &ReferenceDB{features: make(map[string][]*features.FeatureSet)}

	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == IgnoreDir {
			continue
		}

		class := entry.Name()
		sets, err := loadClass(filepath.Join(root, class), extractor)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("load class %s: %w", class, err)
		}

		db.classes = append(db.classes, class)
		db.features[class] = sets
		log.Printf("Loaded %d reference images for class %s", len(sets), class)
	}

	sort.Strings(db.classes)
	return db, nil
}

// loadClass extracts features from every regular file in dir.
func loadClass(dir string, extractor features.Extractor) ([]*features.FeatureSet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var sets []*features.FeatureSet
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		fs, err := loadReference(path, extractor)
		if err != nil {
			for _, s := range sets {
				s.Close()
			}
			return nil, err
		}
		sets = append(sets, fs)
	}

	return sets, nil
}

// loadReference reads one reference image, bounds its size and extracts
// its features.
func loadReference(path string, extractor features.Extractor) (*features.FeatureSet, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		img.Close()
		return nil, fmt.Errorf("unreadable reference image %s", path)
	}

	if img.Rows() > MaxImageDim || img.Cols() > MaxImageDim {
		scaled := gocv.NewMat()
		gocv.Resize(img, &scaled, image.Point{}, ResizeFactor, ResizeFactor, gocv.InterpolationLinear)
		img.Close()
		img = scaled
	}
	defer img.Close()

	fs, err := extractor.Extract(img)
	if err != nil {
		return nil, fmt.Errorf("extract features from %s: %w", path, err)
	}
	return fs, nil
}

// Classes returns the registered class names in sorted order.
func (db *ReferenceDB) Classes() []string {
	out := make([]string, len(db.classes))
	copy(out, db.classes)
	return out
}

// Features returns the reference feature sets of a class, in file order.
// The caller must not modify or close them.
func (db *ReferenceDB) Features(class string) []*features.FeatureSet {
	return db.features[class]
}

// Close releases every loaded feature set.
func (db *ReferenceDB) Close() {
	for _, sets := range db.features {
		for _, fs := range sets {
			fs.Close()
		}
	}
	db.features = make(map[string][]*features.FeatureSet)
	db.classes = nil
}
