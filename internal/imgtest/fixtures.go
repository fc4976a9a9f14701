// Package imgtest generates deterministic image fixtures for tests.
//
// Reference databases for the detector live on disk, so instead of
// embedding binary frames the fixtures are synthesized: densely textured
// images give the SIFT family hundreds of stable keypoints, and a fixed
// seed makes every run identical.
package imgtest

import (
	"fmt"
	"image"
	"image/color"
	"math/rand"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"
)

// TexturedImage returns a width x height BGR image covered in random
// high-contrast shapes. The same seed always produces the same image.
func TexturedImage(seed int64, width, height int) gocv.Mat {
	rng := rand.New(rand.NewSource(seed))

	img := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)

	// Mid-gray background so both dark and bright shapes contrast.
	bg := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(128, 128, 128, 0), height, width, gocv.MatTypeCV8UC3)
	bg.CopyTo(&img)
	bg.Close()

	for i := 0; i < 400; i++ {
		c := color.RGBA{
			R: uint8(rng.Intn(256)),
			G: uint8(rng.Intn(256)),
			B: uint8(rng.Intn(256)),
			A: 255,
		}
		x := rng.Intn(width - 20)
		y := rng.Intn(height - 20)

		if i%2 == 0 {
			w := rng.Intn(15) + 4
			h := rng.Intn(15) + 4
			gocv.Rectangle(&img, image.Rect(x, y, x+w, y+h), c, -1)
		} else {
			r := rng.Intn(8) + 2
			gocv.Circle(&img, image.Point{X: x + 10, Y: y + 10}, r, c, -1)
		}
	}

	return img
}

// SolidImage returns a featureless single-color image. The SIFT family
// finds essentially no keypoints in it.
func SolidImage(width, height int) gocv.Mat {
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(90, 90, 90, 0), height, width, gocv.MatTypeCV8UC3)
	return img
}

// WriteImage writes img to path as PNG.
func WriteImage(path string, img gocv.Mat) error {
	if ok := gocv.IMWrite(path, img); !ok {
		return fmt.Errorf("write image %s", path)
	}
	return nil
}

// WriteReferenceDatabase lays out a reference database under root: one
// subdirectory per class name, each holding a single textured reference
// image generated from the class's seed.
func WriteReferenceDatabase(root string, classSeeds map[string]int64) error {
	for class, seed := range classSeeds {
		dir := filepath.Join(root, class)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}

		img := TexturedImage(seed, 640, 480)
		err := WriteImage(filepath.Join(dir, "reference.png"), img)
		img.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
